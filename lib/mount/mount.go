// Package mount performs mount and unmount operations for a staging session
// and keeps a ledger of what it mounted, so the whole set can be unwound in
// reverse order during teardown.
package mount

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/installkit/aptstage/lib/cmdrunner"
	"github.com/installkit/aptstage/lib/logger"
)

// Mount records one successful mount operation.
type Mount struct {
	Source     string
	Mountpoint string
	Options    string // mount -o value, empty if none
	Fstype     string // mount -t value, empty if none
}

// Ledger issues mount(8)/umount(8) through a Runner and remembers every
// successful mount in acquisition order. Unmount order is strictly reverse
// insertion order: later mounts may live inside earlier ones (a bind mount
// under an overlay), so the caller must insert in an order whose reversal
// is valid. Not safe for concurrent use; a staging session is sequential.
type Ledger struct {
	runner cmdrunner.Runner
	mounts []Mount
}

func NewLedger(runner cmdrunner.Runner) *Ledger {
	return &Ledger{runner: runner}
}

// Option customizes a mount operation.
type Option func(*Mount)

// WithOptions sets the -o option string (e.g. "bind,ro" or overlay dirs).
func WithOptions(options string) Option {
	return func(m *Mount) { m.Options = options }
}

// WithFstype sets the -t filesystem type (e.g. "overlay").
func WithFstype(fstype string) Option {
	return func(m *Mount) { m.Fstype = fstype }
}

// Mount mounts source on mountpoint and appends the record on success.
// A mountpoint may appear in the ledger at most once; a second mount on the
// same path is rejected before touching the OS.
func (l *Ledger) Mount(ctx context.Context, source, mountpoint string, opts ...Option) error {
	if slices.ContainsFunc(l.mounts, func(m Mount) bool { return m.Mountpoint == mountpoint }) {
		return fmt.Errorf("mount %s: %w", mountpoint, ErrAlreadyMounted)
	}

	m := Mount{Source: source, Mountpoint: mountpoint}
	for _, opt := range opts {
		opt(&m)
	}

	argv := []string{"mount"}
	if m.Options != "" {
		argv = append(argv, "-o", m.Options)
	}
	if m.Fstype != "" {
		argv = append(argv, "-t", m.Fstype)
	}
	argv = append(argv, m.Source, m.Mountpoint)

	if err := l.runner.Run(ctx, argv...); err != nil {
		recordMountOp(ctx, "mount", "error", 0)
		return fmt.Errorf("mount %s on %s: %w", m.Source, m.Mountpoint, err)
	}

	l.mounts = append(l.mounts, m)
	recordMountOp(ctx, "mount", "ok", 1)
	logger.FromContext(ctx).InfoContext(ctx, "mounted",
		"source", m.Source, "mountpoint", m.Mountpoint,
		"fstype", m.Fstype, "options", m.Options)
	return nil
}

// UnmountAll unwinds the ledger in reverse insertion order. Each failure is
// collected and the remaining unmounts are still attempted; records that
// failed to unmount stay in the ledger (in their original order) so a retry
// acts on exactly what is still mounted. Returns the joined failures.
func (l *Ledger) UnmountAll(ctx context.Context) error {
	var errs []error
	var kept []Mount
	for _, m := range lo.Reverse(slices.Clone(l.mounts)) {
		if err := l.runner.Run(ctx, "umount", m.Mountpoint); err != nil {
			recordMountOp(ctx, "umount", "error", 0)
			errs = append(errs, fmt.Errorf("umount %s: %w", m.Mountpoint, err))
			kept = append(kept, m)
			continue
		}
		recordMountOp(ctx, "umount", "ok", -1)
		logger.FromContext(ctx).InfoContext(ctx, "unmounted", "mountpoint", m.Mountpoint)
	}
	l.mounts = lo.Reverse(kept)
	return errors.Join(errs...)
}

// Mounts returns a copy of the current records, oldest first.
func (l *Ledger) Mounts() []Mount {
	return slices.Clone(l.mounts)
}
