// Package scratch allocates temporary directories for a staging session and
// remembers their roots so the whole set can be removed during teardown.
package scratch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/installkit/aptstage/lib/logger"
)

// Pool tracks the temporary directories it allocated. The directories are
// independent of each other, so removal order does not matter and a failed
// removal never blocks the rest. Not safe for concurrent use.
type Pool struct {
	parent string // parent directory for allocations, "" = system temp
	dirs   []string
}

// NewPool creates a pool allocating under parent. An empty parent uses the
// system scratch location (os.TempDir). The overlay upper/work directories
// must sit on a writable filesystem, which rules out parents inside the
// target tree once it is overlay-mounted.
func NewPool(parent string) *Pool {
	return &Pool{parent: parent}
}

// Allocate creates a new empty uniquely-named directory, records it and
// returns its path.
func (p *Pool) Allocate() (string, error) {
	dir, err := os.MkdirTemp(p.parent, "aptstage-")
	if err != nil {
		return "", fmt.Errorf("allocate scratch dir: %w", err)
	}
	p.dirs = append(p.dirs, dir)
	return dir, nil
}

// ReleaseAll recursively removes every recorded directory. Removal failures
// are collected and do not prevent attempting the remaining directories;
// directories that failed to go away stay recorded. Returns the joined
// failures.
func (p *Pool) ReleaseAll(ctx context.Context) error {
	var errs []error
	var kept []string
	for _, dir := range p.dirs {
		if err := os.RemoveAll(dir); err != nil {
			errs = append(errs, fmt.Errorf("remove scratch dir %s: %w", dir, err))
			kept = append(kept, dir)
			continue
		}
		logger.FromContext(ctx).DebugContext(ctx, "removed scratch dir", "dir", dir)
	}
	p.dirs = kept
	return errors.Join(errs...)
}

// Dirs returns a copy of the recorded directory roots.
func (p *Pool) Dirs() []string {
	return slices.Clone(p.dirs)
}
