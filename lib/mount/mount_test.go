package mount

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls  [][]string
	failOn func(argv []string) error
}

func (r *fakeRunner) Run(ctx context.Context, argv ...string) error {
	r.calls = append(r.calls, argv)
	if r.failOn != nil {
		return r.failOn(argv)
	}
	return nil
}

func TestMountRecordsInOrder(t *testing.T) {
	runner := &fakeRunner{}
	ledger := NewLedger(runner)
	ctx := context.Background()

	require.NoError(t, ledger.Mount(ctx, "overlay", "/target/etc/apt",
		WithFstype("overlay"), WithOptions("lowerdir=/target/etc/apt,upperdir=/u,workdir=/w")))
	require.NoError(t, ledger.Mount(ctx, "/cdrom", "/target/cdrom", WithOptions("bind,ro")))
	require.NoError(t, ledger.Mount(ctx, "/dev/sr0", "/mnt"))

	mounts := ledger.Mounts()
	require.Len(t, mounts, 3)
	require.Equal(t, "/target/etc/apt", mounts[0].Mountpoint)
	require.Equal(t, "/target/cdrom", mounts[1].Mountpoint)
	require.Equal(t, "/mnt", mounts[2].Mountpoint)

	require.Equal(t, []string{"mount", "-o", "lowerdir=/target/etc/apt,upperdir=/u,workdir=/w",
		"-t", "overlay", "overlay", "/target/etc/apt"}, runner.calls[0])
	require.Equal(t, []string{"mount", "-o", "bind,ro", "/cdrom", "/target/cdrom"}, runner.calls[1])
	require.Equal(t, []string{"mount", "/dev/sr0", "/mnt"}, runner.calls[2])
}

func TestMountDuplicateMountpoint(t *testing.T) {
	runner := &fakeRunner{}
	ledger := NewLedger(runner)
	ctx := context.Background()

	require.NoError(t, ledger.Mount(ctx, "/cdrom", "/target/cdrom"))
	err := ledger.Mount(ctx, "/other", "/target/cdrom")
	require.ErrorIs(t, err, ErrAlreadyMounted)
	// The OS must not be touched for the rejected mount.
	require.Len(t, runner.calls, 1)
	require.Len(t, ledger.Mounts(), 1)
}

func TestMountFailureRecordsNothing(t *testing.T) {
	runner := &fakeRunner{failOn: func(argv []string) error {
		return fmt.Errorf("mount: unknown filesystem")
	}}
	ledger := NewLedger(runner)

	err := ledger.Mount(context.Background(), "overlay", "/target/etc/apt", WithFstype("overlay"))
	require.Error(t, err)
	require.Empty(t, ledger.Mounts())
}

func TestUnmountAllReverseOrder(t *testing.T) {
	runner := &fakeRunner{}
	ledger := NewLedger(runner)
	ctx := context.Background()

	for _, mp := range []string{"/a", "/a/b", "/a/b/c"} {
		require.NoError(t, ledger.Mount(ctx, "src", mp))
	}
	runner.calls = nil

	require.NoError(t, ledger.UnmountAll(ctx))
	require.Equal(t, [][]string{
		{"umount", "/a/b/c"},
		{"umount", "/a/b"},
		{"umount", "/a"},
	}, runner.calls)
	require.Empty(t, ledger.Mounts())
}

func TestUnmountAllCollectsFailures(t *testing.T) {
	busy := errors.New("umount: target is busy")
	runner := &fakeRunner{failOn: func(argv []string) error {
		if argv[0] == "umount" && argv[1] == "/a/b" {
			return busy
		}
		return nil
	}}
	ledger := NewLedger(runner)
	ctx := context.Background()

	for _, mp := range []string{"/a", "/a/b", "/a/b/c"} {
		require.NoError(t, ledger.Mount(ctx, "src", mp))
	}
	runner.calls = nil

	err := ledger.UnmountAll(ctx)
	require.ErrorIs(t, err, busy)

	// Every record was attempted despite the failure in the middle.
	require.Equal(t, [][]string{
		{"umount", "/a/b/c"},
		{"umount", "/a/b"},
		{"umount", "/a"},
	}, runner.calls)

	// Only the failed mount stays in the ledger.
	mounts := ledger.Mounts()
	require.Len(t, mounts, 1)
	require.Equal(t, "/a/b", mounts[0].Mountpoint)

	// A retry acts on exactly the remaining record.
	runner.failOn = nil
	runner.calls = nil
	require.NoError(t, ledger.UnmountAll(ctx))
	require.Equal(t, [][]string{{"umount", "/a/b"}}, runner.calls)
	require.Empty(t, ledger.Mounts())
}
