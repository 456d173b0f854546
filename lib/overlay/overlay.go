// Package overlay stages copy-on-write overlay mounts over existing
// directories. While the overlay is mounted, writes under the directory land
// in a scratch upper layer and vanish once the mount is undone; the original
// contents stay untouched as the lower layer.
package overlay

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/installkit/aptstage/lib/mount"
	"github.com/installkit/aptstage/lib/scratch"
)

const (
	upperName = "upper"
	workName  = "work"
)

// Stage mounts an overlay filesystem over dir, using dir's current contents
// as the lower layer. The upper and work directories come from one freshly
// allocated scratch directory, so teardown of the pool and ledger discards
// every staged write. dir must already exist.
func Stage(ctx context.Context, dir string, pool *scratch.Pool, ledger *mount.Ledger) error {
	tdir, err := pool.Allocate()
	if err != nil {
		return err
	}

	upper := filepath.Join(tdir, upperName)
	work := filepath.Join(tdir, workName)
	for _, d := range []string{upper, work} {
		if err := os.Mkdir(d, 0755); err != nil {
			return fmt.Errorf("mkdir %s: %w", d, err)
		}
	}

	options := fmt.Sprintf("lowerdir=%s,upperdir=%s,workdir=%s", dir, upper, work)
	if err := ledger.Mount(ctx, "overlay", dir,
		mount.WithFstype("overlay"), mount.WithOptions(options)); err != nil {
		return fmt.Errorf("stage overlay over %s: %w", dir, err)
	}
	return nil
}
