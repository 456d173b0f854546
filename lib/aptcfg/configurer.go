// Package aptcfg stages a temporary apt configuration over a target tree so
// that package installs resolve from the bind-mounted installation media, and
// tears the whole arrangement down without leaving a trace in the target.
//
// The procedure has a few steps.
//
//  1. Get the provisioning tool to apply the base apt configuration earlier
//     than it would by default, so every later change sits on a known
//     baseline. Because of the overlay below, none of those later changes
//     persist into the installed system.
//  2. Overlay-mount the target's etc/apt, isolating all edits.
//  3. Bind-mount the installation media into the target as /cdrom.
//  4. Point apt exclusively at the media pool. With a working network the
//     generated source list is parked aside as a fallback reference; without
//     one the generated proxy fragment is dropped and the package index
//     cache gets its own overlay, since no authentic refresh can happen.
//  5. Refresh the package index inside the target.
//
// Teardown unwinds the recorded mounts in reverse order, releases the
// scratch directories and, when the network is usable, refreshes the index
// once more against the restored configuration.
package aptcfg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/installkit/aptstage/lib/cmdrunner"
	"github.com/installkit/aptstage/lib/hostinfo"
	"github.com/installkit/aptstage/lib/logger"
	"github.com/installkit/aptstage/lib/mount"
	"github.com/installkit/aptstage/lib/overlay"
	"github.com/installkit/aptstage/lib/paths"
	"github.com/installkit/aptstage/lib/provision"
	"github.com/installkit/aptstage/lib/scratch"
)

// Config carries the collaborators and settings for one staging session.
// Runner, Provisioner and Env default to the real implementations.
type Config struct {
	TargetRoot  string
	MediaSource string // host path of the installation media mount
	ArtifactDir string // diagnostics dir for the rendered apt config
	ScratchDir  string // parent for scratch allocations, "" = system temp
	DryRun      bool   // skip the media mountpoint removal on teardown
	Mirror      MirrorConfig

	Runner      cmdrunner.Runner
	Provisioner provision.Provisioner
	Env         hostinfo.Environment
}

// Configurer drives one configure/deconfigure cycle against a target root.
// It owns a mount ledger and a scratch pool; Configure fills them and
// Deconfigure consumes them. There is no automatic rollback: when Configure
// fails partway, the caller still invokes Deconfigure, which acts on exactly
// what the ledgers recorded. A Configurer is single-use and not safe for
// concurrent use; two sessions over the same target root must be serialized
// by the caller.
type Configurer struct {
	cfg    Config
	paths  *paths.Paths
	pool   *scratch.Pool
	ledger *mount.Ledger

	// Captured once at Configure entry and reused at Deconfigure, so the
	// teardown branch always matches the branch staged during configure
	// even if network state changed mid-install.
	hasNetwork bool

	mediaDirCreated bool
	artifactPath    string
}

func New(cfg Config) *Configurer {
	if cfg.Runner == nil {
		cfg.Runner = cmdrunner.NewExecRunner()
	}
	if cfg.Provisioner == nil {
		cfg.Provisioner = provision.NewCurtin(cfg.Runner)
	}
	if cfg.Env == nil {
		cfg.Env = hostinfo.NewHost()
	}
	return &Configurer{
		cfg:    cfg,
		paths:  paths.New(cfg.TargetRoot),
		pool:   scratch.NewPool(cfg.ScratchDir),
		ledger: mount.NewLedger(cfg.Runner),
	}
}

// Configure stages the media-only apt configuration. Any failure aborts the
// sequence and propagates unmodified; resources acquired before the failing
// step stay recorded for Deconfigure to unwind.
func (c *Configurer) Configure(ctx context.Context) (err error) {
	log := logger.FromContext(ctx).With("target", c.cfg.TargetRoot)
	ctx = logger.AddToContext(ctx, log)

	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		recordConfigureDuration(ctx, start, status)
	}()

	c.hasNetwork = c.cfg.Env.NetworkPresent(ctx)

	// The rendered artifact is a diagnostics aid as much as tool input; it
	// must survive even if a later step fails, so render it before anything
	// that can abort the sequence.
	c.artifactPath, err = renderArtifact(c.cfg.ArtifactDir, c.cfg.Mirror)
	if err != nil {
		return err
	}

	lsbPath, err := c.paths.LsbRelease()
	if err != nil {
		return err
	}
	codename, err := c.cfg.Env.Codename(ctx, lsbPath)
	if err != nil {
		return fmt.Errorf("resolve codename: %w", err)
	}
	log.InfoContext(ctx, "configuring apt for media-only installs",
		"codename", codename, "network", c.hasNetwork)

	if err := c.cfg.Provisioner.ApplyConfig(ctx, c.cfg.TargetRoot, c.artifactPath); err != nil {
		return err
	}

	etcApt, err := c.paths.EtcApt()
	if err != nil {
		return err
	}
	if err := overlay.Stage(ctx, etcApt, c.pool, c.ledger); err != nil {
		return err
	}

	mediaMount, err := c.paths.MediaMount()
	if err != nil {
		return err
	}
	if err := os.Mkdir(mediaMount, 0755); err != nil {
		return fmt.Errorf("mkdir media mountpoint: %w", err)
	}
	c.mediaDirCreated = true
	if err := c.ledger.Mount(ctx, c.cfg.MediaSource, mediaMount, mount.WithOptions("bind,ro")); err != nil {
		return err
	}

	sourcesList, err := c.paths.SourcesList()
	if err != nil {
		return err
	}

	if c.hasNetwork {
		// Park the generated list as an alternate file rather than destroy
		// provisioning-tool output; it stops taking effect but remains a
		// fallback reference.
		dst, err := c.paths.OriginalSourcesList()
		if err != nil {
			return err
		}
		if err := os.Rename(sourcesList, dst); err != nil {
			return fmt.Errorf("park original source list: %w", err)
		}
	} else {
		proxyConf, err := c.paths.AptProxyConf()
		if err != nil {
			return err
		}
		if err := os.Remove(proxyConf); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove proxy fragment: %w", err)
		}
		listsCache, err := c.paths.AptListsCache()
		if err != nil {
			return err
		}
		if err := overlay.Stage(ctx, listsCache, c.pool, c.ledger); err != nil {
			return err
		}
	}

	// check-date=no: media timestamps may predate the package index.
	content := fmt.Sprintf("deb [check-date=no] file:///cdrom %s main restricted\n", codename)
	if err := os.WriteFile(sourcesList, []byte(content), 0644); err != nil {
		return fmt.Errorf("write media source list: %w", err)
	}

	if err := c.cfg.Provisioner.RunInTarget(ctx, c.cfg.TargetRoot, "apt-get", "update"); err != nil {
		return err
	}

	log.InfoContext(ctx, "apt configured for media-only installs",
		"mounts", len(c.ledger.Mounts()))
	return nil
}

// Deconfigure unwinds everything Configure recorded. It is safe to call
// after an aborted Configure. Per-resource failures are collected and the
// remaining cleanup steps still run; the joined error is returned so a
// cleanup failure after a successful install is reported without being
// mistaken for an install failure.
func (c *Configurer) Deconfigure(ctx context.Context) error {
	log := logger.FromContext(ctx).With("target", c.cfg.TargetRoot)
	ctx = logger.AddToContext(ctx, log)

	var errs []error

	unmountErr := c.ledger.UnmountAll(ctx)
	if unmountErr != nil {
		errs = append(errs, unmountErr)
	}
	if err := c.pool.ReleaseAll(ctx); err != nil {
		errs = append(errs, err)
	}

	// Remove the media mountpoint only if this session created it.
	if c.mediaDirCreated && !c.cfg.DryRun {
		mediaMount, err := c.paths.MediaMount()
		if err != nil {
			errs = append(errs, err)
		} else if err := os.Remove(mediaMount); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("remove media mountpoint: %w", err))
		}
	}

	// Dropping the etc/apt overlay reverted apt to the pre-staging
	// configuration; refresh the index against it while we can. Pointless
	// offline, and wrong while a failed unmount leaves the overlay up.
	if c.hasNetwork && unmountErr == nil {
		if err := c.cfg.Provisioner.RunInTarget(ctx, c.cfg.TargetRoot, "apt-get", "update"); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) == 0 {
		log.InfoContext(ctx, "apt staging removed")
	}
	return errors.Join(errs...)
}

// Mounts exposes the current mount ledger for inspection, oldest first.
func (c *Configurer) Mounts() []mount.Mount {
	return c.ledger.Mounts()
}

// ScratchDirs exposes the scratch directories currently allocated.
func (c *Configurer) ScratchDirs() []string {
	return c.pool.Dirs()
}

// ArtifactPath returns the rendered apt config location, for attaching to
// crash reports. Empty until Configure has rendered it.
func (c *Configurer) ArtifactPath() string {
	return c.artifactPath
}
