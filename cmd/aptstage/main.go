// aptstage stages a media-only apt configuration over a target root, keeps
// it in effect while a wrapped command runs (or until a signal arrives), and
// then unwinds every mount and scratch directory it created.
//
//	aptstage                  stage, hold until SIGINT/SIGTERM, unstage
//	aptstage -- cmd args...   stage, run cmd, unstage
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/installkit/aptstage/cmd/aptstage/config"
	"github.com/installkit/aptstage/lib/aptcfg"
	"github.com/installkit/aptstage/lib/logger"
	"github.com/installkit/aptstage/lib/mount"
	"github.com/installkit/aptstage/lib/otel"
)

func main() {
	if err := run(); err != nil {
		slog.Error("aptstage terminated", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	otelCfg := otel.Config{
		Enabled:     cfg.OtelEnabled,
		Endpoint:    cfg.OtelEndpoint,
		ServiceName: cfg.OtelServiceName,
		Insecure:    cfg.OtelInsecure,
		Version:     cfg.Version,
	}
	otelProvider, otelShutdown, err := otel.Init(context.Background(), otelCfg)
	if err != nil {
		// Log warning but don't fail - graceful degradation
		slog.Warn("failed to initialize OpenTelemetry, continuing without telemetry", "error", err)
	}
	if otelShutdown != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelShutdown(shutdownCtx); err != nil {
				slog.Warn("error shutting down OpenTelemetry", "error", err)
			}
		}()
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	base := slog.Handler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if otelProvider != nil && otelProvider.LogHandler != nil {
		base = logger.NewFanoutHandler(base, otelProvider.LogHandler)
	}
	log := slog.New(logger.NewTargetLogHandler(base))
	slog.SetDefault(log)

	if otelProvider != nil && otelProvider.Meter != nil {
		if mountMetrics, err := mount.NewMetrics(otelProvider.Meter); err == nil {
			mount.SetMetrics(mountMetrics)
		}
		if stageMetrics, err := aptcfg.NewMetrics(otelProvider.Meter); err == nil {
			aptcfg.SetMetrics(stageMetrics)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.AddToContext(ctx, log)

	mirror := aptcfg.MirrorConfig{}
	if cfg.MirrorURI != "" {
		mirror.Primary = []aptcfg.MirrorEntry{{URI: cfg.MirrorURI}}
	}

	configurer := aptcfg.New(aptcfg.Config{
		TargetRoot:  cfg.TargetRoot,
		MediaSource: cfg.MediaSource,
		ArtifactDir: cfg.ArtifactDir,
		ScratchDir:  cfg.ScratchDir,
		DryRun:      cfg.DryRun,
		Mirror:      mirror,
	})

	log.Info("staging apt configuration", "target", cfg.TargetRoot, "media", cfg.MediaSource)
	stageCtx, stageSpan := otelProvider.StartSpan(ctx, "configure")
	configureErr := configurer.Configure(stageCtx)
	if configureErr != nil {
		stageSpan.RecordError(configureErr)
	}
	stageSpan.End()
	if configureErr != nil {
		log.Error("configure failed, unwinding partial state", "error", configureErr)
	} else {
		holdErr := hold(ctx, log)
		if holdErr != nil {
			log.Error("wrapped command failed", "error", holdErr)
		}
		configureErr = holdErr
	}

	// Teardown must run even when the signal context is already canceled.
	teardownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Minute)
	defer cancel()
	teardownCtx, teardownSpan := otelProvider.StartSpan(teardownCtx, "deconfigure")
	deconfigureErr := configurer.Deconfigure(teardownCtx)
	if deconfigureErr != nil {
		teardownSpan.RecordError(deconfigureErr)
	}
	teardownSpan.End()
	if deconfigureErr != nil {
		// A cleanup failure after a successful run is reported but must not
		// masquerade as a staging failure.
		if configureErr == nil {
			return fmt.Errorf("deconfigure: %w", deconfigureErr)
		}
		log.Error("deconfigure failed", "error", deconfigureErr)
	}
	return configureErr
}

// hold keeps the staged configuration in effect: it runs the command after
// "--" if one was given, otherwise waits for a termination signal.
func hold(ctx context.Context, log *slog.Logger) error {
	argv := wrappedArgv()
	if len(argv) == 0 {
		log.Info("staging active, waiting for signal")
		<-ctx.Done()
		return nil
	}

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		log.Info("running wrapped command", "argv", strings.Join(argv, " "))
		cmd := exec.CommandContext(gctx, argv[0], argv[1:]...)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("wrapped command: %w", err)
		}
		return nil
	})
	return grp.Wait()
}

func wrappedArgv() []string {
	for i, arg := range os.Args {
		if arg == "--" {
			return os.Args[i+1:]
		}
	}
	return nil
}
