// Package provision wraps the external provisioning tool (curtin) behind a
// narrow interface: apply base apt configuration to a target, and run a
// command inside the target.
package provision

import (
	"context"
	"fmt"

	"github.com/installkit/aptstage/lib/cmdrunner"
)

// Provisioner is the boundary to the provisioning tool. Implementations must
// report failure as a single error and be safe to invoke once per
// configure/deconfigure call.
type Provisioner interface {
	// ApplyConfig applies the rendered apt configuration to the target root.
	ApplyConfig(ctx context.Context, targetRoot, configPath string) error
	// RunInTarget executes argv chrooted into the target root.
	RunInTarget(ctx context.Context, targetRoot string, argv ...string) error
}

// Curtin shells out to the curtin CLI.
type Curtin struct {
	runner cmdrunner.Runner
}

func NewCurtin(runner cmdrunner.Runner) *Curtin {
	return &Curtin{runner: runner}
}

func (c *Curtin) ApplyConfig(ctx context.Context, targetRoot, configPath string) error {
	err := c.runner.Run(ctx, "curtin", "apt-config", "-t", targetRoot, "--config", configPath)
	if err != nil {
		return fmt.Errorf("curtin apt-config: %w", err)
	}
	return nil
}

func (c *Curtin) RunInTarget(ctx context.Context, targetRoot string, argv ...string) error {
	cmdline := append([]string{"curtin", "in-target", "-t", targetRoot, "--"}, argv...)
	if err := c.runner.Run(ctx, cmdline...); err != nil {
		return fmt.Errorf("curtin in-target: %w", err)
	}
	return nil
}
