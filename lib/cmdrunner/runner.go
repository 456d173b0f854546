// Package cmdrunner executes external commands on behalf of the staging
// packages. Everything that touches the OS (mount, umount, curtin) goes
// through the Runner interface so tests can substitute a recorder.
package cmdrunner

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/installkit/aptstage/lib/logger"
)

// Runner runs a command to completion and reports failure as a single error.
// Output is not interpreted beyond success/failure; on non-zero exit the
// returned error is a *CommandError carrying the exit code and combined output.
type Runner interface {
	Run(ctx context.Context, argv ...string) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Run(ctx context.Context, argv ...string) error {
	if len(argv) == 0 {
		return fmt.Errorf("run: empty argv")
	}

	log := logger.FromContext(ctx)
	log.DebugContext(ctx, "running command", "argv", strings.Join(argv, " "))

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		code := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
		log.ErrorContext(ctx, "command failed",
			"argv", strings.Join(argv, " "),
			"exit_code", code,
			slog.String("output", string(output)))
		return &CommandError{
			Argv:     argv,
			ExitCode: code,
			Output:   string(output),
			Err:      err,
		}
	}
	return nil
}
