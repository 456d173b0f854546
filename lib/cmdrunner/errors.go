package cmdrunner

import (
	"fmt"
	"strings"
)

// CommandError reports a command that exited non-zero (or failed to start).
// ExitCode is -1 when the process never produced an exit status.
type CommandError struct {
	Argv     []string
	ExitCode int
	Output   string
	Err      error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s failed: %s, output: %s",
		strings.Join(e.Argv, " "), e.Err, strings.TrimSpace(e.Output))
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
