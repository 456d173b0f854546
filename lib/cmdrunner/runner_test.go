package cmdrunner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunSuccess(t *testing.T) {
	runner := NewExecRunner()
	require.NoError(t, runner.Run(context.Background(), "true"))
}

func TestRunNonZeroExit(t *testing.T) {
	runner := NewExecRunner()
	err := runner.Run(context.Background(), "sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	require.Equal(t, 3, cmdErr.ExitCode)
	require.Contains(t, cmdErr.Output, "boom")
}

func TestRunMissingBinary(t *testing.T) {
	runner := NewExecRunner()
	err := runner.Run(context.Background(), "definitely-not-a-command-aptstage")
	require.Error(t, err)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	require.Equal(t, -1, cmdErr.ExitCode)
}

func TestRunEmptyArgv(t *testing.T) {
	runner := NewExecRunner()
	require.Error(t, runner.Run(context.Background()))
}
