package provision

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	calls [][]string
	err   error
}

func (r *fakeRunner) Run(ctx context.Context, argv ...string) error {
	r.calls = append(r.calls, argv)
	return r.err
}

func TestApplyConfig(t *testing.T) {
	runner := &fakeRunner{}
	curtin := NewCurtin(runner)

	err := curtin.ApplyConfig(context.Background(), "/target", "/var/log/installer/apt.conf")
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"curtin", "apt-config", "-t", "/target", "--config", "/var/log/installer/apt.conf"},
	}, runner.calls)
}

func TestRunInTarget(t *testing.T) {
	runner := &fakeRunner{}
	curtin := NewCurtin(runner)

	err := curtin.RunInTarget(context.Background(), "/target", "apt-get", "update")
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"curtin", "in-target", "-t", "/target", "--", "apt-get", "update"},
	}, runner.calls)
}
