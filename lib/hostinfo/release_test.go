package hostinfo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeLsbRelease(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lsb-release")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCodename(t *testing.T) {
	path := writeLsbRelease(t, "DISTRIB_ID=Ubuntu\nDISTRIB_RELEASE=20.04\nDISTRIB_CODENAME=focal\nDISTRIB_DESCRIPTION=\"Ubuntu 20.04 LTS\"\n")

	codename, err := NewHost().Codename(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "focal", codename)
}

func TestCodenameQuoted(t *testing.T) {
	path := writeLsbRelease(t, "DISTRIB_CODENAME=\"noble\"\n")

	codename, err := NewHost().Codename(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, "noble", codename)
}

func TestCodenameMissingEntry(t *testing.T) {
	path := writeLsbRelease(t, "DISTRIB_ID=Ubuntu\n")

	_, err := NewHost().Codename(context.Background(), path)
	require.ErrorIs(t, err, ErrNoCodename)
}

func TestCodenameMissingFile(t *testing.T) {
	_, err := NewHost().Codename(context.Background(), filepath.Join(t.TempDir(), "lsb-release"))
	require.Error(t, err)
}
