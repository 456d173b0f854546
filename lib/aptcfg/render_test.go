package aptcfg

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ghodss/yaml"
	"github.com/stretchr/testify/require"
)

func TestRenderArtifact(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "installer")
	mirror := MirrorConfig{
		PreserveSourcesList: true,
		Primary: []MirrorEntry{
			{Arches: []string{"amd64", "i386"}, URI: "http://archive.ubuntu.com/ubuntu"},
		},
	}

	path, err := renderArtifact(dir, mirror)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "aptstage-curtin-apt.conf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "# Autogenerated by aptstage:"))

	var parsed map[string]MirrorConfig
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	require.Equal(t, mirror, parsed["apt"])
}

func TestRenderArtifactEmptyMirror(t *testing.T) {
	path, err := renderArtifact(t.TempDir(), MirrorConfig{})
	require.NoError(t, err)

	var parsed map[string]MirrorConfig
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	require.Contains(t, parsed, "apt")
}
