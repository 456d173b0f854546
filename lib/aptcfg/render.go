package aptcfg

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ghodss/yaml"
)

// MirrorConfig is the merged mirror/package-source configuration handed to
// the provisioning tool, in curtin's apt schema.
type MirrorConfig struct {
	PreserveSourcesList bool          `json:"preserve_sources_list"`
	Primary             []MirrorEntry `json:"primary,omitempty"`
	Geoip               bool          `json:"geoip,omitempty"`
}

// MirrorEntry maps a set of architectures to a mirror URI.
type MirrorEntry struct {
	Arches []string `json:"arches,omitempty"`
	URI    string   `json:"uri,omitempty"`
}

const artifactName = "aptstage-curtin-apt.conf"

// renderArtifact writes the apt configuration as YAML under dir and returns
// its path. The header timestamp records when this staging session rendered
// it.
func renderArtifact(dir string, mirror MirrorConfig) (string, error) {
	data, err := yaml.Marshal(map[string]MirrorConfig{"apt": mirror})
	if err != nil {
		return "", fmt.Errorf("marshal apt config: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}

	path := filepath.Join(dir, artifactName)
	header := fmt.Sprintf("# Autogenerated by aptstage: %s UTC\n",
		time.Now().UTC().Format("2006-01-02 15:04:05"))
	if err := os.WriteFile(path, append([]byte(header), data...), 0644); err != nil {
		return "", fmt.Errorf("write apt config artifact: %w", err)
	}
	return path, nil
}
