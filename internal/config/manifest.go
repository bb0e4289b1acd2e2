package config

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// WestManifest models the parts of a west.yml we care about.
type WestManifest struct {
	Manifest ManifestContent `yaml:"manifest"`
}

// ManifestContent is the body of a west manifest.
type ManifestContent struct {
	Remotes  []ManifestRemote  `yaml:"remotes"`
	Projects []ManifestProject `yaml:"projects"`
	Self     *ManifestSelf     `yaml:"self"`
}

// ManifestRemote names a git hosting base URL.
type ManifestRemote struct {
	Name    string `yaml:"name"`
	URLBase string `yaml:"url-base"`
}

// ManifestProject is one west project entry.
type ManifestProject struct {
	Name     string `yaml:"name"`
	Remote   string `yaml:"remote"`
	Revision string `yaml:"revision"`
	Path     string `yaml:"path"`
}

// ManifestSelf describes where the manifest repo itself lives.
type ManifestSelf struct {
	Path string `yaml:"path"`
}

// LoadManifest reads and parses a west.yml.
func LoadManifest(path string) (*WestManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var m WestManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &m, nil
}

// ZMKProject returns the zmk project entry, if present.
func (m *WestManifest) ZMKProject() *ManifestProject {
	for i := range m.Manifest.Projects {
		if m.Manifest.Projects[i].Name == "zmk" {
			return &m.Manifest.Projects[i]
		}
	}
	return nil
}

// ZMKRevision returns the pinned zmk revision (branch, tag or commit).
func (m *WestManifest) ZMKRevision() string {
	if p := m.ZMKProject(); p != nil {
		return p.Revision
	}
	return ""
}

// ProjectURL resolves a project's clone URL from its remote.
func (m *WestManifest) ProjectURL(p *ManifestProject) string {
	for _, r := range m.Manifest.Remotes {
		if r.Name == p.Remote {
			return strings.TrimRight(r.URLBase, "/") + "/" + p.Name
		}
	}
	return ""
}

// WorkspaceKey derives a short, stable identity for a project's cached
// workspace from the absolute config directory path. Distinct projects get
// distinct workspace directories under the cache root.
func WorkspaceKey(configDir string) string {
	sum := sha256.Sum256([]byte(configDir))
	return hex.EncodeToString(sum[:8])
}

// DisplayName returns a human-readable project label: the zmk revision if
// the manifest declares one, otherwise the manifest path itself.
func DisplayName(manifestFile string) string {
	m, err := LoadManifest(manifestFile)
	if err != nil {
		return manifestFile
	}
	if rev := m.ZMKRevision(); rev != "" {
		return fmt.Sprintf("zmk@%s", rev)
	}
	return manifestFile
}
