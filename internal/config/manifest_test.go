package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleManifest = `
manifest:
  remotes:
    - name: zmkfirmware
      url-base: https://github.com/zmkfirmware
  projects:
    - name: zmk
      remote: zmkfirmware
      revision: main
  self:
    path: config
`

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "west.yml")
	if err := os.WriteFile(path, []byte(sampleManifest), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	if m.ZMKRevision() != "main" {
		t.Errorf("expected zmk revision main, got %q", m.ZMKRevision())
	}
	zmk := m.ZMKProject()
	if zmk == nil {
		t.Fatal("expected zmk project entry")
	}
	if url := m.ProjectURL(zmk); url != "https://github.com/zmkfirmware/zmk" {
		t.Errorf("unexpected project URL %q", url)
	}
	if m.Manifest.Self == nil || m.Manifest.Self.Path != "config" {
		t.Error("expected self path config")
	}
}

func TestZMKRevisionMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "west.yml")
	os.WriteFile(path, []byte("manifest:\n  projects: []\n"), 0o644)

	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}
	if rev := m.ZMKRevision(); rev != "" {
		t.Errorf("expected empty revision, got %q", rev)
	}
}

func TestWorkspaceKeyStableAndDistinct(t *testing.T) {
	a := WorkspaceKey("/home/user/keyboards/corne/config")
	b := WorkspaceKey("/home/user/keyboards/corne/config")
	c := WorkspaceKey("/home/user/keyboards/lily58/config")

	if a != b {
		t.Error("same path must produce the same key")
	}
	if a == c {
		t.Error("different paths must produce different keys")
	}
	if len(a) != 16 {
		t.Errorf("expected 16 hex chars, got %d (%s)", len(a), a)
	}
}
