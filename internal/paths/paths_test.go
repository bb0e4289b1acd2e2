package paths

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCacheDirEndsWithLfz(t *testing.T) {
	dir, err := CacheDir()
	if err != nil {
		t.Skipf("no user cache dir available: %v", err)
	}
	if filepath.Base(dir) != "lfz" {
		t.Errorf("expected cache dir to end in lfz, got %s", dir)
	}
}

func TestWorkspacesAndCcacheUnderCacheDir(t *testing.T) {
	cache, err := CacheDir()
	if err != nil {
		t.Skipf("no user cache dir available: %v", err)
	}

	ws, err := WorkspacesDir()
	if err != nil {
		t.Fatalf("WorkspacesDir failed: %v", err)
	}
	if !strings.HasPrefix(ws, cache) {
		t.Errorf("workspaces dir %s not under cache dir %s", ws, cache)
	}

	cc, err := CcacheDir()
	if err != nil {
		t.Fatalf("CcacheDir failed: %v", err)
	}
	if !strings.HasPrefix(cc, cache) {
		t.Errorf("ccache dir %s not under cache dir %s", cc, cache)
	}
}

func TestAnonymizeReplacesHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}

	got := Anonymize(filepath.Join(home, "keyboards", "corne"))
	want := filepath.Join("~", "keyboards", "corne")
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	if got := Anonymize("/tmp/elsewhere"); got != "/tmp/elsewhere" {
		t.Errorf("non-home path should be unchanged, got %s", got)
	}
}
