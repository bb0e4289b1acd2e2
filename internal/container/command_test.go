package container

import (
	"strings"
	"testing"
)

func TestRunSpecArgs(t *testing.T) {
	spec := RunSpec{
		Image:   "test-image",
		WorkDir: "/workspace",
		Env:     map[string]string{"FOO": "bar"},
		Script:  "echo hello",
	}
	spec = spec.WithMount("/host/path", "/container/path", false)
	spec = spec.WithMount("/host/readonly", "/container/readonly", true)

	line := strings.Join(spec.args(), " ")

	for _, want := range []string{
		"run --rm",
		"-v /host/path:/container/path",
		"-v /host/readonly:/container/readonly:ro",
		"-w /workspace",
		"-e FOO=bar",
		"test-image /bin/bash -c echo hello",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("expected args to contain %q, got: %s", want, line)
		}
	}
}

func TestRunSpecEnvSorted(t *testing.T) {
	spec := RunSpec{
		Image:  "img",
		Env:    map[string]string{"Z": "1", "A": "2", "M": "3"},
		Script: "true",
	}
	line := strings.Join(spec.args(), " ")

	ai := strings.Index(line, "-e A=2")
	mi := strings.Index(line, "-e M=3")
	zi := strings.Index(line, "-e Z=1")
	if ai == -1 || mi == -1 || zi == -1 || !(ai < mi && mi < zi) {
		t.Errorf("expected env flags in sorted order, got: %s", line)
	}
}

func TestWithMountDoesNotAliasBackingArray(t *testing.T) {
	base := RunSpec{Image: "img", Script: "true"}
	base = base.WithMount("/a", "/a", false)

	one := base.WithMount("/b", "/b", false)
	two := base.WithMount("/c", "/c", false)

	if one.Mounts[1].HostPath != "/b" || two.Mounts[1].HostPath != "/c" {
		t.Errorf("mount slices must not share backing storage: %v vs %v", one.Mounts, two.Mounts)
	}
}
