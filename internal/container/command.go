package container

import (
	"os/exec"
	"sort"
	"strings"
)

// Environment produces ready-to-spawn child processes that execute a shell
// command inside an isolated build environment. The build orchestrator only
// depends on this interface; tests substitute a plain-shell fake.
type Environment interface {
	Command(spec RunSpec) *exec.Cmd
}

// Mount maps a host path into the container.
type Mount struct {
	HostPath      string
	ContainerPath string
	ReadOnly      bool
}

// RunSpec describes one containerized command: image, mounts, working
// directory, environment and the shell script to run.
type RunSpec struct {
	Image   string
	Mounts  []Mount
	WorkDir string
	Env     map[string]string
	Script  string // run via /bin/bash -c
}

// WithMount returns a copy of the spec with an additional mount.
func (s RunSpec) WithMount(host, container string, readOnly bool) RunSpec {
	s.Mounts = append(s.Mounts[:len(s.Mounts):len(s.Mounts)], Mount{
		HostPath:      host,
		ContainerPath: container,
		ReadOnly:      readOnly,
	})
	return s
}

// args renders the spec as `run` arguments for docker/podman.
func (s RunSpec) args() []string {
	args := []string{"run", "--rm"}

	for _, m := range s.Mounts {
		spec := m.HostPath + ":" + m.ContainerPath
		if m.ReadOnly {
			spec += ":ro"
		}
		args = append(args, "-v", spec)
	}

	if s.WorkDir != "" {
		args = append(args, "-w", s.WorkDir)
	}

	// Sorted for a stable command line.
	keys := make([]string, 0, len(s.Env))
	for k := range s.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-e", k+"="+s.Env[k])
	}

	args = append(args, s.Image, "/bin/bash", "-c", s.Script)
	return args
}

// String renders the full command line for display and debug logging.
func (s RunSpec) String() string {
	return "docker " + strings.Join(s.args(), " ")
}
