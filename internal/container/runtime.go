// Package container shells out to a local container runtime (docker or
// podman) to run the ZMK build toolchain in isolation.
package container

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
)

// DefaultImage is the stock ZMK ARM build image.
const DefaultImage = "zmkfirmware/zmk-build-arm:stable"

// Runtime is a detected container runtime.
type Runtime struct {
	name string // "docker" or "podman"
}

// ErrNoRuntime is returned when neither podman nor docker is installed.
var ErrNoRuntime = errors.New("no container runtime found; install Docker (https://docs.docker.com/get-docker/) or Podman (https://podman.io)")

// Detect finds an available container runtime. Podman is preferred because
// it is daemonless; docker is the fallback.
func Detect() (*Runtime, error) {
	for _, name := range []string{"podman", "docker"} {
		if runtimeAvailable(name) {
			slog.Debug("container runtime detected", "runtime", name)
			return &Runtime{name: name}, nil
		}
	}
	return nil, ErrNoRuntime
}

func runtimeAvailable(name string) bool {
	out, err := exec.Command(name, "--version").Output()
	return err == nil && len(out) > 0
}

// Name returns the runtime binary name.
func (r *Runtime) Name() string { return r.name }

// DisplayName returns a capitalized name for status output.
func (r *Runtime) DisplayName() string {
	switch r.name {
	case "docker":
		return "Docker"
	case "podman":
		return "Podman"
	default:
		return r.name
	}
}

// EnsureRunning verifies the runtime daemon (if any) answers.
func (r *Runtime) EnsureRunning() error {
	if err := exec.Command(r.name, "info").Run(); err != nil {
		return fmt.Errorf("%s is installed but not responding; is the daemon running?", r.DisplayName())
	}
	return nil
}

// ImageExists reports whether the image is present locally.
func (r *Runtime) ImageExists(image string) bool {
	return exec.Command(r.name, "image", "inspect", image).Run() == nil
}

// PullImage pulls the image, streaming the runtime's own progress output.
func (r *Runtime) PullImage(image string) error {
	slog.Debug("pulling image", "image", image)
	cmd := exec.Command(r.name, "pull", image)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("pulling image %s: %w\n%s", image, err, out)
	}
	return nil
}

// EnsureImage pulls the image if it is not already available.
func (r *Runtime) EnsureImage(image string) error {
	if r.ImageExists(image) {
		return nil
	}
	return r.PullImage(image)
}

// Command implements Environment by assembling a `<runtime> run` child
// process for the given spec.
func (r *Runtime) Command(spec RunSpec) *exec.Cmd {
	args := spec.args()
	return exec.Command(r.name, args...)
}
