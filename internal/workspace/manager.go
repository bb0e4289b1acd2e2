package workspace

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/buckleypaul/lfz/internal/config"
	"github.com/buckleypaul/lfz/internal/container"
	"github.com/buckleypaul/lfz/internal/paths"
	"github.com/buckleypaul/lfz/internal/ui"
)

// manifestHashFile records the west.yml content hash a workspace was last
// synced against.
const manifestHashFile = ".lfz_west_yml_hash"

// initScript brings up a fresh west workspace. Modules are cloned shallow
// to save disk and transfer, and west update is retried because transient
// network failures are common on first sync.
const initScript = `
set -e
echo "Initializing west workspace..."
west init -l /workspace/config

echo "Updating west modules with shallow clones..."
max_retries=3
retry_count=0
until west update --narrow --fetch-opt=--depth=1; do
    retry_count=$((retry_count + 1))
    if [ $retry_count -ge $max_retries ]; then
        echo "ERROR: west update failed after $max_retries attempts"
        exit 1
    fi
    echo "west update failed, retrying ($retry_count/$max_retries)..."
    sleep 2
done

echo "Workspace initialized successfully"
`

// updateScript re-syncs modules after a west.yml change.
const updateScript = `
set -e
echo "Updating west modules..."
max_retries=3
retry_count=0
until west update --narrow --fetch-opt=--depth=1; do
    retry_count=$((retry_count + 1))
    if [ $retry_count -ge $max_retries ]; then
        echo "ERROR: west update failed after $max_retries attempts"
        exit 1
    fi
    echo "west update failed, retrying ($retry_count/$max_retries)..."
    sleep 2
done

echo "Workspace updated successfully"
`

// Manager owns the cache of west workspaces, one per project identity.
type Manager struct {
	WorkspacesDir string
	CcacheDir     string
	Env           container.Environment
	Image         string
	Out           io.Writer
}

// NewManager creates a Manager rooted at the user cache directory,
// creating the workspace and ccache directories if needed.
func NewManager(env container.Environment, image string, out io.Writer) (*Manager, error) {
	workspacesDir, err := paths.WorkspacesDir()
	if err != nil {
		return nil, err
	}
	ccacheDir, err := paths.CcacheDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(workspacesDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating workspaces directory: %w", err)
	}
	if err := os.MkdirAll(ccacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating ccache directory: %w", err)
	}
	if out == nil {
		out = os.Stdout
	}
	return &Manager{
		WorkspacesDir: workspacesDir,
		CcacheDir:     ccacheDir,
		Env:           env,
		Image:         image,
		Out:           out,
	}, nil
}

// WorkspacePath returns the cached workspace directory for a project.
func (m *Manager) WorkspacePath(p *config.Project) string {
	return filepath.Join(m.WorkspacesDir, config.WorkspaceKey(p.ConfigDir))
}

// Find returns the project's workspace if it exists and is initialized.
func (m *Manager) Find(p *config.Project) (string, bool) {
	ws := m.WorkspacePath(p)
	if _, err := os.Stat(filepath.Join(ws, ".west")); err == nil {
		return ws, true
	}
	return "", false
}

// GetOrCreate returns a ready workspace for the project, initializing it
// on first use and re-running west update when west.yml changed since the
// last sync.
func (m *Manager) GetOrCreate(p *config.Project) (string, error) {
	ws := m.WorkspacePath(p)

	if _, err := os.Stat(filepath.Join(ws, ".west")); err == nil {
		changed, err := m.manifestChanged(ws, p.ManifestFile)
		if err != nil {
			return "", err
		}
		if changed {
			ui.Header(m.Out, "west.yml changed - updating workspace")
			if err := m.provision(ws, p, updateScript, "west update --narrow --depth=1"); err != nil {
				ui.Errorf(m.Out, "workspace update failed")
				ui.Infof(m.Out, "Tip: run 'lfz update' to force a full workspace refresh.")
				return "", err
			}
			if err := m.saveManifestHash(ws, p.ManifestFile); err != nil {
				return "", err
			}
			ui.Successf(m.Out, "Workspace updated successfully")
		} else {
			ui.Infof(m.Out, "Using cached workspace")
		}
		return ws, nil
	}

	ui.Header(m.Out, "Initializing new workspace")
	if err := m.initialize(ws, p); err != nil {
		return "", err
	}
	return ws, nil
}

// Refresh discards any existing workspace and rebuilds it from scratch.
func (m *Manager) Refresh(p *config.Project) (string, error) {
	ws := m.WorkspacePath(p)
	if _, err := os.Stat(ws); err == nil {
		ui.Infof(m.Out, "Removing existing workspace...")
		if err := RemoveAll(ws); err != nil {
			return "", fmt.Errorf("removing existing workspace: %w", err)
		}
	}
	ui.Header(m.Out, "Reinitializing workspace")
	if err := m.initialize(ws, p); err != nil {
		return "", err
	}
	return ws, nil
}

func (m *Manager) initialize(ws string, p *config.Project) error {
	if err := os.MkdirAll(ws, 0o755); err != nil {
		return fmt.Errorf("creating workspace directory: %w", err)
	}

	ui.Infof(m.Out, "This may take several minutes on first run...")
	if err := m.provision(ws, p, initScript, "west init -l config && west update --narrow --depth=1"); err != nil {
		// A half-initialized workspace would be misdetected as ready.
		_ = RemoveAll(ws)
		ui.Errorf(m.Out, "workspace initialization failed")
		ui.Infof(m.Out, "Tip: this is often a transient network error. Try running 'lfz build' again.")
		return err
	}

	ui.Successf(m.Out, "Workspace initialized successfully")
	return m.saveManifestHash(ws, p.ManifestFile)
}

// provision runs a west provisioning script in the container, streaming
// recognizable progress lines and keeping a tail of output for error
// context.
func (m *Manager) provision(ws string, p *config.Project, script, display string) error {
	spec := container.RunSpec{
		Image:   m.Image,
		WorkDir: "/workspace",
		Script:  script,
	}
	spec = spec.WithMount(ws, "/workspace", false)
	spec = spec.WithMount(p.ConfigDir, "/workspace/config", true)
	spec = spec.WithMount(m.CcacheDir, "/root/.ccache", false)

	fmt.Fprintln(m.Out, ui.DimStyle.Render("$ "+display))
	slog.Debug("provisioning workspace", "workspace", ws, "command", spec.String())

	cmd := m.Env.Command(spec)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("capturing stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("capturing stderr: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting workspace provisioning: %w", err)
	}

	var tail []string
	var errOut strings.Builder
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		err := container.ForEachLine(stdout, func(line string) {
			if provisionProgressLine(line) {
				fmt.Fprintf(m.Out, "  %s\n", line)
			}
			tail = append(tail, line)
			if len(tail) > 30 {
				tail = tail[1:]
			}
		})
		if err != nil {
			slog.Debug("reading provisioning output failed", "error", err)
		}
	}()

	go func() {
		defer wg.Done()
		err := container.ForEachLine(stderr, func(line string) {
			errOut.WriteString(line)
			errOut.WriteByte('\n')
		})
		if err != nil {
			slog.Debug("reading provisioning errors failed", "error", err)
		}
	}()

	wg.Wait()
	if err := cmd.Wait(); err != nil {
		if len(tail) > 0 {
			fmt.Fprintln(m.Out, "\nLast output:")
			for _, line := range tail {
				fmt.Fprintf(m.Out, "  %s\n", line)
			}
		}
		if s := strings.TrimSpace(errOut.String()); s != "" {
			fmt.Fprintf(m.Out, "\nErrors:\n%s\n", s)
		}
		return fmt.Errorf("workspace provisioning failed: %w", err)
	}
	return nil
}

// provisionProgressLine reports whether a west output line is worth
// echoing while the rest is kept quiet.
func provisionProgressLine(line string) bool {
	for _, marker := range []string{"Cloning", "Fetching", "Updating", "=== ", "initialized", "updated", "ERROR", "error:"} {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}

func (m *Manager) manifestChanged(ws, manifestFile string) (bool, error) {
	stored, err := os.ReadFile(filepath.Join(ws, manifestHashFile))
	if err != nil {
		if os.IsNotExist(err) {
			// Old workspace without a recorded hash; assume unchanged.
			return false, nil
		}
		return false, err
	}
	current, err := hashFile(manifestFile)
	if err != nil {
		return false, fmt.Errorf("hashing %s: %w", manifestFile, err)
	}
	return strings.TrimSpace(string(stored)) != current, nil
}

func (m *Manager) saveManifestHash(ws, manifestFile string) error {
	current, err := hashFile(manifestFile)
	if err != nil {
		return fmt.Errorf("hashing %s: %w", manifestFile, err)
	}
	return os.WriteFile(filepath.Join(ws, manifestHashFile), []byte(current), 0o644)
}

// RemoveAll removes a directory tree, fixing permissions when a first
// attempt fails. Shallow git clones leave read-only object files that
// os.RemoveAll cannot delete directly.
func RemoveAll(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(path); err == nil {
		return nil
	}
	if err := makeWritable(path); err != nil {
		return err
	}
	return os.RemoveAll(path)
}

func makeWritable(path string) error {
	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		mode := info.Mode()
		if info.IsDir() {
			return os.Chmod(p, mode.Perm()|0o700)
		}
		return os.Chmod(p, mode.Perm()|0o600)
	})
}
