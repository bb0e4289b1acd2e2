package build

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/buckleypaul/lfz/internal/config"
	"github.com/buckleypaul/lfz/internal/container"
	"github.com/buckleypaul/lfz/internal/gate"
	"github.com/buckleypaul/lfz/internal/progress"
	"github.com/buckleypaul/lfz/internal/ui"
	"github.com/buckleypaul/lfz/internal/workspace"
)

// outputTailLines bounds how much build output is retained per target for
// failure reporting. Zephyr builds emit thousands of lines; the tail is
// where the compiler error lives.
const outputTailLines = 400

// CacheMode controls whether west build runs pristine.
type CacheMode int

const (
	// CachePristine always rebuilds from scratch. Safe default.
	CachePristine CacheMode = iota
	// CacheIncremental always reuses the build directory.
	CacheIncremental
	// CacheAuto reuses the build directory only when the recorded input
	// hashes still match.
	CacheAuto
)

// ExitError reports a west build that ran and exited non-zero.
type ExitError struct {
	Target string
	Code   int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: west build exited with code %d", e.Target, e.Code)
}

// Result is the outcome of one target's build.
type Result struct {
	Target       Target
	Success      bool
	Err          error
	Output       string // tail of build output, populated on failure
	ArtifactPath string
	Duration     time.Duration
}

// Orchestrator runs west builds for a set of targets inside the
// container, bounded by an admission gate, and collects their firmware.
type Orchestrator struct {
	Env       container.Environment
	Image     string
	Workspace string
	Project   *config.Project
	OutputDir string
	CcacheDir string
	Mode      CacheMode

	// Out receives streamed output in verbose (sequential) mode.
	Out io.Writer
}

// RunParallel builds all targets concurrently, admitting at most maxJobs
// at a time. Results arrive in completion order. A failing target never
// stops its siblings; the caller inspects each Result. A panicking worker
// is recovered so its siblings can finish, but the panic is a programming
// fault, not a build failure: RunParallel then returns a non-nil error.
func (o *Orchestrator) RunParallel(targets []Target, maxJobs int, rep progress.Reporter) ([]Result, error) {
	g, err := gate.New(maxJobs)
	if err != nil {
		return nil, err
	}
	current := o.currentHashes()

	var (
		mu      sync.Mutex
		results []Result
		panics  []error
		wg      sync.WaitGroup
	)
	for i, t := range targets {
		wg.Add(1)
		go func(i int, t Target) {
			defer wg.Done()
			var res Result
			defer func() {
				if r := recover(); r != nil {
					perr := fmt.Errorf("building %s: panic: %v", t.ArtifactName, r)
					res = Result{Target: t, Err: perr}
					rep.Finish(i, false, "", 0)
					mu.Lock()
					panics = append(panics, perr)
					mu.Unlock()
				}
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
			}()

			release := g.Acquire()
			defer release()
			res = o.buildOne(i, t, rep, current)
		}(i, t)
	}
	wg.Wait()
	if len(panics) > 0 {
		return results, errors.Join(panics...)
	}
	return results, nil
}

// RunSequential builds targets one at a time with full output streamed to
// o.Out. Used in verbose mode, where interleaved output would be
// unreadable.
func (o *Orchestrator) RunSequential(targets []Target) ([]Result, error) {
	current := o.currentHashes()
	results := make([]Result, 0, len(targets))
	for _, t := range targets {
		results = append(results, o.buildVerbose(t, current))
	}
	return results, nil
}

func (o *Orchestrator) buildOne(index int, t Target, rep progress.Reporter, current *workspace.BuildHashes) Result {
	start := time.Now()
	pristine := o.pristineFor(t, current)
	rep.Update(index, progress.StateStarting, "configuring")
	slog.Debug("starting build", "target", t.ArtifactName, "pristine", pristine)

	spec := o.runSpec(t, pristine)
	cmd := o.Env.Command(spec)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		rep.Finish(index, false, "", 0)
		return Result{Target: t, Err: fmt.Errorf("capturing stdout for %s: %w", t.ArtifactName, err)}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		rep.Finish(index, false, "", 0)
		return Result{Target: t, Err: fmt.Errorf("capturing stderr for %s: %w", t.ArtifactName, err)}
	}
	if err := cmd.Start(); err != nil {
		rep.Finish(index, false, "", 0)
		return Result{Target: t, Err: fmt.Errorf("spawning build for %s: %w", t.ArtifactName, err)}
	}

	var (
		tail   []string
		errOut strings.Builder
		wg     sync.WaitGroup
	)
	wg.Add(2)

	go func() {
		defer wg.Done()
		err := container.ForEachLine(stdout, func(line string) {
			if msg, ok := parseProgress(line); ok {
				rep.Update(index, progress.StateRunning, msg)
			}
			tail = append(tail, line)
			if len(tail) > outputTailLines {
				tail = tail[1:]
			}
		})
		if err != nil {
			slog.Debug("reading build output failed", "target", t.ArtifactName, "error", err)
		}
	}()

	go func() {
		defer wg.Done()
		err := container.ForEachLine(stderr, func(line string) {
			errOut.WriteString(line)
			errOut.WriteByte('\n')
		})
		if err != nil {
			slog.Debug("reading build errors failed", "target", t.ArtifactName, "error", err)
		}
	}()

	// Readers must drain before Wait closes the pipes.
	wg.Wait()
	waitErr := cmd.Wait()
	duration := time.Since(start)

	if waitErr != nil {
		rep.Finish(index, false, "", duration)
		combined := strings.Join(tail, "\n")
		if s := strings.TrimSpace(errOut.String()); s != "" {
			if combined != "" {
				combined += "\n"
			}
			combined += s
		}
		return Result{
			Target:   t,
			Err:      buildWaitError(t.ArtifactName, waitErr),
			Output:   combined,
			Duration: duration,
		}
	}

	artifact, err := ResolveArtifact(o.Workspace, t, o.OutputDir)
	if err != nil {
		rep.Finish(index, false, "", duration)
		return Result{Target: t, Err: err, Duration: duration}
	}

	o.recordHashes(t, pristine, current)
	rep.Finish(index, true, filepath.Base(artifact), duration)
	return Result{Target: t, Success: true, ArtifactPath: artifact, Duration: duration}
}

func (o *Orchestrator) buildVerbose(t Target, current *workspace.BuildHashes) Result {
	start := time.Now()
	pristine := o.pristineFor(t, current)
	spec := o.runSpec(t, pristine)

	sep := strings.Repeat("=", 60)
	fmt.Fprintf(o.Out, "\n%s\n%s\n%s\n\n",
		ui.HeaderStyle.Render(sep),
		ui.HeaderStyle.Render("Building: "+t.ArtifactName),
		ui.HeaderStyle.Render(sep))
	fmt.Fprintln(o.Out, ui.DimStyle.Render("$ "+spec.String()))
	fmt.Fprintln(o.Out)

	cmd := o.Env.Command(spec)
	cmd.Stdout = o.Out
	cmd.Stderr = o.Out

	runErr := cmd.Run()
	duration := time.Since(start)
	fmt.Fprintln(o.Out)

	if runErr != nil {
		ui.Errorf(o.Out, "%s failed in %s", t.ArtifactName, ui.FormatDuration(duration))
		return Result{
			Target:   t,
			Err:      buildWaitError(t.ArtifactName, runErr),
			Duration: duration,
		}
	}

	artifact, err := ResolveArtifact(o.Workspace, t, o.OutputDir)
	if err != nil {
		ui.Errorf(o.Out, "%v", err)
		return Result{Target: t, Err: err, Duration: duration}
	}

	o.recordHashes(t, pristine, current)
	ui.Successf(o.Out, "%s succeeded in %s", t.ArtifactName, ui.FormatDuration(duration))
	ui.ListItem(o.Out, artifact)
	return Result{Target: t, Success: true, ArtifactPath: artifact, Duration: duration}
}

// runSpec assembles the container invocation for one target.
func (o *Orchestrator) runSpec(t Target, pristine bool) container.RunSpec {
	args := t.WestBuildArgs("/workspace/config", pristine)
	script := "west " + strings.Join(args, " ")

	spec := container.RunSpec{
		Image:   o.Image,
		WorkDir: "/workspace",
		Env: map[string]string{
			"CMAKE_PREFIX_PATH": "/workspace/zephyr/share/zephyr-package/cmake",
		},
	}
	spec = spec.WithMount(o.Workspace, "/workspace", false)
	spec = spec.WithMount(o.Project.ConfigDir, "/workspace/config", true)
	spec = spec.WithMount(o.CcacheDir, "/root/.ccache", false)

	var modulePaths []string
	for i, mod := range o.Project.ExtraModules() {
		containerPath := fmt.Sprintf("/workspace/module_%d", i)
		spec = spec.WithMount(mod, containerPath, true)
		modulePaths = append(modulePaths, containerPath)
	}
	if len(modulePaths) > 0 {
		script += fmt.Sprintf(" -DZMK_EXTRA_MODULES=%q", strings.Join(modulePaths, ";"))
	}
	spec.Script = script
	return spec
}

// pristineFor decides whether a target rebuilds from scratch. In auto
// mode the previous snapshot in the target's build directory is compared
// against the hashes computed once for this run; anything missing or
// mismatched forces pristine.
func (o *Orchestrator) pristineFor(t Target, current *workspace.BuildHashes) bool {
	switch o.Mode {
	case CacheIncremental:
		return false
	case CacheAuto:
		if current == nil {
			return true
		}
		buildDir := filepath.Join(o.Workspace, filepath.FromSlash(t.BuildDir))
		safe := workspace.IsIncrementalSafe(buildDir, current)
		if !safe {
			slog.Debug("configuration changed, rebuilding pristine", "target", t.ArtifactName)
		}
		return !safe
	default:
		return true
	}
}

// currentHashes computes the run-wide input hashes used by auto mode.
// Hash failures degrade to pristine builds rather than failing the run.
func (o *Orchestrator) currentHashes() *workspace.BuildHashes {
	if o.Mode != CacheAuto {
		return nil
	}
	hashes, err := workspace.CalculateHashes(workspace.HashInputs{
		BuildFile:    o.Project.BuildFile,
		ManifestFile: o.Project.ManifestFile,
		AuxDirs:      o.Project.HashInputDirs(),
	})
	if err != nil {
		slog.Debug("hashing build inputs failed, forcing pristine", "error", err)
		return nil
	}
	return hashes
}

// recordHashes snapshots the build inputs after a successful pristine
// build. Incremental successes keep the existing snapshot: blessing one
// would mark a possibly stale build directory as clean.
func (o *Orchestrator) recordHashes(t Target, pristine bool, current *workspace.BuildHashes) {
	if !pristine {
		return
	}
	if current == nil {
		hashes, err := workspace.CalculateHashes(workspace.HashInputs{
			BuildFile:    o.Project.BuildFile,
			ManifestFile: o.Project.ManifestFile,
			AuxDirs:      o.Project.HashInputDirs(),
		})
		if err != nil {
			slog.Debug("hashing build inputs failed, snapshot skipped", "target", t.ArtifactName, "error", err)
			return
		}
		current = hashes
	}
	buildDir := filepath.Join(o.Workspace, filepath.FromSlash(t.BuildDir))
	if err := current.Save(buildDir); err != nil {
		slog.Debug("saving hash snapshot failed", "target", t.ArtifactName, "error", err)
	}
}

// parseProgress extracts a short status from a ninja output line like
// "[123/456] Building C object ...". Linking and generation steps get a
// phase name instead of the counter.
func parseProgress(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "[") {
		return "", false
	}
	end := strings.IndexByte(line, ']')
	if end < 0 {
		return "", false
	}
	cur, total, found := strings.Cut(line[1:end], "/")
	if !found {
		return "", false
	}
	if _, err := strconv.Atoi(cur); err != nil {
		return "", false
	}
	if _, err := strconv.Atoi(total); err != nil {
		return "", false
	}
	rest := line[end+1:]
	switch {
	case strings.Contains(rest, "Linking"):
		return "linking", true
	case strings.Contains(rest, "Generating"):
		return "generating", true
	}
	return "[" + cur + "/" + total + "]", true
}

// buildWaitError classifies a failed build process: a non-zero exit from
// west is an ExitError with the real code; anything else is an OS-level
// failure to run or reap the process and keeps its original error.
func buildWaitError(target string, err error) error {
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return &ExitError{Target: target, Code: ee.ExitCode()}
	}
	return fmt.Errorf("running build for %s: %w", target, err)
}
