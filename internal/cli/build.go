package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/buckleypaul/lfz/internal/build"
	"github.com/buckleypaul/lfz/internal/config"
	"github.com/buckleypaul/lfz/internal/container"
	"github.com/buckleypaul/lfz/internal/paths"
	"github.com/buckleypaul/lfz/internal/progress"
	"github.com/buckleypaul/lfz/internal/store"
	"github.com/buckleypaul/lfz/internal/ui"
	"github.com/buckleypaul/lfz/internal/workspace"
)

type buildOptions struct {
	board       string
	shield      string
	output      string
	jobs        int
	quiet       bool
	verbose     bool
	incremental bool
	pristine    bool
	group       string
}

func addBuildFlags(cmd *cobra.Command, opts *buildOptions) {
	f := cmd.Flags()
	f.StringVarP(&opts.board, "board", "b", "", "build a specific board (skips build.yaml)")
	f.StringVarP(&opts.shield, "shield", "s", "", "build a specific shield")
	f.StringVarP(&opts.output, "output", "o", "", "output directory for firmware files")
	f.IntVarP(&opts.jobs, "jobs", "j", 0, "number of parallel builds (default: one per target)")
	f.BoolVar(&opts.quiet, "quiet", false, "suppress build progress")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "stream full build output for each target")
	f.BoolVarP(&opts.incremental, "incremental", "i", false, "force incremental builds (fast, may keep stale artifacts)")
	f.BoolVarP(&opts.pristine, "pristine", "p", false, "force pristine builds (safe, always clean)")
	f.StringVarP(&opts.group, "group", "g", "all", "build only targets in this group")
	cmd.MarkFlagsMutuallyExclusive("incremental", "pristine")
}

func newBuildCmd() *cobra.Command {
	opts := &buildOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build ZMK firmware (default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, opts)
		},
	}
	addBuildFlags(cmd, opts)
	return cmd
}

func (o *buildOptions) cacheMode() build.CacheMode {
	switch {
	case o.incremental:
		return build.CacheIncremental
	case o.pristine:
		return build.CachePristine
	default:
		return build.CacheAuto
	}
}

func runBuild(cmd *cobra.Command, opts *buildOptions) error {
	out := cmd.OutOrStdout()

	project, err := config.DetectProject()
	if err != nil {
		return err
	}
	ui.Status(out, "Project", config.DisplayName(project.ManifestFile))

	settings := config.LoadSettings(project.Root)
	outputDir := opts.output
	if outputDir == "" {
		outputDir = settings.OutputDir
	}

	runtime, err := container.Detect()
	if err != nil {
		return err
	}
	ui.Status(out, "Runtime", runtime.Name())
	if err := runtime.EnsureRunning(); err != nil {
		return err
	}
	if err := runtime.EnsureImage(settings.Image); err != nil {
		return err
	}

	manager, err := workspace.NewManager(runtime, settings.Image, out)
	if err != nil {
		return err
	}
	ws, err := manager.GetOrCreate(project)
	if err != nil {
		return err
	}
	ui.Status(out, "Workspace", paths.Anonymize(ws))

	targets, err := resolveTargets(project, opts)
	if err != nil {
		return err
	}

	jobs := opts.jobs
	if jobs == 0 {
		jobs = settings.Jobs
	}
	if jobs <= 0 || jobs > len(targets) {
		jobs = len(targets)
	}

	switch {
	case opts.verbose:
		ui.Header(out, fmt.Sprintf("Building %d target(s) with verbose output", len(targets)))
	case jobs > 1 && jobs < len(targets):
		ui.Header(out, fmt.Sprintf("Building %d target(s) with %d parallel jobs", len(targets), jobs))
	default:
		ui.Header(out, fmt.Sprintf("Building %d target(s)", len(targets)))
	}

	orch := &build.Orchestrator{
		Env:       runtime,
		Image:     settings.Image,
		Workspace: ws,
		Project:   project,
		OutputDir: outputDir,
		CcacheDir: manager.CcacheDir,
		Mode:      opts.cacheMode(),
		Out:       out,
	}

	start := time.Now()
	var results []build.Result
	if opts.verbose {
		// Interleaved full output from parallel builds is unreadable, so
		// verbose always runs one target at a time.
		results, err = orch.RunSequential(targets)
	} else {
		names := make([]string, len(targets))
		for i, t := range targets {
			names[i] = t.ArtifactName
		}
		rep := progress.NewReporter(out, opts.quiet, names)
		results, err = orch.RunParallel(targets, jobs, rep)
		rep.Close()
	}
	if err != nil {
		return err
	}
	total := time.Since(start)

	recordResults(project, opts, results, total, jobs)

	var succeeded, failed []build.Result
	for _, res := range results {
		if res.Success {
			succeeded = append(succeeded, res)
		} else {
			failed = append(failed, res)
		}
	}
	ui.Summary(out, len(succeeded), len(failed), total)

	if len(failed) > 0 {
		ui.Header(out, "Failed builds")
		for _, res := range failed {
			ui.Errorf(out, "%s: %v", res.Target.ArtifactName, res.Err)
			if res.Output != "" {
				fmt.Fprintln(out)
				ui.BuildErrorOutput(out, res.Target.ArtifactName, res.Output)
			}
		}
		return fmt.Errorf("%d build(s) failed", len(failed))
	}

	ui.Header(out, "Firmware written to "+outputDir)
	for _, res := range succeeded {
		ui.ListItem(out, res.ArtifactPath)
	}
	return nil
}

// resolveTargets picks the build targets: an explicit -b board builds one
// target and ignores the group filter, otherwise build.yaml decides.
func resolveTargets(project *config.Project, opts *buildOptions) ([]build.Target, error) {
	if opts.board != "" {
		return []build.Target{build.FromArgs(opts.board, opts.shield)}, nil
	}
	if opts.shield != "" {
		return nil, fmt.Errorf("--shield requires --board")
	}
	bf, err := config.LoadBuildFile(project.BuildFile)
	if err != nil {
		return nil, err
	}
	targets, err := build.ExpandTargets(bf)
	if err != nil {
		return nil, err
	}
	return build.FilterGroup(targets, opts.group)
}

// recordResults appends this run to the project-local history. History is
// best effort; a write failure never fails the build.
func recordResults(project *config.Project, opts *buildOptions, results []build.Result, total time.Duration, jobs int) {
	s := store.New(filepath.Join(project.Root, ".lfz"))
	now := time.Now()

	var succeeded, failed int
	for _, res := range results {
		if res.Success {
			succeeded++
		} else {
			failed++
		}
		record := store.BuildRecord{
			Target:    res.Target.ArtifactName,
			Board:     res.Target.Board,
			Shield:    res.Target.Shield,
			Timestamp: now,
			Success:   res.Success,
			Duration:  ui.FormatDuration(res.Duration),
			Artifact:  res.ArtifactPath,
			Pristine:  opts.cacheMode() == build.CachePristine,
		}
		if res.Err != nil {
			record.Error = res.Err.Error()
		}
		if err := s.AddBuild(record); err != nil {
			slog.Debug("recording build history failed", "error", err)
			return
		}
	}

	err := s.AddRun(store.RunRecord{
		Timestamp: now,
		Targets:   len(results),
		Succeeded: succeeded,
		Failed:    failed,
		Duration:  ui.FormatDuration(total),
		Group:     opts.group,
		Jobs:      jobs,
	})
	if err != nil {
		slog.Debug("recording run history failed", "error", err)
	}
}
