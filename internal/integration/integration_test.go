//go:build integration

// End-to-end tests that run real container builds. They need a container
// runtime, network access, and a real ZMK config repo:
//
//	LFZ_TEST_CONFIG=~/src/zmk-config go test -tags integration ./internal/integration/
package integration

import (
	"os"
	"testing"

	"github.com/buckleypaul/lfz/internal/build"
	"github.com/buckleypaul/lfz/internal/config"
	"github.com/buckleypaul/lfz/internal/container"
	"github.com/buckleypaul/lfz/internal/progress"
	"github.com/buckleypaul/lfz/internal/workspace"
)

func testConfigRoot(t *testing.T) string {
	t.Helper()
	root := os.Getenv("LFZ_TEST_CONFIG")
	if root == "" {
		t.Skip("LFZ_TEST_CONFIG not set; skipping integration tests")
	}
	return root
}

func setup(t *testing.T) (*container.Runtime, *config.Project, string) {
	t.Helper()

	runtime, err := container.Detect()
	if err != nil {
		t.Skipf("no container runtime: %v", err)
	}
	if err := runtime.EnsureRunning(); err != nil {
		t.Skipf("container runtime not running: %v", err)
	}
	if err := runtime.EnsureImage(config.DefaultImage); err != nil {
		t.Fatalf("pulling build image: %v", err)
	}

	project, err := config.DetectProjectFrom(testConfigRoot(t))
	if err != nil {
		t.Fatalf("detecting project: %v", err)
	}

	manager, err := workspace.NewManager(runtime, config.DefaultImage, os.Stderr)
	if err != nil {
		t.Fatalf("workspace manager: %v", err)
	}
	ws, err := manager.GetOrCreate(project)
	if err != nil {
		t.Fatalf("workspace init: %v", err)
	}
	return runtime, project, ws
}

// TestIntegrationBuildFirstTarget builds the first target from the config
// repo's build.yaml inside the real container and asserts a firmware file
// comes out.
func TestIntegrationBuildFirstTarget(t *testing.T) {
	runtime, project, ws := setup(t)

	bf, err := config.LoadBuildFile(project.BuildFile)
	if err != nil {
		t.Fatalf("loading build.yaml: %v", err)
	}
	targets, err := build.ExpandTargets(bf)
	if err != nil {
		t.Fatalf("expanding targets: %v", err)
	}
	targets = targets[:1]

	manager, _ := workspace.NewManager(runtime, config.DefaultImage, os.Stderr)
	orch := &build.Orchestrator{
		Env:       runtime,
		Image:     config.DefaultImage,
		Workspace: ws,
		Project:   project,
		OutputDir: t.TempDir(),
		CcacheDir: manager.CcacheDir,
		Mode:      build.CachePristine,
		Out:       os.Stderr,
	}

	results, err := orch.RunParallel(targets, 1,
		progress.NewPlain(os.Stderr, []string{targets[0].ArtifactName}))
	if err != nil {
		t.Fatalf("RunParallel: %v", err)
	}
	res := results[0]
	if !res.Success {
		t.Fatalf("build failed: %v\n%s", res.Err, res.Output)
	}
	if _, err := os.Stat(res.ArtifactPath); err != nil {
		t.Fatalf("artifact missing: %v", err)
	}
	t.Logf("built %s in %s", res.ArtifactPath, res.Duration)
}

// TestIntegrationAutoModeSecondBuildIncremental runs the same target twice
// in auto mode and checks the cached workspace made the second run start.
func TestIntegrationAutoModeSecondBuildIncremental(t *testing.T) {
	runtime, project, ws := setup(t)

	bf, err := config.LoadBuildFile(project.BuildFile)
	if err != nil {
		t.Fatalf("loading build.yaml: %v", err)
	}
	targets, err := build.ExpandTargets(bf)
	if err != nil {
		t.Fatalf("expanding targets: %v", err)
	}
	targets = targets[:1]

	manager, _ := workspace.NewManager(runtime, config.DefaultImage, os.Stderr)
	orch := &build.Orchestrator{
		Env:       runtime,
		Image:     config.DefaultImage,
		Workspace: ws,
		Project:   project,
		OutputDir: t.TempDir(),
		CcacheDir: manager.CcacheDir,
		Mode:      build.CacheAuto,
		Out:       os.Stderr,
	}

	for run := 1; run <= 2; run++ {
		results, err := orch.RunParallel(targets, 1,
			progress.NewPlain(os.Stderr, []string{targets[0].ArtifactName}))
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if !results[0].Success {
			t.Fatalf("run %d failed: %v\n%s", run, results[0].Err, results[0].Output)
		}
		t.Logf("run %d took %s", run, results[0].Duration)
	}
}
