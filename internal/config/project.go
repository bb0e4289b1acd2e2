// Package config locates a ZMK config repository and parses the files that
// describe what to build: build.yaml (targets) and west.yml (modules).
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Project describes a detected ZMK config repository.
type Project struct {
	Root           string // directory lfz was invoked from
	ConfigDir      string // <root>/config, holds west.yml and keymaps
	BoardsDir      string // optional <root>/boards with custom hardware, "" if absent
	BuildFile      string // path to build.yaml or build.yml
	ManifestFile   string // path to config/west.yml
	IsZephyrModule bool   // root carries zephyr/module.yml
}

// DetectProject inspects the current working directory.
func DetectProject() (*Project, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return DetectProjectFrom(cwd)
}

// DetectProjectFrom inspects the given directory for the standard ZMK
// config layout: a config/ directory with west.yml, and build.yaml at the
// root.
func DetectProjectFrom(root string) (*Project, error) {
	configDir := filepath.Join(root, "config")
	if info, err := os.Stat(configDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("no 'config' directory found in %s; run lfz from the root of your ZMK config repository", root)
	}

	buildFile := ""
	for _, name := range []string{"build.yaml", "build.yml"} {
		candidate := filepath.Join(root, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			buildFile = candidate
			break
		}
	}
	if buildFile == "" {
		return nil, fmt.Errorf("no 'build.yaml' or 'build.yml' found in %s; this file defines the build targets", root)
	}

	manifest := filepath.Join(configDir, "west.yml")
	if info, err := os.Stat(manifest); err != nil || info.IsDir() {
		return nil, fmt.Errorf("no 'west.yml' found in %s; this file defines the ZMK and module dependencies", configDir)
	}

	boardsDir := ""
	if info, err := os.Stat(filepath.Join(root, "boards")); err == nil && info.IsDir() {
		boardsDir = filepath.Join(root, "boards")
	}

	moduleMarker := filepath.Join(root, "zephyr", "module.yml")
	isModule := false
	if info, err := os.Stat(moduleMarker); err == nil && !info.IsDir() {
		isModule = true
	}

	return &Project{
		Root:           root,
		ConfigDir:      configDir,
		BoardsDir:      boardsDir,
		BuildFile:      buildFile,
		ManifestFile:   manifest,
		IsZephyrModule: isModule,
	}, nil
}

// ExtraModules returns host paths that must be mounted into the build
// container as additional Zephyr modules. A config repo whose root carries
// zephyr/module.yml is itself a module (the standard layout when custom
// boards live under boards/).
func (p *Project) ExtraModules() []string {
	if p.IsZephyrModule {
		return []string{p.Root}
	}
	return nil
}

// HashInputDirs returns the auxiliary directories whose content feeds the
// build hash snapshot: custom hardware definitions that bypass build.yaml
// and west.yml change detection.
func (p *Project) HashInputDirs() []string {
	var dirs []string
	if p.BoardsDir != "" {
		dirs = append(dirs, p.BoardsDir)
	}
	if configBoards := filepath.Join(p.ConfigDir, "boards"); dirExists(configBoards) {
		dirs = append(dirs, configBoards)
	}
	return dirs
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
