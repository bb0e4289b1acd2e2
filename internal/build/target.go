// Package build turns build.yaml entries into concrete west build
// invocations and runs them, sequentially or with bounded parallelism,
// collecting firmware artifacts as targets finish.
package build

import (
	"fmt"
	"strings"

	"github.com/buckleypaul/lfz/internal/config"
)

// Target is one fully resolved board(+shield) combination ready to build.
type Target struct {
	// Board identifier as passed to west -b, e.g. "nice_nano_v2" or the
	// sysbuild form "xiao_ble//zmk".
	Board string

	// Shield identifier, empty for shield-less boards.
	Shield string

	// Extra CMake arguments appended after the -- separator.
	CMakeArgs []string

	// Zephyr snippets, each passed with its own -S flag.
	Snippets []string

	// ArtifactName names both the build directory and the output file.
	ArtifactName string

	// BuildDir is the build directory relative to the workspace root.
	BuildDir string

	// Group label from build.yaml, used for filtering. Empty if unset.
	Group string
}

// FromArgs resolves a target from command-line board/shield flags.
func FromArgs(board, shield string) Target {
	name := artifactName(board, shield)
	return Target{
		Board:        board,
		Shield:       shield,
		ArtifactName: name,
		BuildDir:     "build/" + name,
	}
}

// FromInclude resolves a target from a build.yaml include entry.
func FromInclude(inc config.BuildInclude) Target {
	name := inc.ArtifactName
	if name == "" {
		name = artifactName(inc.Board, inc.Shield)
	}
	return Target{
		Board:        inc.Board,
		Shield:       inc.Shield,
		CMakeArgs:    config.SplitArgs(inc.CMakeArgs),
		Snippets:     config.SplitArgs(inc.Snippet),
		ArtifactName: name,
		BuildDir:     "build/" + name,
		Group:        inc.Group,
	}
}

// ExpandTargets flattens a build.yaml into concrete targets: explicit
// include entries win; otherwise the board list is crossed with the
// shield list.
func ExpandTargets(bf *config.BuildFile) ([]Target, error) {
	var targets []Target
	for _, inc := range bf.Include {
		targets = append(targets, FromInclude(inc))
	}
	if len(bf.Include) == 0 {
		for _, board := range bf.Board {
			if len(bf.Shield) == 0 {
				targets = append(targets, FromArgs(board, ""))
				continue
			}
			for _, shield := range bf.Shield {
				targets = append(targets, FromArgs(board, shield))
			}
		}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no build targets found in build.yaml")
	}
	return targets, nil
}

// FilterGroup keeps only targets in the named group. "all" keeps
// everything.
func FilterGroup(targets []Target, group string) ([]Target, error) {
	if group == "all" {
		return targets, nil
	}
	var filtered []Target
	for _, t := range targets {
		if t.Group == group {
			filtered = append(filtered, t)
		}
	}
	if len(filtered) == 0 {
		var groups []string
		seen := map[string]bool{}
		for _, t := range targets {
			if t.Group != "" && !seen[t.Group] {
				seen[t.Group] = true
				groups = append(groups, t.Group)
			}
		}
		return nil, fmt.Errorf("no targets in group %q (available: %s)",
			group, strings.Join(groups, ", "))
	}
	return filtered, nil
}

// sanitizeBoard makes a board identifier filesystem-safe. The sysbuild
// domain qualifier "//" would otherwise nest directories; a single "/"
// (SoC qualifier) is preserved.
func sanitizeBoard(board string) string {
	return strings.ReplaceAll(board, "//", "_")
}

// artifactName mirrors the ZMK GitHub Actions naming scheme:
// ${shield:+$shield-}${board}-zmk with the board sanitized.
func artifactName(board, shield string) string {
	sanitized := sanitizeBoard(board)
	if shield != "" {
		return shield + "-" + sanitized + "-zmk"
	}
	return sanitized + "-zmk"
}

// WestBuildArgs renders the west build argument list for this target.
// configPath is the in-container path of the mounted ZMK config.
func (t Target) WestBuildArgs(configPath string, pristine bool) []string {
	args := []string{"build", "-s", "zmk/app", "-d", t.BuildDir, "-b", t.Board}
	if pristine {
		args = append(args, "-p")
	}
	// Snippets go before the -- separator.
	for _, s := range t.Snippets {
		args = append(args, "-S", s)
	}
	args = append(args, "--", "-DZMK_CONFIG="+configPath)
	if t.Shield != "" {
		args = append(args, "-DSHIELD="+t.Shield)
	}
	args = append(args, t.CMakeArgs...)
	return args
}

// FirmwarePathCandidates lists the workspace-relative paths the built
// firmware may land at, in priority order: the standard (or merged
// sysbuild) location first, then the sysbuild zmk domain output.
func (t Target) FirmwarePathCandidates() []string {
	return []string{
		t.BuildDir + "/zephyr/zmk.uf2",
		t.BuildDir + "/zmk/zephyr/zmk.uf2",
	}
}
