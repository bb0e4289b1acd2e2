package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// BuildFile models a ZMK build.yaml: either top-level board/shield lists
// (expanded as a cartesian product) or explicit include entries.
type BuildFile struct {
	Board   []string       `yaml:"board"`
	Shield  []string       `yaml:"shield"`
	Include []BuildInclude `yaml:"include"`
}

// BuildInclude is one entry of the include array.
type BuildInclude struct {
	Board        string `yaml:"board"`
	Shield       string `yaml:"shield"`
	CMakeArgs    string `yaml:"cmake-args"`
	Snippet      string `yaml:"snippet"`
	ArtifactName string `yaml:"artifact-name"`
	Group        string `yaml:"group"`
}

// LoadBuildFile reads and parses a build.yaml.
func LoadBuildFile(path string) (*BuildFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var bf BuildFile
	if err := yaml.Unmarshal(data, &bf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &bf, nil
}

// Groups returns the sorted, de-duplicated group labels used by includes.
func (bf *BuildFile) Groups() []string {
	seen := map[string]bool{}
	var groups []string
	for _, inc := range bf.Include {
		if inc.Group != "" && !seen[inc.Group] {
			seen[inc.Group] = true
			groups = append(groups, inc.Group)
		}
	}
	sort.Strings(groups)
	return groups
}

// SplitArgs splits a whitespace-separated argument string from build.yaml
// (cmake-args or snippet values) into a list.
func SplitArgs(s string) []string {
	return strings.Fields(s)
}
