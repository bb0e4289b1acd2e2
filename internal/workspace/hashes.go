// Package workspace manages the cached west workspaces that builds run in,
// and the content-hash snapshots that decide whether a cached build
// directory is safe to reuse incrementally.
package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// hashFileName is the snapshot file written into a cached build directory.
const hashFileName = ".lfz_build_hashes.json"

// HashInputs names the files and directories whose content influences
// build output: the target list, the west manifest, and any custom
// hardware definition directories.
type HashInputs struct {
	BuildFile    string
	ManifestFile string
	AuxDirs      []string
}

// BuildHashes is a snapshot of input content hashes. Two snapshots match
// only when every field is identical.
type BuildHashes struct {
	BuildFile string            `json:"build_yaml"`
	Manifest  string            `json:"west_yml"`
	AuxDirs   map[string]string `json:"aux_dirs,omitempty"`
}

// CalculateHashes hashes the current build inputs. Auxiliary directories
// are hashed by relative path and content, files sorted by path, so both
// renames and edits change the digest.
func CalculateHashes(in HashInputs) (*BuildHashes, error) {
	buildHash, err := hashFile(in.BuildFile)
	if err != nil {
		return nil, fmt.Errorf("hashing %s: %w", in.BuildFile, err)
	}
	manifestHash, err := hashFile(in.ManifestFile)
	if err != nil {
		return nil, fmt.Errorf("hashing %s: %w", in.ManifestFile, err)
	}

	h := &BuildHashes{BuildFile: buildHash, Manifest: manifestHash}
	for _, dir := range in.AuxDirs {
		digest, err := hashDir(dir)
		if err != nil {
			return nil, fmt.Errorf("hashing directory %s: %w", dir, err)
		}
		if h.AuxDirs == nil {
			h.AuxDirs = map[string]string{}
		}
		h.AuxDirs[dir] = digest
	}
	return h, nil
}

// LoadHashes reads a previously saved snapshot from dir. A missing or
// unparseable snapshot returns nil with no error: that is "no history",
// not a failure.
func LoadHashes(dir string) (*BuildHashes, error) {
	data, err := os.ReadFile(filepath.Join(dir, hashFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var h BuildHashes
	if err := json.Unmarshal(data, &h); err != nil {
		slog.Debug("discarding unparseable hash snapshot", "dir", dir, "err", err)
		return nil, nil
	}
	return &h, nil
}

// Save persists the snapshot into dir. Called only after a successful
// pristine build, so a matching snapshot always describes a clean state.
func (h *BuildHashes) Save(dir string) error {
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, hashFileName), data, 0o644)
}

// Equal reports field-wise equality of two snapshots.
func (h *BuildHashes) Equal(other *BuildHashes) bool {
	if other == nil {
		return false
	}
	if h.BuildFile != other.BuildFile || h.Manifest != other.Manifest {
		return false
	}
	if len(h.AuxDirs) != len(other.AuxDirs) {
		return false
	}
	for k, v := range h.AuxDirs {
		if other.AuxDirs[k] != v {
			return false
		}
	}
	return true
}

// IsIncrementalSafe reports whether dir holds a snapshot exactly matching
// current. Missing history, read failures and mismatches all answer false:
// the safe default is a pristine build.
func IsIncrementalSafe(dir string, current *BuildHashes) bool {
	stored, err := LoadHashes(dir)
	if err != nil || stored == nil {
		return false
	}
	return current.Equal(stored)
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// hashDir produces one digest over every file under root. Each file
// contributes its slash-separated relative path and its content, in
// sorted path order, so the digest is stable across platforms and walk
// orders.
func hashDir(root string) (string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	sort.Strings(files)

	hasher := sha256.New()
	for _, path := range files {
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return "", err
		}
		hasher.Write([]byte(filepath.ToSlash(rel)))
		hasher.Write([]byte{0})

		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		_, err = io.Copy(hasher, f)
		f.Close()
		if err != nil {
			return "", err
		}
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
