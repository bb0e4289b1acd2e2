package build

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ArtifactNotFoundError reports that a build claimed success but no
// firmware file appeared at any known location.
type ArtifactNotFoundError struct {
	Target string
	Tried  []string
}

func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("no firmware found for %s (tried %s)",
		e.Target, strings.Join(e.Tried, ", "))
}

// ResolveArtifact locates the firmware produced for a target and copies
// it to outputDir as <ArtifactName>.uf2, returning the destination path.
// Candidates are probed in priority order and only the first hit is
// copied.
func ResolveArtifact(workspace string, target Target, outputDir string) (string, error) {
	var tried []string
	source := ""
	for _, rel := range target.FirmwarePathCandidates() {
		candidate := filepath.Join(workspace, filepath.FromSlash(rel))
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			source = candidate
			break
		}
		tried = append(tried, candidate)
	}
	if source == "" {
		return "", &ArtifactNotFoundError{Target: target.ArtifactName, Tried: tried}
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}
	dest := filepath.Join(outputDir, target.ArtifactName+".uf2")
	if err := copyFile(source, dest); err != nil {
		return "", fmt.Errorf("copying %s to %s: %w", source, dest, err)
	}
	return dest, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
