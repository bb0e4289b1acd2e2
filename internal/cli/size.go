package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"github.com/buckleypaul/lfz/internal/paths"
	"github.com/buckleypaul/lfz/internal/ui"
)

func newSizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "size",
		Short: "Show disk space used by caches",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cacheDir, err := paths.CacheDir()
			if err != nil {
				return err
			}
			workspacesDir, err := paths.WorkspacesDir()
			if err != nil {
				return err
			}
			ccacheDir, err := paths.CcacheDir()
			if err != nil {
				return err
			}

			ui.Status(out, "Cache", paths.Anonymize(cacheDir))
			fmt.Fprintln(out)

			workspacesSize := dirSize(workspacesDir)
			count := countEntries(workspacesDir)
			plural := "s"
			if count == 1 {
				plural = ""
			}
			fmt.Fprintf(out, "  Workspaces:  %10s  (%d workspace%s)\n",
				units.HumanSize(float64(workspacesSize)), count, plural)

			ccacheSize := dirSize(ccacheDir)
			fmt.Fprintf(out, "  Ccache:      %10s\n", units.HumanSize(float64(ccacheSize)))

			fmt.Fprintln(out, "  ---------------------")
			fmt.Fprintf(out, "  Total:       %10s\n", units.HumanSize(float64(workspacesSize+ccacheSize)))
			return nil
		},
	}
}

func dirSize(root string) int64 {
	var size int64
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries just don't count.
			return nil
		}
		if !d.IsDir() {
			if info, err := d.Info(); err == nil {
				size += info.Size()
			}
		}
		return nil
	})
	return size
}

func countEntries(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	return len(entries)
}
