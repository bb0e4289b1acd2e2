package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/buckleypaul/lfz/internal/config"
	"github.com/buckleypaul/lfz/internal/store"
	"github.com/buckleypaul/lfz/internal/ui"
)

func newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent builds for this project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of builds to show")
	return cmd
}

func runHistory(cmd *cobra.Command, limit int) error {
	out := cmd.OutOrStdout()

	project, err := config.DetectProject()
	if err != nil {
		return err
	}
	s := store.New(filepath.Join(project.Root, ".lfz"))

	builds, err := s.Builds()
	if err != nil {
		return err
	}
	if len(builds) == 0 {
		ui.Infof(out, "No build history yet.")
		return nil
	}

	// Newest first.
	if len(builds) > limit {
		builds = builds[len(builds)-limit:]
	}
	ui.Header(out, fmt.Sprintf("Last %d build(s)", len(builds)))
	for i := len(builds) - 1; i >= 0; i-- {
		b := builds[i]
		status := ui.SuccessStyle.Render("ok")
		if !b.Success {
			status = ui.ErrorStyle.Render("failed")
		}
		line := fmt.Sprintf("  %s  %s %s %s",
			ui.DimStyle.Render(b.Timestamp.Format("2006-01-02 15:04")),
			b.Target, status, ui.DimStyle.Render(b.Duration))
		fmt.Fprintln(out, line)
		if !b.Success && b.Error != "" {
			fmt.Fprintf(out, "      %s\n", ui.DimStyle.Render(b.Error))
		}
	}
	return nil
}
