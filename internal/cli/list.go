package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/buckleypaul/lfz/internal/build"
	"github.com/buckleypaul/lfz/internal/config"
	"github.com/buckleypaul/lfz/internal/ui"
)

func newListCmd() *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show build targets and groups from build.yaml",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, group)
		},
	}
	cmd.Flags().StringVarP(&group, "group", "g", "", "show only targets in this group")
	return cmd
}

func runList(cmd *cobra.Command, group string) error {
	out := cmd.OutOrStdout()

	project, err := config.DetectProject()
	if err != nil {
		return err
	}
	bf, err := config.LoadBuildFile(project.BuildFile)
	if err != nil {
		return err
	}
	targets, err := build.ExpandTargets(bf)
	if err != nil {
		return err
	}
	groups := bf.Groups()

	if group != "" {
		var filtered []build.Target
		for _, t := range targets {
			if t.Group == group {
				filtered = append(filtered, t)
			}
		}
		if len(filtered) == 0 {
			ui.Errorf(out, "no targets in group %q", group)
			if len(groups) > 0 {
				ui.Infof(out, "Available groups: %s", strings.Join(groups, ", "))
			}
			return nil
		}
		targets = filtered
	}

	if len(groups) > 0 {
		ui.Header(out, "Groups")
		for _, g := range groups {
			ui.ListItem(out, g)
		}
	}

	if group != "" {
		ui.Header(out, fmt.Sprintf("Targets in group %q", group))
	} else {
		ui.Header(out, fmt.Sprintf("Targets (%d)", len(targets)))
	}
	for i, t := range targets {
		details := "board: " + t.Board
		if t.Shield != "" {
			details += ", shield: " + t.Shield
		}
		line := fmt.Sprintf("  %s %s",
			ui.TargetStyle(i).Render(t.ArtifactName), ui.DimStyle.Render(details))
		if t.Group != "" {
			line += " " + ui.WarningStyle.Render("["+t.Group+"]")
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
