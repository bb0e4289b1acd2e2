package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/buckleypaul/lfz/internal/config"
	"github.com/buckleypaul/lfz/internal/container"
	"github.com/buckleypaul/lfz/internal/paths"
	"github.com/buckleypaul/lfz/internal/ui"
	"github.com/buckleypaul/lfz/internal/workspace"
)

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Re-initialize the west workspace (fresh west update)",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			project, err := config.DetectProject()
			if err != nil {
				return err
			}
			ui.Status(out, "Project", paths.Anonymize(project.Root))

			runtime, err := container.Detect()
			if err != nil {
				return err
			}
			ui.Status(out, "Runtime", runtime.Name())
			if err := runtime.EnsureRunning(); err != nil {
				return err
			}

			settings := config.LoadSettings(project.Root)
			manager, err := workspace.NewManager(runtime, settings.Image, out)
			if err != nil {
				return err
			}
			ws, err := manager.Refresh(project)
			if err != nil {
				return err
			}
			ui.Status(out, "Workspace", paths.Anonymize(ws))
			return nil
		},
	}
}

func newCleanCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the cached workspace for this project",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if all {
				workspacesDir, err := paths.WorkspacesDir()
				if err != nil {
					return err
				}
				if _, err := os.Stat(workspacesDir); os.IsNotExist(err) {
					ui.Infof(out, "No cached workspaces found.")
					return nil
				}
				ui.Infof(out, "Removing all cached workspaces: %s", paths.Anonymize(workspacesDir))
				if err := workspace.RemoveAll(workspacesDir); err != nil {
					return err
				}
				ui.Successf(out, "All cached workspaces removed.")
				return nil
			}

			project, err := config.DetectProject()
			if err != nil {
				return err
			}
			manager, err := workspace.NewManager(nil, "", out)
			if err != nil {
				return err
			}
			ws, ok := manager.Find(project)
			if !ok {
				ui.Infof(out, "No cached workspace found for this project.")
				return nil
			}
			ui.Infof(out, "Removing workspace: %s", paths.Anonymize(ws))
			if err := workspace.RemoveAll(ws); err != nil {
				return err
			}
			ui.Successf(out, "Workspace removed.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "remove all cached workspaces")
	return cmd
}

func newPurgeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove all caches (workspaces and ccache)",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cacheDir, err := paths.CacheDir()
			if err != nil {
				return err
			}
			if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
				ui.Infof(out, "No caches found.")
				return nil
			}
			ui.Infof(out, "Removing all caches: %s", paths.Anonymize(cacheDir))
			if err := workspace.RemoveAll(cacheDir); err != nil {
				return err
			}
			ui.Successf(out, "All caches cleared.")
			return nil
		},
	}
}
