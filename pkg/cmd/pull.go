package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/smy-101/vibe-sync/internal/reconcile"
)

var (
	pullNoPlugins bool
	pullDryRun    bool
)

func init() {
	pullCmd.Flags().BoolVar(&pullNoPlugins, "no-plugins", false, "do not reinstall plugins through the plugin tool")
	pullCmd.Flags().BoolVar(&pullDryRun, "dry-run", false, "pull, then show what import would change without changing it")
	rootCmd.AddCommand(pullCmd)
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Pull the sync repository and import it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executePull(cmd.Context(), newApp(), importOptions(pullNoPlugins, pullDryRun))
	},
}

func executePull(ctx context.Context, a *app, opts reconcile.ImportOptions) error {
	if err := a.requireInitialized(); err != nil {
		return err
	}
	if err := a.syncer().PullFromRemote(ctx); err != nil {
		return err
	}
	return executeImport(ctx, a, opts)
}
