package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/smy-101/vibe-sync/internal/reconcile"
)

var (
	importNoPlugins bool
	importDryRun    bool
)

func init() {
	importCmd.Flags().BoolVar(&importNoPlugins, "no-plugins", false, "do not reinstall plugins through the plugin tool")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "show what would change without changing anything")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Apply the synced configuration to this machine",
	Long: `Import backs up the local configuration, then copies the synced tree over
it. Settings keep local plugin toggles when plugins are not reinstalled, MCP
servers are merged without replacing local ones, and plugins are reinstalled
through the plugin tool unless --no-plugins is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeImport(cmd.Context(), newApp(), importOptions(importNoPlugins, importDryRun))
	},
}

func importOptions(noPlugins, dryRun bool) reconcile.ImportOptions {
	return reconcile.ImportOptions{ReinstallPlugins: !noPlugins, DryRun: dryRun}
}

func executeImport(ctx context.Context, a *app, opts reconcile.ImportOptions) error {
	return a.reconciler().Import(ctx, opts)
}
