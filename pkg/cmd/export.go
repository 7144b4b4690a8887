package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Copy the local configuration into the sync repository",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeExport(cmd.Context(), newApp())
	},
}

func executeExport(ctx context.Context, a *app) error {
	return a.reconciler().Export(ctx)
}
