package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(pushCmd)
}

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Export the local configuration, commit it and push it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executePush(cmd.Context(), newApp())
	},
}

func executePush(ctx context.Context, a *app) error {
	if err := a.requireInitialized(); err != nil {
		return err
	}
	if err := executeExport(ctx, a); err != nil {
		return err
	}
	return a.syncer().CommitAndPush(ctx)
}
