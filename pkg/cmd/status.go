package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smy-101/vibe-sync/internal/diff"
	"github.com/smy-101/vibe-sync/internal/fsutil"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show how the local configuration differs from the sync repository",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeStatus(newApp())
	},
}

func executeStatus(a *app) error {
	if !fsutil.IsDir(a.fs, a.paths.DataDir) {
		return fmt.Errorf("synced data not found: %s (run init or pull first)", a.paths.DataDir)
	}

	report, err := diff.NewComparer(a.fs, a.paths, a.files).Compare()
	if err != nil {
		return fmt.Errorf("failed to compare configuration: %w", err)
	}
	return diff.Render(a.out, report)
}
