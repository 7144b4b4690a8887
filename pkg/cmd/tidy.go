package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/smy-101/vibe-sync/internal/skills"
)

func init() {
	rootCmd.AddCommand(tidyCmd)
}

var tidyCmd = &cobra.Command{
	Use:   "tidy",
	Short: "Remove local skill links whose target no longer exists",
	Long: `Remove dangling skill links from the local skills directory.

Status reports these links; tidy deletes them. Skill directories and links
that still resolve are left alone.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeTidy(cmd.Context(), newApp())
	},
}

func executeTidy(ctx context.Context, a *app) error {
	dir := filepath.Join(a.paths.ClaudeHome, filepath.FromSlash(a.files.SkillsDir))
	report, err := skills.NewLedger(a.fs, a.log).Tidy(ctx, dir)
	if err != nil {
		return fmt.Errorf("tidy failed: %w", err)
	}

	if report.DanglingLinks == 0 {
		a.log.Info("No dangling skill links found")
		return nil
	}
	a.log.OK(fmt.Sprintf("Removed %d of %d dangling skill links", report.Removed, report.DanglingLinks))
	return nil
}
