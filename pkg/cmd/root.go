package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var errNotInitialized = errors.New("not initialized, run 'vibe-sync init' first")

var verbosity int

var rootCmd = &cobra.Command{
	Use:   "vibe-sync",
	Short: "Sync Claude Code configuration across machines through git",
	Long: `vibe-sync keeps settings, CLAUDE.md, commands, agents, skills, plugins and
MCP servers in a git repository so they can be shared between machines.

Run without a command it initializes the sync repository when needed and
otherwise shows the status.`,

	CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	SilenceErrors:     true,
	SilenceUsage:      true,
	Args:              cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		if !a.paths.IsInitialized() {
			return executeInit(cmd.Context(), a, "")
		}
		return executeStatus(a)
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase verbosity (-v, -vv, -vvv)")
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		errLog.Error("Error", err)
		stop()
		os.Exit(1)
	}
}
