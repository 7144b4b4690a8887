package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smy-101/vibe-sync/internal/gitsync"
	"github.com/smy-101/vibe-sync/internal/prompt"
)

var initRemote string

func init() {
	initCmd.Flags().StringVarP(&initRemote, "remote", "r", "", "git remote URL (prompted when omitted)")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the sync repository or change its remote",
	Example: `  vibe-sync init
  vibe-sync init --remote git@github.com:me/claude-config.git`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeInit(cmd.Context(), newApp(), initRemote)
	},
}

// executeInit sets up the sync repository. On an existing repository it
// shows the current remote and replaces it when a new URL is given.
func executeInit(ctx context.Context, a *app, remoteURL string) error {
	syncer := a.syncer()

	if a.paths.IsInitialized() {
		current, err := syncer.RemoteURL(ctx)
		if err != nil {
			return err
		}
		a.log.Info("Already initialized at " + a.paths.SyncDir)
		if current == "" {
			a.log.Info("Current remote: (none)")
		} else {
			a.log.Info("Current remote: " + current)
		}

		if remoteURL == "" {
			remoteURL, err = a.prompt.Input("New remote URL (empty keeps the current one)", current)
			if errors.Is(err, prompt.ErrNotInteractive) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to read remote URL: %w", err)
			}
		}
		if remoteURL == "" || remoteURL == current {
			a.log.Info("Remote unchanged")
			return nil
		}
		return syncer.UpdateRemote(ctx, remoteURL)
	}

	if remoteURL == "" {
		var err error
		remoteURL, err = a.prompt.Input("Git remote URL", "")
		if errors.Is(err, prompt.ErrNotInteractive) {
			return errors.New("no remote URL given; pass --remote when not running in a terminal")
		}
		if err != nil {
			return fmt.Errorf("failed to read remote URL: %w", err)
		}
	}
	if !gitsync.ValidRemoteURL(remoteURL) {
		return &gitsync.SyncError{Type: gitsync.ErrorTypeInvalidURL, Message: "invalid git remote URL: " + remoteURL}
	}

	if err := syncer.Setup(ctx, remoteURL); err != nil {
		return err
	}
	a.log.OK("vibe-sync is ready")
	a.log.Info("Run 'vibe-sync push' to upload this machine's configuration, or 'vibe-sync import' to apply the pulled one")
	return nil
}
