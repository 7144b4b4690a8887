// Package reconcile moves configuration between the local tree and the synced
// tree. Export sanitizes and copies outward; Import validates, backs up and
// copies inward, merging settings and MCP servers instead of overwriting them.
package reconcile

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/smy-101/vibe-sync/internal/backup"
	"github.com/smy-101/vibe-sync/internal/config"
	"github.com/smy-101/vibe-sync/internal/logger"
	"github.com/smy-101/vibe-sync/internal/plugins"
	"github.com/smy-101/vibe-sync/internal/skills"
)

// ConfirmFunc asks the operator a yes/no question.
type ConfirmFunc func(message string) bool

// Options wires a Reconciler. Fs, Paths and Files are required.
type Options struct {
	Fs     afero.Fs
	Paths  config.Paths
	Files  config.SyncFileSet
	Logger logger.Logger
	// Confirm gates exporting secret-bearing MCP servers. Nil declines.
	Confirm ConfirmFunc
	// Tool is the plugin tool used when plugins are reinstalled.
	Tool plugins.Tool
}

// Reconciler runs Export and Import.
type Reconciler struct {
	fs      afero.Fs
	paths   config.Paths
	files   config.SyncFileSet
	logger  logger.Logger
	confirm ConfirmFunc
	ledger  *skills.Ledger
	backups *backup.Store
	plugins *plugins.Reinstaller
}

// New creates a Reconciler from opts.
func New(opts Options) *Reconciler {
	log := opts.Logger
	if log == nil {
		log = logger.NoOp{}
	}
	confirm := opts.Confirm
	if confirm == nil {
		confirm = func(string) bool { return false }
	}
	tool := opts.Tool
	if tool == nil {
		tool = plugins.Unavailable{}
	}

	return &Reconciler{
		fs:      opts.Fs,
		paths:   opts.Paths,
		files:   opts.Files,
		logger:  log,
		confirm: confirm,
		ledger:  skills.NewLedger(opts.Fs, log),
		backups: backup.NewStore(opts.Fs, opts.Paths, opts.Files, log),
		plugins: plugins.NewReinstaller(opts.Fs, tool, log),
	}
}

// Backups exposes the Store the Reconciler snapshots into.
func (r *Reconciler) Backups() *backup.Store {
	return r.backups
}

func (r *Reconciler) localPath(rel string) string {
	return filepath.Join(r.paths.ClaudeHome, filepath.FromSlash(rel))
}

func (r *Reconciler) syncedPath(rel string) string {
	return filepath.Join(r.paths.DataDir, filepath.FromSlash(rel))
}
