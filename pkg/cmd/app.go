package cmd

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/smy-101/vibe-sync/internal/config"
	"github.com/smy-101/vibe-sync/internal/gitsync"
	"github.com/smy-101/vibe-sync/internal/logger"
	"github.com/smy-101/vibe-sync/internal/plugins"
	"github.com/smy-101/vibe-sync/internal/prompt"
	"github.com/smy-101/vibe-sync/internal/reconcile"
)

// prompter is the terminal interaction commands rely on.
type prompter interface {
	Confirm(msg string) bool
	Input(msg, def string) (string, error)
}

// app bundles the collaborators of a single command invocation.
type app struct {
	fs     afero.Fs
	paths  config.Paths
	files  config.SyncFileSet
	log    logger.Logger
	prompt prompter
	tool   plugins.Tool
	vcs    gitsync.VersionControl
	out    io.Writer
}

// errLog reports the error that ends the process.
var errLog logger.Logger = logger.NewConsole(zerolog.Nop())

// newApp builds the production app from the global viper instance. Tests
// replace it.
var newApp = func() *app {
	zl, _ := logger.Setup(verbosity)
	console := logger.NewConsole(zl)
	errLog = console

	v := viper.GetViper()
	paths := config.ResolvePaths(v)
	return &app{
		fs:     afero.NewOsFs(),
		paths:  paths,
		files:  config.DefaultFileSet(),
		log:    console,
		prompt: prompt.New(),
		tool:   plugins.NewCLITool(config.ResolvePluginTool(v)),
		vcs:    gitsync.NewShellClient(paths.SyncDir),
		out:    os.Stdout,
	}
}

func (a *app) reconciler() *reconcile.Reconciler {
	return reconcile.New(reconcile.Options{
		Fs:      a.fs,
		Paths:   a.paths,
		Files:   a.files,
		Logger:  a.log,
		Confirm: a.prompt.Confirm,
		Tool:    a.tool,
	})
}

func (a *app) syncer() *gitsync.Syncer {
	return gitsync.NewSyncer(a.vcs, a.fs, a.paths.SyncDir, a.log)
}

func (a *app) requireInitialized() error {
	if !a.paths.IsInitialized() {
		return errNotInitialized
	}
	return nil
}
