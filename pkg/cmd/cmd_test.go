package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smy-101/vibe-sync/internal/backup"
	"github.com/smy-101/vibe-sync/internal/config"
	"github.com/smy-101/vibe-sync/internal/gitsync"
	"github.com/smy-101/vibe-sync/internal/logger"
	"github.com/smy-101/vibe-sync/internal/plugins"
	"github.com/smy-101/vibe-sync/internal/prompt"
)

// fakeVCS records every git operation and succeeds unless told otherwise.
type fakeVCS struct {
	calls   []string
	remotes []gitsync.Remote
	clean   bool
	pullErr error
}

func (f *fakeVCS) record(call string) { f.calls = append(f.calls, call) }

func (f *fakeVCS) Init(ctx context.Context) error {
	f.record("init")
	return nil
}

func (f *fakeVCS) AddRemote(ctx context.Context, name, url string) error {
	f.record("remote add " + name + " " + url)
	f.remotes = append(f.remotes, gitsync.Remote{Name: name, FetchURL: url})
	return nil
}

func (f *fakeVCS) SetRemoteURL(ctx context.Context, name, url string) error {
	f.record("remote set-url " + name + " " + url)
	for i := range f.remotes {
		if f.remotes[i].Name == name {
			f.remotes[i].FetchURL = url
		}
	}
	return nil
}

func (f *fakeVCS) Remotes(ctx context.Context) ([]gitsync.Remote, error) {
	return f.remotes, nil
}

func (f *fakeVCS) CurrentBranch(ctx context.Context) (string, error) {
	return "main", nil
}

func (f *fakeVCS) RenameBranch(ctx context.Context, name string) error {
	f.record("branch -M " + name)
	return nil
}

func (f *fakeVCS) Pull(ctx context.Context) error {
	f.record("pull")
	return f.pullErr
}

func (f *fakeVCS) PullFrom(ctx context.Context, remote, branch string) error {
	f.record("pull " + remote + " " + branch)
	return f.pullErr
}

func (f *fakeVCS) SetUpstream(ctx context.Context, remote, branch string) error {
	f.record("upstream " + remote + "/" + branch)
	return nil
}

func (f *fakeVCS) AddAll(ctx context.Context) error {
	f.record("add -A")
	return nil
}

func (f *fakeVCS) IsClean(ctx context.Context) (bool, error) {
	return f.clean, nil
}

func (f *fakeVCS) Commit(ctx context.Context, message string) error {
	f.record("commit")
	return nil
}

func (f *fakeVCS) Push(ctx context.Context, remote, branch string) error {
	f.record("push " + remote + " " + branch)
	return nil
}

func (f *fakeVCS) Fetch(ctx context.Context, remote string) error {
	f.record("fetch " + remote)
	return nil
}

func (f *fakeVCS) Stash(ctx context.Context) error {
	f.record("stash")
	return nil
}

func (f *fakeVCS) ResetHard(ctx context.Context, ref string) error {
	f.record("reset --hard " + ref)
	return nil
}

type fakePrompter struct {
	confirm bool
	answer  string
	err     error
}

func (p *fakePrompter) Confirm(msg string) bool { return p.confirm }

func (p *fakePrompter) Input(msg, def string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	if p.answer == "" {
		return def, nil
	}
	return p.answer, nil
}

type testApp struct {
	*app
	rec *logger.Recorder
	vcs *fakeVCS
	buf *bytes.Buffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	root := t.TempDir()
	syncDir := filepath.Join(root, ".vibe-sync")
	paths := config.Paths{
		ClaudeHome: filepath.Join(root, ".claude"),
		ClaudeJSON: filepath.Join(root, ".claude.json"),
		SyncDir:    syncDir,
		DataDir:    filepath.Join(syncDir, "data"),
		BackupDir:  filepath.Join(syncDir, "backups", "claude"),
	}
	require.NoError(t, os.MkdirAll(paths.ClaudeHome, 0755))

	rec := &logger.Recorder{}
	vcs := &fakeVCS{}
	buf := &bytes.Buffer{}
	return &testApp{
		app: &app{
			fs:     afero.NewOsFs(),
			paths:  paths,
			files:  config.DefaultFileSet(),
			log:    rec,
			prompt: &fakePrompter{err: prompt.ErrNotInteractive},
			tool:   plugins.Unavailable{},
			vcs:    vcs,
			out:    buf,
		},
		rec: rec,
		vcs: vcs,
		buf: buf,
	}
}

func (a *testApp) markInitialized(t *testing.T) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(a.paths.SyncDir, ".git"), 0755))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestExecuteInit(t *testing.T) {
	ctx := context.Background()

	t.Run("no remote and no terminal", func(t *testing.T) {
		a := newTestApp(t)
		err := executeInit(ctx, a.app, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--remote")
		assert.Empty(t, a.vcs.calls)
	})

	t.Run("invalid remote", func(t *testing.T) {
		a := newTestApp(t)
		err := executeInit(ctx, a.app, "not-a-url")
		assert.ErrorIs(t, err, &gitsync.SyncError{Type: gitsync.ErrorTypeInvalidURL})
		assert.Empty(t, a.vcs.calls)
	})

	t.Run("fresh setup", func(t *testing.T) {
		a := newTestApp(t)
		a.vcs.pullErr = errors.New("couldn't find remote ref")

		require.NoError(t, executeInit(ctx, a.app, "git@github.com:u/cfg.git"))

		assert.Equal(t, []string{
			"init",
			"remote add origin git@github.com:u/cfg.git",
			"pull origin main",
			"pull origin master",
			"branch -M main",
		}, a.vcs.calls)
		assert.Contains(t, readFile(t, filepath.Join(a.paths.SyncDir, ".gitignore")), "backups/")
	})

	t.Run("prompted remote", func(t *testing.T) {
		a := newTestApp(t)
		a.prompt = &fakePrompter{answer: "https://example.com/cfg.git"}

		require.NoError(t, executeInit(ctx, a.app, ""))
		assert.Contains(t, a.vcs.calls, "remote add origin https://example.com/cfg.git")
	})

	t.Run("already initialized keeps remote", func(t *testing.T) {
		a := newTestApp(t)
		a.markInitialized(t)
		a.vcs.remotes = []gitsync.Remote{{Name: "origin", FetchURL: "git@github.com:u/cfg.git"}}
		a.prompt = &fakePrompter{}

		require.NoError(t, executeInit(ctx, a.app, ""))
		assert.True(t, a.rec.Contains(logger.LevelInfo, "Current remote: git@github.com:u/cfg.git"))
		assert.True(t, a.rec.Contains(logger.LevelInfo, "Remote unchanged"))
		assert.Empty(t, a.vcs.calls)
	})

	t.Run("already initialized replaces remote", func(t *testing.T) {
		a := newTestApp(t)
		a.markInitialized(t)
		a.vcs.remotes = []gitsync.Remote{{Name: "origin", FetchURL: "git@github.com:u/cfg.git"}}

		require.NoError(t, executeInit(ctx, a.app, "git@github.com:u/other.git"))
		assert.Equal(t, []string{"remote set-url origin git@github.com:u/other.git"}, a.vcs.calls)
	})
}

func TestExecuteStatus(t *testing.T) {
	color.NoColor = true

	t.Run("no synced data", func(t *testing.T) {
		a := newTestApp(t)
		err := executeStatus(a.app)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "synced data not found")
	})

	t.Run("clean after export", func(t *testing.T) {
		a := newTestApp(t)
		writeFile(t, filepath.Join(a.paths.ClaudeHome, "CLAUDE.md"), "# rules\n")
		writeFile(t, filepath.Join(a.paths.ClaudeHome, "commands", "ship.md"), "ship it\n")
		require.NoError(t, executeExport(context.Background(), a.app))

		require.NoError(t, executeStatus(a.app))
		assert.Equal(t, "No differences found\n", a.buf.String())
	})

	t.Run("reports local edits", func(t *testing.T) {
		a := newTestApp(t)
		writeFile(t, filepath.Join(a.paths.ClaudeHome, "CLAUDE.md"), "# rules\n")
		require.NoError(t, executeExport(context.Background(), a.app))
		writeFile(t, filepath.Join(a.paths.ClaudeHome, "CLAUDE.md"), "# rules\nmore\n")

		require.NoError(t, executeStatus(a.app))
		out := a.buf.String()
		assert.Contains(t, out, "differs")
		assert.Contains(t, out, "+more")
	})
}

func TestExecutePush(t *testing.T) {
	ctx := context.Background()

	t.Run("requires init", func(t *testing.T) {
		a := newTestApp(t)
		assert.ErrorIs(t, executePush(ctx, a.app), errNotInitialized)
	})

	t.Run("exports commits and pushes", func(t *testing.T) {
		a := newTestApp(t)
		a.markInitialized(t)
		a.vcs.remotes = []gitsync.Remote{{Name: "origin", FetchURL: "git@github.com:u/cfg.git"}}
		writeFile(t, filepath.Join(a.paths.ClaudeHome, "settings.json"), `{"model":"opus"}`)

		require.NoError(t, executePush(ctx, a.app))

		assert.Equal(t, `{"model":"opus"}`, readFile(t, filepath.Join(a.paths.DataDir, "settings.json")))
		assert.Equal(t, []string{"add -A", "commit", "push origin main"}, a.vcs.calls)
	})
}

func TestExecutePull(t *testing.T) {
	ctx := context.Background()

	t.Run("requires init", func(t *testing.T) {
		a := newTestApp(t)
		assert.ErrorIs(t, executePull(ctx, a.app, importOptions(true, false)), errNotInitialized)
	})

	t.Run("dry run changes nothing locally", func(t *testing.T) {
		a := newTestApp(t)
		a.markInitialized(t)
		a.vcs.remotes = []gitsync.Remote{{Name: "origin", FetchURL: "git@github.com:u/cfg.git"}}
		writeFile(t, filepath.Join(a.paths.ClaudeHome, "CLAUDE.md"), "local\n")
		writeFile(t, filepath.Join(a.paths.DataDir, "CLAUDE.md"), "remote\n")

		require.NoError(t, executePull(ctx, a.app, importOptions(true, true)))

		assert.Equal(t, []string{"pull"}, a.vcs.calls)
		assert.Equal(t, "local\n", readFile(t, filepath.Join(a.paths.ClaudeHome, "CLAUDE.md")))
		assert.True(t, a.rec.Contains(logger.LevelInfo, "[dry-run] would"))
		assert.NoDirExists(t, a.paths.BackupDir)
	})

	t.Run("imports after pull", func(t *testing.T) {
		a := newTestApp(t)
		a.markInitialized(t)
		a.vcs.remotes = []gitsync.Remote{{Name: "origin", FetchURL: "git@github.com:u/cfg.git"}}
		writeFile(t, filepath.Join(a.paths.ClaudeHome, "CLAUDE.md"), "local\n")
		writeFile(t, filepath.Join(a.paths.DataDir, "CLAUDE.md"), "remote\n")

		require.NoError(t, executePull(ctx, a.app, importOptions(true, false)))

		assert.Equal(t, "remote\n", readFile(t, filepath.Join(a.paths.ClaudeHome, "CLAUDE.md")))
		names, err := backupStore(a.app).List()
		require.NoError(t, err)
		require.Len(t, names, 1)
		assert.Equal(t, "local\n", readFile(t, filepath.Join(a.paths.BackupDir, names[0], "CLAUDE.md")))
	})
}

func TestImportOptions(t *testing.T) {
	assert.True(t, importOptions(false, false).ReinstallPlugins)
	assert.False(t, importOptions(true, false).ReinstallPlugins)
	assert.True(t, importOptions(false, true).DryRun)
}

func TestExecuteRestore(t *testing.T) {
	t.Run("no backups", func(t *testing.T) {
		a := newTestApp(t)
		err := executeRestoreList(a.app)
		require.Error(t, err)
		assert.Equal(t, "No backups found", err.Error())
	})

	t.Run("lists newest ten", func(t *testing.T) {
		a := newTestApp(t)
		for day := 10; day <= 21; day++ {
			name := fmt.Sprintf("202501%02dT120000", day)
			require.NoError(t, os.MkdirAll(filepath.Join(a.paths.BackupDir, name), 0755))
		}

		require.NoError(t, executeRestoreList(a.app))

		out := a.buf.String()
		assert.Contains(t, out, "20250121T120000")
		assert.Contains(t, out, "2025-01-21 12:00:00")
		assert.Contains(t, out, "20250112T120000")
		assert.NotContains(t, out, "20250111T120000")
		assert.NotContains(t, out, "20250110T120000")
		assert.Contains(t, out, "... and 2 more")
	})

	t.Run("rejects path names", func(t *testing.T) {
		a := newTestApp(t)
		err := executeRestore(a.app, "../etc")
		assert.ErrorIs(t, err, &backup.BackupError{Type: backup.ErrorTypeInvalidName})
	})

	t.Run("restores a backup", func(t *testing.T) {
		a := newTestApp(t)
		name := "20250102T150405"
		writeFile(t, filepath.Join(a.paths.BackupDir, name, "CLAUDE.md"), "old\n")
		writeFile(t, filepath.Join(a.paths.ClaudeHome, "CLAUDE.md"), "new\n")

		require.NoError(t, executeRestore(a.app, name))
		assert.Equal(t, "old\n", readFile(t, filepath.Join(a.paths.ClaudeHome, "CLAUDE.md")))
	})
}

func TestRootCmd_Commands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"init", "export", "import", "status", "push", "pull", "restore", "config", "tidy"} {
		assert.Contains(t, names, want)
	}

	for _, c := range []string{"import", "pull"} {
		sub, _, err := rootCmd.Find([]string{c})
		require.NoError(t, err)
		assert.NotNil(t, sub.Flags().Lookup("no-plugins"), c)
		assert.NotNil(t, sub.Flags().Lookup("dry-run"), c)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().ShorthandLookup("v"))
	assert.True(t, strings.HasPrefix(rootCmd.Use, "vibe-sync"))
}

func TestExecuteTidy(t *testing.T) {
	a := newTestApp(t)
	skillsDir := filepath.Join(a.paths.ClaudeHome, "skills")
	require.NoError(t, os.MkdirAll(skillsDir, 0755))
	require.NoError(t, os.Symlink(filepath.Join(a.paths.ClaudeHome, "missing"), filepath.Join(skillsDir, "old")))

	require.NoError(t, executeTidy(context.Background(), a.app))
	assert.True(t, a.rec.Contains(logger.LevelOK, "Removed 1 of 1 dangling skill links"))

	require.NoError(t, executeTidy(context.Background(), a.app))
	assert.True(t, a.rec.Contains(logger.LevelInfo, "No dangling skill links found"))
}
