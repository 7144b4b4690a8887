package gitsync

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/smy-101/vibe-sync/internal/fsutil"
	"github.com/smy-101/vibe-sync/internal/logger"
)

const (
	// DefaultRemote is the only remote the workflow manages.
	DefaultRemote = "origin"

	commitTimeFormat = "2006-01-02_15:04:05"
)

var (
	remoteURLPattern = regexp.MustCompile(`^(https?://|git@|ssh://|git://).+`)

	defaultBranches = []string{"main", "master"}

	gitignoreLines = []string{".DS_Store", "Thumbs.db", "backups/", "config.json"}
)

// ValidRemoteURL reports whether url looks like a git remote.
func ValidRemoteURL(url string) bool {
	return remoteURLPattern.MatchString(strings.TrimSpace(url))
}

// Syncer runs the git side of init, push and pull.
type Syncer struct {
	vcs    VersionControl
	fs     afero.Fs
	dir    string
	logger logger.Logger
	now    func() time.Time
}

// NewSyncer creates a Syncer for the sync directory dir.
func NewSyncer(vcs VersionControl, fs afero.Fs, dir string, log logger.Logger) *Syncer {
	if log == nil {
		log = logger.NoOp{}
	}
	return &Syncer{vcs: vcs, fs: fs, dir: dir, logger: log, now: time.Now}
}

// Setup turns dir into a repository tracking remoteURL. When the remote
// already has a main or master branch it is pulled.
func (s *Syncer) Setup(ctx context.Context, remoteURL string) error {
	if !ValidRemoteURL(remoteURL) {
		return &SyncError{Type: ErrorTypeInvalidURL, Message: "invalid git remote URL: " + remoteURL}
	}

	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return &SyncError{Type: ErrorTypeFilesystem, Message: "failed to create sync directory", Err: err}
	}
	if err := s.vcs.Init(ctx); err != nil {
		return &SyncError{Type: ErrorTypeGit, Message: "git init failed", Err: err}
	}
	if err := s.vcs.AddRemote(ctx, DefaultRemote, remoteURL); err != nil {
		return &SyncError{Type: ErrorTypeGit, Message: "failed to add remote", Err: err}
	}
	s.logger.OK("Initialized repository at " + s.dir)

	pulled := false
	for _, branch := range defaultBranches {
		if err := s.vcs.PullFrom(ctx, DefaultRemote, branch); err != nil {
			s.logger.Debug("Pull of "+branch+" failed", "error", err)
			continue
		}
		if err := s.vcs.SetUpstream(ctx, DefaultRemote, branch); err != nil {
			s.logger.Warn("Failed to set upstream for "+branch, "error", err)
		}
		s.logger.OK("Pulled existing configuration from " + DefaultRemote + "/" + branch)
		pulled = true
		break
	}
	if !pulled {
		if err := s.vcs.RenameBranch(ctx, defaultBranches[0]); err != nil {
			s.logger.Debug("Branch rename failed", "error", err)
		}
		s.logger.Info("Remote has no configuration yet; the first push will create it")
	}

	return s.ensureGitignore()
}

// UpdateRemote points origin at remoteURL, adding it when missing.
func (s *Syncer) UpdateRemote(ctx context.Context, remoteURL string) error {
	if !ValidRemoteURL(remoteURL) {
		return &SyncError{Type: ErrorTypeInvalidURL, Message: "invalid git remote URL: " + remoteURL}
	}

	current, err := s.RemoteURL(ctx)
	if err != nil {
		return err
	}
	if current == "" {
		err = s.vcs.AddRemote(ctx, DefaultRemote, remoteURL)
	} else {
		err = s.vcs.SetRemoteURL(ctx, DefaultRemote, remoteURL)
	}
	if err != nil {
		return &SyncError{Type: ErrorTypeGit, Message: "failed to update remote", Err: err}
	}
	s.logger.OK("Remote set to " + remoteURL)
	return s.ensureGitignore()
}

// RemoteURL returns the fetch URL of origin, or "" when it is not configured.
func (s *Syncer) RemoteURL(ctx context.Context) (string, error) {
	remotes, err := s.vcs.Remotes(ctx)
	if err != nil {
		return "", &SyncError{Type: ErrorTypeGit, Message: "failed to list remotes", Err: err}
	}
	for _, r := range remotes {
		if r.Name == DefaultRemote {
			return r.FetchURL, nil
		}
	}
	return "", nil
}

// CommitAndPush stages everything, commits when the tree is dirty and pushes
// when a remote is configured.
func (s *Syncer) CommitAndPush(ctx context.Context) error {
	if err := s.vcs.AddAll(ctx); err != nil {
		return &SyncError{Type: ErrorTypeGit, Message: "git add failed", Err: err}
	}

	clean, err := s.vcs.IsClean(ctx)
	if err != nil {
		return &SyncError{Type: ErrorTypeGit, Message: "git status failed", Err: err}
	}
	if clean {
		s.logger.Info("No changes to commit")
	} else {
		message := fmt.Sprintf("sync: update claude configs %s", s.now().Format(commitTimeFormat))
		if err := s.vcs.Commit(ctx, message); err != nil {
			return &SyncError{Type: ErrorTypeGit, Message: "git commit failed", Err: err}
		}
		s.logger.OK("Committed: " + message)
	}

	remote, err := s.RemoteURL(ctx)
	if err != nil {
		return err
	}
	if remote == "" {
		s.logger.Warn("No remote configured, skipping push")
		return nil
	}

	branch, err := s.vcs.CurrentBranch(ctx)
	if err != nil {
		return &SyncError{Type: ErrorTypeGit, Message: "failed to determine current branch", Err: err}
	}
	if err := s.vcs.Push(ctx, DefaultRemote, branch); err != nil {
		return &SyncError{Type: ErrorTypeGit, Message: "git push failed", Err: err}
	}
	s.logger.OK("Pushed to " + DefaultRemote + "/" + branch)
	return nil
}

// PullFromRemote brings the sync directory up to date with origin. When a
// plain pull fails the remote wins: local changes are stashed and the branch
// is hard-reset to the remote branch.
func (s *Syncer) PullFromRemote(ctx context.Context) error {
	remote, err := s.RemoteURL(ctx)
	if err != nil {
		return err
	}
	if remote == "" {
		return &SyncError{Type: ErrorTypeNoRemote, Message: "no remote configured, run vibe-sync init first"}
	}

	err = s.vcs.Pull(ctx)
	if err == nil {
		s.logger.OK("Pulled latest changes")
		return nil
	}
	s.logger.Debug("git pull failed", "error", err)

	branch, err := s.vcs.CurrentBranch(ctx)
	if err != nil {
		return &SyncError{Type: ErrorTypeGit, Message: "failed to determine current branch", Err: err}
	}

	if err := s.vcs.PullFrom(ctx, DefaultRemote, branch); err == nil {
		if err := s.vcs.SetUpstream(ctx, DefaultRemote, branch); err != nil {
			s.logger.Warn("Failed to set upstream", "error", err)
		}
		s.logger.OK("Pulled latest changes from " + DefaultRemote + "/" + branch)
		return nil
	}

	s.logger.Warn("Pull failed; resetting to " + DefaultRemote + "/" + branch + " (local changes are stashed)")
	if err := s.vcs.Stash(ctx); err != nil {
		s.logger.Warn("git stash failed", "error", err)
	}
	if err := s.vcs.Fetch(ctx, DefaultRemote); err != nil {
		return &SyncError{Type: ErrorTypeGit, Message: "git fetch failed", Err: err}
	}
	if err := s.vcs.ResetHard(ctx, DefaultRemote+"/"+branch); err != nil {
		return &SyncError{Type: ErrorTypeGit, Message: "git reset failed", Err: err}
	}
	if err := s.vcs.SetUpstream(ctx, DefaultRemote, branch); err != nil {
		s.logger.Warn("Failed to set upstream", "error", err)
	}
	s.logger.OK("Reset to " + DefaultRemote + "/" + branch)
	return nil
}

func (s *Syncer) ensureGitignore() error {
	path := filepath.Join(s.dir, ".gitignore")
	if fsutil.Exists(s.fs, path) {
		return nil
	}
	content := strings.Join(gitignoreLines, "\n") + "\n"
	if err := afero.WriteFile(s.fs, path, []byte(content), 0644); err != nil {
		return &SyncError{Type: ErrorTypeFilesystem, Message: "failed to write .gitignore", Err: err}
	}
	s.logger.Info("Created .gitignore")
	return nil
}
