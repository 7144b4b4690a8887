package gitsync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/smy-101/vibe-sync/internal/logger"
)

type mockVCS struct {
	mock.Mock
}

func (m *mockVCS) Init(ctx context.Context) error { return m.Called().Error(0) }
func (m *mockVCS) AddRemote(ctx context.Context, name, url string) error {
	return m.Called(name, url).Error(0)
}
func (m *mockVCS) SetRemoteURL(ctx context.Context, name, url string) error {
	return m.Called(name, url).Error(0)
}
func (m *mockVCS) Remotes(ctx context.Context) ([]Remote, error) {
	args := m.Called()
	return args.Get(0).([]Remote), args.Error(1)
}
func (m *mockVCS) CurrentBranch(ctx context.Context) (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}
func (m *mockVCS) RenameBranch(ctx context.Context, name string) error {
	return m.Called(name).Error(0)
}
func (m *mockVCS) Pull(ctx context.Context) error { return m.Called().Error(0) }
func (m *mockVCS) PullFrom(ctx context.Context, remote, branch string) error {
	return m.Called(remote, branch).Error(0)
}
func (m *mockVCS) SetUpstream(ctx context.Context, remote, branch string) error {
	return m.Called(remote, branch).Error(0)
}
func (m *mockVCS) AddAll(ctx context.Context) error { return m.Called().Error(0) }
func (m *mockVCS) IsClean(ctx context.Context) (bool, error) {
	args := m.Called()
	return args.Bool(0), args.Error(1)
}
func (m *mockVCS) Commit(ctx context.Context, message string) error {
	return m.Called(message).Error(0)
}
func (m *mockVCS) Push(ctx context.Context, remote, branch string) error {
	return m.Called(remote, branch).Error(0)
}
func (m *mockVCS) Fetch(ctx context.Context, remote string) error { return m.Called(remote).Error(0) }
func (m *mockVCS) Stash(ctx context.Context) error                { return m.Called().Error(0) }
func (m *mockVCS) ResetHard(ctx context.Context, ref string) error {
	return m.Called(ref).Error(0)
}

var (
	errGit = errors.New("exit status 1")
	origin = []Remote{{Name: "origin", FetchURL: "git@github.com:u/cfg.git"}}
)

func newSyncer(vcs VersionControl) (*Syncer, afero.Fs, *logger.Recorder) {
	fs := afero.NewMemMapFs()
	log := &logger.Recorder{}
	s := NewSyncer(vcs, fs, "/home/u/.vibe-sync", log)
	s.now = func() time.Time { return time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC) }
	return s, fs, log
}

func TestValidRemoteURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://github.com/u/cfg.git", true},
		{"http://git.local/cfg.git", true},
		{"git@github.com:u/cfg.git", true},
		{"ssh://git@host/cfg.git", true},
		{"git://host/cfg.git", true},
		{"github.com/u/cfg", false},
		{"https://", false},
		{"", false},
		{"file:///tmp/repo", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidRemoteURL(tt.url))
		})
	}
}

func TestSyncer_Setup(t *testing.T) {
	t.Run("pulls master when main is missing", func(t *testing.T) {
		vcs := &mockVCS{}
		vcs.On("Init").Return(nil)
		vcs.On("AddRemote", "origin", "git@github.com:u/cfg.git").Return(nil)
		vcs.On("PullFrom", "origin", "main").Return(errGit)
		vcs.On("PullFrom", "origin", "master").Return(nil)
		vcs.On("SetUpstream", "origin", "master").Return(nil)
		s, fs, _ := newSyncer(vcs)

		require.NoError(t, s.Setup(context.Background(), "git@github.com:u/cfg.git"))

		vcs.AssertExpectations(t)
		vcs.AssertNotCalled(t, "RenameBranch", mock.Anything)
		content, err := afero.ReadFile(fs, "/home/u/.vibe-sync/.gitignore")
		require.NoError(t, err)
		assert.Equal(t, ".DS_Store\nThumbs.db\nbackups/\nconfig.json\n", string(content))
	})

	t.Run("empty remote renames the branch to main", func(t *testing.T) {
		vcs := &mockVCS{}
		vcs.On("Init").Return(nil)
		vcs.On("AddRemote", "origin", "https://github.com/u/cfg.git").Return(nil)
		vcs.On("PullFrom", "origin", mock.Anything).Return(errGit)
		vcs.On("RenameBranch", "main").Return(nil)
		s, _, log := newSyncer(vcs)

		require.NoError(t, s.Setup(context.Background(), "https://github.com/u/cfg.git"))

		vcs.AssertExpectations(t)
		assert.True(t, log.Contains(logger.LevelInfo, "first push will create it"))
	})

	t.Run("keeps an existing gitignore", func(t *testing.T) {
		vcs := &mockVCS{}
		vcs.On("Init").Return(nil)
		vcs.On("AddRemote", mock.Anything, mock.Anything).Return(nil)
		vcs.On("PullFrom", "origin", "main").Return(nil)
		vcs.On("SetUpstream", "origin", "main").Return(nil)
		s, fs, _ := newSyncer(vcs)
		require.NoError(t, afero.WriteFile(fs, "/home/u/.vibe-sync/.gitignore", []byte("custom\n"), 0644))

		require.NoError(t, s.Setup(context.Background(), "git@github.com:u/cfg.git"))

		content, err := afero.ReadFile(fs, "/home/u/.vibe-sync/.gitignore")
		require.NoError(t, err)
		assert.Equal(t, "custom\n", string(content))
	})

	t.Run("rejects invalid URL before touching anything", func(t *testing.T) {
		vcs := &mockVCS{}
		s, fs, _ := newSyncer(vcs)

		err := s.Setup(context.Background(), "not-a-url")

		assert.True(t, errors.Is(err, &SyncError{Type: ErrorTypeInvalidURL}))
		vcs.AssertNotCalled(t, "Init")
		exists, _ := afero.DirExists(fs, "/home/u/.vibe-sync")
		assert.False(t, exists)
	})
}

func TestSyncer_UpdateRemote(t *testing.T) {
	vcs := &mockVCS{}
	vcs.On("Remotes").Return(origin, nil)
	vcs.On("SetRemoteURL", "origin", "https://github.com/u/new.git").Return(nil)
	s, _, _ := newSyncer(vcs)

	require.NoError(t, s.UpdateRemote(context.Background(), "https://github.com/u/new.git"))

	vcs.AssertExpectations(t)
	vcs.AssertNotCalled(t, "AddRemote", mock.Anything, mock.Anything)
}

func TestSyncer_CommitAndPush(t *testing.T) {
	t.Run("commits dirty tree and pushes", func(t *testing.T) {
		vcs := &mockVCS{}
		vcs.On("AddAll").Return(nil)
		vcs.On("IsClean").Return(false, nil)
		vcs.On("Commit", "sync: update claude configs 2026-02-03_04:05:06").Return(nil)
		vcs.On("Remotes").Return(origin, nil)
		vcs.On("CurrentBranch").Return("main", nil)
		vcs.On("Push", "origin", "main").Return(nil)
		s, _, _ := newSyncer(vcs)

		require.NoError(t, s.CommitAndPush(context.Background()))

		vcs.AssertExpectations(t)
	})

	t.Run("clean tree skips the commit", func(t *testing.T) {
		vcs := &mockVCS{}
		vcs.On("AddAll").Return(nil)
		vcs.On("IsClean").Return(true, nil)
		vcs.On("Remotes").Return(origin, nil)
		vcs.On("CurrentBranch").Return("main", nil)
		vcs.On("Push", "origin", "main").Return(nil)
		s, _, _ := newSyncer(vcs)

		require.NoError(t, s.CommitAndPush(context.Background()))

		vcs.AssertNotCalled(t, "Commit", mock.Anything)
	})

	t.Run("no remote warns and skips push", func(t *testing.T) {
		vcs := &mockVCS{}
		vcs.On("AddAll").Return(nil)
		vcs.On("IsClean").Return(false, nil)
		vcs.On("Commit", mock.Anything).Return(nil)
		vcs.On("Remotes").Return([]Remote{}, nil)
		s, _, log := newSyncer(vcs)

		require.NoError(t, s.CommitAndPush(context.Background()))

		vcs.AssertNotCalled(t, "Push", mock.Anything, mock.Anything)
		assert.True(t, log.Contains(logger.LevelWarn, "No remote configured"))
	})

	t.Run("push failure is returned", func(t *testing.T) {
		vcs := &mockVCS{}
		vcs.On("AddAll").Return(nil)
		vcs.On("IsClean").Return(true, nil)
		vcs.On("Remotes").Return(origin, nil)
		vcs.On("CurrentBranch").Return("main", nil)
		vcs.On("Push", "origin", "main").Return(errGit)
		s, _, _ := newSyncer(vcs)

		err := s.CommitAndPush(context.Background())

		assert.True(t, errors.Is(err, &SyncError{Type: ErrorTypeGit}))
		assert.ErrorIs(t, err, errGit)
	})
}

func TestSyncer_PullFromRemote(t *testing.T) {
	t.Run("requires a remote", func(t *testing.T) {
		vcs := &mockVCS{}
		vcs.On("Remotes").Return([]Remote{}, nil)
		s, _, _ := newSyncer(vcs)

		err := s.PullFromRemote(context.Background())

		assert.True(t, errors.Is(err, &SyncError{Type: ErrorTypeNoRemote}))
		vcs.AssertNotCalled(t, "Pull")
	})

	t.Run("plain pull", func(t *testing.T) {
		vcs := &mockVCS{}
		vcs.On("Remotes").Return(origin, nil)
		vcs.On("Pull").Return(nil)
		s, _, _ := newSyncer(vcs)

		require.NoError(t, s.PullFromRemote(context.Background()))

		vcs.AssertNotCalled(t, "PullFrom", mock.Anything, mock.Anything)
	})

	t.Run("falls back to explicit branch", func(t *testing.T) {
		vcs := &mockVCS{}
		vcs.On("Remotes").Return(origin, nil)
		vcs.On("Pull").Return(errGit)
		vcs.On("CurrentBranch").Return("main", nil)
		vcs.On("PullFrom", "origin", "main").Return(nil)
		vcs.On("SetUpstream", "origin", "main").Return(nil)
		s, _, _ := newSyncer(vcs)

		require.NoError(t, s.PullFromRemote(context.Background()))

		vcs.AssertExpectations(t)
		vcs.AssertNotCalled(t, "ResetHard", mock.Anything)
	})

	t.Run("diverged history stashes and resets", func(t *testing.T) {
		vcs := &mockVCS{}
		vcs.On("Remotes").Return(origin, nil)
		vcs.On("Pull").Return(errGit)
		vcs.On("CurrentBranch").Return("main", nil)
		vcs.On("PullFrom", "origin", "main").Return(errGit)
		vcs.On("Stash").Return(nil)
		vcs.On("Fetch", "origin").Return(nil)
		vcs.On("ResetHard", "origin/main").Return(nil)
		vcs.On("SetUpstream", "origin", "main").Return(nil)
		s, _, log := newSyncer(vcs)

		require.NoError(t, s.PullFromRemote(context.Background()))

		vcs.AssertExpectations(t)
		assert.True(t, log.Contains(logger.LevelWarn, "local changes are stashed"))
	})

	t.Run("fetch failure is fatal", func(t *testing.T) {
		vcs := &mockVCS{}
		vcs.On("Remotes").Return(origin, nil)
		vcs.On("Pull").Return(errGit)
		vcs.On("CurrentBranch").Return("main", nil)
		vcs.On("PullFrom", "origin", "main").Return(errGit)
		vcs.On("Stash").Return(errGit)
		vcs.On("Fetch", "origin").Return(errGit)
		s, _, _ := newSyncer(vcs)

		err := s.PullFromRemote(context.Background())

		require.Error(t, err)
		vcs.AssertNotCalled(t, "ResetHard", mock.Anything)
	})
}
