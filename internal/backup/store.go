// Package backup snapshots the local configuration tree before an import and
// restores snapshots by name.
package backup

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/smy-101/vibe-sync/internal/config"
	"github.com/smy-101/vibe-sync/internal/fsutil"
	"github.com/smy-101/vibe-sync/internal/logger"
)

// TimestampFormat names backup directories. It sorts lexicographically.
const TimestampFormat = "20060102T150405"

// Store creates, lists and restores backups under paths.BackupDir.
type Store struct {
	fs     afero.Fs
	paths  config.Paths
	files  config.SyncFileSet
	logger logger.Logger
	now    func() time.Time
}

// NewStore creates a Store. A nil log discards output.
func NewStore(fs afero.Fs, paths config.Paths, files config.SyncFileSet, log logger.Logger) *Store {
	if log == nil {
		log = logger.NoOp{}
	}
	return &Store{
		fs:     fs,
		paths:  paths,
		files:  files,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// artifact maps one catalog entry between the local tree and a backup.
type artifact struct {
	name  string
	local string
	dir   bool
}

func (s *Store) artifacts() []artifact {
	var out []artifact
	for _, f := range s.files.Files {
		out = append(out, artifact{name: f, local: s.localPath(f)})
	}
	for _, d := range s.files.Dirs {
		out = append(out, artifact{name: d, local: s.localPath(d), dir: true})
	}
	out = append(out, artifact{name: s.files.SkillsDir, local: s.localPath(s.files.SkillsDir), dir: true})
	for _, f := range s.files.PluginFiles() {
		out = append(out, artifact{name: f, local: s.localPath(f)})
	}
	out = append(out, artifact{name: s.files.MCPBackupFile, local: s.paths.ClaudeJSON})
	return out
}

func (s *Store) localPath(rel string) string {
	return filepath.Join(s.paths.ClaudeHome, filepath.FromSlash(rel))
}

// Create snapshots every catalog artifact present locally and returns the new
// backup's name. Absent artifacts are skipped.
func (s *Store) Create() (string, error) {
	name := s.now().Format(TimestampFormat)
	dir := filepath.Join(s.paths.BackupDir, name)

	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return "", &BackupError{
			Type:    ErrorTypeFilesystem,
			Message: "failed to create backup directory",
			Err:     err,
		}
	}

	copied := 0
	for _, a := range s.artifacts() {
		if !fsutil.Exists(s.fs, a.local) {
			continue
		}
		dst := filepath.Join(dir, filepath.FromSlash(a.name))
		if err := copyArtifact(s.fs, a.local, dst, a.dir); err != nil {
			s.logger.Warn("Failed to back up "+a.name, "error", err)
			continue
		}
		copied++
	}

	s.logger.OK("Backup created: "+name, "artifacts", copied)
	return name, nil
}

// List returns backup names, newest first. A missing backup root yields an
// empty list.
func (s *Store) List() ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.paths.BackupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, &BackupError{
			Type:    ErrorTypeFilesystem,
			Message: "failed to read backup directory",
			Err:     err,
		}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// Restore copies every artifact found in backup name over its local location.
// Directories are merged with overwrite; artifacts absent from the backup are
// left alone. The name is checked before any filesystem access.
func (s *Store) Restore(name string) error {
	dir, err := s.resolve(name)
	if err != nil {
		return err
	}

	if !fsutil.IsDir(s.fs, dir) {
		return &BackupError{
			Type:    ErrorTypeNotFound,
			Message: "Backup not found: " + name,
		}
	}

	restored := 0
	for _, a := range s.artifacts() {
		src := filepath.Join(dir, filepath.FromSlash(a.name))
		if !fsutil.Exists(s.fs, src) {
			continue
		}
		if err := copyArtifact(s.fs, src, a.local, a.dir); err != nil {
			s.logger.Error("Failed to restore "+a.name, err)
			continue
		}
		s.logger.Info("Restored " + a.name)
		restored++
	}

	s.logger.OK("Restored from backup: "+name, "artifacts", restored)
	return nil
}

// resolve maps a backup name to its directory, rejecting anything that is not
// a single path element inside the backup root.
func (s *Store) resolve(name string) (string, error) {
	invalid := &BackupError{
		Type:    ErrorTypeInvalidName,
		Message: "Invalid backup name: " + name,
	}

	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", invalid
	}

	root := filepath.Clean(s.paths.BackupDir)
	dir := filepath.Join(root, name)
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel != name || strings.HasPrefix(rel, "..") {
		return "", invalid
	}
	return dir, nil
}

func copyArtifact(fs afero.Fs, src, dst string, dir bool) error {
	if dir {
		return fsutil.CopyDir(fs, src, dst)
	}
	return fsutil.CopyFile(fs, src, dst)
}
