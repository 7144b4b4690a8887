// Package skills synchronises the skills tree. Real skill directories are
// copied as content; skills that are symlinks to directories elsewhere are
// recorded in a manifest instead and recreated as links on import.
package skills

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/smy-101/vibe-sync/internal/fsutil"
	"github.com/smy-101/vibe-sync/internal/logger"
	"github.com/smy-101/vibe-sync/internal/types"
)

// Ledger copies skill directories and keeps the external-link manifest.
type Ledger struct {
	fs     afero.Fs
	logger logger.Logger
}

// NewLedger creates a Ledger on fs. A nil log discards output.
func NewLedger(fs afero.Fs, log logger.Logger) *Ledger {
	if log == nil {
		log = logger.NoOp{}
	}
	return &Ledger{fs: fs, logger: log}
}

// Export copies every real skill directory under srcDir into destDir and
// records every symlinked skill in the manifest at manifestPath. The manifest
// is rewritten from scratch on each call. A missing srcDir only warns.
func (l *Ledger) Export(srcDir, destDir, manifestPath string) error {
	if !fsutil.IsDir(l.fs, srcDir) {
		l.logger.Warn("Skills directory not found: " + srcDir)
		return nil
	}

	if err := l.fs.MkdirAll(destDir, 0755); err != nil {
		return &LedgerError{
			Type:    ErrorTypeFilesystem,
			Message: "failed to create skills destination",
			Err:     err,
		}
	}

	entries, err := afero.ReadDir(l.fs, srcDir)
	if err != nil {
		return &LedgerError{
			Type:    ErrorTypeFilesystem,
			Message: "failed to read skills directory",
			Err:     err,
		}
	}

	symlinks := []types.SymlinkEntry{}
	for _, entry := range entries {
		name := entry.Name()
		fullPath := filepath.Join(srcDir, name)

		if fsutil.IsSymlink(l.fs, fullPath) {
			target, err := l.readlink(fullPath)
			if err != nil {
				l.logger.Warn("Failed to read skill link, skipping: "+name, "error", err)
				continue
			}
			symlinks = append(symlinks, types.SymlinkEntry{Name: name, Target: target})

			// A copy left by an earlier export would shadow the link on import.
			stale := filepath.Join(destDir, name)
			if fsutil.Exists(l.fs, stale) {
				if err := l.fs.RemoveAll(stale); err != nil {
					l.logger.Warn("Failed to remove stale skill copy: "+name, "error", err)
				}
			}
			l.logger.Info("Recorded external skill: "+name, "target", target)
			continue
		}

		if !entry.IsDir() {
			continue
		}

		if err := fsutil.CopyDirClean(l.fs, fullPath, filepath.Join(destDir, name)); err != nil {
			l.logger.Warn("Failed to export skill: "+name, "error", err)
			continue
		}
		l.logger.Info("Exported skill: " + name)
	}

	if err := fsutil.WriteJSON(l.fs, manifestPath, types.ExternalSkillsData{Symlinks: symlinks}); err != nil {
		return &LedgerError{
			Type:    ErrorTypeManifest,
			Message: "failed to write external skills manifest",
			Err:     err,
		}
	}

	l.logger.OK("Skills exported", "external", len(symlinks))
	return nil
}

// ImportPlan lists what Import would do.
type ImportPlan struct {
	// Dirs are skill directories to copy.
	Dirs []string
	// Shadowed are synced directories skipped because the local entry is a link.
	Shadowed []string
	// Links are manifest entries whose target resolves.
	Links []types.SymlinkEntry
	// Unresolved are manifest entries whose target does not exist.
	Unresolved []types.SymlinkEntry
	// Invalid are manifest entries with unusable names.
	Invalid []types.SymlinkEntry
}

// PlanImport computes the import actions without touching the filesystem.
func (l *Ledger) PlanImport(srcDir, destDir, manifestPath string) (*ImportPlan, error) {
	plan := &ImportPlan{}

	if fsutil.IsDir(l.fs, srcDir) {
		entries, err := afero.ReadDir(l.fs, srcDir)
		if err != nil {
			return nil, &LedgerError{
				Type:    ErrorTypeFilesystem,
				Message: "failed to read synced skills directory",
				Err:     err,
			}
		}
		for _, entry := range entries {
			if !entry.IsDir() || fsutil.IsSymlink(l.fs, filepath.Join(srcDir, entry.Name())) {
				continue
			}
			if fsutil.IsSymlink(l.fs, filepath.Join(destDir, entry.Name())) {
				plan.Shadowed = append(plan.Shadowed, entry.Name())
				continue
			}
			plan.Dirs = append(plan.Dirs, entry.Name())
		}
	}

	manifest, err := l.readManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	sort.Strings(plan.Dirs)

	for _, link := range manifest.Symlinks {
		if !validName(link.Name) || link.Target == "" {
			plan.Invalid = append(plan.Invalid, link)
			continue
		}
		target := ResolveTarget(destDir, link.Target)
		if _, err := l.fs.Stat(target); err != nil && !arriving(plan.Dirs, destDir, target) {
			plan.Unresolved = append(plan.Unresolved, link)
			continue
		}
		plan.Links = append(plan.Links, link)
	}

	return plan, nil
}

// arriving reports whether target lies inside one of the skill directories
// the same import copies into destDir.
func arriving(dirs []string, destDir, target string) bool {
	for _, name := range dirs {
		rel, err := filepath.Rel(filepath.Join(destDir, name), filepath.Clean(target))
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// Import copies every synced skill directory into destDir and recreates the
// external links recorded in the manifest. Links whose target is missing are
// skipped with a warning.
func (l *Ledger) Import(srcDir, destDir, manifestPath string) error {
	plan, err := l.PlanImport(srcDir, destDir, manifestPath)
	if err != nil {
		return err
	}
	return l.Apply(plan, srcDir, destDir)
}

// Apply performs plan.
func (l *Ledger) Apply(plan *ImportPlan, srcDir, destDir string) error {
	if err := l.fs.MkdirAll(destDir, 0755); err != nil {
		return &LedgerError{
			Type:    ErrorTypeFilesystem,
			Message: "failed to create skills directory",
			Err:     err,
		}
	}

	for _, name := range plan.Dirs {
		if err := fsutil.CopyDirClean(l.fs, filepath.Join(srcDir, name), filepath.Join(destDir, name)); err != nil {
			l.logger.Warn("Failed to import skill: "+name, "error", err)
			continue
		}
		l.logger.Info("Imported skill: " + name)
	}

	for _, name := range plan.Shadowed {
		l.logger.Warn("Local skill is an external link, not overwriting: " + name)
	}

	for _, link := range plan.Invalid {
		l.logger.Warn("Invalid external skill entry, skipping", "name", link.Name, "target", link.Target)
	}

	// Targets are checked again now that the synced directories are in place.
	links := append([]types.SymlinkEntry{}, plan.Links...)
	for _, link := range plan.Unresolved {
		if _, err := l.fs.Stat(ResolveTarget(destDir, link.Target)); err == nil {
			links = append(links, link)
			continue
		}
		l.logger.Warn("External skill target not found, skipping: "+link.Name, "target", link.Target)
	}

	for _, link := range links {
		if err := l.relink(destDir, link); err != nil {
			l.logger.Warn("Failed to recreate external skill: "+link.Name, "error", err)
			continue
		}
		l.logger.Info("Linked external skill: "+link.Name, "target", link.Target)
	}
	return nil
}

// DanglingLinks returns the symlinks directly under dir whose target is gone.
func (l *Ledger) DanglingLinks(dir string) ([]types.SymlinkEntry, error) {
	entries, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &LedgerError{
			Type:    ErrorTypeFilesystem,
			Message: "failed to read skills directory",
			Err:     err,
		}
	}

	var dangling []types.SymlinkEntry
	for _, entry := range entries {
		fullPath := filepath.Join(dir, entry.Name())
		if !fsutil.IsSymlink(l.fs, fullPath) {
			continue
		}
		if _, err := l.fs.Stat(fullPath); err == nil {
			continue
		}
		target, _ := l.readlink(fullPath)
		dangling = append(dangling, types.SymlinkEntry{Name: entry.Name(), Target: target})
	}
	return dangling, nil
}

// ResolveTarget resolves a recorded link target against the skills directory
// that will contain the link.
func ResolveTarget(destDir, target string) string {
	if filepath.IsAbs(target) {
		return target
	}
	return filepath.Join(destDir, target)
}

func (l *Ledger) relink(destDir string, link types.SymlinkEntry) error {
	linker, ok := l.fs.(afero.Linker)
	if !ok {
		return &LedgerError{
			Type:    ErrorTypeUnsupported,
			Message: "filesystem does not support symlinks",
		}
	}

	linkPath := filepath.Join(destDir, link.Name)
	if fsutil.Exists(l.fs, linkPath) {
		if err := l.fs.RemoveAll(linkPath); err != nil {
			return &LedgerError{
				Type:    ErrorTypeFilesystem,
				Message: fmt.Sprintf("failed to remove existing entry at %s", linkPath),
				Err:     err,
			}
		}
	}

	// The recorded target string is used verbatim so relative links stay relative.
	if err := linker.SymlinkIfPossible(link.Target, linkPath); err != nil {
		return &LedgerError{
			Type:    ErrorTypeFilesystem,
			Message: "failed to create symlink",
			Err:     err,
		}
	}
	return nil
}

func (l *Ledger) readlink(path string) (string, error) {
	reader, ok := l.fs.(afero.LinkReader)
	if !ok {
		return "", &LedgerError{
			Type:    ErrorTypeUnsupported,
			Message: "filesystem cannot read symlinks",
		}
	}
	return reader.ReadlinkIfPossible(path)
}

func (l *Ledger) readManifest(manifestPath string) (*types.ExternalSkillsData, error) {
	manifest := &types.ExternalSkillsData{}
	if !fsutil.Exists(l.fs, manifestPath) {
		return manifest, nil
	}
	if err := fsutil.DecodeJSON(l.fs, manifestPath, manifest); err != nil {
		l.logger.Warn("External skills manifest is unreadable, skipping links", "error", err)
		return &types.ExternalSkillsData{}, nil
	}
	return manifest, nil
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
