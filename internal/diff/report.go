// Package diff compares the local configuration with the synced tree for the
// status command. It walks the same catalog as export and import.
package diff

import (
	"bytes"
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/afero"

	"github.com/smy-101/vibe-sync/internal/config"
	"github.com/smy-101/vibe-sync/internal/fsutil"
	"github.com/smy-101/vibe-sync/internal/sanitize"
	"github.com/smy-101/vibe-sync/internal/skills"
	"github.com/smy-101/vibe-sync/internal/types"
)

// State classifies one compared artifact.
type State int

const (
	StateSame State = iota
	StateOnlySynced
	StateOnlyLocal
	StateDiffers
)

func (s State) String() string {
	switch s {
	case StateOnlySynced:
		return "exists in repo but not locally"
	case StateOnlyLocal:
		return "exists locally but not in repo"
	case StateDiffers:
		return "differs"
	default:
		return "same"
	}
}

// Entry is one artifact that is not in sync.
type Entry struct {
	// Name is the slash-separated path relative to both roots.
	Name  string
	State State
	// Diff is a unified diff from repo to local, set for differing text.
	Diff string
}

// Report is the outcome of a comparison.
type Report struct {
	Entries []Entry
	// Dangling are local skill links whose target no longer exists.
	Dangling []types.SymlinkEntry
}

// Clean reports whether nothing differs.
func (r *Report) Clean() bool {
	return len(r.Entries) == 0
}

// Comparer builds Reports.
type Comparer struct {
	fs     afero.Fs
	paths  config.Paths
	files  config.SyncFileSet
	ledger *skills.Ledger
}

// NewComparer creates a Comparer.
func NewComparer(fs afero.Fs, paths config.Paths, files config.SyncFileSet) *Comparer {
	return &Comparer{fs: fs, paths: paths, files: files, ledger: skills.NewLedger(fs, nil)}
}

// Compare walks every catalog artifact and collects the ones that differ.
func (c *Comparer) Compare() (*Report, error) {
	report := &Report{}

	for _, f := range c.files.Files {
		c.compareFile(report, f, c.local(f), c.synced(f))
	}

	for _, d := range append(append([]string{}, c.files.Dirs...), c.files.SkillsDir) {
		if err := c.compareTree(report, d, c.local(d), c.synced(d)); err != nil {
			return nil, err
		}
	}

	c.compareJSON(report, c.files.PluginsPath(), c.localPlugins(), c.readNormalized(c.synced(c.files.PluginsPath())))
	c.compareJSON(report, c.files.MarketplacesPath(), c.localMarketplaces(), c.readNormalized(c.synced(c.files.MarketplacesPath())))
	c.compareJSON(report, c.files.MCPFile, c.localMCPServers(), c.readNormalized(c.synced(c.files.MCPFile)))

	dangling, err := c.ledger.DanglingLinks(c.local(c.files.SkillsDir))
	if err != nil {
		return nil, err
	}
	report.Dangling = dangling

	return report, nil
}

func (c *Comparer) local(rel string) string {
	return filepath.Join(c.paths.ClaudeHome, filepath.FromSlash(rel))
}

func (c *Comparer) synced(rel string) string {
	return filepath.Join(c.paths.DataDir, filepath.FromSlash(rel))
}

func (c *Comparer) compareFile(report *Report, name, localPath, syncedPath string) {
	localData, localErr := afero.ReadFile(c.fs, localPath)
	syncedData, syncedErr := afero.ReadFile(c.fs, syncedPath)
	c.compareContent(report, name, localData, localErr == nil, syncedData, syncedErr == nil)
}

func (c *Comparer) compareContent(report *Report, name string, localData []byte, hasLocal bool, syncedData []byte, hasSynced bool) {
	switch {
	case !hasLocal && !hasSynced:
		return
	case !hasLocal:
		report.Entries = append(report.Entries, Entry{Name: name, State: StateOnlySynced})
	case !hasSynced:
		report.Entries = append(report.Entries, Entry{Name: name, State: StateOnlyLocal})
	default:
		a, b := normalizeEOL(syncedData), normalizeEOL(localData)
		if a == b {
			return
		}
		report.Entries = append(report.Entries, Entry{
			Name:  name,
			State: StateDiffers,
			Diff:  UnifiedDiff(name, a, b),
		})
	}
}

// compareTree compares every regular file under two directories. OS artifacts
// and symlinks are ignored.
func (c *Comparer) compareTree(report *Report, name, localDir, syncedDir string) error {
	localFiles, err := c.listFiles(localDir)
	if err != nil {
		return err
	}
	syncedFiles, err := c.listFiles(syncedDir)
	if err != nil {
		return err
	}

	union := map[string]bool{}
	for rel := range localFiles {
		union[rel] = true
	}
	for rel := range syncedFiles {
		union[rel] = true
	}
	names := make([]string, 0, len(union))
	for rel := range union {
		names = append(names, rel)
	}
	sort.Strings(names)

	for _, rel := range names {
		full := filepath.FromSlash(rel)
		c.compareFile(report, path.Join(name, rel), filepath.Join(localDir, full), filepath.Join(syncedDir, full))
	}
	return nil
}

func (c *Comparer) listFiles(root string) (map[string]bool, error) {
	files := map[string]bool{}
	if !fsutil.IsDir(c.fs, root) {
		return files, nil
	}

	err := afero.Walk(c.fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if fsutil.IsOSArtifact(info.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		files[filepath.ToSlash(rel)] = true
		return nil
	})
	return files, err
}

// jsonDoc is a normalized JSON rendering; ok is false when the source is
// missing. Unparseable sources keep their raw text.
type jsonDoc struct {
	text string
	ok   bool
}

func (c *Comparer) compareJSON(report *Report, name string, local, synced jsonDoc) {
	c.compareContent(report, name, []byte(local.text), local.ok, []byte(synced.text), synced.ok)
}

func (c *Comparer) readNormalized(p string) jsonDoc {
	data, err := afero.ReadFile(c.fs, p)
	if err != nil {
		return jsonDoc{}
	}
	if v := fsutil.ReadJSONSafe(c.fs, p); v != nil {
		return render(v)
	}
	return jsonDoc{text: string(data), ok: true}
}

func (c *Comparer) localPlugins() jsonDoc {
	p := c.local(c.files.PluginsPath())
	var data types.PluginsData
	if fsutil.DecodeJSON(c.fs, p, &data) != nil {
		return c.readNormalized(p)
	}
	return renderTyped(sanitize.SanitizePlugins(&data))
}

func (c *Comparer) localMarketplaces() jsonDoc {
	p := c.local(c.files.MarketplacesPath())
	var data types.MarketplacesData
	if fsutil.DecodeJSON(c.fs, p, &data) != nil || data == nil {
		return c.readNormalized(p)
	}
	return renderTyped(sanitize.SanitizeMarketplaces(data))
}

func (c *Comparer) localMCPServers() jsonDoc {
	doc := fsutil.ReadJSONObject(c.fs, c.paths.ClaudeJSON)
	servers, ok := doc["mcpServers"].(map[string]interface{})
	if !ok {
		return jsonDoc{}
	}
	return render(servers)
}

// renderTyped round-trips a typed value through a generic one so both sides
// of a comparison are rendered the same way.
func renderTyped(v interface{}) jsonDoc {
	data, err := json.Marshal(v)
	if err != nil {
		return jsonDoc{}
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var generic interface{}
	if err := dec.Decode(&generic); err != nil {
		return jsonDoc{}
	}
	return render(generic)
}

func render(v interface{}) jsonDoc {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return jsonDoc{}
	}
	return jsonDoc{text: string(data) + "\n", ok: true}
}

func normalizeEOL(data []byte) string {
	return strings.ReplaceAll(string(data), "\r\n", "\n")
}

// UnifiedDiff renders a unified diff from the synced text a to the local
// text b.
func UnifiedDiff(name, a, b string) string {
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "repo/" + name,
		ToFile:   "local/" + name,
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return out
}
