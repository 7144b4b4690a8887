package reconcile

import (
	"context"

	"github.com/smy-101/vibe-sync/internal/fsutil"
	"github.com/smy-101/vibe-sync/internal/sanitize"
	"github.com/smy-101/vibe-sync/internal/types"
)

const mcpSecretsPrompt = "Some MCP servers define env values that may contain secrets. Export them anyway?"

// Export copies the local configuration into the synced tree. Each artifact
// is copied independently; a missing or unreadable one is skipped.
func (r *Reconciler) Export(ctx context.Context) error {
	if !fsutil.IsDir(r.fs, r.paths.ClaudeHome) {
		return &ReconcileError{
			Type:    ErrorTypeLocalRootMissing,
			Message: "local config directory not found: " + r.paths.ClaudeHome,
		}
	}

	if err := r.fs.MkdirAll(r.paths.DataDir, 0755); err != nil {
		return &ReconcileError{
			Type:    ErrorTypeFilesystem,
			Message: "failed to create synced data directory",
			Err:     err,
		}
	}

	r.logger.Info("Exporting local config to " + r.paths.DataDir)

	for _, f := range r.files.Files {
		src := r.localPath(f)
		if !fsutil.Exists(r.fs, src) {
			r.logger.Warn("Not found locally, skipping: " + f)
			continue
		}
		if err := fsutil.CopyFile(r.fs, src, r.syncedPath(f)); err != nil {
			r.logger.Warn("Failed to export "+f, "error", err)
			continue
		}
		r.logger.OK("Exported " + f)
	}

	for _, d := range r.files.Dirs {
		src := r.localPath(d)
		if !fsutil.IsDir(r.fs, src) {
			r.logger.Warn("Not found locally, skipping: " + d + "/")
			continue
		}
		if err := fsutil.CopyDirClean(r.fs, src, r.syncedPath(d)); err != nil {
			r.logger.Warn("Failed to export "+d+"/", "error", err)
			continue
		}
		r.logger.OK("Exported " + d + "/")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.ledger.Export(
		r.localPath(r.files.SkillsDir),
		r.syncedPath(r.files.SkillsDir),
		r.syncedPath(r.files.ExternalSkillsFile),
	); err != nil {
		r.logger.Warn("Failed to export skills", "error", err)
	}

	r.exportPlugins()
	r.exportMarketplaces()
	r.exportMCPServers()

	r.logger.OK("Export complete")
	return nil
}

func (r *Reconciler) exportPlugins() {
	rel := r.files.PluginsPath()
	src := r.localPath(rel)
	if !fsutil.Exists(r.fs, src) {
		r.logger.Info("No plugin registry found, skipping " + rel)
		return
	}

	var data types.PluginsData
	if err := fsutil.DecodeJSON(r.fs, src, &data); err != nil {
		r.logger.Warn("Cannot read plugin registry, skipping", "error", err)
		return
	}

	if err := fsutil.WriteJSON(r.fs, r.syncedPath(rel), sanitize.SanitizePlugins(&data)); err != nil {
		r.logger.Warn("Failed to export "+rel, "error", err)
		return
	}
	r.logger.OK("Exported " + rel + " (install paths removed)")
}

func (r *Reconciler) exportMarketplaces() {
	rel := r.files.MarketplacesPath()
	src := r.localPath(rel)
	if !fsutil.Exists(r.fs, src) {
		r.logger.Info("No marketplace registry found, skipping " + rel)
		return
	}

	var data types.MarketplacesData
	if err := fsutil.DecodeJSON(r.fs, src, &data); err != nil {
		r.logger.Warn("Cannot read marketplace registry, skipping", "error", err)
		return
	}
	if data == nil {
		r.logger.Warn("Marketplace registry is empty or null, skipping")
		return
	}

	if err := fsutil.WriteJSON(r.fs, r.syncedPath(rel), sanitize.SanitizeMarketplaces(data)); err != nil {
		r.logger.Warn("Failed to export "+rel, "error", err)
		return
	}
	r.logger.OK("Exported " + rel + " (install locations removed)")
}

func (r *Reconciler) exportMCPServers() {
	doc := fsutil.ReadJSONObject(r.fs, r.paths.ClaudeJSON)
	servers, ok := doc[mcpServersKey].(map[string]interface{})
	if !ok {
		r.logger.Info("No MCP servers found in " + r.paths.ClaudeJSON)
		return
	}

	if sanitize.MCPServersHaveEnv(servers) && !r.confirm(mcpSecretsPrompt) {
		r.logger.Warn("Skipped MCP server export; servers with env values were not confirmed")
		return
	}

	if err := fsutil.WriteJSON(r.fs, r.syncedPath(r.files.MCPFile), servers); err != nil {
		r.logger.Warn("Failed to export MCP servers", "error", err)
		return
	}
	r.logger.OK("Exported MCP servers", "count", len(servers))
}
