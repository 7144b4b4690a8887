package reconcile

import (
	"context"
	"sort"

	"github.com/smy-101/vibe-sync/internal/fsutil"
)

const mcpServersKey = "mcpServers"

// planMCPMerge adds synced MCP servers whose names are missing locally.
// Servers already defined locally are never touched, and the local document
// is only rewritten when something is added.
func (r *Reconciler) planMCPMerge() []action {
	src := r.syncedPath(r.files.MCPFile)
	if !fsutil.Exists(r.fs, src) {
		return nil
	}

	synced, ok := fsutil.ReadJSONSafe(r.fs, src).(map[string]interface{})
	if !ok {
		r.logger.Warn("Synced MCP servers are not a JSON object, skipping: " + r.files.MCPFile)
		return nil
	}

	var doc map[string]interface{}
	if fsutil.Exists(r.fs, r.paths.ClaudeJSON) {
		doc = fsutil.ReadJSONObject(r.fs, r.paths.ClaudeJSON)
		if doc == nil {
			r.logger.Warn("Cannot parse " + r.paths.ClaudeJSON + ", skipping MCP merge")
			return nil
		}
	} else {
		doc = map[string]interface{}{}
	}

	local := map[string]interface{}{}
	if raw, present := doc[mcpServersKey]; present {
		existing, isObject := raw.(map[string]interface{})
		if !isObject {
			r.logger.Warn("Local " + mcpServersKey + " is not an object, skipping MCP merge")
			return nil
		}
		local = existing
	}

	var added []string
	for name := range synced {
		if _, exists := local[name]; !exists {
			added = append(added, name)
		}
	}
	if len(added) == 0 {
		r.logger.Info("MCP servers already up to date")
		return nil
	}
	sort.Strings(added)

	lines := make([]string, 0, len(added))
	for _, name := range added {
		lines = append(lines, "add MCP server "+name)
	}

	return []action{{
		lines: lines,
		run: func(context.Context) error {
			for _, name := range added {
				local[name] = synced[name]
			}
			doc[mcpServersKey] = local
			if err := fsutil.WriteJSON(r.fs, r.paths.ClaudeJSON, doc); err != nil {
				return err
			}
			r.logger.OK("Merged MCP servers", "added", len(added))
			return nil
		},
	}}
}
