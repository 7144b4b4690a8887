package config

import "path"

// SyncFileSet is the catalog of artifacts that vibe-sync knows about. Export,
// import, backup, restore and status all consult the same value; anything not
// listed here is invisible to them. Entries are slash-separated paths relative
// to the local root and to the synced data directory.
type SyncFileSet struct {
	// Files are copied whole.
	Files []string
	// Dirs are copied as trees.
	Dirs []string
	// SkillsDir is handled by the symlink ledger.
	SkillsDir string
	// ExternalSkillsFile is the symlink manifest, relative to the data directory.
	ExternalSkillsFile string
	// PluginsDir holds the registries, relative to both roots.
	PluginsDir string
	// PluginsFile and MarketplacesFile are the registries inside PluginsDir.
	PluginsFile      string
	MarketplacesFile string
	// SettingsFile is the entry of Files that gets settings-shaped handling.
	SettingsFile string
	// MCPFile is the synced copy of the global mcpServers map.
	MCPFile string
	// MCPBackupFile is the name the global MCP document gets inside a backup.
	MCPBackupFile string
}

// DefaultFileSet returns the catalog used in production.
func DefaultFileSet() SyncFileSet {
	return SyncFileSet{
		Files:              []string{"settings.json", "CLAUDE.md"},
		Dirs:               []string{"commands", "agents"},
		SkillsDir:          "skills",
		ExternalSkillsFile: "external-skills.json",
		PluginsDir:         "plugins",
		PluginsFile:        "installed_plugins.json",
		MarketplacesFile:   "known_marketplaces.json",
		SettingsFile:       "settings.json",
		MCPFile:            "mcp-servers.json",
		MCPBackupFile:      ".claude.json",
	}
}

// PluginFiles lists the registry paths relative to a root.
func (s SyncFileSet) PluginFiles() []string {
	return []string{
		path.Join(s.PluginsDir, s.PluginsFile),
		path.Join(s.PluginsDir, s.MarketplacesFile),
	}
}

// PluginsPath returns the installed-plugins registry path relative to a root.
func (s SyncFileSet) PluginsPath() string {
	return path.Join(s.PluginsDir, s.PluginsFile)
}

// MarketplacesPath returns the marketplace registry path relative to a root.
func (s SyncFileSet) MarketplacesPath() string {
	return path.Join(s.PluginsDir, s.MarketplacesFile)
}
