package types

import (
	"encoding/json"
)

// PluginsData mirrors plugins/installed_plugins.json. Every top-level member
// other than plugins, version included, is carried in Extra.
type PluginsData struct {
	// Plugins maps a plugin key to its install records. A key whose value is
	// not an array maps to nil, with the original value kept in Malformed.
	Plugins   map[string][]PluginEntry
	Malformed map[string]json.RawMessage
	Extra     map[string]json.RawMessage
}

// PluginEntry is one install record of a plugin. The typed fields hold
// non-empty strings only; any other value for those keys stays in Extra with
// the unknown keys, so a read-modify-write cycle does not change them.
type PluginEntry struct {
	Scope       string
	Version     string
	InstalledAt string
	LastUpdated string
	InstallPath string
	Extra       map[string]json.RawMessage
	// Raw holds a record that is not a JSON object. It is written back as is.
	Raw json.RawMessage
}

// MarketplacesData mirrors plugins/known_marketplaces.json, keyed by marketplace name.
type MarketplacesData map[string]MarketplaceEntry

// MarketplaceEntry describes one registered marketplace.
// A source that is not an object is left in Extra and Source stays nil.
type MarketplaceEntry struct {
	Source          *MarketplaceSource
	InstallLocation string
	LastUpdated     string
	Extra           map[string]json.RawMessage
	Raw             json.RawMessage
}

// MarketplaceSource tells where a marketplace comes from. Source is "github"
// when Repo is meaningful; any other value means URL is used. Like
// PluginEntry, only non-empty strings are typed.
type MarketplaceSource struct {
	Source string
	Repo   string
	URL    string
	Extra  map[string]json.RawMessage
}

// SettingsData holds the part of settings.json the plugin phase reads.
// Non-boolean enabledPlugins values are dropped on decode.
type SettingsData struct {
	EnabledPlugins map[string]bool
}

// ExistingPluginState is captured from the local machine before an import
// overwrites anything. It is only ever compared against.
type ExistingPluginState struct {
	Marketplaces MarketplacesData
	Plugins      *PluginsData
	Settings     *SettingsData
}

// SymlinkEntry records one externally linked skill directory.
type SymlinkEntry struct {
	Name   string `json:"name"`
	Target string `json:"target"`
}

// ExternalSkillsData is the manifest persisted next to the synced skills tree.
type ExternalSkillsData struct {
	Symlinks []SymlinkEntry `json:"symlinks"`
}

// HasMarketplace reports whether name is already registered locally.
func (s *ExistingPluginState) HasMarketplace(name string) bool {
	if s == nil || s.Marketplaces == nil {
		return false
	}
	_, ok := s.Marketplaces[name]
	return ok
}

// IsPluginInstalled reports whether key has at least one local install record
// carrying an install path. Key presence alone is not enough.
func (s *ExistingPluginState) IsPluginInstalled(key string) bool {
	if s == nil || s.Plugins == nil {
		return false
	}
	for _, entry := range s.Plugins.Plugins[key] {
		if entry.InstallPath != "" {
			return true
		}
	}
	return false
}

// IsPluginEnabled reports whether key is already enabled in local settings.
func (s *ExistingPluginState) IsPluginEnabled(key string) bool {
	if s == nil || s.Settings == nil {
		return false
	}
	return s.Settings.EnabledPlugins[key]
}
