package plugins

import (
	"github.com/spf13/afero"

	"github.com/smy-101/vibe-sync/internal/fsutil"
	"github.com/smy-101/vibe-sync/internal/types"
)

// CaptureExistingState reads the local registries and settings as they are
// right now. Documents that are missing or unreadable are left nil.
func CaptureExistingState(fs afero.Fs, marketplacesFile, pluginsFile, settingsFile string) *types.ExistingPluginState {
	state := &types.ExistingPluginState{}

	var marketplaces types.MarketplacesData
	if fsutil.DecodeJSON(fs, marketplacesFile, &marketplaces) == nil {
		state.Marketplaces = marketplaces
	}

	var plugins types.PluginsData
	if fsutil.DecodeJSON(fs, pluginsFile, &plugins) == nil {
		state.Plugins = &plugins
	}

	var settings types.SettingsData
	if fsutil.DecodeJSON(fs, settingsFile, &settings) == nil {
		state.Settings = &settings
	}

	return state
}
