// Package sanitize strips machine-local fields from plugin and marketplace
// registries before they leave the machine.
package sanitize

import (
	"encoding/json"

	"github.com/smy-101/vibe-sync/internal/types"
)

// SanitizePlugins returns a deep copy of data with installPath removed from
// every entry. data is not modified.
func SanitizePlugins(data *types.PluginsData) *types.PluginsData {
	if data == nil {
		return nil
	}

	result := &types.PluginsData{
		Malformed: cloneRaw(data.Malformed),
		Extra:     cloneRaw(data.Extra),
	}

	if data.Plugins != nil {
		result.Plugins = make(map[string][]types.PluginEntry, len(data.Plugins))
		for key, entries := range data.Plugins {
			if entries == nil {
				result.Plugins[key] = nil
				continue
			}
			copied := make([]types.PluginEntry, len(entries))
			for i, entry := range entries {
				entry.Extra = cloneRaw(entry.Extra)
				entry.Raw = cloneBytes(entry.Raw)
				entry.InstallPath = ""
				delete(entry.Extra, "installPath")
				copied[i] = entry
			}
			result.Plugins[key] = copied
		}
	}

	return result
}

// SanitizeMarketplaces returns a deep copy of data with installLocation
// removed from every entry. data is not modified.
func SanitizeMarketplaces(data types.MarketplacesData) types.MarketplacesData {
	if data == nil {
		return nil
	}

	result := make(types.MarketplacesData, len(data))
	for name, entry := range data {
		entry.Extra = cloneRaw(entry.Extra)
		entry.Raw = cloneBytes(entry.Raw)
		entry.InstallLocation = ""
		delete(entry.Extra, "installLocation")
		if entry.Source != nil {
			src := *entry.Source
			src.Extra = cloneRaw(src.Extra)
			entry.Source = &src
		}
		result[name] = entry
	}
	return result
}

// MCPServersHaveEnv reports whether any server record carries a populated
// env field. Values that are not objects count as env-free.
func MCPServersHaveEnv(servers map[string]interface{}) bool {
	for _, server := range servers {
		record, ok := server.(map[string]interface{})
		if !ok {
			continue
		}
		if hasValue(record["env"]) {
			return true
		}
	}
	return false
}

// hasValue treats null, empty strings and empty collections as unset.
func hasValue(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case map[string]interface{}:
		return len(val) > 0
	case []interface{}:
		return len(val) > 0
	case string:
		return val != ""
	default:
		return true
	}
}

func cloneRaw(src map[string]json.RawMessage) map[string]json.RawMessage {
	if src == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(src))
	for k, v := range src {
		out[k] = cloneBytes(v)
	}
	return out
}

func cloneBytes(src json.RawMessage) json.RawMessage {
	if src == nil {
		return nil
	}
	b := make(json.RawMessage, len(src))
	copy(b, src)
	return b
}
