package sanitize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smy-101/vibe-sync/internal/types"
)

const pluginsFixture = `{
  "version": 2,
  "plugins": {
    "formatter@official": [
      {
        "scope": "user",
        "version": "1.2.0",
        "installedAt": "2026-01-01T00:00:00Z",
        "lastUpdated": "2026-01-02T00:00:00Z",
        "installPath": "/home/alice/.claude/plugins/cache/formatter",
        "gitCommitSha": "abc123"
      },
      {
        "scope": "project",
        "installPath": "/work/repo/.claude/plugins/formatter"
      }
    ],
    "linter@community": []
  },
  "schema": {"kind": "registry"}
}`

const marketplacesFixture = `{
  "official": {
    "source": {"source": "github", "repo": "anthropics/claude-plugins"},
    "installLocation": "/home/alice/.claude/plugins/marketplaces/official",
    "lastUpdated": "2026-01-03T00:00:00Z",
    "autoUpdate": true
  },
  "internal": {
    "source": {"source": "git", "url": "https://git.example.com/plugins.git", "ref": "main"},
    "installLocation": "/home/alice/.claude/plugins/marketplaces/internal"
  }
}`

func decodePlugins(t *testing.T, raw string) *types.PluginsData {
	t.Helper()
	var data types.PluginsData
	require.NoError(t, json.Unmarshal([]byte(raw), &data))
	return &data
}

func decodeMarketplaces(t *testing.T, raw string) types.MarketplacesData {
	t.Helper()
	var data types.MarketplacesData
	require.NoError(t, json.Unmarshal([]byte(raw), &data))
	return data
}

func toGeneric(t *testing.T, v interface{}) map[string]interface{} {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestSanitizePlugins(t *testing.T) {
	t.Run("removes installPath from every entry", func(t *testing.T) {
		data := decodePlugins(t, pluginsFixture)

		result := SanitizePlugins(data)

		require.NotNil(t, result)
		for key, entries := range result.Plugins {
			for i, entry := range entries {
				assert.Empty(t, entry.InstallPath, "%s[%d]", key, i)
				assert.NotContains(t, entry.Extra, "installPath")
			}
		}
		out, err := json.Marshal(result)
		require.NoError(t, err)
		assert.NotContains(t, string(out), "installPath")
	})

	t.Run("preserves every other field", func(t *testing.T) {
		data := decodePlugins(t, pluginsFixture)

		got := toGeneric(t, SanitizePlugins(data))
		want := toGeneric(t, data)
		for _, entries := range want["plugins"].(map[string]interface{}) {
			for _, entry := range entries.([]interface{}) {
				delete(entry.(map[string]interface{}), "installPath")
			}
		}

		assert.Equal(t, want, got)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		data := decodePlugins(t, pluginsFixture)
		before := toGeneric(t, data)

		result := SanitizePlugins(data)
		result.Plugins["formatter@official"][0].Extra["gitCommitSha"] = json.RawMessage(`"changed"`)

		assert.Equal(t, before, toGeneric(t, data))
		assert.Equal(t, "/home/alice/.claude/plugins/cache/formatter",
			data.Plugins["formatter@official"][0].InstallPath)
	})

	t.Run("absent plugins keeps shape", func(t *testing.T) {
		data := decodePlugins(t, `{"version": 1}`)

		result := SanitizePlugins(data)

		assert.Nil(t, result.Plugins)
		assert.Equal(t, toGeneric(t, data), toGeneric(t, result))
	})

	t.Run("empty plugins map stays empty", func(t *testing.T) {
		data := decodePlugins(t, `{"plugins": {}}`)

		result := SanitizePlugins(data)

		require.NotNil(t, result.Plugins)
		assert.Empty(t, result.Plugins)
		assert.Equal(t, map[string]interface{}{"plugins": map[string]interface{}{}}, toGeneric(t, result))
	})

	t.Run("nil input", func(t *testing.T) {
		assert.Nil(t, SanitizePlugins(nil))
	})

	t.Run("keeps empty, null and odd values as written", func(t *testing.T) {
		data := decodePlugins(t, `{
  "version": 2.0,
  "plugins": {
    "a@m": [{"scope": "", "installPath": "/x", "lastUpdated": null, "version": 3, "gitCommitSha": "abc"}],
    "b@m": ["legacy", null],
    "c@m": {"scope": "user"}
  }
}`)

		out, err := json.Marshal(SanitizePlugins(data))
		require.NoError(t, err)

		assert.JSONEq(t, `{
  "version": 2.0,
  "plugins": {
    "a@m": [{"scope": "", "lastUpdated": null, "version": 3, "gitCommitSha": "abc"}],
    "b@m": ["legacy", null],
    "c@m": {"scope": "user"}
  }
}`, string(out))
	})
}

func TestSanitizeMarketplaces(t *testing.T) {
	t.Run("removes installLocation and keeps the rest", func(t *testing.T) {
		data := decodeMarketplaces(t, marketplacesFixture)

		got := toGeneric(t, SanitizeMarketplaces(data))

		official := got["official"].(map[string]interface{})
		assert.NotContains(t, official, "installLocation")
		assert.Equal(t, "2026-01-03T00:00:00Z", official["lastUpdated"])
		assert.Equal(t, true, official["autoUpdate"])
		assert.Equal(t, map[string]interface{}{"source": "github", "repo": "anthropics/claude-plugins"}, official["source"])

		internal := got["internal"].(map[string]interface{})
		assert.NotContains(t, internal, "installLocation")
		assert.Equal(t, "main", internal["source"].(map[string]interface{})["ref"])
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		data := decodeMarketplaces(t, marketplacesFixture)
		before := toGeneric(t, data)

		result := SanitizeMarketplaces(data)
		result["official"].Source.Repo = "someone/else"

		assert.Equal(t, before, toGeneric(t, data))
		assert.Equal(t, "anthropics/claude-plugins", data["official"].Source.Repo)
	})

	t.Run("does not invent or drop fields", func(t *testing.T) {
		data := decodeMarketplaces(t, `{
  "plain": {"source": {"repo": "o/r"}, "installLocation": "/y", "lastUpdated": ""},
  "odd": {"source": "github:o/r", "installLocation": null},
  "broken": 7
}`)

		out, err := json.Marshal(SanitizeMarketplaces(data))
		require.NoError(t, err)

		assert.JSONEq(t, `{
  "plain": {"source": {"repo": "o/r"}, "lastUpdated": ""},
  "odd": {"source": "github:o/r"},
  "broken": 7
}`, string(out))
	})

	t.Run("empty map", func(t *testing.T) {
		result := SanitizeMarketplaces(types.MarketplacesData{})
		require.NotNil(t, result)
		assert.Empty(t, result)
	})
}

func TestMCPServersHaveEnv(t *testing.T) {
	tests := []struct {
		name    string
		servers map[string]interface{}
		want    bool
	}{
		{name: "empty map", servers: map[string]interface{}{}, want: false},
		{name: "nil map", servers: nil, want: false},
		{
			name:    "no env",
			servers: map[string]interface{}{"a": map[string]interface{}{"command": "x"}},
			want:    false,
		},
		{
			name: "populated env",
			servers: map[string]interface{}{
				"a": map[string]interface{}{"command": "x", "env": map[string]interface{}{"K": "v"}},
			},
			want: true,
		},
		{
			name: "empty env object",
			servers: map[string]interface{}{
				"a": map[string]interface{}{"command": "x", "env": map[string]interface{}{}},
			},
			want: false,
		},
		{
			name:    "non-object server value",
			servers: map[string]interface{}{"a": "env", "b": []interface{}{"env"}},
			want:    false,
		},
		{
			name: "one of many servers has env",
			servers: map[string]interface{}{
				"a": map[string]interface{}{"command": "x"},
				"b": map[string]interface{}{"url": "https://mcp.example.com", "env": map[string]interface{}{"TOKEN": "secret"}},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MCPServersHaveEnv(tt.servers))
		})
	}
}
