// Package config resolves where vibe-sync reads and writes, and declares the
// catalog of artifacts that are synchronised.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	KeyClaudeHome    = "claude_home"
	KeyClaudeJSON    = "claude_json"
	KeySyncDir       = "sync_dir"
	KeyPluginTool    = "plugin_tool"
	KeyPluginTimeout = "plugin_timeout"
	KeyProbeTimeout  = "probe_timeout"

	configFileName = "config.json"
	dataDirName    = "data"
)

// Paths holds every root location a command touches.
type Paths struct {
	// ClaudeHome is the local configuration tree (~/.claude).
	ClaudeHome string
	// ClaudeJSON is the global document holding the mcpServers map (~/.claude.json).
	ClaudeJSON string
	// SyncDir is the git working tree (~/.vibe-sync).
	SyncDir string
	// DataDir is the synced tree inside SyncDir.
	DataDir string
	// BackupDir is the root under which timestamped backups are created.
	BackupDir string
}

// PluginToolConfig configures the external plugin-management executable.
type PluginToolConfig struct {
	Executable   string
	Timeout      time.Duration
	ProbeTimeout time.Duration
}

// SetDefaults registers defaults and environment bindings on v.
func SetDefaults(v *viper.Viper, home string) {
	v.SetDefault(KeyClaudeHome, filepath.Join(home, ".claude"))
	v.SetDefault(KeyClaudeJSON, filepath.Join(home, ".claude.json"))
	v.SetDefault(KeySyncDir, filepath.Join(home, ".vibe-sync"))
	v.SetDefault(KeyPluginTool, "claude")
	v.SetDefault(KeyPluginTimeout, "120s")
	v.SetDefault(KeyProbeTimeout, "5s")

	_ = v.BindEnv(KeyClaudeHome, "CLAUDE_HOME")
	_ = v.BindEnv(KeyClaudeJSON, "CLAUDE_JSON")
	_ = v.BindEnv(KeySyncDir, "VIBE_SYNC_DIR")
	_ = v.BindEnv(KeyPluginTool, "VIBE_SYNC_PLUGIN_TOOL")
}

// Load prepares v from the config file inside the sync directory, creating
// the file with defaults when it does not exist yet.
func Load(v *viper.Viper) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	SetDefaults(v, home)

	syncDir := v.GetString(KeySyncDir)
	configPath := filepath.Join(syncDir, configFileName)

	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := writeDefaultConfig(configPath); err != nil {
			return err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

func writeDefaultConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	defaultConfig := map[string]interface{}{
		KeyPluginTool:    "claude",
		KeyPluginTimeout: "120s",
		KeyProbeTimeout:  "5s",
	}

	data, err := json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ResolvePaths derives Paths from v.
func ResolvePaths(v *viper.Viper) Paths {
	syncDir := v.GetString(KeySyncDir)
	return Paths{
		ClaudeHome: v.GetString(KeyClaudeHome),
		ClaudeJSON: v.GetString(KeyClaudeJSON),
		SyncDir:    syncDir,
		DataDir:    filepath.Join(syncDir, dataDirName),
		BackupDir:  filepath.Join(syncDir, "backups", "claude"),
	}
}

// ResolvePluginTool derives the plugin tool settings from v.
func ResolvePluginTool(v *viper.Viper) PluginToolConfig {
	cfg := PluginToolConfig{
		Executable:   v.GetString(KeyPluginTool),
		Timeout:      v.GetDuration(KeyPluginTimeout),
		ProbeTimeout: v.GetDuration(KeyProbeTimeout),
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 5 * time.Second
	}
	return cfg
}

// IsInitialized reports whether the sync directory is a git working tree.
func (p Paths) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(p.SyncDir, ".git"))
	return err == nil
}
