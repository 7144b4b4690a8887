package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smy-101/vibe-sync/internal/config"
)

var configKeys = []string{
	config.KeyClaudeHome,
	config.KeyClaudeJSON,
	config.KeySyncDir,
	config.KeyPluginTool,
	config.KeyPluginTimeout,
	config.KeyProbeTimeout,
}

// configMu serializes writes to the config file.
var configMu sync.Mutex

func init() {
	configCmd.AddCommand(configListCmd, configGetCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeConfigList(cmd.OutOrStdout())
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every configuration value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeConfigList(cmd.OutOrStdout())
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeConfigGet(cmd.OutOrStdout(), args[0])
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return executeConfigSet(args[0], args[1])
	},
}

func executeConfigList(out io.Writer) error {
	fmt.Fprintln(out, "config file:", viper.ConfigFileUsed())
	for _, key := range configKeys {
		fmt.Fprintf(out, "%s: %s\n", key, viper.GetString(key))
	}
	return nil
}

func executeConfigGet(out io.Writer, key string) error {
	if err := checkConfigKey(key); err != nil {
		return err
	}
	fmt.Fprintln(out, viper.GetString(key))
	return nil
}

// executeConfigSet stores value under key and rewrites the config file.
func executeConfigSet(key, value string) error {
	if err := checkConfigKey(key); err != nil {
		return err
	}

	configMu.Lock()
	defer configMu.Unlock()

	viper.Set(key, value)
	if err := viper.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func checkConfigKey(key string) error {
	for _, k := range configKeys {
		if k == key {
			return nil
		}
	}
	return fmt.Errorf("unknown config key %q (valid keys: %v)", key, configKeys)
}
