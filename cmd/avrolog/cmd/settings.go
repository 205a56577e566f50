package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/avrolog/pkg/config"
)

// loadConfig resolves the configuration for one invocation: the file named
// by --config when given, otherwise the default config path if a file
// exists there. Running without a config file is not an error; flag
// defaults apply.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadConfig(path)
	}
	path = config.GetDefaultConfigPath()
	if !config.ConfigExists(path) {
		return nil, nil
	}
	return config.LoadConfig(path)
}

// Flags changed on the command line win over the loaded config; a flag
// left at its default takes the config's value. Callers only consult these
// when a config was actually loaded.

func flagOrConfigString(cmd *cobra.Command, name, configValue string) string {
	if cmd.Flags().Changed(name) || configValue == "" {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return configValue
}

func flagOrConfigInt(cmd *cobra.Command, name string, configValue int) int {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetInt(name)
		return v
	}
	return configValue
}

func flagOrConfigBool(cmd *cobra.Command, name string, configValue bool) bool {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetBool(name)
		return v
	}
	return configValue
}
