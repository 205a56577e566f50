package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/ssargent/avrolog/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettingsTestCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", "", "")
	cmd.Flags().String("data-dir", "./data", "")
	cmd.Flags().Int("batch-size", 1, "")
	cmd.Flags().Bool("strict", false, "")
	return cmd
}

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()

	saved := config.DefaultConfig()
	saved.DataDir = filepath.Join(tmpDir, "data")
	saved.Security.APIKey = "saved-api-key"
	saved.Defaults.BatchSize = 16
	saved.Defaults.StrictMarkers = true

	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, config.SaveConfig(saved, configPath))

	t.Run("explicit config flag", func(t *testing.T) {
		cmd := newSettingsTestCommand()
		require.NoError(t, cmd.Flags().Set("config", configPath))

		cfg, err := loadConfig(cmd)
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, saved.DataDir, cfg.DataDir)
		assert.Equal(t, "saved-api-key", cfg.Security.APIKey)
		assert.Equal(t, 16, cfg.Defaults.BatchSize)
		assert.True(t, cfg.Defaults.StrictMarkers)
	})

	t.Run("explicit config flag with missing file", func(t *testing.T) {
		cmd := newSettingsTestCommand()
		require.NoError(t, cmd.Flags().Set("config", filepath.Join(tmpDir, "nope.yaml")))

		_, err := loadConfig(cmd)
		assert.Error(t, err)
	})

	t.Run("no config file at default path", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())

		cmd := newSettingsTestCommand()
		cfg, err := loadConfig(cmd)
		require.NoError(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("config file at default path", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)

		defaultPath := config.GetDefaultConfigPath()
		require.NoError(t, os.MkdirAll(filepath.Dir(defaultPath), 0750))
		require.NoError(t, config.SaveConfig(saved, defaultPath))

		cmd := newSettingsTestCommand()
		cfg, err := loadConfig(cmd)
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, "saved-api-key", cfg.Security.APIKey)
	})
}

func TestFlagOrConfig(t *testing.T) {
	t.Run("unset flags take config values", func(t *testing.T) {
		cmd := newSettingsTestCommand()
		assert.Equal(t, "/from/config", flagOrConfigString(cmd, "data-dir", "/from/config"))
		assert.Equal(t, 32, flagOrConfigInt(cmd, "batch-size", 32))
		assert.True(t, flagOrConfigBool(cmd, "strict", true))
	})

	t.Run("changed flags win over config values", func(t *testing.T) {
		cmd := newSettingsTestCommand()
		require.NoError(t, cmd.Flags().Set("data-dir", "/from/flag"))
		require.NoError(t, cmd.Flags().Set("batch-size", "8"))
		require.NoError(t, cmd.Flags().Set("strict", "false"))

		assert.Equal(t, "/from/flag", flagOrConfigString(cmd, "data-dir", "/from/config"))
		assert.Equal(t, 8, flagOrConfigInt(cmd, "batch-size", 32))
		assert.False(t, flagOrConfigBool(cmd, "strict", true))
	})

	t.Run("empty config string falls back to the flag default", func(t *testing.T) {
		cmd := newSettingsTestCommand()
		assert.Equal(t, "./data", flagOrConfigString(cmd, "data-dir", ""))
	})
}
