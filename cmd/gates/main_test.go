package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, version+"\n", out.String())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gates.yaml")
	require.NoError(t, os.WriteFile(path, []byte("service_name: gates-test\nlogging:\n  level: warn\n"), 0o600))

	previous := configFile
	configFile = path
	t.Cleanup(func() { configFile = previous })

	cfg, logger, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "gates-test", cfg.ServiceName)
	assert.Equal(t, version, cfg.Version)
	assert.NotNil(t, logger)
}

func TestLoadConfig_BadFile(t *testing.T) {
	previous := configFile
	configFile = filepath.Join(t.TempDir(), "missing.yaml")
	t.Cleanup(func() { configFile = previous })

	_, _, err := loadConfig()
	assert.Error(t, err)
}
