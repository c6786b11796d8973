package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultGlobalConfig(t *testing.T) {
	cfg := NewDefaultGlobalConfig()

	require.NotNil(t, cfg)
	assert.True(t, cfg.BrowserConfig.Headless)
	assert.Equal(t, "data/auth.json", cfg.SessionConfig.StatePath)
	assert.Equal(t, "https://suno.com/create", cfg.SunoConfig.CreateURL())
	assert.Equal(t, 60, cfg.SunoConfig.PollAttempts)
	assert.Equal(t, 4, cfg.SunoConfig.InspectTop)
	assert.Equal(t, 2, cfg.SunoConfig.ExpectedResults)
	assert.Equal(t, 20, cfg.SunoConfig.SnapshotLimit)
	assert.Equal(t, "./downloads", cfg.SunoConfig.DownloadDir)
	assert.Equal(t, "json", cfg.HistoryConfig.Backend)
	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoadGlobalConfig_NoConfigFile(t *testing.T) {
	cfg, err := LoadGlobalConfig("", zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, DefaultSunoBaseURL, cfg.SunoConfig.BaseURL)
}

func TestLoadGlobalConfig_NonExistentFile(t *testing.T) {
	cfg, err := LoadGlobalConfig("/nonexistent/config.json", zerolog.Nop())

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config file does not exist")
}

func TestLoadGlobalConfig_JSONFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.json")
	configData := `{
		"browser_config": {"headless": false},
		"suno_config": {"poll_attempts": 10, "download_dir": "/tmp/songs"},
		"log_config": {"log_level": "debug"}
	}`
	require.NoError(t, os.WriteFile(configFile, []byte(configData), 0644))

	cfg, err := LoadGlobalConfig(configFile, zerolog.Nop())

	require.NoError(t, err)
	assert.False(t, cfg.BrowserConfig.Headless)
	assert.Equal(t, 10, cfg.SunoConfig.PollAttempts)
	assert.Equal(t, "/tmp/songs", cfg.SunoConfig.DownloadDir)
	assert.Equal(t, "debug", cfg.LogConfig.LogLevel)
	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultSunoInspectTop, cfg.SunoConfig.InspectTop)
}

func TestLoadGlobalConfig_YAMLFile(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.yaml")
	configData := `
session_config:
  state_path: /var/lib/sunobot/auth.json
  lifetime_minutes: 30
history_config:
  backend: sqlite
server_config:
  mcp_transport: http
`
	require.NoError(t, os.WriteFile(configFile, []byte(configData), 0644))

	cfg, err := LoadGlobalConfig(configFile, zerolog.Nop())

	require.NoError(t, err)
	assert.Equal(t, "/var/lib/sunobot/auth.json", cfg.SessionConfig.StatePath)
	assert.Equal(t, 30, cfg.SessionConfig.LifetimeMinutes)
	assert.Equal(t, "sqlite", cfg.HistoryConfig.Backend)
	assert.Equal(t, "http", cfg.ServerConfig.MCPTransport)
}

func TestLoadGlobalConfig_InvalidJSON(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(configFile, []byte(`{"suno_config": `), 0644))

	cfg, err := LoadGlobalConfig(configFile, zerolog.Nop())

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to unmarshal JSON")
}

func TestLoadGlobalConfig_EnvOverrides(t *testing.T) {
	t.Setenv(EnvHeadless, "false")
	t.Setenv(EnvStatePath, "/secrets/auth.json")
	t.Setenv(EnvDownloadDir, "/music")
	t.Setenv(EnvPort, "4000")

	cfg, err := LoadGlobalConfig("", zerolog.Nop())

	require.NoError(t, err)
	assert.False(t, cfg.BrowserConfig.Headless)
	assert.Equal(t, "/secrets/auth.json", cfg.SessionConfig.StatePath)
	assert.Equal(t, "/music", cfg.SunoConfig.DownloadDir)
	assert.Equal(t, ":4000", cfg.ServerConfig.HTTPAddr)
}

func TestApplyEnvOverrides_IgnoresMalformedValues(t *testing.T) {
	t.Setenv(EnvHeadless, "sometimes")
	t.Setenv(EnvPort, "eighty")
	cfg := NewDefaultGlobalConfig()

	ApplyEnvOverrides(cfg)

	assert.True(t, cfg.BrowserConfig.Headless)
	assert.Equal(t, DefaultServerHTTPAddr, cfg.ServerConfig.HTTPAddr)
}

func TestIsYAMLFile(t *testing.T) {
	tests := []struct {
		ext  string
		want bool
	}{
		{".yaml", true},
		{".yml", true},
		{".json", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			assert.Equal(t, tt.want, isYAMLFile(tt.ext))
		})
	}
}

func TestSaveGlobalConfig_RoundTripYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := NewDefaultGlobalConfig()
	cfg.SunoConfig.PlayProbe = true

	require.NoError(t, SaveGlobalConfig(cfg, path))

	loaded, err := LoadGlobalConfig(path, zerolog.Nop())
	require.NoError(t, err)
	assert.True(t, loaded.SunoConfig.PlayProbe)
}
