package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *GlobalConfig)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *GlobalConfig) {},
		},
		{
			name:    "unknown log level",
			mutate:  func(cfg *GlobalConfig) { cfg.LogConfig.LogLevel = "verbose" },
			wantErr: "LogConfig.LogLevel': rule 'loglevel'",
		},
		{
			name:    "unknown log format",
			mutate:  func(cfg *GlobalConfig) { cfg.LogConfig.LogFormat = "xml" },
			wantErr: "rule 'logformat'",
		},
		{
			name:    "unknown history backend",
			mutate:  func(cfg *GlobalConfig) { cfg.HistoryConfig.Backend = "redis" },
			wantErr: "rule 'historybackend'",
		},
		{
			name: "sqlite backend requires a path",
			mutate: func(cfg *GlobalConfig) {
				cfg.HistoryConfig.Backend = "sqlite"
				cfg.HistoryConfig.SQLitePath = ""
			},
			wantErr: "HistoryConfig.SQLitePath': rule 'required_if'",
		},
		{
			name:    "unknown mcp transport",
			mutate:  func(cfg *GlobalConfig) { cfg.ServerConfig.MCPTransport = "sse" },
			wantErr: "rule 'mcptransport'",
		},
		{
			name:    "base url must be a url",
			mutate:  func(cfg *GlobalConfig) { cfg.SunoConfig.BaseURL = "suno" },
			wantErr: "SunoConfig.BaseURL': rule 'url'",
		},
		{
			name:    "create path must be absolute",
			mutate:  func(cfg *GlobalConfig) { cfg.SunoConfig.CreatePath = "create" },
			wantErr: "rule 'startswith'",
		},
		{
			name:    "poll attempts must be positive",
			mutate:  func(cfg *GlobalConfig) { cfg.SunoConfig.PollAttempts = 0 },
			wantErr: "SunoConfig.PollAttempts': rule 'min' (expected: 1)",
		},
		{
			name:    "state path required",
			mutate:  func(cfg *GlobalConfig) { cfg.SessionConfig.StatePath = "" },
			wantErr: "SessionConfig.StatePath': rule 'required'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultGlobalConfig()
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateConfig_AggregatesMessages(t *testing.T) {
	cfg := NewDefaultGlobalConfig()
	cfg.LogConfig.LogLevel = "loud"
	cfg.SunoConfig.InspectTop = 0

	err := ValidateConfig(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
	assert.Contains(t, err.Error(), "LogConfig.LogLevel")
	assert.Contains(t, err.Error(), "SunoConfig.InspectTop")
}
