package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/common/errorwrapper"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const maxConfigFileSize = 10 * 1024 * 1024

// GlobalConfig contains all configuration sections for the application
type GlobalConfig struct {
	BrowserConfig BrowserConfig `json:"browser_config,omitempty" yaml:"browser_config,omitempty"`
	SessionConfig SessionConfig `json:"session_config,omitempty" yaml:"session_config,omitempty"`
	SunoConfig    SunoConfig    `json:"suno_config,omitempty" yaml:"suno_config,omitempty"`
	HistoryConfig HistoryConfig `json:"history_config,omitempty" yaml:"history_config,omitempty"`
	ServerConfig  ServerConfig  `json:"server_config,omitempty" yaml:"server_config,omitempty"`
	LogConfig     LogConfig     `json:"log_config,omitempty" yaml:"log_config,omitempty"`
}

// NewDefaultGlobalConfig creates a new GlobalConfig with default values
func NewDefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		BrowserConfig: NewDefaultBrowserConfig(),
		SessionConfig: NewDefaultSessionConfig(),
		SunoConfig:    NewDefaultSunoConfig(),
		HistoryConfig: NewDefaultHistoryConfig(),
		ServerConfig:  NewDefaultServerConfig(),
		LogConfig:     NewDefaultLogConfig(),
	}
}

// LoadGlobalConfig loads the configuration from a file or default locations,
// then applies .env and environment overrides.
// YAML is used if the file extension is .yaml or .yml, JSON otherwise.
func LoadGlobalConfig(providedPath string, logger zerolog.Logger) (*GlobalConfig, error) {
	cfg := NewDefaultGlobalConfig()

	if providedPath != "" && !fileExists(providedPath) {
		return nil, errorwrapper.NewValidationError("config_file", providedPath, "config file does not exist")
	}

	LoadDotEnv(logger)

	filePath := GetConfigPath(providedPath)
	if filePath != "" {
		data, err := loadConfigFileContent(filePath)
		if err != nil {
			return nil, errorwrapper.WrapError(err, "failed to load config file content")
		}

		if err := parseConfigContent(data, filePath, cfg); err != nil {
			return nil, errorwrapper.WrapError(err, "failed to parse config content")
		}
		logger.Debug().Str("path", filePath).Msg("Configuration file loaded.")
	}

	ApplyEnvOverrides(cfg)
	return cfg, nil
}

// loadConfigFileContent reads the config file, refusing oversized input
func loadConfigFileContent(filePath string) ([]byte, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxConfigFileSize {
		return nil, errorwrapper.NewError("config file %s exceeds %d bytes", filePath, maxConfigFileSize)
	}
	return os.ReadFile(filePath)
}

// parseConfigContent parses the config content based on file extension
func parseConfigContent(data []byte, filePath string, cfg *GlobalConfig) error {
	ext := filepath.Ext(filePath)
	if isYAMLFile(ext) {
		return parseYAMLConfig(data, filePath, cfg)
	}
	return parseJSONConfig(data, filePath, cfg)
}

// isYAMLFile checks if the file extension indicates a YAML file
func isYAMLFile(ext string) bool {
	return ext == ".yaml" || ext == ".yml"
}

func parseYAMLConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal YAML from '%s': %w", filePath, err)
	}
	return nil
}

func parseJSONConfig(data []byte, filePath string, cfg *GlobalConfig) error {
	if err := json.Unmarshal(data, cfg); err != nil {
		return errorwrapper.NewError("failed to unmarshal JSON from '%s': %w", filePath, err)
	}
	return nil
}

// SaveGlobalConfig writes cfg as YAML or JSON depending on the file extension
func SaveGlobalConfig(cfg *GlobalConfig, filePath string) error {
	var (
		data []byte
		err  error
	)
	if isYAMLFile(filepath.Ext(filePath)) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
	}
	if err != nil {
		return errorwrapper.WrapError(err, "failed to marshal config")
	}

	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errorwrapper.WrapErrorf(err, "failed to create config directory %s", dir)
		}
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return errorwrapper.WrapErrorf(err, "failed to write config file %s", filePath)
	}
	return nil
}
