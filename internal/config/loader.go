package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// GetConfigPath determines the configuration file path.
// Priority:
// 1. the provided path (from the --config flag)
// 2. SUNOBOT_CONFIG_PATH environment variable
// 3. config.yaml / config.json in the current working directory
// 4. config.yaml / config.json in the executable's directory
// Returns "" when nothing is found.
func GetConfigPath(configFilePathFlag string) string {
	if configFilePathFlag != "" && fileExists(configFilePathFlag) {
		return configFilePathFlag
	}

	if envPath := os.Getenv(EnvConfigPath); envPath != "" && fileExists(envPath) {
		return envPath
	}

	cwd, errCwd := os.Getwd()
	exeDir := ""
	if exePath, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exePath)
	}

	locations := []string{}
	if errCwd == nil {
		locations = append(locations, cwd)
	}
	if exeDir != "" && exeDir != cwd {
		locations = append(locations, exeDir)
	}

	for _, loc := range locations {
		for _, file := range []string{"config.yaml", "config.yml", "config.json"} {
			path := filepath.Join(loc, file)
			if fileExists(path) {
				return path
			}
		}
	}
	return ""
}

// LoadDotEnv loads a .env file from the working directory when one exists.
// Variables already present in the environment win.
func LoadDotEnv(logger zerolog.Logger) {
	if !fileExists(".env") {
		return
	}
	if err := godotenv.Load(".env"); err != nil {
		logger.Warn().Err(err).Msg("Failed to load .env file, continuing with process environment.")
	}
}

// ApplyEnvOverrides copies recognised environment variables onto cfg
func ApplyEnvOverrides(cfg *GlobalConfig) {
	if v, ok := lookupEnv(EnvHeadless); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.BrowserConfig.Headless = b
		}
	}
	if v, ok := lookupEnv(EnvChromePath); ok {
		cfg.BrowserConfig.ChromePath = v
	}
	if v, ok := lookupEnv(EnvStatePath); ok {
		cfg.SessionConfig.StatePath = v
	}
	if v, ok := lookupEnv(EnvDownloadDir); ok {
		cfg.SunoConfig.DownloadDir = v
	}
	if v, ok := lookupEnv(EnvLogLevel); ok {
		cfg.LogConfig.LogLevel = v
	}
	if v, ok := lookupEnv(EnvPort); ok {
		if _, err := strconv.Atoi(v); err == nil {
			cfg.ServerConfig.HTTPAddr = ":" + v
		}
	}
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
