package logger

import (
	"strings"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/common/errorwrapper"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/config"
	"github.com/rs/zerolog"
)

// ParseLevel parses string log level to zerolog.Level, defaulting to info
func ParseLevel(levelStr string) (zerolog.Level, error) {
	if strings.TrimSpace(levelStr) == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(levelStr))
	if err != nil {
		return zerolog.InfoLevel, errorwrapper.WrapError(err, "invalid log level")
	}
	return level, nil
}

// ParseFormat maps a configured format name to LogFormat, falling back to console
func ParseFormat(formatStr string) LogFormat {
	switch f := LogFormat(strings.ToLower(strings.TrimSpace(formatStr))); f {
	case FormatJSON, FormatText:
		return f
	default:
		return FormatConsole
	}
}

// ConvertConfig converts application config to logger config
func ConvertConfig(cfg config.LogConfig) LoggerConfig {
	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	out := DefaultLoggerConfig()
	out.Level = level
	out.Format = ParseFormat(cfg.LogFormat)
	out.FilePath = cfg.LogFile
	if cfg.ServiceName != "" {
		out.Service = cfg.ServiceName
	}
	if cfg.MaxLogSizeMB > 0 {
		out.MaxSizeMB = cfg.MaxLogSizeMB
	}
	if cfg.MaxLogBackups > 0 {
		out.MaxBackups = cfg.MaxLogBackups
	}
	return out
}
