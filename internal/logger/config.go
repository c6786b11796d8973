package logger

import "github.com/rs/zerolog"

// LogFormat names a console encoding
type LogFormat string

const (
	FormatConsole LogFormat = "console"
	FormatJSON    LogFormat = "json"
	// FormatText is the console layout without colours, for pipes and CI logs.
	FormatText LogFormat = "text"
)

func (lf LogFormat) String() string {
	return string(lf)
}

// LoggerConfig is the resolved logger setup. File output is on when FilePath is set.
type LoggerConfig struct {
	Level         zerolog.Level
	Format        LogFormat
	Service       string
	EnableConsole bool
	FilePath      string
	MaxSizeMB     int
	MaxBackups    int
}

func (c LoggerConfig) fileEnabled() bool {
	return c.FilePath != ""
}

// DefaultLoggerConfig logs info and above to stderr
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:         zerolog.InfoLevel,
		Format:        FormatConsole,
		Service:       "sunobot",
		EnableConsole: true,
		MaxSizeMB:     100,
		MaxBackups:    3,
	}
}
