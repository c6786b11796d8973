package config

// HistoryConfig selects where generation metadata records are kept
type HistoryConfig struct {
	Backend    string `json:"backend,omitempty" yaml:"backend,omitempty" validate:"omitempty,historybackend"`
	JSONPath   string `json:"json_path,omitempty" yaml:"json_path,omitempty" validate:"required_if=Backend json"`
	SQLitePath string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty" validate:"required_if=Backend sqlite"`
}

// NewDefaultHistoryConfig creates default history configuration
func NewDefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{
		Backend:    DefaultHistoryBackend,
		JSONPath:   DefaultHistoryJSONPath,
		SQLitePath: DefaultHistorySQLitePath,
	}
}
