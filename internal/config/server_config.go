package config

import "time"

// ServerConfig covers the HTTP API and the MCP tool server
type ServerConfig struct {
	HTTPAddr            string `json:"http_addr,omitempty" yaml:"http_addr,omitempty" validate:"required"`
	MCPTransport        string `json:"mcp_transport,omitempty" yaml:"mcp_transport,omitempty" validate:"omitempty,mcptransport"`
	MCPAddr             string `json:"mcp_addr,omitempty" yaml:"mcp_addr,omitempty"`
	EnableMetrics       bool   `json:"enable_metrics" yaml:"enable_metrics"`
	ReadTimeoutSecs     int    `json:"read_timeout_secs,omitempty" yaml:"read_timeout_secs,omitempty" validate:"min=0"`
	WriteTimeoutSecs    int    `json:"write_timeout_secs,omitempty" yaml:"write_timeout_secs,omitempty" validate:"min=0"`
	ShutdownTimeoutSecs int    `json:"shutdown_timeout_secs,omitempty" yaml:"shutdown_timeout_secs,omitempty" validate:"min=1"`
	RecentDefaultCount  int    `json:"recent_default_count,omitempty" yaml:"recent_default_count,omitempty" validate:"min=1"`
}

// NewDefaultServerConfig creates default server configuration
func NewDefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPAddr:            DefaultServerHTTPAddr,
		MCPTransport:        DefaultServerMCPTransport,
		MCPAddr:             DefaultServerMCPAddr,
		EnableMetrics:       true,
		ReadTimeoutSecs:     DefaultServerReadTimeoutSecs,
		WriteTimeoutSecs:    DefaultServerWriteTimeoutSecs,
		ShutdownTimeoutSecs: DefaultServerShutdownTimeoutSecs,
		RecentDefaultCount:  DefaultRecentDownloadCount,
	}
}

func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSecs) * time.Second
}

func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSecs) * time.Second
}

func (c ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSecs) * time.Second
}
