package config

import "time"

// SessionConfig controls persistence and rotation of the authenticated browser session
type SessionConfig struct {
	StatePath        string `json:"state_path,omitempty" yaml:"state_path,omitempty" validate:"required"`
	LifetimeMinutes  int    `json:"lifetime_minutes,omitempty" yaml:"lifetime_minutes,omitempty" validate:"min=0"`
	MinFreeMemoryMB  int    `json:"min_free_memory_mb,omitempty" yaml:"min_free_memory_mb,omitempty" validate:"min=0"`
	LaunchTimeoutSec int    `json:"launch_timeout_secs,omitempty" yaml:"launch_timeout_secs,omitempty" validate:"min=1"`
}

// NewDefaultSessionConfig creates default session configuration
func NewDefaultSessionConfig() SessionConfig {
	return SessionConfig{
		StatePath:        DefaultSessionStatePath,
		LifetimeMinutes:  DefaultSessionLifetimeMinutes,
		MinFreeMemoryMB:  DefaultSessionMinFreeMemoryMB,
		LaunchTimeoutSec: DefaultSessionLaunchTimeoutSec,
	}
}

// Lifetime returns how long a session may live before it is recreated.
// Zero disables rotation.
func (c SessionConfig) Lifetime() time.Duration {
	return time.Duration(c.LifetimeMinutes) * time.Minute
}

// LaunchTimeout bounds a single browser launch plus state restore
func (c SessionConfig) LaunchTimeout() time.Duration {
	return time.Duration(c.LaunchTimeoutSec) * time.Second
}
