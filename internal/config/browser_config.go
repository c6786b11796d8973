package config

import "time"

// BrowserConfig defines how the controlled Chromium instance is launched
type BrowserConfig struct {
	ChromePath            string   `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`
	UserDataDir           string   `json:"user_data_dir,omitempty" yaml:"user_data_dir,omitempty"`
	Headless              bool     `json:"headless" yaml:"headless"`
	WindowWidth           int      `json:"window_width,omitempty" yaml:"window_width,omitempty" validate:"min=0"`
	WindowHeight          int      `json:"window_height,omitempty" yaml:"window_height,omitempty" validate:"min=0"`
	UserAgent             string   `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	ExtraArgs             []string `json:"extra_args,omitempty" yaml:"extra_args,omitempty" validate:"dive,required"`
	DownloadStagingDir    string   `json:"download_staging_dir,omitempty" yaml:"download_staging_dir,omitempty"`
	NavigationTimeoutSecs int      `json:"navigation_timeout_secs,omitempty" yaml:"navigation_timeout_secs,omitempty" validate:"min=1"`
	ActionTimeoutSecs     int      `json:"action_timeout_secs,omitempty" yaml:"action_timeout_secs,omitempty" validate:"min=1"`
}

// NewDefaultBrowserConfig creates default browser configuration
func NewDefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:              DefaultBrowserHeadless,
		WindowWidth:           DefaultBrowserWindowWidth,
		WindowHeight:          DefaultBrowserWindowHeight,
		ExtraArgs:             []string{},
		NavigationTimeoutSecs: DefaultBrowserNavigationTimeoutSecs,
		ActionTimeoutSecs:     DefaultBrowserActionTimeoutSecs,
	}
}

// NavigationTimeout returns the per-navigation bound
func (c BrowserConfig) NavigationTimeout() time.Duration {
	return time.Duration(c.NavigationTimeoutSecs) * time.Second
}

// ActionTimeout bounds a single click, focus or input on an element
func (c BrowserConfig) ActionTimeout() time.Duration {
	return time.Duration(c.ActionTimeoutSecs) * time.Second
}
