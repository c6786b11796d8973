package config

import "time"

// SunoConfig holds the selectors-independent tuning of the generation and download engine.
// All *Ms fields are milliseconds.
type SunoConfig struct {
	BaseURL     string `json:"base_url,omitempty" yaml:"base_url,omitempty" validate:"required,url"`
	CreatePath  string `json:"create_path,omitempty" yaml:"create_path,omitempty" validate:"required,startswith=/"`
	DownloadDir string `json:"download_dir,omitempty" yaml:"download_dir,omitempty" validate:"required"`

	LoginAttempts int `json:"login_attempts,omitempty" yaml:"login_attempts,omitempty" validate:"min=1"`
	LoginPollMs   int `json:"login_poll_interval_ms,omitempty" yaml:"login_poll_interval_ms,omitempty" validate:"min=1"`

	PollAttempts    int `json:"poll_attempts,omitempty" yaml:"poll_attempts,omitempty" validate:"min=1"`
	PollIntervalMs  int `json:"poll_interval_ms,omitempty" yaml:"poll_interval_ms,omitempty" validate:"min=1"`
	InspectTop      int `json:"inspect_top,omitempty" yaml:"inspect_top,omitempty" validate:"min=1"`
	ExpectedResults int `json:"expected_results,omitempty" yaml:"expected_results,omitempty" validate:"min=1"`
	SnapshotLimit   int `json:"snapshot_limit,omitempty" yaml:"snapshot_limit,omitempty" validate:"min=1"`

	SubmitTimeoutMs   int `json:"submit_timeout_ms,omitempty" yaml:"submit_timeout_ms,omitempty" validate:"min=1"`
	MenuTimeoutMs     int `json:"menu_timeout_ms,omitempty" yaml:"menu_timeout_ms,omitempty" validate:"min=1"`
	DialogTimeoutMs   int `json:"dialog_timeout_ms,omitempty" yaml:"dialog_timeout_ms,omitempty" validate:"min=1"`
	TransferTimeoutMs int `json:"transfer_timeout_ms,omitempty" yaml:"transfer_timeout_ms,omitempty" validate:"min=1"`

	KeyDelayMs       int `json:"key_delay_ms,omitempty" yaml:"key_delay_ms,omitempty" validate:"min=0"`
	FocusDelayMs     int `json:"focus_delay_ms,omitempty" yaml:"focus_delay_ms,omitempty" validate:"min=0"`
	AfterTypeDelayMs int `json:"after_type_delay_ms,omitempty" yaml:"after_type_delay_ms,omitempty" validate:"min=0"`
	BlurDelayMs      int `json:"blur_delay_ms,omitempty" yaml:"blur_delay_ms,omitempty" validate:"min=0"`
	RecentSettleMs   int `json:"recent_settle_ms,omitempty" yaml:"recent_settle_ms,omitempty" validate:"min=0"`
	RecentBetweenMs  int `json:"recent_between_ms,omitempty" yaml:"recent_between_ms,omitempty" validate:"min=0"`

	PlayProbe         bool `json:"play_probe,omitempty" yaml:"play_probe,omitempty"`
	JobTimeoutMinutes int  `json:"job_timeout_minutes,omitempty" yaml:"job_timeout_minutes,omitempty" validate:"min=1"`
}

// NewDefaultSunoConfig creates default engine configuration
func NewDefaultSunoConfig() SunoConfig {
	return SunoConfig{
		BaseURL:           DefaultSunoBaseURL,
		CreatePath:        DefaultSunoCreatePath,
		DownloadDir:       DefaultSunoDownloadDir,
		LoginAttempts:     DefaultSunoLoginAttempts,
		LoginPollMs:       DefaultSunoLoginPollMs,
		PollAttempts:      DefaultSunoPollAttempts,
		PollIntervalMs:    DefaultSunoPollIntervalMs,
		InspectTop:        DefaultSunoInspectTop,
		ExpectedResults:   DefaultSunoExpectedResults,
		SnapshotLimit:     DefaultSunoSnapshotLimit,
		SubmitTimeoutMs:   DefaultSunoSubmitTimeoutMs,
		MenuTimeoutMs:     DefaultSunoMenuTimeoutMs,
		DialogTimeoutMs:   DefaultSunoDialogTimeoutMs,
		TransferTimeoutMs: DefaultSunoTransferTimeoutMs,
		KeyDelayMs:        DefaultSunoKeyDelayMs,
		FocusDelayMs:      DefaultSunoFocusDelayMs,
		AfterTypeDelayMs:  DefaultSunoAfterTypeDelayMs,
		BlurDelayMs:       DefaultSunoBlurDelayMs,
		RecentSettleMs:    DefaultSunoRecentSettleMs,
		RecentBetweenMs:   DefaultSunoRecentBetweenMs,
		JobTimeoutMinutes: DefaultSunoJobTimeoutMinutes,
	}
}

// CreateURL is the post-login entry surface
func (c SunoConfig) CreateURL() string {
	return c.BaseURL + c.CreatePath
}

// JobTimeout bounds a detached background poll
func (c SunoConfig) JobTimeout() time.Duration {
	return time.Duration(c.JobTimeoutMinutes) * time.Minute
}

// Milliseconds converts one of the *Ms fields into a duration
func Milliseconds(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
