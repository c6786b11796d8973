package config

const (
	// Browser Defaults
	DefaultBrowserHeadless              = true
	DefaultBrowserWindowWidth           = 1280
	DefaultBrowserWindowHeight          = 800
	DefaultBrowserNavigationTimeoutSecs = 30
	DefaultBrowserActionTimeoutSecs     = 10

	// Session Defaults
	DefaultSessionStatePath        = "data/auth.json"
	DefaultSessionLifetimeMinutes  = 60
	DefaultSessionMinFreeMemoryMB  = 256
	DefaultSessionLaunchTimeoutSec = 60

	// Suno Defaults
	DefaultSunoBaseURL           = "https://suno.com"
	DefaultSunoCreatePath        = "/create"
	DefaultSunoDownloadDir       = "./downloads"
	DefaultSunoLoginAttempts     = 60
	DefaultSunoLoginPollMs       = 5000
	DefaultSunoPollAttempts      = 60
	DefaultSunoPollIntervalMs    = 5000
	DefaultSunoInspectTop        = 4
	DefaultSunoExpectedResults   = 2
	DefaultSunoSnapshotLimit     = 20
	DefaultSunoSubmitTimeoutMs   = 5000
	DefaultSunoMenuTimeoutMs     = 3000
	DefaultSunoDialogTimeoutMs   = 2000
	DefaultSunoTransferTimeoutMs = 15000
	DefaultSunoKeyDelayMs        = 50
	DefaultSunoFocusDelayMs      = 500
	DefaultSunoAfterTypeDelayMs  = 1000
	DefaultSunoBlurDelayMs       = 1000
	DefaultSunoRecentSettleMs    = 3000
	DefaultSunoRecentBetweenMs   = 1000
	DefaultSunoJobTimeoutMinutes = 10

	// History Defaults
	DefaultHistoryBackend    = "json"
	DefaultHistoryJSONPath   = "data/generated_songs.json"
	DefaultHistorySQLitePath = "data/history.db"

	// Server Defaults
	DefaultServerHTTPAddr            = ":3000"
	DefaultServerMCPTransport        = "stdio"
	DefaultServerMCPAddr             = ":8080"
	DefaultServerReadTimeoutSecs     = 15
	DefaultServerWriteTimeoutSecs    = 600
	DefaultServerShutdownTimeoutSecs = 10
	DefaultRecentDownloadCount       = 5

	// Log Defaults
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "console"
	DefaultLogFile        = ""
	DefaultMaxLogSizeMB   = 100
	DefaultMaxLogBackups  = 3
	DefaultLogServiceName = "sunobot"

	// Environment variables
	EnvConfigPath  = "SUNOBOT_CONFIG_PATH"
	EnvHeadless    = "SUNOBOT_HEADLESS"
	EnvStatePath   = "SUNOBOT_STATE_PATH"
	EnvDownloadDir = "SUNOBOT_DOWNLOAD_DIR"
	EnvChromePath  = "SUNOBOT_CHROME_PATH"
	EnvLogLevel    = "SUNOBOT_LOG_LEVEL"
	EnvPort        = "PORT"
)
