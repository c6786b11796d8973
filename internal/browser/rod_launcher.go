package browser

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/config"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rs/zerolog"
)

// RodLauncher starts Chromium through rod
type RodLauncher struct {
	config        config.BrowserConfig
	launchTimeout time.Duration
	logger        zerolog.Logger
}

// NewRodLauncher creates a launcher for the configured browser
func NewRodLauncher(cfg config.BrowserConfig, launchTimeout time.Duration, logger zerolog.Logger) *RodLauncher {
	return &RodLauncher{
		config:        cfg,
		launchTimeout: launchTimeout,
		logger:        logger.With().Str("component", "RodLauncher").Logger(),
	}
}

// Launch starts a browser, restores the saved session state and opens a blank page
func (rl *RodLauncher) Launch(ctx context.Context, opts LaunchOptions) (Session, error) {
	l := launcher.New()

	if rl.config.ChromePath != "" {
		l = l.Bin(rl.config.ChromePath)
	} else if path, found := launcher.LookPath(); found {
		// Prefer an installed Chrome over a downloaded Chromium, it trips fewer bot checks.
		l = l.Bin(path)
	}

	if rl.config.UserDataDir != "" {
		l = l.UserDataDir(rl.config.UserDataDir)
	}

	l = l.
		Headless(opts.Headless).
		Set("no-sandbox").
		Set("disable-dev-shm-usage").
		Set("no-first-run").
		Set("disable-default-apps").
		Set("disable-sync").
		Set("disable-blink-features", "AutomationControlled").
		Delete("enable-automation")

	if rl.config.WindowWidth > 0 && rl.config.WindowHeight > 0 {
		l = l.Set("window-size", fmt.Sprintf("%d,%d", rl.config.WindowWidth, rl.config.WindowHeight))
	}

	for _, arg := range rl.config.ExtraArgs {
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if hasValue {
			l = l.Set(flags.Flag(name), value)
		} else {
			l = l.Set(flags.Flag(name))
		}
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL).NoDefaultDevice()
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect browser: %w", err)
	}

	sess, err := rl.prepare(ctx, l, b, opts)
	if err != nil {
		_ = b.Close()
		l.Kill()
		return nil, err
	}

	rl.logger.Info().
		Bool("headless", opts.Headless).
		Str("state_path", opts.StatePath).
		Msg("Browser session launched.")
	return sess, nil
}

func (rl *RodLauncher) prepare(ctx context.Context, l *launcher.Launcher, b *rod.Browser, opts LaunchOptions) (*rodSession, error) {
	lctx, cancel := context.WithTimeout(ctx, rl.launchTimeout)
	defer cancel()

	state, err := LoadStorageState(opts.StatePath)
	if err != nil {
		rl.logger.Warn().Err(err).Msg("Ignoring unreadable session state, starting unauthenticated.")
	}
	if state != nil && len(state.Cookies) > 0 {
		if err := b.Context(lctx).SetCookies(proto.CookiesToParams(state.Cookies)); err != nil {
			return nil, fmt.Errorf("failed to restore session cookies: %w", err)
		}
		rl.logger.Info().Int("cookies", len(state.Cookies)).Time("saved_at", state.SavedAt).Msg("Restored saved session state.")
	} else {
		rl.logger.Info().Str("state_path", opts.StatePath).Msg("No saved session state found.")
	}

	// The page keeps the browser's background context: its keyboard and mouse
	// are bound to it for the lifetime of the session.
	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	if opts.Headless && rl.config.WindowWidth > 0 && rl.config.WindowHeight > 0 {
		if err := page.Context(lctx).SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             rl.config.WindowWidth,
			Height:            rl.config.WindowHeight,
			DeviceScaleFactor: 1,
		}); err != nil {
			rl.logger.Warn().Err(err).Msg("Failed to set viewport")
		}
	}

	if rl.config.UserAgent != "" {
		if err := page.Context(lctx).SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: rl.config.UserAgent}); err != nil {
			rl.logger.Warn().Err(err).Msg("Failed to set user agent")
		}
	}

	var origins []OriginState
	if state != nil {
		origins = state.Origins
		script, err := restoreLocalStorageJS(state.Origins)
		if err != nil {
			return nil, err
		}
		if script != "" {
			if _, err := page.Context(lctx).EvalOnNewDocument(script); err != nil {
				rl.logger.Warn().Err(err).Msg("Failed to restore local storage")
			}
		}
	}

	stagingDir, err := os.MkdirTemp(rl.config.DownloadStagingDir, "sunobot-downloads-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create download staging dir: %w", err)
	}

	return &rodSession{
		launcher:    l,
		browser:     b,
		ownsDataDir: rl.config.UserDataDir == "",
		statePath:   opts.StatePath,
		origins:     origins,
		headless:    opts.Headless,
		startedAt:   time.Now(),
		logger:      rl.logger,
		page: &rodPage{
			page:              page,
			browser:           b,
			stagingDir:        stagingDir,
			navigationTimeout: rl.config.NavigationTimeout(),
			actionTimeout:     rl.config.ActionTimeout(),
		},
	}, nil
}

type rodSession struct {
	launcher    *launcher.Launcher
	browser     *rod.Browser
	page        *rodPage
	ownsDataDir bool
	statePath   string
	origins     []OriginState
	headless    bool
	startedAt   time.Time
	logger      zerolog.Logger

	stateMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func (s *rodSession) Page() Page {
	return s.page
}

func (s *rodSession) Headless() bool {
	return s.headless
}

func (s *rodSession) StartedAt() time.Time {
	return s.startedAt
}

// SaveState writes the browser's cookies and the current origin's localStorage
// to the state file. Origins saved earlier are kept.
func (s *rodSession) SaveState(ctx context.Context) error {
	if s.page.Closed() {
		return ErrPageClosed
	}
	cookies, err := s.browser.Context(ctx).GetCookies()
	if err != nil {
		return fmt.Errorf("failed to read browser cookies: %w", err)
	}

	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	if o, ok := s.captureLocalStorage(ctx); ok {
		s.origins = mergeOrigin(s.origins, o)
	}
	if err := SaveStorageState(s.statePath, &StorageState{Cookies: cookies, Origins: s.origins}); err != nil {
		return err
	}
	s.logger.Debug().Int("cookies", len(cookies)).Int("origins", len(s.origins)).Str("state_path", s.statePath).Msg("Session state saved.")
	return nil
}

func (s *rodSession) captureLocalStorage(ctx context.Context) (OriginState, bool) {
	page, cancel := s.page.bounded(ctx, s.page.actionTimeout)
	defer cancel()
	res, err := page.Eval(captureLocalStorageJS)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Failed to read local storage")
		return OriginState{}, false
	}
	o, ok, err := parseOriginState(res.Value.Str())
	if err != nil {
		s.logger.Debug().Err(err).Msg("Failed to read local storage")
		return OriginState{}, false
	}
	return o, ok
}

// Close saves state, closes the browser and removes temporary files. Safe to call twice.
func (s *rodSession) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		if err := s.SaveState(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to save session state on close")
		}
		s.page.closed.Store(true)

		if err := s.browser.Close(); err != nil {
			s.closeErr = fmt.Errorf("failed to close browser: %w", err)
		}
		if s.ownsDataDir {
			s.launcher.Cleanup()
		} else {
			s.launcher.Kill()
		}
		_ = os.RemoveAll(s.page.stagingDir)
		s.logger.Info().Dur("age", time.Since(s.startedAt)).Msg("Browser session closed.")
	})
	return s.closeErr
}
