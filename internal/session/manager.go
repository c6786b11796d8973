// Package session owns the lifetime of the browser session: launch with restored
// state, rotation after a maximum age, and teardown with state persisted.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/common/errorwrapper"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/config"
	"github.com/rs/zerolog"
)

// Manager holds at most one live browser session
type Manager struct {
	launcher browser.Launcher
	config   config.SessionConfig
	logger   zerolog.Logger
	memory   MemoryProbe
	onStart  StartHook
	onRotate func()
	now      func() time.Time

	mu       sync.Mutex
	current  browser.Session
	headless bool
}

// StartHook runs after every launch, including rotations. A failing hook
// closes the new session and fails the launch.
type StartHook func(ctx context.Context, s browser.Session) error

// Option customizes a Manager
type Option func(*Manager)

// WithStartHook runs fn after every launch
func WithStartHook(fn StartHook) Option {
	return func(m *Manager) { m.onStart = fn }
}

// WithMemoryProbe replaces the system memory reader
func WithMemoryProbe(p MemoryProbe) Option {
	return func(m *Manager) { m.memory = p }
}

// WithRotationHook calls fn after every rotation
func WithRotationHook(fn func()) Option {
	return func(m *Manager) { m.onRotate = fn }
}

// WithClock overrides the clock used for rotation
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a manager. No browser is started until Initialize.
func NewManager(launcher browser.Launcher, cfg config.SessionConfig, logger zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		launcher: launcher,
		config:   cfg,
		logger:   logger.With().Str("component", "SessionManager").Logger(),
		memory:   SystemMemory,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize launches a session, replacing any existing one
func (m *Manager) Initialize(ctx context.Context, headless bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.closeLocked(ctx)
	}
	m.headless = headless
	return m.launchLocked(ctx)
}

func (m *Manager) launchLocked(ctx context.Context) error {
	if err := m.checkMemory(); err != nil {
		return err
	}

	lctx, cancel := context.WithTimeout(ctx, m.config.LaunchTimeout())
	defer cancel()

	s, err := m.launcher.Launch(lctx, browser.LaunchOptions{Headless: m.headless, StatePath: m.config.StatePath})
	if err != nil {
		return errorwrapper.WrapError(err, "failed to launch browser session")
	}

	if m.onStart != nil {
		if err := m.onStart(ctx, s); err != nil {
			if cerr := s.Close(context.WithoutCancel(ctx)); cerr != nil {
				m.logger.Warn().Err(cerr).Msg("Error while closing failed session")
			}
			return err
		}
	}
	m.current = s
	m.logger.Info().Bool("headless", m.headless).Msg("Session initialized.")
	return nil
}

// Session returns the live session, rotating it first when it outlived its lifetime
func (m *Manager) Session(ctx context.Context) (browser.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return nil, errorwrapper.ErrNotInitialized
	}

	lifetime := m.config.Lifetime()
	if age := m.now().Sub(m.current.StartedAt()); lifetime > 0 && age > lifetime {
		m.logger.Info().Dur("age", age).Dur("lifetime", lifetime).Msg("Session expired, rotating.")
		m.closeLocked(ctx)
		if err := m.launchLocked(ctx); err != nil {
			return nil, err
		}
		if m.onRotate != nil {
			m.onRotate()
		}
	}
	return m.current, nil
}

// Page returns the page of the live session
func (m *Manager) Page(ctx context.Context) (browser.Page, error) {
	s, err := m.Session(ctx)
	if err != nil {
		return nil, err
	}
	return s.Page(), nil
}

// Close tears the session down. Closing an uninitialized manager is a no-op.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	return m.closeLocked(ctx)
}

func (m *Manager) closeLocked(ctx context.Context) error {
	s := m.current
	m.current = nil
	if err := s.Close(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("Error while closing session")
		return err
	}
	m.logger.Info().Msg("Session closed.")
	return nil
}

func (m *Manager) Initialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

// Headless reports the mode of the last launch
func (m *Manager) Headless() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.headless
}

// Age is how long the live session has been running, zero when there is none
func (m *Manager) Age() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return 0
	}
	return m.now().Sub(m.current.StartedAt())
}
