// Package suno drives the Suno web application: it authenticates the page, submits
// prompts, and reconciles the generated song list against what was already there,
// downloading each new song through the row's overlay menu.
package suno

import (
	"context"
	"time"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/config"
	"github.com/rs/zerolog"
)

const dismissTimeout = 2 * time.Second

// StateSaver persists authentication state once login is confirmed
type StateSaver interface {
	SaveState(ctx context.Context) error
}

// Detacher runs a polling job in the background and returns its id
type Detacher interface {
	Start(name string, fn func(ctx context.Context) ([]string, error)) string
}

// Recorder receives engine events for metrics
type Recorder interface {
	DownloadAttempt(mode, outcome string)
	PollTick()
}

type nopRecorder struct{}

func (nopRecorder) DownloadAttempt(string, string) {}
func (nopRecorder) PollTick()                      {}

// Bot automates one page. It is not safe for concurrent use; callers serialize
// access to the page.
type Bot struct {
	page     browser.Page
	config   config.SunoConfig
	logger   zerolog.Logger
	saver    StateSaver
	probe    Probe
	detacher Detacher
	recorder Recorder
	headless bool
	now      func() time.Time
}

// Option customizes a Bot
type Option func(*Bot)

// WithStateSaver persists session state after a confirmed login
func WithStateSaver(s StateSaver) Option {
	return func(b *Bot) { b.saver = s }
}

// WithProbe runs p at the start of every poll tick
func WithProbe(p Probe) Option {
	return func(b *Bot) { b.probe = p }
}

// WithDetacher runs non-waiting generations through d
func WithDetacher(d Detacher) Option {
	return func(b *Bot) { b.detacher = d }
}

// WithRecorder reports engine events to r
func WithRecorder(r Recorder) Option {
	return func(b *Bot) { b.recorder = r }
}

// WithHeadless tells the gate whether an operator can see the window
func WithHeadless(headless bool) Option {
	return func(b *Bot) { b.headless = headless }
}

// WithClock overrides the clock used for fallback file names
func WithClock(now func() time.Time) Option {
	return func(b *Bot) { b.now = now }
}

// NewBot creates a bot for page
func NewBot(page browser.Page, cfg config.SunoConfig, logger zerolog.Logger, opts ...Option) *Bot {
	b := &Bot{
		page:     page,
		config:   cfg,
		logger:   logger.With().Str("component", "SunoBot").Logger(),
		recorder: nopRecorder{},
		now:      time.Now,
	}
	if cfg.PlayProbe {
		b.probe = PlayProbe{}
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.detacher == nil {
		b.detacher = NewJobTracker(cfg.JobTimeout(), logger)
	}
	return b
}

// Page returns the page the bot drives
func (b *Bot) Page() browser.Page {
	return b.page
}

// dismiss closes any open overlay by clicking an inert point. It runs even when
// ctx is already cancelled.
func (b *Bot) dismiss(ctx context.Context) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), dismissTimeout)
	defer cancel()
	if err := b.page.ClickAt(dctx, 0, 0); err != nil {
		b.logger.Debug().Err(err).Msg("Failed to dismiss overlay")
	}
}
