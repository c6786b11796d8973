// Package automation is the session handle shared by the CLI, HTTP and MCP
// frontends. It owns the browser session, serializes page access and records
// every generation in the history store.
package automation

import (
	"context"
	"path/filepath"
	"time"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/common/errorwrapper"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/config"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/history"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/metrics"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/session"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/suno"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// Service runs automation requests one at a time against a single browser session.
// A background generation keeps the page until its poll finishes.
type Service struct {
	config   *config.GlobalConfig
	sessions *session.Manager
	jobs     *suno.JobTracker
	history  history.Store
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	page     *semaphore.Weighted
}

// NewService wires a service around launcher. A nil store discards history and
// nil metrics record nothing.
func NewService(cfg *config.GlobalConfig, launcher browser.Launcher, store history.Store, m *metrics.Metrics, logger zerolog.Logger, opts ...session.Option) *Service {
	if store == nil {
		store = history.NopStore{}
	}
	s := &Service{
		config:  cfg,
		jobs:    suno.NewJobTracker(cfg.SunoConfig.JobTimeout(), logger),
		history: store,
		metrics: m,
		logger:  logger.With().Str("component", "AutomationService").Logger(),
		page:    semaphore.NewWeighted(1),
	}

	sessionOpts := []session.Option{
		session.WithStartHook(s.authenticate),
		session.WithRotationHook(m.SessionRotated),
	}
	s.sessions = session.NewManager(launcher, cfg.SessionConfig, logger, append(sessionOpts, opts...)...)
	return s
}

// authenticate runs the login gate on every freshly launched session
func (s *Service) authenticate(ctx context.Context, sess browser.Session) error {
	return s.newBot(sess).EnsureAuthenticated(ctx)
}

func (s *Service) newBot(sess browser.Session, opts ...suno.Option) *suno.Bot {
	base := []suno.Option{
		suno.WithStateSaver(sess),
		suno.WithHeadless(sess.Headless()),
		suno.WithRecorder(s.metrics),
		suno.WithDetacher(s.jobs),
	}
	return suno.NewBot(sess.Page(), s.config.SunoConfig, s.logger, append(base, opts...)...)
}

func (s *Service) Initialized() bool {
	return s.sessions.Initialized()
}

// Initialize launches the browser and waits for login. It reports false when a
// session was already running.
func (s *Service) Initialize(ctx context.Context, headless bool) (bool, error) {
	if err := s.page.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer s.page.Release(1)

	if s.sessions.Initialized() {
		return false, nil
	}
	s.logger.Info().Bool("headless", headless).Msg("Initializing bot.")
	if err := s.sessions.Initialize(ctx, headless); err != nil {
		return false, errorwrapper.WrapError(err, "initialization failed")
	}
	return true, nil
}

// OpenLogin replaces any session with a visible window, waits for the operator to
// sign in, then closes it so the saved state is used by later headless sessions
func (s *Service) OpenLogin(ctx context.Context) error {
	if err := s.page.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.page.Release(1)

	if err := s.sessions.Initialize(ctx, false); err != nil {
		return errorwrapper.WrapError(err, "login failed")
	}
	return s.sessions.Close(ctx)
}

// acquire takes the page for one request
func (s *Service) acquire(ctx context.Context) (browser.Session, error) {
	if !s.sessions.Initialized() {
		return nil, errorwrapper.ErrNotInitialized
	}
	if err := s.page.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	sess, err := s.sessions.Session(ctx)
	if err != nil {
		s.page.Release(1)
		return nil, err
	}
	return sess, nil
}

// EnsureAuthenticated re-runs the login gate on the live session
func (s *Service) EnsureAuthenticated(ctx context.Context) error {
	sess, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer s.page.Release(1)
	return s.newBot(sess).EnsureAuthenticated(ctx)
}

// Generate submits a prompt. With req.Wait false the page stays held by the
// background job until it completes.
func (s *Service) Generate(ctx context.Context, req suno.GenerateRequest) (suno.Result, error) {
	sess, err := s.acquire(ctx)
	if err != nil {
		return suno.Result{}, err
	}

	h := &handoff{service: s, req: req}
	defer func() {
		if !h.started {
			s.page.Release(1)
		}
	}()

	start := time.Now()
	result, err := s.newBot(sess, suno.WithDetacher(h)).GenerateAndDownload(ctx, req)
	s.recordGeneration(ctx, req, result, err, time.Since(start))
	return result, err
}

// DownloadRecent saves up to count songs from the top of the list
func (s *Service) DownloadRecent(ctx context.Context, count int, dir string) ([]string, error) {
	sess, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer s.page.Release(1)

	return s.newBot(sess).DownloadRecentRows(ctx, count, dir)
}

// DownloadDir resolves dir against the configured download directory
func (s *Service) DownloadDir(dir string) string {
	if dir == "" {
		dir = s.config.SunoConfig.DownloadDir
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

func (s *Service) Job(id string) (suno.JobStatus, error) {
	return s.jobs.Status(id)
}

func (s *Service) Jobs() []suno.JobStatus {
	return s.jobs.List()
}

// WaitJob blocks until a background job finishes
func (s *Service) WaitJob(ctx context.Context, id string) (suno.JobStatus, error) {
	return s.jobs.Wait(ctx, id)
}

func (s *Service) History(ctx context.Context, limit int) ([]history.Record, error) {
	return s.history.List(ctx, limit)
}

// Close ends the browser session. A request still holding the page sees its
// page closed.
func (s *Service) Close(ctx context.Context) error {
	if s.page.TryAcquire(1) {
		defer s.page.Release(1)
	} else {
		s.logger.Warn().Msg("Closing browser while an operation is still running")
	}
	return s.sessions.Close(ctx)
}

// Shutdown closes the session, stops background jobs and the history store
func (s *Service) Shutdown(ctx context.Context) error {
	closeErr := s.Close(ctx)
	if err := s.jobs.Shutdown(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Background jobs did not stop in time")
	}
	if err := s.history.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to close history store")
	}
	return closeErr
}
