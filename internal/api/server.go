// Package api exposes the automation service over HTTP.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/config"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/history"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/suno"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Automation is the part of automation.Service the handlers drive
type Automation interface {
	Initialized() bool
	Initialize(ctx context.Context, headless bool) (bool, error)
	Generate(ctx context.Context, req suno.GenerateRequest) (suno.Result, error)
	DownloadRecent(ctx context.Context, count int, dir string) ([]string, error)
	DownloadDir(dir string) string
	Job(id string) (suno.JobStatus, error)
	Jobs() []suno.JobStatus
	History(ctx context.Context, limit int) ([]history.Record, error)
	Close(ctx context.Context) error
}

// Server serves the REST API
type Server struct {
	service  Automation
	config   config.ServerConfig
	headless bool
	gatherer prometheus.Gatherer
	logger   zerolog.Logger
}

// NewServer creates the API server. headless is the default for /api/init and a nil
// gatherer leaves /metrics unmounted.
func NewServer(service Automation, cfg config.ServerConfig, headless bool, gatherer prometheus.Gatherer, logger zerolog.Logger) *Server {
	return &Server{
		service:  service,
		config:   cfg,
		headless: headless,
		gatherer: gatherer,
		logger:   logger.With().Str("component", "APIServer").Logger(),
	}
}

// Router builds the route table
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.recoveryMiddleware, s.loggingMiddleware, corsMiddleware)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.Health).Methods(http.MethodGet)
	api.HandleFunc("/init", s.Init).Methods(http.MethodPost, http.MethodOptions)

	bot := api.PathPrefix("").Subrouter()
	bot.Use(s.requireInit)
	bot.HandleFunc("/generate", s.Generate).Methods(http.MethodPost, http.MethodOptions)
	bot.HandleFunc("/download", s.Download).Methods(http.MethodPost, http.MethodOptions)
	bot.HandleFunc("/jobs", s.ListJobs).Methods(http.MethodGet)
	bot.HandleFunc("/jobs/{id}", s.GetJob).Methods(http.MethodGet)
	bot.HandleFunc("/history", s.History).Methods(http.MethodGet)
	bot.HandleFunc("/close", s.Close).Methods(http.MethodPost, http.MethodOptions)

	if s.config.EnableMetrics && s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
	return r
}

// Run listens on the configured address until ctx is cancelled, then drains
// in-flight requests within the shutdown timeout
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.config.HTTPAddr,
		Handler:      s.Router(),
		ReadTimeout:  s.config.ReadTimeout(),
		WriteTimeout: s.config.WriteTimeout(),
		IdleTimeout:  60 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.config.HTTPAddr).Msg("HTTP API listening.")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down HTTP API.")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
