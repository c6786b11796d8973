package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/automation"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/config"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/history"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/logger"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app holds what every subcommand shares once flags are parsed
type app struct {
	configPath string
	headless   bool
	logLevel   string

	cfg      *config.GlobalConfig
	logger   zerolog.Logger
	registry *prometheus.Registry
	service  *automation.Service
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	root := &cobra.Command{
		Use:           "sunobot",
		Short:         "Generate and download songs from Suno through a controlled browser",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to a YAML or JSON config file (default: search "+config.EnvConfigPath+" and the working directory)")
	flags.BoolVar(&a.headless, "headless", config.DefaultBrowserHeadless, "Run the browser without a window")
	flags.StringVar(&a.logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")

	root.AddCommand(
		newLoginCmd(a),
		newGenerateCmd(a),
		newDownloadCmd(a),
		newHistoryCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
	)
	return root, a
}

func (a *app) setup(cmd *cobra.Command) error {
	bootstrap := zerolog.New(cmd.ErrOrStderr()).With().Timestamp().Logger()
	cfg, err := config.LoadGlobalConfig(a.configPath, bootstrap)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	if cmd.Flags().Changed("headless") {
		cfg.BrowserConfig.Headless = a.headless
	}
	if a.logLevel != "" {
		cfg.LogConfig.LogLevel = a.logLevel
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	log, err := logger.New(cfg.LogConfig)
	if err != nil {
		return fmt.Errorf("could not initialize logger: %w", err)
	}

	store, err := history.Open(cfg.HistoryConfig, log)
	if err != nil {
		return fmt.Errorf("could not open history store: %w", err)
	}

	a.cfg = cfg
	a.logger = log
	a.registry = prometheus.NewRegistry()
	launcher := browser.NewRodLauncher(cfg.BrowserConfig, cfg.SessionConfig.LaunchTimeout(), log)
	a.service = automation.NewService(cfg, launcher, store, metrics.MustNewMetrics(a.registry), log)
	return nil
}

// shutdown closes the browser and the history store. It runs after every
// command, failed ones included.
func (a *app) shutdown(ctx context.Context) error {
	if a.service == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.ServerConfig.ShutdownTimeout()+5*time.Second)
	defer cancel()
	return a.service.Shutdown(shutdownCtx)
}

// start launches the browser and passes the login gate
func (a *app) start(ctx context.Context) error {
	_, err := a.service.Initialize(ctx, a.cfg.BrowserConfig.Headless)
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
