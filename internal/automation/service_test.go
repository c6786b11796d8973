package automation

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser/browsertest"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/common/errorwrapper"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/config"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/history"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/metrics"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/suno"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/suno/sunotest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	service  *Service
	launcher *browsertest.Launcher
	store    *history.JSONStore

	mu    sync.Mutex
	sites []*sunotest.Site
	// prepare customizes each launched site.
	prepare func(*sunotest.Site)
}

func (h *harness) lastSite(t *testing.T) *sunotest.Site {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	require.NotEmpty(t, h.sites)
	return h.sites[len(h.sites)-1]
}

func testGlobalConfig(t *testing.T) *config.GlobalConfig {
	t.Helper()
	cfg := config.NewDefaultGlobalConfig()
	dir := t.TempDir()

	cfg.SessionConfig.StatePath = filepath.Join(dir, "auth.json")
	cfg.SessionConfig.MinFreeMemoryMB = 0

	s := &cfg.SunoConfig
	s.BaseURL = "https://suno.test"
	s.DownloadDir = filepath.Join(dir, "downloads")
	s.LoginAttempts = 3
	s.LoginPollMs = 5
	s.PollAttempts = 10
	s.PollIntervalMs = 5
	s.SubmitTimeoutMs = 50
	s.MenuTimeoutMs = 30
	s.DialogTimeoutMs = 5
	s.TransferTimeoutMs = 100
	s.KeyDelayMs = 0
	s.FocusDelayMs = 0
	s.AfterTypeDelayMs = 0
	s.BlurDelayMs = 0
	s.RecentSettleMs = 0
	s.RecentBetweenMs = 0
	return cfg
}

func newHarness(t *testing.T, prepare func(*sunotest.Site)) *harness {
	t.Helper()
	cfg := testGlobalConfig(t)
	h := &harness{prepare: prepare}
	h.launcher = &browsertest.Launcher{
		NewPage: func() *browsertest.Page {
			site := sunotest.NewSite(t, sunotest.Row{ID: "old001", Title: "Old"})
			if h.prepare != nil {
				h.prepare(site)
			}
			h.mu.Lock()
			h.sites = append(h.sites, site)
			h.mu.Unlock()
			return site.Page
		},
	}
	h.store = history.NewJSONStore(filepath.Join(t.TempDir(), "generated_songs.json"), zerolog.Nop())
	h.service = NewService(cfg, h.launcher, h.store, metrics.MustNewMetrics(prometheus.NewRegistry()), zerolog.Nop())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.service.Shutdown(ctx)
	})
	return h
}

func TestService_RequiresInitialize(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	_, err := h.service.Generate(ctx, suno.GenerateRequest{Prompt: "x", Wait: true})
	assert.ErrorIs(t, err, errorwrapper.ErrNotInitialized)
	_, err = h.service.DownloadRecent(ctx, 1, "")
	assert.ErrorIs(t, err, errorwrapper.ErrNotInitialized)
	assert.ErrorIs(t, h.service.EnsureAuthenticated(ctx), errorwrapper.ErrNotInitialized)
	assert.Empty(t, h.launcher.Sessions())
}

func TestService_InitializeRunsLoginGate(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	started, err := h.service.Initialize(ctx, true)
	require.NoError(t, err)
	assert.True(t, started)
	assert.True(t, h.service.Initialized())
	assert.Equal(t, []string{"https://suno.test/create"}, h.lastSite(t).Page.Navigations())

	started, err = h.service.Initialize(ctx, true)
	require.NoError(t, err)
	assert.False(t, started)
	assert.Len(t, h.launcher.Sessions(), 1)
}

func TestService_InitializeFailsWithoutLogin(t *testing.T) {
	h := newHarness(t, func(site *sunotest.Site) {
		site.Page.Mutate(func(doc *goquery.Document) { doc.Find("#form").Remove() })
	})

	_, err := h.service.Initialize(context.Background(), true)

	assert.ErrorIs(t, err, suno.ErrAuthTimeout)
	assert.False(t, h.service.Initialized())
	assert.True(t, h.launcher.Sessions()[0].IsClosed())
}

func TestService_GenerateRecordsHistory(t *testing.T) {
	h := newHarness(t, func(site *sunotest.Site) {
		site.NewRows = []sunotest.Row{{ID: "new001", Title: "Fresh"}, {ID: "new002", Title: "Fresh"}}
	})
	ctx := context.Background()
	_, err := h.service.Initialize(ctx, true)
	require.NoError(t, err)

	result, err := h.service.Generate(ctx, suno.GenerateRequest{Prompt: "fresh start", Wait: true})
	require.NoError(t, err)
	assert.Len(t, result.Paths, 2)

	records, err := h.service.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, history.StatusCompleted, records[0].Status)
	assert.Equal(t, "fresh start", records[0].Prompt)
	assert.Equal(t, result.Paths, records[0].Files)
}

func TestService_QuotaIsRecorded(t *testing.T) {
	h := newHarness(t, func(site *sunotest.Site) {
		site.Page.Mutate(func(doc *goquery.Document) {
			doc.Find("body").AppendHtml(`<p>Out of Credits</p>`)
		})
	})
	ctx := context.Background()
	_, err := h.service.Initialize(ctx, true)
	require.NoError(t, err)

	result, err := h.service.Generate(ctx, suno.GenerateRequest{Prompt: "no money", Wait: true})
	require.NoError(t, err)
	assert.False(t, result.Success)

	records, err := h.service.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, history.StatusQuotaExceeded, records[0].Status)
}

func TestService_BackgroundJobHoldsPage(t *testing.T) {
	h := newHarness(t, func(site *sunotest.Site) {
		site.NewRows = []sunotest.Row{{ID: "bg1", Title: "Late"}, {ID: "bg2", Title: "Later"}}
	})
	ctx := context.Background()
	_, err := h.service.Initialize(ctx, true)
	require.NoError(t, err)

	result, err := h.service.Generate(ctx, suno.GenerateRequest{Prompt: "background", Wait: false})
	require.NoError(t, err)
	require.NotEmpty(t, result.JobID)

	// Queues behind the job.
	paths, err := h.service.DownloadRecent(ctx, 1, t.TempDir())
	require.NoError(t, err)
	assert.Len(t, paths, 1)

	status, err := h.service.WaitJob(ctx, result.JobID)
	require.NoError(t, err)
	assert.Equal(t, suno.JobSucceeded, status.State)
	assert.Len(t, status.Paths, 2)
	assert.Len(t, h.service.Jobs(), 1)

	records, err := h.service.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	var statuses []history.Status
	for _, rec := range records {
		assert.Equal(t, result.JobID, rec.JobID)
		statuses = append(statuses, rec.Status)
	}
	assert.ElementsMatch(t, []history.Status{history.StatusStarted, history.StatusCompleted}, statuses)
}

func TestService_OpenLoginClosesWindow(t *testing.T) {
	h := newHarness(t, nil)

	require.NoError(t, h.service.OpenLogin(context.Background()))

	sessions := h.launcher.Sessions()
	require.Len(t, sessions, 1)
	assert.False(t, sessions[0].Headless())
	assert.True(t, sessions[0].IsClosed())
	assert.False(t, h.service.Initialized())
	assert.FileExists(t, h.service.config.SessionConfig.StatePath)
}

func TestService_Close(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	_, err := h.service.Initialize(ctx, true)
	require.NoError(t, err)

	require.NoError(t, h.service.Close(ctx))
	assert.False(t, h.service.Initialized())
	assert.NoError(t, h.service.Close(ctx))
}
