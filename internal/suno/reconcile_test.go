package suno

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/suno/sunotest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndDownload_OnlyNewRowsAreDownloaded(t *testing.T) {
	f := sunotest.NewSite(t, sunotest.Row{ID: "abc123", Title: "Old Song"})
	f.NewRows = []sunotest.Row{{ID: "xyz789", Title: "Neon Rain"}, {ID: "def456", Title: "Neon Rain"}}

	cfg := testConfig(t)
	saver := &countingSaver{}
	recorder := &countingRecorder{}
	bot := NewBot(f.Page, cfg, zerolog.Nop(), WithStateSaver(saver), WithRecorder(recorder))

	result, err := bot.GenerateAndDownload(context.Background(), GenerateRequest{Prompt: "neon rain over tokyo", Instrumental: true, Wait: true})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, MessageComplete, result.Message)
	assert.Equal(t, []string{
		filepath.Join(cfg.DownloadDir, "Neon_Rain.mp3"),
		filepath.Join(cfg.DownloadDir, "Neon_Rain_1.mp3"),
	}, result.Paths)
	assert.Equal(t, []string{"xyz789", "def456"}, f.Downloads())

	for _, click := range f.Page.Clicks() {
		assert.NotContains(t, click, `"abc123"`, "pre-existing row must not be touched")
	}
	assert.Contains(t, f.Page.Clicks(), `button[aria-label="Enable instrumental mode"](Instrumental)`)
	assert.Equal(t, 1, saver.Saves())
	assert.Equal(t, 2, recorder.Attempts("generate/downloaded"))

	data, err := os.ReadFile(result.Paths[0])
	require.NoError(t, err)
	assert.Equal(t, "ID3 xyz789", string(data))
}

func TestGenerateAndDownload_MenuAbsentThenSucceeds(t *testing.T) {
	f := sunotest.NewSite(t)
	f.NewRows = []sunotest.Row{{ID: "late01", Title: "Late Bloom"}}
	f.MenuFailures["late01"] = 2

	cfg := testConfig(t)
	cfg.ExpectedResults = 1
	recorder := &countingRecorder{}
	bot := NewBot(f.Page, cfg, zerolog.Nop(), WithRecorder(recorder))

	result, err := bot.GenerateAndDownload(context.Background(), GenerateRequest{Prompt: "late bloom", Wait: true})
	require.NoError(t, err)

	require.Len(t, result.Paths, 1)
	assert.Equal(t, "Late_Bloom.mp3", filepath.Base(result.Paths[0]))
	assert.Equal(t, 2, recorder.Attempts("generate/menu_unavailable"))

	triggerClicks := 0
	for _, click := range f.Page.Clicks() {
		if click == `button[data-row="late01"]` {
			triggerClicks++
		}
	}
	assert.Equal(t, 3, triggerClicks)
}

func TestGenerateAndDownload_RowAttemptedOncePerTick(t *testing.T) {
	f := sunotest.NewSite(t)
	f.NewRows = []sunotest.Row{{ID: "dup01", Title: "Twin Links"}}
	f.MenuFailures["dup01"] = 100

	cfg := testConfig(t)
	cfg.PollAttempts = 1
	recorder := &countingRecorder{}
	bot := NewBot(f.Page, cfg, zerolog.Nop(), WithRecorder(recorder))

	result, err := bot.GenerateAndDownload(context.Background(), GenerateRequest{Prompt: "twin links", Wait: true})
	require.NoError(t, err)

	assert.Empty(t, result.Paths)
	assert.Equal(t, 1, recorder.Attempts("generate/menu_unavailable"))
	clicks := 0
	for _, click := range f.Page.Clicks() {
		if click == `button[data-row="dup01"]` {
			clicks++
		}
	}
	assert.Equal(t, 1, clicks)
}

func TestGenerateAndDownload_SaveFailureStopsPolling(t *testing.T) {
	f := sunotest.NewSite(t)
	f.NewRows = []sunotest.Row{{ID: "sv0001", Title: "Nowhere"}, {ID: "sv0002", Title: "Nowhere 2"}}

	cfg := testConfig(t)
	recorder := &countingRecorder{}
	bot := NewBot(f.Page, cfg, zerolog.Nop(), WithRecorder(recorder))
	blocked := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0644))

	result, err := bot.GenerateAndDownload(context.Background(), GenerateRequest{Prompt: "nowhere", TargetDir: blocked, Wait: true})

	require.ErrorIs(t, err, ErrPersist)
	assert.Empty(t, result.Paths)
	assert.Contains(t, result.Error, ErrPersist.Error())
	assert.Equal(t, []string{"sv0001"}, f.Downloads())
	assert.Equal(t, 1, recorder.Attempts("generate/persist_failed"))
	assert.Zero(t, f.Page.PendingDownloads())
}

func TestGenerateAndDownload_PartialResultIsSuccess(t *testing.T) {
	f := sunotest.NewSite(t)
	f.NewRows = []sunotest.Row{{ID: "only01", Title: "Lonely"}}

	cfg := testConfig(t)
	cfg.PollAttempts = 3
	bot := NewBot(f.Page, cfg, zerolog.Nop())

	start := time.Now()
	result, err := bot.GenerateAndDownload(context.Background(), GenerateRequest{Prompt: "lonely", Wait: true})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, MessagePartial, result.Message)
	assert.Len(t, result.Paths, 1)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestGenerateAndDownload_QuotaIsSoftFailure(t *testing.T) {
	f := sunotest.NewSite(t)
	f.Page.Mutate(func(doc *goquery.Document) {
		doc.Find("#form").AppendHtml(`<span class="credits">0 credits left</span>`)
	})
	bot := NewBot(f.Page, testConfig(t), zerolog.Nop())

	result, err := bot.GenerateAndDownload(context.Background(), GenerateRequest{Prompt: "anything", Wait: true})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, QuotaMarker)
	assert.True(t, IsQuotaExceeded(ErrQuotaExceeded))
	assert.NotContains(t, f.Page.Clicks(), "button#create(Create)")
}

func TestGenerateAndDownload_EmptyPrompt(t *testing.T) {
	f := sunotest.NewSite(t)
	bot := NewBot(f.Page, testConfig(t), zerolog.Nop())

	_, err := bot.GenerateAndDownload(context.Background(), GenerateRequest{Prompt: "   ", Wait: true})

	assert.ErrorIs(t, err, ErrEmptyPrompt)
	assert.Empty(t, f.Page.Navigations())
}

func TestGenerateAndDownload_Background(t *testing.T) {
	f := sunotest.NewSite(t, sunotest.Row{ID: "abc123", Title: "Old"})
	f.NewRows = []sunotest.Row{{ID: "bg0001", Title: "Night Drive"}, {ID: "bg0002", Title: "Night Drive 2"}}

	cfg := testConfig(t)
	jobs := NewJobTracker(time.Minute, zerolog.Nop())
	bot := NewBot(f.Page, cfg, zerolog.Nop(), WithDetacher(jobs))

	result, err := bot.GenerateAndDownload(context.Background(), GenerateRequest{Prompt: "night drive", Wait: false})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, MessageBackground, result.Message)
	require.NotEmpty(t, result.JobID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	status, err := jobs.Wait(ctx, result.JobID)
	require.NoError(t, err)

	assert.Equal(t, JobSucceeded, status.State)
	assert.Len(t, status.Paths, 2)
	assert.ElementsMatch(t, []string{"bg0001", "bg0002"}, f.Downloads())
}

func TestGenerateAndDownload_ProbeRunsEachTick(t *testing.T) {
	f := sunotest.NewSite(t)
	f.NewRows = []sunotest.Row{{ID: "p1", Title: "One"}, {ID: "p2", Title: "Two"}}

	var runs int
	probe := ProbeFunc(func(ctx context.Context, page browser.Page) error {
		runs++
		return browser.ErrNotFound
	})
	bot := NewBot(f.Page, testConfig(t), zerolog.Nop(), WithProbe(probe))

	result, err := bot.GenerateAndDownload(context.Background(), GenerateRequest{Prompt: "probe", Wait: true})
	require.NoError(t, err)

	assert.Len(t, result.Paths, 2)
	assert.Equal(t, 1, runs)
}

func TestPlayProbe_ClicksPlay(t *testing.T) {
	f := sunotest.NewSite(t, sunotest.Row{ID: "r1", Title: "Song"})

	require.NoError(t, PlayProbe{}.Run(context.Background(), f.Page))
	assert.Equal(t, []string{`button[aria-label="Play"][data-row="r1"](Play)`}, f.Page.Clicks())
}

func TestDownloadRecentRows_ZeroCountDoesNothing(t *testing.T) {
	f := sunotest.NewSite(t, sunotest.Row{ID: "r1", Title: "Song"})
	bot := NewBot(f.Page, testConfig(t), zerolog.Nop())

	for _, count := range []int{0, -3} {
		paths, err := bot.DownloadRecentRows(context.Background(), count, t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, paths)
	}
	assert.Empty(t, f.Page.Clicks())
	assert.Empty(t, f.Page.Navigations())
	assert.Zero(t, f.Page.ArmedDownloads())
}

func TestDownloadRecentRows_DeduplicatesAndStopsAtCount(t *testing.T) {
	f := sunotest.NewSite(t,
		sunotest.Row{ID: "r1", Title: "First"},
		sunotest.Row{ID: "r2", Title: "Second"},
		sunotest.Row{ID: "r3", Title: "Third"},
	)
	bot := NewBot(f.Page, testConfig(t), zerolog.Nop())
	dir := filepath.Join(t.TempDir(), "nested", "dir")

	paths, err := bot.DownloadRecentRows(context.Background(), 2, dir)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "First.mp3"), filepath.Join(dir, "Second.mp3")}, paths)
	assert.Equal(t, []string{"r1", "r2"}, f.Downloads())
}

func TestDownloadRecentRows_SkipsFailingRows(t *testing.T) {
	f := sunotest.NewSite(t,
		sunotest.Row{ID: "r1", Title: "Broken"},
		sunotest.Row{ID: "r2", Title: "Fine"},
	)
	f.MenuFailures["r1"] = 1
	bot := NewBot(f.Page, testConfig(t), zerolog.Nop())

	paths, err := bot.DownloadRecentRows(context.Background(), 5, t.TempDir())
	require.NoError(t, err)

	require.Len(t, paths, 1)
	assert.True(t, strings.HasSuffix(paths[0], "Fine.mp3"))
}

func TestDownloadRecentRows_SaveFailureIsReturned(t *testing.T) {
	f := sunotest.NewSite(t,
		sunotest.Row{ID: "r1", Title: "First"},
		sunotest.Row{ID: "r2", Title: "Second"},
	)
	bot := NewBot(f.Page, testConfig(t), zerolog.Nop())
	blocked := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0644))

	paths, err := bot.DownloadRecentRows(context.Background(), 2, blocked)

	require.ErrorIs(t, err, ErrPersist)
	assert.Empty(t, paths)
	assert.Equal(t, []string{"r1"}, f.Downloads())
}
