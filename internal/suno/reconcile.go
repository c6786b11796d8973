package suno

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/config"
)

const (
	// MessageComplete is reported when a waited generation finished polling
	MessageComplete = "Generation and download complete."
	// MessagePartial is reported when polling ended with fewer songs than expected
	MessagePartial = "Generation finished polling before every song was downloaded."
	// MessageBackground is reported when polling was handed to a background job
	MessageBackground = "Generation started in background. Please check list_songs in a few minutes."

	modeGenerate = "generate"
	modeRecent   = "recent"
)

// GenerateRequest parameterizes one generation
type GenerateRequest struct {
	Prompt       string
	Instrumental bool
	// TargetDir receives the files; empty means the configured download dir.
	TargetDir string
	// Wait polls in the caller's goroutine instead of a background job.
	Wait bool
}

// Result is the outcome of a generation
type Result struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Paths   []string `json:"paths,omitempty"`
	Error   string   `json:"error,omitempty"`
	JobID   string   `json:"job_id,omitempty"`
}

// GenerateAndDownload submits a prompt and downloads the songs it produces. Running
// out of credits is reported in the Result with a nil error.
func (b *Bot) GenerateAndDownload(ctx context.Context, req GenerateRequest) (Result, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return Result{}, ErrEmptyPrompt
	}
	targetDir := b.targetDir(req.TargetDir)

	if err := b.EnsureAuthenticated(ctx); err != nil {
		return Result{}, err
	}
	if err := b.BindPrompt(ctx, req.Prompt); err != nil {
		return Result{}, err
	}
	b.SetInstrumental(ctx, req.Instrumental)

	control, err := b.locateSubmit(ctx)
	if err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			return Result{Success: false, Error: err.Error()}, nil
		}
		return Result{}, err
	}

	existing, err := b.SnapshotExistingIDs(ctx, b.config.SnapshotLimit)
	if err != nil {
		return Result{}, err
	}
	tracker := NewTracker(existing)

	if err := b.activateSubmit(ctx, control); err != nil {
		return Result{}, err
	}

	if !req.Wait {
		id := b.detacher.Start("generate: "+PromptSlug(req.Prompt), func(jobCtx context.Context) ([]string, error) {
			return b.pollForResults(jobCtx, tracker, targetDir, req.Prompt)
		})
		return Result{Success: true, Message: MessageBackground, JobID: id}, nil
	}

	paths, err := b.pollForResults(ctx, tracker, targetDir, req.Prompt)
	if err != nil {
		return Result{Paths: paths, Error: err.Error()}, err
	}
	message := MessageComplete
	if len(paths) < b.config.ExpectedResults {
		message = MessagePartial
	}
	return Result{Success: true, Message: message, Paths: paths}, nil
}

func (b *Bot) targetDir(dir string) string {
	if dir == "" {
		return b.config.DownloadDir
	}
	return dir
}

// pollForResults watches the top of the song list for novel rows and downloads
// each one once. Row-level failures are absorbed and retried on later ticks,
// a failure to save a song ends the poll.
func (b *Bot) pollForResults(ctx context.Context, tracker *Tracker, targetDir, prompt string) ([]string, error) {
	interval := config.Milliseconds(b.config.PollIntervalMs)
	var paths []string

	for attempt := 1; attempt <= b.config.PollAttempts; attempt++ {
		if err := browser.Sleep(ctx, interval); err != nil {
			return paths, err
		}
		b.recorder.PollTick()

		if b.probe != nil {
			if err := b.probe.Run(ctx, b.page); err != nil {
				b.logger.Debug().Err(err).Msg("Probe did not run")
			}
		}

		found, err := b.pollTick(ctx, tracker, targetDir, prompt)
		paths = append(paths, found...)
		if err != nil {
			return paths, err
		}

		b.logger.Info().
			Int("attempt", attempt).
			Int("max_attempts", b.config.PollAttempts).
			Int("downloaded", len(paths)).
			Int("expected", b.config.ExpectedResults).
			Msg("Polling for new songs...")

		if len(paths) >= b.config.ExpectedResults {
			return paths, nil
		}
	}

	b.logger.Warn().Int("downloaded", len(paths)).Int("expected", b.config.ExpectedResults).Msg("Polling ended before every song was downloaded")
	return paths, nil
}

// pollTick inspects the top rows once. Page loss, cancellation and save failures
// are errors, everything else is retried on the next tick.
func (b *Bot) pollTick(ctx context.Context, tracker *Tracker, targetDir, prompt string) ([]string, error) {
	rows, err := b.listRows(ctx, b.config.InspectTop)
	if err != nil {
		if errors.Is(err, browser.ErrPageClosed) || ctx.Err() != nil {
			return nil, err
		}
		b.logger.Debug().Err(err).Msg("Failed to list song rows")
		return nil, nil
	}

	// A row renders several links to the same song, attempt it once per tick.
	seen := make(map[string]struct{}, len(rows))
	var paths []string
	for _, row := range rows {
		if _, dup := seen[row.id]; dup {
			continue
		}
		seen[row.id] = struct{}{}
		if !tracker.IsNovel(row.id) {
			continue
		}
		if tracker.processedCount() >= b.config.ExpectedResults {
			break
		}

		path, err := b.attemptRow(ctx, row, targetDir, prompt, modeGenerate)
		if err != nil {
			if isFatal(ctx, err) {
				return paths, err
			}
			continue
		}
		tracker.MarkProcessed(row.id)
		paths = append(paths, path)
	}
	return paths, nil
}

// attemptRow runs one download attempt for row and records its outcome
func (b *Bot) attemptRow(ctx context.Context, row songRow, targetDir, hint, mode string) (string, error) {
	trigger, err := findMenuTrigger(ctx, row.link)
	if err != nil {
		b.logger.Debug().Str("song_id", row.id).Msg("Row has no menu trigger yet.")
		b.recorder.DownloadAttempt(mode, "no_trigger")
		return "", fmt.Errorf("%w: %v", ErrRowNotReady, err)
	}

	path, err := b.DownloadRow(ctx, trigger, targetDir, hint)
	b.recorder.DownloadAttempt(mode, outcome(err))
	if err != nil {
		b.logger.Debug().Err(err).Str("song_id", row.id).Msg("Download attempt failed, will retry.")
		return "", err
	}
	return path, nil
}

// DownloadRecentRows downloads up to count songs from the top of the list,
// regardless of when they were generated
func (b *Bot) DownloadRecentRows(ctx context.Context, count int, targetDir string) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}
	targetDir = b.targetDir(targetDir)

	if err := browser.Sleep(ctx, config.Milliseconds(b.config.RecentSettleMs)); err != nil {
		return nil, err
	}

	rows, err := b.listRows(ctx, 0)
	if err != nil {
		return nil, err
	}
	b.logger.Info().Int("rows", len(rows)).Int("count", count).Msg("Downloading recent songs.")

	seen := make(map[string]struct{}, len(rows))
	var paths []string
	for _, row := range rows {
		if len(paths) >= count {
			break
		}
		if _, dup := seen[row.id]; dup {
			continue
		}
		seen[row.id] = struct{}{}

		path, err := b.attemptRow(ctx, row, targetDir, row.id, modeRecent)
		if err != nil {
			if isFatal(ctx, err) {
				return paths, err
			}
			continue
		}
		paths = append(paths, path)

		if err := browser.Sleep(ctx, config.Milliseconds(b.config.RecentBetweenMs)); err != nil {
			return paths, err
		}
	}
	return paths, nil
}
