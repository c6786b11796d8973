package automation

import (
	"context"
	"errors"
	"time"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/history"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/suno"
)

// handoff passes the page to a background job. The job releases the page when
// it returns and logs its own history record.
type handoff struct {
	service *Service
	req     suno.GenerateRequest
	started bool
}

func (h *handoff) Start(name string, fn func(ctx context.Context) ([]string, error)) string {
	s := h.service
	h.started = true
	s.metrics.JobStarted()

	ids := make(chan string, 1)
	id := s.jobs.Start(name, func(ctx context.Context) ([]string, error) {
		defer s.page.Release(1)
		defer s.metrics.JobFinished()

		paths, err := fn(ctx)
		s.recordJob(<-ids, h.req, paths, err)
		return paths, err
	})
	ids <- id
	return id
}

func (s *Service) recordGeneration(ctx context.Context, req suno.GenerateRequest, result suno.Result, err error, took time.Duration) {
	rec := history.Record{
		Timestamp:    time.Now(),
		Prompt:       req.Prompt,
		Instrumental: req.Instrumental,
		Files:        result.Paths,
		JobID:        result.JobID,
	}

	switch {
	case errors.Is(err, suno.ErrEmptyPrompt):
		return
	case err != nil:
		rec.Status = history.StatusFailed
		rec.Error = err.Error()
	case !result.Success && suno.IsQuotaExceeded(errors.New(result.Error)):
		rec.Status = history.StatusQuotaExceeded
		rec.Error = result.Error
	case result.JobID != "":
		rec.Status = history.StatusStarted
	default:
		rec.Status = s.completionStatus(result.Paths)
		s.metrics.ObserveGeneration(took)
	}

	s.metrics.Generation(string(rec.Status))
	s.appendHistory(ctx, rec)
}

func (s *Service) recordJob(id string, req suno.GenerateRequest, paths []string, err error) {
	rec := history.Record{
		Timestamp:    time.Now(),
		Prompt:       req.Prompt,
		Instrumental: req.Instrumental,
		Files:        paths,
		JobID:        id,
		Status:       s.completionStatus(paths),
	}
	if err != nil {
		rec.Status = history.StatusFailed
		rec.Error = err.Error()
	}

	s.metrics.Generation(string(rec.Status))
	s.appendHistory(context.Background(), rec)
}

func (s *Service) completionStatus(paths []string) history.Status {
	if len(paths) < s.config.SunoConfig.ExpectedResults {
		return history.StatusPartial
	}
	return history.StatusCompleted
}

func (s *Service) appendHistory(ctx context.Context, rec history.Record) {
	if err := s.history.Append(context.WithoutCancel(ctx), rec); err != nil {
		s.logger.Warn().Err(err).Str("status", string(rec.Status)).Msg("Failed to record history")
	}
}
