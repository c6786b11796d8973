package suno

import (
	"context"
	"sync"
	"testing"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/config"
)

func testConfig(t *testing.T) config.SunoConfig {
	t.Helper()
	cfg := config.NewDefaultSunoConfig()
	cfg.BaseURL = "https://suno.test"
	cfg.DownloadDir = t.TempDir()
	cfg.LoginAttempts = 3
	cfg.LoginPollMs = 5
	cfg.PollAttempts = 20
	cfg.PollIntervalMs = 5
	cfg.SubmitTimeoutMs = 50
	cfg.MenuTimeoutMs = 40
	cfg.DialogTimeoutMs = 5
	cfg.TransferTimeoutMs = 100
	cfg.KeyDelayMs = 0
	cfg.FocusDelayMs = 0
	cfg.AfterTypeDelayMs = 0
	cfg.BlurDelayMs = 0
	cfg.RecentSettleMs = 0
	cfg.RecentBetweenMs = 0
	return cfg
}

type countingSaver struct {
	mu    sync.Mutex
	saves int
}

func (s *countingSaver) SaveState(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	return nil
}

func (s *countingSaver) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

type countingRecorder struct {
	mu       sync.Mutex
	attempts map[string]int
	ticks    int
}

func (r *countingRecorder) DownloadAttempt(mode, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.attempts == nil {
		r.attempts = make(map[string]int)
	}
	r.attempts[mode+"/"+outcome]++
}

func (r *countingRecorder) PollTick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks++
}

func (r *countingRecorder) Attempts(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts[key]
}
