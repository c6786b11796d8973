package suno

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// JobState is the lifecycle stage of a background job
type JobState string

const (
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

const maxFinishedJobs = 100

// ErrJobNotFound is returned for unknown job ids
var ErrJobNotFound = errors.New("job not found")

// JobStatus is a snapshot of one background job
type JobStatus struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	State      JobState   `json:"state"`
	Paths      []string   `json:"paths,omitempty"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

type job struct {
	status JobStatus
	done   chan struct{}
}

// JobTracker runs detached polls and keeps their outcome queryable
type JobTracker struct {
	timeout time.Duration
	logger  zerolog.Logger

	mu       sync.Mutex
	jobs     map[string]*job
	onFinish []func(JobStatus)
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewJobTracker creates a tracker whose jobs are bounded by timeout.
// A zero timeout leaves jobs unbounded.
func NewJobTracker(timeout time.Duration, logger zerolog.Logger) *JobTracker {
	ctx, cancel := context.WithCancel(context.Background())
	return &JobTracker{
		timeout: timeout,
		logger:  logger.With().Str("component", "JobTracker").Logger(),
		jobs:    make(map[string]*job),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// OnFinish registers fn to run after every job completes
func (t *JobTracker) OnFinish(fn func(JobStatus)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onFinish = append(t.onFinish, fn)
}

// Start runs fn in the background and returns the job id
func (t *JobTracker) Start(name string, fn func(ctx context.Context) ([]string, error)) string {
	id := uuid.New().String()
	j := &job{
		status: JobStatus{ID: id, Name: name, State: JobRunning, StartedAt: time.Now()},
		done:   make(chan struct{}),
	}

	t.mu.Lock()
	t.jobs[id] = j
	t.prune()
	t.mu.Unlock()

	t.logger.Info().Str("job_id", id).Str("name", name).Msg("Background job started.")

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		paths, err := t.run(fn)
		t.finish(j, paths, err)
	}()
	return id
}

func (t *JobTracker) run(fn func(ctx context.Context) ([]string, error)) (paths []string, err error) {
	ctx, cancel := t.ctx, context.CancelFunc(func() {})
	if t.timeout > 0 {
		ctx, cancel = context.WithTimeout(t.ctx, t.timeout)
	}
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return fn(ctx)
}

func (t *JobTracker) finish(j *job, paths []string, err error) {
	t.mu.Lock()
	now := time.Now()
	j.status.FinishedAt = &now
	j.status.Paths = paths
	if err != nil {
		j.status.State = JobFailed
		j.status.Error = err.Error()
	} else {
		j.status.State = JobSucceeded
	}
	status := copyStatus(j.status)
	hooks := append([]func(JobStatus){}, t.onFinish...)
	t.mu.Unlock()

	if err != nil {
		t.logger.Error().Err(err).Str("job_id", status.ID).Int("paths", len(paths)).Msg("Background job failed")
	} else {
		t.logger.Info().Str("job_id", status.ID).Int("paths", len(paths)).Msg("Background job finished.")
	}

	for _, fn := range hooks {
		fn(status)
	}
	close(j.done)
}

// prune drops the oldest finished jobs beyond the retention limit. Callers hold mu.
func (t *JobTracker) prune() {
	var finished []*job
	for _, j := range t.jobs {
		if j.status.FinishedAt != nil {
			finished = append(finished, j)
		}
	}
	if len(finished) <= maxFinishedJobs {
		return
	}
	sort.Slice(finished, func(a, b int) bool {
		return finished[a].status.FinishedAt.Before(*finished[b].status.FinishedAt)
	})
	for _, j := range finished[:len(finished)-maxFinishedJobs] {
		delete(t.jobs, j.status.ID)
	}
}

// Status returns a snapshot of job id
func (t *JobTracker) Status(id string) (JobStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[id]
	if !ok {
		return JobStatus{}, ErrJobNotFound
	}
	return copyStatus(j.status), nil
}

// List returns every tracked job, newest first
func (t *JobTracker) List() []JobStatus {
	t.mu.Lock()
	out := make([]JobStatus, 0, len(t.jobs))
	for _, j := range t.jobs {
		out = append(out, copyStatus(j.status))
	}
	t.mu.Unlock()

	sort.Slice(out, func(a, b int) bool {
		return out[a].StartedAt.After(out[b].StartedAt)
	})
	return out
}

// Running counts jobs that have not finished
func (t *JobTracker) Running() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, j := range t.jobs {
		if j.status.State == JobRunning {
			n++
		}
	}
	return n
}

// Wait blocks until job id finishes and returns its final status
func (t *JobTracker) Wait(ctx context.Context, id string) (JobStatus, error) {
	t.mu.Lock()
	j, ok := t.jobs[id]
	t.mu.Unlock()
	if !ok {
		return JobStatus{}, ErrJobNotFound
	}

	select {
	case <-j.done:
		return t.Status(id)
	case <-ctx.Done():
		return JobStatus{}, ctx.Err()
	}
}

// Shutdown cancels running jobs and waits for them to return
func (t *JobTracker) Shutdown(ctx context.Context) error {
	t.cancel()
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func copyStatus(s JobStatus) JobStatus {
	s.Paths = append([]string(nil), s.Paths...)
	if s.FinishedAt != nil {
		at := *s.FinishedAt
		s.FinishedAt = &at
	}
	return s
}
