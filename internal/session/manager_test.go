package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser/browsertest"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/common/errorwrapper"
	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestManager(t *testing.T, opts ...Option) (*Manager, *browsertest.Launcher, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	launcher := &browsertest.Launcher{
		NewPage: func() *browsertest.Page { return browsertest.NewPage(t, "<html><body></body></html>") },
		Now:     clock.Now,
	}
	cfg := config.NewDefaultSessionConfig()
	cfg.StatePath = filepath.Join(t.TempDir(), "auth.json")
	cfg.MinFreeMemoryMB = 0

	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewManager(launcher, cfg, zerolog.Nop(), opts...), launcher, clock
}

func TestManager_NotInitialized(t *testing.T) {
	m, _, _ := newTestManager(t)

	_, err := m.Page(context.Background())
	assert.ErrorIs(t, err, errorwrapper.ErrNotInitialized)
	assert.False(t, m.Initialized())
	assert.Zero(t, m.Age())
	assert.NoError(t, m.Close(context.Background()))
}

func TestManager_InitializeAndClose(t *testing.T) {
	m, launcher, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.Initialize(ctx, false))
	require.True(t, m.Initialized())
	assert.False(t, m.Headless())

	page, err := m.Page(ctx)
	require.NoError(t, err)
	assert.False(t, page.Closed())

	sessions := launcher.Sessions()
	require.Len(t, sessions, 1)
	assert.Equal(t, m.config.StatePath, sessions[0].Options().StatePath)

	require.NoError(t, m.Close(ctx))
	assert.True(t, sessions[0].IsClosed())
	assert.Equal(t, 1, sessions[0].Saves())
	assert.FileExists(t, m.config.StatePath)
	assert.False(t, m.Initialized())
}

func TestManager_ReinitializeReplacesSession(t *testing.T) {
	m, launcher, _ := newTestManager(t)
	ctx := context.Background()

	require.NoError(t, m.Initialize(ctx, true))
	require.NoError(t, m.Initialize(ctx, false))

	sessions := launcher.Sessions()
	require.Len(t, sessions, 2)
	assert.True(t, sessions[0].IsClosed())
	assert.True(t, sessions[0].Headless())
	assert.False(t, sessions[1].Headless())
}

func TestManager_RotatesExpiredSession(t *testing.T) {
	var rotations int
	m, launcher, clock := newTestManager(t, WithRotationHook(func() { rotations++ }))
	ctx := context.Background()
	require.NoError(t, m.Initialize(ctx, true))

	clock.Advance(30 * time.Minute)
	first, err := m.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, m.Age())

	clock.Advance(31 * time.Minute)
	second, err := m.Session(ctx)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 1, rotations)
	sessions := launcher.Sessions()
	require.Len(t, sessions, 2)
	assert.True(t, sessions[0].IsClosed())
	assert.True(t, sessions[1].Headless())
}

func TestManager_LaunchFailure(t *testing.T) {
	m, launcher, _ := newTestManager(t)
	launcher.Err = errors.New("chrome not found")

	err := m.Initialize(context.Background(), true)

	assert.ErrorContains(t, err, "chrome not found")
	assert.False(t, m.Initialized())
}

func TestManager_MemoryGuard(t *testing.T) {
	tests := []struct {
		name    string
		probe   MemoryProbe
		wantErr error
	}{
		{name: "enough", probe: func() (uint64, error) { return 4096, nil }},
		{name: "too little", probe: func() (uint64, error) { return 64, nil }, wantErr: ErrInsufficientMemory},
		{name: "probe fails", probe: func() (uint64, error) { return 0, errors.New("no /proc") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, launcher, _ := newTestManager(t, WithMemoryProbe(tt.probe))
			m.config.MinFreeMemoryMB = 256

			err := m.Initialize(context.Background(), true)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, launcher.Sessions())
				return
			}
			assert.NoError(t, err)
			assert.Len(t, launcher.Sessions(), 1)
		})
	}
}

func TestManager_StartHook(t *testing.T) {
	var started int
	m, launcher, clock := newTestManager(t, WithStartHook(func(ctx context.Context, s browser.Session) error {
		started++
		if started == 2 {
			return errors.New("login timeout")
		}
		return nil
	}))
	ctx := context.Background()

	require.NoError(t, m.Initialize(ctx, true))
	assert.Equal(t, 1, started)

	clock.Advance(2 * time.Hour)
	_, err := m.Session(ctx)

	assert.ErrorContains(t, err, "login timeout")
	assert.False(t, m.Initialized())
	sessions := launcher.Sessions()
	require.Len(t, sessions, 2)
	assert.True(t, sessions[1].IsClosed())
}
