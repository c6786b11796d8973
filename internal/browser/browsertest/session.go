package browsertest

import (
	"context"
	"sync"
	"time"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/browser"
)

// Session is a fake browser.Session around a Page
type Session struct {
	page      *Page
	opts      browser.LaunchOptions
	startedAt time.Time

	mu     sync.Mutex
	saves  int
	closed bool
}

var _ browser.Session = (*Session)(nil)

func (s *Session) Page() browser.Page             { return s.page }
func (s *Session) Headless() bool                 { return s.opts.Headless }
func (s *Session) StartedAt() time.Time           { return s.startedAt }
func (s *Session) Options() browser.LaunchOptions { return s.opts }

// FakePage returns the concrete page for test setup
func (s *Session) FakePage() *Page { return s.page }

// SaveState writes an empty storage state to the configured path
func (s *Session) SaveState(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return browser.ErrPageClosed
	}
	s.saves++
	if s.opts.StatePath == "" {
		return nil
	}
	return browser.SaveStorageState(s.opts.StatePath, &browser.StorageState{})
}

func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	err := s.SaveState(ctx)

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.page.Close()
	return err
}

// Saves counts SaveState calls, including the one made by Close
func (s *Session) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *Session) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Launcher hands out fake sessions built by NewPage
type Launcher struct {
	// NewPage builds the page for each launch.
	NewPage func() *Page
	// Err fails every launch when set.
	Err error
	// Now stamps StartedAt; defaults to time.Now.
	Now func() time.Time

	mu       sync.Mutex
	sessions []*Session
}

var _ browser.Launcher = (*Launcher)(nil)

func (l *Launcher) Launch(ctx context.Context, opts browser.LaunchOptions) (browser.Session, error) {
	if l.Err != nil {
		return nil, l.Err
	}
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	s := &Session{page: l.NewPage(), opts: opts, startedAt: now()}

	l.mu.Lock()
	l.sessions = append(l.sessions, s)
	l.mu.Unlock()
	return s, nil
}

// Sessions returns every session launched so far
func (l *Launcher) Sessions() []*Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*Session(nil), l.sessions...)
}
