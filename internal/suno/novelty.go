package suno

import (
	"context"
	"fmt"
	"sync"
)

// Tracker separates songs that predate a submission from the ones it produced.
// A song id is novel when it was neither on the page at submit time nor already
// downloaded.
type Tracker struct {
	mu        sync.Mutex
	existing  map[string]struct{}
	processed map[string]struct{}
}

// NewTracker seeds the tracker with the pre-submission snapshot
func NewTracker(existing []string) *Tracker {
	t := &Tracker{
		existing:  make(map[string]struct{}, len(existing)),
		processed: make(map[string]struct{}),
	}
	for _, id := range existing {
		t.existing[id] = struct{}{}
	}
	return t
}

// IsNovel reports whether id was neither listed before submit nor processed since
func (t *Tracker) IsNovel(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, old := t.existing[id]
	_, done := t.processed[id]
	return !old && !done
}

// MarkProcessed records a successful download of id
func (t *Tracker) MarkProcessed(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.processed[id] = struct{}{}
}

// IsProcessed reports whether id was downloaded by this tracker
func (t *Tracker) IsProcessed(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, done := t.processed[id]
	return done
}

// Existing is the size of the snapshot
func (t *Tracker) Existing() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.existing)
}

// SnapshotExistingIDs records the ids of the first limit songs currently listed
func (b *Bot) SnapshotExistingIDs(ctx context.Context, limit int) ([]string, error) {
	doc, err := b.page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read page for snapshot: %w", err)
	}
	ids, err := ParseSongIDs(doc, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to parse song list: %w", err)
	}
	b.logger.Info().Int("existing", len(ids)).Msg("Snapshot of existing songs taken.")
	return ids, nil
}

func (t *Tracker) processedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.processed)
}
