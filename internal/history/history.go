// Package history keeps a log of generation requests and the files they produced.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/config"
	"github.com/rs/zerolog"
)

// Status of a logged generation
type Status string

const (
	StatusStarted       Status = "started"
	StatusCompleted     Status = "completed"
	StatusPartial       Status = "partial"
	StatusFailed        Status = "failed"
	StatusQuotaExceeded Status = "quota_exceeded"
)

// Backend names accepted in history_config.backend
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendNone   = "none"
)

// Record is one logged generation
type Record struct {
	Timestamp    time.Time `json:"timestamp"`
	Prompt       string    `json:"prompt"`
	Instrumental bool      `json:"instrumental"`
	Status       Status    `json:"status"`
	Files        []string  `json:"files,omitempty"`
	JobID        string    `json:"job_id,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// Store persists records
type Store interface {
	Append(ctx context.Context, rec Record) error
	// List returns the newest records first. A limit of zero or less returns all.
	List(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// Open creates the store selected by cfg
func Open(cfg config.HistoryConfig, logger zerolog.Logger) (Store, error) {
	switch cfg.Backend {
	case BackendJSON, "":
		return NewJSONStore(cfg.JSONPath, logger), nil
	case BackendSQLite:
		return NewSQLiteStore(cfg.SQLitePath, logger)
	case BackendNone:
		return NopStore{}, nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", cfg.Backend)
	}
}

// NopStore discards records
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error        { return nil }
func (NopStore) List(context.Context, int) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                { return nil }

func newestFirst(records []Record, limit int) []Record {
	out := make([]Record, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		out = append(out, records[i])
	}
	return out
}
