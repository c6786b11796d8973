package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/common/filemanager"
	"github.com/rs/zerolog"
)

// JSONStore keeps records as one indented JSON array, the format of
// generated_songs.json
type JSONStore struct {
	path   string
	logger zerolog.Logger
	mu     sync.Mutex
}

// NewJSONStore creates a store at path. The file is created on first append.
func NewJSONStore(path string, logger zerolog.Logger) *JSONStore {
	return &JSONStore{
		path:   path,
		logger: logger.With().Str("component", "HistoryJSON").Logger(),
	}
}

func (s *JSONStore) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return err
	}
	records = append(records, rec)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := filemanager.WriteFileAtomic(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write history file: %w", err)
	}
	s.logger.Debug().Str("path", s.path).Str("status", string(rec.Status)).Msg("History record appended.")
	return nil
}

func (s *JSONStore) List(ctx context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.read()
	if err != nil {
		return nil, err
	}
	return newestFirst(records, limit), nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) read() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read history file %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse history file %s: %w", s.path, err)
	}
	return records, nil
}
