package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/RohithAmalan/Sunoai-Browser-Use/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := NewSQLiteStore(filepath.Join(dir, "db", "history.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"json":   NewJSONStore(filepath.Join(dir, "data", "generated_songs.json"), zerolog.Nop()),
		"sqlite": sqlite,
	}
}

func TestStore_AppendAndList(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []Record{
		{Timestamp: base, Prompt: "first", Status: StatusStarted, JobID: "job-1"},
		{Timestamp: base.Add(time.Minute), Prompt: "second", Instrumental: true, Status: StatusCompleted, Files: []string{"a.mp3", "b.mp3"}},
		{Timestamp: base.Add(2 * time.Minute), Prompt: "third", Status: StatusQuotaExceeded, Error: "TERM_LIMIT_EXCEEDED"},
	}

	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			empty, err := store.List(ctx, 0)
			require.NoError(t, err)
			assert.Empty(t, empty)

			for _, rec := range records {
				require.NoError(t, store.Append(ctx, rec))
			}

			all, err := store.List(ctx, 0)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, "third", all[0].Prompt)
			assert.Equal(t, StatusQuotaExceeded, all[0].Status)
			assert.Equal(t, "TERM_LIMIT_EXCEEDED", all[0].Error)
			assert.Equal(t, []string{"a.mp3", "b.mp3"}, all[1].Files)
			assert.True(t, all[1].Instrumental)
			assert.Equal(t, "job-1", all[2].JobID)
			assert.True(t, base.Equal(all[2].Timestamp))

			limited, err := store.List(ctx, 2)
			require.NoError(t, err)
			require.Len(t, limited, 2)
			assert.Equal(t, "second", limited[1].Prompt)
		})
	}
}

func TestJSONStore_FileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generated_songs.json")
	store := NewJSONStore(path, zerolog.Nop())

	require.NoError(t, store.Append(context.Background(), Record{
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Prompt:    "lofi",
		Status:    StatusCompleted,
		Files:     []string{"lofi.mp3"},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"timestamp":"2026-03-01T12:00:00Z","prompt":"lofi","instrumental":false,"status":"completed","files":["lofi.mp3"]}]`, string(data))
}

func TestJSONStore_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generated_songs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	store := NewJSONStore(path, zerolog.Nop())

	_, err := store.List(context.Background(), 0)
	assert.ErrorContains(t, err, "failed to parse history file")
	assert.Error(t, store.Append(context.Background(), Record{Prompt: "x"}))
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	cfg := config.HistoryConfig{
		JSONPath:   filepath.Join(dir, "h.json"),
		SQLitePath: filepath.Join(dir, "h.db"),
	}

	tests := []struct {
		backend string
		want    any
		wantErr bool
	}{
		{backend: "", want: &JSONStore{}},
		{backend: BackendJSON, want: &JSONStore{}},
		{backend: BackendSQLite, want: &SQLiteStore{}},
		{backend: BackendNone, want: NopStore{}},
		{backend: "redis", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			c := cfg
			c.Backend = tt.backend

			store, err := Open(c, zerolog.Nop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer store.Close()
			assert.IsType(t, tt.want, store)
		})
	}
}
