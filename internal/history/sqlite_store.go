package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps records in a generation_history table
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewSQLiteStore opens the database at path and ensures the schema exists
func NewSQLiteStore(path string, logger zerolog.Logger) (*SQLiteStore, error) {
	logger = logger.With().Str("component", "HistorySQLite").Logger()
	logger.Info().Str("db_path", path).Msg("Initializing history database connection")

	dbDir := filepath.Dir(path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error().Err(err).Str("directory", dbDir).Msg("Failed to create history database directory")
		return nil, fmt.Errorf("failed to create history database directory %s: %w", dbDir, err)
	}

	dbInstance, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Error().Err(err).Str("db_path", path).Msg("Failed to open history database")
		return nil, fmt.Errorf("sql.Open failed for %s: %w", path, err)
	}
	// modernc sqlite serializes writers, a single connection avoids SQLITE_BUSY.
	dbInstance.SetMaxOpenConns(1)

	s := &SQLiteStore{db: dbInstance, logger: logger}
	if err := s.InitSchema(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logger.Info().Str("path", path).Msg("History database initialized and schema verified.")
	return s, nil
}

// InitSchema creates the generation_history table if it doesn't already exist
func (s *SQLiteStore) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS generation_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME NOT NULL,
		prompt TEXT NOT NULL,
		instrumental BOOLEAN NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		files TEXT,
		job_id TEXT,
		error TEXT
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		s.logger.Error().Err(err).Msg("DB: Failed to initialize schema")
		return err
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	files, err := json.Marshal(rec.Files)
	if err != nil {
		return fmt.Errorf("failed to encode files: %w", err)
	}

	query := `INSERT INTO generation_history (created_at, prompt, instrumental, status, files, job_id, error) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = s.db.ExecContext(ctx, query,
		rec.Timestamp.UTC(),
		rec.Prompt,
		rec.Instrumental,
		string(rec.Status),
		string(files),
		sql.NullString{String: rec.JobID, Valid: rec.JobID != ""},
		sql.NullString{String: rec.Error, Valid: rec.Error != ""},
	)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("Failed to record generation")
		return fmt.Errorf("failed to insert history record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Record, error) {
	query := `SELECT created_at, prompt, instrumental, status, files, job_id, error FROM generation_history ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("Failed to query history")
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec    Record
			status string
			files  sql.NullString
			jobID  sql.NullString
			errMsg sql.NullString
		)
		if err := rows.Scan(&rec.Timestamp, &rec.Prompt, &rec.Instrumental, &status, &files, &jobID, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		rec.Status = Status(status)
		rec.JobID = jobID.String
		rec.Error = errMsg.String
		if files.Valid && files.String != "" {
			if err := json.Unmarshal([]byte(files.String), &rec.Files); err != nil {
				s.logger.Warn().Err(err).Msg("Ignoring malformed files column")
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
