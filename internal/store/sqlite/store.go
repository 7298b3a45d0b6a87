// Package sqlite provides a SQLite-backed result store.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kjpark/graphminer/internal/fsm"
	"github.com/kjpark/graphminer/internal/store"
	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	chunking_result_final TEXT NOT NULL,
	chunk_stack_list TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_user_id ON runs(user_id);
`

// Store is a SQLite-backed store.Store.
type Store struct {
	db *sql.DB
}

// Config holds SQLite store configuration.
type Config struct {
	DBPath string
}

// DefaultConfig returns the default on-disk database path.
func DefaultConfig(dbPath string) Config {
	return Config{DBPath: dbPath}
}

// New opens (creating if necessary) a SQLite database at cfg.DBPath and
// applies the result-store schema.
func New(cfg Config) (*Store, error) {
	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=30000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: setting pragma: %w", err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: applying schema: %w", err)
	}

	return &Store{db: db}, nil
}

// PutRun persists a run, replacing any prior run with the same RunID.
func (s *Store) PutRun(ctx context.Context, run store.Run) error {
	finalJSON, err := json.Marshal(run.ChunkingResultFinal)
	if err != nil {
		return fmt.Errorf("sqlite: marshaling chunking_result_final: %w", err)
	}
	stackJSON, err := json.Marshal(run.ChunkStackList)
	if err != nil {
		return fmt.Errorf("sqlite: marshaling chunk_stack_list: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, user_id, chunking_result_final, chunk_stack_list)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			user_id = excluded.user_id,
			chunking_result_final = excluded.chunking_result_final,
			chunk_stack_list = excluded.chunk_stack_list
	`, run.RunID, run.UserID, string(finalJSON), string(stackJSON))
	if err != nil {
		return fmt.Errorf("sqlite: inserting run: %w", err)
	}
	return nil
}

// GetRun returns the most recently stored run for userID.
func (s *Store) GetRun(ctx context.Context, userID string) (*store.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, user_id, chunking_result_final, chunk_stack_list
		FROM runs WHERE user_id = ? ORDER BY rowid DESC LIMIT 1
	`, userID)

	var runID, uid, finalJSON, stackJSON string
	if err := row.Scan(&runID, &uid, &finalJSON, &stackJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlite: querying run: %w", err)
	}

	var final map[int]fsm.FinalRecord
	if err := json.Unmarshal([]byte(finalJSON), &final); err != nil {
		return nil, fmt.Errorf("sqlite: decoding chunking_result_final: %w", err)
	}
	var stack []fsm.StackEntry
	if err := json.Unmarshal([]byte(stackJSON), &stack); err != nil {
		return nil, fmt.Errorf("sqlite: decoding chunk_stack_list: %w", err)
	}

	return &store.Run{RunID: runID, UserID: uid, ChunkingResultFinal: final, ChunkStackList: stack}, nil
}

// ListRuns returns every user ID with at least one stored run, most
// recently written first.
func (s *Store) ListRuns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM runs ORDER BY rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing runs: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("sqlite: scanning run: %w", err)
		}
		out = append(out, userID)
	}
	return out, rows.Err()
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
