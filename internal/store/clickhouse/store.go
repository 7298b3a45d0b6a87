// Package clickhouse provides a ClickHouse-backed result store, intended
// for the "tens of thousands of triples" scale case mentioned in spec.md
// section 1, where a single local SQLite file stops being the right
// at-scale sink for mined results across many users.
package clickhouse

import (
	"context"
	"crypto/tls"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/kjpark/graphminer/internal/fsm"
	"github.com/kjpark/graphminer/internal/store"
)

// ConnectionConfig holds ClickHouse connection parameters.
type ConnectionConfig struct {
	Addr         string
	Database     string
	Username     string
	Password     string
	MaxOpenConns int
	DialTimeout  time.Duration
	MaxRetries   int
	TLS          *tls.Config
}

// DefaultConfig returns a connection config with sensible defaults.
func DefaultConfig() ConnectionConfig {
	return ConnectionConfig{
		Addr:         "localhost:9000",
		Database:     "default",
		Username:     "default",
		MaxOpenConns: 10,
		DialTimeout:  10 * time.Second,
		MaxRetries:   3,
	}
}

// Connect establishes a connection to ClickHouse with retry logic.
func Connect(ctx context.Context, cfg ConnectionConfig) (driver.Conn, error) {
	opts := &clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout:  cfg.DialTimeout,
		MaxOpenConns: cfg.MaxOpenConns,
		TLS:          cfg.TLS,
	}

	var conn driver.Conn
	var err error
	retryDelay := time.Second
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		conn, err = clickhouse.Open(opts)
		if err == nil {
			if err = conn.Ping(ctx); err == nil {
				return conn, nil
			}
		}
		if attempt < cfg.MaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
				retryDelay *= 2
			}
		}
	}
	return nil, fmt.Errorf("clickhouse: failed to connect after %d attempts: %w", cfg.MaxRetries, err)
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS graphminer_runs (
	run_id String,
	user_id String,
	chunking_result_final String,
	chunk_stack_list String,
	inserted_at DateTime DEFAULT now()
) ENGINE = ReplacingMergeTree(inserted_at)
ORDER BY (user_id, run_id)
`

// Store is a ClickHouse-backed store.Store.
type Store struct {
	conn driver.Conn
}

// New connects to ClickHouse and ensures the result table exists.
func New(ctx context.Context, cfg ConnectionConfig) (*Store, error) {
	conn, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := conn.Exec(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("clickhouse: creating table: %w", err)
	}
	return &Store{conn: conn}, nil
}

// PutRun inserts a run row. ReplacingMergeTree means a later insert with
// the same (user_id, run_id) eventually supersedes an earlier one once
// ClickHouse merges parts. GetRun selects by user_id ordered by
// inserted_at descending, so it returns the newest row for that user
// whether or not parts have merged; rows inserted within the same second
// have no defined order.
func (s *Store) PutRun(ctx context.Context, run store.Run) error {
	finalJSON, err := json.Marshal(run.ChunkingResultFinal)
	if err != nil {
		return fmt.Errorf("clickhouse: marshaling chunking_result_final: %w", err)
	}
	stackJSON, err := json.Marshal(run.ChunkStackList)
	if err != nil {
		return fmt.Errorf("clickhouse: marshaling chunk_stack_list: %w", err)
	}

	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO graphminer_runs (run_id, user_id, chunking_result_final, chunk_stack_list)")
	if err != nil {
		return fmt.Errorf("clickhouse: preparing batch: %w", err)
	}
	if err := batch.Append(run.RunID, run.UserID, string(finalJSON), string(stackJSON)); err != nil {
		return fmt.Errorf("clickhouse: appending row: %w", err)
	}
	return batch.Send()
}

// GetRun returns the most recently inserted run for userID.
func (s *Store) GetRun(ctx context.Context, userID string) (*store.Run, error) {
	row := s.conn.QueryRow(ctx, `
		SELECT run_id, user_id, chunking_result_final, chunk_stack_list
		FROM graphminer_runs WHERE user_id = ?
		ORDER BY inserted_at DESC LIMIT 1
	`, userID)

	var runID, uid, finalJSON, stackJSON string
	if err := row.Scan(&runID, &uid, &finalJSON, &stackJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("clickhouse: querying run: %w", err)
	}

	var final map[int]fsm.FinalRecord
	if err := json.Unmarshal([]byte(finalJSON), &final); err != nil {
		return nil, fmt.Errorf("clickhouse: decoding chunking_result_final: %w", err)
	}
	var stack []fsm.StackEntry
	if err := json.Unmarshal([]byte(stackJSON), &stack); err != nil {
		return nil, fmt.Errorf("clickhouse: decoding chunk_stack_list: %w", err)
	}

	return &store.Run{RunID: runID, UserID: uid, ChunkingResultFinal: final, ChunkStackList: stack}, nil
}

// ListRuns returns every distinct user ID with at least one stored run.
func (s *Store) ListRuns(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx, `SELECT DISTINCT user_id FROM graphminer_runs`)
	if err != nil {
		return nil, fmt.Errorf("clickhouse: listing runs: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("clickhouse: scanning run: %w", err)
		}
		out = append(out, userID)
	}
	return out, rows.Err()
}

// Close closes the underlying ClickHouse connection.
func (s *Store) Close() error {
	return s.conn.Close()
}
