// Package fanout wraps two store.Store backends for dual-write migration:
// writes go to both a primary and a secondary, reads come from primary
// only. Grounded on the teacher's internal/storage/dual.Store, adapted
// from its metric/span/log-shaped methods down to store.Store's smaller
// run-shaped surface.
package fanout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kjpark/graphminer/internal/store"
)

// Store is a dual-write store.Store. Writes go to both primary and
// secondary; the secondary's PutRun runs in its own goroutine and its
// errors are logged, never returned, so a flaky or overloaded secondary
// never blocks or fails the primary write path. Reads and listings are
// primary-only.
type Store struct {
	primary   store.Store
	secondary store.Store
	logger    *slog.Logger
}

// Config holds fanout store configuration.
type Config struct {
	Primary   store.Store
	Secondary store.Store
	Logger    *slog.Logger
}

// New creates a new dual-write store.
func New(cfg Config) *Store {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Store{primary: cfg.Primary, secondary: cfg.Secondary, logger: cfg.Logger}
}

// PutRun writes run to the primary synchronously, then fires off an
// async write to the secondary. A secondary failure is logged but never
// fails the call — the primary write is what PutRun's caller depends on.
func (s *Store) PutRun(ctx context.Context, run store.Run) error {
	if err := s.primary.PutRun(ctx, run); err != nil {
		return err
	}

	go func() {
		if err := s.secondary.PutRun(context.Background(), run); err != nil {
			s.logger.Error("dual-write to secondary failed",
				"operation", "PutRun",
				"run_id", run.RunID,
				"error", err,
			)
		}
	}()

	return nil
}

// GetRun reads from the primary backend only.
func (s *Store) GetRun(ctx context.Context, userID string) (*store.Run, error) {
	return s.primary.GetRun(ctx, userID)
}

// ListRuns lists from the primary backend only.
func (s *Store) ListRuns(ctx context.Context) ([]string, error) {
	return s.primary.ListRuns(ctx)
}

// Close closes the primary first, then the secondary, returning the
// primary's error if both fail since the primary is the one callers
// depend on for reads.
func (s *Store) Close() error {
	primaryErr := s.primary.Close()
	secondaryErr := s.secondary.Close()
	if primaryErr != nil {
		return fmt.Errorf("fanout: closing primary: %w", primaryErr)
	}
	if secondaryErr != nil {
		return fmt.Errorf("fanout: closing secondary: %w", secondaryErr)
	}
	return nil
}
