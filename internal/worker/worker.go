// Package worker fans mining runs out across users. Each user's run is
// embarrassingly parallel with every other user's (spec.md section 5: the
// worker-private symbol table and triple store mean no shared mutable
// state crosses user boundaries save the read-only SharedSchema), so the
// pool bounds concurrency with golang.org/x/sync/errgroup the way
// MrWong99-glyphoxa/internal/hotctx/assembler.go bounds its fan-out, in
// place of the teacher's cmd/server/main.go bare errChan pattern which
// only ever fan-out a fixed handful of long-lived servers rather than an
// open-ended, user-supplied batch.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/kjpark/graphminer/internal/fsm"
	"github.com/kjpark/graphminer/internal/pipeline"
	"github.com/kjpark/graphminer/internal/store"
)

// Config bounds the pool's behavior.
type Config struct {
	// Concurrency is the maximum number of users mined at once. Zero or
	// negative means unbounded (errgroup.SetLimit is skipped).
	Concurrency int
}

// Pool mines a batch of users against one SharedSchema and persists each
// user's result through Store.
type Pool struct {
	shared *pipeline.SharedSchema
	store  store.Store
	logger *slog.Logger
	cfg    Config
}

// New constructs a Pool. logger defaults to slog.Default() when nil.
func New(shared *pipeline.SharedSchema, st store.Store, cfg Config, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{shared: shared, store: st, logger: logger, cfg: cfg}
}

// Summary reports the outcome of running the whole batch.
type Summary struct {
	Mined   int
	Skipped int
	Failed  int
}

// RunAll mines every UserRun in runs concurrently, bounded by cfg.Concurrency.
// A user skipped for insufficient watch history (fsm.ErrSkipUser) or with an
// empty candidate set (fsm.ErrEmptyCandidateSet) is logged and counted, not
// treated as a fatal error; any other per-user error aborts the whole batch,
// mirroring errgroup's fail-fast semantics in calibrate.go.
func (p *Pool) RunAll(ctx context.Context, runs []pipeline.UserRun) (Summary, error) {
	eg, egCtx := errgroup.WithContext(ctx)
	if p.cfg.Concurrency > 0 {
		eg.SetLimit(p.cfg.Concurrency)
	}

	var summary Summary
	results := make(chan userOutcome, len(runs))

	for _, run := range runs {
		run := run
		eg.Go(func() error {
			outcome := p.runOne(egCtx, run)
			select {
			case results <- outcome:
			case <-egCtx.Done():
			}
			if outcome.err != nil && outcome.err != fsm.ErrSkipUser && outcome.err != fsm.ErrEmptyCandidateSet {
				return outcome.err
			}
			return nil
		})
	}

	err := eg.Wait()
	close(results)

	for outcome := range results {
		switch {
		case outcome.err == fsm.ErrSkipUser:
			summary.Skipped++
			p.logger.Info("skipped user", "user_id", outcome.userID, "reason", "insufficient watch history")
		case outcome.err == fsm.ErrEmptyCandidateSet:
			summary.Skipped++
			p.logger.Info("skipped user", "user_id", outcome.userID, "reason", "no candidate met support threshold")
		case outcome.err != nil:
			summary.Failed++
			p.logger.Error("mining user failed", "user_id", outcome.userID, "error", outcome.err)
		default:
			summary.Mined++
		}
	}

	return summary, err
}

type userOutcome struct {
	userID string
	err    error
}

func (p *Pool) runOne(ctx context.Context, run pipeline.UserRun) userOutcome {
	start := time.Now()
	runID := uuid.NewString()
	logger := p.logger.With("user_id", run.UserID, "run_id", runID, "watched", run.Watched)

	result, err := pipeline.RunUser(p.shared, run)
	collectMS := time.Since(start).Milliseconds()
	if err != nil {
		logger.Debug("run did not produce a result", "collect_ms", collectMS, "error", err)
		return userOutcome{userID: run.UserID, err: err}
	}

	depthChunk := 0
	for _, rec := range result.ChunkingResultFinal {
		if rec.Depth != "" {
			depthChunk++
		}
	}

	mineMS := time.Since(start).Milliseconds()
	logger.Info("mined user",
		"depth_chunk", depthChunk,
		"chunks", len(result.ChunkingResultFinal),
		"patterns", len(result.ChunkStackList),
		"collect_ms", collectMS,
		"mine_ms", mineMS,
	)

	if p.store == nil {
		return userOutcome{userID: run.UserID}
	}

	putErr := p.store.PutRun(ctx, store.Run{
		RunID:               runID,
		UserID:              run.UserID,
		ChunkingResultFinal: result.ChunkingResultFinal,
		ChunkStackList:      result.ChunkStackList,
	})
	if putErr != nil {
		logger.Error("persisting run failed", "error", putErr)
		return userOutcome{userID: run.UserID, err: putErr}
	}

	return userOutcome{userID: run.UserID}
}
