// Package pipeline wires the ingestion contracts, the shared schema state,
// and the per-user FSM core together. It corresponds to the driver layer
// of original_source/src/pipeline.py and is not part of the core: it owns
// symbol-table seeding, schema-path enumeration (once, shared read-only
// across users), and per-user triple construction before handing off to
// internal/fsm.Run.
package pipeline

import (
	"fmt"
	"io"

	"github.com/kjpark/graphminer/internal/fsm"
	"github.com/kjpark/graphminer/internal/graph"
	"github.com/kjpark/graphminer/internal/ingest"
	"github.com/kjpark/graphminer/internal/schema"
	"github.com/kjpark/graphminer/internal/symtab"
)

// SharedSchema is the immutable, read-only state built once by the driver
// before fan-out: the parsed schema, the enumerated schema paths, the
// Symbol IDs of the configured start/end/option classes, and a snapshot of
// the mapper state after schema terms are interned. Workers clone
// BaseMapper via symtab.Restore to get a worker-private, schema-seeded
// table (spec.md section 5).
type SharedSchema struct {
	Schema           *schema.Schema
	Paths            []graph.Path
	StartClass       int
	EndClasses       map[int]bool
	OptionClasses    map[int]bool
	BaseMapper       symtab.State
	WatchingProperty string
}

// Config bundles the hyperparameters of spec.md section 6.
type Config struct {
	StartClass       string
	EndClasses       []string
	OptionClasses    []string
	MaxDepth         int
	WatchingProperty string // property name whose triple count drives SupportThreshold
}

// LoadSchema parses the schema file from r, interns the configured
// start/end/option classes, and enumerates every schema path from start to
// an end class bounded by cfg.MaxDepth. This is run exactly once by the
// driver; its output is shared read-only by every worker.
func LoadSchema(r io.Reader, cfg Config) (*SharedSchema, error) {
	sym := symtab.New()

	sch, err := schema.Load(r, sym)
	if err != nil {
		return nil, fmt.Errorf("pipeline: loading schema: %w", err)
	}

	startClass := sym.GetID(cfg.StartClass)

	endClasses := make(map[int]bool, len(cfg.EndClasses))
	for _, c := range cfg.EndClasses {
		endClasses[sym.GetID(c)] = true
	}

	optionClasses := make(map[int]bool, len(cfg.OptionClasses))
	for _, c := range cfg.OptionClasses {
		optionClasses[sym.GetID(c)] = true
	}

	paths, _ := graph.EnumeratePaths(sch, startClass, endClasses, cfg.MaxDepth)

	return &SharedSchema{
		Schema:           sch,
		Paths:            paths,
		StartClass:       startClass,
		EndClasses:       endClasses,
		OptionClasses:    optionClasses,
		BaseMapper:       sym.Snapshot(),
		WatchingProperty: cfg.WatchingProperty,
	}, nil
}

// NewUserRun builds a UserRun for userID from its raw triple records,
// deriving the watched-event count (spec.md section 6's w) by counting
// triples whose Prop field is shared.WatchingProperty.
func NewUserRun(shared *SharedSchema, userID string, triples []ingest.TripleRecord) UserRun {
	watched := 0
	for _, t := range triples {
		if t.Prop == shared.WatchingProperty {
			watched++
		}
	}
	return UserRun{UserID: userID, Triples: triples, Watched: watched}
}

// UserRun holds everything one worker needs to mine one user: the user's
// ID, raw triple records, and watched-event count. RunUser builds the
// worker-private symbol table from the shared schema state.
type UserRun struct {
	UserID  string
	Triples []ingest.TripleRecord
	Watched int // number of watching events, drives SupportThreshold
}

// RunUser executes spec.md's full per-user pipeline for one UserRun: seed
// a worker-private symbol table, intern the raw triple tuples into
// graph.Triple, and invoke fsm.Run. Returns fsm.ErrSkipUser if the
// watched-movie count is below the minimum threshold band.
func RunUser(shared *SharedSchema, run UserRun) (*fsm.Result, error) {
	threshold, ok := ingest.SupportThreshold(run.Watched)
	if !ok {
		return nil, fsm.ErrSkipUser
	}

	sym := symtab.Restore(shared.BaseMapper)

	triples := make([]graph.Triple, 0, len(run.Triples))
	for _, rec := range run.Triples {
		triples = append(triples, graph.Triple{
			ID:       sym.GetID(rec.Idx),
			SubjCl:   sym.GetID(rec.SubjCl),
			SubjInst: sym.GetID(rec.SubjInst),
			Prop:     sym.GetID(rec.Prop),
			ObjCl:    sym.GetID(rec.ObjCl),
			ObjInst:  sym.GetID(rec.ObjInst),
		})
	}

	return fsm.Run(sym, shared.Schema, shared.Paths, shared.StartClass, shared.OptionClasses, triples, threshold)
}
