package fsm

import (
	"sort"

	"github.com/kjpark/graphminer/internal/graph"
	"github.com/kjpark/graphminer/internal/schema"
	"github.com/kjpark/graphminer/internal/symtab"
)

// Result is the complete per-user output of a mining run (spec.md section
// 6): the finalised chunking records and the top-level pattern stack.
type Result struct {
	ChunkingResultFinal map[int]FinalRecord
	ChunkStackList      []StackEntry
	ChunkTypes          map[int]graph.ChunkType
}

// Run executes the full per-user pipeline described in spec.md sections
// 4.2-4.8 against one user's raw triple tuples: build the triple store,
// filter the schema to properties the user actually has data for,
// instantiate every schema path from each start instance, classify
// chunking types, generate the first round of candidates, and recursively
// chunk until no pattern meets threshold.
//
// sch and paths are shared, read-only state built once by the driver
// before fan-out (spec.md section 5); sym is a worker-private symbol
// table seeded from the driver's schema-seeded state. startClass and
// optionClasses are Symbol IDs already interned into sym.
//
// Run returns ErrEmptyCandidateSet (not a failure) if no triple meets
// threshold at the top level.
func Run(
	sym *symtab.Table,
	sch *schema.Schema,
	paths []graph.Path,
	startClass int,
	optionClasses map[int]bool,
	triples []graph.Triple,
	threshold int,
) (*Result, error) {
	store := graph.NewStore(triples)

	// Filter schema + paths to properties that actually have triples for
	// this user (SPEC_FULL.md "Supplemented features").
	liveProps := make(map[int]bool)
	for pid := range sch.Properties {
		prop := sch.Properties[pid]
		if store.HasProperty(prop.Prop) {
			liveProps[pid] = true
		}
	}
	filteredSchema := sch.FilterToProperties(liveProps)

	var filteredPaths []graph.Path
	for _, p := range paths {
		ok := true
		for _, pid := range p {
			if !liveProps[pid] {
				ok = false
				break
			}
		}
		if ok {
			filteredPaths = append(filteredPaths, p)
		}
	}

	pathPropertySet := make(map[int]bool)
	for _, p := range filteredPaths {
		for _, pid := range p {
			pathPropertySet[pid] = true
		}
	}

	startInstances := collectStartInstances(triples, startClass)

	perStart := make(map[int][][]int, len(startInstances))
	for _, inst := range startInstances {
		perStart[inst] = graph.InstantiatePaths(filteredSchema.Properties, store, startClass, inst, filteredPaths)
	}

	itTrs := graph.TripleTransactions(perStart)
	itidTr := graph.BuildItidTr(itTrs)

	keep := make(map[int]bool, len(itTrs))
	for tid := range itTrs {
		keep[tid] = true
	}
	store.Retain(keep)

	chunkTypes := graph.ClassifyChunkTypes(filteredSchema.Properties, pathPropertySet, optionClasses)

	h := store.All()
	miner := NewMiner(sym, optionClasses)

	candiItTr, sameItids := miner.GenerateCandidates(h, itidTr, threshold)
	h = TagSameCodes(sym, h, sameItids)

	if len(candiItTr) == 0 {
		return &Result{ChunkingResultFinal: map[int]FinalRecord{}, ChunkTypes: chunkTypes}, ErrEmptyCandidateSet
	}

	sampled := smallestKey(candiItTr)
	miner.Chunk(sameItids[sampled], h, itidTr, threshold)

	final, stack := miner.Finalize()
	return &Result{ChunkingResultFinal: final, ChunkStackList: stack, ChunkTypes: chunkTypes}, nil
}

func collectStartInstances(triples []graph.Triple, startClass int) []int {
	seen := make(map[int]bool)
	var out []int
	for _, t := range triples {
		if t.ObjCl == startClass && !seen[t.ObjInst] {
			seen[t.ObjInst] = true
			out = append(out, t.ObjInst)
		}
		if t.SubjCl == startClass && !seen[t.SubjInst] {
			seen[t.SubjInst] = true
			out = append(out, t.SubjInst)
		}
	}
	return out
}

func smallestKey(m map[int]int) int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys[0]
}
