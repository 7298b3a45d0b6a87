package fsm

import (
	"sort"
	"strconv"
	"strings"

	"github.com/kjpark/graphminer/internal/graph"
)

// Record is one entry of the Chunking Record described in spec.md section
// 3: the depth at which the pattern was chunked, its left/right node
// symbols, the property connecting them, the witnessing transaction, and
// whether it is a top-level (active) pattern.
type Record struct {
	Depth     int
	Left      int
	Prop      int
	Right     int
	Witness   int
	Active    bool
}

// Chunk recursively collapses candidates into composite nodes, rewrites
// adjacent triples, and recurses on whatever new candidates the rewritten
// set produces — spec.md section 4.7. h and itidTr are the caller's
// working set; Chunk operates on private copies and does not mutate them.
//
// threshold is the support threshold for this user; it never changes
// across the recursion.
func (m *Miner) Chunk(candidates []int, h map[int]graph.Triple, itidTr map[int]int, threshold int) {
	m.depthChunk++
	defer func() { m.depthChunk-- }()

	hPrime := make(map[int]graph.Triple, len(h))
	for k, v := range h {
		hPrime[k] = v
	}
	itidTrPrime := make(map[int]int, len(itidTr))
	for k, v := range itidTr {
		itidTrPrime[k] = v
	}

	// transaction -> triple IDs still live in that transaction, the
	// Tr_IT_hash of spec.md section 4.7 step 1.
	trIT := make(map[int][]int)
	for tid, tx := range itidTrPrime {
		trIT[tx] = append(trIT[tx], tid)
	}
	// keep sibling order deterministic: ascending tid within a
	// transaction, per spec.md section 5(iv).
	for tx := range trIT {
		sort.Ints(trIT[tx])
	}

	sortedCandidates := append([]int(nil), candidates...)
	sort.Ints(sortedCandidates)

	for _, candidate := range sortedCandidates {
		nodeStr := "_" + strconv.Itoa(m.depthChunk) + ":" + strconv.Itoa(candidate)
		newNodeID := m.Sym.GetID(nodeStr)

		trOfCandidate := itidTrPrime[candidate]
		candTriple := h[candidate] // original, not canonicalised
		candSubjInst := hPrime[candidate].SubjInst
		candObjInst := hPrime[candidate].ObjInst

		leftI, rightI := displayEndpoints(m, candTriple)

		m.ChunkingResult[candidate] = &Record{
			Depth:   m.depthChunk,
			Left:    leftI,
			Prop:    candTriple.Prop,
			Right:   rightI,
			Witness: trOfCandidate,
			Active:  true,
		}

		if list, ok := trIT[trOfCandidate]; ok {
			trIT[trOfCandidate] = removeInt(list, candidate)
		}
		delete(hPrime, candidate)
		delete(itidTrPrime, candidate)

		for _, sibling := range trIT[trOfCandidate] {
			t := hPrime[sibling]
			sharesSubj := t.SubjInst == candSubjInst || t.SubjInst == candObjInst
			sharesObj := t.ObjInst == candSubjInst || t.ObjInst == candObjInst

			label := m.chunkIDLabel[newNodeID]

			switch {
			case sharesSubj && sharesObj:
				// Preserved observed behaviour (spec.md section 9 open
				// question): when a sibling shares both endpoints with
				// the chunked candidate, only the subject side is
				// rewritten. This is very likely a bug in the original
				// implementation (it silently drops the object-side
				// chunk link) but the spec pins it as the behaviour to
				// reproduce.
				t.SubjInst = newNodeID
				t.SubjCl = label
			case sharesSubj:
				t.SubjInst = newNodeID
				t.SubjCl = label
			case sharesObj:
				t.ObjInst = newNodeID
				t.ObjCl = label
			}
			hPrime[sibling] = t
		}
	}

	nextCandi, nextSame := m.GenerateCandidates(hPrime, itidTrPrime, threshold)
	if len(nextCandi) == 0 {
		return
	}

	sampled := sortedIntKeys(nextCandi)[0]
	nextCandidates := nextSame[sampled]
	m.Chunk(nextCandidates, hPrime, itidTrPrime, threshold)
}

// displayEndpoints derives the left/right values recorded in a Chunking
// Record for a candidate triple: if the endpoint's class is an option
// class, the class ID is used; otherwise, if the instance symbol contains
// ":" the substring after it is re-interned and used; else the original
// instance ID is used. Symmetric for subject and object.
func displayEndpoints(m *Miner, t graph.Triple) (left, right int) {
	left = displayOne(m, t.SubjInst, t.SubjCl)
	right = displayOne(m, t.ObjInst, t.ObjCl)
	return left, right
}

func displayOne(m *Miner, inst, cls int) int {
	s := m.Sym.GetStr(inst)
	if idx := strings.Index(s, ":"); idx >= 0 && idx+1 < len(s) {
		inst = m.Sym.GetID(s[idx+1:])
	}
	if m.OptionClasses[cls] {
		inst = cls
	}
	return inst
}

func removeInt(xs []int, x int) []int {
	out := xs[:0]
	for _, v := range xs {
		if v != x {
			out = append(out, v)
		}
	}
	return out
}

func sortedIntKeys(m map[int]int) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
