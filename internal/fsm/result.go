package fsm

import (
	"sort"
	"strconv"
)

// FinalRecord is a Chunking_Result entry after finalisation: every field
// materialised to its string form, ready for persistence (spec.md section
// 4.8 / 6).
type FinalRecord struct {
	Depth   string
	Left    string
	Prop    string
	Right   string
	Witness string
	Active  string
}

// StackEntry is one element of chunk_stack_list: the frequency and witness
// transaction of a top-level pattern, followed by every triple ID
// transitively referenced by it (via its left/right chunk chain).
type StackEntry struct {
	Frequency int
	Witness   string
	TripleIDs []int
}

// Finalize runs spec.md section 4.8 over the Miner's accumulated
// ChunkingResult: any record whose tid is itself used as another record's
// endpoint (instance_as_chunk — its interned string is all decimal digits)
// has its active flag cleared, then every record is copied into
// chunking_result_final. It is idempotent: calling it twice over the same
// ChunkingResult yields the same outputs (spec.md section 8 property 7),
// since it only reads ChunkingResult and never mutates it.
func (m *Miner) Finalize() (map[int]FinalRecord, []StackEntry) {
	subjects := make(map[int]bool)
	objects := make(map[int]bool)
	for _, rec := range m.ChunkingResult {
		subjects[rec.Left] = true
		objects[rec.Right] = true
	}

	instanceAsChunk := make(map[int]bool)
	for id := range unionSets(subjects, objects) {
		if isAllDigits(m.Sym.GetStr(id)) {
			instanceAsChunk[id] = true
		}
	}

	tids := make([]int, 0, len(m.ChunkingResult))
	for tid := range m.ChunkingResult {
		tids = append(tids, tid)
	}
	sort.Ints(tids)

	final := make(map[int]FinalRecord, len(tids))
	rawActive := make(map[int]bool, len(tids))
	for _, tid := range tids {
		rec := m.ChunkingResult[tid]
		active := rec.Active
		if instanceAsChunk[tid] {
			active = false
		}
		rawActive[tid] = active
		final[tid] = FinalRecord{
			Depth:   strconv.Itoa(rec.Depth),
			Left:    m.Sym.GetStr(rec.Left),
			Prop:    m.Sym.GetStr(rec.Prop),
			Right:   m.Sym.GetStr(rec.Right),
			Witness: m.Sym.GetStr(rec.Witness),
			Active:  activeString(active),
		}
	}

	var stack []StackEntry
	for _, tid := range tids {
		if !rawActive[tid] {
			continue
		}
		rec := m.ChunkingResult[tid]
		freq := m.freq[tid].frequency
		witness := m.Sym.GetStr(rec.Witness)

		// find_result of spec.md section 4.7: a pre-order walk over the
		// chunk reference tree, appending every visited node (chunk or
		// leaf instance) to the stack entry. No cycle guard, matching
		// the original — the chunking invariants guarantee this
		// reference graph is acyclic.
		var refs []int
		var walk func(int)
		walk = func(id int) {
			refs = append(refs, id)
			r, ok := m.ChunkingResult[id]
			if !ok {
				return
			}
			walk(r.Left)
			walk(r.Right)
		}
		walk(tid)

		stack = append(stack, StackEntry{
			Frequency: freq,
			Witness:   witness,
			TripleIDs: refs,
		})
	}

	return final, stack
}

func unionSets(a, b map[int]bool) map[int]bool {
	out := make(map[int]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func activeString(b bool) string {
	if b {
		return "1"
	}
	return ""
}
