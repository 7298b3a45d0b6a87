package fsm

import (
	"sort"
	"strconv"
	"strings"

	"github.com/kjpark/graphminer/internal/graph"
	"github.com/kjpark/graphminer/internal/symtab"
)

// freqDepth is the per-triple bookkeeping record spec.md calls
// `ITID_Freq_depth[tid] = (bucket_size, accepted_flag, depth, reserved)`.
type freqDepth struct {
	frequency int
	accepted  bool
	depth     int
}

// Miner holds the chunking state that persists across candidate-generation
// and chunking rounds for a single user: the depth counter, the
// composite-node-to-label map, and the per-triple frequency/depth
// bookkeeping. It is created fresh per user and discarded at user end.
type Miner struct {
	Sym           *symtab.Table
	OptionClasses map[int]bool

	chunkIDLabel map[int]int // composite node ID -> label ID
	freq         map[int]freqDepth
	depthChunk   int

	// ChunkingResult is the per-chunked-triple record set built up by
	// Chunk; exported for the result-finalisation step.
	ChunkingResult map[int]*Record
}

// NewMiner creates an empty Miner for one user.
func NewMiner(sym *symtab.Table, optionClasses map[int]bool) *Miner {
	return &Miner{
		Sym:            sym,
		OptionClasses:  optionClasses,
		chunkIDLabel:   make(map[int]int),
		freq:           make(map[int]freqDepth),
		ChunkingResult: make(map[int]*Record),
	}
}

// DepthChunk returns the current recursion depth (0 at top level).
func (m *Miner) DepthChunk() int { return m.depthChunk }

// canonicalize returns a copy of h where option-class instances are
// replaced by their class, and any instance already assigned a chunk label
// is replaced by that label — the isomorphism-testing view of spec.md
// section 4.6 step 1.
func (m *Miner) canonicalize(h map[int]graph.Triple) map[int]graph.Triple {
	out := make(map[int]graph.Triple, len(h))
	for tid, t := range h {
		if m.OptionClasses[t.SubjCl] {
			t.SubjInst = t.SubjCl
		}
		if m.OptionClasses[t.ObjCl] {
			t.ObjInst = t.ObjCl
		}
		if label, ok := m.chunkIDLabel[t.SubjInst]; ok {
			t.SubjInst = label
		}
		if label, ok := m.chunkIDLabel[t.ObjInst]; ok {
			t.ObjInst = label
		}
		out[tid] = t
	}
	return out
}

// parseDepth extracts the depth d from a composite node string of the form
// "_<d>:<rest>". If the string contains no ":" the depth is 0; if the
// substring between "_" and ":" is not a valid integer, the depth silently
// defaults to 0 (spec.md Scenario E).
func parseDepth(s string) int {
	if !strings.Contains(s, ":") {
		return 0
	}
	underscoreIdx := strings.Index(s, "_")
	colonIdx := strings.Index(s, ":")
	if underscoreIdx < 0 || colonIdx <= underscoreIdx {
		return 0
	}
	n, err := strconv.Atoi(s[underscoreIdx+1 : colonIdx])
	if err != nil {
		return 0
	}
	return n
}

// makeFreqDepth computes the (frequency, depth) pair for a triple given the
// size of its isomorphism bucket.
func (m *Miner) makeFreqDepth(t graph.Triple, bucketSize int) freqDepth {
	subjDepth := parseDepth(m.Sym.GetStr(t.SubjInst))
	objDepth := parseDepth(m.Sym.GetStr(t.ObjInst))
	depth := subjDepth
	if objDepth > depth {
		depth = objDepth
	}
	return freqDepth{frequency: bucketSize, depth: depth}
}

// GenerateCandidates computes canonical triple codes over h, buckets
// triples by isomorphism, and selects the maximum-frequency
// minimum-depth candidates meeting threshold, per spec.md section 4.6.
// It returns the accepted tid -> transaction map, and for each accepted
// tid the full bucket of triple IDs sharing its canonical code.
//
// As a side effect it allocates a fresh label for each accepted bucket and
// records composite-node -> label entries in the Miner's ChunkID_Label map,
// so that a subsequent chunking round sees the right label when it
// collapses candidates.
func (m *Miner) GenerateCandidates(h map[int]graph.Triple, itidTr map[int]int, threshold int) (candiItTr map[int]int, sameItids map[int][]int) {
	canon := m.canonicalize(h)

	isoBuckets := make(map[[5]int][]int)
	// stable iteration order over h for deterministic bucket contents
	tids := sortedKeys(h)
	for _, tid := range tids {
		code := canon[tid].Code()
		isoBuckets[code] = append(isoBuckets[code], tid)
	}

	if len(isoBuckets) == 0 {
		return map[int]int{}, map[int][]int{}
	}

	maxFreq := 0
	for _, bucket := range isoBuckets {
		if len(bucket) > maxFreq {
			maxFreq = len(bucket)
		}
	}

	sameTriples := make(map[int][]int, len(h)) // tid -> its bucket
	for _, bucket := range isoBuckets {
		for _, tid := range bucket {
			sameTriples[tid] = bucket
		}
	}

	for _, tid := range tids {
		fd := m.makeFreqDepth(canon[tid], len(sameTriples[tid]))
		// the accepted flag is a memo carried over from earlier rounds
		fd.accepted = m.freq[tid].accepted
		m.freq[tid] = fd
	}

	minDepth := 0
	first := true
	for _, tid := range tids {
		fd := m.freq[tid]
		if fd.frequency == maxFreq && !fd.accepted {
			if first || fd.depth < minDepth {
				minDepth = fd.depth
				first = false
			}
		}
	}

	candiItTr = make(map[int]int)
	sameItids = make(map[int][]int)
	var acceptedBuckets [][]int
	labeledCode := make(map[[5]int]bool)

	for _, tid := range tids {
		fd := m.freq[tid]
		if fd.frequency < threshold {
			continue
		}
		if fd.frequency != maxFreq || fd.depth != minDepth {
			continue
		}
		candiItTr[tid] = itidTr[tid]
		fd.accepted = true
		m.freq[tid] = fd
		sameItids[tid] = append([]int(nil), sameTriples[tid]...)

		code := canon[tid].Code()
		if !labeledCode[code] {
			labeledCode[code] = true
			acceptedBuckets = append(acceptedBuckets, sameTriples[tid])
		}
	}

	labelNo := 0
	for _, bucket := range acceptedBuckets {
		labelStr := "_" + strconv.Itoa(m.depthChunk+1) + ":" + strconv.Itoa(labelNo)
		labelID := m.Sym.GetID(labelStr)
		for _, tid := range bucket {
			nodeStr := "_" + strconv.Itoa(m.depthChunk+1) + ":" + strconv.Itoa(tid)
			nodeID := m.Sym.GetID(nodeStr)
			m.chunkIDLabel[nodeID] = labelID
		}
		labelNo++
	}

	return candiItTr, sameItids
}

func sortedKeys(h map[int]graph.Triple) []int {
	keys := make([]int, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// TagSameCodes assigns a shared "same_N" symbol to every triple of each
// isomorphism bucket listed in sameItids, i.e. the buckets accepted by
// GenerateCandidates; triples of buckets that were not accepted keep
// SameCode 0. This reproduces
// original_source/src/pipeline.py's debugging aid (see SPEC_FULL.md
// "Supplemented features"); it has no effect on candidate selection or
// chunking.
func TagSameCodes(sym *symtab.Table, h map[int]graph.Triple, sameItids map[int][]int) map[int]graph.Triple {
	out := make(map[int]graph.Triple, len(h))
	for k, v := range h {
		out[k] = v
	}

	sameCodeNumber := 1
	seen := make(map[int]bool)
	tids := sortedKeys(h)
	for _, tid := range tids {
		bucket, ok := sameItids[tid]
		if !ok || seen[tid] {
			continue
		}
		t := out[tid]
		if t.SameCode != 0 {
			continue
		}
		label := sym.GetID("same_" + strconv.Itoa(sameCodeNumber))
		for _, member := range bucket {
			mt := out[member]
			if mt.SameCode == 0 {
				mt.SameCode = label
				out[member] = mt
			}
			seen[member] = true
		}
		sameCodeNumber++
	}
	return out
}
