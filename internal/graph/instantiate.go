package graph

import (
	"sort"

	"github.com/kjpark/graphminer/internal/schema"
)

// queueEntry is a partial walk along a schema path: the class reached, the
// instance of that class, and the triple IDs accumulated so far.
type queueEntry struct {
	class int
	inst  int
	acc   []int
}

// InstantiatePaths walks every schema path in paths starting from
// startInstance (an individual of startClass) and returns the concrete
// triple-ID sequences that realise any of them, per spec.md section 4.4.
//
// A path "dies" (contributes nothing) as soon as some step's property has
// no triples in store; InstantiatePaths simply stops extending that path's
// queue, matching the original's "queue = []; break" behaviour.
func InstantiatePaths(props map[int]schema.Property, store *Store, startClass, startInstance int, paths []Path) [][]int {
	var out [][]int

	for _, p := range paths {
		if len(p) == 0 {
			continue
		}

		first := props[p[0]]

		var queue []queueEntry
		if store.HasProperty(first.Prop) {
			for _, tid := range store.ByProperty(first.Prop) {
				t, _ := store.Get(tid)
				secondCl := first.Ran
				if first.Dom != startClass {
					secondCl = first.Dom
				}
				inst, err := t.InstanceOf(startClass)
				if err != nil {
					continue
				}
				if inst == startInstance {
					next, err := t.InstanceOf(secondCl)
					if err != nil {
						continue
					}
					queue = append(queue, queueEntry{class: secondCl, inst: next, acc: []int{t.ID}})
				}
			}
		} else {
			continue
		}

		died := false
		for idx := 1; idx < len(p); idx++ {
			next := props[p[idx]]
			if !store.HasProperty(next.Prop) {
				died = true
				break
			}

			var nextQueue []queueEntry
			for _, q := range queue {
				for _, tid := range store.ByProperty(next.Prop) {
					t, _ := store.Get(tid)
					secondCl := next.Ran
					if next.Dom != q.class {
						secondCl = next.Dom
					}
					inst, err := t.InstanceOf(q.class)
					if err != nil {
						continue
					}
					if inst == q.inst {
						n2, err := t.InstanceOf(secondCl)
						if err != nil {
							continue
						}
						acc := make([]int, len(q.acc)+1)
						copy(acc, q.acc)
						acc[len(q.acc)] = t.ID
						nextQueue = append(nextQueue, queueEntry{class: secondCl, inst: n2, acc: acc})
					}
				}
			}
			queue = nextQueue
		}
		if died {
			continue
		}

		for _, q := range queue {
			out = append(out, q.acc)
		}
	}

	return out
}

// TripleTransactions flattens every start-instance's instantiated triple-ID
// sequences into a per-start-instance transaction (a set of triple IDs),
// and inverts that into it_trs: triple ID -> set of start-instances whose
// transaction contains it.
func TripleTransactions(perStart map[int][][]int) (itTrs map[int]map[int]bool) {
	itTrs = make(map[int]map[int]bool)
	for start, paths := range perStart {
		for _, path := range paths {
			for _, tid := range path {
				if itTrs[tid] == nil {
					itTrs[tid] = make(map[int]bool)
				}
				itTrs[tid][start] = true
			}
		}
	}
	return itTrs
}

// SelectTransaction deterministically picks one start-instance from the set
// of transactions a triple belongs to: the numerically smallest start
// instance ID. This pins spec.md's "itid_tr takes one transaction per
// triple" open question to a reproducible choice (spec.md section 5(ii)).
func SelectTransaction(transactions map[int]bool) int {
	ids := make([]int, 0, len(transactions))
	for id := range transactions {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids[0]
}

// BuildItidTr applies SelectTransaction to every triple in itTrs, producing
// the itid_tr map used throughout candidate generation and chunking.
func BuildItidTr(itTrs map[int]map[int]bool) map[int]int {
	out := make(map[int]int, len(itTrs))
	for tid, txs := range itTrs {
		out[tid] = SelectTransaction(txs)
	}
	return out
}
