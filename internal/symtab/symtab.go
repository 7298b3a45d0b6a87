// Package symtab interns strings as dense, monotone integer IDs.
//
// ID 0 is reserved for "no value / empty code" and is never assigned to a
// string. Once a string has been assigned an ID it keeps that ID for the
// lifetime of the Table; IDs are never reused or reassigned.
package symtab

import (
	"strconv"
	"sync"
)

// Table is a two-way string/integer interner. The zero value is not usable;
// construct one with New.
//
// A Table is safe for concurrent use by a single worker. Per spec, IDs must
// never cross worker boundaries except for schema terms interned (via
// LoadSchemaTerms) before workers are forked from a shared base state —
// Table exposes Snapshot/Restore for exactly that handoff.
type Table struct {
	mu        sync.RWMutex
	strToID   map[string]int
	idToStr   map[int]string
	counter   int
}

// New returns an empty symbol table.
func New() *Table {
	return &Table{
		strToID: make(map[string]int),
		idToStr: make(map[int]string),
	}
}

// GetID returns the existing ID for s, or interns s and returns a freshly
// assigned one.
func (t *Table) GetID(s string) int {
	t.mu.RLock()
	if id, ok := t.strToID[s]; ok {
		t.mu.RUnlock()
		return id
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.strToID[s]; ok {
		return id
	}
	t.counter++
	id := t.counter
	t.strToID[s] = id
	t.idToStr[id] = s
	return id
}

// GetStr returns the string interned under id, or the decimal form of id if
// no such string was ever interned.
func (t *Table) GetStr(id int) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if s, ok := t.idToStr[id]; ok {
		return s
	}
	return strconv.Itoa(id)
}

// LoadSchemaTerms bulk-interns a list of known terms so their IDs are frozen
// before any per-user strings are interned. Order is preserved, so repeated
// runs against the same schema produce the same IDs for the same terms.
func (t *Table) LoadSchemaTerms(terms []string) {
	for _, term := range terms {
		t.GetID(term)
	}
}

// State is a snapshot of a Table's contents, used to seed a worker-private
// copy from a shared base (the schema terms interned by the driver before
// fan-out).
type State struct {
	StrToID map[string]int
	IDToStr map[int]string
	Counter int
}

// Snapshot returns a deep copy of the table's current state.
func (t *Table) Snapshot() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := State{
		StrToID: make(map[string]int, len(t.strToID)),
		IDToStr: make(map[int]string, len(t.idToStr)),
		Counter: t.counter,
	}
	for k, v := range t.strToID {
		s.StrToID[k] = v
	}
	for k, v := range t.idToStr {
		s.IDToStr[k] = v
	}
	return s
}

// Restore seeds a new, independent Table from a previously captured State.
// Used by a worker to clone the driver's schema-seeded mapper before
// extending it with per-user strings.
func Restore(s State) *Table {
	t := &Table{
		strToID: make(map[string]int, len(s.StrToID)),
		idToStr: make(map[int]string, len(s.IDToStr)),
		counter: s.Counter,
	}
	for k, v := range s.StrToID {
		t.strToID[k] = v
	}
	for k, v := range s.IDToStr {
		t.idToStr[k] = v
	}
	return t
}
