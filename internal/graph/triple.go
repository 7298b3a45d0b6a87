// Package graph holds the per-user triple store, the schema-level path
// enumerator, the triple-path instantiator, and the chunking-type
// classifier — spec.md sections 4.2-4.5's data structures and the 4.3/4.4
// algorithms. The candidate generator and chunker that consume its output
// live in internal/fsm.
package graph

import "fmt"

// Triple is an instance-level edge: subj_cl-subj_inst-prop-obj_cl-obj_inst,
// all Symbol IDs, plus a mutable SameCode tag (0 = unset). ID is the
// triple's own per-user identifier and is excluded from value-equality, as
// is SameCode.
type Triple struct {
	ID       int
	SubjCl   int
	SubjInst int
	Prop     int
	ObjCl    int
	ObjInst  int
	SameCode int
}

// Equal reports value-equality on (SubjCl, SubjInst, Prop, ObjCl, ObjInst).
func (t Triple) Equal(o Triple) bool {
	return t.SubjCl == o.SubjCl && t.SubjInst == o.SubjInst &&
		t.Prop == o.Prop && t.ObjCl == o.ObjCl && t.ObjInst == o.ObjInst
}

// Code returns the canonical-code tuple used as an isomorphism bucket key.
func (t Triple) Code() [5]int {
	return [5]int{t.SubjCl, t.SubjInst, t.Prop, t.ObjCl, t.ObjInst}
}

// MissingInstanceError is raised by InstanceOf when cl matches neither
// endpoint of the triple. Per spec.md section 7 this indicates a bug in the
// caller and is fatal to the user computation.
type MissingInstanceError struct {
	TripleID int
	Class    int
}

func (e *MissingInstanceError) Error() string {
	return fmt.Sprintf("triple %d: no instance of class %d", e.TripleID, e.Class)
}

// InstanceOf returns the triple's subj_inst if cl is the subject class, its
// obj_inst if cl is the object class, or the subj_inst if cl is both (a
// self-edge). It returns MissingInstanceError if cl is neither.
func (t Triple) InstanceOf(cl int) (int, error) {
	switch {
	case cl == t.SubjCl && cl == t.ObjCl:
		return t.SubjInst, nil
	case cl == t.SubjCl:
		return t.SubjInst, nil
	case cl == t.ObjCl:
		return t.ObjInst, nil
	default:
		return 0, &MissingInstanceError{TripleID: t.ID, Class: cl}
	}
}

// Store owns the per-user set of triples, indexed by triple ID and by
// property ID for fast lookup during path instantiation; there is no
// per-class index. It is created fresh
// for each user and discarded at user end; it is never shared across
// users.
type Store struct {
	byID       map[int]Triple
	byProperty map[int][]int // property ID -> triple IDs, insertion order
}

// NewStore builds a Store from a slice of triples, indexing them by
// property as they are added. Later triples with a duplicate ID overwrite
// earlier ones, matching the original's dict-keyed-by-idx behaviour.
func NewStore(triples []Triple) *Store {
	s := &Store{
		byID:       make(map[int]Triple, len(triples)),
		byProperty: make(map[int][]int),
	}
	for _, t := range triples {
		s.Add(t)
	}
	return s
}

// Add inserts or overwrites a triple by ID, appending it to its property's
// index.
func (s *Store) Add(t Triple) {
	s.byID[t.ID] = t
	s.byProperty[t.Prop] = append(s.byProperty[t.Prop], t.ID)
}

// Get returns the triple stored under id.
func (s *Store) Get(id int) (Triple, bool) {
	t, ok := s.byID[id]
	return t, ok
}

// ByProperty returns the triple IDs indexed under property prop, in
// insertion order. The returned slice must not be mutated by the caller.
func (s *Store) ByProperty(prop int) []int {
	return s.byProperty[prop]
}

// HasProperty reports whether any triple in the store carries property
// prop.
func (s *Store) HasProperty(prop int) bool {
	return len(s.byProperty[prop]) > 0
}

// Len returns the number of triples currently stored.
func (s *Store) Len() int { return len(s.byID) }

// All returns every triple currently stored, in no particular order. Used
// by callers that need to snapshot the full set (e.g. before canonicalising
// a candidate-generation round).
func (s *Store) All() map[int]Triple {
	out := make(map[int]Triple, len(s.byID))
	for k, v := range s.byID {
		out[k] = v
	}
	return out
}

// Delete removes a triple by ID.
func (s *Store) Delete(id int) {
	delete(s.byID, id)
}

// Retain keeps only the triples whose ID is in keep, pruning both the ID
// and the property index. Used after path instantiation to drop triples unreachable from
// any start instance (spec.md's it_trs invariant).
func (s *Store) Retain(keep map[int]bool) {
	for id := range s.byID {
		if !keep[id] {
			delete(s.byID, id)
		}
	}
	for prop, ids := range s.byProperty {
		filtered := ids[:0]
		for _, id := range ids {
			if keep[id] {
				filtered = append(filtered, id)
			}
		}
		if len(filtered) == 0 {
			delete(s.byProperty, prop)
		} else {
			s.byProperty[prop] = filtered
		}
	}
}
