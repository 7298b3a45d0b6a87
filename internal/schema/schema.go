// Package schema parses a movie ontology schema file into a property table
// and an undirected class graph, per spec.md section 4.2.
package schema

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/kjpark/graphminer/internal/symtab"
)

// Property is a directed schema edge (dom, prop, ran), all Symbol IDs.
type Property struct {
	Dom  int
	Prop int
	Ran  int
}

// Edge is one entry in a class's adjacency list: the property that connects
// it to Neighbor.
type Edge struct {
	PropID   int
	Neighbor int
}

// Schema is the immutable, read-only-after-load result of parsing a schema
// file: the property table, the undirected class adjacency graph, and a
// dense class index (class symbol -> 0-based class number, assigned in
// first-seen order).
type Schema struct {
	Properties map[int]Property
	Graph      map[int][]Edge
	ClassIndex map[int]int
}

// ParseError reports a malformed schema line: line number (1-based) and the
// raw text of the line.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("schema: line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Load reads a `^`-delimited schema file (fields: idx, dom, prop, ran) and
// returns the parsed Schema. All four fields of every line are interned
// into sym. Self-edges (dom == ran) are recorded in Properties but excluded
// from Graph, per spec.md's invariant that the schema graph has no
// self-loops.
//
// Each (property, neighbor) pair is appended to both endpoints' adjacency
// lists as it is encountered; Load does not deduplicate — the path
// enumerator's "property not already in path" rule is what keeps paths
// free of repeats, not schema-graph deduplication.
func Load(r io.Reader, sym *symtab.Table) (*Schema, error) {
	s := &Schema{
		Properties: make(map[int]Property),
		Graph:      make(map[int][]Edge),
		ClassIndex: make(map[int]int),
	}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	nextClassNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}

		fields := strings.Split(line, "^")
		if len(fields) != 4 {
			return nil, &ParseError{Line: lineNo, Text: line,
				Err: fmt.Errorf("expected 4 fields, got %d", len(fields))}
		}

		idxID := sym.GetID(fields[0])
		domID := sym.GetID(fields[1])
		propID := sym.GetID(fields[2])
		ranID := sym.GetID(fields[3])

		s.Properties[idxID] = Property{Dom: domID, Prop: propID, Ran: ranID}

		if _, ok := s.ClassIndex[domID]; !ok {
			s.ClassIndex[domID] = nextClassNo
			nextClassNo++
		}
		if _, ok := s.ClassIndex[ranID]; !ok {
			s.ClassIndex[ranID] = nextClassNo
			nextClassNo++
		}

		if domID == ranID {
			continue
		}

		s.Graph[domID] = append(s.Graph[domID], Edge{PropID: idxID, Neighbor: ranID})
		s.Graph[ranID] = append(s.Graph[ranID], Edge{PropID: idxID, Neighbor: domID})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("schema: reading: %w", err)
	}

	return s, nil
}

// FilterToProperties returns a copy of s restricted to the given set of
// live property IDs: Properties, Graph edges, and ClassIndex entries whose
// class no longer appears anywhere are dropped. Used to shrink the schema
// to the properties that actually have triples for the current user,
// matching original_source/src/pipeline.go's pre-instantiation filtering
// step (see SPEC_FULL.md "Supplemented features").
func (s *Schema) FilterToProperties(live map[int]bool) *Schema {
	out := &Schema{
		Properties: make(map[int]Property, len(live)),
		Graph:      make(map[int][]Edge),
		ClassIndex: make(map[int]int),
	}

	liveClasses := make(map[int]bool)
	for pid, prop := range s.Properties {
		if !live[pid] {
			continue
		}
		out.Properties[pid] = prop
		liveClasses[prop.Dom] = true
		liveClasses[prop.Ran] = true
	}

	for cls, edges := range s.Graph {
		if !liveClasses[cls] {
			continue
		}
		var kept []Edge
		for _, e := range edges {
			if live[e.PropID] {
				kept = append(kept, e)
			}
		}
		if len(kept) > 0 {
			out.Graph[cls] = kept
		}
	}

	for cls, no := range s.ClassIndex {
		if liveClasses[cls] {
			out.ClassIndex[cls] = no
		}
	}

	return out
}
