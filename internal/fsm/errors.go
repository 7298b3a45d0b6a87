// Package fsm implements the frequent subgraph miner's candidate
// generation, recursive chunking, and result finalisation — spec.md
// sections 4.6, 4.7, 4.8.
package fsm

import (
	"errors"
	"fmt"
)

// SchemaParseError wraps a malformed schema line; aborting the run is the
// caller's responsibility (spec.md section 7). It is a distinct type with
// the same fields as internal/schema.ParseError; schema.Load returns
// *schema.ParseError, not this type.
type SchemaParseError struct {
	Line int
	Text string
	Err  error
}

func (e *SchemaParseError) Error() string {
	return fmt.Sprintf("schema parse error at line %d (%q): %v", e.Line, e.Text, e.Err)
}

func (e *SchemaParseError) Unwrap() error { return e.Err }

// ErrSkipUser indicates the support threshold does not apply to this user
// (watched-movie count below the minimum of 3). Not an error: the driver
// logs and skips the user.
var ErrSkipUser = errors.New("fsm: user skipped, insufficient watch history")

// ErrEmptyCandidateSet indicates no pattern met the support threshold at
// the top level. Not an error: the core returns empty results.
var ErrEmptyCandidateSet = errors.New("fsm: no candidate met support threshold")

// MissingInstanceError indicates get_instance_of was asked for a class that
// matches neither endpoint of a triple — an invariant violation, fatal to
// the user's computation but not to the run.
type MissingInstanceError struct {
	TripleID int
	Class    int
}

func (e *MissingInstanceError) Error() string {
	return fmt.Sprintf("fsm: triple %d has no instance of class %d", e.TripleID, e.Class)
}
