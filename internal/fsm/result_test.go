package fsm

import (
	"reflect"
	"testing"

	"github.com/kjpark/graphminer/internal/symtab"
)

func TestFinalizeClearsActiveForInstanceAsChunk(t *testing.T) {
	sym := symtab.New()

	leafA := sym.GetID("leafA")
	leafB := sym.GetID("leafB")
	propP := sym.GetID("p")
	propQ := sym.GetID("q")
	witness := sym.GetID("tr1")

	// innerTid's interned string is all-digits ("42"); it will also be
	// used as outerTid's Left endpoint, making it instance_as_chunk.
	innerTid := sym.GetID("42")
	outerTid := sym.GetID("outer")

	m := NewMiner(sym, nil)
	m.ChunkingResult[innerTid] = &Record{Depth: 1, Left: leafA, Prop: propQ, Right: leafB, Witness: witness, Active: true}
	m.ChunkingResult[outerTid] = &Record{Depth: 2, Left: innerTid, Prop: propP, Right: leafB, Witness: witness, Active: true}
	m.freq[outerTid] = freqDepth{frequency: 3, depth: 2}

	final, stack := m.Finalize()

	if got := final[innerTid].Active; got != "" {
		t.Errorf("innerTid Active = %q, want \"\" (instance_as_chunk must clear it)", got)
	}
	if got := final[outerTid].Active; got != "1" {
		t.Errorf("outerTid Active = %q, want \"1\"", got)
	}

	if len(stack) != 1 {
		t.Fatalf("expected exactly 1 stack entry (only outerTid remains active), got %d", len(stack))
	}
	entry := stack[0]
	if entry.Frequency != 3 {
		t.Errorf("stack entry frequency = %d, want 3", entry.Frequency)
	}
	want := []int{outerTid, innerTid, leafA, leafB, leafB}
	if !reflect.DeepEqual(entry.TripleIDs, want) {
		t.Errorf("stack entry TripleIDs = %v, want %v", entry.TripleIDs, want)
	}
}

func TestFinalizeIsIdempotent(t *testing.T) {
	sym := symtab.New()
	leafA := sym.GetID("leafA")
	leafB := sym.GetID("leafB")
	prop := sym.GetID("p")
	witness := sym.GetID("tr1")
	tid := sym.GetID("tid1")

	m := NewMiner(sym, nil)
	m.ChunkingResult[tid] = &Record{Depth: 1, Left: leafA, Prop: prop, Right: leafB, Witness: witness, Active: true}
	m.freq[tid] = freqDepth{frequency: 2, depth: 1}

	final1, stack1 := m.Finalize()
	final2, stack2 := m.Finalize()

	if !reflect.DeepEqual(final1, final2) {
		t.Errorf("Finalize is not idempotent on final records: %v != %v", final1, final2)
	}
	if !reflect.DeepEqual(stack1, stack2) {
		t.Errorf("Finalize is not idempotent on stack: %v != %v", stack1, stack2)
	}
}

func TestIsAllDigits(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"123", true},
		{"", false},
		{"12a", false},
		{"-12", false},
	}
	for _, tc := range tests {
		if got := isAllDigits(tc.in); got != tc.want {
			t.Errorf("isAllDigits(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
