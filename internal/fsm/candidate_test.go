package fsm

import (
	"testing"

	"github.com/kjpark/graphminer/internal/graph"
	"github.com/kjpark/graphminer/internal/symtab"
)

func TestParseDepthScenarioE(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"_2:17", 2},
		{"_10:3", 10},
		{"17", 0},       // no ":" at all
		{"_x:17", 0},    // non-numeric depth substring
		{":17", 0},      // no "_" before ":"
	}
	for _, tc := range tests {
		if got := parseDepth(tc.in); got != tc.want {
			t.Errorf("parseDepth(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestGenerateCandidatesScenarioA(t *testing.T) {
	sym := symtab.New()

	userCl := sym.GetID("User")
	movieCl := sym.GetID("Movie")
	genreCl := sym.GetID("Genre")
	watches := sym.GetID("watches")
	hasGenre := sym.GetID("hasGenre")

	u1 := sym.GetID("u1")
	m1 := sym.GetID("m1")
	m2 := sym.GetID("m2")
	g1 := sym.GetID("g1")

	t1 := sym.GetID("t1")
	t2 := sym.GetID("t2")
	t3 := sym.GetID("t3")
	t4 := sym.GetID("t4")

	h := map[int]graph.Triple{
		t1: {ID: t1, SubjCl: userCl, SubjInst: u1, Prop: watches, ObjCl: movieCl, ObjInst: m1},
		t2: {ID: t2, SubjCl: movieCl, SubjInst: m1, Prop: hasGenre, ObjCl: genreCl, ObjInst: g1},
		t3: {ID: t3, SubjCl: userCl, SubjInst: u1, Prop: watches, ObjCl: movieCl, ObjInst: m2},
		t4: {ID: t4, SubjCl: movieCl, SubjInst: m2, Prop: hasGenre, ObjCl: genreCl, ObjInst: g1},
	}
	itidTr := map[int]int{t1: u1, t2: u1, t3: u1, t4: u1}

	m := NewMiner(sym, map[int]bool{movieCl: true})
	candi, same := m.GenerateCandidates(h, itidTr, 2)

	if len(candi) != 4 {
		t.Fatalf("expected all 4 triples accepted (two buckets of size 2), got %d: %v", len(candi), candi)
	}
	if len(same[t1]) != 2 || len(same[t2]) != 2 {
		t.Errorf("expected bucket size 2 for both isomorphism classes, got t1=%v t2=%v", same[t1], same[t2])
	}
	// t1/t3 share a bucket (both SubjCl=User,Prop=watches,ObjCl=Movie after
	// option-collapse); t2/t4 share a different bucket.
	foundT1T3 := false
	for _, member := range same[t1] {
		if member == t3 {
			foundT1T3 = true
		}
	}
	if !foundT1T3 {
		t.Errorf("expected t3 in t1's bucket, got %v", same[t1])
	}
}

func TestGenerateCandidatesScenarioBThresholdExcludes(t *testing.T) {
	sym := symtab.New()

	userCl := sym.GetID("User")
	movieCl := sym.GetID("Movie")
	watches := sym.GetID("watches")
	u1 := sym.GetID("u1")
	m1 := sym.GetID("m1")
	t1 := sym.GetID("t1")

	h := map[int]graph.Triple{
		t1: {ID: t1, SubjCl: userCl, SubjInst: u1, Prop: watches, ObjCl: movieCl, ObjInst: m1},
	}
	itidTr := map[int]int{t1: u1}

	m := NewMiner(sym, map[int]bool{movieCl: true})
	candi, _ := m.GenerateCandidates(h, itidTr, 2)

	if len(candi) != 0 {
		t.Errorf("expected no candidates below threshold, got %v", candi)
	}
}

func TestGenerateCandidatesEmptyInput(t *testing.T) {
	sym := symtab.New()
	m := NewMiner(sym, nil)
	candi, same := m.GenerateCandidates(map[int]graph.Triple{}, map[int]int{}, 2)
	if len(candi) != 0 || len(same) != 0 {
		t.Errorf("expected empty results for empty input, got candi=%v same=%v", candi, same)
	}
}
