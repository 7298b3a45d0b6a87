package graph

import (
	"strings"
	"testing"

	"github.com/kjpark/graphminer/internal/schema"
	"github.com/kjpark/graphminer/internal/symtab"
)

func TestInstantiatePathsScenarioA(t *testing.T) {
	sym := symtab.New()
	sch, err := schema.Load(strings.NewReader("1^User^watches^Movie\n2^Movie^hasGenre^Genre\n"), sym)
	if err != nil {
		t.Fatalf("schema.Load failed: %v", err)
	}

	userCl := sym.GetID("User")
	movieCl := sym.GetID("Movie")
	genreCl := sym.GetID("Genre")
	watches := sym.GetID("watches")
	hasGenre := sym.GetID("hasGenre")

	u1 := sym.GetID("u1")
	m1 := sym.GetID("m1")
	m2 := sym.GetID("m2")
	g1 := sym.GetID("g1")

	t1 := Triple{ID: sym.GetID("t1"), SubjCl: userCl, SubjInst: u1, Prop: watches, ObjCl: movieCl, ObjInst: m1}
	t2 := Triple{ID: sym.GetID("t2"), SubjCl: movieCl, SubjInst: m1, Prop: hasGenre, ObjCl: genreCl, ObjInst: g1}
	t3 := Triple{ID: sym.GetID("t3"), SubjCl: userCl, SubjInst: u1, Prop: watches, ObjCl: movieCl, ObjInst: m2}
	t4 := Triple{ID: sym.GetID("t4"), SubjCl: movieCl, SubjInst: m2, Prop: hasGenre, ObjCl: genreCl, ObjInst: g1}

	store := NewStore([]Triple{t1, t2, t3, t4})
	end := map[int]bool{genreCl: true}
	paths, _ := EnumeratePaths(sch, userCl, end, 4)

	seqs := InstantiatePaths(sch.Properties, store, userCl, u1, paths)

	if len(seqs) != 2 {
		t.Fatalf("expected 2 instantiated sequences, got %d: %v", len(seqs), seqs)
	}
	seen := make(map[[2]int]bool)
	for _, seq := range seqs {
		if len(seq) != 2 {
			t.Fatalf("expected a 2-triple sequence, got %v", seq)
		}
		seen[[2]int{seq[0], seq[1]}] = true
	}
	if !seen[[2]int{t1.ID, t2.ID}] || !seen[[2]int{t3.ID, t4.ID}] {
		t.Errorf("expected sequences {t1,t2} and {t3,t4}, got %v", seqs)
	}
}

func TestInstantiatePathsScenarioDPropertyAbsentKillsPath(t *testing.T) {
	sym := symtab.New()
	sch, err := schema.Load(strings.NewReader("1^User^watches^Movie\n2^Movie^hasGenre^Genre\n"), sym)
	if err != nil {
		t.Fatalf("schema.Load failed: %v", err)
	}

	userCl := sym.GetID("User")
	movieCl := sym.GetID("Movie")
	genreCl := sym.GetID("Genre")
	watches := sym.GetID("watches")

	u1 := sym.GetID("u1")
	m1 := sym.GetID("m1")

	// Only the first property's triple exists; hasGenre has zero triples.
	t1 := Triple{ID: sym.GetID("t1"), SubjCl: userCl, SubjInst: u1, Prop: watches, ObjCl: movieCl, ObjInst: m1}
	store := NewStore([]Triple{t1})

	end := map[int]bool{genreCl: true}
	paths, _ := EnumeratePaths(sch, userCl, end, 4)

	seqs := InstantiatePaths(sch.Properties, store, userCl, u1, paths)
	if len(seqs) != 0 {
		t.Errorf("expected path to die when a later property is absent, got %v", seqs)
	}
}

func TestSelectTransactionPicksMinimum(t *testing.T) {
	got := SelectTransaction(map[int]bool{9: true, 3: true, 7: true})
	if got != 3 {
		t.Errorf("SelectTransaction = %d, want 3", got)
	}
}

func TestBuildItidTr(t *testing.T) {
	itTrs := map[int]map[int]bool{
		1: {5: true, 2: true},
		2: {9: true},
	}
	itidTr := BuildItidTr(itTrs)
	if itidTr[1] != 2 {
		t.Errorf("itidTr[1] = %d, want 2", itidTr[1])
	}
	if itidTr[2] != 9 {
		t.Errorf("itidTr[2] = %d, want 9", itidTr[2])
	}
}
