package graph

import (
	"strings"
	"testing"

	"github.com/kjpark/graphminer/internal/schema"
	"github.com/kjpark/graphminer/internal/symtab"
)

func TestEnumeratePathsScenarioA(t *testing.T) {
	sym := symtab.New()
	sch, err := schema.Load(strings.NewReader("1^User^watches^Movie\n2^Movie^hasGenre^Genre\n"), sym)
	if err != nil {
		t.Fatalf("schema.Load failed: %v", err)
	}

	start := sym.GetID("User")
	end := map[int]bool{sym.GetID("Genre"): true}

	paths, propSet := EnumeratePaths(sch, start, end, 4)

	if len(paths) != 1 {
		t.Fatalf("expected exactly one schema path, got %d: %v", len(paths), paths)
	}
	if len(paths[0]) != 2 {
		t.Fatalf("expected path of length 2, got %d", len(paths[0]))
	}

	watchesID := sym.GetID("1")
	hasGenreID := sym.GetID("2")
	if paths[0][0] != watchesID || paths[0][1] != hasGenreID {
		t.Errorf("expected path [%d,%d], got %v", watchesID, hasGenreID, paths[0])
	}
	if !propSet[watchesID] || !propSet[hasGenreID] {
		t.Errorf("path_property_set missing expected properties: %v", propSet)
	}
}

func TestEnumeratePathsScenarioCSelfEdgeYieldsNoPath(t *testing.T) {
	sym := symtab.New()
	sch, err := schema.Load(strings.NewReader("1^A^rel^A\n"), sym)
	if err != nil {
		t.Fatalf("schema.Load failed: %v", err)
	}

	start := sym.GetID("A")
	end := map[int]bool{sym.GetID("A"): true}

	paths, _ := EnumeratePaths(sch, start, end, 4)
	if len(paths) != 0 {
		t.Errorf("expected no paths through a self-edge class, got %v", paths)
	}
}

func TestEnumeratePathsRespectsMaxDepth(t *testing.T) {
	sym := symtab.New()
	sch, err := schema.Load(strings.NewReader(
		"1^A^toB^B\n2^B^toC^C\n3^C^toD^D\n"), sym)
	if err != nil {
		t.Fatalf("schema.Load failed: %v", err)
	}

	start := sym.GetID("A")
	end := map[int]bool{sym.GetID("D"): true}

	// A 3-edge path to D is discarded when MaxDepth==3: the MaxDepth
	// check fires on pop before the end-class check, so a path whose
	// length equals MaxDepth never gets the chance to be recorded even
	// if it has just reached an end class.
	paths, _ := EnumeratePaths(sch, start, end, 3)
	if len(paths) != 0 {
		t.Errorf("expected the 3-edge path to be discarded at MaxDepth=3, got %v", paths)
	}

	paths, _ = EnumeratePaths(sch, start, end, 4)
	if len(paths) != 1 {
		t.Fatalf("expected exactly one path at MaxDepth=4, got %d", len(paths))
	}
}

func TestEnumeratePathsNeverRepeatsAProperty(t *testing.T) {
	sym := symtab.New()
	// A cycle: A-toB-B, B-toA-A (different property than toB).
	sch, err := schema.Load(strings.NewReader("1^A^toB^B\n2^B^toA^A\n"), sym)
	if err != nil {
		t.Fatalf("schema.Load failed: %v", err)
	}

	start := sym.GetID("A")
	end := map[int]bool{sym.GetID("A"): true}

	paths, _ := EnumeratePaths(sch, start, end, 10)
	for _, p := range paths {
		seen := make(map[int]bool)
		for _, pid := range p {
			if seen[pid] {
				t.Fatalf("path %v repeats property %d", p, pid)
			}
			seen[pid] = true
		}
	}
}
