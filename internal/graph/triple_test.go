package graph

import "testing"

func TestInstanceOf(t *testing.T) {
	tr := Triple{ID: 1, SubjCl: 10, SubjInst: 100, Prop: 20, ObjCl: 11, ObjInst: 101}

	got, err := tr.InstanceOf(10)
	if err != nil || got != 100 {
		t.Errorf("InstanceOf(subj_cl) = (%d, %v), want (100, nil)", got, err)
	}

	got, err = tr.InstanceOf(11)
	if err != nil || got != 101 {
		t.Errorf("InstanceOf(obj_cl) = (%d, %v), want (101, nil)", got, err)
	}

	_, err = tr.InstanceOf(999)
	if err == nil {
		t.Error("InstanceOf with an unrelated class should fail")
	}
	if _, ok := err.(*MissingInstanceError); !ok {
		t.Errorf("expected *MissingInstanceError, got %T", err)
	}
}

func TestStoreRetainPrunesByIDAndByProperty(t *testing.T) {
	s := NewStore([]Triple{
		{ID: 1, SubjCl: 1, SubjInst: 1, Prop: 100, ObjCl: 2, ObjInst: 2},
		{ID: 2, SubjCl: 1, SubjInst: 1, Prop: 100, ObjCl: 2, ObjInst: 3},
		{ID: 3, SubjCl: 2, SubjInst: 2, Prop: 200, ObjCl: 3, ObjInst: 4},
	})

	s.Retain(map[int]bool{1: true, 3: true})

	if s.Len() != 2 {
		t.Fatalf("expected 2 triples after Retain, got %d", s.Len())
	}
	if _, ok := s.Get(2); ok {
		t.Error("triple 2 should have been pruned")
	}
	ids := s.ByProperty(100)
	if len(ids) != 1 || ids[0] != 1 {
		t.Errorf("ByProperty(100) = %v, want [1]", ids)
	}
	if !s.HasProperty(200) {
		t.Error("HasProperty(200) should still be true after retaining triple 3")
	}
}

func TestStoreRetainDropsEmptyPropertyBucket(t *testing.T) {
	s := NewStore([]Triple{
		{ID: 1, SubjCl: 1, SubjInst: 1, Prop: 100, ObjCl: 2, ObjInst: 2},
	})
	s.Retain(map[int]bool{})
	if s.HasProperty(100) {
		t.Error("expected property 100's bucket to be dropped once its only triple is pruned")
	}
}
