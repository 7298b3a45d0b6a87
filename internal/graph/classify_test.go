package graph

import (
	"testing"

	"github.com/kjpark/graphminer/internal/schema"
)

func TestClassifyChunkTypes(t *testing.T) {
	const (
		user = iota + 1
		movie
		genre
		watches
		hasGenre
	)

	props := map[int]schema.Property{
		watches:  {Dom: user, Prop: 100, Ran: movie},
		hasGenre: {Dom: movie, Prop: 101, Ran: genre},
	}
	pathProperties := map[int]bool{watches: true, hasGenre: true}
	optionClasses := map[int]bool{movie: true, genre: true}

	got := ClassifyChunkTypes(props, pathProperties, optionClasses)

	if got[watches] != Either {
		t.Errorf("watches (one option endpoint) = %v, want Either", got[watches])
	}
	if got[hasGenre] != Both {
		t.Errorf("hasGenre (both option endpoints) = %v, want Both", got[hasGenre])
	}
}

func TestClassifyChunkTypesUnclassifiedOmitted(t *testing.T) {
	const (
		user = iota + 1
		admin
		watches
	)
	props := map[int]schema.Property{watches: {Dom: user, Prop: 100, Ran: admin}}
	pathProperties := map[int]bool{watches: true}
	optionClasses := map[int]bool{} // neither endpoint is an option class

	got := ClassifyChunkTypes(props, pathProperties, optionClasses)
	if _, ok := got[watches]; ok {
		t.Errorf("expected watches to be absent (unclassified), got %v", got[watches])
	}
}
