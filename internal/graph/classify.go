package graph

import "github.com/kjpark/graphminer/internal/schema"

// ChunkType is either of the two classifications a path property can
// receive from ClassifyChunkTypes. A property absent from the result map
// is unclassified.
type ChunkType int

const (
	// Either marks a property where exactly one endpoint is an option
	// class.
	Either ChunkType = iota
	// Both marks a property where both endpoints are option classes.
	Both
)

// ClassifyChunkTypes tags every property in pathProperties `either` or
// `both` based on whether its endpoints are option classes, per spec.md
// section 4.5. Used downstream to decide whether subject/object instances
// collapse to their class label before isomorphism testing.
func ClassifyChunkTypes(props map[int]schema.Property, pathProperties map[int]bool, optionClasses map[int]bool) map[int]ChunkType {
	out := make(map[int]ChunkType)
	for pid := range pathProperties {
		p, ok := props[pid]
		if !ok {
			continue
		}
		domOpt := optionClasses[p.Dom]
		ranOpt := optionClasses[p.Ran]

		switch {
		case domOpt && ranOpt:
			out[pid] = Both
		case domOpt != ranOpt:
			out[pid] = Either
		}
	}
	return out
}
