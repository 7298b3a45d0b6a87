// Package ingest implements the thin external-interface contracts of
// spec.md section 6: parsing the `^`-delimited schema file and per-user
// triple tuples, and computing the watched-count-derived support
// threshold. Raw data ingestion (ratings, link tables, TMDB metadata) is
// explicitly out of scope per spec.md section 1 — BuildWatchingTriples
// below is a minimal synthetic stand-in used by tests and the CLI, not a
// replacement for that pipeline.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// SchemaRecord is one parsed schema line: (idx, dom, prop, ran) strings.
type SchemaRecord struct {
	Idx  string
	Dom  string
	Prop string
	Ran  string
}

// TripleRecord is one parsed triple line: (idx, subj_cl, subj_inst, prop,
// obj_cl, obj_inst) strings.
type TripleRecord struct {
	Idx      string
	SubjCl   string
	SubjInst string
	Prop     string
	ObjCl    string
	ObjInst  string
}

// ParseSchemaLine parses a single `^`-delimited schema line. Returns
// *schema.ParseError shape info via a plain error naming the field count
// mismatch; callers that need the internal/schema.ParseError type should
// use internal/schema.Load directly for file-level parsing.
func ParseSchemaLine(line string) (SchemaRecord, error) {
	fields := strings.Split(line, "^")
	if len(fields) != 4 {
		return SchemaRecord{}, fmt.Errorf("ingest: schema line must have 4 fields, got %d", len(fields))
	}
	return SchemaRecord{Idx: fields[0], Dom: fields[1], Prop: fields[2], Ran: fields[3]}, nil
}

// LoadSchemaFile reads every non-empty line of r as a schema record.
func LoadSchemaFile(r io.Reader) ([]SchemaRecord, error) {
	var out []SchemaRecord
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		rec, err := ParseSchemaLine(line)
		if err != nil {
			return nil, fmt.Errorf("ingest: line %d: %w", lineNo, err)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ingest: reading schema: %w", err)
	}
	return out, nil
}

// ParseTripleLine parses a single `^`-delimited triple line (idx, subj_cl,
// subj_inst, prop, obj_cl, obj_inst).
func ParseTripleLine(line string) (TripleRecord, error) {
	fields := strings.Split(line, "^")
	if len(fields) != 6 {
		return TripleRecord{}, fmt.Errorf("ingest: triple line must have 6 fields, got %d", len(fields))
	}
	return TripleRecord{
		Idx: fields[0], SubjCl: fields[1], SubjInst: fields[2],
		Prop: fields[3], ObjCl: fields[4], ObjInst: fields[5],
	}, nil
}

// LoadTriplesFile reads every non-empty line of r as a triple record.
func LoadTriplesFile(r io.Reader) ([]TripleRecord, error) {
	var out []TripleRecord
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		rec, err := ParseTripleLine(line)
		if err != nil {
			return nil, fmt.Errorf("ingest: line %d: %w", lineNo, err)
		}
		out = append(out, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ingest: reading triples: %w", err)
	}
	return out, nil
}

// LoadTriplesDir reads every "*.triples" file in dir, one per user, named
// "<userID>.triples", and returns each user's parsed records keyed by
// userID. This is the CLI-facing directory convention; callers that
// already have triples in memory (tests, the synthetic
// BuildWatchingTriples path) should call LoadTriplesFile or construct
// TripleRecord slices directly instead.
func LoadTriplesDir(dir string) (map[string][]TripleRecord, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("ingest: reading triples dir: %w", err)
	}

	out := make(map[string][]TripleRecord)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".triples" {
			continue
		}
		userID := strings.TrimSuffix(entry.Name(), ".triples")

		f, err := os.Open(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("ingest: opening %s: %w", entry.Name(), err)
		}
		records, err := LoadTriplesFile(f)
		closeErr := f.Close()
		if err != nil {
			return nil, fmt.Errorf("ingest: loading %s: %w", entry.Name(), err)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("ingest: closing %s: %w", entry.Name(), closeErr)
		}
		out[userID] = records
	}
	return out, nil
}

// SupportThreshold computes the per-user support threshold from the
// watched-movie count w, per spec.md section 6:
//
//	w > 100       -> 4
//	8 <= w <= 100 -> floor(ln w)
//	3 <= w < 8    -> 2
//	otherwise     -> skip (ok=false)
func SupportThreshold(w int) (threshold int, ok bool) {
	switch {
	case w > 100:
		return 4, true
	case w >= 8:
		return int(math.Log(float64(w))), true
	case w >= 3:
		return 2, true
	default:
		return 0, false
	}
}

// BuildWatchingTriples builds the synthetic "User watches Movie" triple
// pair the original pipeline constructs per watching event
// (original_source/src/pipeline.py's process_single_user), plus any
// metadata triples supplied for that movie. userID and movieID are the raw
// MovieLens/TMDB identifiers; metadata is a movie-keyed lookup of
// additional (subj_cl, subj_inst, prop, obj_cl, obj_inst) tuples (genre,
// cast, etc.) to splice in verbatim. triples are assigned sequential
// string IDs starting at startIdx, returning the next free index for the
// caller to chain further batches.
func BuildWatchingTriples(userID, movieID string, metadata [][5]string, startIdx int) ([]TripleRecord, int) {
	userNode := "USER_" + userID
	movieNode := "MOVI_" + movieID
	eventNode := "U" + userID + "_M" + movieID

	idx := startIdx
	next := func() string {
		s := strconv.Itoa(idx)
		idx++
		return s
	}

	out := []TripleRecord{
		{Idx: next(), SubjCl: "User", SubjInst: userNode, Prop: "UserWatching", ObjCl: "WatchingEvent", ObjInst: eventNode},
		{Idx: next(), SubjCl: "WatchingEvent", SubjInst: eventNode, Prop: "WatchingMovie", ObjCl: "Movie", ObjInst: movieNode},
	}
	for _, m := range metadata {
		out = append(out, TripleRecord{
			Idx: next(), SubjCl: m[0], SubjInst: m[1], Prop: m[2], ObjCl: m[3], ObjInst: m[4],
		})
	}
	return out, idx
}
