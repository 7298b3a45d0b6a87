package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kjpark/graphminer/internal/fsm"
	"github.com/kjpark/graphminer/internal/store"
)

type fakeStore struct {
	runs map[string]store.Run
}

func newFakeStore() *fakeStore { return &fakeStore{runs: make(map[string]store.Run)} }

func (f *fakeStore) PutRun(ctx context.Context, run store.Run) error {
	f.runs[run.UserID] = run
	return nil
}

func (f *fakeStore) GetRun(ctx context.Context, userID string) (*store.Run, error) {
	r, ok := f.runs[userID]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeStore) ListRuns(ctx context.Context) ([]string, error) {
	var out []string
	for userID := range f.runs {
		out = append(out, userID)
	}
	return out, nil
}

func (f *fakeStore) Close() error { return nil }

func TestHandleHealth(t *testing.T) {
	s := NewServer(":0", newFakeStore())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.Status != "ok" {
		t.Errorf("Status = %q, want \"ok\"", got.Status)
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := NewServer(":0", newFakeStore())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/nobody", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetRunFound(t *testing.T) {
	fs := newFakeStore()
	fs.runs["u1"] = store.Run{
		RunID:               "run-1",
		UserID:              "u1",
		ChunkingResultFinal: map[int]fsm.FinalRecord{1: {Depth: "1", Active: "1"}},
	}
	s := NewServer(":0", fs)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/u1", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got store.Run
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.RunID != "run-1" {
		t.Errorf("RunID = %q, want \"run-1\"", got.RunID)
	}
}

func TestListRunsPagination(t *testing.T) {
	fs := newFakeStore()
	for _, id := range []string{"u1", "u2", "u3"} {
		fs.runs[id] = store.Run{RunID: id + "-run", UserID: id}
	}
	s := NewServer(":0", fs)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=2&offset=0", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got PaginatedResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.Total != 3 {
		t.Errorf("Total = %d, want 3", got.Total)
	}
	if got.Limit != 2 {
		t.Errorf("Limit = %d, want 2", got.Limit)
	}
	if !got.HasMore {
		t.Error("expected HasMore = true with 3 items and limit 2")
	}
}

func TestParsePaginationParamsDefaultsAndCaps(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=50000&offset=-5", nil)
	params := parsePaginationParams(req)
	if params.Limit != 1000 {
		t.Errorf("Limit = %d, want capped to 1000", params.Limit)
	}
	if params.Offset != 0 {
		t.Errorf("Offset = %d, want 0 (negative offset ignored)", params.Offset)
	}
}
