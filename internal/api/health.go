package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"
)

// HealthResponse represents the health check response, extended with the
// result-store status and run count so a caller can tell a healthy-process
// apart from a healthy-pipeline.
type HealthResponse struct {
	Status     string       `json:"status"`
	Timestamp  time.Time    `json:"timestamp"`
	Version    string       `json:"version,omitempty"`
	Uptime     string       `json:"uptime,omitempty"`
	Memory     *MemoryStats `json:"memory,omitempty"`
	Store      string       `json:"store"`                 // "ok" or "error"
	StoreError string       `json:"store_error,omitempty"`
	RunCount   int          `json:"run_count"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	AllocMB      uint64 `json:"alloc_mb"`
	TotalAllocMB uint64 `json:"total_alloc_mb"`
	SysMB        uint64 `json:"sys_mb"`
	NumGC        uint32 `json:"num_gc"`
}

var startTime = time.Now()

// HandleHealth returns the health status of the application, including
// whether the result store is reachable and how many users currently have
// at least one stored run.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Uptime:    time.Since(startTime).String(),
		Memory: &MemoryStats{
			AllocMB:      m.Alloc / 1024 / 1024,
			TotalAllocMB: m.TotalAlloc / 1024 / 1024,
			SysMB:        m.Sys / 1024 / 1024,
			NumGC:        m.NumGC,
		},
		Store: "ok",
	}

	users, err := s.store.ListRuns(r.Context())
	if err != nil {
		response.Status = "degraded"
		response.Store = "error"
		response.StoreError = err.Error()
	} else {
		response.RunCount = len(users)
	}

	status := http.StatusOK
	if response.Status != "ok" {
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(response)
}
