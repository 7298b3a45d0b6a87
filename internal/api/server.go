// Package api provides a read-only REST inspection API over stored
// mining runs. Grounded on the teacher's internal/api/server.go: the same
// chi router/middleware stack and respondJSON/respondError/pagination
// helpers, trimmed from its metrics/spans/logs/attributes surface down to
// the run-shaped surface store.Store actually exposes.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kjpark/graphminer/internal/store"
)

// Server is the inspection REST API server.
type Server struct {
	store  store.Store
	router *chi.Mux
	server *http.Server
}

// PaginationParams are pagination parameters parsed from a request's query
// string.
type PaginationParams struct {
	Limit  int
	Offset int
}

// PaginatedResponse wraps a paginated response with metadata.
type PaginatedResponse struct {
	Data    interface{} `json:"data"`
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
	HasMore bool        `json:"has_more"`
}

func parsePaginationParams(r *http.Request) PaginationParams {
	const (
		defaultLimit = 100
		maxLimit     = 1000
	)

	limit := defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
			if limit > maxLimit {
				limit = maxLimit
			}
		}
	}

	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	return PaginationParams{Limit: limit, Offset: offset}
}

func paginateSlice[T any](items []T, params PaginationParams) ([]T, PaginatedResponse) {
	total := len(items)
	start := params.Offset
	end := start + params.Limit

	if start >= total {
		return []T{}, PaginatedResponse{Data: []T{}, Total: total, Limit: params.Limit, Offset: params.Offset, HasMore: false}
	}
	if end > total {
		end = total
	}

	page := items[start:end]
	return page, PaginatedResponse{Data: page, Total: total, Limit: params.Limit, Offset: params.Offset, HasMore: end < total}
}

// NewServer creates a new inspection API server over st, listening at addr.
func NewServer(addr string, st store.Store) *Server {
	s := &Server{store: st, router: chi.NewRouter()}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.HandleHealth)
		r.Get("/runs", s.listRuns)
		r.Get("/runs/{userID}", s.getRun)
	})

	s.server = &http.Server{Addr: addr, Handler: s.router}
	return s
}

// Start starts the API server; blocks until Shutdown is called or the
// listener fails.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// listRuns lists every user with at least one stored run.
// GET /api/v1/runs?limit=N&offset=M
func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := parsePaginationParams(r)

	userIDs, err := s.store.ListRuns(ctx)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	_, response := paginateSlice(userIDs, params)
	s.respondJSON(w, http.StatusOK, response)
}

// getRun returns the most recent stored run for a user.
// GET /api/v1/runs/{userID}
func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	run, err := s.store.GetRun(ctx, userID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if run == nil {
		s.respondError(w, http.StatusNotFound, "no run found for user")
		return
	}

	s.respondJSON(w, http.StatusOK, run)
}

// respondJSON writes a JSON response.
func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error response.
func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
