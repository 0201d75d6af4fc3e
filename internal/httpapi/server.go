package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"tourstats/internal/app/dashboard"
	"tourstats/internal/models"
	"tourstats/internal/store"
)

// DashboardService captures the dashboard queries needed by the HTTP handlers.
type DashboardService interface {
	Home(ctx context.Context, criteria models.FilterCriteria) (dashboard.HomeView, error)
	TopSongs(ctx context.Context, criteria models.FilterCriteria) ([]models.CountEntry, error)
	TopCities(ctx context.Context, criteria models.FilterCriteria) ([]models.CountEntry, error)
	Capacity(ctx context.Context, criteria models.FilterCriteria) ([]models.CapacityPoint, error)
	SongPositions(ctx context.Context, song string) (dashboard.SongPositions, error)
	Songs(ctx context.Context) ([]string, error)
	FilterOptions(ctx context.Context) (models.FilterOptions, error)
	DefaultCriteria(ctx context.Context) (models.FilterCriteria, error)
}

// Server wires HTTP handlers to the dashboard service.
type Server struct {
	dashboard DashboardService
}

// New configures a Server with the given dashboard implementation.
func New(dashboard DashboardService) *Server {
	return &Server{dashboard: dashboard}
}

// Routes exposes the HTTP handlers for the dashboard API.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("GET /api/v1/filters", s.handleFilters)
	mux.HandleFunc("GET /api/v1/dashboard", s.handleDashboard)

	// Single-chart routes
	mux.HandleFunc("GET /api/v1/stats/songs", s.handleTopSongs)
	mux.HandleFunc("GET /api/v1/stats/cities", s.handleTopCities)
	mux.HandleFunc("GET /api/v1/stats/capacity", s.handleCapacity)

	// Song analysis routes
	mux.HandleFunc("GET /api/v1/songs", s.handleSongs)
	mux.HandleFunc("GET /api/v1/songs/positions", s.handleSongPositions)

	return mux
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps service errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, dashboard.ErrSongRequired):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrNotLoaded):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
