package httpapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"tourstats/internal/models"
)

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := s.dashboard.FilterOptions(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	criteria, ok := s.criteria(w, r)
	if !ok {
		return
	}

	view, err := s.dashboard.Home(r.Context(), criteria)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleTopSongs(w http.ResponseWriter, r *http.Request) {
	criteria, ok := s.criteria(w, r)
	if !ok {
		return
	}

	songs, err := s.dashboard.TopSongs(r.Context(), criteria)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Songs []models.CountEntry `json:"songs"`
	}{Songs: songs})
}

func (s *Server) handleTopCities(w http.ResponseWriter, r *http.Request) {
	criteria, ok := s.criteria(w, r)
	if !ok {
		return
	}

	cities, err := s.dashboard.TopCities(r.Context(), criteria)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Cities []models.CountEntry `json:"cities"`
	}{Cities: cities})
}

func (s *Server) handleCapacity(w http.ResponseWriter, r *http.Request) {
	criteria, ok := s.criteria(w, r)
	if !ok {
		return
	}

	points, err := s.dashboard.Capacity(r.Context(), criteria)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Points []models.CapacityPoint `json:"points"`
	}{Points: points})
}

func (s *Server) handleSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := s.dashboard.Songs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Songs []string `json:"songs"`
	}{Songs: songs})
}

func (s *Server) handleSongPositions(w http.ResponseWriter, r *http.Request) {
	positions, err := s.dashboard.SongPositions(r.Context(), r.URL.Query().Get("song"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, positions)
}

// criteria builds the filter from query parameters, falling back to the
// dashboard defaults for absent bounds. It writes the error response itself.
func (s *Server) criteria(w http.ResponseWriter, r *http.Request) (models.FilterCriteria, bool) {
	criteria, err := s.dashboard.DefaultCriteria(r.Context())
	if err != nil {
		writeError(w, err)
		return models.FilterCriteria{}, false
	}

	query := r.URL.Query()
	bounds := []struct {
		param  string
		target *int
	}{
		{"year_min", &criteria.Years.Min},
		{"year_max", &criteria.Years.Max},
		{"capacity_min", &criteria.Capacity.Min},
		{"capacity_max", &criteria.Capacity.Max},
	}
	for _, b := range bounds {
		raw := strings.TrimSpace(query.Get(b.param))
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid %s parameter", b.param)})
			return models.FilterCriteria{}, false
		}
		*b.target = v
	}

	criteria.Tours = listParam(query, "tour")
	criteria.Countries = listParam(query, "country")
	return criteria, true
}

// listParam collects a repeated parameter. Each value is one literal name;
// tour and country names may themselves contain commas.
func listParam(query url.Values, key string) []string {
	var out []string
	for _, raw := range query[key] {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
