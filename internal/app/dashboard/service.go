package dashboard

import (
	"context"
	"errors"
	"strings"

	"tourstats/internal/models"
	"tourstats/internal/stats"
	"tourstats/internal/store"
)

// ErrSongRequired indicates a position query without a song.
var ErrSongRequired = errors.New("song is required")

// DatasetProvider exposes the live dataset.
type DatasetProvider interface {
	Snapshot() (*store.Dataset, error)
}

// HomeView bundles the three charts of the home page.
type HomeView struct {
	Criteria  models.FilterCriteria  `json:"criteria"`
	Matched   int                    `json:"matched"`
	TopSongs  []models.CountEntry    `json:"top_songs"`
	TopCities []models.CountEntry    `json:"top_cities"`
	Capacity  []models.CapacityPoint `json:"capacity"`
}

// SongPositions is the normalized position distribution of one song.
type SongPositions struct {
	Song        string                  `json:"song"`
	Occurrences int                     `json:"occurrences"`
	Buckets     []models.PositionBucket `json:"buckets"`
}

// Service computes dashboard views from the current dataset.
type Service interface {
	Home(ctx context.Context, criteria models.FilterCriteria) (HomeView, error)
	TopSongs(ctx context.Context, criteria models.FilterCriteria) ([]models.CountEntry, error)
	TopCities(ctx context.Context, criteria models.FilterCriteria) ([]models.CountEntry, error)
	Capacity(ctx context.Context, criteria models.FilterCriteria) ([]models.CapacityPoint, error)
	SongPositions(ctx context.Context, song string) (SongPositions, error)
	Songs(ctx context.Context) ([]string, error)
	FilterOptions(ctx context.Context) (models.FilterOptions, error)
	DefaultCriteria(ctx context.Context) (models.FilterCriteria, error)
}

type service struct {
	datasets DatasetProvider
}

// New constructs a dashboard Service reading from datasets.
func New(datasets DatasetProvider) Service {
	return &service{datasets: datasets}
}

// records reads one consistent snapshot for the duration of a query.
func (s *service) records(ctx context.Context) ([]models.TourDate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds, err := s.datasets.Snapshot()
	if err != nil {
		return nil, err
	}
	return ds.Records(), nil
}

func (s *service) filtered(ctx context.Context, view string, criteria models.FilterCriteria) ([]models.TourDate, error) {
	records, err := s.records(ctx)
	if err != nil {
		return nil, err
	}
	matched := stats.Apply(records, criteria)
	matchedRows.WithLabelValues(view).Set(float64(len(matched)))
	return matched, nil
}

func (s *service) Home(ctx context.Context, criteria models.FilterCriteria) (HomeView, error) {
	defer observe("home")()

	matched, err := s.filtered(ctx, "home", criteria)
	if err != nil {
		return HomeView{}, err
	}
	return HomeView{
		Criteria:  criteria,
		Matched:   len(matched),
		TopSongs:  stats.TopSongs(matched, stats.TopN),
		TopCities: stats.TopCities(matched, stats.TopN),
		Capacity:  stats.CapacityOverTime(matched),
	}, nil
}

func (s *service) TopSongs(ctx context.Context, criteria models.FilterCriteria) ([]models.CountEntry, error) {
	defer observe("top_songs")()

	matched, err := s.filtered(ctx, "top_songs", criteria)
	if err != nil {
		return nil, err
	}
	return stats.TopSongs(matched, stats.TopN), nil
}

func (s *service) TopCities(ctx context.Context, criteria models.FilterCriteria) ([]models.CountEntry, error) {
	defer observe("top_cities")()

	matched, err := s.filtered(ctx, "top_cities", criteria)
	if err != nil {
		return nil, err
	}
	return stats.TopCities(matched, stats.TopN), nil
}

func (s *service) Capacity(ctx context.Context, criteria models.FilterCriteria) ([]models.CapacityPoint, error) {
	defer observe("capacity")()

	matched, err := s.filtered(ctx, "capacity", criteria)
	if err != nil {
		return nil, err
	}
	return stats.CapacityOverTime(matched), nil
}

// SongPositions always reads the unfiltered dataset.
func (s *service) SongPositions(ctx context.Context, song string) (SongPositions, error) {
	defer observe("song_positions")()

	song = strings.TrimSpace(song)
	if song == "" {
		return SongPositions{}, ErrSongRequired
	}

	records, err := s.records(ctx)
	if err != nil {
		return SongPositions{}, err
	}

	occurrences := 0
	for _, r := range records {
		for _, title := range r.Setlist {
			if title == song {
				occurrences++
				break
			}
		}
	}

	return SongPositions{
		Song:        song,
		Occurrences: occurrences,
		Buckets:     stats.PositionDistribution(records, song),
	}, nil
}

func (s *service) Songs(ctx context.Context) ([]string, error) {
	records, err := s.records(ctx)
	if err != nil {
		return nil, err
	}
	return stats.Songs(records), nil
}

func (s *service) FilterOptions(ctx context.Context) (models.FilterOptions, error) {
	records, err := s.records(ctx)
	if err != nil {
		return models.FilterOptions{}, err
	}
	return stats.Options(records), nil
}

// DefaultCriteria mirrors the initial state of the dashboard controls: the whole
// year span and the default capacity slider bounds.
func (s *service) DefaultCriteria(ctx context.Context) (models.FilterCriteria, error) {
	opts, err := s.FilterOptions(ctx)
	if err != nil {
		return models.FilterCriteria{}, err
	}
	return models.FilterCriteria{
		Years:    models.Range{Min: opts.YearMin, Max: opts.YearMax},
		Capacity: models.Range{Min: opts.CapacityMin, Max: opts.CapacityMax},
	}, nil
}
