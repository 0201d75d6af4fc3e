package store

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"tourstats/internal/models"
)

var (
	// ErrMissingColumn signals the dataset lacks a required column.
	ErrMissingColumn = errors.New("missing required column")
	// ErrInvalidDate indicates a row whose date cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")
	// ErrNoSource indicates a reload was requested without a configured source.
	ErrNoSource = errors.New("no dataset source configured")
	// ErrNotLoaded is returned when no dataset has been published yet.
	ErrNotLoaded = errors.New("dataset not loaded")
)

// Dataset is an immutable, fully decoded set of tour dates.
type Dataset struct {
	records  []models.TourDate
	loadedAt time.Time
}

// NewDataset wraps records. The slice must not be modified afterwards.
func NewDataset(records []models.TourDate) *Dataset {
	return &Dataset{records: records, loadedAt: time.Now().UTC()}
}

// Records returns the rows in source order. Callers must treat the slice as read-only.
func (d *Dataset) Records() []models.TourDate {
	if d == nil {
		return nil
	}
	return d.records
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// LoadedAt reports when the dataset was built.
func (d *Dataset) LoadedAt() time.Time {
	return d.loadedAt
}

// Source produces a fresh dataset, e.g. from a CSV file or a database table.
type Source interface {
	Load(ctx context.Context) (*Dataset, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*Dataset, error)

// Load implements Source.
func (f SourceFunc) Load(ctx context.Context) (*Dataset, error) {
	return f(ctx)
}

// Store is the shared read-only handle to the current dataset. Readers always see
// a complete dataset; reloads replace it with a single pointer swap.
type Store struct {
	source  Source
	current atomic.Pointer[Dataset]
}

// New sets up a Store that reloads from source. source may be nil when the
// dataset is published with Swap only.
func New(source Source) *Store {
	return &Store{source: source}
}

// Current returns the live dataset, or nil before the first load.
func (s *Store) Current() *Dataset {
	return s.current.Load()
}

// Snapshot returns the live dataset or ErrNotLoaded.
func (s *Store) Snapshot() (*Dataset, error) {
	ds := s.current.Load()
	if ds == nil {
		return nil, ErrNotLoaded
	}
	return ds, nil
}

// Swap publishes ds and returns the dataset it replaced.
func (s *Store) Swap(ds *Dataset) *Dataset {
	return s.current.Swap(ds)
}

// Reload loads a new dataset from the source and publishes it. On failure the
// previous dataset stays live.
func (s *Store) Reload(ctx context.Context) error {
	if s.source == nil {
		return ErrNoSource
	}

	start := time.Now()
	ds, err := s.source.Load(ctx)
	if err != nil {
		return fmt.Errorf("reload dataset: %w", err)
	}
	s.Swap(ds)

	log.Info().
		Int("rows", ds.Len()).
		Dur("duration_ms", time.Since(start)).
		Msg("Dataset loaded")
	return nil
}
