package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"tourstats/internal/models"
	"tourstats/internal/setlist"
)

// Columns lists the fields every dataset must provide.
var Columns = []string{"date", "tour_name", "country", "city", "venue", "venue_capacity", "setlist"}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"2 January 2006",
}

// ParseDate accepts the date formats found in tour exports.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// ParseCapacity returns nil for empty or non-numeric values. Whole floats such as
// "12000.0" are accepted.
func ParseCapacity(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return &v
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil
	}
	v := int(f)
	return &v
}

// LoadCSVFile reads a dataset from a CSV file on disk.
func LoadCSVFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return ds, nil
}

// CSVSource reloads the dataset from path.
func CSVSource(path string) Source {
	return SourceFunc(func(ctx context.Context) (*Dataset, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return LoadCSVFile(path)
	})
}

// LoadCSV parses a dataset with a header row. Unparsable dates abort the load;
// undecodable setlists are logged and treated as absent.
func LoadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: %w: empty input", ErrMissingColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var records []models.TourDate
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := reader.FieldPos(0)

		field := func(name string) string {
			i := index[name]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		record, err := buildRecord(line, field("date"), field("setlist"))
		if err != nil {
			return nil, err
		}
		record.TourName = field("tour_name")
		record.Country = field("country")
		record.City = field("city")
		record.Venue = field("venue")
		record.VenueCapacity = ParseCapacity(field("venue_capacity"))

		records = append(records, record)
	}

	return NewDataset(records), nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range Columns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return index, nil
}

func buildRecord(line int, rawDate, rawSetlist string) (models.TourDate, error) {
	date, err := ParseDate(rawDate)
	if err != nil {
		return models.TourDate{}, fmt.Errorf("line %d: %w", line, err)
	}

	record := models.NewTourDate(date)
	songs, err := setlist.Decode(rawSetlist)
	if err != nil {
		log.Warn().
			Int("line", line).
			Err(err).
			Msg("Skipping undecodable setlist")
	} else {
		record.Setlist = songs
	}
	return record, nil
}
