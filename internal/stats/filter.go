// Package stats holds the pure filter and aggregation functions behind the
// dashboard views. Nothing here mutates its input.
package stats

import (
	"math"

	"tourstats/internal/models"
)

// Default capacity bounds of the dashboard slider.
const (
	DefaultCapacityMin = 10
	DefaultCapacityMax = 80000
)

// Apply returns the rows matching every clause of c, in input order.
//
// The capacity clause is applied to every row, so rows without a capacity never
// pass. Invalid ranges match nothing.
func Apply(records []models.TourDate, c models.FilterCriteria) []models.TourDate {
	out := make([]models.TourDate, 0, len(records))
	if !c.Years.Valid() || !c.Capacity.Valid() {
		return out
	}

	tours := toSet(c.Tours)
	countries := toSet(c.Countries)

	for _, r := range records {
		if !c.Years.Contains(r.Year) {
			continue
		}
		if r.VenueCapacity == nil || !c.Capacity.Contains(*r.VenueCapacity) {
			continue
		}
		if !matches(tours, r.TourName) || !matches(countries, r.Country) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Unrestricted returns criteria spanning the dataset's years and any capacity.
// Applying it drops only the rows without a capacity.
func Unrestricted(records []models.TourDate) models.FilterCriteria {
	c := models.FilterCriteria{
		Capacity: models.Range{Min: math.MinInt, Max: math.MaxInt},
	}
	for i, r := range records {
		if i == 0 {
			c.Years = models.Range{Min: r.Year, Max: r.Year}
			continue
		}
		c.Years.Min = min(c.Years.Min, r.Year)
		c.Years.Max = max(c.Years.Max, r.Year)
	}
	return c
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// matches treats a nil set as "no restriction". Missing values never match a
// non-empty set.
func matches(set map[string]struct{}, value string) bool {
	if set == nil {
		return true
	}
	if value == "" {
		return false
	}
	_, ok := set[value]
	return ok
}
