package models

import "time"

// TourDate represents a single historical concert performance.
type TourDate struct {
	Date          time.Time `json:"date"`
	Year          int       `json:"year"`                     // Always Date.Year()
	TourName      string    `json:"tour_name,omitempty"`      // Empty when unknown
	Country       string    `json:"country,omitempty"`        // Empty when unknown
	City          string    `json:"city,omitempty"`           // Empty when unknown
	Venue         string    `json:"venue,omitempty"`          // Empty when unknown
	VenueCapacity *int      `json:"venue_capacity,omitempty"` // Optional
	Setlist       []string  `json:"setlist,omitempty"`        // Decoded; nil when absent or malformed
}

// NewTourDate builds a TourDate with the year derived from date.
func NewTourDate(date time.Time) TourDate {
	return TourDate{Date: date, Year: date.Year()}
}

// HasSetlist reports whether the row contributes to setlist aggregations.
func (t TourDate) HasSetlist() bool {
	return len(t.Setlist) > 0
}

// Range is an inclusive integer interval.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Valid reports whether the bounds describe a non-empty interval.
func (r Range) Valid() bool {
	return r.Min <= r.Max
}

// Contains reports whether v lies inside the interval, both ends inclusive.
func (r Range) Contains(v int) bool {
	return r.Min <= v && v <= r.Max
}

// FilterCriteria is the current dashboard selection.
type FilterCriteria struct {
	Years     Range    `json:"years"`
	Tours     []string `json:"tours,omitempty"`     // Empty = no restriction
	Countries []string `json:"countries,omitempty"` // Empty = no restriction
	Capacity  Range    `json:"capacity"`
}

// FilterOptions describes the selectable values for the dashboard controls.
type FilterOptions struct {
	YearMin     int      `json:"year_min"`
	YearMax     int      `json:"year_max"`
	Tours       []string `json:"tours"`
	Countries   []string `json:"countries"`
	CapacityMin int      `json:"capacity_min"`
	CapacityMax int      `json:"capacity_max"`
}
