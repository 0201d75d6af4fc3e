package models

import "time"

// CountEntry is one ranked (label, count) pair.
type CountEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// CapacityPoint is a single venue-capacity observation.
type CapacityPoint struct {
	Date     time.Time `json:"date"`
	Capacity int       `json:"capacity"`
	Venue    string    `json:"venue,omitempty"`
	City     string    `json:"city,omitempty"`
	Country  string    `json:"country,omitempty"`
	TourName string    `json:"tour_name,omitempty"`
}

// PositionBucket is the share of performances that placed a song at a
// normalized setlist position.
type PositionBucket struct {
	Position   int     `json:"position"`   // 1..20
	Percentage float64 `json:"percentage"` // 0..100, two decimals
}
