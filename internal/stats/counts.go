package stats

import (
	"sort"

	"tourstats/internal/models"
)

// TopN is the length of the ranked song and city lists.
const TopN = 10

// TopSongs counts every performance of every song across the rows' setlists.
func TopSongs(records []models.TourDate, n int) []models.CountEntry {
	counts := make(map[string]int)
	for _, r := range records {
		if !r.HasSetlist() {
			continue
		}
		for _, song := range r.Setlist {
			counts[song]++
		}
	}
	return rank(counts, n)
}

// TopCities counts rows per city; rows without a city are ignored.
func TopCities(records []models.TourDate, n int) []models.CountEntry {
	counts := make(map[string]int)
	for _, r := range records {
		if r.City == "" {
			continue
		}
		counts[r.City]++
	}
	return rank(counts, n)
}

// rank orders by count descending, then label ascending, and keeps the first n.
// n <= 0 keeps everything.
func rank(counts map[string]int, n int) []models.CountEntry {
	entries := make([]models.CountEntry, 0, len(counts))
	for label, count := range counts {
		entries = append(entries, models.CountEntry{Label: label, Count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Label < entries[j].Label
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// CapacityOverTime projects every row with a known capacity, keeping input order.
func CapacityOverTime(records []models.TourDate) []models.CapacityPoint {
	points := make([]models.CapacityPoint, 0, len(records))
	for _, r := range records {
		if r.VenueCapacity == nil {
			continue
		}
		points = append(points, models.CapacityPoint{
			Date:     r.Date,
			Capacity: *r.VenueCapacity,
			Venue:    r.Venue,
			City:     r.City,
			Country:  r.Country,
			TourName: r.TourName,
		})
	}
	return points
}

// Songs returns every distinct song title, sorted.
func Songs(records []models.TourDate) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		if !r.HasSetlist() {
			continue
		}
		for _, song := range r.Setlist {
			seen[song] = struct{}{}
		}
	}
	songs := make([]string, 0, len(seen))
	for song := range seen {
		songs = append(songs, song)
	}
	sort.Strings(songs)
	return songs
}

// Options derives the selectable filter values. Tours and countries keep the
// order in which they first appear.
func Options(records []models.TourDate) models.FilterOptions {
	opts := models.FilterOptions{
		Tours:       []string{},
		Countries:   []string{},
		CapacityMin: DefaultCapacityMin,
		CapacityMax: DefaultCapacityMax,
	}
	if len(records) > 0 {
		years := Unrestricted(records).Years
		opts.YearMin, opts.YearMax = years.Min, years.Max
	}

	tours := make(map[string]struct{})
	countries := make(map[string]struct{})
	for _, r := range records {
		if _, ok := tours[r.TourName]; r.TourName != "" && !ok {
			tours[r.TourName] = struct{}{}
			opts.Tours = append(opts.Tours, r.TourName)
		}
		if _, ok := countries[r.Country]; r.Country != "" && !ok {
			countries[r.Country] = struct{}{}
			opts.Countries = append(opts.Countries, r.Country)
		}
	}
	return opts
}
