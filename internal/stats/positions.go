package stats

import (
	"math"
	"slices"

	"tourstats/internal/models"
)

// PositionBuckets is the size of the canonical setlist used for normalization.
const PositionBuckets = 20

// NormalizePosition maps a 1-based position in a setlist of the given length onto
// 1..PositionBuckets. The scaled value is rounded half to even and clamped, so a
// song opening a very long setlist lands in bucket 1 rather than 0.
func NormalizePosition(position, length int) int {
	if length <= 0 {
		return 0
	}
	bucket := int(math.RoundToEven(float64(position) / float64(length) * PositionBuckets))
	return min(max(bucket, 1), PositionBuckets)
}

// PositionDistribution reports, for every normalized position, the share of
// setlists containing song that placed it there. Only the first occurrence in a
// setlist counts. The result always has PositionBuckets entries; without any
// occurrence every percentage is zero.
func PositionDistribution(records []models.TourDate, song string) []models.PositionBucket {
	var counts [PositionBuckets + 1]int
	total := 0
	for _, r := range records {
		if !r.HasSetlist() {
			continue
		}
		idx := slices.Index(r.Setlist, song)
		if idx < 0 {
			continue
		}
		counts[NormalizePosition(idx+1, len(r.Setlist))]++
		total++
	}

	out := make([]models.PositionBucket, PositionBuckets)
	for i := range out {
		pos := i + 1
		out[i] = models.PositionBucket{Position: pos}
		if total > 0 {
			out[i].Percentage = round2(float64(counts[pos]) / float64(total) * 100)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
