package series

import (
	"math"

	"smartagri/models"
)

// Prices extracts the price column.
func Prices(points []models.PricePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Price
	}
	return out
}

// ComputeStats summarizes a series. Aggregates cover positive prices only;
// the trend is taken over the whole series under the given policy.
func ComputeStats(points []models.PricePoint, policy TrendPolicy) models.SeriesStats {
	stats := models.SeriesStats{
		TotalRecords: len(points),
		Trend:        policy.Classify(Prices(points)),
	}

	var sum float64
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		if p.Price <= 0 {
			continue
		}
		stats.ValidRecords++
		sum += p.Price
		lo = math.Min(lo, p.Price)
		hi = math.Max(hi, p.Price)
	}

	if stats.ValidRecords > 0 {
		stats.AvgPrice = Round2(sum / float64(stats.ValidRecords))
		stats.MinPrice = Round2(lo)
		stats.MaxPrice = Round2(hi)
	}
	return stats
}
