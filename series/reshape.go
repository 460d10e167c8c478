package series

import "smartagri/models"

// Reshape emits Average/Min/Max points per record, in input order, dropping
// any value ≤ 0.
func Reshape(points []models.PricePoint) []models.ChartSeriesPoint {
	out := make([]models.ChartSeriesPoint, 0, len(points)*3)
	for _, p := range points {
		for _, cp := range [...]models.ChartSeriesPoint{
			{Date: p.Date, Type: models.SeriesAverage, Value: p.Price},
			{Date: p.Date, Type: models.SeriesMin, Value: p.MinPrice},
			{Date: p.Date, Type: models.SeriesMax, Value: p.MaxPrice},
		} {
			if cp.Value > 0 {
				out = append(out, cp)
			}
		}
	}
	return out
}
