package series

import (
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"smartagri/models"
)

// ErrNoValidData means a payload arrived but none of its records were usable.
// Callers treat it like a failed fetch.
var ErrNoValidData = errors.New("no valid price records")

var dateFormats = []string{
	dateLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Validate keeps records with a parseable date and a finite, positive
// numeric price, sorted by date. minPrice ≤ price ≤ maxPrice is not checked.
func Validate(raw []map[string]interface{}) ([]models.PricePoint, error) {
	out := make([]models.PricePoint, 0, len(raw))
	for _, rec := range raw {
		p, ok := toPricePoint(rec)
		if !ok {
			continue
		}
		out = append(out, p)
	}

	if len(out) == 0 {
		return nil, ErrNoValidData
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func toPricePoint(rec map[string]interface{}) (models.PricePoint, bool) {
	if rec == nil {
		return models.PricePoint{}, false
	}

	rawDate, _ := rec["date"].(string)
	date, ok := parseDate(rawDate)
	if !ok {
		return models.PricePoint{}, false
	}

	price, ok := finiteNumber(rec["price"])
	if !ok || price <= 0 {
		return models.PricePoint{}, false
	}

	minPrice, _ := finiteNumber(rec["minPrice"])
	maxPrice, _ := finiteNumber(rec["maxPrice"])

	return models.PricePoint{
		Date:     date,
		Price:    price,
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Market:   stringValue(rec["market"]),
		Source:   stringValue(rec["source"]),
		Category: stringValue(rec["category"]),
	}, true
}

// parseDate normalizes to YYYY-MM-DD.
func parseDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateLayout), true
		}
	}
	return "", false
}

func finiteNumber(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}
