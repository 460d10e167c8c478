package models

import (
	"errors"
	"strings"
)

// Trend is the direction label attached to a price series.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// Chart series labels.
const (
	SeriesAverage = "Average Price"
	SeriesMin     = "Min Price"
	SeriesMax     = "Max Price"
)

// SourceDemo tags synthesized records.
const SourceDemo = "Demo"

// PricePoint is one day of market prices. Date is a calendar date (YYYY-MM-DD).
type PricePoint struct {
	Date     string  `json:"date"`
	Price    float64 `json:"price"`
	MinPrice float64 `json:"minPrice"`
	MaxPrice float64 `json:"maxPrice"`
	Market   string  `json:"market"`
	Source   string  `json:"source"`
	Category string  `json:"category"`
}

// SeriesStats is derived from a series on every fetch or synthesis.
type SeriesStats struct {
	TotalRecords int     `json:"totalRecords"`
	ValidRecords int     `json:"validRecords"`
	AvgPrice     float64 `json:"avgPrice"`
	MinPrice     float64 `json:"minPrice"`
	MaxPrice     float64 `json:"maxPrice"`
	Trend        Trend   `json:"trend"`
}

// SeriesQuery identifies one series request. It is never mutated after creation.
type SeriesQuery struct {
	Crop     string `json:"crop"`
	State    string `json:"state"`
	District string `json:"district"`
	Days     int    `json:"days"`
}

// Validate checks that all required fields are set and values are valid.
func (q SeriesQuery) Validate() error {
	if strings.TrimSpace(q.Crop) == "" {
		return errors.New("crop is required")
	}
	if q.Days <= 0 {
		return errors.New("days must be > 0")
	}
	return nil
}

// ChartSeriesPoint is the unit handed to the charting layer.
type ChartSeriesPoint struct {
	Date  string  `json:"date"`
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// GraphEnvelope is the upstream graph payload as seen through the gateway.
// Records are kept loosely typed until validation.
type GraphEnvelope struct {
	Success bool                     `json:"success"`
	Message string                   `json:"message,omitempty"`
	Status  int                      `json:"status,omitempty"`
	Crop    string                   `json:"crop,omitempty"`
	Data    []map[string]interface{} `json:"data,omitempty"`
}
