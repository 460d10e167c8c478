package series

import (
	"fmt"
	"strings"

	"smartagri/models"
)

// TrendPolicy selects how a series is labelled. One policy is used per run.
type TrendPolicy string

const (
	// PolicyHalfMean compares the mean of the first and second halves (±3%).
	// It is the default.
	PolicyHalfMean TrendPolicy = "halfmean"
	// PolicyEndpoint compares the first and last price (±5%).
	PolicyEndpoint TrendPolicy = "endpoint"
)

const (
	HalfMeanThreshold    = 0.03
	EndpointThresholdPct = 5.0
	minHalfMeanSeriesLen = 4
	minEndpointSeriesLen = 2
)

// ParseTrendPolicy accepts "halfmean" (or "") and "endpoint".
func ParseTrendPolicy(s string) (TrendPolicy, error) {
	switch TrendPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyHalfMean:
		return PolicyHalfMean, nil
	case PolicyEndpoint:
		return PolicyEndpoint, nil
	}
	return "", fmt.Errorf("unknown trend policy %q", s)
}

// Classify applies the policy to prices ordered by date.
func (p TrendPolicy) Classify(prices []float64) models.Trend {
	if p == PolicyEndpoint {
		return ClassifyEndpointChange(prices)
	}
	return ClassifyTrend(prices)
}

// ClassifyTrend compares the mean of the first floor(L/2) prices with the
// mean of the last floor(L/2). For odd L the middle record belongs to
// neither half. Series shorter than 4 are stable.
func ClassifyTrend(prices []float64) models.Trend {
	n := len(prices)
	if n < minHalfMeanSeriesLen {
		return models.TrendStable
	}

	mid := n / 2
	first := mean(prices[:mid])
	last := mean(prices[n-mid:])

	switch {
	case last > first*(1+HalfMeanThreshold):
		return models.TrendIncreasing
	case last < first*(1-HalfMeanThreshold):
		return models.TrendDecreasing
	}
	return models.TrendStable
}

// ClassifyEndpointChange labels by the percent change from first to last price.
func ClassifyEndpointChange(prices []float64) models.Trend {
	if len(prices) < minEndpointSeriesLen || prices[0] == 0 {
		return models.TrendStable
	}

	first, last := prices[0], prices[len(prices)-1]
	change := (last - first) / first * 100

	switch {
	case change > EndpointThresholdPct:
		return models.TrendIncreasing
	case change < -EndpointThresholdPct:
		return models.TrendDecreasing
	}
	return models.TrendStable
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
