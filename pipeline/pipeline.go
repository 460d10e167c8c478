package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"smartagri/client"
	"smartagri/models"
	"smartagri/series"
	"smartagri/utils"
)

// Notices shown alongside a synthetic series.
const (
	NoticeOffline     = "Showing demo data. Start the gateway and prediction service for real data."
	NoticeNoValidData = "No valid price data for this selection. Showing demo data."
	NoticeFailed      = "Using demo data. API request failed."
)

// Fetcher retrieves a raw series payload for a query.
type Fetcher interface {
	FetchSeries(ctx context.Context, q models.SeriesQuery) (*models.GraphEnvelope, error)
}

// Options tune a Pipeline. The zero value uses the half-mean trend policy
// and no single-record expansion.
type Options struct {
	Policy       series.TrendPolicy
	ExpandSingle bool
}

// Pipeline turns a query into a chart-ready series, substituting a synthetic
// series whenever the real one cannot be fetched or validated.
type Pipeline struct {
	fetcher      Fetcher
	synth        *series.Synthesizer
	policy       series.TrendPolicy
	expandSingle bool
}

// Result is the chart-ready output of one run.
type Result struct {
	Crop     string                    `json:"crop"`
	Query    models.SeriesQuery        `json:"query"`
	Stats    models.SeriesStats        `json:"stats"`
	Data     []models.PricePoint       `json:"data"`
	Chart    []models.ChartSeriesPoint `json:"chart"`
	Fallback bool                      `json:"fallback"`
	Notice   string                    `json:"notice,omitempty"`
}

// New builds a Pipeline. A nil synth uses the built-in price table.
func New(f Fetcher, synth *series.Synthesizer, opts Options) *Pipeline {
	if synth == nil {
		synth = series.NewSynthesizer()
	}
	policy := opts.Policy
	if policy == "" {
		policy = series.PolicyHalfMean
	}
	return &Pipeline{fetcher: f, synth: synth, policy: policy, expandSingle: opts.ExpandSingle}
}

// Run executes one fetch attempt and always produces a series for a valid
// query. The only error is an invalid query.
func (p *Pipeline) Run(ctx context.Context, q models.SeriesQuery) (*Result, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	res := &Result{Crop: q.Crop, Query: q}

	points, err := p.acquire(ctx, q)
	if err != nil {
		log.Printf("[PIPELINE] %s (%d days): %v; using demo data", q.Crop, q.Days, err)
		points = p.synth.Synthesize(q.Crop, q.Days)
		res.Fallback = true
		res.Notice = Notice(err)
	}

	res.Data = points
	res.Stats = series.ComputeStats(points, p.policy)
	res.Chart = series.Reshape(points)
	return res, nil
}

func (p *Pipeline) acquire(ctx context.Context, q models.SeriesQuery) ([]models.PricePoint, error) {
	env, err := p.fetcher.FetchSeries(ctx, q)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("%w: %s", series.ErrNoValidData, utils.FirstNonEmpty(env.Message, "upstream reported failure"))
	}

	points, err := series.Validate(env.Data)
	if err != nil {
		return nil, err
	}

	if len(points) > q.Days {
		points = points[len(points)-q.Days:]
	}
	if p.expandSingle && len(points) == 1 && q.Days > 1 {
		points = p.synth.Expand(points[0], q.Days)
	}
	return points, nil
}

// Notice picks the user-facing message for a fallback cause.
func Notice(err error) string {
	var upErr *client.UpstreamError
	switch {
	case errors.Is(err, client.ErrConnectivity):
		return NoticeOffline
	case errors.Is(err, series.ErrNoValidData):
		return NoticeNoValidData
	case errors.As(err, &upErr):
		if upErr.Status == http.StatusNotFound {
			return NoticeOffline
		}
		return utils.FirstNonEmpty(upErr.Message, NoticeFailed)
	}
	return NoticeFailed
}
