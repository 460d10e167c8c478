package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"smartagri/client"
	"smartagri/config"
	"smartagri/models"
	"smartagri/routes"
	"smartagri/series"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	env   *models.GraphEnvelope
	err   error
	calls int
}

func (f *fakeFetcher) FetchSeries(_ context.Context, _ models.SeriesQuery) (*models.GraphEnvelope, error) {
	f.calls++
	return f.env, f.err
}

func fixedSynth() *series.Synthesizer {
	return &series.Synthesizer{
		Table: series.DefaultPriceTable(),
		Now:   func() time.Time { return time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC) },
	}
}

func riceRecords(n int) []map[string]interface{} {
	prices := []float64{2200, 2217, 2233, 2250, 2267, 2283, 2300}
	out := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		p := prices[i%len(prices)]
		out = append(out, map[string]interface{}{
			"date":     fmt.Sprintf("2024-01-%02d", i+1),
			"price":    p,
			"minPrice": p * 0.95,
			"maxPrice": p * 1.05,
			"source":   "Kaggle",
		})
	}
	return out
}

func TestRun_RealRiceSeries(t *testing.T) {
	f := &fakeFetcher{env: &models.GraphEnvelope{Success: true, Data: riceRecords(7)}}
	p := New(f, fixedSynth(), Options{})

	res, err := p.Run(context.Background(), models.SeriesQuery{Crop: "Rice", Days: 7})
	require.NoError(t, err)

	assert.Equal(t, 1, f.calls)
	assert.False(t, res.Fallback)
	assert.Empty(t, res.Notice)
	assert.Len(t, res.Data, 7)
	assert.Len(t, res.Chart, 21)
	assert.Equal(t, models.TrendIncreasing, res.Stats.Trend)
	assert.Equal(t, 7, res.Stats.TotalRecords)
	assert.Equal(t, 2200.0, res.Stats.MinPrice)
	assert.Equal(t, 2300.0, res.Stats.MaxPrice)
}

func TestRun_NeverMoreThanDays(t *testing.T) {
	f := &fakeFetcher{env: &models.GraphEnvelope{Success: true, Data: riceRecords(12)}}
	p := New(f, fixedSynth(), Options{})

	res, err := p.Run(context.Background(), models.SeriesQuery{Crop: "Rice", Days: 7})
	require.NoError(t, err)

	require.Len(t, res.Data, 7)
	assert.Equal(t, "2024-01-06", res.Data[0].Date)
	assert.Equal(t, "2024-01-12", res.Data[6].Date)
}

func TestRun_UnreachableUnknownCrop(t *testing.T) {
	f := &fakeFetcher{err: fmt.Errorf("%w: dial tcp: connection refused", client.ErrConnectivity)}
	p := New(f, fixedSynth(), Options{})

	res, err := p.Run(context.Background(), models.SeriesQuery{Crop: "UnknownCrop", Days: 30})
	require.NoError(t, err)

	assert.True(t, res.Fallback)
	assert.Equal(t, NoticeOffline, res.Notice)
	require.Len(t, res.Data, 30)
	assert.Equal(t, "2024-02-10", res.Data[0].Date)
	assert.Equal(t, "2024-03-10", res.Data[29].Date)
	for _, d := range res.Data {
		assert.Equal(t, models.SourceDemo, d.Source)
		assert.GreaterOrEqual(t, d.Price, 1940.0)
		assert.LessOrEqual(t, d.Price, 2060.0)
	}
	assert.Len(t, res.Chart, 90)
}

func TestRun_FallbackTriggers(t *testing.T) {
	cases := []struct {
		name   string
		f      *fakeFetcher
		notice string
	}{
		{"upstream 404", &fakeFetcher{err: &client.UpstreamError{Status: 404, Message: "Not Found"}}, NoticeOffline},
		{"upstream 500 with message", &fakeFetcher{err: &client.UpstreamError{Status: 500, Message: "model crashed"}}, "model crashed"},
		{"upstream 500 without message", &fakeFetcher{err: &client.UpstreamError{Status: 500}}, NoticeFailed},
		{"malformed payload", &fakeFetcher{err: errors.New("decode graph payload: unexpected EOF")}, NoticeFailed},
		{"success false", &fakeFetcher{env: &models.GraphEnvelope{Success: false, Message: "no rows"}}, NoticeNoValidData},
		{"empty data", &fakeFetcher{env: &models.GraphEnvelope{Success: true}}, NoticeNoValidData},
		{"all invalid", &fakeFetcher{env: &models.GraphEnvelope{Success: true, Data: []map[string]interface{}{
			{"date": "2024-01-01", "price": "2200"},
			{"price": 2200.0},
		}}}, NoticeNoValidData},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := New(tc.f, fixedSynth(), Options{})
			res, err := p.Run(context.Background(), models.SeriesQuery{Crop: "Wheat", Days: 14})
			require.NoError(t, err)

			assert.Equal(t, 1, tc.f.calls, "no retries")
			assert.True(t, res.Fallback)
			assert.Equal(t, tc.notice, res.Notice)
			assert.Len(t, res.Data, 14)
		})
	}
}

func TestRun_ExpandSingleRecord(t *testing.T) {
	f := &fakeFetcher{env: &models.GraphEnvelope{Success: true, Data: riceRecords(1)}}

	res, err := New(f, fixedSynth(), Options{ExpandSingle: true}).Run(context.Background(), models.SeriesQuery{Crop: "Rice", Days: 10})
	require.NoError(t, err)
	assert.False(t, res.Fallback)
	require.Len(t, res.Data, 10)
	for _, d := range res.Data {
		assert.Equal(t, "Kaggle", d.Source)
		assert.GreaterOrEqual(t, d.Price, 1980.0)
		assert.LessOrEqual(t, d.Price, 2420.0)
	}

	res, err = New(f, fixedSynth(), Options{}).Run(context.Background(), models.SeriesQuery{Crop: "Rice", Days: 10})
	require.NoError(t, err)
	assert.Len(t, res.Data, 1)
	assert.Equal(t, models.TrendStable, res.Stats.Trend)
}

func TestRun_EndpointPolicy(t *testing.T) {
	data := []map[string]interface{}{
		{"date": "2024-01-01", "price": 100.0},
		{"date": "2024-01-02", "price": 90.0},
		{"date": "2024-01-03", "price": 80.0},
		{"date": "2024-01-04", "price": 106.0},
	}
	f := &fakeFetcher{env: &models.GraphEnvelope{Success: true, Data: data}}

	res, err := New(f, fixedSynth(), Options{Policy: series.PolicyEndpoint}).Run(context.Background(), models.SeriesQuery{Crop: "Rice", Days: 4})
	require.NoError(t, err)
	assert.Equal(t, models.TrendIncreasing, res.Stats.Trend)

	res, err = New(f, fixedSynth(), Options{}).Run(context.Background(), models.SeriesQuery{Crop: "Rice", Days: 4})
	require.NoError(t, err)
	assert.Equal(t, models.TrendStable, res.Stats.Trend)
}

func TestRun_InvalidQuery(t *testing.T) {
	f := &fakeFetcher{}
	p := New(f, nil, Options{})

	_, err := p.Run(context.Background(), models.SeriesQuery{Crop: "", Days: 7})
	assert.Error(t, err)
	_, err = p.Run(context.Background(), models.SeriesQuery{Crop: "Rice", Days: 0})
	assert.Error(t, err)
	assert.Equal(t, 0, f.calls)
}

func TestRun_ThroughGatewayWithUpstreamDown(t *testing.T) {
	dead, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	deadAddr := dead.Addr().String()
	require.NoError(t, dead.Close())

	cfg := config.Default()
	cfg.UpstreamURL = "http://" + deadAddr
	cfg.UpstreamTimeout = 2 * time.Second
	app, err := routes.NewApp(cfg)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go app.Listener(ln)
	defer app.Shutdown()

	c := client.New("http://"+ln.Addr().String(), "")
	res, err := New(c, fixedSynth(), Options{}).Run(context.Background(), models.SeriesQuery{Crop: "Onion", Days: 7})
	require.NoError(t, err)

	assert.True(t, res.Fallback)
	assert.NotEmpty(t, res.Notice)
	require.Len(t, res.Data, 7)
	assert.Equal(t, models.SourceDemo, res.Data[6].Source)
}

func TestNotice_Default(t *testing.T) {
	assert.Equal(t, NoticeFailed, Notice(context.DeadlineExceeded))
}
