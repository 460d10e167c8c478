package routes

import (
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"smartagri/config"
	"smartagri/handlers"
	"smartagri/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deadUpstream(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return "http://" + addr
}

func newTestApp(t *testing.T, mutate func(*config.Config)) *fiber.App {
	t.Helper()
	cfg := config.Default()
	cfg.UpstreamTimeout = 2 * time.Second
	if mutate != nil {
		mutate(cfg)
	}
	app, err := NewApp(cfg)
	require.NoError(t, err)
	return app
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, func(c *config.Config) { c.UpstreamURL = "http://predictor:8000" })

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var got models.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "ok", got.Status)
	assert.True(t, got.Backend)
	assert.Equal(t, "http://predictor:8000", got.Upstream)
}

func TestUnmatchedRoute(t *testing.T) {
	app := newTestApp(t, nil)

	for _, path := range []string{"/nope", "/api/prices/current", "/api/auth/unknown", "/api/cropsXYZ", "/api/graphs-extra/1", "/api/user-predictionsX"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode, path)

		body, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"error":"Route not found"}`, string(body))
	}
}

func TestForwardMatchesWholePathSegments(t *testing.T) {
	var (
		mu   sync.Mutex
		hits []string
	)
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits = append(hits, r.URL.Path)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer up.Close()

	app := newTestApp(t, func(c *config.Config) { c.UpstreamURL = up.URL })

	cases := []struct {
		path   string
		status int
	}{
		{"/api/crops", 200},
		{"/api/crops/list", 200},
		{"/api/graphs/crop/Rice", 200},
		{"/api/cropsXYZ", 404},
		{"/api/graphs-extra/1", 404},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", tc.path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, tc.status, resp.StatusCode, tc.path)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/api/crops", "/api/crops/list", "/api/graphs/crop/Rice"}, hits)
}

func TestForwardedPrefixesReturnEnvelopeWhenUpstreamDown(t *testing.T) {
	upstream := deadUpstream(t)
	app := newTestApp(t, func(c *config.Config) { c.UpstreamURL = upstream })

	paths := []string{
		"/api/crops/trained",
		"/api/crops",
		"/api/graphs/crop/Rice?days=7",
		"/api/user-predictions/my-predictions",
	}
	for _, path := range paths {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode, path)

		var env models.Envelope
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
		assert.False(t, env.Success)
		assert.NotEmpty(t, env.Message)
	}
}

func TestForwardRequiresBearerWhenEnabled(t *testing.T) {
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer up.Close()

	app := newTestApp(t, func(c *config.Config) {
		c.UpstreamURL = up.URL
		c.RequireAuthForForward = true
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/crops/trained", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	req := httptest.NewRequest("GET", "/api/crops/trained", nil)
	req.Header.Set("Authorization", "Bearer demo-token")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}

func TestForwardTableOrder(t *testing.T) {
	cfg := config.Default()
	table := ForwardTable(cfg, handlers.NewForwarder(cfg))

	require.Len(t, table, len(ForwardPrefixes))
	for i, r := range table {
		assert.Equal(t, ForwardPrefixes[i], r.Prefix)
		assert.Len(t, r.Handlers, 1)
	}

	cfg.RequireAuthForForward = true
	for _, r := range ForwardTable(cfg, handlers.NewForwarder(cfg)) {
		assert.Len(t, r.Handlers, 2)
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	app := newTestApp(t, nil)

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRegisterThroughApp(t *testing.T) {
	app := newTestApp(t, nil)

	resp, err := app.Test(httptest.NewRequest("POST", "/api/auth/register", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, 501, resp.StatusCode)
}
