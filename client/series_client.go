package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"smartagri/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultGraphPath = "/api/graphs/crop/"
)

// ErrConnectivity wraps failures where no HTTP response came back at all.
var ErrConnectivity = errors.New("gateway unreachable")

// UpstreamError is a non-2xx answer carrying the gateway's error envelope.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway returned status %d", e.Status)
	}
	return fmt.Sprintf("gateway returned status %d: %s", e.Status, e.Message)
}

// SeriesClient fetches price series through the gateway. One request per
// call, no retries.
type SeriesClient struct {
	BaseURL   string
	Token     string
	Timeout   time.Duration
	GraphPath string
}

// New returns a client for the gateway at baseURL.
func New(baseURL, token string) *SeriesClient {
	return &SeriesClient{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		Token:     token,
		Timeout:   DefaultTimeout,
		GraphPath: DefaultGraphPath,
	}
}

// SeriesURL builds the graph URL: crop in the path, days and the optional
// state/district as query parameters.
func (c *SeriesClient) SeriesURL(q models.SeriesQuery) string {
	params := url.Values{}
	params.Set("days", strconv.Itoa(q.Days))
	if q.State != "" {
		params.Set("state", q.State)
	}
	if q.District != "" {
		params.Set("district", q.District)
	}

	path := c.GraphPath
	if path == "" {
		path = DefaultGraphPath
	}
	return c.BaseURL + path + url.PathEscape(q.Crop) + "?" + params.Encode()
}

// FetchSeries issues one GET for the query and decodes the envelope.
// Transport failures wrap ErrConnectivity; non-2xx answers are *UpstreamError.
func (c *SeriesClient) FetchSeries(ctx context.Context, q models.SeriesQuery) (*models.GraphEnvelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	agent := fiber.AcquireAgent()
	req := agent.Request()
	req.Header.SetMethod(fiber.MethodGet)
	req.SetRequestURI(c.SeriesURL(q))

	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return nil, fmt.Errorf("invalid gateway url: %w", err)
	}

	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if HasJWTShape(c.Token) {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+strings.TrimSpace(c.Token))
	}
	agent.Timeout(c.timeout(ctx))

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrConnectivity, errs[0])
	}

	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		var env models.Envelope
		_ = json.Unmarshal(body, &env)
		return nil, &UpstreamError{Status: code, Message: env.Message}
	}

	var env models.GraphEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode graph payload: %w", err)
	}
	return &env, nil
}

func (c *SeriesClient) timeout(ctx context.Context) time.Duration {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	return timeout
}

// HasJWTShape reports whether token looks like a JWT. Other tokens are not
// sent, so a stale opaque value never reaches the gateway.
func HasJWTShape(token string) bool {
	token = strings.TrimSpace(token)
	if len(token) <= 20 || strings.Count(token, ".") != 2 {
		return false
	}
	_, _, err := new(jwt.Parser).ParseUnverified(token, jwt.MapClaims{})
	return err == nil
}
