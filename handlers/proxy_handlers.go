package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"smartagri/config"
	"smartagri/middleware"
	"smartagri/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

var errMalformedBody = errors.New("upstream returned a malformed response body")

// maxRedirects bounds how many upstream redirects a GET or HEAD follows.
const maxRedirects = 5

// Forwarder relays requests to the upstream prediction service. It holds no
// per-request state and is safe for concurrent use.
type Forwarder struct {
	upstream string
	timeout  time.Duration
}

// NewForwarder builds a Forwarder from the gateway configuration.
func NewForwarder(cfg *config.Config) *Forwarder {
	return &Forwarder{upstream: cfg.UpstreamURL, timeout: cfg.UpstreamTimeout}
}

// Upstream is the configured upstream base URL.
func (f *Forwarder) Upstream() string { return f.upstream }

// TargetURL is the upstream base with the original path and query appended unmodified.
func (f *Forwarder) TargetURL(c *fiber.Ctx) string {
	return f.upstream + c.OriginalURL()
}

// HandleForward sends the request upstream once and relays the answer.
// ANY /api/crops/*, /api/graphs/*, /api/user-predictions/*
func (f *Forwarder) HandleForward(c *fiber.Ctx) error {
	start := time.Now()
	method := c.Method()
	target := f.TargetURL(c)

	status, body, err := f.do(method, target, c.Body())
	if err != nil || status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
		if err == nil {
			err = fmt.Errorf("request failed with status code %d", status)
		}
		outStatus, env := utils.NormalizeUpstreamFailure(status, body, err, f.upstream)
		log.Printf("[PROXY] %s %s %s -> %d in %s: %v",
			middleware.GetRequestID(c), method, target, outStatus, time.Since(start), err)
		return c.Status(outStatus).JSON(env)
	}

	log.Printf("[PROXY] %s %s %s -> %d in %s", middleware.GetRequestID(c), method, target, status, time.Since(start))

	c.Status(status)
	if len(body) == 0 {
		return nil
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

// do performs the single upstream call. status is 0 when no response arrived.
func (f *Forwarder) do(method, target string, inBody []byte) (int, []byte, error) {
	agent := fiber.AcquireAgent()
	req := agent.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(target)

	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return 0, nil, fmt.Errorf("invalid upstream url %q: %w", target, err)
	}

	agent.ContentType(fiber.MIMEApplicationJSON)
	if carriesBody(method) && len(inBody) > 0 {
		agent.Body(inBody)
	}
	if followsRedirects(method) {
		// Agent.Timeout bypasses redirect handling, so bound each hop on the request.
		req.SetTimeout(f.timeout)
		agent.MaxRedirectsCount(maxRedirects)
	} else {
		agent.Timeout(f.timeout)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return 0, nil, f.transportError(errs[0])
	}

	if code >= fiber.StatusOK && code < fiber.StatusMultipleChoices && len(body) > 0 && !json.Valid(body) {
		return 0, nil, errMalformedBody
	}
	return code, body, nil
}

func (f *Forwarder) transportError(err error) error {
	if errors.Is(err, fasthttp.ErrTimeout) || errors.Is(err, fasthttp.ErrDialTimeout) {
		return fmt.Errorf("timeout of %s exceeded", f.timeout)
	}
	return err
}

func followsRedirects(method string) bool {
	return method == fiber.MethodGet || method == fiber.MethodHead
}

func carriesBody(method string) bool {
	switch method {
	case fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch:
		return true
	}
	return false
}
