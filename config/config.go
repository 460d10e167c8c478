package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults used when the matching environment variable is unset.
const (
	DefaultUpstreamURL     = "http://localhost:8000"
	DefaultPort            = 3001
	DefaultUpstreamTimeout = 30 * time.Second
	DefaultTokenSecret     = "smartagri-demo-secret"
	DefaultDemoUsername    = "demo"
	DefaultDemoPassword    = "demo"
)

// DefaultAllowedOrigins are the browser origins the gateway accepts by default.
var DefaultAllowedOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

// Config struct holds gateway configuration.
type Config struct {
	UpstreamURL           string
	Port                  int
	AllowedOrigins        []string
	UpstreamTimeout       time.Duration
	RequireAuthForForward bool

	TokenSecret  string
	DemoUsername string
	DemoPassword string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	upstream := envStr("UPSTREAM_URL", "")
	if upstream == "" {
		upstream = envStr("LSTM_PREDICTION_URL", DefaultUpstreamURL)
	}

	port, err := envInt("PORT", DefaultPort)
	if err != nil {
		return nil, err
	}
	timeout, err := envDuration("UPSTREAM_TIMEOUT", DefaultUpstreamTimeout)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		UpstreamURL:           strings.TrimRight(upstream, "/"),
		Port:                  port,
		AllowedOrigins:        envList("ALLOWED_ORIGINS", DefaultAllowedOrigins),
		UpstreamTimeout:       timeout,
		RequireAuthForForward: envBool("REQUIRE_AUTH_FOR_FORWARD", false),
		TokenSecret:           envStr("TOKEN_SECRET", DefaultTokenSecret),
		DemoUsername:          envStr("DEMO_USERNAME", DefaultDemoUsername),
		DemoPassword:          envStr("DEMO_PASSWORD", DefaultDemoPassword),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration with every field at its default value.
func Default() *Config {
	return &Config{
		UpstreamURL:     DefaultUpstreamURL,
		Port:            DefaultPort,
		AllowedOrigins:  append([]string(nil), DefaultAllowedOrigins...),
		UpstreamTimeout: DefaultUpstreamTimeout,
		TokenSecret:     DefaultTokenSecret,
		DemoUsername:    DefaultDemoUsername,
		DemoPassword:    DefaultDemoPassword,
	}
}

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.UpstreamURL == "" {
		return errors.New("upstream url is required")
	}
	u, err := url.Parse(c.UpstreamURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("upstream url %q is not an absolute http url", c.UpstreamURL)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive, got %s", c.UpstreamTimeout)
	}
	if c.DemoUsername == "" || c.DemoPassword == "" {
		return errors.New("demo username and password are required")
	}
	if c.TokenSecret == "" {
		return errors.New("token secret is required")
	}
	return nil
}

// ListenAddr is the address passed to the server's Listen.
func (c *Config) ListenAddr() string {
	return ":" + strconv.Itoa(c.Port)
}

func envStr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return append([]string(nil), fallback...)
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), fallback...)
	}
	return out
}
