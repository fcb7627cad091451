package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultBackendURL is the upstream probed when no backend URL is configured.
const DefaultBackendURL = "https://project-ludo.onrender.com"

// ErrInvalidBackendURL is returned when the configured upstream URL carries no http(s) scheme.
var ErrInvalidBackendURL = errors.New("backend URL must start with http:// or https://")

// Config holds the relay configuration read from environment variables.
type Config struct {
	// BackendURL overrides the upstream base URL.
	BackendURL string `env:"BACKEND_URL"`
	// ReactBackendURL is the legacy variable the frontend deployments set.
	// BackendURL wins when both are present.
	ReactBackendURL string        `env:"REACT_APP_BACKEND_URL"`
	Port            string        `env:"PORT"`
	ProbeTimeout    time.Duration `env:"PROBE_TIMEOUT" envDefault:"5s"`
	WatchInterval   time.Duration `env:"WATCH_INTERVAL" envDefault:"30s"`
	ContactDB       string        `env:"CONTACT_DB"`
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Upstream resolves the upstream base URL. The boolean reports whether the
// hardcoded default had to be used because no variable was set.
func (c *Config) Upstream() (string, bool) {
	switch {
	case strings.TrimSpace(c.BackendURL) != "":
		return Normalize(c.BackendURL), false
	case strings.TrimSpace(c.ReactBackendURL) != "":
		return Normalize(c.ReactBackendURL), false
	default:
		return DefaultBackendURL, true
	}
}

// Addr returns the listen address derived from PORT, or fallback when PORT is unset.
// Render-style deployments export PORT as a bare number.
func (c *Config) Addr(fallback string) string {
	if c.Port == "" {
		return fallback
	}
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

// ValidateURL checks that an upstream URL carries an http(s) scheme.
func ValidateURL(rawURL string) error {
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return ErrInvalidBackendURL
	}
	return nil
}

// Normalize trims whitespace and trailing slashes so path joining stays predictable.
func Normalize(rawURL string) string {
	return strings.TrimRight(strings.TrimSpace(rawURL), "/")
}
