// Package probe issues one-shot liveness checks against the upstream
// backend's /api/status endpoint.
package probe

import (
	"context"
	"io"
	"net/http"
	"time"

	"statusrelay/pkg/log"
)

const (
	// DefaultTimeout bounds a single probe end to end.
	DefaultTimeout = 5 * time.Second

	// StatusPath is the upstream endpoint probed for liveness.
	StatusPath = "/api/status"

	maxDrainBytes = 4096
)

// Prober checks whether an upstream backend answers its status endpoint.
// It performs exactly one request per call: no retries, no caching.
type Prober struct {
	client  *http.Client
	timeout time.Duration
}

// New creates a prober whose requests are bounded by the given timeout.
func New(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Prober{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Timeout returns the configured probe deadline.
func (p *Prober) Timeout() time.Duration {
	return p.timeout
}

// Check issues a single GET against baseURL's status endpoint. It returns
// nil when the upstream answers 2xx within the deadline, and a *Error
// describing the failure otherwise.
func (p *Prober) Check(ctx context.Context, baseURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+StatusPath, nil)
	if err != nil {
		return &Error{Kind: KindConnection, Err: err}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return classify(err)
	}
	defer func() {
		// Drain so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, maxDrainBytes)
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("Failed to close probe response body")
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &Error{Kind: KindStatus, StatusCode: resp.StatusCode}
	}

	return nil
}
