package probe

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
)

// Kind classifies why an upstream probe failed.
type Kind int

const (
	// KindTimeout covers deadline expiry, both client-side and context-driven.
	KindTimeout Kind = iota
	// KindConnection covers DNS failures, refused connections and other transport errors.
	KindConnection
	// KindStatus means the upstream was reachable but answered outside 2xx.
	KindStatus
)

// Error is the single error kind the prober produces. Every failure mode
// collapses into it; callers that care about the cause inspect Kind.
type Error struct {
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		return "timeout contacting backend: " + e.Err.Error()
	case KindStatus:
		text := http.StatusText(e.StatusCode)
		if text == "" {
			text = strconv.Itoa(e.StatusCode)
		}
		return "backend returned status " + text
	default:
		return "connection to backend failed: " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classify maps a transport error onto a probe error kind.
func classify(err error) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &Error{Kind: KindTimeout, Err: err}
	default:
		return &Error{Kind: KindConnection, Err: err}
	}
}

// IsTimeoutOrConnection reports whether err represents an unreachable
// upstream rather than an HTTP-level failure. HTTP errors mean the upstream
// is alive but unhappy, so they never count toward offline detection.
func IsTimeoutOrConnection(err error) bool {
	var probeErr *Error
	if errors.As(err, &probeErr) {
		return probeErr.Kind != KindStatus
	}
	return err != nil
}
