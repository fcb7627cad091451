package models

import "time"

// Enumerated values for StatusResult fields.
const (
	StatusSuccess = "success"
	StatusError   = "error"

	BackendConnected    = "connected"
	BackendDisconnected = "disconnected"
)

// StatusResult is the normalized outcome of one relay invocation.
// Exactly one of the two shapes is produced: success carries BackendURL,
// failure carries Error.
type StatusResult struct {
	Status     string `json:"status"`
	Backend    string `json:"backend"`
	Timestamp  string `json:"timestamp"`
	BackendURL string `json:"backendUrl,omitempty"`
	Error      string `json:"error,omitempty"`
}

// UpstreamHealth is a snapshot of the background watcher's view of the upstream.
type UpstreamHealth struct {
	URL         string    `json:"url"`
	Online      bool      `json:"online"`
	LastCheck   time.Time `json:"last_check"`
	LastError   string    `json:"last_error,omitempty"`
	Latency     int64     `json:"latency_ms"`
	ConsecFails int       `json:"consecutive_failures"`
	ChecksTotal uint64    `json:"checks_total"`
}

// ServiceHealth reports the relay's own liveness, never the upstream's.
type ServiceHealth struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Uptime        string `json:"uptime"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}
