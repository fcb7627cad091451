// Package monitor keeps a background view of upstream health so operators
// can see trends without triggering fresh probes.
package monitor

import (
	"context"
	"sync"
	"time"

	"statusrelay/pkg/log"
	"statusrelay/pkg/models"
	"statusrelay/pkg/probe"

	"github.com/rs/zerolog"
)

const (
	// DefaultInterval is the watcher period when none is configured.
	DefaultInterval = 30 * time.Second

	maxConsecutiveFailures = 3
)

// Watcher periodically probes the upstream and tracks its health. The
// relay's own status endpoint never reads from here; the watcher only
// feeds the uptime snapshot.
type Watcher struct {
	url      string
	prober   *probe.Prober
	interval time.Duration
	logger   zerolog.Logger

	mu     sync.RWMutex
	health models.UpstreamHealth

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a watcher for the given upstream base URL.
func New(url string, prober *probe.Prober, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = DefaultInterval
	}

	return &Watcher{
		url:      url,
		prober:   prober,
		interval: interval,
		logger:   log.With("monitor"),
		health: models.UpstreamHealth{
			URL:    url,
			Online: true, // Assume online until proven otherwise
		},
		stopCh: make(chan struct{}),
	}
}

// Start performs an initial check synchronously, then begins the
// background loop.
func (w *Watcher) Start() {
	w.check()

	w.wg.Add(1)
	go w.loop()

	w.logger.Info().
		Str("upstream", w.url).
		Dur("interval", w.interval).
		Msg("Upstream watcher started")
}

// Stop gracefully stops the watcher.
func (w *Watcher) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.logger.Info().Msg("Upstream watcher stopped")
}

// Health returns a copy of the current upstream health snapshot.
func (w *Watcher) Health() models.UpstreamHealth {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.health
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// check runs one probe and folds the outcome into the snapshot.
func (w *Watcher) check() {
	ctx, cancel := context.WithTimeout(context.Background(), w.prober.Timeout())
	defer cancel()

	start := time.Now()
	err := w.prober.Check(ctx, w.url)
	latency := time.Since(start)

	w.mu.Lock()
	defer w.mu.Unlock()

	w.health.LastCheck = time.Now()
	w.health.Latency = latency.Milliseconds()
	w.health.ChecksTotal++

	if err != nil {
		w.health.LastError = err.Error()

		// HTTP errors mean the upstream is reachable but failing; only
		// transport-level errors count toward offline detection.
		if probe.IsTimeoutOrConnection(err) {
			w.health.ConsecFails++
			if w.health.ConsecFails >= maxConsecutiveFailures {
				if w.health.Online {
					w.logger.Warn().
						Str("upstream", w.url).
						Int("consecutive_failures", w.health.ConsecFails).
						Err(err).
						Msg("Upstream marked offline")
				}
				w.health.Online = false
			}
		}
		return
	}

	wasOffline := !w.health.Online
	w.health.Online = true
	w.health.ConsecFails = 0
	w.health.LastError = ""

	if wasOffline {
		w.logger.Info().
			Str("upstream", w.url).
			Int64("latency_ms", w.health.Latency).
			Msg("Upstream back online")
	}
}
