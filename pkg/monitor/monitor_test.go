package monitor

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"statusrelay/pkg/probe"

	"github.com/stretchr/testify/suite"
)

// MonitorTestSuite tests the background upstream watcher
type MonitorTestSuite struct {
	suite.Suite
	upstream   *httptest.Server
	statusCode atomic.Int32
}

// SetupSuite starts a mock upstream whose status code is switchable
func (s *MonitorTestSuite) SetupSuite() {
	s.upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(s.statusCode.Load()))
	}))
}

// TearDownSuite stops the mock upstream
func (s *MonitorTestSuite) TearDownSuite() {
	s.upstream.Close()
}

// SetupTest resets the upstream to healthy
func (s *MonitorTestSuite) SetupTest() {
	s.statusCode.Store(http.StatusOK)
}

func (s *MonitorTestSuite) newWatcher(url string) *Watcher {
	return New(url, probe.New(500*time.Millisecond), time.Minute)
}

// TestInitialStateAssumesOnline tests the pre-check default
func (s *MonitorTestSuite) TestInitialStateAssumesOnline() {
	w := s.newWatcher(s.upstream.URL)

	health := w.Health()
	s.True(health.Online)
	s.Equal(s.upstream.URL, health.URL)
	s.Zero(health.ChecksTotal)
}

// TestHealthyUpstream tests bookkeeping after a successful check
func (s *MonitorTestSuite) TestHealthyUpstream() {
	w := s.newWatcher(s.upstream.URL)
	w.check()

	health := w.Health()
	s.True(health.Online)
	s.Empty(health.LastError)
	s.Zero(health.ConsecFails)
	s.EqualValues(1, health.ChecksTotal)
	s.False(health.LastCheck.IsZero())
}

// TestOfflineAfterConsecutiveFailures tests the failure threshold
func (s *MonitorTestSuite) TestOfflineAfterConsecutiveFailures() {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	dead.Close()

	w := s.newWatcher(dead.URL)

	w.check()
	w.check()
	s.True(w.Health().Online, "two failures should not mark offline yet")

	w.check()
	health := w.Health()
	s.False(health.Online)
	s.Equal(3, health.ConsecFails)
	s.NotEmpty(health.LastError)
	s.EqualValues(3, health.ChecksTotal)
}

// TestHTTPErrorDoesNotMarkOffline tests that reachable-but-failing stays online
func (s *MonitorTestSuite) TestHTTPErrorDoesNotMarkOffline() {
	s.statusCode.Store(http.StatusInternalServerError)

	w := s.newWatcher(s.upstream.URL)
	w.check()
	w.check()
	w.check()
	w.check()

	health := w.Health()
	s.True(health.Online)
	s.Zero(health.ConsecFails)
	s.Contains(health.LastError, "backend returned status")
}

// TestRecoveryResetsFailures tests the back-online transition
func (s *MonitorTestSuite) TestRecoveryResetsFailures() {
	w := s.newWatcher(s.upstream.URL)

	// Simulate the upstream having been down.
	w.mu.Lock()
	w.health.Online = false
	w.health.ConsecFails = maxConsecutiveFailures
	w.health.LastError = "connection to backend failed: dial tcp"
	w.mu.Unlock()

	w.check()

	health := w.Health()
	s.True(health.Online)
	s.Zero(health.ConsecFails)
	s.Empty(health.LastError)
}

// TestStartStop tests the background loop lifecycle
func (s *MonitorTestSuite) TestStartStop() {
	w := New(s.upstream.URL, probe.New(500*time.Millisecond), 10*time.Millisecond)
	w.Start()

	s.Eventually(func() bool {
		return w.Health().ChecksTotal >= 2
	}, 2*time.Second, 5*time.Millisecond)

	w.Stop()
	after := w.Health().ChecksTotal

	time.Sleep(50 * time.Millisecond)
	s.Equal(after, w.Health().ChecksTotal, "no checks should run after Stop")
}

// TestDefaultInterval tests the zero-value fallback
func (s *MonitorTestSuite) TestDefaultInterval() {
	w := New(s.upstream.URL, probe.New(time.Second), 0)
	s.Equal(DefaultInterval, w.interval)
}

// TestMonitorTestSuite runs the test suite
func TestMonitorTestSuite(t *testing.T) {
	suite.Run(t, new(MonitorTestSuite))
}
