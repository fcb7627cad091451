package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"statusrelay/pkg/models"
	"statusrelay/pkg/probe"

	"github.com/stretchr/testify/suite"
)

// newTestServer builds a routed relay server for handler tests.
func newTestServer(upstreamURL string, timeout time.Duration) *Server {
	srv := New(upstreamURL, "test", probe.New(timeout), nil, nil)
	srv.setupRoutes()
	return srv
}

func doRequest(srv *Server, method, target string, body *strings.Reader) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

// StatusRelayTestSuite tests the backend-status relay endpoint
type StatusRelayTestSuite struct {
	suite.Suite
}

// TestSuccessPath tests a reachable upstream answering 2xx
func (s *StatusRelayTestSuite) TestSuccessPath() {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.Equal("/api/status", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	srv := newTestServer(upstream.URL, time.Second)
	rec := doRequest(srv, http.MethodGet, "/api/backend-status", nil)

	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Header().Get("Content-Type"), "application/json")

	var result models.StatusResult
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &result))
	s.Equal(models.StatusSuccess, result.Status)
	s.Equal(models.BackendConnected, result.Backend)
	s.Equal(upstream.URL, result.BackendURL)
	s.Empty(result.Error)

	_, err := time.Parse(time.RFC3339Nano, result.Timestamp)
	s.NoError(err, "timestamp must be valid ISO-8601")
}

// TestUnreachableUpstream tests a dead upstream
func (s *StatusRelayTestSuite) TestUnreachableUpstream() {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	upstream.Close()

	srv := newTestServer(upstream.URL, time.Second)
	rec := doRequest(srv, http.MethodGet, "/api/backend-status", nil)

	s.Equal(http.StatusInternalServerError, rec.Code)

	var result models.StatusResult
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &result))
	s.Equal(models.StatusError, result.Status)
	s.Equal(models.BackendDisconnected, result.Backend)
	s.NotEmpty(result.Error)
	s.Empty(result.BackendURL)

	_, err := time.Parse(time.RFC3339Nano, result.Timestamp)
	s.NoError(err)
}

// TestUpstreamHTTPError tests a reachable upstream answering outside 2xx
func (s *StatusRelayTestSuite) TestUpstreamHTTPError() {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()

	srv := newTestServer(upstream.URL, time.Second)
	rec := doRequest(srv, http.MethodGet, "/api/backend-status", nil)

	s.Equal(http.StatusInternalServerError, rec.Code)

	var result models.StatusResult
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &result))
	s.Equal(models.StatusError, result.Status)
	s.Contains(result.Error, "backend returned status")
}

// TestSlowUpstream tests an upstream that exceeds the probe deadline
func (s *StatusRelayTestSuite) TestSlowUpstream() {
	release := make(chan struct{})
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer func() {
		close(release)
		upstream.Close()
	}()

	srv := newTestServer(upstream.URL, 100*time.Millisecond)
	rec := doRequest(srv, http.MethodGet, "/api/backend-status", nil)

	s.Equal(http.StatusInternalServerError, rec.Code)

	var result models.StatusResult
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &result))
	s.Equal(models.BackendDisconnected, result.Backend)
	s.Contains(result.Error, "timeout")
}

// TestTimestampsStrictlyIncreasing tests ordering across sequential invocations
func (s *StatusRelayTestSuite) TestTimestampsStrictlyIncreasing() {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	srv := newTestServer(upstream.URL, time.Second)

	var previous time.Time
	for i := 0; i < 5; i++ {
		rec := doRequest(srv, http.MethodGet, "/api/backend-status", nil)
		s.Equal(http.StatusOK, rec.Code)

		var result models.StatusResult
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &result))

		parsed, err := time.Parse(time.RFC3339Nano, result.Timestamp)
		s.Require().NoError(err)
		s.True(parsed.After(previous), "timestamps must strictly increase")
		previous = parsed
	}
}

// TestCORSHeadersOnBothPaths tests the unconditional CORS contract
func (s *StatusRelayTestSuite) TestCORSHeadersOnBothPaths() {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))

	srv := newTestServer(upstream.URL, time.Second)

	rec := doRequest(srv, http.MethodGet, "/api/backend-status", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))
	s.Equal("Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))

	upstream.Close() // now the failure path

	rec = doRequest(srv, http.MethodGet, "/api/backend-status", nil)
	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))
	s.Equal("Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
}

// TestPreflight tests the OPTIONS short circuit
func (s *StatusRelayTestSuite) TestPreflight() {
	srv := newTestServer("http://127.0.0.1:1", time.Second)
	rec := doRequest(srv, http.MethodOptions, "/api/backend-status", nil)

	s.Equal(http.StatusNoContent, rec.Code)
	s.Equal("*", rec.Header().Get("Access-Control-Allow-Origin"))
	s.Equal("Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
}

// TestQueryAndBodyIgnored tests that inbound payloads do not change the outcome
func (s *StatusRelayTestSuite) TestQueryAndBodyIgnored() {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer upstream.Close()

	srv := newTestServer(upstream.URL, time.Second)
	rec := doRequest(srv, http.MethodGet, "/api/backend-status?foo=bar&probe=false", nil)

	s.Equal(http.StatusOK, rec.Code)

	var result models.StatusResult
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &result))
	s.Equal(models.StatusSuccess, result.Status)
}

// TestStatusRelayTestSuite runs the test suite
func TestStatusRelayTestSuite(t *testing.T) {
	suite.Run(t, new(StatusRelayTestSuite))
}
