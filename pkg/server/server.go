// Package server exposes the status relay and its companion endpoints
// over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"statusrelay/pkg/contact"
	"statusrelay/pkg/log"
	"statusrelay/pkg/monitor"
	"statusrelay/pkg/probe"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	gracefulShutdownTimeout = 10 * time.Second

	forwardRetryMax     = 2
	forwardRetryWaitMin = 500 * time.Millisecond
	forwardRetryWaitMax = 2 * time.Second
)

// Server is the relay HTTP server. The watcher and contact store are
// optional; nil disables the corresponding endpoints.
type Server struct {
	upstreamURL string
	version     string
	echo        *echo.Echo
	prober      *probe.Prober
	watcher     *monitor.Watcher
	contacts    *contact.Store
	forwarder   *retryablehttp.Client
	startedAt   time.Time
}

// New creates a relay server probing the given upstream base URL.
func New(upstreamURL, version string, prober *probe.Prober, watcher *monitor.Watcher, contacts *contact.Store) *Server {
	return &Server{
		upstreamURL: upstreamURL,
		version:     version,
		echo:        echo.New(),
		prober:      prober,
		watcher:     watcher,
		contacts:    contacts,
		forwarder:   newForwardClient(prober.Timeout()),
		startedAt:   time.Now(),
	}
}

// Start runs the server until SIGINT or SIGTERM, then shuts down gracefully.
func (srv *Server) Start(addr string) error {
	srv.setupRoutes()

	if srv.watcher != nil {
		srv.watcher.Start()
	}

	go func() {
		log.Info().
			Str("addr", addr).
			Str("upstream", srv.upstreamURL).
			Str("version", srv.version).
			Msg("Starting status relay")

		if err := srv.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server startup failed")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return srv.Shutdown()
}

// Shutdown stops the watcher, drains in-flight requests and closes the store.
func (srv *Server) Shutdown() error {
	log.Info().Msg("Shutting down server...")

	if srv.watcher != nil {
		srv.watcher.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	if err := srv.echo.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
		return err
	}

	if srv.contacts != nil {
		if err := srv.contacts.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close contact store")
		}
	}

	log.Info().Msg("Server gracefully stopped")
	return nil
}

func (srv *Server) setupRoutes() {
	srv.echo.HideBanner = true
	srv.echo.HidePort = true

	srv.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} ${status} ${method} ${uri} (${latency_human})\n",
	}))
	srv.echo.Use(middleware.Recover())
	srv.echo.Use(corsHeaders)

	srv.echo.GET("/health", srv.health)
	srv.echo.GET("/api/hello", srv.hello)
	srv.echo.GET("/api/backend-status", srv.backendStatus)
	srv.echo.GET("/api/uptime", srv.uptime)
	srv.echo.POST("/api/contact", srv.submitContact)
	srv.echo.GET("/api/contacts", srv.listContacts)
}

// corsHeaders sets the permissive CORS contract on every response. The
// stock CORS middleware only answers requests that carry an Origin header,
// but callers of the relay expect the headers unconditionally.
func corsHeaders(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		header := ctx.Response().Header()
		header.Set(echo.HeaderAccessControlAllowOrigin, "*")
		header.Set(echo.HeaderAccessControlAllowHeaders, echo.HeaderContentType)

		if ctx.Request().Method == http.MethodOptions {
			return ctx.NoContent(http.StatusNoContent)
		}
		return next(ctx)
	}
}

// newForwardClient builds the retrying client used for forwarded requests.
// Connection and timeout errors are retried; HTTP errors are not, so
// upstream failure responses stay observable.
func newForwardClient(timeout time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = forwardRetryMax
	client.RetryWaitMin = forwardRetryWaitMin
	client.RetryWaitMax = forwardRetryWaitMax
	client.HTTPClient.Timeout = timeout
	client.Logger = nil // Disable retryablehttp logging
	client.CheckRetry = forwardRetryPolicy
	return client
}

func forwardRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	// If we got a response, don't retry - the upstream answered.
	if resp != nil {
		return false, nil
	}

	if err != nil {
		return true, nil //nolint:nilerr // retryablehttp reports the final error itself
	}

	return false, nil
}

// timestamp produces the response timestamp: RFC 3339 with nanoseconds in
// UTC, which keeps sequential invocations strictly ordered.
func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}
