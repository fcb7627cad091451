package server

import (
	"net/http"

	"statusrelay/pkg/log"
	"statusrelay/pkg/models"

	"github.com/labstack/echo/v4"
)

// backendStatus handles GET /api/backend-status. Each invocation issues
// exactly one fresh probe against the upstream; there is no caching and
// no retry. Every failure mode collapses into the error-shaped result.
func (srv *Server) backendStatus(ctx echo.Context) error {
	if err := srv.prober.Check(ctx.Request().Context(), srv.upstreamURL); err != nil {
		log.Warn().
			Err(err).
			Str("upstream", srv.upstreamURL).
			Msg("Upstream status probe failed")

		return ctx.JSON(http.StatusInternalServerError, models.StatusResult{
			Status:    models.StatusError,
			Backend:   models.BackendDisconnected,
			Error:     err.Error(),
			Timestamp: timestamp(),
		})
	}

	return ctx.JSON(http.StatusOK, models.StatusResult{
		Status:     models.StatusSuccess,
		Backend:    models.BackendConnected,
		Timestamp:  timestamp(),
		BackendURL: srv.upstreamURL,
	})
}
