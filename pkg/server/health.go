package server

import (
	"net/http"
	"strconv"
	"time"

	"statusrelay/pkg/models"

	"github.com/labstack/echo/v4"
)

// health handles GET /health. It reports the relay's own liveness and
// never touches the upstream.
func (srv *Server) health(ctx echo.Context) error {
	uptime := time.Since(srv.startedAt)

	return ctx.JSON(http.StatusOK, models.ServiceHealth{
		Status:        "ok",
		Version:       srv.version,
		Uptime:        formatUptime(int64(uptime.Seconds())),
		UptimeSeconds: int64(uptime.Seconds()),
	})
}

// uptime handles GET /api/uptime, serving the watcher's last snapshot.
func (srv *Server) uptime(ctx echo.Context) error {
	if srv.watcher == nil {
		return ctx.JSON(http.StatusServiceUnavailable, map[string]string{
			"error": "watcher disabled",
		})
	}

	return ctx.JSON(http.StatusOK, srv.watcher.Health())
}

// formatUptime converts seconds to human-readable form.
func formatUptime(seconds int64) string {
	duration := time.Duration(seconds) * time.Second
	const hoursInDay = 24
	const minutesInHour = 60
	days := int(duration.Hours()) / hoursInDay
	hours := int(duration.Hours()) % hoursInDay
	minutes := int(duration.Minutes()) % minutesInHour

	switch {
	case days > 0:
		return strconv.Itoa(days) + "d " + strconv.Itoa(hours) + "h " + strconv.Itoa(minutes) + "m"
	case hours > 0:
		return strconv.Itoa(hours) + "h " + strconv.Itoa(minutes) + "m"
	default:
		return strconv.Itoa(minutes) + "m"
	}
}
