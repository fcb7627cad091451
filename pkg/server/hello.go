package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type helloResponse struct {
	Message   string `json:"message"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// hello handles GET /api/hello, a deploy smoke check.
func (srv *Server) hello(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, helloResponse{
		Message:   "Hello from the status relay",
		Version:   srv.version,
		Timestamp: timestamp(),
	})
}
