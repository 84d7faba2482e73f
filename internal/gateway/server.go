package gateway

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"clinic-scheduler/internal/handler"
	"clinic-scheduler/internal/middleware"
)

// NewServer assembles the echo instance. bridge may be nil when no gRPC
// server is reachable.
func NewServer(h *Handler, bridge http.Handler, rl *middleware.RateLimiter, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(log))
	e.Use(middleware.Logger(log))

	e.GET("/healthz", Health)
	h.RegisterRoutes(e.Group("/api/v1"), middleware.RateLimitHTTP(rl))

	if bridge != nil {
		e.Any("/"+handler.ServiceName+"/*", echo.WrapHandler(bridge))
	}
	return e
}
