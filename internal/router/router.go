// Package router wires the register's HTTP routes to their handlers.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/kmori/junban/internal/config"
	"github.com/kmori/junban/internal/handler"
	"github.com/kmori/junban/internal/middleware"
)

// RegisterRoutes registers routes that do not require a session: the health
// check and the session-creation endpoint itself.
func RegisterRoutes(e *echo.Echo, a *handler.AuthHandler) {
	e.GET("/healthz", handler.Health)
	e.POST("/v1/auth/session", a.CreateSession)
}

// RegisterTickets registers the core operations under /v1 behind the session
// gate and the rate limiter. Every route in this group touches the shared
// sheet, directly or through the cache.
func RegisterTickets(e *echo.Echo, t *handler.TicketHandler, cfg config.Config, rdb *redis.Client) {
	g := e.Group("/v1")
	g.Use(middleware.SessionGate(cfg.SessionSecret, cfg.OpenMode()))
	g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	g.GET("/stores", t.ListStores)
	g.GET("/stores/:store/tickets", t.ListPending)
	g.POST("/stores/:store/tickets", t.Register)
	g.POST("/tickets/:position/complete", t.Complete)
}
