package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/micebot/server/internal/config"
	"github.com/micebot/server/internal/handler"
	"github.com/micebot/server/internal/middleware"
	"github.com/micebot/server/internal/repository"
)

// Register wires every route of the API onto the provided Echo
// instance.  /auth is the only endpoint outside the access gate; the
// token-bucket rate limiter covers the whole surface so credential
// guessing and redemption hammering share the same throttle.  When rdb
// is nil the limiter is a pass-through.
func Register(
	e *echo.Echo,
	cfg config.Config,
	rdb *redis.Client,
	apps *repository.ApplicationRepo,
	auth *handler.AuthHandler,
	products *handler.ProductHandler,
	orders *handler.OrderHandler,
) {
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// Authentication: exchange form credentials for a bearer token.
	e.POST("/auth", auth.Authenticate, limiter)

	// Everything else requires a valid token whose subject still exists
	// in the credential store.
	g := e.Group("", limiter, middleware.AccessGate(cfg.JWTSecret, apps))

	// Heartbeat: proves both token and credential are valid.
	g.GET("/hb", auth.Heartbeat)

	// Product registry.
	g.GET("/products", products.List)
	g.POST("/products", products.Create)
	g.PUT("/products/:uuid", products.Update)
	g.DELETE("/products/:uuid", products.Delete)

	// Order ledger.  The POST path segment is a product code or uuid.
	g.GET("/orders", orders.List)
	g.POST("/orders/:ref", orders.Create)
}
