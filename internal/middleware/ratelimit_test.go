package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/micebot/server/internal/config"
	"github.com/micebot/server/internal/model"
)

func TestTokenBucket_DisabledPassesThrough(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: false}
	limiter := NewTokenBucket(cfg, nil)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	reached := false
	h := limiter(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.True(t, reached)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestTokenBucket_NilRedisPassesThrough(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       10,
		RefillTokens:   10,
		RefillInterval: time.Second,
		TTL:            time.Minute,
	}
	limiter := NewTokenBucket(cfg, nil)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	reached := false
	h := limiter(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.True(t, reached)
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()

	newCtx := func() echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/products", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath("/products")
		return c
	}

	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}
	assert.Equal(t, "rl:ip:10.0.0.9", buildRateKey(cfg, newCtx()))

	cfg.KeyStrategy = "ip_route"
	assert.Equal(t, "rl:ip:10.0.0.9:route:GET /products", buildRateKey(cfg, newCtx()))

	// Without a gated application the app segment degrades to "anon".
	cfg.KeyStrategy = "app"
	assert.Equal(t, "rl:app:anon", buildRateKey(cfg, newCtx()))

	c := newCtx()
	c.Set("application", model.Application{ID: 1, Username: "micebot"})
	assert.Equal(t, "rl:app:micebot", buildRateKey(cfg, c))

	cfg.KeyStrategy = "ip_app_route"
	assert.Equal(t, "rl:ip:10.0.0.9:app:micebot:route:GET /products", buildRateKey(cfg, c))
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(3), asInt64(int64(3)))
	assert.Equal(t, int64(3), asInt64(3))
	assert.Equal(t, int64(3), asInt64(3.0))
	assert.Equal(t, int64(3), asInt64("3"))
	assert.Equal(t, int64(0), asInt64("nope"))
	assert.Equal(t, int64(0), asInt64(nil))
}
