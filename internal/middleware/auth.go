package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"  // bounded lookups against the credential store
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming
	"time"     // lookup timeout

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/micebot/server/internal/repository"
	"github.com/micebot/server/internal/utils"
)

// AccessGate returns an Echo middleware that validates a Bearer access
// token and then confirms that the token's subject still exists in the
// credential store.  Both checks must pass before any product or order
// operation runs; every failure (missing header, bad signature,
// expired token, unknown subject) produces the same 401 body so the
// caller cannot tell which stage rejected it.  On success the
// application record is stored in the request context under
// "application".
func AccessGate(secret string, apps *repository.ApplicationRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return reject(c)
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			subject, err := utils.ValidateAccessToken(secret, raw)
			if err != nil {
				return reject(c)
			}

			// Signature validity is not enough: a credential removed after
			// the token was issued must still be locked out.
			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			app, err := apps.GetByUsername(ctx, subject)
			if err != nil {
				return reject(c)
			}

			c.Set("application", app)
			return next(c)
		}
	}
}

// reject writes the uniform credential failure used by every gate
// rejection.
func reject(c echo.Context) error {
	c.Response().Header().Set("WWW-Authenticate", "Bearer")
	return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Could not validate your credentials."})
}
