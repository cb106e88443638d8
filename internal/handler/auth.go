package handler

import (
	"context"  // provides context with cancellation for DB calls
	"errors"   // for errors.Is comparisons
	"net/http" // HTTP status codes and primitives
	"strings"  // string manipulation utilities
	"time"     // timeouts for DB calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/micebot/server/internal/config"
	"github.com/micebot/server/internal/repository"
	"github.com/micebot/server/internal/utils"
)

// AuthHandler bundles dependencies for the authentication endpoints.
type AuthHandler struct {
	Cfg  config.Config
	Apps *repository.ApplicationRepo
}

func NewAuthHandler(cfg config.Config, apps *repository.ApplicationRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Apps: apps}
}

// Authenticate handles POST /auth.  Credentials arrive form-encoded
// (OAuth2 password-style: username + password).  On success it returns
// a short-lived bearer token; on failure a generic 401 with a
// WWW-Authenticate header, never revealing whether the username exists.
func (h *AuthHandler) Authenticate(c echo.Context) error {
	username := strings.TrimSpace(c.FormValue("username"))
	password := c.FormValue("password")
	if username == "" || password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "username and password are required."})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	app, err := h.Apps.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCredentials) {
			c.Response().Header().Set("WWW-Authenticate", "Bearer")
			return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "Invalid or unknown client application."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "Authentication failed."})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, app.Username, h.Cfg.TokenTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "Could not issue access token."})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access_token": access.Token,
		"token_type":   "bearer",
	})
}

// Heartbeat handles GET /hb.  It runs behind the access gate, so
// reaching it at all means the token and credential are valid.
func (h *AuthHandler) Heartbeat(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"valid": true})
}
