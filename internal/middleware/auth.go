package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/q6kkhvmy6s/rsvp/internal/auth"
	"github.com/q6kkhvmy6s/rsvp/internal/models"
	"github.com/q6kkhvmy6s/rsvp/pkg/logger"
	"go.uber.org/zap"
)

const sessionKey = "session"

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, time.Time, error)
}

// Session resolves the caller for every request and stores the result on the
// context. A missing or bad token leaves the session anonymous; the route
// decides whether that is acceptable.
func Session(a Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := auth.NewSession()
			s.Begin()

			token := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if token == "" {
				s.Resolve(nil, time.Time{})
			} else {
				u, issuedAt, err := a.Authenticate(c.Request().Context(), token)
				if err != nil {
					if !errors.Is(err, auth.ErrInvalidToken) {
						logger.Log.Warn("session lookup failed", zap.Error(err))
					}
					u, issuedAt = nil, time.Time{}
				}
				s.Resolve(u, issuedAt)
			}

			c.Set(sessionKey, s)
			return next(c)
		}
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// SessionFrom returns the request's session, or an anonymous one when the
// Session middleware did not run.
func SessionFrom(c echo.Context) *auth.Session {
	if s, ok := c.Get(sessionKey).(*auth.Session); ok {
		return s
	}
	return auth.Anonymous()
}

// SetSession stores s on the context. Handlers under test use it in place of
// the Session middleware.
func SetSession(c echo.Context, s *auth.Session) {
	c.Set(sessionKey, s)
}

func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if SessionFrom(c).IsAnonymous() {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		return next(c)
	}
}

func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s := SessionFrom(c)
		if s.IsAnonymous() {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		if !s.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}
