package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/crmhub/crm-system/internal/core/domain"
	"github.com/crmhub/crm-system/internal/core/ports"
)

// Context keys set by Auth.
const (
	ContextKeyRole    = "role"
	ContextKeySubject = "subject"
)

// Auth validates the Authorization header and injects the caller's role and
// subject into the context. Any token failure is a 401; the precise reason is
// only logged.
func Auth(authn ports.Authenticator, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := authn.Authenticate(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				log.Debug().Err(err).
					Str("path", c.Path()).
					Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
					Msg("authentication failed")
				return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated").SetInternal(err)
			}

			c.Set(ContextKeyRole, claims.Role)
			c.Set(ContextKeySubject, claims.Subject)
			return next(c)
		}
	}
}

// RoleFrom returns the role stored by Auth, or nil when Auth did not run.
func RoleFrom(c echo.Context) *domain.Role {
	role, ok := c.Get(ContextKeyRole).(domain.Role)
	if !ok || role == "" {
		return nil
	}
	return &role
}

// SubjectFrom returns the subject stored by Auth.
func SubjectFrom(c echo.Context) string {
	s, _ := c.Get(ContextKeySubject).(string)
	return s
}
