package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/crmhub/crm-system/internal/core/domain"
	"github.com/crmhub/crm-system/internal/core/policy"
	"github.com/crmhub/crm-system/internal/pkg/metrics"
)

// Require admits the request only when the caller's role may use resource.
// It must run after Auth.
func Require(resource policy.Resource) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			decision := policy.Evaluate(resource, RoleFrom(c))
			if !decision.Allowed {
				metrics.AccessDecisionsTotal.WithLabelValues(string(resource), "deny").Inc()
				return echo.NewHTTPError(http.StatusForbidden, "access forbidden").
					SetInternal(fmt.Errorf("%w: %s", domain.ErrForbidden, decision.Reason))
			}
			metrics.AccessDecisionsTotal.WithLabelValues(string(resource), "allow").Inc()
			return next(c)
		}
	}
}
