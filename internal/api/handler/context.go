package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/crmhub/crm-system/internal/api/middleware"
	"github.com/crmhub/crm-system/internal/core/domain"
)

// callerRole returns the role injected by the Auth middleware. Its absence
// means the route was registered without Auth, so the request is rejected
// before any service call.
func callerRole(c echo.Context) (domain.Role, error) {
	role := middleware.RoleFrom(c)
	if role == nil {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return *role, nil
}

// bindAndValidate decodes the request body into req and runs the validator.
// Both failures are reported as invalid input.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload").SetInternal(err)
	}
	return c.Validate(req)
}
