package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/crmhub/crm-system/internal/core/ports"
)

// AnalyticsHandler serves the read-only dashboard aggregates.
type AnalyticsHandler struct {
	service ports.AnalyticsService
}

func NewAnalyticsHandler(service ports.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// CustomerStats godoc
//
// @Summary      Customer statistics
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.CustomerStats
// @Failure      403  {object}  errorResponse
// @Router       /api/analytics/customer-stats [get]
func (h *AnalyticsHandler) CustomerStats(c echo.Context) error {
	stats, err := h.service.CustomerStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// InteractionStats godoc
//
// @Summary      Interaction statistics
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.InteractionStats
// @Failure      403  {object}  errorResponse
// @Router       /api/analytics/interaction-stats [get]
func (h *AnalyticsHandler) InteractionStats(c echo.Context) error {
	stats, err := h.service.InteractionStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

// MonthlyInteractions godoc
//
// @Summary      Interactions per month
// @Description  Twelve entries, January to December, zero-filled.
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   ports.MonthlyCount
// @Failure      403  {object}  errorResponse
// @Router       /api/analytics/monthly-interactions [get]
func (h *AnalyticsHandler) MonthlyInteractions(c echo.Context) error {
	months, err := h.service.MonthlyInteractions(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, months)
}

// InteractionTypes godoc
//
// @Summary      Interaction type distribution
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]int
// @Failure      403  {object}  errorResponse
// @Router       /api/analytics/interaction-types [get]
func (h *AnalyticsHandler) InteractionTypes(c echo.Context) error {
	dist, err := h.service.InteractionTypeDistribution(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dist)
}
