package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/crmhub/crm-system/internal/core/domain"
	"github.com/crmhub/crm-system/internal/core/ports"
)

// InteractionHandler handles HTTP requests for customer interactions.
type InteractionHandler struct {
	service ports.InteractionService
}

func NewInteractionHandler(service ports.InteractionService) *InteractionHandler {
	return &InteractionHandler{service: service}
}

func (r interactionRequest) toInput() (ports.InteractionInput, error) {
	in := ports.InteractionInput{
		CustomerID:      r.CustomerID,
		InteractionType: domain.InteractionType(r.InteractionType),
		Description:     r.Description,
		Status:          domain.InteractionStatus(r.Status),
	}
	if r.InteractionDate != "" {
		at, err := time.Parse(time.RFC3339, r.InteractionDate)
		if err != nil {
			return in, fmt.Errorf("%w: interactionDate: %v", domain.ErrInvalidInput, err)
		}
		in.InteractionDate = at
	}
	return in, nil
}

func (h *InteractionHandler) bindInteraction(c echo.Context) (ports.InteractionInput, error) {
	var req interactionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return ports.InteractionInput{}, err
	}
	return req.toInput()
}

// Create handles POST /api/interactions.
//
// @Summary      Log an interaction
// @Tags         interactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      interactionRequest  true  "Interaction"
// @Success      201   {object}  domain.Interaction
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/interactions [post]
func (h *InteractionHandler) Create(c echo.Context) error {
	in, err := h.bindInteraction(c)
	if err != nil {
		return err
	}
	interaction, err := h.service.CreateInteraction(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, interaction)
}

// Get handles GET /api/interactions/:id.
//
// @Summary      Get an interaction
// @Tags         interactions
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Interaction ID"
// @Success      200  {object}  domain.Interaction
// @Failure      404  {object}  errorResponse
// @Router       /api/interactions/{id} [get]
func (h *InteractionHandler) Get(c echo.Context) error {
	interaction, err := h.service.GetInteraction(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, interaction)
}

// Update handles PUT /api/interactions/:id.
//
// @Summary      Update an interaction
// @Tags         interactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Interaction ID"
// @Param        body  body      interactionRequest  true  "Interaction"
// @Success      200   {object}  domain.Interaction
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/interactions/{id} [put]
func (h *InteractionHandler) Update(c echo.Context) error {
	in, err := h.bindInteraction(c)
	if err != nil {
		return err
	}
	interaction, err := h.service.UpdateInteraction(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, interaction)
}

// Delete handles DELETE /api/interactions/:id.
//
// @Summary      Delete an interaction
// @Tags         interactions
// @Security     BearerAuth
// @Param        id   path  string  true  "Interaction ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/interactions/{id} [delete]
func (h *InteractionHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteInteraction(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Count handles GET /api/interactions/count.
//
// @Summary      Interaction counts
// @Tags         interactions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.InteractionCounts
// @Router       /api/interactions/count [get]
func (h *InteractionHandler) Count(c echo.Context) error {
	counts, err := h.service.Counts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, counts)
}
