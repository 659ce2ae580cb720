package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/crmhub/crm-system/internal/core/domain"
	"github.com/crmhub/crm-system/internal/core/ports"
)

// CustomerHandler handles HTTP requests for customer records.
type CustomerHandler struct {
	customers    ports.CustomerService
	interactions ports.InteractionService
}

func NewCustomerHandler(customers ports.CustomerService, interactions ports.InteractionService) *CustomerHandler {
	return &CustomerHandler{customers: customers, interactions: interactions}
}

func (r customerRequest) toInput() (ports.CustomerInput, error) {
	in := ports.CustomerInput{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		PhoneNumber:  r.PhoneNumber,
		CustomerType: domain.CustomerType(r.CustomerType),
	}
	if r.RegistrationDate != "" {
		d, err := time.Parse(dateLayout, r.RegistrationDate)
		if err != nil {
			return in, fmt.Errorf("%w: registrationDate: %v", domain.ErrInvalidInput, err)
		}
		in.RegistrationDate = d
	}
	return in, nil
}

func (h *CustomerHandler) bindCustomer(c echo.Context) (ports.CustomerInput, error) {
	var req customerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return ports.CustomerInput{}, err
	}
	return req.toInput()
}

// Create handles POST /api/customers.
//
// @Summary      Create a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      customerRequest  true  "Customer"
// @Success      201   {object}  domain.Customer
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/customers [post]
func (h *CustomerHandler) Create(c echo.Context) error {
	in, err := h.bindCustomer(c)
	if err != nil {
		return err
	}
	customer, err := h.customers.CreateCustomer(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, customer)
}

// List handles GET /api/customers.
//
// @Summary      List customers
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Customer
// @Failure      403  {object}  errorResponse
// @Router       /api/customers [get]
func (h *CustomerHandler) List(c echo.Context) error {
	customers, err := h.customers.ListCustomers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customers)
}

// Get handles GET /api/customers/:id.
//
// @Summary      Get a customer
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  domain.Customer
// @Failure      404  {object}  errorResponse
// @Router       /api/customers/{id} [get]
func (h *CustomerHandler) Get(c echo.Context) error {
	customer, err := h.customers.GetCustomer(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customer)
}

// Update handles PUT /api/customers/:id.
//
// @Summary      Update a customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "Customer ID"
// @Param        body  body      customerRequest  true  "Customer"
// @Success      200   {object}  domain.Customer
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/customers/{id} [put]
func (h *CustomerHandler) Update(c echo.Context) error {
	in, err := h.bindCustomer(c)
	if err != nil {
		return err
	}
	customer, err := h.customers.UpdateCustomer(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, customer)
}

// Delete handles DELETE /api/customers/:id. The customer's interactions go with it.
//
// @Summary      Delete a customer
// @Tags         customers
// @Security     BearerAuth
// @Param        id   path  string  true  "Customer ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /api/customers/{id} [delete]
func (h *CustomerHandler) Delete(c echo.Context) error {
	if err := h.customers.DeleteCustomer(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Interactions handles GET /api/customers/:id/interactions.
//
// @Summary      List a customer's interactions
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {array}   domain.Interaction
// @Failure      403  {object}  errorResponse
// @Router       /api/customers/{id}/interactions [get]
func (h *CustomerHandler) Interactions(c echo.Context) error {
	list, err := h.interactions.ListByCustomer(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}
