package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/crmhub/crm-system/internal/api/middleware"
	"github.com/crmhub/crm-system/internal/core/domain"
	"github.com/crmhub/crm-system/internal/core/ports"
)

// newContext builds an echo context with the validator installed and, when
// role is non-empty, the role the Auth middleware would have set.
func newContext(t *testing.T, method, target string, body io.Reader, role domain.Role) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if role != "" {
		c.Set(middleware.ContextKeyRole, role)
	}
	return c, rec
}

type stubAuthService struct {
	loginFn    func(ctx context.Context, username, password string) (*domain.LoginResult, error)
	validateFn func(ctx context.Context, raw string) (domain.Role, error)
	registerFn func(ctx context.Context, caller domain.Role, in ports.RegisterUserInput) (*domain.User, error)
	listFn     func(ctx context.Context, caller domain.Role) ([]*domain.User, error)
	getFn      func(ctx context.Context, caller domain.Role, id string) (*domain.User, error)
	updateFn   func(ctx context.Context, caller domain.Role, id string, in ports.UpdateUserInput) (*domain.User, error)
	deleteFn   func(ctx context.Context, caller domain.Role, id string) error
}

func (s *stubAuthService) Authenticate(context.Context, string) (*domain.Claims, error) {
	return nil, domain.ErrUnauthenticated
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*domain.LoginResult, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) Validate(ctx context.Context, raw string) (domain.Role, error) {
	return s.validateFn(ctx, raw)
}

func (s *stubAuthService) RegisterUser(ctx context.Context, caller domain.Role, in ports.RegisterUserInput) (*domain.User, error) {
	return s.registerFn(ctx, caller, in)
}

func (s *stubAuthService) GetAllUsers(ctx context.Context, caller domain.Role) ([]*domain.User, error) {
	return s.listFn(ctx, caller)
}

func (s *stubAuthService) GetUserByID(ctx context.Context, caller domain.Role, id string) (*domain.User, error) {
	return s.getFn(ctx, caller, id)
}

func (s *stubAuthService) UpdateUser(ctx context.Context, caller domain.Role, id string, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, caller, id, in)
}

func (s *stubAuthService) DeleteUser(ctx context.Context, caller domain.Role, id string) error {
	return s.deleteFn(ctx, caller, id)
}

type stubCustomerService struct {
	createFn func(ctx context.Context, in ports.CustomerInput) (*domain.Customer, error)
	listFn   func(ctx context.Context) ([]*domain.Customer, error)
	getFn    func(ctx context.Context, id string) (*domain.Customer, error)
	updateFn func(ctx context.Context, id string, in ports.CustomerInput) (*domain.Customer, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubCustomerService) CreateCustomer(ctx context.Context, in ports.CustomerInput) (*domain.Customer, error) {
	return s.createFn(ctx, in)
}

func (s *stubCustomerService) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	return s.listFn(ctx)
}

func (s *stubCustomerService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	return s.getFn(ctx, id)
}

func (s *stubCustomerService) UpdateCustomer(ctx context.Context, id string, in ports.CustomerInput) (*domain.Customer, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubCustomerService) DeleteCustomer(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

type stubInteractionService struct {
	createFn func(ctx context.Context, in ports.InteractionInput) (*domain.Interaction, error)
	getFn    func(ctx context.Context, id string) (*domain.Interaction, error)
	updateFn func(ctx context.Context, id string, in ports.InteractionInput) (*domain.Interaction, error)
	deleteFn func(ctx context.Context, id string) error
	listFn   func(ctx context.Context, customerID string) ([]*domain.Interaction, error)
	countsFn func(ctx context.Context) (*ports.InteractionCounts, error)
}

func (s *stubInteractionService) CreateInteraction(ctx context.Context, in ports.InteractionInput) (*domain.Interaction, error) {
	return s.createFn(ctx, in)
}

func (s *stubInteractionService) GetInteraction(ctx context.Context, id string) (*domain.Interaction, error) {
	return s.getFn(ctx, id)
}

func (s *stubInteractionService) UpdateInteraction(ctx context.Context, id string, in ports.InteractionInput) (*domain.Interaction, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubInteractionService) DeleteInteraction(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func (s *stubInteractionService) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Interaction, error) {
	return s.listFn(ctx, customerID)
}

func (s *stubInteractionService) Counts(ctx context.Context) (*ports.InteractionCounts, error) {
	return s.countsFn(ctx)
}
