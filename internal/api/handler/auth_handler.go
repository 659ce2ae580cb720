package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/crmhub/crm-system/internal/core/domain"
	"github.com/crmhub/crm-system/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login authenticates a user and returns a signed token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  domain.LoginResult
// @Failure      400   {object}  errorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

// Validate checks the token in the Authorization header.
//
// @Summary      Validate a token
// @Tags         auth
// @Produce      plain
// @Param        Authorization  header    string  true  "Token, optionally prefixed with Bearer"
// @Success      200            {string}  string  "Valid"
// @Failure      400            {string}  string  "Invalid token"
// @Router       /api/auth/validate [post]
func (h *AuthHandler) Validate(c echo.Context) error {
	if _, err := h.authService.Validate(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization)); err != nil {
		return c.String(http.StatusBadRequest, "Invalid token")
	}
	return c.String(http.StatusOK, "Valid")
}

// RegisterUser creates a user on behalf of an administrator.
//
// @Summary      Register a user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      registerUserRequest  true  "New user"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/auth/register-user [post]
func (h *AuthHandler) RegisterUser(c echo.Context) error {
	user, err := registerUser(c, h.authService)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// ListUsers returns every user.
//
// @Summary      List users
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /api/auth/users [get]
func (h *AuthHandler) ListUsers(c echo.Context) error {
	role, err := callerRole(c)
	if err != nil {
		return err
	}
	users, err := h.authService.GetAllUsers(c.Request().Context(), role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}

// registerUser is shared by the auth and user management endpoints.
func registerUser(c echo.Context, svc ports.AuthService) (*domain.User, error) {
	role, err := callerRole(c)
	if err != nil {
		return nil, err
	}

	var req registerUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return nil, err
	}
	newRole, err := domain.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	return svc.RegisterUser(c.Request().Context(), role, ports.RegisterUserInput{
		Username: req.Username,
		Password: req.Password,
		Role:     newRole,
	})
}
