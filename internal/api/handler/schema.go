package handler

import (
	"time"

	"github.com/crmhub/crm-system/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

const dateLayout = "2006-01-02"

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"     validate:"required,oneof=ADMIN SALES_REP ANALYST USER"`
}

type updateUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"omitempty,min=6"`
	Role     string `json:"role"     validate:"required,oneof=ADMIN SALES_REP ANALYST USER"`
}

type userResponse struct {
	ID        string      `json:"id"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserResponses(users []*domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

// --- Customers ---

type customerRequest struct {
	FirstName        string `json:"firstName"        validate:"required,max=100"`
	LastName         string `json:"lastName"         validate:"required,max=100"`
	Email            string `json:"email"            validate:"required,email"`
	PhoneNumber      string `json:"phoneNumber"      validate:"omitempty,max=32"`
	CustomerType     string `json:"customerType"     validate:"omitempty,oneof=REGULAR PREMIUM VIP"`
	RegistrationDate string `json:"registrationDate" validate:"omitempty,datetime=2006-01-02"`
}

// --- Interactions ---

type interactionRequest struct {
	CustomerID      string `json:"customerId"`
	InteractionType string `json:"interactionType" validate:"required,oneof=PURCHASE INQUIRY SUPPORT COMPLAINT"`
	Description     string `json:"description"     validate:"omitempty,max=1000"`
	Status          string `json:"status"          validate:"omitempty,oneof=OPEN CLOSED PENDING"`
	// InteractionDate is RFC 3339.
	InteractionDate string `json:"interactionDate" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}
