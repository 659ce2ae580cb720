package ports

import (
	"context"
	"time"

	"github.com/crmhub/crm-system/internal/core/domain"
)

// PasswordHasher produces and checks salted, self-describing password digests.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// TokenCodec issues and decodes signed tokens.
type TokenCodec interface {
	Issue(subject string, role domain.Role, now time.Time, ttl time.Duration) (string, error)
	Decode(token string, now time.Time) (*domain.Claims, error)
}

// AuditSink receives login audit events. Implementations must not block the caller
// for longer than it takes to enqueue.
type AuditSink interface {
	Record(event domain.LoginEvent)
}

// RegisterUserInput carries the fields of an admin-initiated registration.
type RegisterUserInput struct {
	Username string
	Password string
	Role     domain.Role
}

// UpdateUserInput carries the replacement fields for an existing user.
// An empty Password leaves the stored hash untouched.
type UpdateUserInput struct {
	Username string
	Password string
	Role     domain.Role
}

// Authenticator turns a raw Authorization header value into verified claims.
type Authenticator interface {
	Authenticate(ctx context.Context, rawToken string) (*domain.Claims, error)
}

// AuthService is the login, token validation and user administration use case.
type AuthService interface {
	Authenticator

	Login(ctx context.Context, username, password string) (*domain.LoginResult, error)
	Validate(ctx context.Context, rawToken string) (domain.Role, error)

	RegisterUser(ctx context.Context, caller domain.Role, in RegisterUserInput) (*domain.User, error)
	GetAllUsers(ctx context.Context, caller domain.Role) ([]*domain.User, error)
	GetUserByID(ctx context.Context, caller domain.Role, id string) (*domain.User, error)
	UpdateUser(ctx context.Context, caller domain.Role, id string, in UpdateUserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, caller domain.Role, id string) error
}
