package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/crmhub/crm-system/internal/core/domain"
	"github.com/crmhub/crm-system/internal/core/ports"
	"github.com/crmhub/crm-system/internal/pkg/metrics"
)

// AnonymousSubject is the subject reported for requests admitted by the
// anonymous ADMIN bypass.
const AnonymousSubject = "anonymous"

const defaultTokenTTL = 24 * time.Hour

// AuthOptions tunes the auth service.
type AuthOptions struct {
	// TokenTTL is the lifetime of issued tokens. Defaults to 24h.
	TokenTTL time.Duration
	// AllowAnonymousAdmin treats an absent or empty token as ADMIN. Test mode only.
	AllowAnonymousAdmin bool
	// Audit receives one event per login attempt. Optional.
	Audit ports.AuditSink
	// Clock overrides time.Now, mostly for tests.
	Clock func() time.Time
}

// AuthService implements login, token validation and user administration.
type AuthService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	codec  ports.TokenCodec
	opts   AuthOptions
	log    zerolog.Logger
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	codec ports.TokenCodec,
	opts AuthOptions,
	log zerolog.Logger,
) *AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &AuthService{
		users:  users,
		hasher: hasher,
		codec:  codec,
		opts:   opts,
		log:    log.With().Str("component", "auth_service").Logger(),
	}
}

// loginAttempt tracks a single login through its states.
type loginAttempt struct {
	username string
	state    domain.LoginState
	outcome  domain.LoginOutcome
	role     domain.Role
}

func (a *loginAttempt) submit() { a.state = domain.LoginCredentialsSubmitted }

func (a *loginAttempt) reject(outcome domain.LoginOutcome) {
	a.state = domain.LoginRejected
	a.outcome = outcome
}

func (a *loginAttempt) accept(role domain.Role) {
	a.state = domain.LoginAuthenticated
	a.outcome = domain.LoginOutcomeSuccess
	a.role = role
}

// Login checks the credentials and issues a token. Unknown users and wrong
// passwords both fail with domain.ErrInvalidCredentials; only the log and the
// audit trail tell them apart.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.LoginResult, error) {
	attempt := &loginAttempt{username: username, state: domain.LoginUnauthenticated}
	attempt.submit()

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("auth: find user: %w", err)
		}
		attempt.reject(domain.LoginOutcomeUnknownUser)
		s.finish(attempt)
		return nil, domain.ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		attempt.reject(domain.LoginOutcomeBadPassword)
		s.finish(attempt)
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.codec.Issue(user.Username, user.Role, s.opts.Clock(), s.opts.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth: issue token: %w", err)
	}

	attempt.accept(user.Role)
	s.finish(attempt)

	return &domain.LoginResult{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		Token:    token,
	}, nil
}

func (s *AuthService) finish(a *loginAttempt) {
	metrics.LoginAttemptsTotal.WithLabelValues(string(a.outcome)).Inc()

	ev := s.log.Info()
	if a.state == domain.LoginRejected {
		ev = s.log.Warn()
	}
	ev.Str("username", a.username).
		Str("state", a.state.String()).
		Str("outcome", string(a.outcome)).
		Msg("login attempt")

	if s.opts.Audit != nil {
		s.opts.Audit.Record(domain.LoginEvent{
			Username: a.username,
			Outcome:  a.outcome,
			State:    a.state,
			Role:     a.role,
			At:       s.opts.Clock().UTC(),
		})
	}
}

// Validate returns the role carried by the raw Authorization header value.
func (s *AuthService) Validate(ctx context.Context, rawToken string) (domain.Role, error) {
	claims, err := s.Authenticate(ctx, rawToken)
	if err != nil {
		return "", err
	}
	return claims.Role, nil
}

// Authenticate decodes the raw Authorization header value, with or without a
// Bearer scheme. Every token failure is wrapped with domain.ErrUnauthenticated.
func (s *AuthService) Authenticate(_ context.Context, rawToken string) (*domain.Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		if s.opts.AllowAnonymousAdmin {
			metrics.TokenValidationsTotal.WithLabelValues("anonymous").Inc()
			return &domain.Claims{Subject: AnonymousSubject, Role: domain.RoleAdmin}, nil
		}
		metrics.TokenValidationsTotal.WithLabelValues("missing").Inc()
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, domain.ErrMissingToken)
	}

	// A scheme with nothing after it is a present but malformed credential.
	token := stripScheme(rawToken)
	if token == "" {
		metrics.TokenValidationsTotal.WithLabelValues("malformed").Inc()
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, domain.ErrTokenMalformed)
	}

	claims, err := s.codec.Decode(token, s.opts.Clock())
	if err != nil {
		result := tokenFailure(err)
		metrics.TokenValidationsTotal.WithLabelValues(result).Inc()
		s.log.Debug().Str("reason", result).Msg("token rejected")
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}

	metrics.TokenValidationsTotal.WithLabelValues("valid").Inc()
	return claims, nil
}

func stripScheme(raw string) string {
	raw = strings.TrimSpace(raw)
	const scheme = "bearer"
	if len(raw) > len(scheme) && strings.EqualFold(raw[:len(scheme)], scheme) && raw[len(scheme)] == ' ' {
		raw = raw[len(scheme)+1:]
	} else if strings.EqualFold(raw, scheme) {
		return ""
	}
	return strings.TrimSpace(raw)
}

func tokenFailure(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenBadSignature):
		return "bad_signature"
	case errors.Is(err, domain.ErrTokenMalformed):
		return "malformed"
	default:
		return "invalid"
	}
}

func requireAdmin(caller domain.Role) error {
	if caller != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}

func (s *AuthService) RegisterUser(ctx context.Context, caller domain.Role, in ports.RegisterUserInput) (*domain.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, in.Role)
	}

	exists, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("auth: check username: %w", err)
	}
	if exists {
		return nil, domain.ErrUserExists
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.opts.Clock().UTC()
	saved, err := s.users.Save(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", saved.Username).Str("role", saved.Role.String()).Msg("user registered")
	return saved, nil
}

func (s *AuthService) GetAllUsers(ctx context.Context, caller domain.Role) ([]*domain.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth: list users: %w", err)
	}
	return users, nil
}

func (s *AuthService) GetUserByID(ctx context.Context, caller domain.Role, id string) (*domain.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, id)
}

// UpdateUser replaces username and role, and the password when one is given.
// A rename onto an existing username fails with domain.ErrUserExists and
// demoting the only ADMIN fails with domain.ErrLastAdmin.
func (s *AuthService) UpdateUser(ctx context.Context, caller domain.Role, id string, in ports.UpdateUserInput) (*domain.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRole, in.Role)
	}

	if username != user.Username {
		exists, err := s.users.ExistsByUsername(ctx, username)
		if err != nil {
			return nil, fmt.Errorf("auth: check username: %w", err)
		}
		if exists {
			return nil, domain.ErrUserExists
		}
	}

	if user.Role == domain.RoleAdmin && in.Role != domain.RoleAdmin {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return nil, err
		}
	}

	user.Username = username
	user.Role = in.Role
	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = s.opts.Clock().UTC()

	return s.users.Save(ctx, user)
}

// DeleteUser removes a user. The last ADMIN cannot be deleted.
func (s *AuthService) DeleteUser(ctx context.Context, caller domain.Role, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if user.Role == domain.RoleAdmin {
		if err := s.ensureAnotherAdmin(ctx); err != nil {
			return err
		}
	}

	if err := s.users.Delete(ctx, user); err != nil {
		return fmt.Errorf("auth: delete user: %w", err)
	}
	s.log.Info().Str("user_id", id).Str("username", user.Username).Msg("user deleted")
	return nil
}

func (s *AuthService) ensureAnotherAdmin(ctx context.Context) error {
	admins, err := s.users.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("auth: count admins: %w", err)
	}
	if admins <= 1 {
		return domain.ErrLastAdmin
	}
	return nil
}

type defaultUser struct {
	username string
	password string
	role     domain.Role
}

var defaultUsers = []defaultUser{
	{"admin", "admin123", domain.RoleAdmin},
	{"sales", "sales123", domain.RoleSalesRep},
	{"analyst", "analyst123", domain.RoleAnalyst},
}

// SeedDefaultUsers creates the bootstrap accounts that do not exist yet.
// Running it again is a no-op.
func (s *AuthService) SeedDefaultUsers(ctx context.Context) error {
	for _, d := range defaultUsers {
		exists, err := s.users.ExistsByUsername(ctx, d.username)
		if err != nil {
			return fmt.Errorf("seed %s: %w", d.username, err)
		}
		if exists {
			continue
		}

		hash, err := s.hasher.Hash(d.password)
		if err != nil {
			return fmt.Errorf("seed %s: %w", d.username, err)
		}
		now := s.opts.Clock().UTC()
		if _, err := s.users.Save(ctx, &domain.User{
			Username:     d.username,
			PasswordHash: hash,
			Role:         d.role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}); err != nil && !errors.Is(err, domain.ErrUserExists) {
			return fmt.Errorf("seed %s: %w", d.username, err)
		}
		s.log.Info().Str("username", d.username).Str("role", d.role.String()).Msg("default user created")
	}
	return nil
}
