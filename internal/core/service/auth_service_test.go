package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/crmhub/crm-system/internal/core/domain"
	"github.com/crmhub/crm-system/internal/core/ports"
	"github.com/crmhub/crm-system/internal/core/security"
)

type stubUserRepo struct {
	mu     sync.Mutex
	users  map[string]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *stubUserRepo) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.users {
		if u.Username == user.Username && id != user.ID {
			return nil, domain.ErrUserExists
		}
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		r.nextID++
		copy.ID = fmt.Sprintf("u%d", r.nextID)
	}
	r.users[copy.ID] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindAll(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubUserRepo) Delete(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, user.ID)
	return nil
}

func (r *stubUserRepo) CountByRole(_ context.Context, role domain.Role) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type recordingSink struct {
	events []domain.LoginEvent
}

func (s *recordingSink) Record(ev domain.LoginEvent) { s.events = append(s.events, ev) }

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type authFixture struct {
	svc   *AuthService
	repo  *stubUserRepo
	audit *recordingSink
	now   time.Time
}

func newAuthFixture(t *testing.T, anonymous bool) *authFixture {
	t.Helper()
	f := &authFixture{repo: newStubUserRepo(), audit: &recordingSink{}, now: testNow}
	f.svc = NewAuthService(
		f.repo,
		security.NewBcryptHasher(bcrypt.MinCost),
		security.NewTokenCodec("test-secret"),
		AuthOptions{
			TokenTTL:            time.Hour,
			AllowAnonymousAdmin: anonymous,
			Audit:               f.audit,
			Clock:               func() time.Time { return f.now },
		},
		zerolog.Nop(),
	)
	if err := f.svc.SeedDefaultUsers(context.Background()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	return f
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture(t, false)

	res, err := f.svc.Login(context.Background(), "admin", "admin123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Token == "" || res.UserID == "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Role != domain.RoleAdmin || res.Username != "admin" {
		t.Fatalf("unexpected identity: %+v", res)
	}

	role, err := f.svc.Validate(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if role != domain.RoleAdmin {
		t.Fatalf("expected ADMIN, got %s", role)
	}

	if len(f.audit.events) != 1 {
		t.Fatalf("expected 1 audit event, got %d", len(f.audit.events))
	}
	ev := f.audit.events[0]
	if ev.Outcome != domain.LoginOutcomeSuccess || ev.State != domain.LoginAuthenticated || ev.Role != domain.RoleAdmin {
		t.Fatalf("unexpected audit event: %+v", ev)
	}
}

func TestAuthService_Login_UniformFailure(t *testing.T) {
	f := newAuthFixture(t, false)

	_, errUnknown := f.svc.Login(context.Background(), "ghost", "admin123")
	_, errBadPass := f.svc.Login(context.Background(), "admin", "wrong")

	if errUnknown != domain.ErrInvalidCredentials || errBadPass != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", errUnknown, errBadPass)
	}
	if errUnknown.Error() != errBadPass.Error() {
		t.Fatalf("failure messages differ: %q vs %q", errUnknown, errBadPass)
	}

	if len(f.audit.events) != 2 {
		t.Fatalf("expected 2 audit events, got %d", len(f.audit.events))
	}
	if f.audit.events[0].Outcome != domain.LoginOutcomeUnknownUser {
		t.Fatalf("unexpected outcome: %s", f.audit.events[0].Outcome)
	}
	if f.audit.events[1].Outcome != domain.LoginOutcomeBadPassword {
		t.Fatalf("unexpected outcome: %s", f.audit.events[1].Outcome)
	}
	for _, ev := range f.audit.events {
		if ev.State != domain.LoginRejected || ev.Role != "" {
			t.Fatalf("rejected event carries state %s role %q", ev.State, ev.Role)
		}
	}
}

func TestAuthService_Validate_UntilExpiry(t *testing.T) {
	f := newAuthFixture(t, false)

	res, err := f.svc.Login(context.Background(), "sales", "sales123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	f.now = testNow.Add(time.Hour - time.Second)
	if role, err := f.svc.Validate(context.Background(), res.Token); err != nil || role != domain.RoleSalesRep {
		t.Fatalf("expected SALES_REP before expiry, got %s / %v", role, err)
	}

	f.now = testNow.Add(time.Hour)
	_, err = f.svc.Validate(context.Background(), res.Token)
	if !errors.Is(err, domain.ErrUnauthenticated) || !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("expected unauthenticated/expired, got %v", err)
	}
}

func TestAuthService_Validate_BearerScheme(t *testing.T) {
	f := newAuthFixture(t, false)

	res, err := f.svc.Login(context.Background(), "analyst", "analyst123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	for _, raw := range []string{
		res.Token,
		"Bearer " + res.Token,
		"bearer " + res.Token,
		"  BEARER   " + res.Token + " ",
	} {
		role, err := f.svc.Validate(context.Background(), raw)
		if err != nil {
			t.Fatalf("validate(%q) failed: %v", raw, err)
		}
		if role != domain.RoleAnalyst {
			t.Fatalf("validate(%q) = %s", raw, role)
		}
	}
}

func TestAuthService_Validate_ForeignSecret(t *testing.T) {
	f := newAuthFixture(t, false)

	foreign, err := security.NewTokenCodec("other-secret").Issue("admin", domain.RoleAdmin, testNow, time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	_, err = f.svc.Validate(context.Background(), "Bearer "+foreign)
	if !errors.Is(err, domain.ErrUnauthenticated) || !errors.Is(err, domain.ErrTokenBadSignature) {
		t.Fatalf("expected unauthenticated/bad signature, got %v", err)
	}
}

func TestAuthService_Validate_Garbage(t *testing.T) {
	f := newAuthFixture(t, false)

	_, err := f.svc.Validate(context.Background(), "Bearer not-a-token")
	if !errors.Is(err, domain.ErrUnauthenticated) || !errors.Is(err, domain.ErrTokenMalformed) {
		t.Fatalf("expected unauthenticated/malformed, got %v", err)
	}
}

func TestAuthService_Authenticate_EmptyToken(t *testing.T) {
	cases := []struct {
		name      string
		anonymous bool
		raw       string
	}{
		{"empty", false, ""},
		{"blank", false, "   "},
		{"empty anonymous", true, ""},
		{"blank anonymous", true, " \t"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAuthFixture(t, tc.anonymous)
			claims, err := f.svc.Authenticate(context.Background(), tc.raw)
			if tc.anonymous {
				if err != nil {
					t.Fatalf("expected anonymous admin, got %v", err)
				}
				if claims.Role != domain.RoleAdmin || claims.Subject != AnonymousSubject {
					t.Fatalf("unexpected claims: %+v", claims)
				}
				return
			}
			if !errors.Is(err, domain.ErrUnauthenticated) || !errors.Is(err, domain.ErrMissingToken) {
				t.Fatalf("expected unauthenticated/missing token, got %v", err)
			}
		})
	}
}

func TestAuthService_Authenticate_SchemeWithoutToken(t *testing.T) {
	for _, anonymous := range []bool{false, true} {
		for _, raw := range []string{"Bearer", "Bearer ", "bearer   "} {
			f := newAuthFixture(t, anonymous)
			claims, err := f.svc.Authenticate(context.Background(), raw)
			if claims != nil {
				t.Fatalf("anonymous=%v %q: expected no claims, got %+v", anonymous, raw, claims)
			}
			if !errors.Is(err, domain.ErrUnauthenticated) || !errors.Is(err, domain.ErrTokenMalformed) {
				t.Fatalf("anonymous=%v %q: expected unauthenticated/malformed, got %v", anonymous, raw, err)
			}
		}
	}
}

func TestAuthService_Authenticate_AnonymousDoesNotBypassBadTokens(t *testing.T) {
	f := newAuthFixture(t, true)

	if _, err := f.svc.Authenticate(context.Background(), "Bearer junk"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestAuthService_AdminOps_RequireAdmin(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()

	for _, caller := range []domain.Role{domain.RoleSalesRep, domain.RoleAnalyst, domain.RoleUser, ""} {
		if _, err := f.svc.RegisterUser(ctx, caller, ports.RegisterUserInput{Username: "x", Password: "p", Role: domain.RoleUser}); err != domain.ErrForbidden {
			t.Fatalf("RegisterUser(%q): expected ErrForbidden, got %v", caller, err)
		}
		if _, err := f.svc.GetAllUsers(ctx, caller); err != domain.ErrForbidden {
			t.Fatalf("GetAllUsers(%q): expected ErrForbidden, got %v", caller, err)
		}
		if _, err := f.svc.GetUserByID(ctx, caller, "u1"); err != domain.ErrForbidden {
			t.Fatalf("GetUserByID(%q): expected ErrForbidden, got %v", caller, err)
		}
		if _, err := f.svc.UpdateUser(ctx, caller, "u1", ports.UpdateUserInput{Username: "x", Role: domain.RoleUser}); err != domain.ErrForbidden {
			t.Fatalf("UpdateUser(%q): expected ErrForbidden, got %v", caller, err)
		}
		if err := f.svc.DeleteUser(ctx, caller, "u1"); err != domain.ErrForbidden {
			t.Fatalf("DeleteUser(%q): expected ErrForbidden, got %v", caller, err)
		}
	}
}

func TestAuthService_RegisterUser(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()

	user, err := f.svc.RegisterUser(ctx, domain.RoleAdmin, ports.RegisterUserInput{
		Username: "carol", Password: "s3cret", Role: domain.RoleUser,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.ID == "" || user.Role != domain.RoleUser {
		t.Fatalf("unexpected user: %+v", user)
	}
	if user.PasswordHash == "s3cret" || !strings.HasPrefix(user.PasswordHash, "$2") {
		t.Fatalf("password not hashed: %q", user.PasswordHash)
	}

	res, err := f.svc.Login(ctx, "carol", "s3cret")
	if err != nil || res.Role != domain.RoleUser {
		t.Fatalf("new user cannot log in: %+v / %v", res, err)
	}

	if _, err := f.svc.RegisterUser(ctx, domain.RoleAdmin, ports.RegisterUserInput{
		Username: "carol", Password: "other", Role: domain.RoleUser,
	}); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_RegisterUser_Validation(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()

	if _, err := f.svc.RegisterUser(ctx, domain.RoleAdmin, ports.RegisterUserInput{Password: "p", Role: domain.RoleUser}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty username, got %v", err)
	}
	if _, err := f.svc.RegisterUser(ctx, domain.RoleAdmin, ports.RegisterUserInput{Username: "dave", Role: domain.RoleUser}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty password, got %v", err)
	}
	if _, err := f.svc.RegisterUser(ctx, domain.RoleAdmin, ports.RegisterUserInput{Username: "dave", Password: "p", Role: "ROOT"}); !errors.Is(err, domain.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestAuthService_GetUsers(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()

	users, err := f.svc.GetAllUsers(ctx, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 seeded users, got %d", len(users))
	}

	got, err := f.svc.GetUserByID(ctx, domain.RoleAdmin, users[0].ID)
	if err != nil || got.Username != users[0].Username {
		t.Fatalf("get by id: %+v / %v", got, err)
	}

	if _, err := f.svc.GetUserByID(ctx, domain.RoleAdmin, "missing"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_UpdateUser(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()

	sales, _ := f.repo.FindByUsername(ctx, "sales")
	oldHash := sales.PasswordHash

	updated, err := f.svc.UpdateUser(ctx, domain.RoleAdmin, sales.ID, ports.UpdateUserInput{
		Username: "sales-lead", Role: domain.RoleAnalyst,
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Username != "sales-lead" || updated.Role != domain.RoleAnalyst {
		t.Fatalf("unexpected user: %+v", updated)
	}
	if updated.PasswordHash != oldHash {
		t.Fatalf("password changed without being provided")
	}

	if _, err := f.svc.UpdateUser(ctx, domain.RoleAdmin, sales.ID, ports.UpdateUserInput{
		Username: "sales-lead", Password: "newpass", Role: domain.RoleAnalyst,
	}); err != nil {
		t.Fatalf("password update failed: %v", err)
	}
	if _, err := f.svc.Login(ctx, "sales-lead", "newpass"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}

	if _, err := f.svc.UpdateUser(ctx, domain.RoleAdmin, sales.ID, ports.UpdateUserInput{
		Username: "analyst", Role: domain.RoleAnalyst,
	}); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists on rename collision, got %v", err)
	}

	if _, err := f.svc.UpdateUser(ctx, domain.RoleAdmin, "missing", ports.UpdateUserInput{
		Username: "x", Role: domain.RoleUser,
	}); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_UpdateUser_LastAdminDemotion(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()

	admin, _ := f.repo.FindByUsername(ctx, "admin")
	if _, err := f.svc.UpdateUser(ctx, domain.RoleAdmin, admin.ID, ports.UpdateUserInput{
		Username: "admin", Role: domain.RoleUser,
	}); err != domain.ErrLastAdmin {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}

	if _, err := f.svc.UpdateUser(ctx, domain.RoleAdmin, admin.ID, ports.UpdateUserInput{
		Username: "root", Role: domain.RoleAdmin,
	}); err != nil {
		t.Fatalf("renaming the last admin should succeed: %v", err)
	}
}

func TestAuthService_DeleteUser_LastAdmin(t *testing.T) {
	f := newAuthFixture(t, false)
	ctx := context.Background()

	admin, _ := f.repo.FindByUsername(ctx, "admin")
	if err := f.svc.DeleteUser(ctx, domain.RoleAdmin, admin.ID); err != domain.ErrLastAdmin {
		t.Fatalf("expected ErrLastAdmin, got %v", err)
	}

	second, err := f.svc.RegisterUser(ctx, domain.RoleAdmin, ports.RegisterUserInput{
		Username: "admin2", Password: "pw", Role: domain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if err := f.svc.DeleteUser(ctx, domain.RoleAdmin, admin.ID); err != nil {
		t.Fatalf("deleting a non-last admin failed: %v", err)
	}
	if err := f.svc.DeleteUser(ctx, domain.RoleAdmin, second.ID); err != domain.ErrLastAdmin {
		t.Fatalf("expected ErrLastAdmin for the remaining admin, got %v", err)
	}

	sales, _ := f.repo.FindByUsername(ctx, "sales")
	if err := f.svc.DeleteUser(ctx, domain.RoleAdmin, sales.ID); err != nil {
		t.Fatalf("deleting a non-admin failed: %v", err)
	}
	if err := f.svc.DeleteUser(ctx, domain.RoleAdmin, sales.ID); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_SeedDefaultUsers_Idempotent(t *testing.T) {
	f := newAuthFixture(t, false)

	if err := f.svc.SeedDefaultUsers(context.Background()); err != nil {
		t.Fatalf("second seed failed: %v", err)
	}
	if len(f.repo.users) != 3 {
		t.Fatalf("expected 3 users after reseeding, got %d", len(f.repo.users))
	}

	want := map[string]domain.Role{
		"admin":   domain.RoleAdmin,
		"sales":   domain.RoleSalesRep,
		"analyst": domain.RoleAnalyst,
	}
	for name, role := range want {
		u, err := f.repo.FindByUsername(context.Background(), name)
		if err != nil || u.Role != role {
			t.Fatalf("seeded %s: %+v / %v", name, u, err)
		}
	}
}
