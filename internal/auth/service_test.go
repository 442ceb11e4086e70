package auth

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/sekolah-sis/sekolah-sis/internal/authz"
	"github.com/sekolah-sis/sekolah-sis/internal/shared"
)

type stubUserRepo struct {
	byEmail map[string]*User
	byID    map[int64]*User
	calls   int
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	s.calls++
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (s *stubUserRepo) FindByID(ctx context.Context, id int64) (*User, error) {
	s.calls++
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func newTestService(t *testing.T) (*Service, *stubUserRepo, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	hash, err := bcrypt.GenerateFromPassword([]byte("rahasia-kuat"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	teacher := &User{ID: 10, Email: "guru@sekolah.id", PasswordHash: string(hash), Role: authz.RoleTeacher, IsActive: true}
	repo := &stubUserRepo{
		byEmail: map[string]*User{teacher.Email: teacher},
		byID:    map[int64]*User{teacher.ID: teacher},
	}
	svc := NewService(repo, NewTokenManager("test-secret", time.Hour), NewDenylist(client))
	return svc, repo, func() {
		_ = client.Close()
		mr.Close()
	}
}

func TestAuthenticateAndResolve(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	user, token, err := svc.Authenticate(ctx, "guru@sekolah.id", "rahasia-kuat")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.ID != 10 {
		t.Fatalf("expected user 10, got %d", user.ID)
	}

	principal, err := svc.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if principal.ID != 10 || principal.Role != authz.RoleTeacher {
		t.Fatalf("unexpected principal %+v", principal)
	}
}

func TestAuthenticateWrongPassword(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()

	if _, _, err := svc.Authenticate(context.Background(), "guru@sekolah.id", "salah-semua"); err != shared.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, _, err := svc.Authenticate(context.Background(), "tidak@ada.id", "rahasia-kuat"); err != shared.ErrInvalidCredentials {
		t.Fatalf("expected invalid credentials for unknown email, got %v", err)
	}
}

func TestResolveUsesPersistedRoleNotClaims(t *testing.T) {
	svc, repo, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	_, token, err := svc.Authenticate(ctx, "guru@sekolah.id", "rahasia-kuat")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	// Demote the user after the token was issued. The stale token must
	// carry the new role, not the one baked into its claims.
	repo.byID[10].Role = authz.RoleStudent

	principal, err := svc.Resolve(ctx, token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if principal.Role != authz.RoleStudent {
		t.Fatalf("expected demoted role STUDENT, got %s", principal.Role)
	}
}

func TestResolveRejectsRevokedToken(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	_, token, err := svc.Authenticate(ctx, "guru@sekolah.id", "rahasia-kuat")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Resolve(ctx, token); err != ErrInvalidToken {
		t.Fatalf("expected invalid token after logout, got %v", err)
	}
}

func TestResolveRejectsDeactivatedUser(t *testing.T) {
	svc, repo, cleanup := newTestService(t)
	defer cleanup()
	ctx := context.Background()

	_, token, err := svc.Authenticate(ctx, "guru@sekolah.id", "rahasia-kuat")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	repo.byID[10].IsActive = false
	if _, err := svc.Resolve(ctx, token); err != ErrInvalidToken {
		t.Fatalf("expected invalid token for inactive user, got %v", err)
	}
}

func TestResolveGarbageToken(t *testing.T) {
	svc, repo, cleanup := newTestService(t)
	defer cleanup()

	before := repo.calls
	if _, err := svc.Resolve(context.Background(), "not-a-jwt"); err != ErrInvalidToken {
		t.Fatalf("expected invalid token, got %v", err)
	}
	// Verification fails before any user lookup is issued.
	if repo.calls != before {
		t.Fatalf("expected no repo calls for garbage token")
	}
}
