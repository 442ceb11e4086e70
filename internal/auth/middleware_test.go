package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sekolah-sis/sekolah-sis/internal/authz"
)

func TestAuthenticateRejectsAnonymousBeforeHandler(t *testing.T) {
	svc, repo, cleanup := newTestService(t)
	defer cleanup()
	mw := Middleware{Service: svc}

	handlerCalled := false
	protected := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	}))

	cases := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic Zm9vOmJhcg=="},
		{"empty bearer", "Bearer "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := repo.calls
			req := httptest.NewRequest(http.MethodGet, "/api/v1/students", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			protected.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if handlerCalled {
				t.Fatal("handler must not run for anonymous request")
			}
			// The credential never reaches the resolver, so no user
			// lookup is issued either.
			if repo.calls != before {
				t.Fatal("expected no repo calls for anonymous request")
			}
		})
	}
}

func TestAuthenticateThreadsPrincipal(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()
	mw := Middleware{Service: svc}

	_, token, err := svc.Authenticate(context.Background(), "guru@sekolah.id", "rahasia-kuat")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	var got authz.Principal
	protected := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := authz.PrincipalFromContext(r.Context())
		if !ok {
			t.Fatal("expected principal in context")
		}
		got = p
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/students", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.ID != 10 || got.Role != authz.RoleTeacher {
		t.Fatalf("unexpected principal %+v", got)
	}
}
