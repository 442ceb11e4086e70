package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/sekolah-sis/sekolah-sis/internal/authz"
	"github.com/sekolah-sis/sekolah-sis/internal/platform/httpx"
)

// Middleware resolves the bearer credential into a principal before any
// handler logic runs. Requests without a verifiable credential are rejected
// here, so downstream code never fetches a resource for an anonymous caller.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// Authenticate extracts and verifies the Authorization header.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		principal, err := m.Service.Resolve(r.Context(), raw)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Debug("credential rejected", slog.String("path", r.URL.Path))
			}
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		ctx := authz.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
