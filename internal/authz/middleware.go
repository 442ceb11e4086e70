package authz

import (
	"log/slog"
	"net/http"

	"github.com/sekolah-sis/sekolah-sis/internal/platform/httpx"
)

// Middleware wires the role gate into HTTP routes.
type Middleware struct {
	Logger *slog.Logger
}

// Require rejects requests whose principal role is outside the allowed set.
// An empty set admits any authenticated principal. Scope checks still run
// later in the handler chain; passing the gate is not ownership.
func (m Middleware) Require(roles ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if !Allowed(p, roles...) {
				if m.Logger != nil {
					m.Logger.Warn("role gate denied",
						slog.Int64("user_id", p.ID),
						slog.String("role", string(p.Role)),
						slog.String("path", r.URL.Path))
				}
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
