package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sekolah-sis/sekolah-sis/internal/attendance"
	"github.com/sekolah-sis/sekolah-sis/internal/audit"
	"github.com/sekolah-sis/sekolah-sis/internal/auth"
	"github.com/sekolah-sis/sekolah-sis/internal/authz"
	"github.com/sekolah-sis/sekolah-sis/internal/classes"
	"github.com/sekolah-sis/sekolah-sis/internal/dashboard"
	"github.com/sekolah-sis/sekolah-sis/internal/grades"
	"github.com/sekolah-sis/sekolah-sis/internal/observability"
	"github.com/sekolah-sis/sekolah-sis/internal/payments"
	"github.com/sekolah-sis/sekolah-sis/internal/students"
	"github.com/sekolah-sis/sekolah-sis/internal/subjects"
	"github.com/sekolah-sis/sekolah-sis/internal/users"
	"github.com/sekolah-sis/sekolah-sis/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	AuthHandler       *auth.Handler
	AuthMiddleware    auth.Middleware
	RoleGate          authz.Middleware
	AuditRecorder     *audit.Recorder
	AuditHandler      *audit.Handler
	DashboardHandler  *dashboard.Handler
	StudentHandler    *students.Handler
	ClassHandler      *classes.Handler
	SubjectHandler    *subjects.Handler
	GradeHandler      *grades.Handler
	AttendanceHandler *attendance.Handler
	PaymentHandler    *payments.Handler
	UserHandler       *users.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	admin := params.RoleGate.Require(authz.RoleAdmin)
	staff := params.RoleGate.Require(authz.RoleAdmin, authz.RoleTeacher)

	r.Route("/api/v1", func(r chi.Router) {
		// Audit capture wraps the whole API surface, including login, so
		// it sits outside the identity resolver. The capture slot fills in
		// the principal once authentication has run.
		r.Use(audit.Middleware(params.AuditRecorder))

		r.Route("/auth", func(r chi.Router) {
			params.AuthHandler.MountPublicRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(params.AuthMiddleware.Authenticate)
				params.AuthHandler.MountProtectedRoutes(r)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(params.AuthMiddleware.Authenticate)

			r.Route("/dashboard", params.DashboardHandler.MountRoutes)
			r.Route("/students", func(r chi.Router) {
				params.StudentHandler.MountRoutes(r, admin)
			})
			r.Route("/classes", func(r chi.Router) {
				params.ClassHandler.MountRoutes(r, admin)
			})
			r.Route("/subjects", func(r chi.Router) {
				params.SubjectHandler.MountRoutes(r, admin)
			})
			r.Route("/grades", func(r chi.Router) {
				params.GradeHandler.MountRoutes(r, staff)
			})
			r.Route("/attendance", func(r chi.Router) {
				params.AttendanceHandler.MountRoutes(r, staff)
			})
			r.Route("/payments", func(r chi.Router) {
				params.PaymentHandler.MountRoutes(r, admin)
			})
			r.Route("/users", func(r chi.Router) {
				r.Use(admin)
				params.UserHandler.MountRoutes(r)
			})
			r.Route("/audit-logs", func(r chi.Router) {
				r.Use(admin)
				params.AuditHandler.MountRoutes(r)
			})
			if params.JobHandler != nil {
				r.Route("/jobs", func(r chi.Router) {
					r.Use(admin)
					params.JobHandler.MountRoutes(r)
				})
			}
		})
	})

	return r
}
