package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sekolah-sis/sekolah-sis/cmd/sekolah/cli"
	"github.com/sekolah-sis/sekolah-sis/internal/app"
	"github.com/sekolah-sis/sekolah-sis/internal/attendance"
	"github.com/sekolah-sis/sekolah-sis/internal/audit"
	"github.com/sekolah-sis/sekolah-sis/internal/auth"
	"github.com/sekolah-sis/sekolah-sis/internal/authz"
	"github.com/sekolah-sis/sekolah-sis/internal/classes"
	"github.com/sekolah-sis/sekolah-sis/internal/dashboard"
	"github.com/sekolah-sis/sekolah-sis/internal/grades"
	"github.com/sekolah-sis/sekolah-sis/internal/observability"
	"github.com/sekolah-sis/sekolah-sis/internal/payments"
	"github.com/sekolah-sis/sekolah-sis/internal/platform/cache"
	"github.com/sekolah-sis/sekolah-sis/internal/platform/db"
	"github.com/sekolah-sis/sekolah-sis/internal/students"
	"github.com/sekolah-sis/sekolah-sis/internal/subjects"
	"github.com/sekolah-sis/sekolah-sis/internal/users"
	"github.com/sekolah-sis/sekolah-sis/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		if err := runJobsCommand(ctx, cfg, os.Args[2:]); err != nil {
			slog.Default().Error("jobs command", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	denylist := auth.NewDenylist(redisClient)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens, denylist)
	authHandler := auth.NewHandler(logger, authService)
	authMiddleware := auth.Middleware{Service: authService, Logger: logger}

	ownership := authz.NewRepository(pool)
	resolver := authz.NewResolver(ownership)
	roleGate := authz.Middleware{Logger: logger}

	auditRepo := audit.NewRepository(pool)
	auditRecorder := audit.NewRecorder(auditRepo, logger, metrics.AuditDrops())
	auditHandler := audit.NewHandler(logger, audit.NewService(auditRepo))

	dashboardRepo := dashboard.NewRepository(pool)
	dashboardService := dashboard.NewService(dashboardRepo, resolver, cfg.LowGradeThreshold)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	studentHandler := students.NewHandler(logger, students.NewService(students.NewRepository(pool), resolver))
	classHandler := classes.NewHandler(logger, classes.NewService(classes.NewRepository(pool)))
	subjectHandler := subjects.NewHandler(logger, subjects.NewRepository(pool))
	gradeHandler := grades.NewHandler(logger, grades.NewService(grades.NewRepository(pool), resolver, ownership))
	attendanceHandler := attendance.NewHandler(logger, attendance.NewService(attendance.NewRepository(pool), resolver))
	paymentHandler := payments.NewHandler(logger, payments.NewService(payments.NewRepository(pool), resolver))
	userHandler := users.NewHandler(logger, users.NewService(users.NewRepository(pool)))

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthHandler:       authHandler,
		AuthMiddleware:    authMiddleware,
		RoleGate:          roleGate,
		AuditRecorder:     auditRecorder,
		AuditHandler:      auditHandler,
		DashboardHandler:  dashboardHandler,
		StudentHandler:    studentHandler,
		ClassHandler:      classHandler,
		SubjectHandler:    subjectHandler,
		GradeHandler:      gradeHandler,
		AttendanceHandler: attendanceHandler,
		PaymentHandler:    paymentHandler,
		UserHandler:       userHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

// runJobsCommand handles `sekolah jobs trigger|stats|scheduled [...]`
// without starting the HTTP server.
func runJobsCommand(ctx context.Context, cfg *app.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: sekolah jobs trigger <task>|stats|scheduled")
	}

	jobsCLI, err := cli.NewJobsCLI(cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		_ = jobsCLI.Close()
	}()

	switch args[0] {
	case "trigger":
		if len(args) < 2 {
			return fmt.Errorf("usage: sekolah jobs trigger <task>")
		}
		info, err := jobsCLI.Trigger(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("enqueued %s id=%s queue=%s\n", info.Type, info.ID, info.Queue)
	case "stats":
		stats, err := jobsCLI.InspectQueue(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
	case "scheduled":
		tasks, err := jobsCLI.ListScheduled(ctx, 20)
		if err != nil {
			return err
		}
		for _, task := range tasks {
			fmt.Printf("%s id=%s next=%s\n", task.Type, task.ID, task.NextProcessAt.Format(time.RFC3339))
		}
	default:
		return fmt.Errorf("unknown jobs subcommand %q", args[0])
	}
	return nil
}
