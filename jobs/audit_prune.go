package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/sekolah-sis/sekolah-sis/internal/jobs"
)

// DefaultAuditRetention bounds how long audit rows are kept when no
// retention is configured.
const DefaultAuditRetention = 180 * 24 * time.Hour

// AuditPruneJob deletes audit rows older than the retention window.
type AuditPruneJob struct {
	Pool      *pgxpool.Pool
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
	Retention time.Duration
	clock     func() time.Time
}

// NewAuditPruneJob initialises the retention handler.
func NewAuditPruneJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics, retention time.Duration) *AuditPruneJob {
	if retention <= 0 {
		retention = DefaultAuditRetention
	}
	return &AuditPruneJob{
		Pool:      pool,
		Logger:    logger,
		Metrics:   metrics,
		Retention: retention,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the prune.
func (j *AuditPruneJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("audit prune: handler not configured")
	}
	if j.Pool == nil {
		return errors.New("audit prune: pool not configured")
	}

	tracker := j.metrics().Track(TaskTypeAuditPrune)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	cutoff := j.now().Add(-j.Retention)
	tag, err := j.Pool.Exec(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		resultErr = err
		j.logger().Error("prune failed", slog.Any("error", err))
		return resultErr
	}

	j.logger().Info("completed audit prune",
		slog.Int64("removed", tag.RowsAffected()),
		slog.Time("cutoff", cutoff),
	)
	return resultErr
}

func (j *AuditPruneJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypeAuditPrune))
	}
	return slog.Default().With(slog.String("job", TaskTypeAuditPrune))
}

func (j *AuditPruneJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *AuditPruneJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
