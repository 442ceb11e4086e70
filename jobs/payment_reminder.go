package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/sekolah-sis/sekolah-sis/internal/jobs"
)

// ReminderEnqueuer queues follow-up tasks produced by the scan.
type ReminderEnqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload SendEmailPayload) (*asynq.TaskInfo, error)
}

// PaymentReminderJob scans overdue invoices and queues a reminder email
// per responsible account. It runs nightly via the scheduler.
type PaymentReminderJob struct {
	Pool     *pgxpool.Pool
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	Enqueuer ReminderEnqueuer
	clock    func() time.Time
}

// NewPaymentReminderJob initialises the reminder scan handler.
func NewPaymentReminderJob(pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics, enqueuer ReminderEnqueuer) *PaymentReminderJob {
	return &PaymentReminderJob{
		Pool:     pool,
		Logger:   logger,
		Metrics:  metrics,
		Enqueuer: enqueuer,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

type overdueInvoice struct {
	InvoiceNo   string
	StudentName string
	Email       string
	Amount      int64
	DueDate     time.Time
}

// Handle executes the reminder scan.
func (j *PaymentReminderJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("payment reminder: handler not configured")
	}

	tracker := j.metrics().Track(TaskTypePaymentReminder)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	logger.Info("starting overdue scan")

	invoices, err := j.scan(ctx, j.now())
	if err != nil {
		resultErr = err
		logger.Error("scan failed", slog.Any("error", err))
		return resultErr
	}

	queued := 0
	for _, inv := range invoices {
		if inv.Email == "" {
			continue
		}
		payload := SendEmailPayload{
			To:      inv.Email,
			Subject: "Pengingat pembayaran " + inv.InvoiceNo,
			Body: fmt.Sprintf("Tagihan %s untuk %s sebesar Rp%d telah jatuh tempo pada %s.",
				inv.InvoiceNo, inv.StudentName, inv.Amount, inv.DueDate.Format("2006-01-02")),
		}
		if j.Enqueuer != nil {
			if _, err := j.Enqueuer.EnqueueSendEmail(ctx, payload); err != nil {
				logger.Warn("enqueue reminder", slog.String("invoice", inv.InvoiceNo), slog.Any("error", err))
				continue
			}
		}
		queued++
	}
	j.metrics().AddReminders(queued)

	logger.Info("completed overdue scan",
		slog.Int("overdue", len(invoices)),
		slog.Int("queued", queued),
	)
	return resultErr
}

func (j *PaymentReminderJob) scan(ctx context.Context, now time.Time) ([]overdueInvoice, error) {
	if j.Pool == nil {
		return nil, errors.New("payment reminder: pool not configured")
	}
	rows, err := j.Pool.Query(ctx,
		`SELECT p.invoice_no, s.full_name, COALESCE(u.email, ''), p.amount, p.due_date
		 FROM payments p
		 JOIN students s ON s.id = p.student_id
		 LEFT JOIN users u ON u.id = s.user_id
		 WHERE p.status <> 'paid' AND p.due_date < $1
		 ORDER BY p.due_date`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := make([]overdueInvoice, 0)
	for rows.Next() {
		var inv overdueInvoice
		if err := rows.Scan(&inv.InvoiceNo, &inv.StudentName, &inv.Email, &inv.Amount, &inv.DueDate); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (j *PaymentReminderJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTypePaymentReminder))
	}
	return slog.Default().With(slog.String("job", TaskTypePaymentReminder))
}

func (j *PaymentReminderJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *PaymentReminderJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
