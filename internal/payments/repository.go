package payments

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sekolah-sis/sekolah-sis/internal/platform/httpx"
	"github.com/sekolah-sis/sekolah-sis/internal/shared"
)

// Repository defines persistence operations for payments.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Payment, int, error)
	Get(ctx context.Context, id int64) (Payment, error)
	Create(ctx context.Context, payment Payment) (Payment, error)
	Update(ctx context.Context, id int64, payment Payment) error
	StudentExists(ctx context.Context, studentID int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL payment repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const paymentColumns = `id, student_id, invoice_no, description, amount, status, due_date, paid_at, created_at, updated_at`

// List uses dynamic query due to filter complexity.
func (r *repository) List(ctx context.Context, filter ListFilter) ([]Payment, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filter.StudentID > 0 {
		argCount++
		where += ` AND student_id = $` + strconv.Itoa(argCount)
		args = append(args, filter.StudentID)
	}
	if filter.Status != "" {
		argCount++
		where += ` AND status = $` + strconv.Itoa(argCount)
		args = append(args, filter.Status)
	}
	if filter.Overdue {
		argCount++
		where += ` AND status <> 'paid' AND due_date < $` + strconv.Itoa(argCount)
		args = append(args, time.Now().UTC())
	}
	if filter.IDs != nil {
		argCount++
		where += ` AND student_id = ANY($` + strconv.Itoa(argCount) + `)`
		args = append(args, filter.IDs)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM payments`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + paymentColumns + ` FROM payments` + where + ` ORDER BY due_date DESC`
	if filter.PageSize > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filter.PageSize)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filter.Page - 1) * filter.PageSize
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list := make([]Payment, 0)
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, payment)
	}
	return list, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Payment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	payment, err := scanPayment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payment{}, shared.ErrNotFound
		}
		return Payment{}, err
	}
	return payment, nil
}

func (r *repository) Create(ctx context.Context, payment Payment) (Payment, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO payments (student_id, invoice_no, description, amount, status, due_date, paid_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		 RETURNING id`,
		payment.StudentID, payment.InvoiceNo, payment.Description, payment.Amount,
		payment.Status, payment.DueDate, payment.PaidAt, now,
	).Scan(&payment.ID)
	if err != nil {
		return Payment{}, mapPgError(err)
	}
	payment.CreatedAt = now
	payment.UpdatedAt = now
	return payment, nil
}

func (r *repository) Update(ctx context.Context, id int64, payment Payment) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payments SET description = $1, amount = $2, status = $3, due_date = $4, paid_at = $5, updated_at = $6
		 WHERE id = $7`,
		payment.Description, payment.Amount, payment.Status, payment.DueDate,
		payment.PaidAt, time.Now().UTC(), id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) StudentExists(ctx context.Context, studentID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM students WHERE id = $1)`, studentID).Scan(&exists)
	return exists, err
}

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.StudentID, &p.InvoiceNo, &p.Description, &p.Amount,
		&p.Status, &p.DueDate, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return httpx.Conflict("invoiceNo")
	}
	return err
}
