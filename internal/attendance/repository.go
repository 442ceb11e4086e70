package attendance

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sekolah-sis/sekolah-sis/internal/shared"
)

// Repository defines persistence operations for attendance records.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Record, int, error)
	Get(ctx context.Context, id int64) (Record, error)
	Create(ctx context.Context, record Record) (Record, error)
	Update(ctx context.Context, id int64, record Record) error
	StudentExists(ctx context.Context, studentID int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL attendance repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const attendanceColumns = `id, student_id, class_id, status, attended_at, notes, created_at, updated_at`

// List uses dynamic query due to filter complexity.
func (r *repository) List(ctx context.Context, filter ListFilter) ([]Record, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filter.StudentID > 0 {
		argCount++
		where += ` AND student_id = $` + strconv.Itoa(argCount)
		args = append(args, filter.StudentID)
	}
	if filter.ClassID > 0 {
		argCount++
		where += ` AND class_id = $` + strconv.Itoa(argCount)
		args = append(args, filter.ClassID)
	}
	if filter.Status != "" {
		argCount++
		where += ` AND status = $` + strconv.Itoa(argCount)
		args = append(args, filter.Status)
	}
	if !filter.From.IsZero() {
		argCount++
		where += ` AND attended_at >= $` + strconv.Itoa(argCount)
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		argCount++
		where += ` AND attended_at < $` + strconv.Itoa(argCount)
		args = append(args, filter.To)
	}
	if filter.IDs != nil {
		argCount++
		where += ` AND student_id = ANY($` + strconv.Itoa(argCount) + `)`
		args = append(args, filter.IDs)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM attendance`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + attendanceColumns + ` FROM attendance` + where + ` ORDER BY attended_at DESC`
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

	list := make([]Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, record)
	}
	return list, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Record, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+attendanceColumns+` FROM attendance WHERE id = $1`, id)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, shared.ErrNotFound
		}
		return Record{}, err
	}
	return record, nil
}

func (r *repository) Create(ctx context.Context, record Record) (Record, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO attendance (student_id, class_id, status, attended_at, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 RETURNING id`,
		record.StudentID, record.ClassID, record.Status, record.AttendedAt, record.Notes, now,
	).Scan(&record.ID)
	if err != nil {
		return Record{}, err
	}
	record.CreatedAt = now
	record.UpdatedAt = now
	return record, nil
}

func (r *repository) Update(ctx context.Context, id int64, record Record) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE attendance SET status = $1, notes = $2, updated_at = $3 WHERE id = $4`,
		record.Status, record.Notes, time.Now().UTC(), id)
	if err != nil {
		return err
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

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.StudentID, &rec.ClassID, &rec.Status, &rec.AttendedAt,
		&rec.Notes, &rec.CreatedAt, &rec.UpdatedAt)
	return rec, err
}
