package students

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

// Repository defines persistence operations for students.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Student, int, error)
	Get(ctx context.Context, id int64) (Student, error)
	Create(ctx context.Context, student Student) (Student, error)
	Update(ctx context.Context, id int64, student Student) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL student repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const studentColumns = `id, user_id, class_id, nis, full_name, gender, birth_date, address, phone, active, created_at, updated_at`

// List uses dynamic query due to filter complexity.
func (r *repository) List(ctx context.Context, filter ListFilter) ([]Student, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filter.Search != "" {
		argCount++
		where += ` AND (full_name ILIKE $` + strconv.Itoa(argCount) + ` OR nis ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.ClassID > 0 {
		argCount++
		where += ` AND class_id = $` + strconv.Itoa(argCount)
		args = append(args, filter.ClassID)
	}
	if filter.IDs != nil {
		argCount++
		where += ` AND id = ANY($` + strconv.Itoa(argCount) + `)`
		args = append(args, filter.IDs)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM students`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + studentColumns + ` FROM students` + where + ` ORDER BY full_name ASC`
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

	list := make([]Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, student)
	}
	return list, total, rows.Err()
}

// Get fetches one student row.
func (r *repository) Get(ctx context.Context, id int64) (Student, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
	student, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Student{}, shared.ErrNotFound
		}
		return Student{}, err
	}
	return student, nil
}

// Create inserts a student row.
func (r *repository) Create(ctx context.Context, student Student) (Student, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO students (user_id, class_id, nis, full_name, gender, birth_date, address, phone, active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		 RETURNING id`,
		student.UserID, student.ClassID, student.NIS, student.FullName, student.Gender,
		student.BirthDate, student.Address, student.Phone, student.Active, now,
	).Scan(&student.ID)
	if err != nil {
		return Student{}, mapPgError(err)
	}
	student.CreatedAt = now
	student.UpdatedAt = now
	return student, nil
}

// Update rewrites the mutable columns of a student row.
func (r *repository) Update(ctx context.Context, id int64, student Student) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE students SET class_id = $1, nis = $2, full_name = $3, gender = $4, birth_date = $5,
		 address = $6, phone = $7, active = $8, updated_at = $9 WHERE id = $10`,
		student.ClassID, student.NIS, student.FullName, student.Gender, student.BirthDate,
		student.Address, student.Phone, student.Active, time.Now().UTC(), id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a student row.
func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanStudent(row pgx.Row) (Student, error) {
	var s Student
	err := row.Scan(&s.ID, &s.UserID, &s.ClassID, &s.NIS, &s.FullName, &s.Gender,
		&s.BirthDate, &s.Address, &s.Phone, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return httpx.Conflict("nis")
	}
	return err
}
