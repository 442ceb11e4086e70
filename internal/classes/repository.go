package classes

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

// Repository defines persistence operations for classes and schedules.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Class, int, error)
	Get(ctx context.Context, id int64) (Class, error)
	Create(ctx context.Context, class Class) (Class, error)
	Update(ctx context.Context, id int64, class Class) error
	Delete(ctx context.Context, id int64) error

	ListSchedules(ctx context.Context, classID int64) ([]Schedule, error)
	CreateSchedule(ctx context.Context, schedule Schedule) (Schedule, error)
	DeleteSchedule(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL class repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const classColumns = `id, name, grade_level, academic_year, homeroom_teacher_id, created_at, updated_at`

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Class, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filter.Search != "" {
		argCount++
		where += ` AND name ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.AcademicYear != "" {
		argCount++
		where += ` AND academic_year = $` + strconv.Itoa(argCount)
		args = append(args, filter.AcademicYear)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM classes`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + classColumns + ` FROM classes` + where + ` ORDER BY grade_level, name`
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

	list := make([]Class, 0)
	for rows.Next() {
		class, err := scanClass(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, class)
	}
	return list, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Class, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+classColumns+` FROM classes WHERE id = $1`, id)
	class, err := scanClass(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Class{}, shared.ErrNotFound
		}
		return Class{}, err
	}
	return class, nil
}

func (r *repository) Create(ctx context.Context, class Class) (Class, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO classes (name, grade_level, academic_year, homeroom_teacher_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 RETURNING id`,
		class.Name, class.GradeLevel, class.AcademicYear, class.HomeroomID, now,
	).Scan(&class.ID)
	if err != nil {
		return Class{}, mapPgError(err, "name")
	}
	class.CreatedAt = now
	class.UpdatedAt = now
	return class, nil
}

func (r *repository) Update(ctx context.Context, id int64, class Class) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE classes SET name = $1, grade_level = $2, academic_year = $3, homeroom_teacher_id = $4, updated_at = $5
		 WHERE id = $6`,
		class.Name, class.GradeLevel, class.AcademicYear, class.HomeroomID, time.Now().UTC(), id)
	if err != nil {
		return mapPgError(err, "name")
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) ListSchedules(ctx context.Context, classID int64) ([]Schedule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, class_id, subject_id, teacher_id, day_of_week, start_time, end_time, created_at
		 FROM schedules WHERE class_id = $1
		 ORDER BY day_of_week, start_time`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]Schedule, 0)
	for rows.Next() {
		var s Schedule
		if err := rows.Scan(&s.ID, &s.ClassID, &s.SubjectID, &s.TeacherID,
			&s.DayOfWeek, &s.StartTime, &s.EndTime, &s.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *repository) CreateSchedule(ctx context.Context, schedule Schedule) (Schedule, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO schedules (class_id, subject_id, teacher_id, day_of_week, start_time, end_time, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		schedule.ClassID, schedule.SubjectID, schedule.TeacherID,
		schedule.DayOfWeek, schedule.StartTime, schedule.EndTime, now,
	).Scan(&schedule.ID)
	if err != nil {
		return Schedule{}, mapPgError(err, "schedule")
	}
	schedule.CreatedAt = now
	return schedule, nil
}

func (r *repository) DeleteSchedule(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanClass(row pgx.Row) (Class, error) {
	var c Class
	err := row.Scan(&c.ID, &c.Name, &c.GradeLevel, &c.AcademicYear, &c.HomeroomID, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func mapPgError(err error, field string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return httpx.Conflict(field)
	}
	return err
}
