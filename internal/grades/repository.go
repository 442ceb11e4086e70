package grades

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sekolah-sis/sekolah-sis/internal/shared"
)

// Repository defines persistence operations for grades.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Grade, int, error)
	Get(ctx context.Context, id int64) (Grade, error)
	Create(ctx context.Context, grade Grade) (Grade, error)
	Update(ctx context.Context, id int64, grade Grade) error
	Delete(ctx context.Context, id int64) error
	// StudentExists reports whether a student row exists. Creation checks
	// it before any ownership lookup so a bad id is a plain not-found.
	StudentExists(ctx context.Context, studentID int64) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL grade repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const gradeColumns = `id, student_id, subject_id, teacher_id, semester, academic_year, kind, score, notes, created_at, updated_at`

// List uses dynamic query due to filter complexity.
func (r *repository) List(ctx context.Context, filter ListFilter) ([]Grade, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filter.StudentID > 0 {
		argCount++
		where += ` AND student_id = $` + strconv.Itoa(argCount)
		args = append(args, filter.StudentID)
	}
	if filter.SubjectID > 0 {
		argCount++
		where += ` AND subject_id = $` + strconv.Itoa(argCount)
		args = append(args, filter.SubjectID)
	}
	if filter.Semester > 0 {
		argCount++
		where += ` AND semester = $` + strconv.Itoa(argCount)
		args = append(args, filter.Semester)
	}
	if filter.IDs != nil {
		argCount++
		where += ` AND student_id = ANY($` + strconv.Itoa(argCount) + `)`
		args = append(args, filter.IDs)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM grades`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + gradeColumns + ` FROM grades` + where + ` ORDER BY created_at DESC`
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

	list := make([]Grade, 0)
	for rows.Next() {
		grade, err := scanGrade(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, grade)
	}
	return list, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Grade, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+gradeColumns+` FROM grades WHERE id = $1`, id)
	grade, err := scanGrade(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Grade{}, shared.ErrNotFound
		}
		return Grade{}, err
	}
	return grade, nil
}

func (r *repository) Create(ctx context.Context, grade Grade) (Grade, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO grades (student_id, subject_id, teacher_id, semester, academic_year, kind, score, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		 RETURNING id`,
		grade.StudentID, grade.SubjectID, grade.TeacherID, grade.Semester,
		grade.AcademicYear, grade.Kind, grade.Score, grade.Notes, now,
	).Scan(&grade.ID)
	if err != nil {
		return Grade{}, err
	}
	grade.CreatedAt = now
	grade.UpdatedAt = now
	return grade, nil
}

func (r *repository) Update(ctx context.Context, id int64, grade Grade) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE grades SET semester = $1, academic_year = $2, kind = $3, score = $4, notes = $5, updated_at = $6
		 WHERE id = $7`,
		grade.Semester, grade.AcademicYear, grade.Kind, grade.Score, grade.Notes, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM grades WHERE id = $1`, id)
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

func scanGrade(row pgx.Row) (Grade, error) {
	var g Grade
	err := row.Scan(&g.ID, &g.StudentID, &g.SubjectID, &g.TeacherID, &g.Semester,
		&g.AcademicYear, &g.Kind, &g.Score, &g.Notes, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}
