package authz

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sekolah-sis/sekolah-sis/internal/shared"
)

// PGRepository implements OwnershipRepo against PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL ownership repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// TeacherIDByUser resolves teachers.id from a user account id.
func (r *PGRepository) TeacherIDByUser(ctx context.Context, userID int64) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM teachers WHERE user_id = $1`, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

// TeacherTeachesClass checks for a schedule entry linking teacher and class.
func (r *PGRepository) TeacherTeachesClass(ctx context.Context, teacherID, classID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM schedules WHERE teacher_id = $1 AND class_id = $2)`,
		teacherID, classID).Scan(&exists)
	return exists, err
}

// StudentClassID resolves the class a student currently belongs to.
func (r *PGRepository) StudentClassID(ctx context.Context, studentID int64) (int64, error) {
	var classID int64
	err := r.pool.QueryRow(ctx, `SELECT class_id FROM students WHERE id = $1`, studentID).Scan(&classID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return classID, nil
}

// StudentUserID resolves the owning user account of a student row.
func (r *PGRepository) StudentUserID(ctx context.Context, studentID int64) (int64, error) {
	var userID int64
	err := r.pool.QueryRow(ctx, `SELECT user_id FROM students WHERE id = $1`, studentID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, shared.ErrNotFound
		}
		return 0, err
	}
	return userID, nil
}

// LinkedStudentIDs lists students linked to a parent user account.
func (r *PGRepository) LinkedStudentIDs(ctx context.Context, parentUserID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT student_id FROM parents_students WHERE parent_user_id = $1 ORDER BY student_id`,
		parentUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

// StudentIDsByUser lists student rows owned by a user account.
func (r *PGRepository) StudentIDsByUser(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM students WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

// TaughtStudentIDs lists students in classes the teacher has schedule entries for.
func (r *PGRepository) TaughtStudentIDs(ctx context.Context, teacherID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT s.id
		 FROM students s
		 JOIN schedules sc ON sc.class_id = s.class_id
		 WHERE sc.teacher_id = $1
		 ORDER BY s.id`,
		teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIDs(rows)
}

func scanIDs(rows pgx.Rows) ([]int64, error) {
	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var _ OwnershipRepo = (*PGRepository)(nil)
