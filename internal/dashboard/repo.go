package dashboard

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository implements Repository against PostgreSQL. Every scoped query
// takes the student id set as an array parameter; nil means unscoped.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL dashboard repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func (r *PGRepository) countScoped(ctx context.Context, base, scopedCol string, ids []int64, extra string, args ...interface{}) (int64, error) {
	query := base
	if ids != nil {
		args = append(args, ids)
		query += scopedClause(scopedCol, len(args))
	}
	if extra != "" {
		query += extra
	}
	var n int64
	err := r.pool.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func scopedClause(col string, argPos int) string {
	return " AND " + col + " = ANY($" + strconv.Itoa(argPos) + ")"
}

// CountStudents counts students, optionally restricted to the given ids.
func (r *PGRepository) CountStudents(ctx context.Context, ids []int64) (int64, error) {
	return r.countScoped(ctx, `SELECT COUNT(*) FROM students WHERE 1=1`, "id", ids, "")
}

// CountTeachers counts all teachers.
func (r *PGRepository) CountTeachers(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM teachers`).Scan(&n)
	return n, err
}

// CountClasses counts all classes.
func (r *PGRepository) CountClasses(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM classes`).Scan(&n)
	return n, err
}

// CountPayments counts payments in scope.
func (r *PGRepository) CountPayments(ctx context.Context, ids []int64) (int64, error) {
	return r.countScoped(ctx, `SELECT COUNT(*) FROM payments WHERE 1=1`, "student_id", ids, "")
}

// CountAttendance counts attendance rows inside [from, to).
func (r *PGRepository) CountAttendance(ctx context.Context, from, to time.Time, ids []int64) (int64, error) {
	return r.countScoped(ctx,
		`SELECT COUNT(*) FROM attendance WHERE attended_at >= $1 AND attended_at < $2`,
		"student_id", ids, "", from, to)
}

// CountAttendancePresent counts present rows inside [from, to).
func (r *PGRepository) CountAttendancePresent(ctx context.Context, from, to time.Time, ids []int64) (int64, error) {
	return r.countScoped(ctx,
		`SELECT COUNT(*) FROM attendance WHERE attended_at >= $1 AND attended_at < $2 AND status = 'present'`,
		"student_id", ids, "", from, to)
}

// CountAttendanceAbsent counts non-present rows inside [from, to).
func (r *PGRepository) CountAttendanceAbsent(ctx context.Context, from, to time.Time, ids []int64) (int64, error) {
	return r.countScoped(ctx,
		`SELECT COUNT(*) FROM attendance WHERE attended_at >= $1 AND attended_at < $2 AND status <> 'present'`,
		"student_id", ids, "", from, to)
}

// CountOverduePayments counts unpaid payments due before the cutoff.
func (r *PGRepository) CountOverduePayments(ctx context.Context, before time.Time, ids []int64) (int64, error) {
	return r.countScoped(ctx,
		`SELECT COUNT(*) FROM payments WHERE status <> 'paid' AND due_date < $1`,
		"student_id", ids, "", before)
}

// AverageGrade returns the mean score of in-scope grades, 0 when none.
func (r *PGRepository) AverageGrade(ctx context.Context, ids []int64) (float64, error) {
	query := `SELECT COALESCE(AVG(score), 0) FROM grades WHERE 1=1`
	args := []interface{}{}
	if ids != nil {
		args = append(args, ids)
		query += scopedClause("student_id", len(args))
	}
	var avg float64
	err := r.pool.QueryRow(ctx, query, args...).Scan(&avg)
	return avg, err
}

// CountLowGrades counts in-scope grades below the threshold.
func (r *PGRepository) CountLowGrades(ctx context.Context, threshold float64, ids []int64) (int64, error) {
	return r.countScoped(ctx,
		`SELECT COUNT(*) FROM grades WHERE score < $1`,
		"student_id", ids, "", threshold)
}

var _ Repository = (*PGRepository)(nil)
