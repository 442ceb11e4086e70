// Package subjects manages the subject catalog. Subjects are referenced
// by schedules and grades and are maintained by administrators.
package subjects

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sekolah-sis/sekolah-sis/internal/platform/httpx"
	"github.com/sekolah-sis/sekolah-sis/internal/shared"
)

// Subject is one teachable course.
type Subject struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository defines persistence operations for subjects.
type Repository interface {
	List(ctx context.Context) ([]Subject, error)
	Get(ctx context.Context, id int64) (Subject, error)
	Create(ctx context.Context, subject Subject) (Subject, error)
	Update(ctx context.Context, id int64, subject Subject) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL subject repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context) ([]Subject, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, code, name, created_at, updated_at FROM subjects ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]Subject, 0)
	for rows.Next() {
		var s Subject
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Subject, error) {
	var s Subject
	err := r.pool.QueryRow(ctx,
		`SELECT id, code, name, created_at, updated_at FROM subjects WHERE id = $1`, id,
	).Scan(&s.ID, &s.Code, &s.Name, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Subject{}, shared.ErrNotFound
	}
	return s, err
}

func (r *repository) Create(ctx context.Context, subject Subject) (Subject, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO subjects (code, name, created_at, updated_at) VALUES ($1, $2, $3, $3) RETURNING id`,
		subject.Code, subject.Name, now,
	).Scan(&subject.ID)
	if err != nil {
		return Subject{}, mapPgError(err)
	}
	subject.CreatedAt = now
	subject.UpdatedAt = now
	return subject, nil
}

func (r *repository) Update(ctx context.Context, id int64, subject Subject) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE subjects SET code = $1, name = $2, updated_at = $3 WHERE id = $4`,
		subject.Code, subject.Name, time.Now().UTC(), id)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM subjects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return httpx.Conflict("code")
	}
	return err
}
