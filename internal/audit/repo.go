package audit

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository menyediakan akses baca/tulis tabel audit_logs.
type Repository interface {
	Writer
	List(ctx context.Context, filters Filters) ([]Entry, int, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL audit repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Insert persists one audit entry.
func (r *PGRepository) Insert(ctx context.Context, entry Entry) error {
	var userID pgtype.Int8
	if entry.UserID != nil {
		userID = pgtype.Int8{Int64: *entry.UserID, Valid: true}
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs (user_id, method, path, status_code, ip, user_agent, request_body, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		userID, entry.Method, entry.Path, entry.StatusCode, entry.IP, entry.UserAgent,
		entry.RequestBody, entry.CreatedAt)
	return err
}

// List uses dynamic query (not sqlc) due to filter complexity.
func (r *PGRepository) List(ctx context.Context, filters Filters) ([]Entry, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Method != "" {
		argCount++
		where += ` AND method = $` + strconv.Itoa(argCount)
		args = append(args, filters.Method)
	}
	if filters.Path != "" {
		argCount++
		where += ` AND path ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Path+"%")
	}
	if filters.UserID != nil {
		argCount++
		where += ` AND user_id = $` + strconv.Itoa(argCount)
		args = append(args, *filters.UserID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM audit_logs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, user_id, method, path, status_code, ip, user_agent, request_body, created_at
	 FROM audit_logs` + where + ` ORDER BY created_at DESC, id DESC`

	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, filters.PageSize)
	argCount++
	query += ` OFFSET $` + strconv.Itoa(argCount)
	args = append(args, (filters.Page-1)*filters.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var entry Entry
		var userID pgtype.Int8
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&entry.ID, &userID, &entry.Method, &entry.Path, &entry.StatusCode,
			&entry.IP, &entry.UserAgent, &entry.RequestBody, &createdAt); err != nil {
			return nil, 0, err
		}
		if userID.Valid {
			id := userID.Int64
			entry.UserID = &id
		}
		if createdAt.Valid {
			entry.CreatedAt = createdAt.Time
		}
		entries = append(entries, entry)
	}
	return entries, total, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
