package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/white-jotter/white-jotter/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	CreateUser(ctx context.Context, username, passwordHash string, enabled bool) (*User, error)
	CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByUsername fetches a user by username.
func (r *PGRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, enabled, created_at, updated_at FROM users WHERE username = $1`,
		username)
	var user User
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Enabled, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new account. A username collision surfaces as
// shared.ErrDuplicate.
func (r *PGRepository) CreateUser(ctx context.Context, username, passwordHash string, enabled bool) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, enabled, created_at, updated_at)
		 VALUES ($1, $2, $3, now(), now())
		 RETURNING id, username, password_hash, enabled, created_at, updated_at`,
		username, passwordHash, enabled)
	var user User
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.Enabled, &user.CreatedAt, &user.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, shared.ErrDuplicate
		}
		return nil, err
	}
	return &user, nil
}

// CreateSession persists a login session record for auditing.
func (r *PGRepository) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (id, user_id, created_at, expires_at, ip, ua)
		 VALUES ($1, $2, now(), $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET user_id = $2, expires_at = $3`,
		id, userID, expiresAt.UTC(), ip, ua)
	return err
}

// DeleteSession removes a session record.
func (r *PGRepository) DeleteSession(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteExpiredSessions purges session records that expired before the cutoff.
func (r *PGRepository) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, before.UTC())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

var _ Repository = (*PGRepository)(nil)
