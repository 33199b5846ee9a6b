package users

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/white-jotter/white-jotter/internal/rbac"
	"github.com/white-jotter/white-jotter/internal/shared"
)

// Repository provides PostgreSQL backed persistence for user management.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListUsers returns all users with their assigned roles.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, username, enabled FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Username, &user.Enabled); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range users {
		roles, err := r.rolesForUser(ctx, users[i].ID)
		if err != nil {
			return nil, err
		}
		users[i].Roles = roles
	}
	return users, nil
}

// UpdateUserStatus toggles the enabled flag.
func (r *Repository) UpdateUserStatus(ctx context.Context, id int64, enabled bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET enabled = $2, updated_at = now() WHERE id = $1`, id, enabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdatePassword replaces the stored credential hash.
func (r *Repository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateUsername renames an account.
func (r *Repository) UpdateUsername(ctx context.Context, id int64, username string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET username = $2, updated_at = now() WHERE id = $1`, id, username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *Repository) rolesForUser(ctx context.Context, userID int64) ([]rbac.Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.name, r.name_zh, r.enabled
		 FROM roles r
		 JOIN user_role ur ON ur.role_id = r.id
		 WHERE ur.user_id = $1
		 ORDER BY r.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []rbac.Role
	for rows.Next() {
		var role rbac.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.NameZh, &role.Enabled); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if roles == nil {
		roles = []rbac.Role{}
	}
	return roles, nil
}
