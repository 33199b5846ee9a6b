package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/white-jotter/white-jotter/internal/platform/db"
	"github.com/white-jotter/white-jotter/internal/shared"
)

// Repository is the RBAC graph: roles, permissions, menus and the three
// join relations. Join writes happen only through the Replace*/SetUserRoles
// methods, each a single transaction, so readers never observe a torn set.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RolesOf returns the IDs of roles assigned to a user.
func (r *Repository) RolesOf(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT role_id FROM user_role WHERE user_id = $1 ORDER BY role_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// PermissionsOf returns the permissions attached to a role.
func (r *Repository) PermissionsOf(ctx context.Context, roleID int64) ([]Permission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.id, p.name, p.desc_zh
		 FROM permissions p
		 JOIN role_permission rp ON rp.permission_id = p.id
		 WHERE rp.role_id = $1
		 ORDER BY p.id`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPermissions(rows)
}

// MenusOf returns the menu entries attached to a role.
func (r *Repository) MenusOf(ctx context.Context, roleID int64) ([]Menu, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT m.id, m.parent_id, m.name, m.name_zh, m.icon, m.path, m.component
		 FROM menus m
		 JOIN role_menu rm ON rm.menu_id = m.id
		 WHERE rm.role_id = $1
		 ORDER BY m.id`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMenus(rows)
}

// AllPermissions returns every permission in display order.
func (r *Repository) AllPermissions(ctx context.Context) ([]Permission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, desc_zh FROM permissions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPermissions(rows)
}

// AllMenus returns every menu entry in display order.
func (r *Repository) AllMenus(ctx context.Context) ([]Menu, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, parent_id, name, name_zh, icon, path, component FROM menus ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMenus(rows)
}

// ListRoles returns all roles without their associations.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, name_zh, enabled FROM roles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.NameZh, &role.Enabled); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// ListRolesHydrated returns all roles with their current permission and
// menu associations attached. Consumers render the full role-edit form
// from one response, so the joins are materialized here.
func (r *Repository) ListRolesHydrated(ctx context.Context) ([]Role, error) {
	roles, err := r.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	for i := range roles {
		perms, err := r.PermissionsOf(ctx, roles[i].ID)
		if err != nil {
			return nil, err
		}
		menus, err := r.MenusOf(ctx, roles[i].ID)
		if err != nil {
			return nil, err
		}
		roles[i].Perms = perms
		roles[i].Menus = menus
	}
	return roles, nil
}

// GetRole fetches a role by ID.
func (r *Repository) GetRole(ctx context.Context, id int64) (Role, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, name_zh, enabled FROM roles WHERE id = $1`, id)
	var role Role
	if err := row.Scan(&role.ID, &role.Name, &role.NameZh, &role.Enabled); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, shared.ErrNotFound
		}
		return Role{}, err
	}
	return role, nil
}

// SaveRole upserts role metadata by identifier presence. Join tables are
// untouched; association edits are a separate explicit call.
func (r *Repository) SaveRole(ctx context.Context, role Role) (Role, error) {
	return saveRole(ctx, r.pool, role)
}

// SaveRoleWithPermissions upserts role metadata and replaces the role's
// permission set in one transaction. A failure on either side rolls back
// both, so metadata and permissions never drift apart.
func (r *Repository) SaveRoleWithPermissions(ctx context.Context, role Role, permissionIDs []int64) (Role, error) {
	var saved Role
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if role.ID != 0 {
			if err := lockRole(ctx, tx, role.ID); err != nil {
				return err
			}
		}
		var err error
		saved, err = saveRole(ctx, tx, role)
		if err != nil {
			return err
		}
		return replaceJoin(ctx, tx, "role_permission", "permission_id", saved.ID, permissionIDs)
	})
	if err != nil {
		return Role{}, err
	}
	return saved, nil
}

// UpdateRoleStatus toggles the enabled flag.
func (r *Repository) UpdateRoleStatus(ctx context.Context, id int64, enabled bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE roles SET enabled = $2 WHERE id = $1`, id, enabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ReplaceRoleMenus atomically replaces the role's menu set.
func (r *Repository) ReplaceRoleMenus(ctx context.Context, roleID int64, menuIDs []int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockRole(ctx, tx, roleID); err != nil {
			return err
		}
		return replaceJoin(ctx, tx, "role_menu", "menu_id", roleID, menuIDs)
	})
}

// ReplaceRoleAssociations replaces the role's permission and menu sets in
// one transaction. Either both replacements commit or neither does.
func (r *Repository) ReplaceRoleAssociations(ctx context.Context, roleID int64, permissionIDs, menuIDs []int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if err := lockRole(ctx, tx, roleID); err != nil {
			return err
		}
		if err := replaceJoin(ctx, tx, "role_permission", "permission_id", roleID, permissionIDs); err != nil {
			return err
		}
		return replaceJoin(ctx, tx, "role_menu", "menu_id", roleID, menuIDs)
	})
}

// SetUserRoles atomically replaces a user's role assignments.
func (r *Repository) SetUserRoles(ctx context.Context, userID int64, roleIDs []int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID)
		var id int64
		if err := row.Scan(&id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.ErrNotFound
			}
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM user_role WHERE user_id = $1`, userID); err != nil {
			return err
		}
		for _, roleID := range dedupeIDs(roleIDs) {
			if _, err := tx.Exec(ctx,
				`INSERT INTO user_role (user_id, role_id) VALUES ($1, $2)`, userID, roleID); err != nil {
				return err
			}
		}
		return nil
	})
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func saveRole(ctx context.Context, q rowQuerier, role Role) (Role, error) {
	var row pgx.Row
	if role.ID == 0 {
		row = q.QueryRow(ctx,
			`INSERT INTO roles (name, name_zh, enabled) VALUES ($1, $2, $3)
			 RETURNING id, name, name_zh, enabled`,
			role.Name, role.NameZh, role.Enabled)
	} else {
		row = q.QueryRow(ctx,
			`UPDATE roles SET name = $2, name_zh = $3, enabled = $4 WHERE id = $1
			 RETURNING id, name, name_zh, enabled`,
			role.ID, role.Name, role.NameZh, role.Enabled)
	}
	var saved Role
	if err := row.Scan(&saved.ID, &saved.Name, &saved.NameZh, &saved.Enabled); err != nil {
		if role.ID != 0 && errors.Is(err, pgx.ErrNoRows) {
			return Role{}, shared.ErrNotFound
		}
		return Role{}, err
	}
	return saved, nil
}

// lockRole serializes concurrent editors of one role's join tables. The row
// lock holds until commit, so two replacements of the same role cannot
// interleave.
func lockRole(ctx context.Context, tx pgx.Tx, roleID int64) error {
	row := tx.QueryRow(ctx, `SELECT id FROM roles WHERE id = $1 FOR UPDATE`, roleID)
	var id int64
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shared.ErrNotFound
		}
		return err
	}
	return nil
}

func replaceJoin(ctx context.Context, tx pgx.Tx, table, column string, roleID int64, ids []int64) error {
	if _, err := tx.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE role_id = $1`, table), roleID); err != nil {
		return err
	}
	for _, id := range dedupeIDs(ids) {
		if _, err := tx.Exec(ctx,
			fmt.Sprintf(`INSERT INTO %s (role_id, %s) VALUES ($1, $2)`, table, column), roleID, id); err != nil {
			return err
		}
	}
	return nil
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func scanPermissions(rows pgx.Rows) ([]Permission, error) {
	var perms []Permission
	for rows.Next() {
		var p Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.DescZh); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}
	return perms, rows.Err()
}

func scanMenus(rows pgx.Rows) ([]Menu, error) {
	var menus []Menu
	for rows.Next() {
		var m Menu
		if err := rows.Scan(&m.ID, &m.ParentID, &m.Name, &m.NameZh, &m.Icon, &m.Path, &m.Component); err != nil {
			return nil, err
		}
		menus = append(menus, m)
	}
	return menus, rows.Err()
}
