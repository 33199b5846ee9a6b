package rbac

import (
	"context"
	"sort"
)

// Graph is the read-only query surface the resolver needs. The PostgreSQL
// Repository satisfies it; tests substitute an in-memory graph.
type Graph interface {
	RolesOf(ctx context.Context, userID int64) ([]int64, error)
	PermissionsOf(ctx context.Context, roleID int64) ([]Permission, error)
	MenusOf(ctx context.Context, roleID int64) ([]Menu, error)
}

// Resolver computes effective permission sets and menu trees by taking the
// union across a user's assigned roles. Results are deduplicated by
// identifier, so role enumeration order never changes the outcome.
type Resolver struct {
	graph Graph
}

// NewResolver constructs a Resolver.
func NewResolver(graph Graph) *Resolver {
	return &Resolver{graph: graph}
}

// EffectivePermissions returns the union of permissions across the user's
// roles. A user with no roles gets an empty set; that is a valid state,
// not an error.
func (r *Resolver) EffectivePermissions(ctx context.Context, userID int64) ([]Permission, error) {
	roleIDs, err := r.graph.RolesOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]Permission)
	for _, roleID := range roleIDs {
		perms, err := r.graph.PermissionsOf(ctx, roleID)
		if err != nil {
			return nil, err
		}
		for _, p := range perms {
			byID[p.ID] = p
		}
	}
	out := make([]Permission, 0, len(byID))
	for _, p := range byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// EffectiveMenuTree returns the union of the user's role menus, assembled
// into a parent-linked tree.
func (r *Resolver) EffectiveMenuTree(ctx context.Context, userID int64) ([]*Menu, error) {
	roleIDs, err := r.graph.RolesOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]Menu)
	for _, roleID := range roleIDs {
		menus, err := r.graph.MenusOf(ctx, roleID)
		if err != nil {
			return nil, err
		}
		for _, m := range menus {
			byID[m.ID] = m
		}
	}
	return BuildMenuTree(flattenMenus(byID)), nil
}

// MenusForRole returns one role's menu entries as a tree, for the admin
// role-menu editor.
func (r *Resolver) MenusForRole(ctx context.Context, roleID int64) ([]*Menu, error) {
	menus, err := r.graph.MenusOf(ctx, roleID)
	if err != nil {
		return nil, err
	}
	return BuildMenuTree(menus), nil
}

// BuildMenuTree assembles flat menu rows into a forest. Entries are
// deduplicated by ID and siblings keep ascending ID order, so the rendered
// shape is deterministic for a given underlying set. An entry whose parent
// is absent from the input is dropped rather than promoted: every non-root
// node in the result has its parent in the result, and a cyclic parent
// chain can never reach a root, so cycles are excluded wholesale.
func BuildMenuTree(menus []Menu) []*Menu {
	nodes := make(map[int64]*Menu, len(menus))
	order := make([]int64, 0, len(menus))
	for _, m := range menus {
		if _, ok := nodes[m.ID]; ok {
			continue
		}
		node := m
		node.Children = nil
		nodes[m.ID] = &node
		order = append(order, m.ID)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	roots := make([]*Menu, 0, len(order))
	for _, id := range order {
		node := nodes[id]
		if node.ParentID == 0 {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[node.ParentID]; ok && node.ParentID != node.ID {
			parent.Children = append(parent.Children, node)
		}
	}
	return roots
}

func flattenMenus(byID map[int64]Menu) []Menu {
	out := make([]Menu, 0, len(byID))
	for _, m := range byID {
		out = append(out, m)
	}
	return out
}
