package rbac

// Permission names seeded by scripts/schema.sql. The admin API is gated on
// users management; content management gates the frontend's content views.
const (
	PermUsersManagement   = "users_management"
	PermContentManagement = "content_management"
)

// Role groups permissions and menu entries. Perms and Menus are populated
// only by the hydrated listing variant.
type Role struct {
	ID      int64        `json:"id"`
	Name    string       `json:"name"`
	NameZh  string       `json:"nameZh"`
	Enabled bool         `json:"enabled"`
	Perms   []Permission `json:"perms,omitempty"`
	Menus   []Menu       `json:"menus,omitempty"`
}

// Permission represents an atomic capability. Permissions are reference
// data: immutable once created.
type Permission struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	DescZh string `json:"desc_"`
}

// Menu is a navigation entry. ParentID zero marks a root; every other entry
// hangs off exactly one parent.
type Menu struct {
	ID        int64   `json:"id"`
	ParentID  int64   `json:"parentId"`
	Name      string  `json:"name"`
	NameZh    string  `json:"nameZh"`
	Icon      string  `json:"icon"`
	Path      string  `json:"path"`
	Component string  `json:"component"`
	Children  []*Menu `json:"children,omitempty"`
}
