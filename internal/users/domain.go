package users

import "github.com/white-jotter/white-jotter/internal/rbac"

// User is the administrative view of an account: credentials stay out,
// role assignments ride along for the user-management screen.
type User struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Enabled  bool        `json:"enabled"`
	Roles    []rbac.Role `json:"roles"`
}
