package rbac

import (
	"net/http"
	"strconv"
	"strings"

	"log/slog"

	"github.com/white-jotter/white-jotter/internal/shared"
)

// Middleware wires authentication and authorization helpers for HTTP
// handlers.
type Middleware struct {
	Resolver *Resolver
	Logger   *slog.Logger
}

// RequireAuthenticated rejects requests whose session has no bound
// principal. Protected operations treat this as their precondition.
func (m Middleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUserID(r); !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAny ensures the current user holds at least one of the named
// permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	required := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			userID, ok := CurrentUserID(r)
			if !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			granted, err := m.Resolver.EffectivePermissions(r.Context(), userID)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("rbac require any", slog.Any("error", err))
				}
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if hasAnyPermission(granted, required) {
				next.ServeHTTP(w, r)
				return
			}
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
		})
	}
}

// CurrentUserID extracts the bound principal's ID from the request session.
func CurrentUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0, false
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func normalizePermissions(perms []string) []string {
	unique := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		unique[p] = struct{}{}
	}
	normalized := make([]string, 0, len(unique))
	for p := range unique {
		normalized = append(normalized, p)
	}
	return normalized
}

func hasAnyPermission(granted []Permission, required []string) bool {
	set := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		set[strings.ToLower(p.Name)] = struct{}{}
	}
	for _, r := range required {
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}
