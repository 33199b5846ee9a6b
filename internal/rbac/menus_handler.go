package rbac

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/white-jotter/white-jotter/internal/platform/httpx"
)

// MenusHandler serves menu trees: the session principal's navigation and
// the admin role-menu editor view.
type MenusHandler struct {
	logger   *slog.Logger
	resolver *Resolver
}

// NewMenusHandler builds a MenusHandler instance.
func NewMenusHandler(logger *slog.Logger, resolver *Resolver) *MenusHandler {
	return &MenusHandler{logger: logger, resolver: resolver}
}

// MountRoutes registers menu routes; callers place them behind the
// authentication gate.
func (h *MenusHandler) MountRoutes(r chi.Router) {
	r.Get("/menu", h.currentUserMenu)
}

// MountAdminRoutes registers the role-menu editor route.
func (h *MenusHandler) MountAdminRoutes(r chi.Router) {
	r.Get("/role/menu", h.menusForRole)
}

func (h *MenusHandler) currentUserMenu(w http.ResponseWriter, r *http.Request) {
	userID, ok := CurrentUserID(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	tree, err := h.resolver.EffectiveMenuTree(r.Context(), userID)
	if err != nil {
		httpx.InternalError(w, h.logger, "effective menu tree", err)
		return
	}
	httpx.JSON(w, httpx.OK(emptyForest(tree)))
}

func (h *MenusHandler) menusForRole(w http.ResponseWriter, r *http.Request) {
	roleID, _ := strconv.ParseInt(r.URL.Query().Get("rid"), 10, 64)
	tree, err := h.resolver.MenusForRole(r.Context(), roleID)
	if err != nil {
		httpx.InternalError(w, h.logger, "menus for role", err)
		return
	}
	httpx.JSON(w, httpx.OK(emptyForest(tree)))
}

// emptyForest keeps the result an array, never null, for frontend
// consumers iterating the tree.
func emptyForest(tree []*Menu) []*Menu {
	if tree == nil {
		return []*Menu{}
	}
	return tree
}
