package roles

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/white-jotter/white-jotter/internal/platform/httpx"
	"github.com/white-jotter/white-jotter/internal/rbac"
	"github.com/white-jotter/white-jotter/internal/shared"
)

// Response messages for the role administration endpoints.
const (
	MsgRoleStatusUpdated = "用户管理员状态更新成功"
	MsgRoleEdited        = "修改角色信息成功"
	MsgRoleSaved         = "修改用户成功"
	MsgRoleMenusUpdated  = "更新成功"
	MsgRoleNotFound      = "角色不存在"
	MsgRoleNameRequired  = "角色名称不能为空"
)

// Handler serves the role administration endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers role routes; callers place them behind the
// authentication gate.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/role", h.listRoles)
	r.Post("/role", h.saveRole)
	r.Put("/role", h.editRole)
	r.Get("/role/perm", h.listPermissions)
	r.Put("/role/status", h.updateRoleStatus)
	r.Put("/role/menu", h.updateRoleMenus)
}

type rolePayload struct {
	ID      int64             `json:"id"`
	Name    string            `json:"name" validate:"required"`
	NameZh  string            `json:"nameZh"`
	Enabled bool              `json:"enabled"`
	Perms   []rbac.Permission `json:"perms"`
}

type roleMenusPayload struct {
	MenusIDs []int64 `json:"menusIds"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		httpx.InternalError(w, h.logger, "list roles", err)
		return
	}
	if roles == nil {
		roles = []rbac.Role{}
	}
	httpx.JSON(w, httpx.OK(roles))
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		httpx.InternalError(w, h.logger, "list permissions", err)
		return
	}
	if perms == nil {
		perms = []rbac.Permission{}
	}
	httpx.JSON(w, httpx.OK(perms))
}

func (h *Handler) updateRoleStatus(w http.ResponseWriter, r *http.Request) {
	var form rolePayload
	if err := httpx.DecodeJSON(r, &form); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.service.UpdateRoleStatus(r.Context(), form.ID, form.Enabled); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// IDs should always reference existing rows; log as an anomaly.
			h.logger.Warn("update status of missing role", slog.Int64("role_id", form.ID))
			httpx.JSON(w, httpx.Fail(MsgRoleNotFound))
			return
		}
		httpx.InternalError(w, h.logger, "update role status", err)
		return
	}
	httpx.JSON(w, httpx.OK(MsgRoleStatusUpdated))
}

func (h *Handler) editRole(w http.ResponseWriter, r *http.Request) {
	var form rolePayload
	if err := httpx.DecodeJSON(r, &form); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.JSON(w, httpx.Fail(MsgRoleNameRequired))
		return
	}
	role := rbac.Role{ID: form.ID, Name: form.Name, NameZh: form.NameZh, Enabled: form.Enabled}
	if err := h.service.EditRole(r.Context(), role, permissionIDs(form.Perms)); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.JSON(w, httpx.Fail(MsgRoleNotFound))
			return
		}
		httpx.InternalError(w, h.logger, "edit role", err)
		return
	}
	httpx.JSON(w, httpx.OK(MsgRoleEdited))
}

func (h *Handler) saveRole(w http.ResponseWriter, r *http.Request) {
	var form rolePayload
	if err := httpx.DecodeJSON(r, &form); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.JSON(w, httpx.Fail(MsgRoleNameRequired))
		return
	}
	role := rbac.Role{ID: form.ID, Name: form.Name, NameZh: form.NameZh, Enabled: form.Enabled}
	if _, err := h.service.SaveRole(r.Context(), role); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.JSON(w, httpx.Fail(MsgRoleNotFound))
			return
		}
		httpx.InternalError(w, h.logger, "save role", err)
		return
	}
	httpx.JSON(w, httpx.OK(MsgRoleSaved))
}

func (h *Handler) updateRoleMenus(w http.ResponseWriter, r *http.Request) {
	roleID, err := strconv.ParseInt(r.URL.Query().Get("rid"), 10, 64)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	var form roleMenusPayload
	if err := httpx.DecodeJSON(r, &form); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.service.UpdateRoleMenus(r.Context(), roleID, form.MenusIDs); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.logger.Warn("update menus of missing role", slog.Int64("role_id", roleID))
			httpx.JSON(w, httpx.Fail(MsgRoleNotFound))
			return
		}
		httpx.InternalError(w, h.logger, "update role menus", err)
		return
	}
	httpx.JSON(w, httpx.OK(MsgRoleMenusUpdated))
}

func permissionIDs(perms []rbac.Permission) []int64 {
	ids := make([]int64, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.ID)
	}
	return ids
}
