package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/white-jotter/white-jotter/internal/platform/httpx"
	"github.com/white-jotter/white-jotter/internal/rbac"
	"github.com/white-jotter/white-jotter/internal/shared"
)

// Response messages for the user administration endpoints.
const (
	MsgUserStatusUpdated = "用户状态更新成功"
	MsgPasswordReset     = "重置密码成功"
	MsgUserEdited        = "修改用户信息成功"
	MsgUserNotFound      = "用户不存在"
)

// Handler serves the user administration endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers user management routes; callers place them behind
// the authentication gate.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/user", h.listUsers)
	r.Put("/user", h.editUser)
	r.Put("/user/status", h.updateUserStatus)
	r.Put("/user/password", h.resetPassword)
}

type userPayload struct {
	ID       int64       `json:"id" validate:"required"`
	Username string      `json:"username"`
	Enabled  bool        `json:"enabled"`
	Roles    []rbac.Role `json:"roles"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		httpx.InternalError(w, h.logger, "list users", err)
		return
	}
	if users == nil {
		users = []User{}
	}
	httpx.JSON(w, httpx.OK(users))
}

func (h *Handler) updateUserStatus(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decode(w, r)
	if !ok {
		return
	}
	if err := h.service.UpdateUserStatus(r.Context(), form.ID, form.Enabled); err != nil {
		h.respondError(w, err, "update user status", form.ID)
		return
	}
	httpx.JSON(w, httpx.OK(MsgUserStatusUpdated))
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decode(w, r)
	if !ok {
		return
	}
	if err := h.service.ResetPassword(r.Context(), form.ID); err != nil {
		h.respondError(w, err, "reset password", form.ID)
		return
	}
	httpx.JSON(w, httpx.OK(MsgPasswordReset))
}

func (h *Handler) editUser(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decode(w, r)
	if !ok {
		return
	}
	roleIDs := make([]int64, 0, len(form.Roles))
	for _, role := range form.Roles {
		roleIDs = append(roleIDs, role.ID)
	}
	if err := h.service.EditUser(r.Context(), form.ID, form.Username, roleIDs); err != nil {
		h.respondError(w, err, "edit user", form.ID)
		return
	}
	httpx.JSON(w, httpx.OK(MsgUserEdited))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (userPayload, bool) {
	var form userPayload
	if err := httpx.DecodeJSON(r, &form); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return form, false
	}
	if err := h.validator.Struct(form); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return form, false
	}
	return form, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string, userID int64) {
	if errors.Is(err, shared.ErrNotFound) {
		h.logger.Warn(op+" for missing user", slog.Int64("user_id", userID))
		httpx.JSON(w, httpx.Fail(MsgUserNotFound))
		return
	}
	httpx.InternalError(w, h.logger, op, err)
}
