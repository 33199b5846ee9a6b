package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/white-jotter/white-jotter/internal/observability"
	"github.com/white-jotter/white-jotter/internal/platform/httpx"
	"github.com/white-jotter/white-jotter/internal/shared"
)

// Message catalog for the login and registration endpoints. Failures ride in
// a 200 envelope; only the message field distinguishes them.
const (
	MsgLoginSuccess      = "成功"
	MsgIncorrectPassword = "密码错误"
	MsgUnknownAccount    = "账号不存在"
	MsgAccountDisabled   = "该用户已被禁用"
	MsgLogoutSuccess     = "成功登出"
	MsgAuthenticated     = "身份认证成功"
	MsgRegisterSuccess   = "注册成功"
	MsgEmptyCredentials  = "用户名和密码不能为空"
	MsgAccountExists     = "用户已存在"
	MsgUnknownError      = "未知错误"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	metrics        *observability.Metrics
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance. Metrics may be nil.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, metrics *observability.Metrics) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		metrics:        metrics,
		validator:      validator.New(),
	}
}

// MountRoutes registers the public auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Get("/logout", h.handleLogout)
	r.Post("/register", h.handleRegister)
}

// MountProtectedRoutes registers routes that require a bound principal.
func (h *Handler) MountProtectedRoutes(r chi.Router) {
	r.Get("/authentication", h.handleAuthentication)
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerForm struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form credentials
	if err := httpx.DecodeJSON(r, &form); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	outcome, user, err := h.service.Login(r.Context(), sess, form.Username, form.Password)
	if err != nil {
		httpx.InternalError(w, h.logger, "login", err)
		return
	}

	h.metrics.ObserveLogin(outcome.String())

	switch outcome {
	case LoginSuccess:
		if sess != nil {
			expiresAt := time.Now().Add(h.sessionManager.TTL())
			if err := h.service.RegisterSession(r.Context(), sess.ID, user.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
				h.logger.Warn("register session", slog.Any("error", err))
			}
		}
		httpx.JSON(w, httpx.OKMessage(MsgLoginSuccess))
	case LoginUnknownAccount:
		httpx.JSON(w, httpx.Fail(MsgUnknownAccount))
	case LoginIncorrectCredentials:
		httpx.JSON(w, httpx.Fail(MsgIncorrectPassword))
	case LoginAccountDisabled:
		httpx.JSON(w, httpx.Fail(MsgAccountDisabled))
	}
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil && sess.User() != "" {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
	}
	h.service.Logout(sess)
	httpx.JSON(w, httpx.OK(MsgLogoutSuccess))
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var form registerForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := h.validator.Struct(form); err != nil {
		httpx.JSON(w, httpx.Fail(MsgEmptyCredentials))
		return
	}

	outcome, _, err := h.service.Register(r.Context(), form.Username, form.Password)
	if err != nil {
		h.logger.Error("register", slog.Any("error", err))
	}

	switch outcome {
	case Registered:
		httpx.JSON(w, httpx.OK(MsgRegisterSuccess))
	case RegisterEmptyCredentials:
		httpx.JSON(w, httpx.Fail(MsgEmptyCredentials))
	case RegisterAccountExists:
		httpx.JSON(w, httpx.Fail(MsgAccountExists))
	default:
		httpx.JSON(w, httpx.Fail(MsgUnknownError))
	}
}

// handleAuthentication is the probe endpoint; the surrounding middleware
// rejects anonymous sessions before it runs.
func (h *Handler) handleAuthentication(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(MsgAuthenticated))
}
