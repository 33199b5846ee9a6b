package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/white-jotter/white-jotter/internal/auth"
	"github.com/white-jotter/white-jotter/internal/rbac"
	"github.com/white-jotter/white-jotter/internal/shared"
	_ "github.com/white-jotter/white-jotter/testing"
)

type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Result  any    `json:"result"`
}

func newAuthRouter(t *testing.T, repo auth.Repository) (chi.Router, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)

	handler := auth.NewHandler(nil, auth.NewService(repo), sessionManager, nil)
	gate := rbac.Middleware{}

	r := chi.NewRouter()
	handler.MountRoutes(r)
	r.Group(func(r chi.Router) {
		r.Use(gate.RequireAuthenticated)
		handler.MountProtectedRoutes(r)
	})
	return r, sessionManager
}

func doJSON(t *testing.T, router chi.Router, sess *shared.Session, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func decodeEnvelope(t *testing.T, res *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &env))
	return env
}

func TestLoginEndpointMessages(t *testing.T) {
	repo := newStubRepo()
	seedUser(t, repo, "admin", "123", true)
	seedUser(t, repo, "ghost", "123", false)
	router, sessionManager := newAuthRouter(t, repo)

	cases := []struct {
		name    string
		body    string
		message string
	}{
		{"success", `{"username":"admin","password":"123"}`, auth.MsgLoginSuccess},
		{"wrong password", `{"username":"admin","password":"wrongpass"}`, auth.MsgIncorrectPassword},
		{"unknown account", `{"username":"nouser","password":"123"}`, auth.MsgUnknownAccount},
		{"disabled user", `{"username":"ghost","password":"123"}`, auth.MsgAccountDisabled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sess, err := sessionManager.Load(context.Background(), httptest.NewRequest(http.MethodPost, "/login", nil))
			require.NoError(t, err)

			res := doJSON(t, router, sess, http.MethodPost, "/login", tc.body)
			require.Equal(t, http.StatusOK, res.Code)
			assert.Equal(t, tc.message, decodeEnvelope(t, res).Message)
		})
	}
}

func TestLoginBindsSessionPrincipal(t *testing.T) {
	repo := newStubRepo()
	seedUser(t, repo, "admin", "123", true)
	router, sessionManager := newAuthRouter(t, repo)

	sess, err := sessionManager.Load(context.Background(), httptest.NewRequest(http.MethodPost, "/login", nil))
	require.NoError(t, err)

	res := doJSON(t, router, sess, http.MethodPost, "/login", `{"username":"admin","password":"123"}`)
	require.Equal(t, http.StatusOK, res.Code)
	require.NotEmpty(t, sess.User())

	// Probe answers for the bound session.
	probe := doJSON(t, router, sess, http.MethodGet, "/authentication", "")
	require.Equal(t, http.StatusOK, probe.Code)
	assert.Equal(t, auth.MsgAuthenticated, probe.Body.String())

	// Logout unbinds; the probe is rejected afterwards.
	logout := doJSON(t, router, sess, http.MethodGet, "/logout", "")
	require.Equal(t, http.StatusOK, logout.Code)
	assert.Equal(t, auth.MsgLogoutSuccess, decodeEnvelope(t, logout).Result)
	assert.Empty(t, sess.User())

	rejected := doJSON(t, router, sess, http.MethodGet, "/authentication", "")
	assert.Equal(t, http.StatusUnauthorized, rejected.Code)
}

func TestAuthenticationProbeRejectsAnonymous(t *testing.T) {
	router, sessionManager := newAuthRouter(t, newStubRepo())

	sess, err := sessionManager.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/authentication", nil))
	require.NoError(t, err)

	res := doJSON(t, router, sess, http.MethodGet, "/authentication", "")
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestLogoutWithoutBoundSubject(t *testing.T) {
	router, sessionManager := newAuthRouter(t, newStubRepo())

	sess, err := sessionManager.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/logout", nil))
	require.NoError(t, err)

	res := doJSON(t, router, sess, http.MethodGet, "/logout", "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, auth.MsgLogoutSuccess, decodeEnvelope(t, res).Result)
}

func TestRegisterEndpointMessages(t *testing.T) {
	router, sessionManager := newAuthRouter(t, newStubRepo())
	sess, err := sessionManager.Load(context.Background(), httptest.NewRequest(http.MethodPost, "/register", nil))
	require.NoError(t, err)

	empty := doJSON(t, router, sess, http.MethodPost, "/register", `{"username":"","password":""}`)
	assert.Equal(t, auth.MsgEmptyCredentials, decodeEnvelope(t, empty).Message)

	created := doJSON(t, router, sess, http.MethodPost, "/register", `{"username":"newuser","password":"newpass"}`)
	assert.Equal(t, auth.MsgRegisterSuccess, decodeEnvelope(t, created).Result)

	duplicate := doJSON(t, router, sess, http.MethodPost, "/register", `{"username":"newuser","password":"newpass"}`)
	assert.Equal(t, auth.MsgAccountExists, decodeEnvelope(t, duplicate).Message)
}
