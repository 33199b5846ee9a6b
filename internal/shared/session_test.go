package shared_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/white-jotter/white-jotter/internal/shared"
	_ "github.com/white-jotter/white-jotter/testing"
)

func newManager(t *testing.T) (*shared.SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return shared.NewSessionManager(client, "test_session", "secret", time.Hour, false), mr
}

func TestSessionRoundTrip(t *testing.T) {
	manager, _ := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	require.NoError(t, err)
	sess.Set("theme", "dark")
	sess.SetUser("7")

	res := httptest.NewRecorder()
	require.NoError(t, manager.Commit(ctx, res, req, sess))

	cookies := res.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "test_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	// A follow-up request with the cookie sees the same state.
	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	reloaded, err := manager.Load(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, "dark", reloaded.Get("theme"))
	assert.Equal(t, "7", reloaded.User())
}

func TestSessionDestroyClearsStateAndCookie(t *testing.T) {
	manager, _ := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("7")

	first := httptest.NewRecorder()
	require.NoError(t, manager.Commit(ctx, first, req, sess))
	cookie := first.Result().Cookies()[0]

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookie)
	reloaded, err := manager.Load(ctx, next)
	require.NoError(t, err)
	manager.Destroy(reloaded)

	second := httptest.NewRecorder()
	require.NoError(t, manager.Commit(ctx, second, next, reloaded))
	expired := second.Result().Cookies()
	require.Len(t, expired, 1)
	assert.Equal(t, -1, expired[0].MaxAge)

	// The stored payload is gone; the old cookie yields a fresh session.
	again := httptest.NewRequest(http.MethodGet, "/", nil)
	again.AddCookie(cookie)
	fresh, err := manager.Load(ctx, again)
	require.NoError(t, err)
	assert.Empty(t, fresh.User())
}

func TestSessionExpiresWithTTL(t *testing.T) {
	manager, mr := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := manager.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("7")

	res := httptest.NewRecorder()
	require.NoError(t, manager.Commit(ctx, res, req, sess))
	cookie := res.Result().Cookies()[0]

	mr.FastForward(2 * time.Hour)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookie)
	fresh, err := manager.Load(ctx, next)
	require.NoError(t, err)
	assert.Empty(t, fresh.User())
}

func TestClearUserOnAnonymousSessionIsNoop(t *testing.T) {
	sess := &shared.Session{}
	sess.ClearUser()
	assert.Empty(t, sess.User())

	sess.SetUser("3")
	sess.ClearUser()
	assert.Empty(t, sess.User())
}
