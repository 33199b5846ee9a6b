package rbac_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/white-jotter/white-jotter/internal/rbac"
	"github.com/white-jotter/white-jotter/internal/shared"
	_ "github.com/white-jotter/white-jotter/testing"
)

type menuEnvelope struct {
	Code   int         `json:"code"`
	Result []rbac.Menu `json:"result"`
}

func newMenusRouter(graph rbac.Graph) chi.Router {
	handler := rbac.NewMenusHandler(nil, rbac.NewResolver(graph))
	r := chi.NewRouter()
	handler.MountRoutes(r)
	handler.MountAdminRoutes(r)
	return r
}

func getMenus(t *testing.T, router chi.Router, path string, sess *shared.Session) (*httptest.ResponseRecorder, menuEnvelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if sess != nil {
		req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	var env menuEnvelope
	if res.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &env))
	}
	return res, env
}

func TestCurrentUserMenuTree(t *testing.T) {
	graph := &memoryGraph{
		roles: map[int64][]int64{7: {1}},
		menus: map[int64][]rbac.Menu{
			1: {
				{ID: 1, ParentID: 0, Name: "home"},
				{ID: 2, ParentID: 1, Name: "home_child"},
			},
		},
	}
	router := newMenusRouter(graph)

	sess := &shared.Session{}
	sess.SetUser("7")
	res, env := getMenus(t, router, "/menu", sess)
	require.Equal(t, http.StatusOK, res.Code)
	require.Len(t, env.Result, 1)
	assert.Equal(t, int64(1), env.Result[0].ID)
	require.Len(t, env.Result[0].Children, 1)
	assert.Equal(t, int64(2), env.Result[0].Children[0].ID)
}

func TestCurrentUserMenuRequiresPrincipal(t *testing.T) {
	router := newMenusRouter(&memoryGraph{})

	res, _ := getMenus(t, router, "/menu", &shared.Session{})
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestCurrentUserMenuEmptyIsArray(t *testing.T) {
	router := newMenusRouter(&memoryGraph{})

	sess := &shared.Session{}
	sess.SetUser("7")
	res, _ := getMenus(t, router, "/menu", sess)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, res.Body.String(), `"result":[]`)
}

func TestMenusForRole(t *testing.T) {
	graph := &memoryGraph{
		menus: map[int64][]rbac.Menu{
			3: {{ID: 1, ParentID: 0, Name: "home"}},
		},
	}
	router := newMenusRouter(graph)

	res, env := getMenus(t, router, "/role/menu?rid=3", nil)
	require.Equal(t, http.StatusOK, res.Code)
	require.Len(t, env.Result, 1)
	assert.Equal(t, "home", env.Result[0].Name)
}

func TestMenusForRoleBadIDYieldsEmptyArray(t *testing.T) {
	router := newMenusRouter(&memoryGraph{})

	for _, path := range []string{"/role/menu", "/role/menu?rid=abc"} {
		res, _ := getMenus(t, router, path, nil)
		require.Equal(t, http.StatusOK, res.Code)
		assert.Contains(t, res.Body.String(), `"result":[]`)
	}
}
