package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labworks/seriesdesk/pkg/config"
	"github.com/labworks/seriesdesk/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *http.Server {
	t.Helper()

	srv, err := New(config.NewForTest(), testutils.NewDB(t))
	require.NoError(t, err)
	return srv
}

func TestNew_Addr(t *testing.T) {
	srv := newTestServer(t)
	assert.Equal(t, "127.0.0.1:0", srv.Addr)
}

func TestDispatch_UnmatchedPaths(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/unknown"},
		{http.MethodGet, "/"},
		{http.MethodPost, "/series/page/2"},
		{http.MethodDelete, "/blogs"},
		{http.MethodGet, "/blog/1/comments/extra/deep"},
		{http.MethodPut, "/blog"},
	}

	for _, tc := range tests {
		rr := testutils.Do(t, srv.Handler, tc.method, tc.path, "")
		assert.Equal(t, http.StatusNotFound, rr.Code, "%s %s", tc.method, tc.path)
		assert.JSONEq(t, `{"error":"Not found"}`, rr.Body.String(), "%s %s", tc.method, tc.path)
	}
}

func TestDispatch_ForwardsBlog(t *testing.T) {
	srv := newTestServer(t)

	rr := testutils.Do(t, srv.Handler, http.MethodGet, "/blog", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"posts":[],"total":0}`, rr.Body.String())

	rr = testutils.Do(t, srv.Handler, http.MethodPost, "/blog", `{"title":"Hi","body":"There"}`)
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"title":"Hi"`)
}

func TestDispatch_Health(t *testing.T) {
	srv := newTestServer(t)

	rr := testutils.Do(t, srv.Handler, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestDispatch_TrailingSlash(t *testing.T) {
	srv := newTestServer(t)

	rr := testutils.Do(t, srv.Handler, http.MethodGet, "/blog/", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"posts":[],"total":0}`, rr.Body.String())

	rr = testutils.Do(t, srv.Handler, http.MethodGet, "/unknown/", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, rr.Body.String())
}

func TestDispatch_CORSOnlyOnBlog(t *testing.T) {
	srv := newTestServer(t)

	preflight := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
		req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, req)
		return rr
	}

	for _, path := range []string{"/unknown", "/blogx"} {
		rr := preflight(path)
		assert.Equal(t, http.StatusNotFound, rr.Code, path)
		assert.JSONEq(t, `{"error":"Not found"}`, rr.Body.String(), path)
	}

	rr := preflight("/blog/1")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = preflight("/blog")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
