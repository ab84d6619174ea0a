package blog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/labworks/seriesdesk/pkg/binder"
	"github.com/labworks/seriesdesk/pkg/errcodes"
	"github.com/labworks/seriesdesk/pkg/models"
	"github.com/labworks/seriesdesk/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	RegisterRoutesWithGroup(e.Group("/blog"), testutils.NewDB(t))
	return e
}

func do(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return testutils.Do(t, e, method, path, body)
}

func decodePost(t *testing.T, rr *httptest.ResponseRecorder) models.BlogPost {
	t.Helper()
	post := models.BlogPost{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &post))
	return post
}

func TestHandlers_PostLifecycle(t *testing.T) {
	e := newTestEcho(t)

	rr := do(t, e, http.MethodPost, "/blog", `{"title":"  Hello  ","body":"World"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decodePost(t, rr)
	assert.Equal(t, "Hello", created.Title)
	assert.NotNil(t, created.Comments)
	path := "/blog/" + strconv.Itoa(created.ID)

	rr = do(t, e, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "World", decodePost(t, rr).Body)

	rr = do(t, e, http.MethodPatch, path, `{"body":"Everyone"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	patched := decodePost(t, rr)
	assert.Equal(t, "Hello", patched.Title)
	assert.Equal(t, "Everyone", patched.Body)

	rr = do(t, e, http.MethodPut, path, `{"title":"Replaced","body":"Entirely"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Replaced", decodePost(t, rr).Title)

	rr = do(t, e, http.MethodPost, path+"/comments", `{"comment":"nice"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	withComment := decodePost(t, rr)
	require.Len(t, withComment.Comments, 1)

	rr = do(t, e, http.MethodDelete, path+"/"+strconv.Itoa(withComment.Comments[0].ID), "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Empty(t, decodePost(t, rr).Comments)

	rr = do(t, e, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"id":`+strconv.Itoa(created.ID)+`,"deleted":true}`, rr.Body.String())

	rr = do(t, e, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Blog post not found"}`, rr.Body.String())
}

func TestHandlers_List(t *testing.T) {
	e := newTestEcho(t)

	for _, title := range []string{"a", "b", "c"} {
		rr := do(t, e, http.MethodPost, "/blog", `{"title":"`+title+`","body":"x"}`)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := do(t, e, http.MethodGet, "/blog?skip=1&take=1", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := listResponse{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Posts, 1)
	assert.Equal(t, "b", resp.Posts[0].Title)

	rr = do(t, e, http.MethodGet, "/blog?take=0", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, e, http.MethodGet, "/blog?take=1000", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.JSONEq(t, `{"error":"\"take\" must be less than or equal to 100"}`, rr.Body.String())
}

func TestHandlers_Validation(t *testing.T) {
	e := newTestEcho(t)

	rr := do(t, e, http.MethodPost, "/blog", `{"title":"   ","body":"x"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.JSONEq(t, `{"error":"\"title\" is required"}`, rr.Body.String())

	rr = do(t, e, http.MethodPost, "/blog", `{"title":"t","body":"x","author":"me"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.JSONEq(t, `{"error":"Unknown Parameter \"author\""}`, rr.Body.String())

	rr = do(t, e, http.MethodPost, "/blog", `{"title":"t","body":"x"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	path := "/blog/" + strconv.Itoa(decodePost(t, rr).ID)

	rr = do(t, e, http.MethodPatch, path, `{"title":"t"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.JSONEq(t, `{"error":"No fields have been changed"}`, rr.Body.String())

	rr = do(t, e, http.MethodPatch, path, `{"title":"  "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = do(t, e, http.MethodGet, "/blog/not-a-number", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, e, http.MethodPost, "/blog/999/comments", `{"comment":"orphan"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"Blog post not found"}`, rr.Body.String())
}
