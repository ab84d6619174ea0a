package series

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listBody = `{
	"code": 200,
	"status": "Ok",
	"data": {
		"offset": 20,
		"limit": 20,
		"total": 45,
		"count": 2,
		"results": [
			{"id": 1, "title": "Avengers (1963 - 1996)", "thumbnail": {"path": "http://img/1", "extension": "jpg"}, "modified": "2020-01-01T00:00:00-0500"},
			{"id": 2, "title": "Avengers (1998 - 2004)", "thumbnail": {"path": "http://img/2", "extension": "png"}, "modified": "2019-01-01T00:00:00-0500"}
		]
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, cfg ClientConfig) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg.BaseURL = srv.URL
	c, err := NewClient(cfg)
	require.NoError(t, err)
	return c
}

func TestClient_List(t *testing.T) {
	t.Parallel()

	captured := make(chan *url.URL, 1)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured <- r.URL
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listBody))
	}, ClientConfig{})

	resp, err := c.List(context.Background(), ListQuery{Offset: 20, SearchText: "Aven"})
	require.NoError(t, err)

	u := <-captured
	got := u.Query()
	assert.Equal(t, "/v1/public/series", u.Path)
	assert.Equal(t, "20", got.Get("offset"))
	assert.Equal(t, "20", got.Get("limit"))
	assert.Equal(t, "Aven", got.Get("titleStartsWith"))
	assert.False(t, got.Has("apikey"))

	assert.Equal(t, 45, resp.Total)
	assert.Equal(t, 20, resp.Limit)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "Avengers (1963 - 1996)", resp.Results[0].Title)
	assert.Equal(t, "http://img/2.png", resp.Results[1].ImageURL())
}

func TestClient_List_SentinelOffsetAndEmptySearch(t *testing.T) {
	t.Parallel()

	captured := make(chan url.Values, 1)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured <- r.URL.Query()
		_, _ = w.Write([]byte(listBody))
	}, ClientConfig{})

	_, err := c.List(context.Background(), ListQuery{Offset: NoOffset})
	require.NoError(t, err)
	got := <-captured
	assert.False(t, got.Has("offset"))
	assert.False(t, got.Has("titleStartsWith"))
}

func TestClient_List_Signs(t *testing.T) {
	t.Parallel()

	captured := make(chan url.Values, 1)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured <- r.URL.Query()
		_, _ = w.Write([]byte(listBody))
	}, ClientConfig{PublicKey: "pub", PrivateKey: "priv"})
	c.now = func() time.Time { return time.UnixMilli(1) }

	_, err := c.List(context.Background(), ListQuery{Offset: 0})
	require.NoError(t, err)
	got := <-captured
	assert.Equal(t, "1", got.Get("ts"))
	assert.Equal(t, "pub", got.Get("apikey"))
	assert.Equal(t, signature("1", "priv", "pub"), got.Get("hash"))
	assert.Len(t, got.Get("hash"), 32)
}

func TestClient_List_Failures(t *testing.T) {
	t.Parallel()

	t.Run("api error", func(tt *testing.T) {
		c := newTestClient(tt, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"InvalidCredentials","message":"That hash, timestamp and key combination is invalid."}`))
		}, ClientConfig{})

		resp, err := c.List(context.Background(), ListQuery{})
		assert.Nil(tt, resp)
		var apiErr *APIError
		require.ErrorAs(tt, err, &apiErr)
		assert.Equal(tt, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Contains(tt, apiErr.Error(), "combination is invalid")
	})

	t.Run("decode error", func(tt *testing.T) {
		c := newTestClient(tt, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data": {"results": [`))
		}, ClientConfig{})

		resp, err := c.List(context.Background(), ListQuery{})
		assert.Nil(tt, resp)
		assert.ErrorContains(tt, err, "failed to decode series list response")
	})

	t.Run("missing data", func(tt *testing.T) {
		c := newTestClient(tt, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"code":200}`))
		}, ClientConfig{})

		_, err := c.List(context.Background(), ListQuery{})
		assert.ErrorContains(tt, err, "missing data")
	})

	t.Run("network error", func(tt *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		c, err := NewClient(ClientConfig{BaseURL: srv.URL})
		require.NoError(tt, err)
		_, err = c.List(context.Background(), ListQuery{})
		assert.ErrorContains(tt, err, "series list request failed")
	})
}

func TestNewClient_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewClient(ClientConfig{})
	assert.Error(t, err)

	_, err = NewClient(ClientConfig{BaseURL: "not a url"})
	assert.Error(t, err)

	c, err := NewClient(ClientConfig{BaseURL: "https://example.com/api/"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/api/v1/public/series?limit=20&offset=40", c.listURL(ListQuery{Offset: 40}))
}

func TestOffsetForPage(t *testing.T) {
	t.Parallel()

	for p := 0; p < 50; p++ {
		assert.Equal(t, p*20, OffsetForPage(p))
	}
}

func TestPageCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, PageCount(45, 20))
	assert.Equal(t, 2, PageCount(40, 20))
	assert.Equal(t, 1, PageCount(1, 20))
	assert.Equal(t, 0, PageCount(0, 20))
	assert.Equal(t, 0, PageCount(45, 0))
}

func TestItem_ImageURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", Item{}.ImageURL())
	assert.Equal(t, "http://x/y.jpg", Item{Thumbnail: Thumbnail{Path: "http://x/y", Extension: "jpg"}}.ImageURL())
}
