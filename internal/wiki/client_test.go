package wiki

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-cursory/internal/fetch"
)

func newClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	cl, err := fetch.New(fetch.Options{Timeout: 2 * time.Second})
	require.NoError(t, err)
	return New(cl, srv.URL+"/")
}

var day = time.Date(2024, 3, 7, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600))

func TestFeatured_Success(t *testing.T) {
	var path string
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tfa":{},"news":[{"story":"s1"},{"story":"s2"}]}`))
	}))
	f, err := c.Featured(context.Background(), "fr", day)
	require.NoError(t, err)
	require.NotNil(t, f)
	assert.Len(t, f.News, 2)
	assert.Equal(t, "s1", f.News[0].Story)
	// 日期按 UTC 计算：本地 23:30 (UTC-2) 为 UTC 次日
	assert.Equal(t, "/feed/v1/wikipedia/fr/featured/2024/03/08", path)
}

func TestFeatured_NonOKIsAbsent(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	f, err := c.Featured(context.Background(), "xx", day)
	assert.NoError(t, err)
	assert.Nil(t, f)
}

func TestFeatured_NoContentIsAbsent(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	f, err := c.Featured(context.Background(), "en", day)
	assert.NoError(t, err)
	assert.Nil(t, f)
}

func TestFeatured_BadPayload(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"news": "not-a-list"}`))
	}))
	_, err := c.Featured(context.Background(), "en", day)
	assert.Error(t, err)
}

func TestFeatured_NetworkError(t *testing.T) {
	cl, err := fetch.New(fetch.Options{Timeout: time.Second})
	require.NoError(t, err)
	c := New(cl, "http://127.0.0.1:1")
	_, err = c.Featured(context.Background(), "en", day)
	assert.Error(t, err)
}

func TestDescription(t *testing.T) {
	var path string
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"description":" Capital of France "}`))
	}))
	d, err := c.Description(context.Background(), "en", "Paris France")
	require.NoError(t, err)
	assert.Equal(t, "Capital of France", d)
	assert.Equal(t, "/core/v1/wikipedia/en/page/Paris_France/description", path)

	_, err = c.Description(context.Background(), "en", " ")
	assert.Error(t, err)
}
