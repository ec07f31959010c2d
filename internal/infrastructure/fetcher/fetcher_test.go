package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFetchSendsUserAgent(t *testing.T) {
	t.Parallel()

	var agent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent.Store(r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("<html>menu</html>"))
	}))
	defer server.Close()

	f, err := New(Options{URL: server.URL, UserAgent: "PizzaScanner/test"}, nil)
	require.NoError(t, err)

	page, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "<html>menu</html>", page)
	require.Equal(t, "PizzaScanner/test", agent.Load())
}

func TestFetchNonOKStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	f, err := New(Options{URL: server.URL, UserAgent: "PizzaScanner/test"}, nil)
	require.NoError(t, err)

	_, err = f.Fetch(context.Background())
	require.ErrorIs(t, err, ErrUpstreamFetch)

	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, http.StatusForbidden, upstream.Status)
}

func TestFetchTransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	f, err := New(Options{URL: url, UserAgent: "PizzaScanner/test"}, nil)
	require.NoError(t, err)

	_, err = f.Fetch(context.Background())
	require.ErrorIs(t, err, ErrUpstreamFetch)
}

func TestFetchCachesPage(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("page"))
	}))
	defer server.Close()

	f, err := New(Options{URL: server.URL, UserAgent: "PizzaScanner/test", CacheTTL: time.Minute}, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		page, err := f.Fetch(context.Background())
		require.NoError(t, err)
		require.Equal(t, "page", page)
	}
	require.EqualValues(t, 1, hits.Load())
}

func TestNewRequiresUserAgent(t *testing.T) {
	t.Parallel()

	_, err := New(Options{URL: "http://example.invalid"}, nil)
	require.Error(t, err)

	_, err = New(Options{UserAgent: "x"}, nil)
	require.Error(t, err)
}
