package fetch

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skybench/skybench/pkg/errors"
	"github.com/skybench/skybench/pkg/testutil"
)

func newTestServer(t *testing.T, body string, hits *int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(hits, 1)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchDownloadsAndCaches(t *testing.T) {
	var hits int64
	srv := newTestServer(t, "id,mag\n1,2.5\n", &hits)

	dir := t.TempDir()
	f := New(&Config{CacheDir: dir, Timeout: 10 * time.Second}, testutil.TestLogger(t))

	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	path, err := f.Fetch(ctx, srv.URL+"/catalog.csv")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "catalog.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "id,mag\n1,2.5\n", string(data))
	require.EqualValues(t, 1, atomic.LoadInt64(&hits))

	// Second fetch reuses the cached copy without a request.
	_, err = f.Fetch(ctx, srv.URL+"/catalog.csv")
	require.NoError(t, err)
	require.EqualValues(t, 1, atomic.LoadInt64(&hits))
}

func TestFetchForceRedownloads(t *testing.T) {
	var hits int64
	srv := newTestServer(t, "data\n", &hits)

	dir := t.TempDir()
	f := New(&Config{CacheDir: dir, Timeout: 10 * time.Second, Force: true}, testutil.TestLogger(t))

	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	_, err := f.Fetch(ctx, srv.URL+"/catalog.csv")
	require.NoError(t, err)
	_, err = f.Fetch(ctx, srv.URL+"/catalog.csv")
	require.NoError(t, err)
	require.EqualValues(t, 2, atomic.LoadInt64(&hits))
}

func TestFetchRejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	f := New(&Config{CacheDir: t.TempDir(), Timeout: 10 * time.Second}, testutil.TestLogger(t))

	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	_, err := f.Fetch(ctx, srv.URL+"/missing.csv")
	require.Error(t, err)
	require.True(t, errors.IsType(err, errors.ErrorTypeConnection))
}

func TestFetchRejectsURLWithoutFileName(t *testing.T) {
	f := New(nil, testutil.TestLogger(t))

	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	_, err := f.Fetch(ctx, "https://example.com/")
	require.Error(t, err)
	require.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestFetchFailureLeavesNoPartialFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	f := New(&Config{CacheDir: dir, Timeout: 10 * time.Second}, testutil.TestLogger(t))

	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	_, err := f.Fetch(ctx, srv.URL+"/catalog.csv")
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(dir, "catalog.csv"))
	require.True(t, os.IsNotExist(statErr))
}
