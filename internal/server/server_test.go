package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/tweetfeed/internal/config"
	"github.com/sakif/tweetfeed/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestServer_SQLiteBackendEndToEnd(t *testing.T) {
	fixtures := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(fixtures, []byte(`
users:
  - id: u1
    nickname: alice
    name: Alice
    photo: image-abc-48x48-png
tweets:
  - id: t1
    user: alice
    text: hello
    createdAt: 2024-05-01T10:00:00Z
`), 0o644))

	cfg := config.Defaults()
	cfg.Store.Backend = config.BackendSQLite
	cfg.Store.SQLitePath = ":memory:"
	cfg.Store.Fixtures = fixtures
	cfg.Sanity.ProjectID = "proj"

	srv, err := New(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/tweets", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Content-Type"))

	var page model.FeedPage
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&page))
	require.Len(t, page.Tweets, 1)
	assert.False(t, page.HasMore)
	// the image builder is configured from sanity.project_id/dataset
	assert.Equal(t,
		"https://cdn.sanity.io/images/proj/production/abc-48x48.png?fit=crop&h=48&w=48",
		page.Tweets[0].User.PhotoURL)

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/users/alice", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/users/ghost", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestServer_SanityBackendFault(t *testing.T) {
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"description":"internal detail"}}`))
	}))
	t.Cleanup(store.Close)

	cfg := config.Defaults()
	cfg.Sanity.ProjectID = "proj"
	cfg.Sanity.BaseURL = store.URL

	srv, err := New(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/tweets", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "internal detail")
}

func TestServer_UnreachableRedis(t *testing.T) {
	cfg := config.Defaults()
	cfg.Store.Backend = config.BackendSQLite
	cfg.Store.SQLitePath = ":memory:"
	cfg.Cache.RedisAddr = "127.0.0.1:1" // nothing listens on port 1

	_, err := New(context.Background(), cfg, testLogger())
	assert.Error(t, err)
}
