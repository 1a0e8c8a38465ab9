package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"storyline/app/config"
	"storyline/app/models"
	"storyline/app/repositories"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Dataset:         "production",
		ProjectID:       "proj",
		APIVersion:      "2021-03-25",
		CMSBackend:      config.BackendLocal,
		DBPath:          filepath.Join(t.TempDir(), "badger"),
		Addr:            "127.0.0.1:0",
		RevalidateSecs:  60,
		GenerateTimeout: 5 * time.Second,
		CacheBackend:    config.CacheMemory,
		AllowedOrigins:  "*",
		LogLevel:        "info",
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seededApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app, err := NewApp(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })

	f, err := os.Open(seedFile)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, seedStore(app, f))
	return app
}

func seedStore(app *App, r io.Reader) error {
	data, err := repositories.ReadSeed(r)
	if err != nil {
		return err
	}
	return app.Store.Apply(data)
}

func TestNewApp_LocalBackend(t *testing.T) {
	app := seededApp(t, testConfig(t))

	result, err := app.Prerender(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"hello-world", "second-post"}, result.Generated)
	assert.Empty(t, result.Failed)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/post/hello-world", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.Contains(t, w.Body.String(), "Welcome")
	assert.Contains(t, w.Body.String(), "Alice")
	assert.NotContains(t, w.Body.String(), "Mallory")
}

func TestNewApp_CommentAppearsAfterApproval(t *testing.T) {
	cfg := testConfig(t)
	cfg.RevalidateSecs = 1
	app := seededApp(t, cfg)

	body := `{"_id":"post-hello","name":"Bob","email":"bob@example.com","comment":"Lovely"}`
	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/createComment", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code)

	get := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/post/hello-world", nil))
		return w
	}
	assert.NotContains(t, get().Body.String(), "Lovely")

	pendingComments, err := app.Store.Comments.ListPending()
	require.NoError(t, err)
	var bobID string
	for _, c := range pendingComments {
		if c.Name == "Bob" {
			bobID = c.ID
		}
	}
	require.NotEmpty(t, bobID)
	require.NoError(t, app.Store.Comments.Approve(bobID))

	// Past the window the stale page is served once while it regenerates.
	time.Sleep(1100 * time.Millisecond)
	stale := get()
	assert.Equal(t, "STALE", stale.Header().Get("X-Cache"))
	assert.NotContains(t, stale.Body.String(), "Lovely")
	app.Cache.Wait()

	fresh := get()
	assert.Equal(t, "HIT", fresh.Header().Get("X-Cache"))
	assert.Contains(t, fresh.Body.String(), "Lovely")
}

func TestNewApp_RedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.CacheBackend = config.CacheRedis
	cfg.RedisURL = "redis://" + mr.Addr()
	app := seededApp(t, cfg)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/post/hello-world", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.True(t, mr.Exists("page:hello-world"))
}

func TestNewApp_RedisUnavailable(t *testing.T) {
	cfg := testConfig(t)
	cfg.CacheBackend = config.CacheRedis
	cfg.RedisURL = "127.0.0.1:1"

	_, err := NewApp(context.Background(), cfg, testLogger())
	assert.Error(t, err)
}

func TestNewApp_HTTPBackend(t *testing.T) {
	cms := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("$slug") == "" {
			json.NewEncoder(w).Encode(map[string]any{"result": []models.PostRef{{ID: "p1", Slug: models.Slug{Current: "remote"}}}})
			return
		}
		if r.URL.Query().Get("$slug") != `"remote"` {
			w.Write([]byte(`{"result":null}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"result": models.Post{ID: "p1", Title: "Remote Post", Slug: models.Slug{Current: "remote"}}})
	}))
	defer cms.Close()

	cfg := testConfig(t)
	cfg.CMSBackend = config.BackendHTTP
	cfg.APIHost = cms.URL
	app, err := NewApp(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	defer app.Close()
	assert.Nil(t, app.Store)

	slugs, err := app.Pages.Paths(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"remote"}, slugs)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/post/remote", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Remote Post")

	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/post/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApp_Build(t *testing.T) {
	app := seededApp(t, testConfig(t))
	out := t.TempDir()

	result, err := app.Build(context.Background(), out)
	require.NoError(t, err)
	assert.Len(t, result.Generated, 2)

	html, err := os.ReadFile(filepath.Join(out, "post", "hello-world", "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "Welcome")
	assert.Contains(t, string(html), "Leave a comment below!")
	assert.FileExists(t, filepath.Join(out, "post", "second-post", "index.html"))
	assert.FileExists(t, filepath.Join(out, "static", "site.css"))
}

func TestApp_BuildSkipsUnsafeSlugs(t *testing.T) {
	app := seededApp(t, testConfig(t))
	require.NoError(t, seedStore(app, strings.NewReader(`
posts:
  - _id: post-escape
    title: Escape
    slug:
      current: ../../escape
`)))
	root := t.TempDir()
	out := filepath.Join(root, "site")

	result, err := app.Build(context.Background(), out)
	require.NoError(t, err)
	assert.Len(t, result.Generated, 2)
	require.Contains(t, result.Failed, "../../escape")
	assert.ErrorIs(t, result.Failed["../../escape"], errUnsafeSlug)

	assert.NoFileExists(t, filepath.Join(root, "escape", "index.html"))
	assert.NoFileExists(t, filepath.Join(out, "escape", "index.html"))
}

func TestApp_ServeGracefulShutdown(t *testing.T) {
	app := seededApp(t, testConfig(t))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Serve(ctx, ln) }()

	url := fmt.Sprintf("http://%s/healthz", ln.Addr().String())
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunComment(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"name":"John Doe"}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	code := RunComment([]string{"-url", srv.URL, "-post", "post-1", "-name", "Bob", "-email", "b@example.com"}, testLogger(), &out)
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "The Comment Field is required")
	assert.Zero(t, hits)

	out.Reset()
	code = RunComment([]string{"-url", srv.URL, "-post", "post-1", "-name", "Bob", "-email", "b@example.com", "-comment", "Hi"}, testLogger(), &out)
	assert.Equal(t, 0, code)
	assert.Contains(t, out.String(), "Thank you for submitting")
	assert.Equal(t, 1, hits)
}
