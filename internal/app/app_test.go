package app

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openindex/internal/config"
	apierrors "openindex/internal/errors"
	"openindex/internal/shared/testutil"
)

// testConfig lays out records, contexts and static files under a temp base
// directory
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	tree := testutil.RecordTree{
		"contexts/work.jsonld": `{"@context":{"title":"http://purl.org/dc/terms/title"}}`,
		"static/style.css":     "body{margin:0}",
	}
	for rel, content := range testutil.Earthpress() {
		tree["records/"+rel] = content
	}
	base := testutil.WriteRecordTree(t, tree)

	cfg := config.Default()
	cfg.Paths.BaseDir = base
	cfg.Telemetry.Environment = "test"
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	application, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = application.OTelProviders.Shutdown(context.Background())
	})
	return application
}

func serve(t *testing.T, application *Application, method, path string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	application.Router.ServeHTTP(rec, req)
	return rec
}

func accept(v string) http.Header {
	return http.Header{"Accept": {v}}
}

func TestNew(t *testing.T) {
	application := newTestApp(t, testConfig(t))

	assert.NotNil(t, application.Router)
	assert.NotNil(t, application.Server)
	assert.NotNil(t, application.Services.Resolver)
	assert.NotNil(t, application.Services.Health)
	assert.Equal(t, ":8000", application.Server.Addr)
	assert.Equal(t, filepath.Join(application.Paths.BaseDir, "records"), application.Store.Root())
}

func TestNew_MissingRecordsDir(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()
	logger, _ := testutil.NewTestLogger(t)

	_, err := New(cfg, logger)

	require.Error(t, err)
	var appErr *apierrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apierrors.ErrTypeConfig, appErr.Type)
}

func TestNew_BadTemplatesDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paths.TemplatesDir = "templates"
	require.NoError(t, os.MkdirAll(filepath.Join(cfg.Paths.BaseDir, "templates"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Paths.BaseDir, "templates", "record.html"), []byte("{{.Broken"), 0644))
	logger, _ := testutil.NewTestLogger(t)

	_, err := New(cfg, logger)
	assert.Error(t, err)
}

func TestRouter(t *testing.T) {
	application := newTestApp(t, testConfig(t))

	t.Run("record as json-ld", func(t *testing.T) {
		rec := serve(t, application, http.MethodGet, "/earthpress/tartarian-world", accept("application/ld+json"))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/ld+json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"@context":"https://openindex.id/contexts/work.jsonld","openindex":"oi:earthpress/tartarian-world","type":"Work","title":"The Tartarian World"}`, rec.Body.String())
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("namespace html with trailing slash", func(t *testing.T) {
		rec := serve(t, application, http.MethodGet, "/earthpress/", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "<h1>Earthpress</h1>")
	})

	t.Run("head", func(t *testing.T) {
		rec := serve(t, application, http.MethodHead, "/earthpress", accept("application/json"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Empty(t, rec.Body.Bytes())
	})

	t.Run("context document", func(t *testing.T) {
		rec := serve(t, application, http.MethodGet, "/contexts/work.jsonld", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/ld+json", rec.Header().Get("Content-Type"))
	})

	t.Run("static asset", func(t *testing.T) {
		rec := serve(t, application, http.MethodGet, "/static/style.css", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "body{margin:0}", rec.Body.String())
	})

	t.Run("health", func(t *testing.T) {
		rec := serve(t, application, http.MethodGet, config.HealthEndpoint+"/ready", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "ready", body["status"])
	})

	t.Run("metrics", func(t *testing.T) {
		rec := serve(t, application, http.MethodGet, config.MetricsEndpoint, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "go_goroutines")
	})

	t.Run("record not found", func(t *testing.T) {
		rec := serve(t, application, http.MethodGet, "/earthpress/missing", accept("application/json"))

		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, apierrors.ContentType, rec.Header().Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Record not found", body["detail"])
		assert.Equal(t, rec.Header().Get("X-Request-ID"), body["trace_id"])
	})

	t.Run("unrouted path", func(t *testing.T) {
		rec := serve(t, application, http.MethodGet, "/a/b/c", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, apierrors.ContentType, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), `"error_code":"NOT_FOUND"`)
	})

	t.Run("regular file as namespace", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(application.Store.Root(), "README"), []byte("notes"), 0644))

		rec := serve(t, application, http.MethodGet, "/README", accept("application/json"))
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Namespace not found")
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := serve(t, application, http.MethodPost, "/earthpress", nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("ops prefix is not a namespace", func(t *testing.T) {
		rec := serve(t, application, http.MethodGet, "/_api/earthpress", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRouter_Compression(t *testing.T) {
	application := newTestApp(t, testConfig(t))

	rec := serve(t, application, http.MethodGet, "/earthpress", http.Header{
		"Accept":          {"application/ld+json"},
		"Accept-Encoding": {"gzip"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, "Collection", doc["@type"])
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Security.RateLimit.Enabled = true
	cfg.Security.RateLimit.RPS = 0.001
	cfg.Security.RateLimit.Burst = 1
	application := newTestApp(t, cfg)

	first := serve(t, application, http.MethodGet, "/earthpress", nil)
	second := serve(t, application, http.MethodGet, "/earthpress", nil)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestRouter_CORSDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Security.EnableCORS = false
	application := newTestApp(t, cfg)

	rec := serve(t, application, http.MethodGet, "/earthpress", http.Header{"Origin": {"https://elsewhere.example"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestApplication_RunStopsOnCancel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 5 * time.Second
	application := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
