package http

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "openindex/internal/errors"
	"openindex/internal/shared/testutil"
)

func newStaticRouter(t *testing.T) (http.Handler, string) {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"work.jsonld":       `{"@context":{"title":"http://purl.org/dc/terms/title"}}`,
		"style.css":         "body{margin:0}",
		"favicon.ico":       "ico",
		".secret":           "hidden",
		"nested/inner.json": `{"ok":true}`,
	}
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	logger, _ := testutil.NewTestLogger(t)
	h := NewStaticHandler(dir, logger, apierrors.NewErrorHandler(logger, false))

	r := chi.NewRouter()
	r.Handle("/contexts/*", h)
	r.Get("/favicon.ico", h.File("favicon.ico"))
	return r, dir
}

func TestStaticHandler(t *testing.T) {
	router, _ := newStaticRouter(t)

	tests := []struct {
		name        string
		path        string
		wantStatus  int
		contentType string
		body        string
	}{
		{"jsonld context", "/contexts/work.jsonld", http.StatusOK, "application/ld+json", `{"@context":{"title":"http://purl.org/dc/terms/title"}}`},
		{"stylesheet", "/contexts/style.css", http.StatusOK, "text/css; charset=utf-8", "body{margin:0}"},
		{"nested file", "/contexts/nested/inner.json", http.StatusOK, "application/json", `{"ok":true}`},
		{"fixed file", "/favicon.ico", http.StatusOK, "image/x-icon", "ico"},
		{"missing file", "/contexts/nope.jsonld", http.StatusNotFound, "", ""},
		{"directory", "/contexts/nested", http.StatusNotFound, "", ""},
		{"root has no listing", "/contexts/", http.StatusNotFound, "", ""},
		{"dotfile", "/contexts/.secret", http.StatusNotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, router, tt.path, "")

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				assert.Equal(t, "The requested resource was not found", decodeBody(t, rec)["detail"])
				return
			}
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func TestStaticHandler_MissingDirectory(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	h := NewStaticHandler(filepath.Join(t.TempDir(), "absent"), logger, apierrors.NewErrorHandler(logger, false))

	r := chi.NewRouter()
	r.Handle("/static/*", h)

	rec := get(t, r, "/static/style.css", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticHandler_ConditionalGet(t *testing.T) {
	router, dir := newStaticRouter(t)

	info, err := os.Stat(filepath.Join(dir, "work.jsonld"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/contexts/work.jsonld", nil)
	req.Header.Set("If-Modified-Since", info.ModTime().UTC().Add(time.Second).Format(http.TimeFormat))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotModified, rec.Code)
}
