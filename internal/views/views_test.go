package views

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openindex/internal/records"
	"openindex/internal/shared/testutil"
)

func earthpressPage() NamespacePage {
	return NamespacePage{
		Request:   httptest.NewRequest(http.MethodGet, "/earthpress", nil),
		Base:      "/earthpress",
		Namespace: records.Record{"openindex": "oi:earthpress", "name": "Earthpress"},
		Records: []records.Entry{
			{Slug: "note", Record: records.Record{"openindex": "oi:earthpress/note"}},
			{Slug: "tartarian-world", Record: records.Record{"title": "The Tartarian World", "type": "Work"}},
		},
	}
}

func TestRenderer_EmbeddedNamespace(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	r, err := NewRenderer("", logger)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, NamespaceTemplate, earthpressPage()))

	html := buf.String()
	assert.Contains(t, html, "<h1>Earthpress</h1>")
	assert.Contains(t, html, `href="/earthpress/tartarian-world"`)
	assert.Contains(t, html, "The Tartarian World")
	assert.Contains(t, html, `href="/earthpress/note"`)
	assert.Contains(t, html, "oi:earthpress")
}

func TestRenderer_EmbeddedRecord(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	r, err := NewRenderer("", logger)
	require.NoError(t, err)

	var buf bytes.Buffer
	err = r.Render(&buf, RecordTemplate, RecordPage{
		Namespace: "earthpress",
		Slug:      "tartarian-world",
		Record: records.Record{
			"openindex": "oi:earthpress/tartarian-world",
			"type":      "Work",
			"title":     "<The Tartarian World>",
		},
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "&lt;The Tartarian World&gt;")
	assert.NotContains(t, html, "<The Tartarian World>")
	assert.Contains(t, html, `<a href="/earthpress">earthpress</a>`)
	assert.NotContains(t, html, "alternate", "no request, no alternate link")
}

func TestRenderer_UnknownTemplateWritesNothing(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	r, err := NewRenderer("", logger)
	require.NoError(t, err)

	var buf bytes.Buffer
	assert.Error(t, r.Render(&buf, "missing.html", nil))
	assert.Zero(t, buf.Len())
}

func TestRenderer_Overrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, RecordTemplate),
		[]byte(`custom {{.Record.title}}`), 0644))

	logger, _ := testutil.NewTestLogger(t)
	r, err := NewRenderer(dir, logger)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, RecordTemplate, RecordPage{Record: records.Record{"title": "X"}}))
	assert.Equal(t, "custom X", buf.String())

	buf.Reset()
	require.NoError(t, r.Render(&buf, NamespaceTemplate, earthpressPage()))
	assert.Contains(t, buf.String(), "<h1>Earthpress</h1>", "non-overridden templates stay embedded")
}

func TestRenderer_BrokenOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, RecordTemplate), []byte(`{{.Record.title`), 0644))

	logger, _ := testutil.NewTestLogger(t)
	_, err := NewRenderer(dir, logger)
	assert.Error(t, err)
}

func TestRenderer_ReloadKeepsPreviousOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, RecordTemplate)
	require.NoError(t, os.WriteFile(path, []byte(`v1`), 0644))

	logger, _ := testutil.NewTestLogger(t)
	r, err := NewRenderer(dir, logger)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte(`{{if}}`), 0644))
	assert.Error(t, r.Reload())

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, RecordTemplate, nil))
	assert.Equal(t, "v1", buf.String())
}

func TestRenderer_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, RecordTemplate)
	require.NoError(t, os.WriteFile(path, []byte(`v1`), 0644))

	logger, logs := testutil.NewTestLogger(t)
	r, err := NewRenderer(dir, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx) }()

	require.Eventually(t, func() bool { return logs.ContainsMessage("watching templates") },
		2*time.Second, 10*time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`v2`), 0644))

	assert.Eventually(t, func() bool {
		var buf bytes.Buffer
		return r.Render(&buf, RecordTemplate, nil) == nil && strings.TrimSpace(buf.String()) == "v2"
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestRenderer_WatchWithoutDir(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	r, err := NewRenderer("", logger)
	require.NoError(t, err)

	assert.NoError(t, r.Watch(context.Background()))
}
