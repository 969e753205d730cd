// Package views renders the HTML representation of namespaces and records.
//
// The default templates are embedded in the binary. A template directory
// may replace any of them; with Watch running, edits to that directory are
// picked up without a restart.
package views

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"openindex/internal/infrastructure"
	"openindex/internal/records"
)

// Template names
const (
	NamespaceTemplate = "namespace.html"
	RecordTemplate    = "record.html"
)

//go:embed templates/*.html
var embedded embed.FS

// NamespacePage is the data passed to namespace.html
type NamespacePage struct {
	Request   *http.Request
	Base      string
	Namespace records.Record
	Records   []records.Entry
}

// RecordPage is the data passed to record.html
type RecordPage struct {
	Request   *http.Request
	Namespace string
	Slug      string
	Record    records.Record
}

// Renderer executes the HTML templates
type Renderer struct {
	mu     sync.RWMutex
	tmpl   *template.Template
	dir    string
	logger *slog.Logger
}

// NewRenderer parses the embedded templates, then overlays any *.html in
// dir. An empty dir uses the embedded set only.
func NewRenderer(dir string, logger *slog.Logger) (*Renderer, error) {
	r := &Renderer{
		dir:    dir,
		logger: infrastructure.WithComponent(logger, "views"),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-parses the templates. On error the current set is kept.
func (r *Renderer) Reload() error {
	tmpl, err := r.parse()
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.tmpl = tmpl
	r.mu.Unlock()
	return nil
}

func (r *Renderer) parse() (*template.Template, error) {
	tmpl, err := template.New("").ParseFS(embedded, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded templates: %w", err)
	}
	if r.dir == "" {
		return tmpl, nil
	}

	overrides, err := filepath.Glob(filepath.Join(r.dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("failed to list templates in %s: %w", r.dir, err)
	}
	if len(overrides) == 0 {
		return tmpl, nil
	}

	tmpl, err = tmpl.ParseFiles(overrides...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates in %s: %w", r.dir, err)
	}
	return tmpl, nil
}

// Render executes the named template into w. Output is buffered so a
// failing template writes nothing.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	r.mu.RLock()
	tmpl := r.tmpl
	r.mu.RUnlock()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}

	_, err := buf.WriteTo(w)
	return err
}

// Watch reloads the templates whenever a file in the template directory
// changes, until ctx is done. It returns immediately when no directory is
// configured.
func (r *Renderer) Watch(ctx context.Context) error {
	if r.dir == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(r.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", r.dir, err)
	}

	r.logger.InfoContext(ctx, "watching templates", slog.String("dir", r.dir))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isTemplateEvent(event) {
				continue
			}
			if err := r.Reload(); err != nil {
				r.logger.ErrorContext(ctx, "template reload failed, keeping previous set",
					slog.String("file", event.Name),
					slog.String("error", err.Error()))
				continue
			}
			r.logger.InfoContext(ctx, "templates reloaded", slog.String("file", event.Name))

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.ErrorContext(ctx, "fsnotify error", slog.String("error", err.Error()))
		}
	}
}

func isTemplateEvent(event fsnotify.Event) bool {
	if !strings.HasSuffix(event.Name, ".html") {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
