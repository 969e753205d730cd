package http

import (
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	apierrors "openindex/internal/errors"
)

// mediaTypes overrides the stdlib guess for extensions it does not know
var mediaTypes = map[string]string{
	".jsonld": "application/ld+json",
	".json":   "application/json",
	".ico":    "image/x-icon",
}

// StaticHandler serves regular files from a directory. Directories,
// dotfiles and missing files are 404s; there are no listings.
type StaticHandler struct {
	fsys         fs.FS
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewStaticHandler creates a handler over dir. dir need not exist yet.
func NewStaticHandler(dir string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *StaticHandler {
	return &StaticHandler{
		fsys:         os.DirFS(dir),
		logger:       logger.With(slog.String("handler", "static"), slog.String("dir", dir)),
		errorHandler: errorHandler,
	}
}

// ServeHTTP serves the file named by the route's wildcard
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, chi.URLParam(r, "*"))
}

// File returns a handler that always serves name, e.g. favicon.ico
func (h *StaticHandler) File(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.serve(w, r, name)
	}
}

func (h *StaticHandler) serve(w http.ResponseWriter, r *http.Request, name string) {
	name = strings.TrimPrefix(name, "/")
	if !fs.ValidPath(name) || name == "." || hidden(name) {
		h.errorHandler.NotFound(w, r)
		return
	}

	info, err := fs.Stat(h.fsys, name)
	if err != nil || !info.Mode().IsRegular() {
		h.logger.DebugContext(r.Context(), "static file not served", slog.String("name", name))
		h.errorHandler.NotFound(w, r)
		return
	}

	if ct, ok := mediaTypes[path.Ext(name)]; ok {
		w.Header().Set("Content-Type", ct)
	}
	http.ServeFileFS(w, r, h.fsys, name)
}

func hidden(name string) bool {
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
