package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	apierrors "openindex/internal/errors"
	"openindex/internal/infrastructure"
	"openindex/internal/negotiation"
	"openindex/internal/records"
	"openindex/internal/views"
)

// Resolution outcomes recorded in metrics
const (
	outcomeOK       = "ok"
	outcomeNotFound = "not_found"
	outcomeError    = "error"
)

// ResolverHandler serves namespaces and records
type ResolverHandler struct {
	service      ResolverServiceInterface
	renderer     *views.Renderer
	metrics      *infrastructure.Metrics
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewResolverHandler creates a new resolver handler. metrics may be nil.
func NewResolverHandler(service ResolverServiceInterface, renderer *views.Renderer, metrics *infrastructure.Metrics, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ResolverHandler {
	return &ResolverHandler{
		service:      service,
		renderer:     renderer,
		metrics:      metrics,
		logger:       logger.With(slog.String("handler", "resolver")),
		errorHandler: errorHandler,
	}
}

// RegisterRoutes adds the namespace and record routes to r
func (h *ResolverHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{namespace}", h.Namespace)
	r.Get("/{namespace}/{slug}", h.Record)
}

// Namespace handles GET /{namespace}
func (h *ResolverHandler) Namespace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	namespace := chi.URLParam(r, "namespace")
	rep := negotiation.FromRequest(r)
	w.Header().Add("Vary", "Accept")

	view, err := h.service.ResolveNamespace(ctx, namespace)
	if err != nil {
		h.metrics.RecordResolution(ctx, "namespace", rep.String(), outcome(err))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	page := views.NamespacePage{
		Request:   r,
		Base:      "/" + namespace,
		Namespace: view.Namespace,
		Records:   view.Records,
	}
	if err := h.respond(w, r, rep, views.NamespaceTemplate, page, view.Document(rep)); err != nil {
		h.metrics.RecordResolution(ctx, "namespace", rep.String(), outcomeError)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.metrics.RecordResolution(ctx, "namespace", rep.String(), outcomeOK)
}

// Record handles GET /{namespace}/{slug}
func (h *ResolverHandler) Record(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	namespace := chi.URLParam(r, "namespace")
	slug := chi.URLParam(r, "slug")
	rep := negotiation.FromRequest(r)
	w.Header().Add("Vary", "Accept")

	view, err := h.service.ResolveRecord(ctx, namespace, slug)
	if err != nil {
		h.metrics.RecordResolution(ctx, "record", rep.String(), outcome(err))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	page := views.RecordPage{
		Request:   r,
		Namespace: namespace,
		Slug:      slug,
		Record:    view.Record,
	}
	if err := h.respond(w, r, rep, views.RecordTemplate, page, view.Document(rep)); err != nil {
		h.metrics.RecordResolution(ctx, "record", rep.String(), outcomeError)
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.metrics.RecordResolution(ctx, "record", rep.String(), outcomeOK)
}

// respond writes the page for HTML and doc otherwise. Nothing is written
// when it returns an error.
func (h *ResolverHandler) respond(w http.ResponseWriter, r *http.Request, rep negotiation.Representation, tmpl string, page, doc any) error {
	var buf bytes.Buffer

	if rep == negotiation.HTML {
		if err := h.renderer.Render(&buf, tmpl, page); err != nil {
			return err
		}
	} else {
		if err := EncodeJSON(&buf, doc); err != nil {
			return err
		}
	}

	w.Header().Set("Content-Type", rep.MediaType())
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return nil
	}
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.DebugContext(r.Context(), "client went away", slog.String("error", err.Error()))
	}
	return nil
}

// EncodeJSON writes v without HTML escaping, one document per call
func EncodeJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func outcome(err error) string {
	if errors.Is(err, records.ErrNotFound) {
		return outcomeNotFound
	}
	return outcomeError
}
