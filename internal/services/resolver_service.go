package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"openindex/internal/infrastructure"
	"openindex/internal/jsonld"
	"openindex/internal/negotiation"
	"openindex/internal/records"
)

// RecordStore is the storage the resolver reads from
type RecordStore interface {
	LoadNamespace(ctx context.Context, namespace string) (records.Record, error)
	LoadRecord(ctx context.Context, namespace, slug string) (records.Entry, error)
	ListRecords(ctx context.Context, namespace string) ([]records.Entry, error)
}

// NamespaceView is a resolved namespace
type NamespaceView struct {
	Name      string
	Namespace records.Record
	Records   []records.Entry
}

// RecordView is a resolved record. Raw is the stored object when the
// store kept it.
type RecordView struct {
	Namespace string
	Slug      string
	Record    records.Record
	Raw       json.RawMessage
}

// ResolverService resolves namespaces and records
type ResolverService struct {
	store  RecordStore
	logger *slog.Logger
	tracer trace.Tracer
}

// NewResolverService creates a resolver over store
func NewResolverService(store RecordStore, logger *slog.Logger) *ResolverService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &ResolverService{
		store:  store,
		logger: logger.With(slog.String("service", "resolver")),
		tracer: otel.Tracer("openindex/services"),
	}
}

// ResolveNamespace loads the namespace descriptor and its records.
// Records that fail to load are left out; a descriptor that fails to
// load fails the whole resolution.
func (s *ResolverService) ResolveNamespace(ctx context.Context, namespace string) (*NamespaceView, error) {
	ctx, span := s.tracer.Start(ctx, "ResolveNamespace",
		trace.WithAttributes(attribute.String("namespace", namespace)))
	defer span.End()

	descriptor, err := s.store.LoadNamespace(ctx, namespace)
	if err != nil {
		return nil, s.fail(ctx, span, err, ErrNamespaceNotFound, "namespace", namespace)
	}

	entries, err := s.store.ListRecords(ctx, namespace)
	if err != nil {
		return nil, s.fail(ctx, span, err, ErrNamespaceNotFound, "namespace", namespace)
	}

	span.SetAttributes(attribute.Int("records", len(entries)))
	s.logger.DebugContext(ctx, "namespace resolved",
		slog.String("namespace", namespace),
		slog.Int("records", len(entries)))

	return &NamespaceView{
		Name:      namespace,
		Namespace: descriptor,
		Records:   entries,
	}, nil
}

// ResolveRecord loads a single record. Missing and empty records are
// ErrRecordNotFound; undecodable ones are returned as errors.
func (s *ResolverService) ResolveRecord(ctx context.Context, namespace, slug string) (*RecordView, error) {
	ctx, span := s.tracer.Start(ctx, "ResolveRecord",
		trace.WithAttributes(
			attribute.String("namespace", namespace),
			attribute.String("slug", slug)))
	defer span.End()

	entry, err := s.store.LoadRecord(ctx, namespace, slug)
	if err != nil {
		return nil, s.fail(ctx, span, err, ErrRecordNotFound, "record", namespace+"/"+slug)
	}

	return &RecordView{
		Namespace: namespace,
		Slug:      slug,
		Record:    entry.Record,
		Raw:       entry.Raw,
	}, nil
}

// fail maps a store error to notFound when the item is missing, and wraps
// it otherwise
func (s *ResolverService) fail(ctx context.Context, span trace.Span, err, notFound error, kind, id string) error {
	if errors.Is(err, records.ErrNotFound) {
		span.SetStatus(codes.Error, "not found")
		return fmt.Errorf("%s %q: %w", kind, id, notFound)
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.logger.ErrorContext(ctx, "resolution failed",
		slog.String("kind", kind),
		slog.String("id", id),
		slog.String("error", err.Error()))
	return fmt.Errorf("resolve %s %q: %w", kind, id, err)
}

// Document returns the namespace body for rep, or nil for HTML
func (v *NamespaceView) Document(rep negotiation.Representation) any {
	switch rep {
	case negotiation.JSON:
		return map[string]any{
			"namespace": v.Namespace,
			"records":   v.RecordObjects(),
		}
	case negotiation.JSONLD:
		return jsonld.Collection(v.Namespace, v.Records)
	default:
		return nil
	}
}

// RecordObjects returns the loaded records in slug order, as stored
func (v *NamespaceView) RecordObjects() []any {
	out := make([]any, 0, len(v.Records))
	for _, e := range v.Records {
		out = append(out, stored(e.Record, e.Raw))
	}
	return out
}

// Document returns the record body for rep, or nil for HTML. The JSON
// body is the stored object itself; JSON-LD gets a copy with "@context"
// first.
func (v *RecordView) Document(rep negotiation.Representation) any {
	switch rep {
	case negotiation.JSON:
		return stored(v.Record, v.Raw)
	case negotiation.JSONLD:
		if doc, ok := jsonld.WithContextRaw(v.Record, v.Raw); ok {
			return doc
		}
		return jsonld.WithContext(v.Record)
	default:
		return nil
	}
}

// stored prefers the bytes a record was decoded from, which keep its
// member order
func stored(record records.Record, raw json.RawMessage) any {
	if len(raw) > 0 {
		return raw
	}
	return record
}
