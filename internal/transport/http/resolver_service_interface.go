package http

import (
	"context"

	"openindex/internal/services"
)

// ResolverServiceInterface defines the resolution operations the handlers use
type ResolverServiceInterface interface {
	ResolveNamespace(ctx context.Context, namespace string) (*services.NamespaceView, error)
	ResolveRecord(ctx context.Context, namespace, slug string) (*services.RecordView, error)
}
