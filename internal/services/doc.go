// Package services implements the resolver's business logic between the
// HTTP handlers and the record store.
//
// ResolverService turns a namespace or namespace/slug pair into a view and
// shapes that view into the JSON or JSON-LD document for a representation.
// HTML is left to the views package. Both the HTTP transport and the CLI
// resolve through the same service, so a record looks the same whichever
// way it is fetched.
//
// HealthService reports liveness, readiness and version information for
// the operational endpoints.
//
// Services receive their dependencies through constructors:
//
//	store := records.NewStore(paths.RecordsDir, logger, metrics)
//	resolver := services.NewResolverService(store, logger)
//	view, err := resolver.ResolveRecord(ctx, "earthpress", "tartarian-world")
package services
