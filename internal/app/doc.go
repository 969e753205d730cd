// Package app wires the resolver together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Resolve and validate the record, context, static and template paths
//	2. Initialize logging and OpenTelemetry
//	3. Create the record store, the template renderer and the services
//	4. Build the chi router with the middleware chain and routes
//	5. Create the HTTP server
//
// # Usage
//
//	cfg, err := config.Load()
//	...
//	application, err := app.NewApplication(cfg)
//	...
//	if err := application.Run(ctx); err != nil {
//	    ...
//	}
//
// # Graceful Shutdown
//
// Run returns after SIGINT, SIGTERM or cancellation of its context. Active
// requests get server.shutdown_timeout to finish and telemetry is flushed.
//
// # Error Handling
//
// Initialization errors are returned to the caller; the app never calls
// os.Exit.
package app
