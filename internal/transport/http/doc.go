// Package http implements the resolver's HTTP handlers. Handlers stay thin:
// they read URL parameters and the Accept header, call the service layer
// and write the negotiated representation.
//
// # Routes
//
//	GET /{namespace}           namespace descriptor and records
//	GET /{namespace}/{slug}    a single record
//	GET /contexts/*            JSON-LD context documents
//	GET /static/*              stylesheets and images
//	GET /_api/health[/ready|/live], /_api/version
//
// # Representations
//
// The representation is chosen by the negotiation package from the Accept
// header. JSON bodies are the stored objects; JSON-LD bodies carry an
// @context; anything else gets the HTML page. Every negotiated response
// carries Vary: Accept.
//
// # Error Handling
//
// Errors are converted by errors.ErrorHandler into RFC 7807 problem
// details:
//
//	{
//	    "type": "/errors/not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "Record not found",
//	    "instance": "/earthpress/missing",
//	    "trace_id": "6f1c..."
//	}
//
// Malformed records produce an opaque 500; the cause is only logged.
package http
