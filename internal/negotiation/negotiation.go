// Package negotiation picks the response representation from an Accept
// header.
//
// Matching is by substring in a fixed order, with no q-value parsing:
// application/ld+json, then application/json, then HTML for everything
// else (including a missing header and */*).
package negotiation

import (
	"net/http"
	"strings"
)

// Representation is one of the shapes a resolved resource can take
type Representation string

const (
	HTML   Representation = "html"
	JSON   Representation = "json"
	JSONLD Representation = "jsonld"
)

// Info describes a representation
type Info struct {
	Name        Representation
	MediaType   string
	Description string
}

// registry is fixed at init and only exposed through Lookup
var registry = map[Representation]Info{
	HTML: {
		Name:        HTML,
		MediaType:   "text/html; charset=utf-8",
		Description: "Human-readable page",
	},
	JSON: {
		Name:        JSON,
		MediaType:   "application/json",
		Description: "The stored JSON object, unmodified",
	},
	JSONLD: {
		Name:        JSONLD,
		MediaType:   "application/ld+json",
		Description: "JSON-LD - JSON for Linked Data",
	},
}

// Select maps an Accept header value to a representation.
// "application/ld+json" is checked first: it does not contain the
// substring "application/json", but a header listing both must still
// yield JSON-LD.
func Select(accept string) Representation {
	switch {
	case strings.Contains(accept, "application/ld+json"):
		return JSONLD
	case strings.Contains(accept, "application/json"):
		return JSON
	default:
		return HTML
	}
}

// FromRequest selects the representation for r
func FromRequest(r *http.Request) Representation {
	return Select(r.Header.Get("Accept"))
}

// Lookup returns the metadata for rep
func Lookup(rep Representation) (Info, bool) {
	info, ok := registry[rep]
	return info, ok
}

// MediaType returns the Content-Type for rep, defaulting to HTML
func (rep Representation) MediaType() string {
	if info, ok := Lookup(rep); ok {
		return info.MediaType
	}
	return registry[HTML].MediaType
}

// String implements fmt.Stringer
func (rep Representation) String() string {
	return string(rep)
}
