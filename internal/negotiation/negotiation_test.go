package negotiation

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name   string
		accept string
		want   Representation
	}{
		{"absent", "", HTML},
		{"browser", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8", HTML},
		{"wildcard", "*/*", HTML},
		{"plain text", "text/plain", HTML},
		{"json", "application/json", JSON},
		{"json with params", "application/json; charset=utf-8", JSON},
		{"json-ld", "application/ld+json", JSONLD},
		{"json-ld with profile", `application/ld+json; profile="http://www.w3.org/ns/json-ld#compacted"`, JSONLD},
		{"both, json first", "application/json, application/ld+json", JSONLD},
		{"both, json-ld first", "application/ld+json, application/json", JSONLD},
		{"q-values ignored", "application/json;q=0.1, application/ld+json;q=0", JSONLD},
		{"case sensitive", "Application/JSON", HTML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Select(tt.accept))
		})
	}
}

func TestFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/earthpress", nil)
	assert.Equal(t, HTML, FromRequest(r))

	r.Header.Set("Accept", "application/ld+json")
	assert.Equal(t, JSONLD, FromRequest(r))
}

func TestMediaType(t *testing.T) {
	assert.Equal(t, "text/html; charset=utf-8", HTML.MediaType())
	assert.Equal(t, "application/json", JSON.MediaType())
	assert.Equal(t, "application/ld+json", JSONLD.MediaType())
	assert.Equal(t, "text/html; charset=utf-8", Representation("xml").MediaType())
}

func TestLookup(t *testing.T) {
	info, ok := Lookup(JSONLD)
	require.True(t, ok)
	assert.Equal(t, JSONLD, info.Name)
	assert.Equal(t, "application/ld+json", info.MediaType)

	info.MediaType = "text/plain"
	assert.Equal(t, "application/ld+json", JSONLD.MediaType(), "lookups return copies")

	_, ok = Lookup(Representation("xml"))
	assert.False(t, ok)
}
