// Package jsonld maps record types to JSON-LD context URLs and builds the
// JSON-LD documents served for records and namespaces.
package jsonld

import (
	"bytes"
	"encoding/json"
	"maps"

	"openindex/internal/records"
)

// NamespaceKey is the lookup key for namespace documents
const NamespaceKey = "namespace"

// contexts is fixed at init and only exposed through lookups
var contexts = map[string]string{
	NamespaceKey:    "https://openindex.id/contexts/namespace.jsonld",
	"Work":          "https://openindex.id/contexts/work.jsonld",
	"Edition":       "https://openindex.id/contexts/edition.jsonld",
	"DigitalObject": "https://openindex.id/contexts/digital-object.jsonld",
}

// ContextFor returns the context URL for a record type or NamespaceKey
func ContextFor(key string) (string, bool) {
	url, ok := contexts[key]
	return url, ok
}

// ContextForRecord looks up the record's "type". Non-string types have no
// context.
func ContextForRecord(record records.Record) (string, bool) {
	t, ok := record["type"].(string)
	if !ok {
		return "", false
	}
	return ContextFor(t)
}

// Contexts returns a copy of the mapping
func Contexts() map[string]string {
	return maps.Clone(contexts)
}

// WithContext returns a deep copy of record with "@context" set when the
// record's type is known. record itself is never modified.
func WithContext(record records.Record) records.Record {
	out := deepCopyMap(record)
	if url, ok := ContextForRecord(record); ok {
		out["@context"] = url
	}
	return out
}

// WithContextRaw is WithContext over the stored bytes of record: "@context"
// becomes the first member and the stored members follow in their original
// order. ok is false when raw cannot be spliced, e.g. the record already
// carries "@context"; callers then fall back to WithContext.
func WithContextRaw(record records.Record, raw json.RawMessage) (json.RawMessage, bool) {
	body := bytes.TrimSpace(raw)
	if len(record) == 0 || len(body) < 2 || body[0] != '{' {
		return nil, false
	}

	url, ok := ContextForRecord(record)
	if !ok {
		return body, true
	}
	if _, exists := record["@context"]; exists {
		return nil, false
	}

	value, err := json.Marshal(url)
	if err != nil {
		return nil, false
	}

	var buf bytes.Buffer
	buf.Grow(len(body) + len(value) + 14)
	buf.WriteString(`{"@context":`)
	buf.Write(value)
	buf.WriteByte(',')
	buf.Write(body[1:])
	return buf.Bytes(), true
}

// Collection builds the JSON-LD document for a namespace. Missing fields
// encode as null.
func Collection(namespace records.Record, entries []records.Entry) map[string]any {
	parts := make([]any, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, e.Record["openindex"])
	}

	url, _ := ContextFor(NamespaceKey)
	return map[string]any{
		"@context": url,
		"@id":      namespace["openindex"],
		"@type":    "Collection",
		"name":     namespace["name"],
		"hasPart":  parts,
	}
}

func deepCopyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+1)
	for k, v := range m {
		out[k] = deepCopy(v)
	}
	return out
}

func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case records.Record:
		return records.Record(deepCopyMap(val))
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopy(item)
		}
		return out
	default:
		return val
	}
}
