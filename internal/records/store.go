package records

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	apperrors "openindex/internal/errors"
	"openindex/internal/infrastructure"
)

// Sentinel errors
var (
	ErrNotFound  = errors.New("not found")
	ErrMalformed = errors.New("malformed JSON object")
)

const (
	descriptorName = "_namespace.json"
	recordExt      = ".json"
)

// Record is a decoded JSON object. Numbers are kept as json.Number so
// they re-encode exactly as stored.
type Record map[string]any

// Entry is a record together with the slug it was loaded from. Raw holds
// the stored bytes so the record can be served with its member order.
type Entry struct {
	Slug   string
	Record Record
	Raw    json.RawMessage
}

// Store reads records beneath a root directory
type Store struct {
	root    string
	fsys    fs.FS
	logger  *slog.Logger
	metrics *infrastructure.Metrics
}

// NewStore creates a Store rooted at root. metrics may be nil.
func NewStore(root string, logger *slog.Logger, metrics *infrastructure.Metrics) *Store {
	return &Store{
		root:    root,
		fsys:    os.DirFS(root),
		logger:  infrastructure.WithComponent(logger, "records"),
		metrics: metrics,
	}
}

// Root returns the directory the store reads from
func (s *Store) Root() string {
	return s.root
}

// LoadNamespace loads the namespace descriptor. Only a missing descriptor
// is ErrNotFound; a blank or null one loads as an empty Record.
func (s *Store) LoadNamespace(ctx context.Context, namespace string) (Record, error) {
	if !ValidNamespace(namespace) {
		return nil, fmt.Errorf("namespace %q: %w", namespace, ErrNotFound)
	}

	start := time.Now()
	defer func() { s.metrics.RecordLoad(ctx, "namespace", time.Since(start)) }()

	descriptor, _, err := s.LoadJSON(ctx, path.Join(namespace, descriptorName))
	if err != nil {
		return nil, err
	}
	if descriptor == nil {
		descriptor = Record{}
	}
	return descriptor, nil
}

// LoadRecord loads {namespace}/{slug}.json. Empty records are ErrNotFound.
func (s *Store) LoadRecord(ctx context.Context, namespace, slug string) (Entry, error) {
	if !ValidNamespace(namespace) || !ValidSlug(slug) {
		return Entry{}, fmt.Errorf("record %q/%q: %w", namespace, slug, ErrNotFound)
	}

	start := time.Now()
	defer func() { s.metrics.RecordLoad(ctx, "record", time.Since(start)) }()

	return s.loadEntry(ctx, namespace, slug)
}

func (s *Store) loadEntry(ctx context.Context, namespace, slug string) (Entry, error) {
	name := path.Join(namespace, slug+recordExt)
	record, raw, err := s.LoadJSON(ctx, name)
	if err != nil {
		return Entry{}, err
	}
	if len(record) == 0 {
		return Entry{}, fmt.Errorf("%s is empty: %w", name, ErrNotFound)
	}
	return Entry{Slug: slug, Record: record, Raw: raw}, nil
}

// LoadJSON reads and decodes the JSON object at name, a slash-separated
// path relative to the root, and returns it with the bytes it was decoded
// from. A missing file, or a path through something that is not a
// directory, yields ErrNotFound. Blank files and null decode to a nil
// Record. Anything that is not a single JSON object yields an error
// wrapping ErrMalformed.
func (s *Store) LoadJSON(ctx context.Context, name string) (Record, json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		if isMissing(err) {
			return nil, nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, nil, apperrors.NewStorageError(fmt.Sprintf("failed to read %s", name), err).
			WithContext("file", name)
	}

	record, err := decode(data)
	if err != nil {
		return nil, nil, apperrors.NewParsingError(
			fmt.Sprintf("%s is not a JSON object", name),
			fmt.Errorf("%w: %w", ErrMalformed, err)).
			WithContext("file", name)
	}
	if record == nil {
		return nil, nil, nil
	}

	return record, json.RawMessage(data), nil
}

// isMissing reports whether a read failed because nothing is at the path.
// ENOTDIR covers a namespace segment that names a regular file.
func isMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrInvalid) ||
		errors.Is(err, syscall.ENOTDIR)
}

// decode parses data as a single JSON object. Blank input and null decode
// to a nil Record.
func decode(data []byte) (Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("trailing data after JSON value")
	}

	switch obj := v.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return Record(obj), nil
	default:
		return nil, fmt.Errorf("top-level value is %T, not an object", v)
	}
}

// ListRecords loads every record file in the namespace directory except
// the descriptor, sorted by slug. Files that are empty or cannot be
// decoded are skipped.
func (s *Store) ListRecords(ctx context.Context, namespace string) ([]Entry, error) {
	if !ValidNamespace(namespace) {
		return nil, fmt.Errorf("namespace %q: %w", namespace, ErrNotFound)
	}

	start := time.Now()
	defer func() { s.metrics.RecordLoad(ctx, "listing", time.Since(start)) }()

	dir, err := fs.Sub(s.fsys, namespace)
	if err != nil {
		return nil, fmt.Errorf("namespace %q: %w", namespace, ErrNotFound)
	}

	names, err := doublestar.Glob(dir, "*"+recordExt, doublestar.WithFilesOnly())
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to list namespace %s", namespace), err)
	}

	entries := make([]Entry, 0, len(names))
	skipped := 0
	for _, name := range names {
		slug := strings.TrimSuffix(name, recordExt)
		if !ValidSlug(slug) {
			continue
		}

		entry, err := s.loadEntry(ctx, namespace, slug)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			skipped++
			s.logger.DebugContext(ctx, "skipping record",
				slog.String("namespace", namespace),
				slog.String("slug", slug),
				slog.String("error", err.Error()))
			continue
		}

		entries = append(entries, entry)
	}

	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Slug, b.Slug) })

	s.metrics.RecordSkipped(ctx, namespace, skipped)
	return entries, nil
}
