package driven

import (
	"context"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
)

// Record is one stored entry of a collection: a key, an optional
// similarity score (populated by search results only) and the flat
// payload fields. The domain codec maps payloads to typed entities.
type Record struct {
	// Key identifies the record within its collection.
	Key string

	// Score is the backend-reported similarity, search results only.
	Score float64

	// Fields is the flat payload.
	Fields map[string]any
}

// Filter restricts a similarity search to records with matching
// payload fields. Matching is exact and case-insensitive. A nil filter
// means no restriction.
type Filter struct {
	// WorkTitle restricts to records whose nested work title matches.
	WorkTitle string

	// WorkAuthor restricts to records whose nested work author matches.
	WorkAuthor string

	// DocumentID restricts to records of one document.
	DocumentID string
}

// IsZero reports whether the filter restricts nothing.
func (f *Filter) IsZero() bool {
	return f == nil || (f.WorkTitle == "" && f.WorkAuthor == "" && f.DocumentID == "")
}

// StoreCapabilities describes what the connected backend can do.
// Some backend versions silently no-op server-side payload filters
// inside similarity queries; the capability makes that explicit so the
// searchers decide up front whether to post-filter client-side.
type StoreCapabilities struct {
	// ServerSideFilters is true when the backend applies Filter inside
	// the similarity query itself.
	ServerSideFilters bool
}

// LibraryStore is the opaque vector-search backend holding the four
// entity collections. Implementations embed query text themselves where
// the backend does not. Connections are scoped: acquire, use, Close on
// every exit path.
type LibraryStore interface {
	// SimilaritySearch returns up to limit records of the collection
	// ranked by descending similarity to the query text. Ties keep the
	// backend's order. When the backend cannot filter server-side the
	// filter argument is ignored and the caller post-filters.
	SimilaritySearch(ctx context.Context, collection domain.Collection, query string, limit int, filter *Filter) ([]Record, error)

	// FetchByKey returns the record with the given key, or
	// domain.ErrNotFound.
	FetchByKey(ctx context.Context, collection domain.Collection, key string) (*Record, error)

	// FetchAll returns up to limit records in insertion order; a
	// non-positive limit returns everything.
	FetchAll(ctx context.Context, collection domain.Collection, limit int) ([]Record, error)

	// Count returns the number of records in the collection.
	Count(ctx context.Context, collection domain.Collection) (int, error)

	// Insert stores a new record and returns its key. A record with
	// the same key already present yields domain.ErrAlreadyExists; the
	// store's uniqueness guarantee is what resolves racing canonical
	// inserts.
	Insert(ctx context.Context, collection domain.Collection, rec Record) (string, error)

	// Capabilities reports what the connected backend supports.
	Capabilities(ctx context.Context) (StoreCapabilities, error)

	// Close releases the connection.
	Close() error
}
