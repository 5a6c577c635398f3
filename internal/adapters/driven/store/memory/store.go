// Package memory provides an in-memory implementation of the library
// store for tests and ephemeral runs. Similarity is a deterministic
// token-overlap score, which is enough to exercise ranking, grouping
// and filtering without a real backend.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
	"github.com/athenaeum-labs/alexandria/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.LibraryStore = (*Store)(nil)

// Store is an in-memory implementation of driven.LibraryStore.
type Store struct {
	mu            sync.RWMutex
	records       map[domain.Collection][]driven.Record
	keys          map[domain.Collection]map[string]struct{}
	serverFilters bool
}

// NewStore creates an empty in-memory store. Server-side filters are
// enabled; call SetServerSideFilters(false) to exercise the client-side
// post-filter path.
func NewStore() *Store {
	return &Store{
		records:       make(map[domain.Collection][]driven.Record),
		keys:          make(map[domain.Collection]map[string]struct{}),
		serverFilters: true,
	}
}

// SetServerSideFilters toggles the advertised filter capability.
func (s *Store) SetServerSideFilters(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serverFilters = enabled
}

// SimilaritySearch ranks records of the collection by token overlap
// with the query, descending, insertion order on ties.
func (s *Store) SimilaritySearch(
	_ context.Context, collection domain.Collection, query string, limit int, filter *driven.Filter,
) ([]driven.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tokens := strings.Fields(strings.ToLower(query))
	if len(tokens) == 0 {
		return nil, nil
	}

	type scored struct {
		rec   driven.Record
		score float64
	}
	var hits []scored
	for _, rec := range s.records[collection] {
		if s.serverFilters && !matches(rec.Fields, filter) {
			continue
		}
		score := overlap(tokens, rec.Fields)
		if score == 0 {
			continue
		}
		hits = append(hits, scored{rec: rec, score: score})
	}

	// Stable sort keeps insertion order on equal scores.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]driven.Record, len(hits))
	for i, h := range hits {
		out[i] = driven.Record{Key: h.rec.Key, Score: h.score, Fields: copyFields(h.rec.Fields)}
	}
	return out, nil
}

// FetchByKey returns the record with the given key.
func (s *Store) FetchByKey(_ context.Context, collection domain.Collection, key string) (*driven.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records[collection] {
		if rec.Key == key {
			out := driven.Record{Key: rec.Key, Fields: copyFields(rec.Fields)}
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

// FetchAll returns up to limit records in insertion order.
func (s *Store) FetchAll(_ context.Context, collection domain.Collection, limit int) ([]driven.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	recs := s.records[collection]
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	out := make([]driven.Record, len(recs))
	for i, rec := range recs {
		out[i] = driven.Record{Key: rec.Key, Fields: copyFields(rec.Fields)}
	}
	return out, nil
}

// Count returns the number of records in the collection.
func (s *Store) Count(_ context.Context, collection domain.Collection) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records[collection]), nil
}

// Insert stores a new record, generating a key when none is set.
func (s *Store) Insert(_ context.Context, collection domain.Collection, rec driven.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.Key == "" {
		rec.Key = uuid.NewString()
	}
	if s.keys[collection] == nil {
		s.keys[collection] = make(map[string]struct{})
	}
	if _, exists := s.keys[collection][rec.Key]; exists {
		return "", domain.ErrAlreadyExists
	}
	s.keys[collection][rec.Key] = struct{}{}
	s.records[collection] = append(s.records[collection], driven.Record{
		Key:    rec.Key,
		Fields: copyFields(rec.Fields),
	})
	return rec.Key, nil
}

// Capabilities reports the configured filter capability.
func (s *Store) Capabilities(_ context.Context) (driven.StoreCapabilities, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return driven.StoreCapabilities{ServerSideFilters: s.serverFilters}, nil
}

// Close releases nothing; the store lives in memory.
func (s *Store) Close() error {
	return nil
}

// overlap scores a record by the fraction of query tokens found in its
// string fields.
func overlap(tokens []string, fields map[string]any) float64 {
	var sb strings.Builder
	for _, v := range fields {
		if str, ok := v.(string); ok {
			sb.WriteString(strings.ToLower(str))
			sb.WriteByte(' ')
		}
	}
	text := sb.String()

	matched := 0
	for _, tok := range tokens {
		if strings.Contains(text, tok) {
			matched++
		}
	}
	return float64(matched) / float64(len(tokens))
}

// matches applies the server-side filter semantics: exact,
// case-insensitive equality on the flattened work fields.
func matches(fields map[string]any, filter *driven.Filter) bool {
	if filter.IsZero() {
		return true
	}
	get := func(key string) string {
		v, _ := fields[key].(string)
		return v
	}
	if filter.WorkTitle != "" && !strings.EqualFold(get(domain.FieldWorkTitle), filter.WorkTitle) {
		return false
	}
	if filter.WorkAuthor != "" && !strings.EqualFold(get(domain.FieldWorkAuthor), filter.WorkAuthor) {
		return false
	}
	if filter.DocumentID != "" && get(domain.FieldDocumentID) != filter.DocumentID {
		return false
	}
	return true
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
