package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
	"github.com/athenaeum-labs/alexandria/internal/core/ports/driven"
	"github.com/athenaeum-labs/alexandria/internal/logger"
)

// ChunkSearcher performs similarity search at chunk granularity.
// Results arrive ordered by descending backend score; ties keep the
// backend's order and no secondary sort is imposed.
type ChunkSearcher struct {
	store driven.LibraryStore
}

// NewChunkSearcher creates a chunk searcher over the given store.
func NewChunkSearcher(store driven.LibraryStore) *ChunkSearcher {
	return &ChunkSearcher{store: store}
}

// Search runs one similarity query over the chunks collection. Each
// call is a fresh backend round-trip. When the backend cannot apply the
// filter server-side, the filter is applied client-side on the returned
// page only; the searcher never re-queries for more.
func (s *ChunkSearcher) Search(ctx context.Context, query string, limit int, filter *driven.Filter) ([]domain.ScoredChunk, error) {
	recs, postFilter, err := searchCollection(ctx, s.store, domain.CollectionChunks, query, limit, filter)
	if err != nil {
		return nil, fmt.Errorf("chunk search: %w", err)
	}

	results := make([]domain.ScoredChunk, 0, len(recs))
	for _, rec := range recs {
		chunk, err := domain.ChunkFromFields(rec.Key, rec.Fields)
		if err != nil {
			logger.Warn("Skipping malformed chunk record %s: %v", rec.Key, err)
			continue
		}
		if postFilter && !matchesFilter(chunk.Work, chunk.DocumentID, filter) {
			continue
		}
		results = append(results, domain.ScoredChunk{Chunk: chunk, Score: rec.Score})
	}
	return results, nil
}

// SummarySearcher performs similarity search at section granularity,
// with the same ordering and filtering contract as ChunkSearcher.
type SummarySearcher struct {
	store driven.LibraryStore
}

// NewSummarySearcher creates a summary searcher over the given store.
func NewSummarySearcher(store driven.LibraryStore) *SummarySearcher {
	return &SummarySearcher{store: store}
}

// Search runs one similarity query over the summaries collection.
func (s *SummarySearcher) Search(ctx context.Context, query string, limit int, filter *driven.Filter) ([]domain.ScoredSummary, error) {
	recs, postFilter, err := searchCollection(ctx, s.store, domain.CollectionSummaries, query, limit, filter)
	if err != nil {
		return nil, fmt.Errorf("summary search: %w", err)
	}

	results := make([]domain.ScoredSummary, 0, len(recs))
	for _, rec := range recs {
		summary, err := domain.SummaryFromFields(rec.Key, rec.Fields)
		if err != nil {
			logger.Warn("Skipping malformed summary record %s: %v", rec.Key, err)
			continue
		}
		if postFilter && !matchesFilter(summary.Work, summary.DocumentID, filter) {
			continue
		}
		results = append(results, domain.ScoredSummary{Summary: summary, Score: rec.Score})
	}
	return results, nil
}

// searchCollection issues the backend call, checking the capability
// report first to decide where filtering happens. The second return
// value is true when the caller must post-filter.
func searchCollection(
	ctx context.Context,
	store driven.LibraryStore,
	collection domain.Collection,
	query string,
	limit int,
	filter *driven.Filter,
) ([]driven.Record, bool, error) {
	serverFilter := filter
	postFilter := false

	if !filter.IsZero() {
		caps, err := store.Capabilities(ctx)
		if err != nil {
			return nil, false, fmt.Errorf("query capabilities: %w", err)
		}
		if !caps.ServerSideFilters {
			logger.Debug("Backend lacks server-side filters, post-filtering %s client-side", collection)
			serverFilter = nil
			postFilter = true
		}
	}

	recs, err := store.SimilaritySearch(ctx, collection, query, limit, serverFilter)
	if err != nil {
		return nil, false, err
	}
	return recs, postFilter, nil
}

// matchesFilter applies the exact, case-insensitive client-side filter.
func matchesFilter(work domain.WorkRef, documentID string, filter *driven.Filter) bool {
	if filter.IsZero() {
		return true
	}
	if filter.WorkTitle != "" && !strings.EqualFold(work.Title, filter.WorkTitle) {
		return false
	}
	if filter.WorkAuthor != "" && !strings.EqualFold(work.Author, filter.WorkAuthor) {
		return false
	}
	if filter.DocumentID != "" && documentID != filter.DocumentID {
		return false
	}
	return true
}
