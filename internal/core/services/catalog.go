package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
	"github.com/athenaeum-labs/alexandria/internal/core/ports/driven"
	"github.com/athenaeum-labs/alexandria/internal/core/ports/driving"
	"github.com/athenaeum-labs/alexandria/internal/logger"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

// CatalogService lists the library's contents by work, counting chunks
// through their denormalized work copies.
type CatalogService struct {
	store driven.LibraryStore
}

// NewCatalogService creates a catalog service over the given store.
func NewCatalogService(store driven.LibraryStore) *CatalogService {
	return &CatalogService{store: store}
}

// ListWorks groups all chunks by nested work reference and returns one
// entry per work, sorted by (author, title) case-insensitively. The
// displayed spelling is the first one seen in scan order.
func (s *CatalogService) ListWorks(ctx context.Context) ([]domain.WorkCount, error) {
	recs, err := s.store.FetchAll(ctx, domain.CollectionChunks, 0)
	if err != nil {
		return nil, fmt.Errorf("list works: %w", err)
	}

	counts := make(map[domain.WorkKey]*domain.WorkCount)
	var order []domain.WorkKey
	for _, rec := range recs {
		chunk, err := domain.ChunkFromFields(rec.Key, rec.Fields)
		if err != nil {
			logger.Warn("Skipping malformed chunk record %s: %v", rec.Key, err)
			continue
		}
		key := chunk.Work.Key()
		if key.IsZero() {
			continue
		}
		entry, ok := counts[key]
		if !ok {
			entry = &domain.WorkCount{Title: chunk.Work.Title, Author: chunk.Work.Author}
			counts[key] = entry
			order = append(order, key)
		}
		entry.ChunksCount++
	}

	works := make([]domain.WorkCount, 0, len(order))
	for _, key := range order {
		works = append(works, *counts[key])
	}
	sort.Slice(works, func(i, j int) bool {
		ai := strings.ToLower(works[i].Author)
		aj := strings.ToLower(works[j].Author)
		if ai != aj {
			return ai < aj
		}
		return strings.ToLower(works[i].Title) < strings.ToLower(works[j].Title)
	})

	logger.Debug("Catalog: %d works across %d chunks", len(works), len(recs))
	return works, nil
}
