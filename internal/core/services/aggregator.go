package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
	"github.com/athenaeum-labs/alexandria/internal/core/ports/driven"
	"github.com/athenaeum-labs/alexandria/internal/core/ports/driving"
	"github.com/athenaeum-labs/alexandria/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// Default limits applied when the caller passes none.
const (
	defaultChunkLimit    = 5
	defaultSectionsLimit = 3
)

// RetrievalService orchestrates the chunk and summary searchers into
// flat or hierarchical retrieval.
type RetrievalService struct {
	chunks    *ChunkSearcher
	summaries *SummarySearcher
}

// NewRetrievalService creates a retrieval service over the given store.
func NewRetrievalService(store driven.LibraryStore) *RetrievalService {
	return &RetrievalService{
		chunks:    NewChunkSearcher(store),
		summaries: NewSummarySearcher(store),
	}
}

// Retrieve answers one query. In auto mode the classifier picks the
// granularity. Errors from the backend surface immediately; there are
// no retries and no partial results.
func (s *RetrievalService) Retrieve(
	ctx context.Context, query string, opts domain.RetrieveOptions,
) (*domain.RetrievalResult, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q", query)

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultChunkLimit
	}
	sectionsLimit := opts.SectionsLimit
	if sectionsLimit <= 0 {
		sectionsLimit = defaultSectionsLimit
	}

	mode := opts.Mode
	if mode == "" || mode == domain.QueryModeAuto {
		mode = ClassifyQuery(query)
		logger.Info("Classified as %s", mode.Description())
	}

	filter := workFilter(opts.Filter)

	if mode == domain.QueryModeFlat {
		chunks, err := s.chunks.Search(ctx, query, limit, filter)
		if err != nil {
			return nil, fmt.Errorf("flat retrieval: %w", err)
		}
		logger.Info("Flat retrieval: %d chunks", len(chunks))
		return &domain.RetrievalResult{Query: query, Mode: mode, Chunks: chunks}, nil
	}

	sections, err := s.summaries.Search(ctx, query, sectionsLimit, filter)
	if err != nil {
		return nil, fmt.Errorf("hierarchical retrieval: %w", err)
	}
	logger.Debug("Matched %d sections", len(sections))

	if len(sections) == 0 {
		// No summaries matched: either none exist yet for the relevant
		// content, or nothing is relevant at all. Both degrade to one
		// flagged flat pseudo-group.
		chunks, err := s.chunks.Search(ctx, query, limit, filter)
		if err != nil {
			return nil, fmt.Errorf("fallback retrieval: %w", err)
		}
		logger.Info("No sections matched, flat fallback with %d chunks", len(chunks))
		return &domain.RetrievalResult{
			Query:    query,
			Mode:     mode,
			Groups:   []domain.SectionGroup{{Chunks: chunks}},
			Fallback: true,
		}, nil
	}

	groups, err := s.collectGroups(ctx, query, sections, limit)
	if err != nil {
		return nil, fmt.Errorf("hierarchical retrieval: %w", err)
	}

	logger.Info("Hierarchical retrieval: %d groups", len(groups))
	return &domain.RetrievalResult{Query: query, Mode: mode, Groups: groups}, nil
}

// collectGroups runs one chunk search per matched section. The searches
// are read-only and mutually independent, so they are dispatched
// concurrently; group order is reimposed from the section ranking after
// the join.
func (s *RetrievalService) collectGroups(
	ctx context.Context, query string, sections []domain.ScoredSummary, limit int,
) ([]domain.SectionGroup, error) {
	// Candidate owner paths per document, for longest-prefix ownership.
	ownersByDoc := make(map[string][]domain.SectionPath)
	for _, sec := range sections {
		doc := sec.Summary.DocumentID
		ownersByDoc[doc] = append(ownersByDoc[doc], sec.Summary.SectionPath)
	}

	// The section restriction happens client-side on the returned page,
	// so each search asks for more than the per-section cap.
	perSectionFetch := limit * 3

	groups := make([]domain.SectionGroup, len(sections))
	errs := make([]error, len(sections))

	var wg sync.WaitGroup
	for i, sec := range sections {
		wg.Add(1)
		go func(i int, sec domain.ScoredSummary) {
			defer wg.Done()
			chunks, err := s.sectionChunks(ctx, query, sec, ownersByDoc[sec.Summary.DocumentID], perSectionFetch, limit)
			if err != nil {
				errs[i] = err
				return
			}
			groups[i] = domain.SectionGroup{
				SectionPath: sec.Summary.SectionPath,
				Work:        sec.Summary.Work,
				SummaryText: sec.Summary.SummaryText,
				Score:       sec.Score,
				Chunks:      chunks,
			}
		}(i, sec)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return groups, nil
}

// sectionChunks searches chunks for one section and keeps only those
// the section owns: descendant-or-equal paths whose longest-prefix
// owner among all matched sections of the document is this one. The
// ownership check is what keeps a chunk out of two groups.
func (s *RetrievalService) sectionChunks(
	ctx context.Context,
	query string,
	sec domain.ScoredSummary,
	owners []domain.SectionPath,
	fetch, limit int,
) ([]domain.ScoredChunk, error) {
	candidates, err := s.chunks.Search(ctx, query, fetch, &driven.Filter{DocumentID: sec.Summary.DocumentID})
	if err != nil {
		return nil, fmt.Errorf("section %s: %w", sec.Summary.SectionPath, err)
	}

	kept := make([]domain.ScoredChunk, 0, limit)
	for _, sc := range candidates {
		if !sc.Chunk.SectionPath.IsDescendantOrSelf(sec.Summary.SectionPath) {
			continue
		}
		owner, ok := domain.OwningSection(sc.Chunk.SectionPath, owners)
		if !ok || owner != sec.Summary.SectionPath {
			continue
		}
		kept = append(kept, sc)
		if len(kept) == limit {
			break
		}
	}
	return kept, nil
}

// workFilter translates the optional work restriction into a store
// filter.
func workFilter(ref *domain.WorkRef) *driven.Filter {
	if ref == nil || ref.IsZero() {
		return nil
	}
	return &driven.Filter{WorkTitle: ref.Title, WorkAuthor: ref.Author}
}
