package services

import (
	"context"
	"fmt"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
	"github.com/athenaeum-labs/alexandria/internal/core/ports/driven"
	"github.com/athenaeum-labs/alexandria/internal/core/ports/driving"
	"github.com/athenaeum-labs/alexandria/internal/logger"
)

// Ensure AuditService implements the interface.
var _ driving.AuditService = (*AuditService)(nil)

// AuditService cross-checks the four collections for orphaned or
// missing references. Read-only; findings are advisory and nothing is
// ever repaired automatically.
type AuditService struct {
	store driven.LibraryStore
}

// NewAuditService creates an audit service over the given store.
func NewAuditService(store driven.LibraryStore) *AuditService {
	return &AuditService{store: store}
}

// Audit scans the store and returns all findings, in collection scan
// order.
func (s *AuditService) Audit(ctx context.Context) ([]domain.Finding, error) {
	logger.Section("Consistency Audit")

	works, documents, chunks, summaries, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("Loaded %d works, %d documents, %d chunks, %d summaries",
		len(works), len(documents), len(chunks), len(summaries))

	workKeys := make(map[domain.WorkKey]struct{}, len(works))
	for _, w := range works {
		workKeys[w.Key()] = struct{}{}
	}

	chunksByDoc := make(map[string][]domain.Chunk)
	for _, c := range chunks {
		chunksByDoc[c.DocumentID] = append(chunksByDoc[c.DocumentID], c)
	}
	summariesByDoc := make(map[string][]domain.Summary)
	for _, sum := range summaries {
		summariesByDoc[sum.DocumentID] = append(summariesByDoc[sum.DocumentID], sum)
	}

	var findings []domain.Finding

	// Documents nothing references.
	for _, doc := range documents {
		if len(chunksByDoc[doc.SourceID]) == 0 {
			findings = append(findings, domain.Finding{
				Type:       domain.FindingOrphanDocument,
				Collection: domain.CollectionDocuments,
				Key:        doc.SourceID,
				Detail:     "no chunk references this document",
			})
		}
	}

	// Nested work copies that resolve to no canonical work.
	for _, c := range chunks {
		if _, ok := workKeys[c.Work.Key()]; !ok {
			findings = append(findings, domain.Finding{
				Type:       domain.FindingUnknownWork,
				Collection: domain.CollectionChunks,
				Key:        c.ID,
				Detail:     fmt.Sprintf("nested work %q / %q matches no canonical work", c.Work.Title, c.Work.Author),
			})
		}
	}
	for _, sum := range summaries {
		if _, ok := workKeys[sum.Work.Key()]; !ok {
			findings = append(findings, domain.Finding{
				Type:       domain.FindingUnknownWork,
				Collection: domain.CollectionSummaries,
				Key:        sum.ID,
				Detail:     fmt.Sprintf("nested work %q / %q matches no canonical work", sum.Work.Title, sum.Work.Author),
			})
		}
	}

	// Summary sections owning zero chunks.
	for _, sum := range summaries {
		owned := 0
		for _, c := range chunksByDoc[sum.DocumentID] {
			if c.SectionPath.IsDescendantOrSelf(sum.SectionPath) {
				owned++
			}
		}
		if owned == 0 {
			findings = append(findings, domain.Finding{
				Type:       domain.FindingEmptySection,
				Collection: domain.CollectionSummaries,
				Key:        sum.ID,
				Detail:     fmt.Sprintf("section %s owns no chunks", sum.SectionPath),
			})
		}
	}

	// Chunks without an owning summary, in documents that do have
	// summaries elsewhere. Partial coverage only: summarization is a
	// lazy background pass and a document with no summaries at all is
	// simply not summarized yet.
	for _, c := range chunks {
		docSummaries := summariesByDoc[c.DocumentID]
		if len(docSummaries) == 0 {
			continue
		}
		paths := make([]domain.SectionPath, len(docSummaries))
		for i, sum := range docSummaries {
			paths[i] = sum.SectionPath
		}
		if _, ok := domain.OwningSection(c.SectionPath, paths); !ok {
			findings = append(findings, domain.Finding{
				Type:       domain.FindingUncoveredChunk,
				Collection: domain.CollectionChunks,
				Key:        c.ID,
				Detail:     fmt.Sprintf("section %s has no owning summary", c.SectionPath),
			})
		}
	}

	logger.Info("Audit complete: %d findings", len(findings))
	return findings, nil
}

// loadAll fetches and decodes the four collections. Records that fail
// to decode are skipped with a warning; the audit judges references,
// not payload shape.
func (s *AuditService) loadAll(ctx context.Context) (
	[]domain.Work, []domain.Document, []domain.Chunk, []domain.Summary, error,
) {
	workRecs, err := s.store.FetchAll(ctx, domain.CollectionWorks, 0)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("fetch works: %w", err)
	}
	docRecs, err := s.store.FetchAll(ctx, domain.CollectionDocuments, 0)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("fetch documents: %w", err)
	}
	chunkRecs, err := s.store.FetchAll(ctx, domain.CollectionChunks, 0)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("fetch chunks: %w", err)
	}
	summaryRecs, err := s.store.FetchAll(ctx, domain.CollectionSummaries, 0)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("fetch summaries: %w", err)
	}

	works := make([]domain.Work, 0, len(workRecs))
	for _, rec := range workRecs {
		w, err := domain.WorkFromFields(rec.Fields)
		if err != nil {
			logger.Warn("Skipping malformed work record %s: %v", rec.Key, err)
			continue
		}
		works = append(works, w)
	}
	documents := make([]domain.Document, 0, len(docRecs))
	for _, rec := range docRecs {
		d, err := domain.DocumentFromFields(rec.Fields)
		if err != nil {
			logger.Warn("Skipping malformed document record %s: %v", rec.Key, err)
			continue
		}
		documents = append(documents, d)
	}
	chunks := make([]domain.Chunk, 0, len(chunkRecs))
	for _, rec := range chunkRecs {
		c, err := domain.ChunkFromFields(rec.Key, rec.Fields)
		if err != nil {
			logger.Warn("Skipping malformed chunk record %s: %v", rec.Key, err)
			continue
		}
		chunks = append(chunks, c)
	}
	summaries := make([]domain.Summary, 0, len(summaryRecs))
	for _, rec := range summaryRecs {
		sum, err := domain.SummaryFromFields(rec.Key, rec.Fields)
		if err != nil {
			logger.Warn("Skipping malformed summary record %s: %v", rec.Key, err)
			continue
		}
		summaries = append(summaries, sum)
	}
	return works, documents, chunks, summaries, nil
}
