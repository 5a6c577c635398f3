package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
	"github.com/athenaeum-labs/alexandria/internal/core/ports/driven"
	"github.com/athenaeum-labs/alexandria/internal/core/ports/driving"
	"github.com/athenaeum-labs/alexandria/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService writes finalized chunk batches into the store. The
// upstream pipeline owns parsing, chunking and embedding; this side
// owns canonicalization and the actual writes.
type IngestService struct {
	store         driven.LibraryStore
	canonicalizer driving.CanonicalizerService
}

// NewIngestService creates an ingest service.
func NewIngestService(store driven.LibraryStore, canonicalizer driving.CanonicalizerService) *IngestService {
	return &IngestService{store: store, canonicalizer: canonicalizer}
}

// Ingest validates the batch, resolves its work to canonical form and
// inserts the document plus its chunks. The batch is rerunnable
// wholesale: a duplicate source id is rejected before any chunk write.
func (s *IngestService) Ingest(ctx context.Context, batch domain.ChunkBatch) (*domain.IngestReport, error) {
	logger.Section("Ingest")
	if err := batch.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Batch %s: %d chunks", batch.SourceID, len(batch.Chunks))

	obs := batch.Metadata.Observation()
	plan, err := s.canonicalizer.Plan(ctx, []domain.WorkObservation{obs})
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", batch.SourceID, err)
	}
	report, err := s.canonicalizer.Apply(ctx, plan)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", batch.SourceID, err)
	}

	work, ok := plan.Mapping[obs.Ref().Key()]
	if !ok {
		return nil, fmt.Errorf("%w: batch %s resolved to no canonical work", domain.ErrInvalidInput, batch.SourceID)
	}

	doc := domain.Document{
		SourceID:    batch.SourceID,
		Work:        work,
		Edition:     batch.Metadata.Edition,
		Pages:       batch.Pages,
		ChunksCount: len(batch.Chunks),
		Language:    batch.Language,
		CreatedAt:   time.Now().UTC(),
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.store.Insert(ctx, domain.CollectionDocuments, driven.Record{
		Key:    doc.SourceID,
		Fields: doc.Fields(),
	}); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return nil, fmt.Errorf("ingest %s: source already ingested: %w", batch.SourceID, err)
		}
		return nil, fmt.Errorf("insert document %s: %w", batch.SourceID, err)
	}

	for i, bc := range batch.Chunks {
		chunk := domain.Chunk{
			ID:          uuid.NewString(),
			DocumentID:  batch.SourceID,
			Work:        work,
			SectionPath: domain.SectionPath(bc.SectionPath),
			Text:        bc.Text,
			Summary:     bc.Summary,
		}
		if err := chunk.Validate(); err != nil {
			return nil, err
		}
		if _, err := s.store.Insert(ctx, domain.CollectionChunks, driven.Record{
			Key:    chunk.ID,
			Fields: chunk.Fields(),
		}); err != nil {
			return nil, fmt.Errorf("insert chunk %d of %s: %w", i, batch.SourceID, err)
		}
	}

	logger.Info("Ingested %s: %d chunks under %q / %q", batch.SourceID, len(batch.Chunks), work.Title, work.Author)
	return &domain.IngestReport{
		SourceID:     batch.SourceID,
		Work:         work,
		Chunks:       len(batch.Chunks),
		WorksCreated: report.Inserted,
	}, nil
}
