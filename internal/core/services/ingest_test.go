package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athenaeum-labs/alexandria/internal/adapters/driven/store/memory"
	"github.com/athenaeum-labs/alexandria/internal/core/domain"
)

func testBatch() domain.ChunkBatch {
	return domain.ChunkBatch{
		SourceID: "essais-1588.pdf",
		Metadata: domain.BatchMetadata{
			Title:    "Essais",
			Author:   "Michel de Montaigne",
			Year:     1588,
			Language: "fr",
		},
		Chunks: []domain.BatchChunk{
			{SectionPath: "livre-1/ch-1", Text: "Par divers moyens on arrive a pareille fin"},
			{SectionPath: "livre-1/ch-2", Text: "De la tristesse"},
		},
		TOC:      []string{"livre-1/ch-1", "livre-1/ch-2"},
		Pages:    120,
		Language: "fr",
	}
}

func newIngest(store *memory.Store, table *domain.CorrectionTable) *IngestService {
	return NewIngestService(store, NewCanonicalizerService(store, table))
}

func TestIngestWritesWorkDocumentAndChunks(t *testing.T) {
	store := memory.NewStore()
	service := newIngest(store, nil)
	ctx := context.Background()

	report, err := service.Ingest(ctx, testBatch())
	require.NoError(t, err)

	assert.Equal(t, "essais-1588.pdf", report.SourceID)
	assert.Equal(t, domain.WorkRef{Title: "Essais", Author: "Michel de Montaigne"}, report.Work)
	assert.Equal(t, 2, report.Chunks)
	assert.Equal(t, 1, report.WorksCreated)

	for collection, want := range map[domain.Collection]int{
		domain.CollectionWorks:     1,
		domain.CollectionDocuments: 1,
		domain.CollectionChunks:    2,
	} {
		count, err := store.Count(ctx, collection)
		require.NoError(t, err)
		assert.Equal(t, want, count, "collection %s", collection)
	}
}

func TestIngestAppliesCorrections(t *testing.T) {
	table, err := domain.NewCorrectionTable(map[string]string{
		"Essais": "Essays",
	})
	require.NoError(t, err)

	store := memory.NewStore()
	service := newIngest(store, table)

	report, err := service.Ingest(context.Background(), testBatch())
	require.NoError(t, err)
	assert.Equal(t, "Essays", report.Work.Title)

	// Chunks carry the canonical reference, not the raw spelling.
	recs, err := store.FetchAll(context.Background(), domain.CollectionChunks, 0)
	require.NoError(t, err)
	for _, rec := range recs {
		chunk, err := domain.ChunkFromFields(rec.Key, rec.Fields)
		require.NoError(t, err)
		assert.Equal(t, "Essays", chunk.Work.Title)
	}
}

func TestIngestRejectsDuplicateSource(t *testing.T) {
	store := memory.NewStore()
	service := newIngest(store, nil)
	ctx := context.Background()

	_, err := service.Ingest(ctx, testBatch())
	require.NoError(t, err)

	_, err = service.Ingest(ctx, testBatch())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	// The second run wrote no additional chunks.
	count, err := store.Count(ctx, domain.CollectionChunks)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIngestSecondDocumentOfSameWork(t *testing.T) {
	store := memory.NewStore()
	service := newIngest(store, nil)
	ctx := context.Background()

	_, err := service.Ingest(ctx, testBatch())
	require.NoError(t, err)

	second := testBatch()
	second.SourceID = "essais-1595.pdf"
	report, err := service.Ingest(ctx, second)
	require.NoError(t, err)

	// The canonical work already exists; only the document is new.
	assert.Equal(t, 0, report.WorksCreated)

	count, err := store.Count(ctx, domain.CollectionWorks)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIngestValidatesBatch(t *testing.T) {
	service := newIngest(memory.NewStore(), nil)

	tests := []struct {
		name  string
		mutate func(*domain.ChunkBatch)
	}{
		{"missing source id", func(b *domain.ChunkBatch) { b.SourceID = "" }},
		{"missing metadata", func(b *domain.ChunkBatch) { b.Metadata.Title, b.Metadata.Author = "", "" }},
		{"no chunks", func(b *domain.ChunkBatch) { b.Chunks = nil }},
		{"chunk without text", func(b *domain.ChunkBatch) { b.Chunks[0].Text = "" }},
		{"chunk without section", func(b *domain.ChunkBatch) { b.Chunks[0].SectionPath = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			batch := testBatch()
			tt.mutate(&batch)
			_, err := service.Ingest(context.Background(), batch)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}
