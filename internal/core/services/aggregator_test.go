package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athenaeum-labs/alexandria/internal/adapters/driven/store/memory"
	"github.com/athenaeum-labs/alexandria/internal/core/domain"
	"github.com/athenaeum-labs/alexandria/internal/core/ports/driven"
)

var essaysRef = domain.WorkRef{Title: "Essays", Author: "Montaigne"}

// seedLibrary fills a memory store with one document whose summaries
// partition most of its chunks.
func seedLibrary(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()

	chunks := []domain.Chunk{
		{ID: "c1", DocumentID: "doc-1", Work: essaysRef, SectionPath: "part-1/ch-1", Text: "on virtue"},
		{ID: "c2", DocumentID: "doc-1", Work: essaysRef, SectionPath: "part-1/ch-2", Text: "wisdom begins"},
		{ID: "c3", DocumentID: "doc-1", Work: essaysRef, SectionPath: "part-1/ch-2/s-1", Text: "virtue and wisdom together"},
		{ID: "c4", DocumentID: "doc-1", Work: essaysRef, SectionPath: "part-3/ch-1", Text: "zanzibar travels"},
	}
	for _, c := range chunks {
		_, err := store.Insert(ctx, domain.CollectionChunks, driven.Record{Key: c.ID, Fields: c.Fields()})
		require.NoError(t, err)
	}

	summaries := []domain.Summary{
		{ID: "s1", DocumentID: "doc-1", Work: essaysRef, SectionPath: "part-1", SummaryText: "virtue and wisdom in daily life"},
		{ID: "s2", DocumentID: "doc-1", Work: essaysRef, SectionPath: "part-1/ch-2", SummaryText: "wisdom of the ancients"},
	}
	for _, s := range summaries {
		_, err := store.Insert(ctx, domain.CollectionSummaries, driven.Record{Key: s.ID, Fields: s.Fields()})
		require.NoError(t, err)
	}
	return store
}

func groupChunkIDs(g domain.SectionGroup) []string {
	ids := make([]string, len(g.Chunks))
	for i, sc := range g.Chunks {
		ids[i] = sc.Chunk.ID
	}
	return ids
}

func TestRetrieveHierarchicalGrouping(t *testing.T) {
	service := NewRetrievalService(seedLibrary(t))

	result, err := service.Retrieve(context.Background(), "virtue wisdom", domain.RetrieveOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.QueryModeHierarchical, result.Mode)
	assert.False(t, result.Fallback)
	assert.Empty(t, result.Chunks)
	require.Len(t, result.Groups, 2)

	// Groups arrive in section score order: the summary matching both
	// query tokens outranks the one matching one.
	assert.Equal(t, domain.SectionPath("part-1"), result.Groups[0].SectionPath)
	assert.Equal(t, domain.SectionPath("part-1/ch-2"), result.Groups[1].SectionPath)
	assert.Equal(t, essaysRef, result.Groups[0].Work)
	assert.Equal(t, "virtue and wisdom in daily life", result.Groups[0].SummaryText)

	// Longest-prefix ownership: chunks under part-1/ch-2 belong to that
	// group even though they also descend from part-1.
	assert.Equal(t, []string{"c1"}, groupChunkIDs(result.Groups[0]))
	assert.Equal(t, []string{"c3", "c2"}, groupChunkIDs(result.Groups[1]))
}

func TestRetrieveNoChunkInTwoGroups(t *testing.T) {
	service := NewRetrievalService(seedLibrary(t))

	result, err := service.Retrieve(context.Background(), "virtue wisdom", domain.RetrieveOptions{})
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, g := range result.Groups {
		for _, sc := range g.Chunks {
			seen[sc.Chunk.ID]++
		}
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "chunk %s appears in %d groups", id, n)
	}
}

func TestRetrieveRespectsLimits(t *testing.T) {
	service := NewRetrievalService(seedLibrary(t))

	opts := domain.RetrieveOptions{Limit: 1, SectionsLimit: 2}
	result, err := service.Retrieve(context.Background(), "virtue wisdom", opts)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(result.Groups), opts.SectionsLimit)
	total := 0
	for _, g := range result.Groups {
		assert.LessOrEqual(t, len(g.Chunks), opts.Limit)
		total += len(g.Chunks)
	}
	assert.LessOrEqual(t, total, opts.Limit*opts.SectionsLimit)
}

func TestRetrieveFlatMode(t *testing.T) {
	service := NewRetrievalService(seedLibrary(t))

	opts := domain.RetrieveOptions{Mode: domain.QueryModeFlat, Limit: 2}
	result, err := service.Retrieve(context.Background(), "virtue wisdom", opts)
	require.NoError(t, err)

	assert.Equal(t, domain.QueryModeFlat, result.Mode)
	assert.Empty(t, result.Groups)
	require.Len(t, result.Chunks, 2)

	// Best match first.
	assert.Equal(t, "c3", result.Chunks[0].Chunk.ID)
	assert.GreaterOrEqual(t, result.Chunks[0].Score, result.Chunks[1].Score)
}

func TestRetrieveFallbackWhenNoSectionMatches(t *testing.T) {
	service := NewRetrievalService(seedLibrary(t))

	opts := domain.RetrieveOptions{Mode: domain.QueryModeHierarchical}
	result, err := service.Retrieve(context.Background(), "zanzibar", opts)
	require.NoError(t, err)

	// Zero matching sections degrades to one flagged pseudo-group.
	assert.True(t, result.Fallback)
	require.Len(t, result.Groups, 1)
	assert.Empty(t, result.Groups[0].SectionPath)
	assert.Empty(t, result.Groups[0].SummaryText)
	assert.Equal(t, []string{"c4"}, groupChunkIDs(result.Groups[0]))
}

func TestRetrieveFallbackFlagOnlyWhenZeroSections(t *testing.T) {
	service := NewRetrievalService(seedLibrary(t))

	result, err := service.Retrieve(context.Background(), "virtue wisdom", domain.RetrieveOptions{})
	require.NoError(t, err)
	assert.False(t, result.Fallback)
	assert.NotEmpty(t, result.Groups)
}

func TestRetrieveAutoClassification(t *testing.T) {
	service := NewRetrievalService(seedLibrary(t))

	result, err := service.Retrieve(context.Background(), "virtue", domain.RetrieveOptions{Mode: domain.QueryModeAuto})
	require.NoError(t, err)
	assert.Equal(t, domain.QueryModeFlat, result.Mode)
	assert.NotEmpty(t, result.Chunks)
}

func TestRetrieveWorkFilter(t *testing.T) {
	store := seedLibrary(t)
	ctx := context.Background()

	other := domain.Chunk{
		ID: "x1", DocumentID: "doc-2",
		Work:        domain.WorkRef{Title: "The Stranger", Author: "Camus"},
		SectionPath: "part-1/ch-1", Text: "virtue elsewhere",
	}
	_, err := store.Insert(ctx, domain.CollectionChunks, driven.Record{Key: other.ID, Fields: other.Fields()})
	require.NoError(t, err)

	service := NewRetrievalService(store)
	opts := domain.RetrieveOptions{
		Mode:   domain.QueryModeFlat,
		Filter: &domain.WorkRef{Title: "Essays"},
	}
	result, err := service.Retrieve(ctx, "virtue", opts)
	require.NoError(t, err)

	for _, sc := range result.Chunks {
		assert.Equal(t, "Essays", sc.Chunk.Work.Title)
	}
}
