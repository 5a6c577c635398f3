package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athenaeum-labs/alexandria/internal/adapters/driven/store/memory"
	"github.com/athenaeum-labs/alexandria/internal/core/domain"
)

func TestListWorksGroupsAndSorts(t *testing.T) {
	store := memory.NewStore()
	montaigne := domain.WorkRef{Title: "Essays", Author: "Montaigne"}
	camus := domain.WorkRef{Title: "The Stranger", Author: "Camus"}
	camusPeste := domain.WorkRef{Title: "La Peste", Author: "Camus"}

	chunks := []domain.Chunk{
		{ID: "c1", DocumentID: "doc-1", Work: montaigne, SectionPath: "part-1", Text: "a"},
		{ID: "c2", DocumentID: "doc-1", Work: montaigne, SectionPath: "part-2", Text: "b"},
		{ID: "c3", DocumentID: "doc-2", Work: camus, SectionPath: "part-1", Text: "c"},
		{ID: "c4", DocumentID: "doc-3", Work: camusPeste, SectionPath: "part-1", Text: "d"},
		{ID: "c5", DocumentID: "doc-1", Work: montaigne, SectionPath: "part-3", Text: "e"},
	}
	for _, c := range chunks {
		insertChunk(t, store, c)
	}

	works, err := NewCatalogService(store).ListWorks(context.Background())
	require.NoError(t, err)
	require.Len(t, works, 3)

	// Sorted by author then title, case-insensitively.
	assert.Equal(t, domain.WorkCount{Title: "La Peste", Author: "Camus", ChunksCount: 1}, works[0])
	assert.Equal(t, domain.WorkCount{Title: "The Stranger", Author: "Camus", ChunksCount: 1}, works[1])
	assert.Equal(t, domain.WorkCount{Title: "Essays", Author: "Montaigne", ChunksCount: 3}, works[2])
}

func TestListWorksMergesCaseVariants(t *testing.T) {
	store := memory.NewStore()
	insertChunk(t, store, domain.Chunk{
		ID: "c1", DocumentID: "doc-1",
		Work: domain.WorkRef{Title: "Essays", Author: "Montaigne"}, SectionPath: "part-1", Text: "a",
	})
	insertChunk(t, store, domain.Chunk{
		ID: "c2", DocumentID: "doc-1",
		Work: domain.WorkRef{Title: "ESSAYS", Author: "montaigne"}, SectionPath: "part-2", Text: "b",
	})

	works, err := NewCatalogService(store).ListWorks(context.Background())
	require.NoError(t, err)
	require.Len(t, works, 1)

	// First-seen spelling is displayed; both chunks are counted.
	assert.Equal(t, "Essays", works[0].Title)
	assert.Equal(t, 2, works[0].ChunksCount)
}

func TestListWorksEmptyLibrary(t *testing.T) {
	works, err := NewCatalogService(memory.NewStore()).ListWorks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, works)
}
