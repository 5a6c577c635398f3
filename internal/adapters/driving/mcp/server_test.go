package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
)

type mockRetrieval struct {
	result *domain.RetrievalResult
	err    error
}

func (m *mockRetrieval) Retrieve(_ context.Context, query string, _ domain.RetrieveOptions) (*domain.RetrievalResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.RetrievalResult{Query: query, Mode: domain.QueryModeFlat}, nil
}

type mockCatalog struct {
	works []domain.WorkCount
}

func (m *mockCatalog) ListWorks(_ context.Context) ([]domain.WorkCount, error) {
	return m.works, nil
}

func TestNewServerRequiresRetrieval(t *testing.T) {
	_, err := NewServer(&Ports{})
	assert.ErrorIs(t, err, ErrMissingRetrievalService)
}

func TestNewServerCatalogOptional(t *testing.T) {
	server, err := NewServer(&Ports{Retrieval: &mockRetrieval{}})
	require.NoError(t, err)
	assert.NotNil(t, server)
}

func TestHandleSearchMapsResult(t *testing.T) {
	retrieval := &mockRetrieval{result: &domain.RetrievalResult{
		Mode:     domain.QueryModeHierarchical,
		Fallback: true,
		Groups: []domain.SectionGroup{{
			Chunks: []domain.ScoredChunk{{
				Chunk: domain.Chunk{
					Work: domain.WorkRef{Title: "Essays", Author: "Montaigne"},
					Text: "on virtue",
				},
				Score: 0.7,
			}},
		}},
	}}
	server, err := NewServer(&Ports{Retrieval: retrieval, Catalog: &mockCatalog{}})
	require.NoError(t, err)

	_, out, err := server.handleSearch(context.Background(), nil, SearchInput{Query: "virtue"})
	require.NoError(t, err)

	assert.Equal(t, "hierarchical", out.Mode)
	assert.True(t, out.Fallback)
	require.Len(t, out.Groups, 1)
	require.Len(t, out.Groups[0].Chunks, 1)
	assert.Equal(t, "on virtue", out.Groups[0].Chunks[0].Text)
}

func TestHandleSearchRejectsBadMode(t *testing.T) {
	server, err := NewServer(&Ports{Retrieval: &mockRetrieval{}})
	require.NoError(t, err)

	_, _, err = server.handleSearch(context.Background(), nil, SearchInput{Query: "virtue", Mode: "sideways"})
	assert.Error(t, err)
}

func TestHandleListWorks(t *testing.T) {
	catalog := &mockCatalog{works: []domain.WorkCount{
		{Title: "Essays", Author: "Montaigne", ChunksCount: 3},
	}}
	server, err := NewServer(&Ports{Retrieval: &mockRetrieval{}, Catalog: catalog})
	require.NoError(t, err)

	_, out, err := server.handleListWorks(context.Background(), nil, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, "Essays", out.Works[0].Title)
}
