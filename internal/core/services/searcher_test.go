package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
	"github.com/athenaeum-labs/alexandria/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockStore implements driven.LibraryStore for testing the searchers'
// capability handling. It records the filter it received.
type mockStore struct {
	records       []driven.Record
	serverFilters bool
	searchErr     error
	capsErr       error

	gotFilter *driven.Filter
	gotLimit  int
}

func (m *mockStore) SimilaritySearch(
	_ context.Context, _ domain.Collection, _ string, limit int, filter *driven.Filter,
) ([]driven.Record, error) {
	m.gotFilter = filter
	m.gotLimit = limit
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.records, nil
}

func (m *mockStore) FetchByKey(_ context.Context, _ domain.Collection, _ string) (*driven.Record, error) {
	return nil, domain.ErrNotFound
}

func (m *mockStore) FetchAll(_ context.Context, _ domain.Collection, _ int) ([]driven.Record, error) {
	return m.records, nil
}

func (m *mockStore) Count(_ context.Context, _ domain.Collection) (int, error) {
	return len(m.records), nil
}

func (m *mockStore) Insert(_ context.Context, _ domain.Collection, rec driven.Record) (string, error) {
	m.records = append(m.records, rec)
	return rec.Key, nil
}

func (m *mockStore) Capabilities(_ context.Context) (driven.StoreCapabilities, error) {
	if m.capsErr != nil {
		return driven.StoreCapabilities{}, m.capsErr
	}
	return driven.StoreCapabilities{ServerSideFilters: m.serverFilters}, nil
}

func (m *mockStore) Close() error { return nil }

func chunkRecord(id, docID, title, author, section, text string, score float64) driven.Record {
	c := domain.Chunk{
		DocumentID:  docID,
		Work:        domain.WorkRef{Title: title, Author: author},
		SectionPath: domain.SectionPath(section),
		Text:        text,
	}
	return driven.Record{Key: id, Score: score, Fields: c.Fields()}
}

// --- Tests ---

func TestChunkSearcherServerSideFilter(t *testing.T) {
	store := &mockStore{
		serverFilters: true,
		records: []driven.Record{
			chunkRecord("c1", "doc-1", "Essays", "Montaigne", "part-1", "on virtue", 0.9),
		},
	}
	searcher := NewChunkSearcher(store)

	filter := &driven.Filter{WorkTitle: "Essays"}
	results, err := searcher.Search(context.Background(), "virtue", 5, filter)
	require.NoError(t, err)

	// The filter is handed to the backend untouched.
	assert.Equal(t, filter, store.gotFilter)
	assert.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].Chunk.ID)
	assert.InDelta(t, 0.9, results[0].Score, 1e-9)
}

func TestChunkSearcherClientSidePostFilter(t *testing.T) {
	store := &mockStore{
		serverFilters: false,
		records: []driven.Record{
			chunkRecord("c1", "doc-1", "Essays", "Montaigne", "part-1", "on virtue", 0.9),
			chunkRecord("c2", "doc-2", "The Stranger", "Camus", "part-1", "the sun", 0.8),
		},
	}
	searcher := NewChunkSearcher(store)

	results, err := searcher.Search(context.Background(), "virtue", 5, &driven.Filter{WorkTitle: "essays"})
	require.NoError(t, err)

	// The backend must not see the filter it cannot apply.
	assert.Nil(t, store.gotFilter)

	// Matching is case-insensitive and applied on the returned page.
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].Chunk.ID)
}

func TestChunkSearcherNoFilterSkipsCapabilities(t *testing.T) {
	store := &mockStore{
		capsErr: errors.New("capabilities should not be queried"),
		records: []driven.Record{
			chunkRecord("c1", "doc-1", "Essays", "Montaigne", "part-1", "on virtue", 0.9),
		},
	}
	searcher := NewChunkSearcher(store)

	results, err := searcher.Search(context.Background(), "virtue", 5, nil)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestChunkSearcherSkipsMalformedRecords(t *testing.T) {
	store := &mockStore{
		serverFilters: true,
		records: []driven.Record{
			{Key: "bad", Score: 1.0, Fields: map[string]any{domain.FieldDocumentID: "doc-1"}}, // no text
			chunkRecord("c1", "doc-1", "Essays", "Montaigne", "part-1", "on virtue", 0.9),
		},
	}
	searcher := NewChunkSearcher(store)

	results, err := searcher.Search(context.Background(), "virtue", 5, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].Chunk.ID)
}

func TestChunkSearcherBackendError(t *testing.T) {
	store := &mockStore{searchErr: domain.ErrBackendUnavailable}
	searcher := NewChunkSearcher(store)

	_, err := searcher.Search(context.Background(), "virtue", 5, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
}

func TestSummarySearcherPostFilterByDocument(t *testing.T) {
	s1 := domain.Summary{
		DocumentID:  "doc-1",
		Work:        domain.WorkRef{Title: "Essays", Author: "Montaigne"},
		SectionPath: "part-1",
		SummaryText: "virtue in daily life",
	}
	s2 := domain.Summary{
		DocumentID:  "doc-2",
		Work:        domain.WorkRef{Title: "Essays", Author: "Montaigne"},
		SectionPath: "part-2",
		SummaryText: "on friendship",
	}
	store := &mockStore{
		serverFilters: false,
		records: []driven.Record{
			{Key: "s1", Score: 0.9, Fields: s1.Fields()},
			{Key: "s2", Score: 0.8, Fields: s2.Fields()},
		},
	}
	searcher := NewSummarySearcher(store)

	results, err := searcher.Search(context.Background(), "virtue", 5, &driven.Filter{DocumentID: "doc-1"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "s1", results[0].Summary.ID)
}
