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

func darwinTable(t *testing.T) *domain.CorrectionTable {
	t.Helper()
	table, err := domain.NewCorrectionTable(map[string]string{
		"Darwin on Species": "On the Origin of Species",
		"C.Darwin":          "Charles Darwin",
	})
	require.NoError(t, err)
	return table
}

func TestCanonicalizeMapsVariantsToOneKey(t *testing.T) {
	service := NewCanonicalizerService(memory.NewStore(), darwinTable(t))

	observations := []domain.WorkObservation{
		{Title: "On the Origin of Species", Author: "Charles Darwin", Year: 1859},
		{Title: "Darwin on Species", Author: "C.Darwin", Year: 1859},
	}

	mapping := service.Canonicalize(observations)
	require.Len(t, mapping, 2)

	canonical := domain.WorkRef{Title: "On the Origin of Species", Author: "Charles Darwin"}
	for raw, got := range mapping {
		assert.Equal(t, canonical, got, "raw key %s", raw)
	}
}

func TestPlanAndApplyProduceOneWork(t *testing.T) {
	store := memory.NewStore()
	service := NewCanonicalizerService(store, darwinTable(t))
	ctx := context.Background()

	observations := []domain.WorkObservation{
		{Title: "On the Origin of Species", Author: "Charles Darwin", Year: 1859},
		{Title: "Darwin on Species", Author: "C.Darwin", Year: 1859},
	}

	plan, err := service.Plan(ctx, observations)
	require.NoError(t, err)
	require.Len(t, plan.Inserts, 1)
	assert.Empty(t, plan.Existing)
	assert.Equal(t, "On the Origin of Species", plan.Inserts[0].Title)
	assert.Equal(t, "Charles Darwin", plan.Inserts[0].Author)
	assert.Equal(t, 1859, plan.Inserts[0].Year)

	report, err := service.Apply(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Inserted)
	assert.Equal(t, 0, report.Skipped)

	count, err := store.Count(ctx, domain.CollectionWorks)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPlanIsReadOnly(t *testing.T) {
	store := memory.NewStore()
	service := NewCanonicalizerService(store, darwinTable(t))
	ctx := context.Background()

	_, err := service.Plan(ctx, []domain.WorkObservation{
		{Title: "Darwin on Species", Author: "C.Darwin"},
	})
	require.NoError(t, err)

	// A dry run is a plan never applied; the store stays untouched.
	count, err := store.Count(ctx, domain.CollectionWorks)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCanonicalizationIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	service := NewCanonicalizerService(store, darwinTable(t))
	ctx := context.Background()

	observations := []domain.WorkObservation{
		{Title: "Darwin on Species", Author: "C.Darwin", Year: 1859},
	}

	plan, err := service.Plan(ctx, observations)
	require.NoError(t, err)
	_, err = service.Apply(ctx, plan)
	require.NoError(t, err)

	// Second run over the same observations finds everything canonical.
	plan2, err := service.Plan(ctx, observations)
	require.NoError(t, err)
	assert.True(t, plan2.IsNoop())
	assert.Empty(t, plan2.Inserts)
	assert.Len(t, plan2.Existing, 1)

	report, err := service.Apply(ctx, plan2)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Inserted)

	count, err := store.Count(ctx, domain.CollectionWorks)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestApplyDiscardsRacingInsert(t *testing.T) {
	store := memory.NewStore()
	service := NewCanonicalizerService(store, darwinTable(t))
	ctx := context.Background()

	plan, err := service.Plan(ctx, []domain.WorkObservation{
		{Title: "Darwin on Species", Author: "C.Darwin"},
	})
	require.NoError(t, err)
	require.Len(t, plan.Inserts, 1)

	// A concurrent batch wins the insert between Plan and Apply.
	racer := plan.Inserts[0]
	_, err = store.Insert(ctx, domain.CollectionWorks, driven.Record{
		Key:    racer.Key().String(),
		Fields: racer.Fields(),
	})
	require.NoError(t, err)

	report, err := service.Apply(ctx, plan)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Inserted)
	assert.Equal(t, 1, report.Skipped)

	count, err := store.Count(ctx, domain.CollectionWorks)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestElectionMajorityVote(t *testing.T) {
	service := NewCanonicalizerService(memory.NewStore(), darwinTable(t))

	plan, err := service.Plan(context.Background(), []domain.WorkObservation{
		{Title: "Darwin on Species", Author: "C.Darwin", Language: "fr", Year: 1859},
		{Title: "On the Origin of Species", Author: "Charles Darwin", Language: "en", Year: 1859},
		{Title: "On the Origin of Species", Author: "C.Darwin", Language: "en", Year: 1860},
	})
	require.NoError(t, err)
	require.Len(t, plan.Inserts, 1)

	work := plan.Inserts[0]
	assert.Equal(t, "en", work.Language, "majority value wins")
	assert.Equal(t, 1859, work.Year, "majority year wins")
}

func TestElectionFirstSeenBreaksTies(t *testing.T) {
	service := NewCanonicalizerService(memory.NewStore(), darwinTable(t))

	plan, err := service.Plan(context.Background(), []domain.WorkObservation{
		{Title: "Darwin on Species", Author: "C.Darwin", Genre: "biology"},
		{Title: "On the Origin of Species", Author: "Charles Darwin", Genre: "science"},
	})
	require.NoError(t, err)
	require.Len(t, plan.Inserts, 1)
	assert.Equal(t, "biology", plan.Inserts[0].Genre)
}

func TestElectionIgnoresEmptyValues(t *testing.T) {
	service := NewCanonicalizerService(memory.NewStore(), darwinTable(t))

	plan, err := service.Plan(context.Background(), []domain.WorkObservation{
		{Title: "Darwin on Species", Author: "C.Darwin"},
		{Title: "On the Origin of Species", Author: "Charles Darwin", OriginalTitle: "On the Origin of Species by Means of Natural Selection"},
	})
	require.NoError(t, err)
	require.Len(t, plan.Inserts, 1)
	assert.Equal(t, "On the Origin of Species by Means of Natural Selection", plan.Inserts[0].OriginalTitle)
}

func TestPlanDropsEmptyIdentity(t *testing.T) {
	service := NewCanonicalizerService(memory.NewStore(), nil)

	plan, err := service.Plan(context.Background(), []domain.WorkObservation{
		{Title: "", Author: ""},
		{Title: "Essays", Author: "Montaigne"},
	})
	require.NoError(t, err)
	assert.Len(t, plan.Inserts, 1)
	assert.Equal(t, "Essays", plan.Inserts[0].Title)
}

func TestNilTablePassesThrough(t *testing.T) {
	service := NewCanonicalizerService(memory.NewStore(), nil)

	mapping := service.Canonicalize([]domain.WorkObservation{
		{Title: "Essays", Author: "Montaigne"},
	})
	ref := domain.WorkRef{Title: "Essays", Author: "Montaigne"}
	assert.Equal(t, ref, mapping[ref.Key()])
}
