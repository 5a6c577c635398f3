package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
	"github.com/athenaeum-labs/alexandria/internal/core/ports/driven"
	"github.com/athenaeum-labs/alexandria/internal/core/ports/driving"
	"github.com/athenaeum-labs/alexandria/internal/logger"
)

// Ensure CanonicalizerService implements the interface.
var _ driving.CanonicalizerService = (*CanonicalizerService)(nil)

// CanonicalizerService consolidates raw work observations into
// canonical Work records, deduplicating by corrected (title, author)
// key. Consolidation is idempotent and insert-only: it never replaces
// or deletes an existing canonical work.
type CanonicalizerService struct {
	store driven.LibraryStore
	table *domain.CorrectionTable
}

// NewCanonicalizerService creates a canonicalizer over the given store
// and correction table. A nil table means every observation passes
// through unchanged.
func NewCanonicalizerService(store driven.LibraryStore, table *domain.CorrectionTable) *CanonicalizerService {
	return &CanonicalizerService{store: store, table: table}
}

// Canonicalize maps each raw (title, author) key through the correction
// table. Pure; no I/O.
func (s *CanonicalizerService) Canonicalize(observations []domain.WorkObservation) map[domain.WorkKey]domain.WorkRef {
	mapping := make(map[domain.WorkKey]domain.WorkRef, len(observations))
	for _, obs := range observations {
		raw := obs.Ref()
		mapping[raw.Key()] = s.table.CanonicalRef(raw)
	}
	return mapping
}

// Plan groups the observations by canonical key, elects group
// attributes and diffs the result against the store. Read-only; a dry
// run is a plan that is never applied.
func (s *CanonicalizerService) Plan(
	ctx context.Context, observations []domain.WorkObservation,
) (*domain.CanonicalPlan, error) {
	logger.Section("Canonicalization Plan")
	logger.Debug("Observations: %d, corrections: %d", len(observations), s.table.Len())

	// Group in first-seen order so the tie-breaks below are the
	// documented ones and nothing depends on map iteration.
	var order []domain.WorkKey
	groups := make(map[domain.WorkKey][]domain.WorkObservation)
	canonicalRefs := make(map[domain.WorkKey]domain.WorkRef)
	for _, obs := range observations {
		canonical := s.table.CanonicalRef(obs.Ref())
		key := canonical.Key()
		if key.IsZero() {
			logger.Warn("Dropping observation with empty identity: %+v", obs)
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
			canonicalRefs[key] = canonical
		}
		groups[key] = append(groups[key], obs)
	}

	plan := &domain.CanonicalPlan{Mapping: s.Canonicalize(observations)}
	for _, key := range order {
		work := electWork(canonicalRefs[key], groups[key])

		rec, err := s.store.FetchByKey(ctx, domain.CollectionWorks, key.String())
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("fetch work %s: %w", key, err)
		}
		if rec != nil {
			plan.Existing = append(plan.Existing, key)
			continue
		}
		plan.Inserts = append(plan.Inserts, work)
	}

	logger.Info("Plan: %d inserts, %d already canonical", len(plan.Inserts), len(plan.Existing))
	return plan, nil
}

// Apply inserts the plan's missing works. A concurrent batch may have
// inserted the same canonical key in the meantime; the store's
// uniqueness constraint reports that and the loser is discarded.
func (s *CanonicalizerService) Apply(
	ctx context.Context, plan *domain.CanonicalPlan,
) (*domain.CanonicalReport, error) {
	report := &domain.CanonicalReport{}
	for _, work := range plan.Inserts {
		key := work.Key().String()
		_, err := s.store.Insert(ctx, domain.CollectionWorks, driven.Record{
			Key:    key,
			Fields: work.Fields(),
		})
		if errors.Is(err, domain.ErrAlreadyExists) {
			logger.Debug("Work %s inserted by a concurrent batch, discarding", key)
			report.Skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("insert work %s: %w", key, err)
		}
		report.Inserted++
	}
	logger.Info("Applied: %d inserted, %d skipped", report.Inserted, report.Skipped)
	return report, nil
}

// electWork builds the canonical work for one group. Title and author
// come from the corrected reference; the remaining attributes take the
// most frequent non-empty value across the group, first-seen winning a
// tie. A group with no non-empty value for an attribute leaves it empty.
func electWork(canonical domain.WorkRef, group []domain.WorkObservation) domain.Work {
	originalTitles := make([]string, 0, len(group))
	years := make([]int, 0, len(group))
	languages := make([]string, 0, len(group))
	genres := make([]string, 0, len(group))
	for _, obs := range group {
		originalTitles = append(originalTitles, obs.OriginalTitle)
		years = append(years, obs.Year)
		languages = append(languages, obs.Language)
		genres = append(genres, obs.Genre)
	}

	work := domain.Work{
		Title:         canonical.Title,
		Author:        canonical.Author,
		OriginalTitle: electString(canonical.Key(), "original_title", originalTitles),
		Year:          electYear(canonical.Key(), years),
		Language:      electString(canonical.Key(), "language", languages),
		Genre:         electString(canonical.Key(), "genre", genres),
	}
	return work
}

// electString picks the most frequent non-empty value; the first-seen
// value wins ties. Materially different values within one canonical
// group are logged and resolved by the vote, never fatal.
func electString(key domain.WorkKey, attribute string, values []string) string {
	counts := make(map[string]int)
	var order []string
	for _, v := range values {
		if v == "" {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	if len(order) == 0 {
		return ""
	}
	if len(order) > 1 {
		logger.Warn("Canonicalization conflict on %s of %s: %d variants, majority wins", attribute, key, len(order))
	}

	best := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best
}

// electYear is electString for the numeric year; zero means unknown.
func electYear(key domain.WorkKey, values []int) int {
	counts := make(map[int]int)
	var order []int
	for _, v := range values {
		if v == 0 {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	if len(order) == 0 {
		return 0
	}
	if len(order) > 1 {
		logger.Warn("Canonicalization conflict on year of %s: %d variants, majority wins", key, len(order))
	}

	best := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best
}
