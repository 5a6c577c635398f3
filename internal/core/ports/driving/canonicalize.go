package driving

import (
	"context"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
)

// CanonicalizerService consolidates raw work observations into
// canonical Work records. Plan computes without mutating; Apply writes
// the plan. A dry run is a Plan that is never applied.
type CanonicalizerService interface {
	// Canonicalize maps each observed raw (title, author) pair through
	// the correction table. Pure; no I/O.
	Canonicalize(observations []domain.WorkObservation) map[domain.WorkKey]domain.WorkRef

	// Plan groups observations by canonical key, elects the group
	// attributes and diffs against the store. Read-only.
	Plan(ctx context.Context, observations []domain.WorkObservation) (*domain.CanonicalPlan, error)

	// Apply inserts the plan's missing works. Re-running on an
	// already-canonical store is a no-op; an insert racing another
	// batch is discarded, never duplicated.
	Apply(ctx context.Context, plan *domain.CanonicalPlan) (*domain.CanonicalReport, error)
}
