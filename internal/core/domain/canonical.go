package domain

// CanonicalPlan is the computed outcome of consolidation before any
// write: the raw-to-canonical key mapping and the missing works to
// insert. Plans are safe to inspect and discard, which is what dry-run
// mode does.
type CanonicalPlan struct {
	// Mapping resolves each observed raw key to its canonical
	// reference.
	Mapping map[WorkKey]WorkRef

	// Inserts are canonical works absent from the store, in first-seen
	// order. Consolidation only ever adds; existing works are never
	// replaced or deleted.
	Inserts []Work

	// Existing are canonical keys already present in the store.
	Existing []WorkKey
}

// IsNoop reports whether applying the plan would change nothing.
func (p *CanonicalPlan) IsNoop() bool {
	return len(p.Inserts) == 0
}

// CanonicalReport summarizes an applied plan.
type CanonicalReport struct {
	// Inserted is the number of works written.
	Inserted int

	// Skipped counts planned inserts that lost a race to a concurrent
	// batch and were discarded. Both counts together equal
	// len(plan.Inserts).
	Skipped int
}
