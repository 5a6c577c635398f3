package domain

import (
	"fmt"
	"strings"
)

// CorrectionTable maps known title and author variants to their
// canonical spelling. It is loaded once at process start and read-only
// afterwards. Lookups are exact on the trimmed string; unknown values
// pass through unchanged.
type CorrectionTable struct {
	entries map[string]string
}

// NewCorrectionTable validates and builds a correction table.
// Every canonical form must be a fixed point: a value that is itself a
// key elsewhere would make repeated application diverge, so chains and
// cycles are rejected at load time.
func NewCorrectionTable(entries map[string]string) (*CorrectionTable, error) {
	table := make(map[string]string, len(entries))
	for raw, canonical := range entries {
		raw = strings.TrimSpace(raw)
		canonical = strings.TrimSpace(canonical)
		if raw == "" {
			return nil, fmt.Errorf("%w: correction table has an empty raw key", ErrInvalidInput)
		}
		if canonical == "" {
			return nil, fmt.Errorf("%w: correction for %q has an empty canonical form", ErrInvalidInput, raw)
		}
		if _, dup := table[raw]; dup {
			return nil, fmt.Errorf("%w: duplicate correction key %q", ErrInvalidInput, raw)
		}
		table[raw] = canonical
	}
	for raw, canonical := range table {
		if next, ok := table[canonical]; ok && next != canonical {
			return nil, fmt.Errorf("%w: correction %q -> %q is not canonical (%q -> %q)",
				ErrInvalidInput, raw, canonical, canonical, next)
		}
	}
	return &CorrectionTable{entries: table}, nil
}

// Len returns the number of entries.
func (t *CorrectionTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Canonical returns the canonical form of the given title or author, or
// the input unchanged when no correction is known.
func (t *CorrectionTable) Canonical(raw string) string {
	raw = strings.TrimSpace(raw)
	if t == nil {
		return raw
	}
	if canonical, ok := t.entries[raw]; ok {
		return canonical
	}
	return raw
}

// CanonicalRef applies the table to title and author independently.
func (t *CorrectionTable) CanonicalRef(ref WorkRef) WorkRef {
	return WorkRef{
		Title:  t.Canonical(ref.Title),
		Author: t.Canonical(ref.Author),
	}
}
