package domain

// QueryMode selects the retrieval strategy for a query.
type QueryMode string

const (
	// QueryModeAuto lets the classifier decide.
	QueryModeAuto QueryMode = "auto"

	// QueryModeFlat searches chunks directly, ignoring section
	// structure. The default for a single short concept.
	QueryModeFlat QueryMode = "flat"

	// QueryModeHierarchical matches at summary granularity first, then
	// narrows to chunks within the matched sections.
	QueryModeHierarchical QueryMode = "hierarchical"
)

// Description returns a human-readable explanation of the mode.
func (m QueryMode) Description() string {
	switch m {
	case QueryModeFlat:
		return "flat (chunk-level search)"
	case QueryModeHierarchical:
		return "hierarchical (section-level search, narrowed to chunks)"
	default:
		return "auto (classifier decides)"
	}
}

// RetrieveOptions configures a retrieval call.
type RetrieveOptions struct {
	// Mode selects flat or hierarchical retrieval. Auto (or empty)
	// defers to the classifier.
	Mode QueryMode

	// Limit caps chunks per section group, and total chunks in flat
	// mode.
	Limit int

	// SectionsLimit caps the number of section groups.
	SectionsLimit int

	// Filter restricts results to a specific work, when set.
	Filter *WorkRef
}

// ScoredChunk is a chunk with its similarity score as reported by the
// backend.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// ScoredSummary is a summary with its similarity score as reported by
// the backend.
type ScoredSummary struct {
	Summary Summary
	Score   float64
}

// SectionGroup is one matched section with the chunks it owns, ordered
// by chunk score descending.
type SectionGroup struct {
	// SectionPath is the matched section; empty for the pseudo-group
	// produced by the flat fallback.
	SectionPath SectionPath

	// Work is the section's nested work reference.
	Work WorkRef

	// SummaryText is the section description; empty for the
	// fallback pseudo-group.
	SummaryText string

	// Score is the section's own similarity score.
	Score float64

	// Chunks are the owned chunks, score descending.
	Chunks []ScoredChunk
}

// RetrievalResult is the outcome of one retrieval call. Exactly one of
// Groups or Chunks is populated: Groups for hierarchical retrieval,
// Chunks for flat retrieval.
type RetrievalResult struct {
	// Query is the original query string.
	Query string

	// Mode is the effective mode after classification.
	Mode QueryMode

	// Groups holds the grouped tree for hierarchical retrieval,
	// ordered by section score descending.
	Groups []SectionGroup

	// Chunks holds the ungrouped result for flat retrieval.
	Chunks []ScoredChunk

	// Fallback is true iff hierarchical retrieval found zero matching
	// sections and degraded to a flat search wrapped in a single
	// pseudo-group. Callers render a fallback indicator from it.
	Fallback bool
}

// TotalChunks counts the chunks across groups or the flat result.
func (r *RetrievalResult) TotalChunks() int {
	if len(r.Chunks) > 0 {
		return len(r.Chunks)
	}
	n := 0
	for i := range r.Groups {
		n += len(r.Groups[i].Chunks)
	}
	return n
}
