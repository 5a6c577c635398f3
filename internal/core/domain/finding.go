package domain

import "fmt"

// FindingType classifies a consistency audit finding.
type FindingType string

const (
	// FindingOrphanDocument is a document no chunk references.
	FindingOrphanDocument FindingType = "orphan_document"

	// FindingUnknownWork is a chunk or summary whose nested work
	// matches no canonical work record.
	FindingUnknownWork FindingType = "unknown_work"

	// FindingEmptySection is a summary section owning zero chunks.
	FindingEmptySection FindingType = "empty_section"

	// FindingUncoveredChunk is a chunk with no owning summary in a
	// document that has summaries for other sections. Non-fatal:
	// summarization is a lazy background pass.
	FindingUncoveredChunk FindingType = "uncovered_chunk"
)

// Finding is one advisory audit result. Findings never abort a request
// and the verifier never repairs.
type Finding struct {
	// Type classifies the inconsistency.
	Type FindingType

	// Collection is the collection the offending record lives in.
	Collection Collection

	// Key identifies the offending record.
	Key string

	// Detail is a human-readable explanation.
	Detail string
}

// String renders the finding for logs and CLI output.
func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s/%s: %s", f.Type, f.Collection, f.Key, f.Detail)
}
