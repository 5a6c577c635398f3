package domain

import (
	"fmt"
	"time"
)

// Document represents one ingested source file. It embeds a copy of its
// work rather than a foreign key so the search path never joins.
type Document struct {
	// SourceID identifies the ingested file. Unique across documents
	// and used as the record key of the documents collection.
	SourceID string

	// Work is the nested canonical work reference.
	Work WorkRef

	// Edition is a free-form edition label.
	Edition string

	// Pages is the page count of the source.
	Pages int

	// ChunksCount is the number of chunks produced at ingestion.
	ChunksCount int

	// Language is the document language.
	Language string

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// Validate checks the invariants enforced at the ingestion boundary.
func (d Document) Validate() error {
	if d.SourceID == "" {
		return fmt.Errorf("%w: document source id is required", ErrInvalidInput)
	}
	if d.Work.IsZero() {
		return fmt.Errorf("%w: document %s has no work reference", ErrInvalidInput, d.SourceID)
	}
	return nil
}

// Chunk is the smallest indexed text unit. Its embedding lives in the
// store; the domain type carries the payload fields only.
type Chunk struct {
	// ID is the unique chunk identifier.
	ID string

	// DocumentID is the SourceID of the owning document.
	DocumentID string

	// Work is the nested work reference copied from the document.
	Work WorkRef

	// SectionPath locates the chunk in the document's table of
	// contents, e.g. "part-1/chapter-3".
	SectionPath SectionPath

	// Text is the chunk content.
	Text string

	// Summary is a per-chunk digest filled lazily by a background
	// summarization pass; empty until then.
	Summary string
}

// Validate checks the invariants enforced at the ingestion boundary.
func (c Chunk) Validate() error {
	if c.DocumentID == "" {
		return fmt.Errorf("%w: chunk %s has no document id", ErrInvalidInput, c.ID)
	}
	if c.Work.IsZero() {
		return fmt.Errorf("%w: chunk %s has no work reference", ErrInvalidInput, c.ID)
	}
	if c.SectionPath == "" {
		return fmt.Errorf("%w: chunk %s has no section path", ErrInvalidInput, c.ID)
	}
	if c.Text == "" {
		return fmt.Errorf("%w: chunk %s has no text", ErrInvalidInput, c.ID)
	}
	return nil
}

// Summary is a synthesized description of one document section, indexed
// separately from the chunks it owns. Section paths are unique within a
// document and partition that document's chunk section paths.
type Summary struct {
	// ID is the unique summary identifier.
	ID string

	// DocumentID is the SourceID of the owning document.
	DocumentID string

	// Work is the nested work reference copied from the document.
	Work WorkRef

	// SectionPath identifies the summarized section.
	SectionPath SectionPath

	// SummaryText is the synthesized section description.
	SummaryText string
}

// Validate checks the invariants enforced at the ingestion boundary.
func (s Summary) Validate() error {
	if s.DocumentID == "" {
		return fmt.Errorf("%w: summary %s has no document id", ErrInvalidInput, s.ID)
	}
	if s.SectionPath == "" {
		return fmt.Errorf("%w: summary %s has no section path", ErrInvalidInput, s.ID)
	}
	return nil
}
