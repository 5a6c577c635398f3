package domain

import "fmt"

// ChunkBatch is a finalized batch handed over by the external ingestion
// pipeline: the chunks of one source document plus its metadata and
// table of contents. PDF parsing, chunking and embedding happen upstream;
// the batch arrives complete and is ingested wholesale or not at all.
type ChunkBatch struct {
	// SourceID identifies the ingested file.
	SourceID string `json:"source_id"`

	// Metadata describes the work the batch belongs to.
	Metadata BatchMetadata `json:"metadata"`

	// Chunks are the leaf text units in document order.
	Chunks []BatchChunk `json:"chunks"`

	// TOC is the table of contents as section paths.
	TOC []string `json:"toc"`

	// Pages is the source page count.
	Pages int `json:"pages"`

	// Language is the document language.
	Language string `json:"language"`
}

// BatchMetadata carries the raw work attributes observed for a batch.
// Title and author may be any spelling; canonicalization resolves them.
type BatchMetadata struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	OriginalTitle string `json:"original_title,omitempty"`
	Year          int    `json:"year,omitempty"`
	Language      string `json:"language,omitempty"`
	Genre         string `json:"genre,omitempty"`
	Edition       string `json:"edition,omitempty"`
}

// Observation converts the metadata into a canonicalization input.
func (m BatchMetadata) Observation() WorkObservation {
	return WorkObservation{
		Title:         m.Title,
		Author:        m.Author,
		OriginalTitle: m.OriginalTitle,
		Year:          m.Year,
		Language:      m.Language,
		Genre:         m.Genre,
	}
}

// BatchChunk is one chunk of an ingestion batch.
type BatchChunk struct {
	SectionPath string `json:"section_path"`
	Text        string `json:"text"`
	Summary     string `json:"summary,omitempty"`
}

// Validate checks the batch invariants before any write happens.
func (b ChunkBatch) Validate() error {
	if b.SourceID == "" {
		return fmt.Errorf("%w: batch has no source id", ErrInvalidInput)
	}
	if b.Metadata.Title == "" && b.Metadata.Author == "" {
		return fmt.Errorf("%w: batch %s has no work metadata", ErrInvalidInput, b.SourceID)
	}
	if len(b.Chunks) == 0 {
		return fmt.Errorf("%w: batch %s has no chunks", ErrInvalidInput, b.SourceID)
	}
	for i, c := range b.Chunks {
		if c.SectionPath == "" {
			return fmt.Errorf("%w: batch %s chunk %d has no section path", ErrInvalidInput, b.SourceID, i)
		}
		if c.Text == "" {
			return fmt.Errorf("%w: batch %s chunk %d has no text", ErrInvalidInput, b.SourceID, i)
		}
	}
	return nil
}

// IngestReport summarizes one successful batch ingestion.
type IngestReport struct {
	// SourceID is the document that was written.
	SourceID string

	// Work is the canonical work reference the batch resolved to.
	Work WorkRef

	// Chunks is the number of chunk records written.
	Chunks int

	// WorksCreated is the number of new canonical works inserted.
	WorksCreated int
}
