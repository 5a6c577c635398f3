package domain

import (
	"fmt"
	"time"
)

// Field names of the flat payload maps exchanged with the library
// store. Work identity is flattened into work_title/work_author so any
// backend can filter on it without nested-object support.
const (
	FieldTitle         = "title"
	FieldAuthor        = "author"
	FieldOriginalTitle = "original_title"
	FieldYear          = "year"
	FieldLanguage      = "language"
	FieldGenre         = "genre"
	FieldSourceID      = "source_id"
	FieldWorkTitle     = "work_title"
	FieldWorkAuthor    = "work_author"
	FieldEdition       = "edition"
	FieldPages         = "pages"
	FieldChunksCount   = "chunks_count"
	FieldCreatedAt     = "created_at"
	FieldDocumentID    = "document_id"
	FieldSectionPath   = "section_path"
	FieldText          = "text"
	FieldSummary       = "summary"
	FieldSummaryText   = "summary_text"
)

// Fields encodes the work into a store payload.
func (w Work) Fields() map[string]any {
	return map[string]any{
		FieldTitle:         w.Title,
		FieldAuthor:        w.Author,
		FieldOriginalTitle: w.OriginalTitle,
		FieldYear:          w.Year,
		FieldLanguage:      w.Language,
		FieldGenre:         w.Genre,
	}
}

// WorkFromFields decodes a work from a store payload.
func WorkFromFields(fields map[string]any) (Work, error) {
	w := Work{
		Title:         stringField(fields, FieldTitle),
		Author:        stringField(fields, FieldAuthor),
		OriginalTitle: stringField(fields, FieldOriginalTitle),
		Year:          intField(fields, FieldYear),
		Language:      stringField(fields, FieldLanguage),
		Genre:         stringField(fields, FieldGenre),
	}
	if w.Ref().IsZero() {
		return Work{}, fmt.Errorf("%w: work record has neither title nor author", ErrInvalidInput)
	}
	return w, nil
}

// Fields encodes the document into a store payload.
func (d Document) Fields() map[string]any {
	return map[string]any{
		FieldSourceID:    d.SourceID,
		FieldWorkTitle:   d.Work.Title,
		FieldWorkAuthor:  d.Work.Author,
		FieldEdition:     d.Edition,
		FieldPages:       d.Pages,
		FieldChunksCount: d.ChunksCount,
		FieldLanguage:    d.Language,
		FieldCreatedAt:   d.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// DocumentFromFields decodes a document from a store payload.
func DocumentFromFields(fields map[string]any) (Document, error) {
	d := Document{
		SourceID:    stringField(fields, FieldSourceID),
		Work:        workRefFromFields(fields),
		Edition:     stringField(fields, FieldEdition),
		Pages:       intField(fields, FieldPages),
		ChunksCount: intField(fields, FieldChunksCount),
		Language:    stringField(fields, FieldLanguage),
		CreatedAt:   timeField(fields, FieldCreatedAt),
	}
	if d.SourceID == "" {
		return Document{}, fmt.Errorf("%w: document record has no source id", ErrInvalidInput)
	}
	return d, nil
}

// Fields encodes the chunk into a store payload.
func (c Chunk) Fields() map[string]any {
	return map[string]any{
		FieldDocumentID:  c.DocumentID,
		FieldWorkTitle:   c.Work.Title,
		FieldWorkAuthor:  c.Work.Author,
		FieldSectionPath: string(c.SectionPath),
		FieldText:        c.Text,
		FieldSummary:     c.Summary,
	}
}

// ChunkFromFields decodes a chunk from a store payload.
func ChunkFromFields(id string, fields map[string]any) (Chunk, error) {
	c := Chunk{
		ID:          id,
		DocumentID:  stringField(fields, FieldDocumentID),
		Work:        workRefFromFields(fields),
		SectionPath: SectionPath(stringField(fields, FieldSectionPath)),
		Text:        stringField(fields, FieldText),
		Summary:     stringField(fields, FieldSummary),
	}
	if c.Text == "" {
		return Chunk{}, fmt.Errorf("%w: chunk record %s has no text", ErrInvalidInput, id)
	}
	return c, nil
}

// Fields encodes the summary into a store payload.
func (s Summary) Fields() map[string]any {
	return map[string]any{
		FieldDocumentID:  s.DocumentID,
		FieldWorkTitle:   s.Work.Title,
		FieldWorkAuthor:  s.Work.Author,
		FieldSectionPath: string(s.SectionPath),
		FieldSummaryText: s.SummaryText,
	}
}

// SummaryFromFields decodes a summary from a store payload.
func SummaryFromFields(id string, fields map[string]any) (Summary, error) {
	s := Summary{
		ID:          id,
		DocumentID:  stringField(fields, FieldDocumentID),
		Work:        workRefFromFields(fields),
		SectionPath: SectionPath(stringField(fields, FieldSectionPath)),
		SummaryText: stringField(fields, FieldSummaryText),
	}
	if s.SectionPath == "" {
		return Summary{}, fmt.Errorf("%w: summary record %s has no section path", ErrInvalidInput, id)
	}
	return s, nil
}

func workRefFromFields(fields map[string]any) WorkRef {
	return WorkRef{
		Title:  stringField(fields, FieldWorkTitle),
		Author: stringField(fields, FieldWorkAuthor),
	}
}

func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

// intField tolerates the numeric types produced by the JSON and TOML
// decoders as well as native ints.
func intField(fields map[string]any, key string) int {
	switch v := fields[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func timeField(fields map[string]any, key string) time.Time {
	s := stringField(fields, key)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
