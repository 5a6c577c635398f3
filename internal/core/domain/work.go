package domain

import "strings"

// WorkKey is the deduplication identity of a work: the (title, author)
// pair after correction-table normalization, compared case-insensitively.
type WorkKey struct {
	// Title is the lower-cased canonical title.
	Title string

	// Author is the lower-cased canonical author.
	Author string
}

// String renders the key in the form stored as the record key of the
// works collection.
func (k WorkKey) String() string {
	return k.Title + "|" + k.Author
}

// IsZero reports whether the key carries no identity at all.
func (k WorkKey) IsZero() bool {
	return k.Title == "" && k.Author == ""
}

// WorkRef is the denormalized copy of a work's identity carried by
// documents, chunks and summaries. The search path filters and groups by
// it without a join; keeping the copies consistent is the canonicalizer's
// job.
type WorkRef struct {
	// Title is the work title as observed.
	Title string

	// Author is the work author as observed.
	Author string
}

// Key returns the case-insensitive identity of the reference.
func (r WorkRef) Key() WorkKey {
	return WorkKey{
		Title:  strings.ToLower(strings.TrimSpace(r.Title)),
		Author: strings.ToLower(strings.TrimSpace(r.Author)),
	}
}

// IsZero reports whether the reference is empty.
func (r WorkRef) IsZero() bool {
	return strings.TrimSpace(r.Title) == "" && strings.TrimSpace(r.Author) == ""
}

// Work is the canonical identity of an intellectual work, deduplicated
// across spelling and formatting variants. At most one Work exists per
// canonical (title, author) pair. Works are created by consolidation and
// are immutable afterwards.
type Work struct {
	// Title is the canonical title.
	Title string

	// Author is the canonical author.
	Author string

	// OriginalTitle is the title in the original language, if known.
	OriginalTitle string

	// Year is the year of first publication, zero when unknown.
	Year int

	// Language is the language of the canonical edition.
	Language string

	// Genre is a free-form genre label.
	Genre string
}

// Key returns the canonical identity of the work.
func (w Work) Key() WorkKey {
	return w.Ref().Key()
}

// Ref returns the denormalized reference embedded into dependent records.
func (w Work) Ref() WorkRef {
	return WorkRef{Title: w.Title, Author: w.Author}
}

// WorkObservation is one raw sighting of a work, as reported by an
// ingestion batch or by the nested copies on existing records. Only
// Title and Author take part in canonicalization; the remaining
// attributes are elected by majority vote within a canonical group.
type WorkObservation struct {
	Title         string
	Author        string
	OriginalTitle string
	Year          int
	Language      string
	Genre         string
}

// Ref returns the (title, author) pair of the observation.
func (o WorkObservation) Ref() WorkRef {
	return WorkRef{Title: o.Title, Author: o.Author}
}

// WorkCount pairs a work identity with the number of chunks carrying it.
type WorkCount struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ChunksCount int    `json:"chunks_count"`
}
