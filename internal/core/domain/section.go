package domain

import "strings"

// SectionPath is a position in a document's table of contents, written
// as slash-separated segments ("part-1/chapter-3/section-2"). Summary
// section paths partition the chunk section paths of a document: each
// chunk resolves to exactly one owning summary via longest-prefix match.
type SectionPath string

// Segments returns the path split into its components.
func (p SectionPath) Segments() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), "/")
}

// Depth returns the number of segments.
func (p SectionPath) Depth() int {
	return len(p.Segments())
}

// IsDescendantOrSelf reports whether p equals ancestor or lies beneath
// it in the table of contents.
func (p SectionPath) IsDescendantOrSelf(ancestor SectionPath) bool {
	if ancestor == "" {
		// The root owns everything.
		return true
	}
	if p == ancestor {
		return true
	}
	return strings.HasPrefix(string(p), string(ancestor)+"/")
}

// OwningSection resolves the unique owner of a chunk path among the
// given candidate section paths: the longest candidate the chunk path
// descends from. The boolean is false when no candidate matches.
func OwningSection(chunk SectionPath, candidates []SectionPath) (SectionPath, bool) {
	var owner SectionPath
	found := false
	for _, c := range candidates {
		if !chunk.IsDescendantOrSelf(c) {
			continue
		}
		if !found || len(c) > len(owner) {
			owner = c
			found = true
		}
	}
	return owner, found
}
