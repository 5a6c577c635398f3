package services

import (
	"strings"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
)

// hierarchicalLengthThreshold is the raw query length (in runes, after
// trimming) at or above which a query is treated as multi-concept.
const hierarchicalLengthThreshold = 15

// stopWords are articles and short connectors that carry no standalone
// concept. English and French, matching the corpus the library holds.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "of": {}, "in": {}, "on": {}, "to": {},
	"is": {}, "for": {}, "and": {}, "or": {},
	"le": {}, "la": {}, "les": {}, "un": {}, "une": {}, "des": {},
	"de": {}, "du": {}, "au": {}, "aux": {}, "et": {}, "ou": {},
}

// connectors are tokens that join two concepts; their presence alone
// forces hierarchical retrieval.
var connectors = map[string]struct{}{
	"and": {}, "et": {}, "&": {}, "vs": {}, "versus": {},
}

// ClassifyQuery decides the search granularity for a raw query.
// Deterministic, total and pure: any input (including empty) yields a
// mode and never an error.
//
// A query is hierarchical when it carries at least two significant
// tokens, or is long enough to presume multiple concepts, or contains a
// multi-concept connector. The remaining case, one short concept such
// as a bare proper noun, is flat. Ambiguity resolves toward
// hierarchical; richer context wins.
func ClassifyQuery(query string) domain.QueryMode {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return domain.QueryModeFlat
	}

	lowered := strings.ToLower(trimmed)
	tokens := strings.Fields(lowered)

	significant := 0
	hasConnector := false
	for _, tok := range tokens {
		tok = strings.Trim(tok, ".,;:!?\"'()")
		if tok == "" {
			continue
		}
		if _, ok := connectors[tok]; ok {
			hasConnector = true
		}
		if _, ok := stopWords[tok]; !ok {
			significant++
		}
	}

	if significant >= 2 || len([]rune(trimmed)) >= hierarchicalLengthThreshold || hasConnector {
		return domain.QueryModeHierarchical
	}
	return domain.QueryModeFlat
}
