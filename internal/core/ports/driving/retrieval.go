// Package driving provides interfaces for application entry points (primary/inbound ports).
package driving

import (
	"context"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
)

// RetrievalService answers queries against the library, choosing
// between flat chunk search and hierarchical section-first search.
type RetrievalService interface {
	// Retrieve classifies the query (unless the mode is forced),
	// searches at the selected granularity and returns the ranked,
	// grouped result.
	Retrieve(ctx context.Context, query string, opts domain.RetrieveOptions) (*domain.RetrievalResult, error)
}
