package driving

import (
	"context"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
)

// CatalogService lists the library's contents by work.
type CatalogService interface {
	// ListWorks groups chunks by their nested work reference and
	// returns one entry per work with its chunk count, sorted by
	// (author, title) case-insensitively.
	ListWorks(ctx context.Context) ([]domain.WorkCount, error)
}
