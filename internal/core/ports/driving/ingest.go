package driving

import (
	"context"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
)

// IngestService writes a finalized chunk batch into the store:
// canonical work first, then the document and its chunks.
type IngestService interface {
	// Ingest validates the batch, resolves its work through the
	// canonicalizer and inserts the records. Rerunnable wholesale; a
	// batch whose source id is already present is rejected.
	Ingest(ctx context.Context, batch domain.ChunkBatch) (*domain.IngestReport, error)
}
