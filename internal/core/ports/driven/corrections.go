package driven

import "github.com/athenaeum-labs/alexandria/internal/core/domain"

// CorrectionSource loads the static correction table. Loaded once at
// process start; the table itself is immutable afterwards.
type CorrectionSource interface {
	// Load reads and validates the table.
	Load() (*domain.CorrectionTable, error)
}
