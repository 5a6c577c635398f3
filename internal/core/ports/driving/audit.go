package driving

import (
	"context"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
)

// AuditService cross-checks the four collections for orphaned or
// missing references. Strictly read-only: findings are advisory and the
// auditor never repairs.
type AuditService interface {
	// Audit scans the store and returns all findings.
	Audit(ctx context.Context) ([]domain.Finding, error)
}
