package interfaces

import (
	"context"

	"github.com/sheikh-saqib/account-balance-ledger/internal/models"
)

// AuditLog is an append-only sink for mutation records. There is no
// update or delete — records are immutable once appended.
type AuditLog interface {
	Append(ctx context.Context, record models.MutationRecord) error
}
