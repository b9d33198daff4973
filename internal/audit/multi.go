package audit

import (
	"context"

	interfaces "github.com/sheikh-saqib/account-balance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/account-balance-ledger/internal/models"
)

// Multi fans one append out to several sinks, e.g. a durable store plus
// a kafka stream. Appends stop at the first failing sink so the caller
// learns about the gap.
type Multi []interfaces.AuditLog

func (m Multi) Append(ctx context.Context, record models.MutationRecord) error {
	for _, sink := range m {
		if err := sink.Append(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

var _ interfaces.AuditLog = (Multi)(nil)
