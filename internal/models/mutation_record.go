package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MutationKind classifies what a mutation record describes.
type MutationKind string

const (
	MutationCreate      MutationKind = "create"
	MutationDeposit     MutationKind = "deposit"
	MutationWithdraw    MutationKind = "withdraw"
	MutationTransferOut MutationKind = "transfer_out"
	MutationTransferIn  MutationKind = "transfer_in"
)

// MutationOutcome says whether the mutation's effects reached the store.
type MutationOutcome string

const (
	OutcomeCommitted MutationOutcome = "committed"
	OutcomeRejected  MutationOutcome = "rejected"
)

// MutationRecord is a single append-only audit entry for one attempted
// balance mutation. Records are immutable once written. The two records
// produced by one transfer (debit + credit) share a CorrelationID; every
// other operation gets a correlation id of its own.
type MutationRecord struct {
	ID            string          `json:"id"`
	CorrelationID string          `json:"correlation_id"`
	Kind          MutationKind    `json:"kind"`
	AccountKey    string          `json:"account_id"`
	Amount        decimal.Decimal `json:"amount"`
	NewBalance    decimal.Decimal `json:"new_balance"` // balance after commit, or the untouched balance on rejection
	Outcome       MutationOutcome `json:"outcome"`
	Reason        string          `json:"reason,omitempty"` // rejection reason, empty for committed records
	CreatedAt     time.Time       `json:"created_at"`
}
