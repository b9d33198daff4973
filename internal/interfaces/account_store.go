package interfaces

import (
	"context"

	"github.com/sheikh-saqib/account-balance-ledger/internal/models"
)

// AccountStore is the narrow storage contract the ledger engine needs.
// Put must be durable on return; an implementation that cannot guarantee
// that voids the engine's "Committed" audit semantics.
type AccountStore interface {
	// Get returns the account for key, or models.ErrAccountNotFound.
	Get(ctx context.Context, key string) (models.Account, error)
	// Put writes the account, creating or overwriting it.
	Put(ctx context.Context, account models.Account) error
	// CreateKey returns a fresh unique account key.
	CreateKey() string
}

// BatchWriter is an optional extension of AccountStore. Stores that can
// persist several accounts in one durable write batch implement it, and
// the engine uses it for transfers so both sides commit together.
type BatchWriter interface {
	PutAll(ctx context.Context, accounts []models.Account) error
}
