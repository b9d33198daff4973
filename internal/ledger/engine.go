package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/account-balance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/account-balance-ledger/internal/locker"
	"github.com/sheikh-saqib/account-balance-ledger/internal/models"
)

// Engine is the only writer of account balances. Every mutation follows
// the same discipline: acquire the account locks, re-read the balances
// fresh, validate, write the store, then append the audit record. The
// store write always happens before the audit append, so a store failure
// can never leave a Committed record behind for a write that didn't land.
type Engine struct {
	store interfaces.AccountStore
	audit interfaces.AuditLog
	locks *locker.Coordinator

	// lockTimeout bounds lock acquisition per operation; zero means the
	// caller's context is the only deadline.
	lockTimeout time.Duration
}

// NewEngine builds an engine on top of a store and an audit sink.
func NewEngine(store interfaces.AccountStore, audit interfaces.AuditLog, lockTimeout time.Duration) *Engine {
	return &Engine{
		store:       store,
		audit:       audit,
		locks:       locker.NewCoordinator(),
		lockTimeout: lockTimeout,
	}
}

// CreateAccount writes a new account with the given opening balance and
// returns it. A negative opening balance is rejected before any key is
// generated, so no half-created account ever exists.
func (e *Engine) CreateAccount(ctx context.Context, openingBalance decimal.Decimal) (models.Account, error) {
	correlationID := uuid.NewString()
	if openingBalance.IsNegative() {
		e.reject(ctx, correlationID, models.MutationCreate, "", openingBalance, decimal.Zero, models.ErrInvalidAmount)
		return models.Account{}, models.ErrInvalidAmount
	}

	account := models.Account{
		Key:       e.store.CreateKey(),
		Balance:   openingBalance,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.store.Put(ctx, account); err != nil {
		return models.Account{}, fmt.Errorf("%w: %v", models.ErrStore, err)
	}
	if err := e.commit(ctx, correlationID, models.MutationCreate, account.Key, openingBalance, account.Balance); err != nil {
		// The account exists; only the audit append failed.
		return account, err
	}
	return account, nil
}

// Balance returns the current balance for key. Both bundled stores give
// point-in-time consistent single-account reads, so no exclusive lock is
// taken here.
func (e *Engine) Balance(ctx context.Context, key string) (decimal.Decimal, error) {
	account, err := e.getAccount(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

// Deposit adds amount to the account's balance and returns the new balance.
func (e *Engine) Deposit(ctx context.Context, key string, amount decimal.Decimal) (decimal.Decimal, error) {
	correlationID := uuid.NewString()
	if !amount.IsPositive() {
		e.reject(ctx, correlationID, models.MutationDeposit, key, amount, decimal.Zero, models.ErrInvalidAmount)
		return decimal.Zero, models.ErrInvalidAmount
	}

	handle, err := e.acquire(ctx, correlationID, models.MutationDeposit, key, amount, key)
	if err != nil {
		return decimal.Zero, err
	}
	defer handle.Release()

	account, err := e.getAccount(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	account.Balance = account.Balance.Add(amount)

	if err := e.store.Put(ctx, account); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", models.ErrStore, err)
	}
	if err := e.commit(ctx, correlationID, models.MutationDeposit, key, amount, account.Balance); err != nil {
		return account.Balance, err
	}
	return account.Balance, nil
}

// Withdraw subtracts amount from the account's balance and returns the
// new balance. The balance check happens after the lock is held and the
// balance re-read, so no interleaving can drive the balance below zero.
// An insufficient-funds attempt is still audited as Rejected.
func (e *Engine) Withdraw(ctx context.Context, key string, amount decimal.Decimal) (decimal.Decimal, error) {
	correlationID := uuid.NewString()
	if !amount.IsPositive() {
		e.reject(ctx, correlationID, models.MutationWithdraw, key, amount, decimal.Zero, models.ErrInvalidAmount)
		return decimal.Zero, models.ErrInvalidAmount
	}

	handle, err := e.acquire(ctx, correlationID, models.MutationWithdraw, key, amount, key)
	if err != nil {
		return decimal.Zero, err
	}
	defer handle.Release()

	account, err := e.getAccount(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.GreaterThan(account.Balance) {
		e.reject(ctx, correlationID, models.MutationWithdraw, key, amount, account.Balance, models.ErrInsufficientFunds)
		return decimal.Zero, models.ErrInsufficientFunds
	}
	account.Balance = account.Balance.Sub(amount)

	if err := e.store.Put(ctx, account); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", models.ErrStore, err)
	}
	if err := e.commit(ctx, correlationID, models.MutationWithdraw, key, amount, account.Balance); err != nil {
		return account.Balance, err
	}
	return account.Balance, nil
}

// Transfer moves amount from one account to another as a single logical
// unit. Both locks are held before either balance is read, both writes
// happen while both locks are held, and the two Committed records share
// one correlation id — no observer of either account can see a state
// where only one side changed.
func (e *Engine) Transfer(ctx context.Context, from, to string, amount decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	correlationID := uuid.NewString()
	if from == to {
		e.reject(ctx, correlationID, models.MutationTransferOut, from, amount, decimal.Zero, models.ErrSameAccount)
		return decimal.Zero, decimal.Zero, models.ErrSameAccount
	}
	if !amount.IsPositive() {
		e.reject(ctx, correlationID, models.MutationTransferOut, from, amount, decimal.Zero, models.ErrInvalidAmount)
		return decimal.Zero, decimal.Zero, models.ErrInvalidAmount
	}

	handle, err := e.acquire(ctx, correlationID, models.MutationTransferOut, from, amount, from, to)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	defer handle.Release()

	source, err := e.getAccount(ctx, from)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	dest, err := e.getAccount(ctx, to)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if amount.GreaterThan(source.Balance) {
		// One rejected record, correlated, covering the whole transfer.
		e.reject(ctx, correlationID, models.MutationTransferOut, from, amount, source.Balance, models.ErrInsufficientFunds)
		return decimal.Zero, decimal.Zero, models.ErrInsufficientFunds
	}

	source.Balance = source.Balance.Sub(amount)
	dest.Balance = dest.Balance.Add(amount)

	if err := e.putPair(ctx, source, dest, amount); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	outErr := e.commit(ctx, correlationID, models.MutationTransferOut, from, amount, source.Balance)
	inErr := e.commit(ctx, correlationID, models.MutationTransferIn, to, amount, dest.Balance)
	if outErr != nil || inErr != nil {
		return source.Balance, dest.Balance, errors.Join(outErr, inErr)
	}
	return source.Balance, dest.Balance, nil
}

// putPair persists both sides of a transfer. Stores that support batch
// writes get both accounts in one durable batch; otherwise the writes go
// out one by one with a compensating rollback of the debit if the credit
// fails, so a partial transfer never survives.
func (e *Engine) putPair(ctx context.Context, source, dest models.Account, amount decimal.Decimal) error {
	if bw, ok := e.store.(interfaces.BatchWriter); ok {
		if err := bw.PutAll(ctx, []models.Account{source, dest}); err != nil {
			return fmt.Errorf("%w: %v", models.ErrStore, err)
		}
		return nil
	}

	if err := e.store.Put(ctx, source); err != nil {
		return fmt.Errorf("%w: %v", models.ErrStore, err)
	}
	if err := e.store.Put(ctx, dest); err != nil {
		source.Balance = source.Balance.Add(amount)
		if rbErr := e.store.Put(ctx, source); rbErr != nil {
			return fmt.Errorf("%w: credit failed (%v) and debit rollback failed (%v)", models.ErrStore, err, rbErr)
		}
		return fmt.Errorf("%w: %v", models.ErrStore, err)
	}
	return nil
}

// acquire takes the locks for keys under the engine's lock timeout (if
// any). A timed-out attempt is audited as Rejected and surfaces as
// models.ErrTimeout; no lock is held and nothing was mutated.
func (e *Engine) acquire(ctx context.Context, correlationID string, kind models.MutationKind, account string, amount decimal.Decimal, keys ...string) (*locker.Handle, error) {
	lockCtx := ctx
	if e.lockTimeout > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, e.lockTimeout)
		defer cancel()
	}
	handle, err := e.locks.Acquire(lockCtx, keys...)
	if err != nil {
		e.reject(ctx, correlationID, kind, account, amount, decimal.Zero, models.ErrTimeout)
		return nil, models.ErrTimeout
	}
	return handle, nil
}

func (e *Engine) getAccount(ctx context.Context, key string) (models.Account, error) {
	account, err := e.store.Get(ctx, key)
	if errors.Is(err, models.ErrAccountNotFound) {
		return models.Account{}, models.ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("%w: %v", models.ErrStore, err)
	}
	return account, nil
}

// commit appends a Committed record. The store write already succeeded
// by the time commit runs, so an append failure is surfaced as ErrLog —
// degraded success, never a rollback; the store is the source of truth.
func (e *Engine) commit(ctx context.Context, correlationID string, kind models.MutationKind, key string, amount, newBalance decimal.Decimal) error {
	record := models.MutationRecord{
		ID:            uuid.NewString(),
		CorrelationID: correlationID,
		Kind:          kind,
		AccountKey:    key,
		Amount:        amount,
		NewBalance:    newBalance,
		Outcome:       models.OutcomeCommitted,
		CreatedAt:     time.Now().UTC(),
	}
	if err := e.audit.Append(ctx, record); err != nil {
		return fmt.Errorf("%w: %v", models.ErrLog, err)
	}
	return nil
}

// reject appends a Rejected record for a failed attempt. Failed attempts
// are observable in the audit trail, not silently dropped. The append is
// detached from the caller's cancellation so a timed-out operation still
// leaves its trace; an append failure here changes nothing for the
// caller, who already has the rejection error.
func (e *Engine) reject(ctx context.Context, correlationID string, kind models.MutationKind, key string, amount, balance decimal.Decimal, cause error) {
	record := models.MutationRecord{
		ID:            uuid.NewString(),
		CorrelationID: correlationID,
		Kind:          kind,
		AccountKey:    key,
		Amount:        amount,
		NewBalance:    balance,
		Outcome:       models.OutcomeRejected,
		Reason:        cause.Error(),
		CreatedAt:     time.Now().UTC(),
	}
	_ = e.audit.Append(context.WithoutCancel(ctx), record)
}
