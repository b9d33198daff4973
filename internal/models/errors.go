package models

import "errors"

// Domain error kinds returned by the ledger engine. The transport layer
// matches them with errors.Is to pick a status code.
var (
	// ErrAccountNotFound indicates the account key is unknown to the store.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidAmount indicates a non-positive amount or a negative opening balance.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds indicates the debit would take the balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSameAccount indicates a transfer where source and destination match.
	ErrSameAccount = errors.New("transfer source and destination are the same account")

	// ErrTimeout indicates lock acquisition did not finish within the caller's deadline.
	ErrTimeout = errors.New("timed out waiting for account locks")

	// ErrStore wraps an account store I/O failure.
	ErrStore = errors.New("account store failure")

	// ErrLog wraps an audit append failure. When it follows a successful
	// store write the balance did change — degraded success, not rollback.
	ErrLog = errors.New("audit log failure")
)
