package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds the balance for a single account key.
// Balance is a fixed-point decimal — money is never represented as a
// binary float anywhere in the engine, so no fractional-cent precision
// is ever lost.
type Account struct {
	Key       string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}
