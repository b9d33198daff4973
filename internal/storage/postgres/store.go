package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	interfaces "github.com/sheikh-saqib/account-balance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/account-balance-ledger/internal/models"
)

// AccountStore is the durable implementation of interfaces.AccountStore
// on top of postgres. Balances live in a NUMERIC column, so the decimal
// values round-trip without precision loss.
//
// Schema:
//
//	CREATE TABLE accounts (
//	    account_id TEXT PRIMARY KEY,
//	    balance    NUMERIC NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL
//	);
type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{
		db: db,
	}
}

func (s *AccountStore) Get(ctx context.Context, key string) (models.Account, error) {
	const query = `SELECT account_id, balance, created_at FROM accounts WHERE account_id = $1`

	var account models.Account
	err := s.db.QueryRowContext(ctx, query, key).Scan(&account.Key, &account.Balance, &account.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Account{}, models.ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (s *AccountStore) Put(ctx context.Context, account models.Account) error {
	const query = `INSERT INTO accounts (account_id, balance, created_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (account_id) DO UPDATE SET balance = EXCLUDED.balance`

	_, err := s.db.ExecContext(ctx, query, account.Key, account.Balance, account.CreatedAt)
	return err
}

// PutAll writes the whole batch inside one transaction, so both sides of
// a transfer become durable together or not at all.
func (s *AccountStore) PutAll(ctx context.Context, accounts []models.Account) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	const query = `INSERT INTO accounts (account_id, balance, created_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (account_id) DO UPDATE SET balance = EXCLUDED.balance`

	for _, account := range accounts {
		_, err = dbTx.ExecContext(ctx, query, account.Key, account.Balance, account.CreatedAt)
		if err != nil {
			return err
		}
	}
	return dbTx.Commit()
}

func (s *AccountStore) CreateKey() string {
	return uuid.NewString()
}

var _ interfaces.AccountStore = (*AccountStore)(nil)
var _ interfaces.BatchWriter = (*AccountStore)(nil)
