package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/sasha-s/go-deadlock"

	interfaces "github.com/sheikh-saqib/account-balance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/account-balance-ledger/internal/models"
)

// AccountStore is the in-memory reference implementation of
// interfaces.AccountStore. Safe for concurrent callers; reads hand out
// copies so external code can't reach the internal map.
type AccountStore struct {
	mu       deadlock.RWMutex
	accounts map[string]models.Account
}

func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[string]models.Account),
	}
}

// Get returns a snapshot of the account, or models.ErrAccountNotFound.
func (s *AccountStore) Get(ctx context.Context, key string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[key]
	if !ok {
		return models.Account{}, models.ErrAccountNotFound
	}
	return account, nil
}

// Put writes the account, creating or overwriting it.
func (s *AccountStore) Put(ctx context.Context, account models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[account.Key] = account
	return nil
}

// PutAll writes every account under one lock, so a reader never sees
// some of the batch applied and some not.
func (s *AccountStore) PutAll(ctx context.Context, accounts []models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, account := range accounts {
		s.accounts[account.Key] = account
	}
	return nil
}

// CreateKey returns a fresh unique account key.
func (s *AccountStore) CreateKey() string {
	return uuid.NewString()
}

// Accounts returns a copy of every stored account. Useful for tests and
// debugging; not part of the store contract.
func (s *AccountStore) Accounts() []models.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]models.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		copied = append(copied, account)
	}
	return copied
}

// Compile-time checks: the memory store satisfies both store contracts.
var _ interfaces.AccountStore = (*AccountStore)(nil)
var _ interfaces.BatchWriter = (*AccountStore)(nil)
