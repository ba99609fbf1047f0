package memory

import (
	"context"
	"sync"

	"ledger-api/internal/model"
)

// AccountStore keeps accounts in process memory. Safe for concurrent use.
type AccountStore struct {
	mu       sync.RWMutex
	accounts map[string]model.Account
	byEmail  map[string]string
}

func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts: make(map[string]model.Account),
		byEmail:  make(map[string]string),
	}
}

// Save enforces email uniqueness the way the database constraint does.
func (s *AccountStore) Save(_ context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byEmail[account.Email]; taken {
		return model.ErrDuplicatedEmail
	}
	s.accounts[account.AccountID] = *account
	s.byEmail[account.Email] = account.AccountID
	return nil
}

func (s *AccountStore) GetByID(_ context.Context, accountID string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, nil
	}
	return &account, nil
}

func (s *AccountStore) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, nil
	}
	account := s.accounts[id]
	return &account, nil
}
