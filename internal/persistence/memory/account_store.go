// Package memory provides the mutex guarded in-process stores for accounts
// and sessions. Every value handed out is a copy; callers never share state
// with the store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/example/training-dashboard/internal/persistence"
)

// AccountStore keeps accounts in memory.
type AccountStore struct {
	mu         sync.RWMutex
	accounts   map[string]persistence.Account
	byUsername map[string]string
}

// NewAccountStore returns an empty account store.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts:   make(map[string]persistence.Account),
		byUsername: make(map[string]string),
	}
}

// CreateAccount stores a new account. Usernames are compared case-sensitively.
func (s *AccountStore) CreateAccount(ctx context.Context, account persistence.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.ID]; ok {
		return persistence.ErrDuplicate
	}
	if _, ok := s.byUsername[account.Username]; ok {
		return persistence.ErrDuplicate
	}

	s.accounts[account.ID] = account
	s.byUsername[account.Username] = account.ID
	return nil
}

// GetAccount retrieves an account by ID.
func (s *AccountStore) GetAccount(ctx context.Context, id string) (persistence.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return persistence.Account{}, persistence.ErrNotFound
	}
	return account, nil
}

// GetAccountByUsername retrieves an account by its exact username.
func (s *AccountStore) GetAccountByUsername(ctx context.Context, username string) (persistence.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return persistence.Account{}, persistence.ErrNotFound
	}
	return s.accounts[id], nil
}

// UpdateAccount applies the supplied fields of patch. An empty patch leaves
// the account untouched and returns it.
func (s *AccountStore) UpdateAccount(ctx context.Context, id string, patch persistence.AccountPatch) (persistence.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return persistence.Account{}, persistence.ErrNotFound
	}
	if patch.Active != nil {
		account.Active = *patch.Active
	}
	if patch.Role != nil {
		account.Role = *patch.Role
	}
	s.accounts[id] = account
	return account, nil
}

// DeleteAccount removes an account. The self check runs before any lookup so
// an account deleting itself is always refused.
func (s *AccountStore) DeleteAccount(ctx context.Context, id, requestingID string) error {
	if id == requestingID {
		return persistence.ErrSelfDelete
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[id]
	if !ok {
		return persistence.ErrNotFound
	}
	delete(s.accounts, id)
	delete(s.byUsername, account.Username)
	return nil
}

// ListAccounts returns all accounts ordered by CreatedAt ascending.
func (s *AccountStore) ListAccounts(ctx context.Context) ([]persistence.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]persistence.Account, 0, len(s.accounts))
	for _, account := range s.accounts {
		accounts = append(accounts, account)
	}

	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].Username < accounts[j].Username
		}
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})

	return accounts, nil
}

// CountAccounts reports how many accounts are stored.
func (s *AccountStore) CountAccounts(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts), nil
}

// CreateIfEmpty stores account only when the store holds no accounts. It
// reports whether the account was created. The emptiness check and insert
// share one critical section so concurrent bootstraps create at most one
// account.
func (s *AccountStore) CreateIfEmpty(ctx context.Context, account persistence.Account) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.accounts) > 0 {
		return false, nil
	}
	s.accounts[account.ID] = account
	s.byUsername[account.Username] = account.ID
	return true, nil
}
