package account

import (
	"context"
	"sync"

	"veil/internal/profile/models"
	id "veil/pkg/domain"
	"veil/pkg/platform/sentinel"
)

// InMemoryStore keeps accounts in process memory. Suitable for development
// and tests; production deployments use PostgresStore behind CachingStore.
type InMemoryStore struct {
	mu       sync.RWMutex
	accounts map[id.AccountID]*models.Account
	aliases  map[id.AccountID]id.AccountID
}

// NewInMemoryStore creates an empty in-memory account store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		accounts: make(map[id.AccountID]*models.Account),
		aliases:  make(map[id.AccountID]id.AccountID),
	}
}

// Put inserts or replaces an account. Both the primary and the alias
// identifier resolve to the same snapshot afterwards.
func (s *InMemoryStore) Put(ctx context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := cloneAccount(account)
	if previous, ok := s.accounts[snapshot.ID]; ok && !previous.AliasID.IsNil() {
		delete(s.aliases, previous.AliasID)
	}
	s.accounts[snapshot.ID] = snapshot
	if !snapshot.AliasID.IsNil() {
		s.aliases[snapshot.AliasID] = snapshot.ID
	}
	return nil
}

// GetByServiceIdentifier resolves an account by either identity.
func (s *InMemoryStore) GetByServiceIdentifier(ctx context.Context, identifier models.ServiceIdentifier) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accountID := identifier.UUID
	if identifier.IdentityType == models.IdentityTypeAlias {
		primary, ok := s.aliases[identifier.UUID]
		if !ok {
			return nil, sentinel.ErrNotFound
		}
		accountID = primary
	}

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneAccount(account), nil
}

// Delete removes an account and its alias mapping.
func (s *InMemoryStore) Delete(ctx context.Context, accountID id.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if !account.AliasID.IsNil() {
		delete(s.aliases, account.AliasID)
	}
	delete(s.accounts, accountID)
	return nil
}

func cloneAccount(account *models.Account) *models.Account {
	clone := *account
	clone.UnidentifiedAccessKey = append([]byte(nil), account.UnidentifiedAccessKey...)
	if account.IdentityKeys != nil {
		clone.IdentityKeys = make(map[models.IdentityType][]byte, len(account.IdentityKeys))
		for identityType, key := range account.IdentityKeys {
			clone.IdentityKeys[identityType] = append([]byte(nil), key...)
		}
	}
	clone.Badges = append([]models.Badge(nil), account.Badges...)
	return &clone
}
