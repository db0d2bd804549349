package profile

import (
	"context"
	"sync"

	"veil/internal/profile/models"
	id "veil/pkg/domain"
	"veil/pkg/platform/sentinel"
)

type versionKey struct {
	accountID id.AccountID
	version   string
}

// InMemoryStore keeps versioned profiles in process memory.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[versionKey]*models.VersionedProfile
}

// NewInMemoryStore creates an empty in-memory profile store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		profiles: make(map[versionKey]*models.VersionedProfile),
	}
}

// Put inserts or replaces a profile version.
func (s *InMemoryStore) Put(ctx context.Context, profile *models.VersionedProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[versionKey{profile.AccountID, profile.Version}] = cloneProfile(profile)
	return nil
}

// Get returns the profile stored for (accountID, version).
func (s *InMemoryStore) Get(ctx context.Context, accountID id.AccountID, version string) (*models.VersionedProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[versionKey{accountID, version}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneProfile(profile), nil
}

// Delete removes a single profile version.
func (s *InMemoryStore) Delete(ctx context.Context, accountID id.AccountID, version string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := versionKey{accountID, version}
	if _, ok := s.profiles[key]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.profiles, key)
	return nil
}

func cloneProfile(profile *models.VersionedProfile) *models.VersionedProfile {
	clone := *profile
	clone.Name = append([]byte(nil), profile.Name...)
	clone.About = append([]byte(nil), profile.About...)
	clone.AboutEmoji = append([]byte(nil), profile.AboutEmoji...)
	clone.PaymentAddress = append([]byte(nil), profile.PaymentAddress...)
	clone.Commitment = append([]byte(nil), profile.Commitment...)
	return &clone
}
