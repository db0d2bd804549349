package profile

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"veil/internal/profile/models"
	id "veil/pkg/domain"
	"veil/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) newProfile(accountID id.AccountID, version string) *models.VersionedProfile {
	return &models.VersionedProfile{
		AccountID:      accountID,
		Version:        version,
		Name:           []byte("name-" + version),
		About:          []byte("about-" + version),
		AboutEmoji:     []byte("emoji-" + version),
		PaymentAddress: []byte("payment-" + version),
		Avatar:         "profiles/" + version,
		Commitment:     []byte("commitment-" + version),
	}
}

func (s *InMemoryStoreSuite) TestGetStoredVersion() {
	accountID := id.AccountID(uuid.New())
	profile := s.newProfile(accountID, "v1")
	s.Require().NoError(s.store.Put(s.ctx, profile))

	got, err := s.store.Get(s.ctx, accountID, "v1")
	s.Require().NoError(err)
	s.Equal(profile, got)
}

func (s *InMemoryStoreSuite) TestVersionsAreIndependent() {
	accountID := id.AccountID(uuid.New())
	s.Require().NoError(s.store.Put(s.ctx, s.newProfile(accountID, "v1")))
	s.Require().NoError(s.store.Put(s.ctx, s.newProfile(accountID, "v2")))

	v1, err := s.store.Get(s.ctx, accountID, "v1")
	s.Require().NoError(err)
	v2, err := s.store.Get(s.ctx, accountID, "v2")
	s.Require().NoError(err)
	s.NotEqual(v1.Name, v2.Name)

	_, err = s.store.Get(s.ctx, accountID, "v3")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestUnknownAccount() {
	_, err := s.store.Get(s.ctx, id.AccountID(uuid.New()), "v1")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestReturnsDefensiveCopies() {
	accountID := id.AccountID(uuid.New())
	s.Require().NoError(s.store.Put(s.ctx, s.newProfile(accountID, "v1")))

	first, err := s.store.Get(s.ctx, accountID, "v1")
	s.Require().NoError(err)
	first.PaymentAddress[0] ^= 0xFF

	second, err := s.store.Get(s.ctx, accountID, "v1")
	s.Require().NoError(err)
	s.Equal(byte('p'), second.PaymentAddress[0])
}

func (s *InMemoryStoreSuite) TestDelete() {
	accountID := id.AccountID(uuid.New())
	s.Require().NoError(s.store.Put(s.ctx, s.newProfile(accountID, "v1")))
	s.Require().NoError(s.store.Delete(s.ctx, accountID, "v1"))

	_, err := s.store.Get(s.ctx, accountID, "v1")
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Delete(s.ctx, accountID, "v1"), sentinel.ErrNotFound)
}
