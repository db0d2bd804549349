//go:build integration

package profile_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"veil/internal/profile/models"
	"veil/internal/profile/store/profile"
	id "veil/pkg/domain"
	"veil/pkg/platform/sentinel"
	"veil/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *profile.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T(), profile.Schema)

	store, err := profile.NewPostgresStore(s.postgres.Pool)
	s.Require().NoError(err)
	s.store = store
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background(), "profiles"))
}

func newTestProfile(accountID id.AccountID, version string) *models.VersionedProfile {
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

func (s *PostgresStoreSuite) TestPutAndGet() {
	ctx := context.Background()
	accountID := id.AccountID(uuid.New())
	stored := newTestProfile(accountID, "v1")
	s.Require().NoError(s.store.Put(ctx, stored))

	got, err := s.store.Get(ctx, accountID, "v1")
	s.Require().NoError(err)
	s.Equal(stored, got)
}

func (s *PostgresStoreSuite) TestVersionsAreIndependent() {
	ctx := context.Background()
	accountID := id.AccountID(uuid.New())
	s.Require().NoError(s.store.Put(ctx, newTestProfile(accountID, "v1")))
	s.Require().NoError(s.store.Put(ctx, newTestProfile(accountID, "v2")))

	v1, err := s.store.Get(ctx, accountID, "v1")
	s.Require().NoError(err)
	s.Equal([]byte("name-v1"), v1.Name)

	_, err = s.store.Get(ctx, accountID, "v3")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestPutUpserts() {
	ctx := context.Background()
	accountID := id.AccountID(uuid.New())
	stored := newTestProfile(accountID, "v1")
	s.Require().NoError(s.store.Put(ctx, stored))

	stored.Name = []byte("renamed")
	s.Require().NoError(s.store.Put(ctx, stored))

	got, err := s.store.Get(ctx, accountID, "v1")
	s.Require().NoError(err)
	s.Equal([]byte("renamed"), got.Name)
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()
	accountID := id.AccountID(uuid.New())
	s.Require().NoError(s.store.Put(ctx, newTestProfile(accountID, "v1")))
	s.Require().NoError(s.store.Delete(ctx, accountID, "v1"))

	_, err := s.store.Get(ctx, accountID, "v1")
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Delete(ctx, accountID, "v1"), sentinel.ErrNotFound)
}
