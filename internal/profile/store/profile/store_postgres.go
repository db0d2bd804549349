package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"veil/internal/profile/models"
	id "veil/pkg/domain"
	"veil/pkg/platform/sentinel"
)

// Schema creates the profiles table. Applied by integration tests and by
// deployments that do not run managed migrations.
const Schema = `
CREATE TABLE IF NOT EXISTS profiles (
	account_id UUID NOT NULL,
	version TEXT NOT NULL,
	name BYTEA,
	about BYTEA,
	about_emoji BYTEA,
	payment_address BYTEA,
	avatar TEXT NOT NULL DEFAULT '',
	commitment BYTEA,
	PRIMARY KEY (account_id, version)
);
`

// PostgresStore persists versioned profiles keyed by (account_id, version).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed profile store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("pgx pool is required")
	}
	return &PostgresStore{pool: pool}, nil
}

// Get returns the profile stored for (accountID, version).
func (s *PostgresStore) Get(ctx context.Context, accountID id.AccountID, version string) (*models.VersionedProfile, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT account_id, version, name, about, about_emoji,
			payment_address, avatar, commitment
		FROM profiles
		WHERE account_id = $1 AND version = $2`,
		uuid.UUID(accountID), version,
	)

	var (
		profile   models.VersionedProfile
		scannedID uuid.UUID
	)
	err := row.Scan(
		&scannedID, &profile.Version, &profile.Name, &profile.About,
		&profile.AboutEmoji, &profile.PaymentAddress, &profile.Avatar,
		&profile.Commitment,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	profile.AccountID = id.AccountID(scannedID)
	return &profile, nil
}

// Put inserts or replaces a profile version.
func (s *PostgresStore) Put(ctx context.Context, profile *models.VersionedProfile) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO profiles (
			account_id, version, name, about, about_emoji,
			payment_address, avatar, commitment
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (account_id, version) DO UPDATE SET
			name = EXCLUDED.name,
			about = EXCLUDED.about,
			about_emoji = EXCLUDED.about_emoji,
			payment_address = EXCLUDED.payment_address,
			avatar = EXCLUDED.avatar,
			commitment = EXCLUDED.commitment`,
		uuid.UUID(profile.AccountID), profile.Version, profile.Name,
		profile.About, profile.AboutEmoji, profile.PaymentAddress,
		profile.Avatar, profile.Commitment,
	)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

// Delete removes a single profile version.
func (s *PostgresStore) Delete(ctx context.Context, accountID id.AccountID, version string) error {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM profiles WHERE account_id = $1 AND version = $2",
		uuid.UUID(accountID), version,
	)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
