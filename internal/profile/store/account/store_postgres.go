package account

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

// Schema creates the accounts table. Applied by integration tests and by
// deployments that do not run managed migrations.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id UUID PRIMARY KEY,
	alias_id UUID UNIQUE,
	identity_key BYTEA,
	alias_identity_key BYTEA,
	unidentified_access_key BYTEA,
	unrestricted_unidentified_access BOOLEAN NOT NULL DEFAULT FALSE,
	current_profile_version TEXT NOT NULL DEFAULT '',
	badges JSONB NOT NULL DEFAULT '[]',
	capabilities JSONB NOT NULL DEFAULT '{}'
);
`

// PostgresStore persists accounts in a single accounts table addressable by
// either the primary id or the alias id.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed account store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, errors.New("pgx pool is required")
	}
	return &PostgresStore{pool: pool}, nil
}

const accountColumns = `id, alias_id, identity_key, alias_identity_key,
	unidentified_access_key, unrestricted_unidentified_access,
	current_profile_version, badges, capabilities`

// GetByServiceIdentifier resolves an account by either identity.
func (s *PostgresStore) GetByServiceIdentifier(ctx context.Context, identifier models.ServiceIdentifier) (*models.Account, error) {
	column := "id"
	if identifier.IdentityType == models.IdentityTypeAlias {
		column = "alias_id"
	}

	query := fmt.Sprintf("SELECT %s FROM accounts WHERE %s = $1", accountColumns, column)
	row := s.pool.QueryRow(ctx, query, uuid.UUID(identifier.UUID))
	return scanAccount(row)
}

// Put inserts or replaces an account.
func (s *PostgresStore) Put(ctx context.Context, account *models.Account) error {
	var aliasID uuid.NullUUID
	if !account.AliasID.IsNil() {
		aliasID = uuid.NullUUID{UUID: uuid.UUID(account.AliasID), Valid: true}
	}
	identityKey, _ := account.IdentityKey(models.IdentityTypePrimary)
	aliasIdentityKey, _ := account.IdentityKey(models.IdentityTypeAlias)

	_, err := s.pool.Exec(ctx, `
		INSERT INTO accounts (
			id, alias_id, identity_key, alias_identity_key,
			unidentified_access_key, unrestricted_unidentified_access,
			current_profile_version, badges, capabilities
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			alias_id = EXCLUDED.alias_id,
			identity_key = EXCLUDED.identity_key,
			alias_identity_key = EXCLUDED.alias_identity_key,
			unidentified_access_key = EXCLUDED.unidentified_access_key,
			unrestricted_unidentified_access = EXCLUDED.unrestricted_unidentified_access,
			current_profile_version = EXCLUDED.current_profile_version,
			badges = EXCLUDED.badges,
			capabilities = EXCLUDED.capabilities`,
		uuid.UUID(account.ID), aliasID, identityKey, aliasIdentityKey,
		account.UnidentifiedAccessKey, account.UnrestrictedUnidentifiedAccess,
		account.CurrentProfileVersion, account.Badges, account.Capabilities,
	)
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}

// Delete removes an account.
func (s *PostgresStore) Delete(ctx context.Context, accountID id.AccountID) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM accounts WHERE id = $1", uuid.UUID(accountID))
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func scanAccount(row pgx.Row) (*models.Account, error) {
	var (
		account          models.Account
		accountID        uuid.UUID
		aliasID          uuid.NullUUID
		identityKey      []byte
		aliasIdentityKey []byte
	)

	err := row.Scan(
		&accountID, &aliasID, &identityKey, &aliasIdentityKey,
		&account.UnidentifiedAccessKey, &account.UnrestrictedUnidentifiedAccess,
		&account.CurrentProfileVersion, &account.Badges, &account.Capabilities,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}

	account.ID = id.AccountID(accountID)
	if aliasID.Valid {
		account.AliasID = id.AccountID(aliasID.UUID)
	}
	account.IdentityKeys = make(map[models.IdentityType][]byte, 2)
	if len(identityKey) > 0 {
		account.IdentityKeys[models.IdentityTypePrimary] = identityKey
	}
	if len(aliasIdentityKey) > 0 {
		account.IdentityKeys[models.IdentityTypeAlias] = aliasIdentityKey
	}
	return &account, nil
}
