package zk

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "veil/pkg/domain"
)

func TestStandInIssuer(t *testing.T) {
	secret := []byte("test-issuer-secret")
	issuer, err := NewStandInIssuer(secret)
	require.NoError(t, err)

	ctx := context.Background()
	target := id.AccountID(uuid.New())
	commitment := []byte("profile-key-commitment-bytes")
	expiration := time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)

	t.Run("issues deterministic credentials for well-formed requests", func(t *testing.T) {
		request := issuer.CreateCredentialRequest(commitment)

		first, err := issuer.IssueExpiringProfileKeyCredential(ctx, request, target, commitment, expiration)
		require.NoError(t, err)
		require.NotEmpty(t, first)

		second, err := issuer.IssueExpiringProfileKeyCredential(ctx, request, target, commitment, expiration)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("credential binds to expiration", func(t *testing.T) {
		request := issuer.CreateCredentialRequest(commitment)

		first, err := issuer.IssueExpiringProfileKeyCredential(ctx, request, target, commitment, expiration)
		require.NoError(t, err)
		second, err := issuer.IssueExpiringProfileKeyCredential(ctx, request, target, commitment, expiration.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("rejects truncated requests", func(t *testing.T) {
		_, err := issuer.IssueExpiringProfileKeyCredential(ctx, []byte("short"), target, commitment, expiration)
		assert.ErrorIs(t, err, ErrVerificationFailed)
	})

	t.Run("rejects requests bound to a different commitment", func(t *testing.T) {
		request := issuer.CreateCredentialRequest([]byte("some other commitment"))

		_, err := issuer.IssueExpiringProfileKeyCredential(ctx, request, target, commitment, expiration)
		assert.ErrorIs(t, err, ErrVerificationFailed)
	})

	t.Run("requests are not transferable across issuers", func(t *testing.T) {
		other, err := NewStandInIssuer([]byte("another-secret"))
		require.NoError(t, err)

		request := other.CreateCredentialRequest(commitment)
		_, err = issuer.IssueExpiringProfileKeyCredential(ctx, request, target, commitment, expiration)
		assert.ErrorIs(t, err, ErrVerificationFailed)
	})
}

func TestNewStandInIssuer(t *testing.T) {
	t.Run("requires a secret", func(t *testing.T) {
		_, err := NewStandInIssuer(nil)
		assert.Error(t, err)
	})

	t.Run("rejects oversized secrets", func(t *testing.T) {
		_, err := NewStandInIssuer(make([]byte, 65))
		assert.Error(t, err)
	})
}
