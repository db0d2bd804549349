package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veil/internal/profile/models"
)

func TestVerifyUnidentifiedAccess(t *testing.T) {
	key := make([]byte, 16)
	for i := range key {
		key[i] = 0x42
	}
	other := make([]byte, 16)
	for i := range other {
		other[i] = 0x43
	}

	tests := []struct {
		name     string
		account  *models.Account
		supplied []byte
		want     bool
	}{
		{
			name:     "matching key grants",
			account:  &models.Account{UnidentifiedAccessKey: key},
			supplied: key,
			want:     true,
		},
		{
			name:     "mismatched key denies",
			account:  &models.Account{UnidentifiedAccessKey: key},
			supplied: other,
			want:     false,
		},
		{
			name:     "truncated key denies",
			account:  &models.Account{UnidentifiedAccessKey: key},
			supplied: key[:8],
			want:     false,
		},
		{
			name:     "missing supplied key denies",
			account:  &models.Account{UnidentifiedAccessKey: key},
			supplied: nil,
			want:     false,
		},
		{
			name:     "missing stored key denies",
			account:  &models.Account{},
			supplied: key,
			want:     false,
		},
		{
			name:     "both keys missing denies",
			account:  &models.Account{},
			supplied: nil,
			want:     false,
		},
		{
			name:     "unrestricted access grants without any key",
			account:  &models.Account{UnrestrictedUnidentifiedAccess: true},
			supplied: nil,
			want:     true,
		},
		{
			name:     "unrestricted access grants despite mismatched key",
			account:  &models.Account{UnidentifiedAccessKey: key, UnrestrictedUnidentifiedAccess: true},
			supplied: other,
			want:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, verifyUnidentifiedAccess(tt.account, tt.supplied))
		})
	}
}

func TestUnidentifiedAccessChecksum(t *testing.T) {
	key := []byte("sixteen byte key")

	first := UnidentifiedAccessChecksum(key)
	second := UnidentifiedAccessChecksum(key)

	require.Len(t, first, 32)
	assert.Equal(t, first, second, "checksum is deterministic for a key")

	otherKey := []byte("another 16b key!")
	assert.NotEqual(t, first, UnidentifiedAccessChecksum(otherKey))
}
