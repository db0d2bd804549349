package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"

	"veil/internal/profile/models"
)

// verifyUnidentifiedAccess decides whether an anonymous caller may address
// the account. It is recomputed for every request; the decision is never
// cached.
//
// The key comparison is constant time: the running time must not depend on
// where the supplied key first differs from the stored one.
func verifyUnidentifiedAccess(account *models.Account, suppliedKey []byte) bool {
	if account.UnrestrictedUnidentifiedAccess {
		return true
	}

	storedKey := account.UnidentifiedAccessKey
	if len(storedKey) == 0 || len(suppliedKey) == 0 {
		return false
	}

	return subtle.ConstantTimeCompare(storedKey, suppliedKey) == 1
}

// UnidentifiedAccessChecksum derives the verifiable digest of an access key
// returned in unversioned profile responses: HMAC-SHA256 keyed by the access
// key over 32 zero bytes. Deterministic so identical fetches yield identical
// responses, and one way so the checksum cannot recover the key.
func UnidentifiedAccessChecksum(key []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(make([]byte, 32))
	return mac.Sum(nil)
}
