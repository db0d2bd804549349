// Package models holds the domain types for anonymous profile access.
//
// Accounts and versioned profiles are snapshots read from external storage;
// this module never mutates them. Response types carry exactly the fields the
// anonymous surface is allowed to expose.
package models

import (
	"strings"

	id "veil/pkg/domain"
	dErrors "veil/pkg/domain-errors"
)

// IdentityType distinguishes the identities an account is addressable by.
type IdentityType string

const (
	// IdentityTypePrimary is the account's main identity. Versioned profile
	// and credential operations are defined only for this type.
	IdentityTypePrimary IdentityType = "primary"
	// IdentityTypeAlias is a secondary identity that hides the primary one.
	IdentityTypeAlias IdentityType = "alias"
)

// aliasPrefix marks alias identifiers in their string form.
const aliasPrefix = "alias:"

// ServiceIdentifier addresses an account by one of its identities.
// Immutable value type; two identifiers are equal iff type and UUID match.
type ServiceIdentifier struct {
	IdentityType IdentityType
	UUID         id.AccountID
}

// ParseServiceIdentifier parses the wire form: a bare UUID addresses the
// primary identity, the "alias:" prefix addresses the alias identity.
func ParseServiceIdentifier(s string) (ServiceIdentifier, error) {
	identityType := IdentityTypePrimary
	if rest, ok := strings.CutPrefix(s, aliasPrefix); ok {
		identityType = IdentityTypeAlias
		s = rest
	}
	accountID, err := id.ParseAccountID(s)
	if err != nil {
		return ServiceIdentifier{}, dErrors.New(dErrors.CodeBadRequest, "malformed service identifier")
	}
	return ServiceIdentifier{IdentityType: identityType, UUID: accountID}, nil
}

func (s ServiceIdentifier) String() string {
	if s.IdentityType == IdentityTypeAlias {
		return aliasPrefix + s.UUID.String()
	}
	return s.UUID.String()
}

// Badge is profile decoration passed through from the account snapshot.
type Badge struct {
	ID          string     `json:"id"`
	Category    string     `json:"category"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Sprites     []string   `json:"sprites"`
	Svg         string     `json:"svg"`
	Svgs        []BadgeSvg `json:"svgs"`
}

// BadgeSvg is one light/dark rendering variant of a badge.
type BadgeSvg struct {
	Light string `json:"light"`
	Dark  string `json:"dark"`
}

// Capabilities are feature flags exposed alongside the profile.
type Capabilities struct {
	DeleteSync               bool `json:"delete_sync"`
	VersionedExpirationTimer bool `json:"versioned_expiration_timer"`
}

// Account is a read-only snapshot of a registered identity.
//
// The snapshot is fetched fresh for every request; access decisions derived
// from it are never cached across requests.
type Account struct {
	ID      id.AccountID
	AliasID id.AccountID // nil UUID when the account has no alias identity

	// IdentityKeys maps identity type to the public identity key for that
	// identity. A type may have no key.
	IdentityKeys map[IdentityType][]byte

	// UnidentifiedAccessKey is the shared secret authorizing anonymous
	// access. Nil means anonymous access is impossible except via the
	// unrestricted flag.
	UnidentifiedAccessKey []byte

	// UnrestrictedUnidentifiedAccess grants anonymous access to anyone,
	// regardless of key.
	UnrestrictedUnidentifiedAccess bool

	// CurrentProfileVersion names the active stored profile version.
	// Empty means no version is marked active.
	CurrentProfileVersion string

	Badges       []Badge
	Capabilities Capabilities
}

// IdentityKey returns the identity key for the given type, if present.
func (a *Account) IdentityKey(t IdentityType) ([]byte, bool) {
	key, ok := a.IdentityKeys[t]
	if !ok || len(key) == 0 {
		return nil, false
	}
	return key, true
}

// VersionedProfile is one stored version of an account's profile.
// All fields except Avatar are opaque ciphertext blobs; the server never
// interprets them.
type VersionedProfile struct {
	AccountID id.AccountID
	Version   string

	Name           []byte
	About          []byte
	AboutEmoji     []byte
	PaymentAddress []byte
	Avatar         string

	// Commitment is the profile-key commitment credential issuance proofs
	// must verify against.
	Commitment []byte
}

// UnversionedProfileResponse is the payload for an unversioned fetch.
type UnversionedProfileResponse struct {
	IdentityKey                    []byte       `json:"identity_key"`
	UnidentifiedAccessChecksum     []byte       `json:"unidentified_access,omitempty"`
	UnrestrictedUnidentifiedAccess bool         `json:"unrestricted_unidentified_access"`
	Capabilities                   Capabilities `json:"capabilities"`
	Badges                         []Badge      `json:"badges"`
}

// VersionedProfileResponse is the payload for a versioned fetch.
// PaymentAddress is populated only when the requested version is the
// account's current profile version.
type VersionedProfileResponse struct {
	Name           []byte `json:"name"`
	About          []byte `json:"about"`
	AboutEmoji     []byte `json:"about_emoji"`
	Avatar         string `json:"avatar"`
	PaymentAddress []byte `json:"payment_address,omitempty"`
}

// CredentialType enumerates the anonymous credential kinds this service can
// issue. Only the expiring profile key credential is supported.
type CredentialType string

const (
	CredentialTypeUnspecified        CredentialType = ""
	CredentialTypeExpiringProfileKey CredentialType = "expiringProfileKey"
)

// ExpiringProfileKeyCredentialResponse carries the issued credential bytes.
type ExpiringProfileKeyCredentialResponse struct {
	Credential []byte `json:"credential"`
}
