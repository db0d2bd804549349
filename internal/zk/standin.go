package zk

import (
	"context"
	"crypto/hmac"
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	id "veil/pkg/domain"
)

// Wire sizes of the stand-in scheme. A real engine dictates its own.
const (
	// standInRequestLen is the length a well-formed credential request must
	// have under the stand-in scheme.
	standInRequestLen = 329
	// requestCommitmentOffset is where the request embeds the commitment
	// digest it claims to be bound to.
	requestCommitmentOffset = 0
	commitmentDigestLen     = 32
)

// StandInIssuer is a deterministic MAC-based substitute for the external
// zero-knowledge engine. It lets the gateway run end-to-end in development
// and tests without the real cryptographic library.
//
// It is NOT a zero-knowledge scheme: a request is "verified" by checking that
// it embeds the keyed digest of the commitment, and the issued credential is
// a keyed MAC over the issuance context. Deployments must replace it with a
// real engine behind the same interface.
type StandInIssuer struct {
	secret []byte
}

// NewStandInIssuer creates a stand-in issuer keyed by the server secret.
// The secret must be non-empty; deriving requests and credentials from an
// unkeyed MAC would let anyone forge them.
func NewStandInIssuer(secret []byte) (*StandInIssuer, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("issuer secret is required")
	}
	if len(secret) > blake2b.Size {
		return nil, fmt.Errorf("issuer secret must be at most %d bytes", blake2b.Size)
	}
	return &StandInIssuer{secret: secret}, nil
}

// CreateCredentialRequest builds a request that IssueExpiringProfileKeyCredential
// will accept for the given commitment. Test and development clients use this
// in place of the real client-side request construction.
func (i *StandInIssuer) CreateCredentialRequest(commitment []byte) []byte {
	request := make([]byte, standInRequestLen)
	copy(request[requestCommitmentOffset:], i.commitmentDigest(commitment))
	return request
}

func (i *StandInIssuer) IssueExpiringProfileKeyCredential(
	_ context.Context,
	credentialRequest []byte,
	target id.AccountID,
	commitment []byte,
	expiration time.Time,
) ([]byte, error) {
	if len(credentialRequest) != standInRequestLen {
		return nil, ErrVerificationFailed
	}

	expected := i.commitmentDigest(commitment)
	bound := credentialRequest[requestCommitmentOffset : requestCommitmentOffset+commitmentDigestLen]
	if !hmac.Equal(bound, expected) {
		return nil, ErrVerificationFailed
	}

	mac, err := blake2b.New512(i.secret)
	if err != nil {
		return nil, fmt.Errorf("initialize credential mac: %w", err)
	}
	mac.Write([]byte("expiring-profile-key-credential"))
	mac.Write(credentialRequest)
	targetUUID := target.String()
	mac.Write([]byte(targetUUID))
	mac.Write(commitment)

	var expirationSeconds [8]byte
	binary.BigEndian.PutUint64(expirationSeconds[:], uint64(expiration.Unix()))
	mac.Write(expirationSeconds[:])

	return mac.Sum(nil), nil
}

func (i *StandInIssuer) commitmentDigest(commitment []byte) []byte {
	mac, err := blake2b.New256(i.secret)
	if err != nil {
		// blake2b only rejects oversized keys; the constructor bounds ours.
		panic(err)
	}
	mac.Write([]byte("profile-key-commitment"))
	mac.Write(commitment)
	return mac.Sum(nil)
}

