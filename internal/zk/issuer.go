// Package zk defines the credential issuance capability consumed by the
// anonymous profile service.
//
// The real zero-knowledge engine is an external primitive; this package only
// fixes its narrow contract (request bytes plus issuance context in,
// credential bytes or a verification failure out) so the service can treat it
// as an injected dependency and tests can swap it for a mock.
package zk

import (
	"context"
	"errors"
	"time"

	id "veil/pkg/domain"
)

// ErrVerificationFailed indicates the credential request was malformed or its
// proof did not verify against the profile-key commitment. Callers map it to
// an invalid-argument outcome without distinguishing which check failed.
var ErrVerificationFailed = errors.New("credential request verification failed")

// CredentialIssuer issues time-bound anonymous credentials.
type CredentialIssuer interface {
	// IssueExpiringProfileKeyCredential verifies that credentialRequest
	// proves knowledge of the profile key bound to commitment, and issues a
	// credential for target valid until expiration.
	IssueExpiringProfileKeyCredential(
		ctx context.Context,
		credentialRequest []byte,
		target id.AccountID,
		commitment []byte,
		expiration time.Time,
	) ([]byte, error)
}
