package service

import (
	"context"
	"errors"
	"time"

	"veil/internal/profile/models"
	"veil/internal/zk"
	dErrors "veil/pkg/domain-errors"
	"veil/pkg/platform/sentinel"
	"veil/pkg/requestcontext"
)

// GetExpiringProfileKeyCredentialRequest asks for one anonymous credential
// bound to a stored profile version. It exists only for the duration of the
// call and carries no cross-request state.
type GetExpiringProfileKeyCredentialRequest struct {
	AccountIdentifier     models.ServiceIdentifier
	Version               string
	CredentialType        models.CredentialType
	CredentialRequest     []byte
	UnidentifiedAccessKey []byte
}

// GetExpiringProfileKeyCredential validates the request, resolves the target
// profile version, and delegates issuance to the zero-knowledge engine.
//
// Credential expiration is the request time plus the configured window,
// truncated down to a UTC day boundary. All credentials issued within one
// calendar day for the same window therefore expire at the same instant,
// which bounds how many distinct expirations an observer can correlate.
func (s *Service) GetExpiringProfileKeyCredential(ctx context.Context, req GetExpiringProfileKeyCredentialRequest) (_ *models.ExpiringProfileKeyCredentialResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "profile.GetExpiringProfileKeyCredential")
	defer func() {
		s.finish(span, "get_expiring_profile_key_credential", err)
		span.End()
	}()

	// Structural checks run before the access gate; they describe the shape
	// of the request, not an authorization outcome.
	if req.AccountIdentifier.IdentityType != models.IdentityTypePrimary {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "credentials are only issued for the primary identity")
	}
	if req.CredentialType != models.CredentialTypeExpiringProfileKey {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "unsupported credential type")
	}

	account, err := s.resolveTarget(ctx, req.AccountIdentifier, req.UnidentifiedAccessKey)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.Get(ctx, account.ID, req.Version)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "profile version not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "profile lookup failed")
	}

	start := time.Now()
	expiration := requestcontext.Now(ctx).UTC().Add(s.credentialWindow).Truncate(24 * time.Hour)

	credential, err := s.issuer.IssueExpiringProfileKeyCredential(ctx, req.CredentialRequest, account.ID, profile.Commitment, expiration)
	if err != nil {
		// Engine verification failures are attacker-influenced input, never
		// an internal fault, and never distinguished further.
		if errors.Is(err, zk.ErrVerificationFailed) {
			return nil, dErrors.New(dErrors.CodeInvalidArgument, "credential request rejected")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "credential issuance failed")
	}

	if s.metrics != nil {
		s.metrics.ObserveCredentialIssuance(start)
	}

	return &models.ExpiringProfileKeyCredentialResponse{Credential: credential}, nil
}
