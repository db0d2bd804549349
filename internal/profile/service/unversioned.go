package service

import (
	"context"

	"veil/internal/profile/models"
	dErrors "veil/pkg/domain-errors"
)

// GetUnversionedProfileRequest addresses an account for an unversioned fetch.
type GetUnversionedProfileRequest struct {
	Identifier models.ServiceIdentifier
	// UnidentifiedAccessKey is the caller-supplied access key. Nil means the
	// caller supplied none.
	UnidentifiedAccessKey []byte
}

// GetUnversionedProfile returns the account's identity key, access checksum,
// capabilities, and badges.
func (s *Service) GetUnversionedProfile(ctx context.Context, req GetUnversionedProfileRequest) (_ *models.UnversionedProfileResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "profile.GetUnversionedProfile")
	defer func() {
		s.finish(span, "get_unversioned_profile", err)
		span.End()
	}()

	// Unversioned fetches by the alias identity require an authenticated
	// caller. The denial is the uniform one so the existence of an alias
	// mapping is not observable anonymously.
	if req.Identifier.IdentityType != models.IdentityTypePrimary {
		return nil, errUnauthenticated()
	}

	account, err := s.resolveTarget(ctx, req.Identifier, req.UnidentifiedAccessKey)
	if err != nil {
		return nil, err
	}

	identityKey, ok := account.IdentityKey(req.Identifier.IdentityType)
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "identity key not found")
	}

	response := &models.UnversionedProfileResponse{
		IdentityKey:                    identityKey,
		UnrestrictedUnidentifiedAccess: account.UnrestrictedUnidentifiedAccess,
		Capabilities:                   account.Capabilities,
		Badges:                         account.Badges,
	}

	if len(account.UnidentifiedAccessKey) > 0 {
		response.UnidentifiedAccessChecksum = UnidentifiedAccessChecksum(account.UnidentifiedAccessKey)
	}

	return response, nil
}
