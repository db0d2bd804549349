package service

import (
	"context"
	"errors"

	"veil/internal/profile/models"
	dErrors "veil/pkg/domain-errors"
	"veil/pkg/platform/sentinel"
)

// GetVersionedProfileRequest addresses one stored profile version.
type GetVersionedProfileRequest struct {
	AccountIdentifier     models.ServiceIdentifier
	Version               string
	UnidentifiedAccessKey []byte
}

// GetVersionedProfile returns the fields of one stored profile version.
// The payment address is exposed only when the requested version is the one
// the account currently advertises as active; historical versions stay
// fetchable but never reveal it.
func (s *Service) GetVersionedProfile(ctx context.Context, req GetVersionedProfileRequest) (_ *models.VersionedProfileResponse, err error) {
	ctx, span := s.tracer.Start(ctx, "profile.GetVersionedProfile")
	defer func() {
		s.finish(span, "get_versioned_profile", err)
		span.End()
	}()

	// Structural request-shape check, deliberately independent of the access
	// outcome: versioned profiles are defined only for the primary identity.
	if req.AccountIdentifier.IdentityType != models.IdentityTypePrimary {
		return nil, dErrors.New(dErrors.CodeInvalidArgument, "versioned profiles are only available for the primary identity")
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

	response := &models.VersionedProfileResponse{
		Name:       profile.Name,
		About:      profile.About,
		AboutEmoji: profile.AboutEmoji,
		Avatar:     profile.Avatar,
	}

	// An account with no current-version marker never exposes a payment
	// address, even when the requested version exists.
	if account.CurrentProfileVersion != "" && account.CurrentProfileVersion == req.Version {
		response.PaymentAddress = profile.PaymentAddress
	}

	return response, nil
}
