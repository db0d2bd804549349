// Package domain provides typed identifiers shared across modules.
//
// IDs are distinct named types over uuid.UUID so the compiler rejects
// cross-type assignment. Parsing enforces validity at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "veil/pkg/domain-errors"
)

// AccountID identifies a registered account.
type AccountID uuid.UUID

// ParseAccountID validates and returns an AccountID.
// Rejects empty strings, malformed UUIDs, and the nil UUID.
func ParseAccountID(s string) (AccountID, error) {
	if s == "" {
		return AccountID{}, dErrors.New(dErrors.CodeBadRequest, "account id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return AccountID{}, dErrors.New(dErrors.CodeBadRequest, "account id is not a valid UUID")
	}
	if u == uuid.Nil {
		return AccountID{}, dErrors.New(dErrors.CodeBadRequest, "account id must not be the nil UUID")
	}
	return AccountID(u), nil
}

func (id AccountID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether the ID is the zero value.
func (id AccountID) IsNil() bool {
	return uuid.UUID(id) == uuid.Nil
}
