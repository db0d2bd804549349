// Package service implements anonymous profile access: fetching another
// account's public profile fields and requesting expiring profile key
// credentials, authorized by an unidentified access key instead of an
// authenticated caller identity.
//
// Every operation passes through a single access gate before any profile or
// credential read. The gate folds "no such account" and "wrong key" into one
// uniform denial so remote callers cannot probe for account existence.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks AccountStore,ProfileStore,CredentialIssuer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	profilemetrics "veil/internal/profile/metrics"
	"veil/internal/profile/models"
	id "veil/pkg/domain"
	dErrors "veil/pkg/domain-errors"
	"veil/pkg/platform/sentinel"
)

// DefaultCredentialWindow is how long an expiring profile key credential
// remains valid, before day-boundary truncation.
const DefaultCredentialWindow = 7 * 24 * time.Hour

// AccountStore resolves account snapshots by service identifier.
// Implementations return sentinel.ErrNotFound for unknown identifiers.
type AccountStore interface {
	GetByServiceIdentifier(ctx context.Context, identifier models.ServiceIdentifier) (*models.Account, error)
}

// ProfileStore resolves one stored profile version.
// Implementations return sentinel.ErrNotFound for unknown versions.
type ProfileStore interface {
	Get(ctx context.Context, accountID id.AccountID, version string) (*models.VersionedProfile, error)
}

// CredentialIssuer is the external zero-knowledge engine behind a narrow
// contract. A verification failure is reported as zk.ErrVerificationFailed
// by the canonical implementation; anything else is an infrastructure fault.
type CredentialIssuer interface {
	IssueExpiringProfileKeyCredential(
		ctx context.Context,
		credentialRequest []byte,
		target id.AccountID,
		commitment []byte,
		expiration time.Time,
	) ([]byte, error)
}

// Service dispatches the three anonymous profile operations. It holds no
// mutable state; every request is decided fresh from store snapshots.
type Service struct {
	accounts AccountStore
	profiles ProfileStore
	issuer   CredentialIssuer

	credentialWindow time.Duration
	logger           *slog.Logger
	metrics          *profilemetrics.Metrics
	tracer           trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics attaches prometheus metrics. Nil metrics are a no-op.
func WithMetrics(m *profilemetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithCredentialWindow overrides the credential validity window.
func WithCredentialWindow(window time.Duration) Option {
	return func(s *Service) {
		s.credentialWindow = window
	}
}

// New creates the anonymous profile service.
func New(accounts AccountStore, profiles ProfileStore, issuer CredentialIssuer, opts ...Option) (*Service, error) {
	if accounts == nil {
		return nil, fmt.Errorf("account store is required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile store is required")
	}
	if issuer == nil {
		return nil, fmt.Errorf("credential issuer is required")
	}

	svc := &Service{
		accounts:         accounts,
		profiles:         profiles,
		issuer:           issuer,
		credentialWindow: DefaultCredentialWindow,
		logger:           slog.Default(),
		tracer:           otel.Tracer("veil/internal/profile/service"),
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc, nil
}

// errUnauthenticated is the uniform denial. Missing key, wrong key, and
// unknown account must be indistinguishable to the caller.
func errUnauthenticated() error {
	return dErrors.New(dErrors.CodeUnauthenticated, "authentication failed")
}

// resolveTarget looks up the target account and runs the access check,
// folding both into a single granted-or-denied outcome before any branching.
// Store faults that are not "no such account" propagate as infrastructure
// errors, never as a domain outcome.
func (s *Service) resolveTarget(ctx context.Context, identifier models.ServiceIdentifier, accessKey []byte) (*models.Account, error) {
	account, err := s.accounts.GetByServiceIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, errUnauthenticated()
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "account lookup failed")
	}

	if !verifyUnidentifiedAccess(account, accessKey) {
		return nil, errUnauthenticated()
	}

	return account, nil
}

// finish records the operation outcome on metrics and the active span.
func (s *Service) finish(span trace.Span, operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(dErrors.GetCode(err))
	}
	span.SetAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	if s.metrics != nil {
		s.metrics.RecordRequest(operation, outcome)
	}
}
