package handler

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"veil/internal/profile/models"
	"veil/internal/profile/service"
	dErrors "veil/pkg/domain-errors"
	"veil/pkg/platform/httputil"
	"veil/pkg/requestcontext"
)

// UnidentifiedAccessKeyHeader carries the caller's base64-encoded access key.
const UnidentifiedAccessKeyHeader = "Unidentified-Access-Key"

// Service defines the interface for anonymous profile operations.
type Service interface {
	GetUnversionedProfile(ctx context.Context, req service.GetUnversionedProfileRequest) (*models.UnversionedProfileResponse, error)
	GetVersionedProfile(ctx context.Context, req service.GetVersionedProfileRequest) (*models.VersionedProfileResponse, error)
	GetExpiringProfileKeyCredential(ctx context.Context, req service.GetExpiringProfileKeyCredentialRequest) (*models.ExpiringProfileKeyCredentialResponse, error)
}

// Handler wires anonymous profile endpoints to the profile service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a profile handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts profile endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/profile/{identifier}", h.HandleGetUnversionedProfile)
	r.Get("/v1/profile/{identifier}/{version}", h.HandleGetVersionedProfile)
	r.Get("/v1/profile/{identifier}/{version}/{credentialRequest}", h.HandleGetExpiringProfileKeyCredential)
}

// HandleGetUnversionedProfile handles GET /v1/profile/{identifier}.
func (h *Handler) HandleGetUnversionedProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	identifier, accessKey, ok := h.prepare(w, r)
	if !ok {
		return
	}

	response, err := h.service.GetUnversionedProfile(ctx, service.GetUnversionedProfileRequest{
		Identifier:            identifier,
		UnidentifiedAccessKey: accessKey,
	})
	if err != nil {
		h.writeError(ctx, w, "unversioned profile fetch failed", requestID, err)
		return
	}

	h.logger.InfoContext(ctx, "unversioned profile served",
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, response)
}

// HandleGetVersionedProfile handles GET /v1/profile/{identifier}/{version}.
func (h *Handler) HandleGetVersionedProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	identifier, accessKey, ok := h.prepare(w, r)
	if !ok {
		return
	}

	response, err := h.service.GetVersionedProfile(ctx, service.GetVersionedProfileRequest{
		AccountIdentifier:     identifier,
		Version:               chi.URLParam(r, "version"),
		UnidentifiedAccessKey: accessKey,
	})
	if err != nil {
		h.writeError(ctx, w, "versioned profile fetch failed", requestID, err)
		return
	}

	h.logger.InfoContext(ctx, "versioned profile served",
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, response)
}

// HandleGetExpiringProfileKeyCredential handles
// GET /v1/profile/{identifier}/{version}/{credentialRequest}.
func (h *Handler) HandleGetExpiringProfileKeyCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	identifier, accessKey, ok := h.prepare(w, r)
	if !ok {
		return
	}

	credentialRequest, err := hex.DecodeString(chi.URLParam(r, "credentialRequest"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidArgument, "malformed credential request"))
		return
	}

	response, err := h.service.GetExpiringProfileKeyCredential(ctx, service.GetExpiringProfileKeyCredentialRequest{
		AccountIdentifier:     identifier,
		Version:               chi.URLParam(r, "version"),
		CredentialType:        models.CredentialType(r.URL.Query().Get("credentialType")),
		CredentialRequest:     credentialRequest,
		UnidentifiedAccessKey: accessKey,
	})
	if err != nil {
		h.writeError(ctx, w, "credential issuance failed", requestID, err)
		return
	}

	h.logger.InfoContext(ctx, "expiring profile key credential issued",
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, response)
}

// prepare parses the target identifier and the access key header shared by
// every endpoint. A malformed access key is treated as an absent one rather
// than a distinct client error so the failure mode stays uniform.
func (h *Handler) prepare(w http.ResponseWriter, r *http.Request) (models.ServiceIdentifier, []byte, bool) {
	identifier, err := models.ParseServiceIdentifier(chi.URLParam(r, "identifier"))
	if err != nil {
		httputil.WriteError(w, err)
		return models.ServiceIdentifier{}, nil, false
	}

	var accessKey []byte
	if header := r.Header.Get(UnidentifiedAccessKeyHeader); header != "" {
		decoded, err := base64.StdEncoding.DecodeString(header)
		if err == nil {
			accessKey = decoded
		}
	}
	return identifier, accessKey, true
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, message, requestID string, err error) {
	// Denials are expected traffic; only infrastructure faults are errors.
	if dErrors.GetCode(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, message, "request_id", requestID, "error", err)
	} else {
		h.logger.DebugContext(ctx, message, "request_id", requestID, "code", dErrors.GetCode(err))
	}
	httputil.WriteError(w, err)
}
