package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"passgate/internal/passes/models"
	dErrors "passgate/pkg/domain-errors"
	"passgate/pkg/platform/httputil"
	"passgate/pkg/platform/privacy"
	"passgate/pkg/requestcontext"
	"passgate/pkg/validation"
)

// Service defines the pass issuance operation used by the handler.
type Service interface {
	Issue(ctx context.Context, req models.PassRequest) (*models.PassRecord, error)
}

// Handler wires pass endpoints to the pass service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a pass handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts pass endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/passes", h.HandleCreateOrGet)
}

// CreatePassRequest is the request body for pass issuance.
type CreatePassRequest struct {
	ExternalID    string         `json:"externalId" validate:"required,notblank,max=256"`
	Email         string         `json:"email,omitempty" validate:"omitempty,max=320"`
	WalletAddress string         `json:"walletAddress,omitempty" validate:"omitempty,max=256"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// Sanitize trims surrounding whitespace from all string fields.
func (r *CreatePassRequest) Sanitize() {
	if r == nil {
		return
	}
	r.ExternalID = strings.TrimSpace(r.ExternalID)
	r.Email = strings.TrimSpace(r.Email)
	r.WalletAddress = strings.TrimSpace(r.WalletAddress)
}

// Validate checks required fields and size limits.
func (r *CreatePassRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

func (r *CreatePassRequest) toModel() models.PassRequest {
	return models.PassRequest{
		ExternalID:    r.ExternalID,
		Email:         r.Email,
		WalletAddress: r.WalletAddress,
		Metadata:      r.Metadata,
	}
}

// HandleCreateOrGet handles POST /api/passes requests.
func (h *Handler) HandleCreateOrGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreatePassRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	record, err := h.service.Issue(ctx, req.toModel())
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create or retrieve pass",
			"request_id", requestID,
			"external_id_hash", privacy.HashIdentifier(req.ExternalID),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, record)
}
