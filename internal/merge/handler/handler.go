// Package handler exposes the merge preview endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lineage/internal/merge"
	id "lineage/pkg/domain"
	dErrors "lineage/pkg/domain-errors"
	"lineage/pkg/platform/httputil"
	"lineage/pkg/requestcontext"
)

// Service defines the merge operations the handler depends on.
type Service interface {
	Preview(ctx context.Context, ownerID id.UserID, sourceID, targetID id.PersonID) (*merge.Preview, error)
}

// Handler wires the merge preview endpoint to the merge service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a merge handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts merge endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/merge/preview", h.HandlePreview)
}

// HandlePreview handles POST /merge/preview requests.
func (h *Handler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	userID := requestcontext.UserID(ctx)
	if userID == (id.UserID{}) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[PreviewRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	preview, err := h.service.Preview(ctx, userID, req.ParsedSourceID(), req.ParsedTargetID())
	if err != nil {
		h.logger.ErrorContext(ctx, "merge preview failed",
			"request_id", requestID,
			"owner_id", userID,
			"source_id", req.SourceID,
			"target_id", req.TargetID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "merge preview computed",
		"request_id", requestID,
		"owner_id", userID,
		"source_id", req.SourceID,
		"target_id", req.TargetID,
		"can_merge", preview.CanMerge,
		"conflicts", len(preview.ConflictFields),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromPreview(preview))
}
