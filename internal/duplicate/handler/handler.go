// Package handler exposes the duplicate scan endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"lineage/internal/duplicate"
	"lineage/internal/duplicate/service"
	id "lineage/pkg/domain"
	dErrors "lineage/pkg/domain-errors"
	"lineage/pkg/platform/httputil"
	"lineage/pkg/requestcontext"
)

// Service defines the scan operations the handler depends on.
type Service interface {
	Scan(ctx context.Context, ownerID id.UserID, params service.ScanParams) ([]duplicate.Candidate, error)
	ScanForPerson(ctx context.Context, ownerID id.UserID, personID id.PersonID, params service.ScanParams) ([]duplicate.Candidate, error)
}

// Handler wires duplicate endpoints to the scan service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a duplicate handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts duplicate endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/duplicates", h.HandleScan)
	r.Get("/persons/{personID}/duplicates", h.HandleScanForPerson)
}

// parseScanParams reads the optional threshold and limit query parameters.
// Non-numeric values are rejected; range checks belong to the detector.
func parseScanParams(r *http.Request) (service.ScanParams, error) {
	var params service.ScanParams
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return params, dErrors.Newf(dErrors.CodeInvalidParameter, "threshold must be an integer, got %q", raw)
		}
		params.Threshold = &v
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return params, dErrors.Newf(dErrors.CodeInvalidParameter, "limit must be an integer, got %q", raw)
		}
		params.Limit = &v
	}
	return params, nil
}

// HandleScan handles GET /duplicates requests.
func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	userID := requestcontext.UserID(ctx)
	if userID == (id.UserID{}) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	params, err := parseScanParams(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	candidates, err := h.service.Scan(ctx, userID, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "duplicate scan failed",
			"request_id", requestID,
			"owner_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "duplicate scan completed",
		"request_id", requestID,
		"owner_id", userID,
		"candidates", len(candidates),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromCandidates(candidates))
}

// HandleScanForPerson handles GET /persons/{personID}/duplicates requests.
func (h *Handler) HandleScanForPerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID := requestcontext.UserID(ctx)
	if userID == (id.UserID{}) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	personID, err := id.ParsePersonID(chi.URLParam(r, "personID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	params, err := parseScanParams(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	candidates, err := h.service.ScanForPerson(ctx, userID, personID, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "person duplicate scan failed",
			"request_id", requestID,
			"owner_id", userID,
			"person_id", personID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromCandidates(candidates))
}
