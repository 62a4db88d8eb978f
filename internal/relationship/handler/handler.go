// Package handler exposes the relationship endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lineage/internal/relationship/models"
	id "lineage/pkg/domain"
	dErrors "lineage/pkg/domain-errors"
	"lineage/pkg/platform/httputil"
	"lineage/pkg/requestcontext"
)

// Service defines the relationship operations the handler depends on.
type Service interface {
	CreateRelationship(ctx context.Context, ownerID id.UserID, e1, e2 id.PersonID, verb models.Verb) (*models.Relationship, error)
	UpdateRelationship(ctx context.Context, ownerID id.UserID, relID id.RelationshipID, e1, e2 id.PersonID, verb models.Verb) (*models.Relationship, error)
	GetRelationship(ctx context.Context, ownerID id.UserID, relID id.RelationshipID) (*models.Relationship, error)
	ListRelationships(ctx context.Context, ownerID id.UserID) ([]*models.Relationship, error)
	ListForPerson(ctx context.Context, ownerID id.UserID, personID id.PersonID) ([]*models.Relationship, error)
	DeleteRelationship(ctx context.Context, ownerID id.UserID, relID id.RelationshipID) error
}

// Handler wires relationship endpoints to the relationship service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a relationship handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts relationship endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/relationships", h.HandleCreate)
	r.Get("/relationships", h.HandleList)
	r.Get("/relationships/{relationshipID}", h.HandleGet)
	r.Put("/relationships/{relationshipID}", h.HandleUpdate)
	r.Delete("/relationships/{relationshipID}", h.HandleDelete)
	r.Get("/persons/{personID}/relationships", h.HandleListForPerson)
}

func owner(w http.ResponseWriter, ctx context.Context) (id.UserID, bool) {
	userID := requestcontext.UserID(ctx)
	if userID == (id.UserID{}) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return userID, true
}

func pathRelationshipID(w http.ResponseWriter, r *http.Request) (id.RelationshipID, bool) {
	relID, err := id.ParseRelationshipID(chi.URLParam(r, "relationshipID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.RelationshipID{}, false
	}
	return relID, true
}

// HandleCreate handles POST /relationships requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	userID, ok := owner(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RelationshipRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rel, err := h.service.CreateRelationship(ctx, userID, req.ParsedPerson1ID(), req.ParsedPerson2ID(), req.Verb())
	if err != nil {
		h.logger.ErrorContext(ctx, "relationship creation failed",
			"request_id", requestID,
			"owner_id", userID,
			"relationship_type", req.RelationshipType,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "relationship created",
		"request_id", requestID,
		"owner_id", userID,
		"relationship_id", rel.ID,
		"relationship_type", req.RelationshipType,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromRelationship(rel))
}

// HandleUpdate handles PUT /relationships/{relationshipID} requests.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, ok := owner(w, ctx)
	if !ok {
		return
	}
	relID, ok := pathRelationshipID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RelationshipRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rel, err := h.service.UpdateRelationship(ctx, userID, relID, req.ParsedPerson1ID(), req.ParsedPerson2ID(), req.Verb())
	if err != nil {
		h.logger.ErrorContext(ctx, "relationship update failed",
			"request_id", requestID,
			"owner_id", userID,
			"relationship_id", relID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRelationship(rel))
}

// HandleGet handles GET /relationships/{relationshipID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := owner(w, ctx)
	if !ok {
		return
	}
	relID, ok := pathRelationshipID(w, r)
	if !ok {
		return
	}

	rel, err := h.service.GetRelationship(ctx, userID, relID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRelationship(rel))
}

// HandleList handles GET /relationships requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := owner(w, ctx)
	if !ok {
		return
	}

	rels, err := h.service.ListRelationships(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRelationships(rels))
}

// HandleListForPerson handles GET /persons/{personID}/relationships requests.
func (h *Handler) HandleListForPerson(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := owner(w, ctx)
	if !ok {
		return
	}
	personID, err := id.ParsePersonID(chi.URLParam(r, "personID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	rels, err := h.service.ListForPerson(ctx, userID, personID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRelationships(rels))
}

// HandleDelete handles DELETE /relationships/{relationshipID} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, ok := owner(w, ctx)
	if !ok {
		return
	}
	relID, ok := pathRelationshipID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteRelationship(ctx, userID, relID); err != nil {
		h.logger.ErrorContext(ctx, "relationship deletion failed",
			"request_id", requestID,
			"owner_id", userID,
			"relationship_id", relID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
