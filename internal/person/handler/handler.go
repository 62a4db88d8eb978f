// Package handler exposes the person CRUD endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"lineage/internal/person/models"
	id "lineage/pkg/domain"
	dErrors "lineage/pkg/domain-errors"
	"lineage/pkg/platform/httputil"
	"lineage/pkg/requestcontext"
)

// Service defines the person operations the handler depends on.
type Service interface {
	CreatePerson(ctx context.Context, ownerID id.UserID, attrs models.Attributes) (*models.Person, error)
	GetPerson(ctx context.Context, ownerID id.UserID, personID id.PersonID) (*models.Person, error)
	ListPersons(ctx context.Context, ownerID id.UserID) ([]*models.Person, error)
	UpdatePerson(ctx context.Context, ownerID id.UserID, personID id.PersonID, attrs models.Attributes) (*models.Person, error)
	DeletePerson(ctx context.Context, ownerID id.UserID, personID id.PersonID) error
}

// Handler wires person endpoints to the person service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a person handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts person endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/persons", h.HandleCreate)
	r.Get("/persons", h.HandleList)
	r.Get("/persons/{personID}", h.HandleGet)
	r.Put("/persons/{personID}", h.HandleUpdate)
	r.Delete("/persons/{personID}", h.HandleDelete)
}

// owner extracts the authenticated tenant or writes a 401.
func owner(w http.ResponseWriter, ctx context.Context) (id.UserID, bool) {
	userID := requestcontext.UserID(ctx)
	if userID == (id.UserID{}) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.UserID{}, false
	}
	return userID, true
}

func pathPersonID(w http.ResponseWriter, r *http.Request) (id.PersonID, bool) {
	personID, err := id.ParsePersonID(chi.URLParam(r, "personID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.PersonID{}, false
	}
	return personID, true
}

// HandleCreate handles POST /persons requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	userID, ok := owner(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[PersonRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	person, err := h.service.CreatePerson(ctx, userID, req.Attributes())
	if err != nil {
		h.logger.ErrorContext(ctx, "person creation failed",
			"request_id", requestID,
			"owner_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "person created",
		"request_id", requestID,
		"owner_id", userID,
		"person_id", person.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromPerson(person))
}

// HandleList handles GET /persons requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := owner(w, ctx)
	if !ok {
		return
	}

	persons, err := h.service.ListPersons(ctx, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPersons(persons))
}

// HandleGet handles GET /persons/{personID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := owner(w, ctx)
	if !ok {
		return
	}
	personID, ok := pathPersonID(w, r)
	if !ok {
		return
	}

	person, err := h.service.GetPerson(ctx, userID, personID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPerson(person))
}

// HandleUpdate handles PUT /persons/{personID} requests.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, ok := owner(w, ctx)
	if !ok {
		return
	}
	personID, ok := pathPersonID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[PersonRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	person, err := h.service.UpdatePerson(ctx, userID, personID, req.Attributes())
	if err != nil {
		h.logger.ErrorContext(ctx, "person update failed",
			"request_id", requestID,
			"owner_id", userID,
			"person_id", personID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPerson(person))
}

// HandleDelete handles DELETE /persons/{personID} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	userID, ok := owner(w, ctx)
	if !ok {
		return
	}
	personID, ok := pathPersonID(w, r)
	if !ok {
		return
	}

	if err := h.service.DeletePerson(ctx, userID, personID); err != nil {
		h.logger.ErrorContext(ctx, "person deletion failed",
			"request_id", requestID,
			"owner_id", userID,
			"person_id", personID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
