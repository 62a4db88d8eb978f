package service

import (
	"context"
	"errors"
	"log/slog"

	personmodels "lineage/internal/person/models"
	relmetrics "lineage/internal/relationship/metrics"
	"lineage/internal/relationship/models"
	id "lineage/pkg/domain"
	dErrors "lineage/pkg/domain-errors"
	audit "lineage/pkg/platform/audit"
	"lineage/pkg/platform/sentinel"
)

// RelationshipStore persists relationships. Implementations must enforce
// the parent-role and pair-uniqueness constraints on write as a backstop
// against concurrent validators (see store package).
type RelationshipStore interface {
	Create(ctx context.Context, rel *models.Relationship) error
	Update(ctx context.Context, rel *models.Relationship) error
	FindByOwnerAndID(ctx context.Context, ownerID id.UserID, relID id.RelationshipID) (*models.Relationship, error)
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Relationship, error)
	ListByPerson(ctx context.Context, ownerID id.UserID, personID id.PersonID) ([]*models.Relationship, error)
	Delete(ctx context.Context, ownerID id.UserID, relID id.RelationshipID) error
}

// PersonReader resolves endpoint persons for ownership checks.
type PersonReader interface {
	FindByOwnerAndID(ctx context.Context, ownerID id.UserID, personID id.PersonID) (*personmodels.Person, error)
}

// AuditPublisher receives audit events for relationship mutations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs the relationship validation pipeline and orchestrates
// writes. It holds no state between calls; validity is re-derived from
// the store on every request.
type Service struct {
	relationships RelationshipStore
	persons       PersonReader
	logger        *slog.Logger
	audit         AuditPublisher
	metrics       *relmetrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func WithMetrics(m *relmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New constructs a relationship service.
func New(relationships RelationshipStore, persons PersonReader, opts ...Option) *Service {
	s := &Service{
		relationships: relationships,
		persons:       persons,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetRelationship retrieves one relationship, owner-scoped.
func (s *Service) GetRelationship(ctx context.Context, ownerID id.UserID, relID id.RelationshipID) (*models.Relationship, error) {
	rel, err := s.relationships.FindByOwnerAndID(ctx, ownerID, relID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return rel, nil
}

// ListRelationships returns all of a tenant's relationships.
func (s *Service) ListRelationships(ctx context.Context, ownerID id.UserID) ([]*models.Relationship, error) {
	return s.relationships.ListByOwner(ctx, ownerID)
}

// ListForPerson returns every relationship involving the given person.
func (s *Service) ListForPerson(ctx context.Context, ownerID id.UserID, personID id.PersonID) ([]*models.Relationship, error) {
	if _, err := s.persons.FindByOwnerAndID(ctx, ownerID, personID); err != nil {
		return nil, wrapStoreErr(err)
	}
	return s.relationships.ListByPerson(ctx, ownerID, personID)
}

// DeleteRelationship removes one relationship, owner-scoped.
func (s *Service) DeleteRelationship(ctx context.Context, ownerID id.UserID, relID id.RelationshipID) error {
	rel, err := s.relationships.FindByOwnerAndID(ctx, ownerID, relID)
	if err != nil {
		return wrapStoreErr(err)
	}
	if err := s.relationships.Delete(ctx, ownerID, relID); err != nil {
		return wrapStoreErr(err)
	}
	s.emitAudit(ctx, ownerID, audit.EventRelationshipDeleted, rel.ID.String(), string(rel.Kinship.Verb()))
	if s.metrics != nil {
		s.metrics.IncrementDeleted()
	}
	return nil
}

// wrapStoreErr translates store sentinels into domain errors. Not-found
// maps to the ownership code: a record that exists under another tenant
// must look exactly like one that does not exist.
func wrapStoreErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeOwnership, "record not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "a conflicting relationship was created concurrently")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "relationship storage failure")
	}
}

func (s *Service) emitAudit(ctx context.Context, ownerID id.UserID, action audit.AuditEvent, subject, detail string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, audit.Event{
		OwnerID: ownerID,
		Subject: subject,
		Action:  string(action),
		Detail:  detail,
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event", "action", action, "error", err)
	}
}
