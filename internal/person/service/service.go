// Package service implements tenant-scoped person record management.
package service

import (
	"context"
	"errors"
	"log/slog"

	personmetrics "lineage/internal/person/metrics"
	"lineage/internal/person/models"
	id "lineage/pkg/domain"
	dErrors "lineage/pkg/domain-errors"
	audit "lineage/pkg/platform/audit"
	"lineage/pkg/platform/sentinel"
	"lineage/pkg/requestcontext"
)

// PersonStore persists person records, always owner-scoped.
type PersonStore interface {
	Create(ctx context.Context, person *models.Person) error
	FindByOwnerAndID(ctx context.Context, ownerID id.UserID, personID id.PersonID) (*models.Person, error)
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*models.Person, error)
	Update(ctx context.Context, person *models.Person) error
	Delete(ctx context.Context, ownerID id.UserID, personID id.PersonID) error
	CountByOwner(ctx context.Context, ownerID id.UserID) (int, error)
}

// RelationshipCascader removes a person's relationships when the person
// goes away. The Postgres store does this with ON DELETE CASCADE; the
// memory store needs an explicit call.
type RelationshipCascader interface {
	DeleteByPerson(ctx context.Context, ownerID id.UserID, personID id.PersonID) error
}

// AuditPublisher receives audit events for person mutations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// ScanCacheInvalidator drops cached duplicate scans after person writes,
// since any write can change scan results.
type ScanCacheInvalidator interface {
	InvalidateCache(ctx context.Context, ownerID id.UserID)
}

// Service manages person records for one tenant per call.
type Service struct {
	persons     PersonStore
	cascader    RelationshipCascader
	logger      *slog.Logger
	audit       AuditPublisher
	metrics     *personmetrics.Metrics
	invalidator ScanCacheInvalidator
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func WithMetrics(m *personmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithRelationshipCascader wires explicit relationship cleanup on person
// delete, for stores without referential integrity.
func WithRelationshipCascader(c RelationshipCascader) Option {
	return func(s *Service) { s.cascader = c }
}

func WithScanCacheInvalidator(inv ScanCacheInvalidator) Option {
	return func(s *Service) { s.invalidator = inv }
}

// New constructs a person service.
func New(persons PersonStore, opts ...Option) *Service {
	s := &Service{
		persons: persons,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreatePerson validates attributes and stores a new person.
func (s *Service) CreatePerson(ctx context.Context, ownerID id.UserID, attrs models.Attributes) (*models.Person, error) {
	person, err := models.NewPerson(id.NewPersonID(), ownerID, attrs, requestcontext.Now(ctx))
	if err != nil {
		s.countRejection(err)
		return nil, err
	}
	if err := s.persons.Create(ctx, person); err != nil {
		return nil, wrapStoreErr(err)
	}

	s.emitAudit(ctx, ownerID, audit.EventPersonCreated, person.ID.String(), person.FirstName+" "+person.LastName)
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	s.invalidateScans(ctx, ownerID)
	return person, nil
}

// GetPerson retrieves one person, owner-scoped.
func (s *Service) GetPerson(ctx context.Context, ownerID id.UserID, personID id.PersonID) (*models.Person, error) {
	person, err := s.persons.FindByOwnerAndID(ctx, ownerID, personID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	return person, nil
}

// ListPersons returns all of the tenant's persons.
func (s *Service) ListPersons(ctx context.Context, ownerID id.UserID) ([]*models.Person, error) {
	return s.persons.ListByOwner(ctx, ownerID)
}

// UpdatePerson overwrites the mutable fields of an existing person.
func (s *Service) UpdatePerson(ctx context.Context, ownerID id.UserID, personID id.PersonID, attrs models.Attributes) (*models.Person, error) {
	person, err := s.persons.FindByOwnerAndID(ctx, ownerID, personID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}
	if err := person.ApplyUpdate(attrs, requestcontext.Now(ctx)); err != nil {
		s.countRejection(err)
		return nil, err
	}
	if err := s.persons.Update(ctx, person); err != nil {
		return nil, wrapStoreErr(err)
	}

	s.emitAudit(ctx, ownerID, audit.EventPersonUpdated, person.ID.String(), "")
	if s.metrics != nil {
		s.metrics.IncrementUpdated()
	}
	s.invalidateScans(ctx, ownerID)
	return person, nil
}

// DeletePerson removes a person and, through the cascader or the store's
// referential integrity, every relationship that touches them.
func (s *Service) DeletePerson(ctx context.Context, ownerID id.UserID, personID id.PersonID) error {
	if _, err := s.persons.FindByOwnerAndID(ctx, ownerID, personID); err != nil {
		return wrapStoreErr(err)
	}
	if s.cascader != nil {
		if err := s.cascader.DeleteByPerson(ctx, ownerID, personID); err != nil {
			return wrapStoreErr(err)
		}
	}
	if err := s.persons.Delete(ctx, ownerID, personID); err != nil {
		return wrapStoreErr(err)
	}

	s.emitAudit(ctx, ownerID, audit.EventPersonDeleted, personID.String(), "")
	if s.metrics != nil {
		s.metrics.IncrementDeleted()
	}
	s.invalidateScans(ctx, ownerID)
	return nil
}

func (s *Service) invalidateScans(ctx context.Context, ownerID id.UserID) {
	if s.invalidator != nil {
		s.invalidator.InvalidateCache(ctx, ownerID)
	}
}

func (s *Service) countRejection(err error) {
	if s.metrics != nil {
		s.metrics.IncrementRejected(string(dErrors.CodeOf(err)))
	}
}

func wrapStoreErr(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeOwnership, "record not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "person record conflict")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "person storage failure")
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
