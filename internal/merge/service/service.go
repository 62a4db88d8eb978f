// Package service loads the records a merge preview needs and runs the
// preview core over them.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"lineage/internal/merge"
	personmodels "lineage/internal/person/models"
	relmodels "lineage/internal/relationship/models"
	id "lineage/pkg/domain"
	dErrors "lineage/pkg/domain-errors"
	audit "lineage/pkg/platform/audit"
	"lineage/pkg/platform/sentinel"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// PersonStore resolves the two persons being previewed.
type PersonStore interface {
	FindByOwnerAndID(ctx context.Context, ownerID id.UserID, personID id.PersonID) (*personmodels.Person, error)
}

// RelationshipStore loads each person's relationships for the transfer plan.
type RelationshipStore interface {
	ListByPerson(ctx context.Context, ownerID id.UserID, personID id.PersonID) ([]*relmodels.Relationship, error)
}

// AuditPublisher receives preview audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service computes merge previews. It never writes.
type Service struct {
	persons       PersonStore
	relationships RelationshipStore
	logger        *slog.Logger
	audit         AuditPublisher
	tracer        trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

// New constructs a merge-preview service.
func New(persons PersonStore, relationships RelationshipStore, opts ...Option) *Service {
	s := &Service{
		persons:       persons,
		relationships: relationships,
		logger:        slog.Default(),
		tracer:        otel.Tracer("lineage/merge"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Preview gathers both persons and their relationships concurrently and
// builds the merge preview. Either person missing under the tenant fails
// with an ownership error before any preview is computed.
func (s *Service) Preview(ctx context.Context, ownerID id.UserID, sourceID, targetID id.PersonID) (*merge.Preview, error) {
	ctx, span := s.tracer.Start(ctx, "merge.Preview",
		trace.WithAttributes(
			attribute.String("owner_id", ownerID.String()),
			attribute.String("source_id", sourceID.String()),
			attribute.String("target_id", targetID.String())))
	defer span.End()

	var (
		source, target      *personmodels.Person
		sourceRels, tgtRels []*relmodels.Relationship
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		source, err = s.persons.FindByOwnerAndID(gctx, ownerID, sourceID)
		return err
	})
	g.Go(func() (err error) {
		target, err = s.persons.FindByOwnerAndID(gctx, ownerID, targetID)
		return err
	})
	g.Go(func() (err error) {
		sourceRels, err = s.relationships.ListByPerson(gctx, ownerID, sourceID)
		return err
	})
	g.Go(func() (err error) {
		tgtRels, err = s.relationships.ListByPerson(gctx, ownerID, targetID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, wrapStoreErr(err)
	}

	preview := merge.BuildPreview(source, target, sourceRels, tgtRels)
	span.SetAttributes(
		attribute.Bool("can_merge", preview.CanMerge),
		attribute.Int("conflicts", len(preview.ConflictFields)))

	s.emitAudit(ctx, ownerID, sourceID, targetID, preview)
	return preview, nil
}

func wrapStoreErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeOwnership, "record not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "merge preview storage failure")
}

func (s *Service) emitAudit(ctx context.Context, ownerID id.UserID, sourceID, targetID id.PersonID, preview *merge.Preview) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, audit.Event{
		OwnerID: ownerID,
		Subject: sourceID.String(),
		Action:  string(audit.EventMergePreviewed),
		Detail:  fmt.Sprintf("target %s, %d conflicts, can_merge=%t", targetID, len(preview.ConflictFields), preview.CanMerge),
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event", "action", audit.EventMergePreviewed, "error", err)
	}
}
