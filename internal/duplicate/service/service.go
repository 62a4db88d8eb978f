// Package service orchestrates duplicate scans: loading the tenant's
// persons, consulting the scan cache, running the detector, and recording
// the outcome.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"lineage/internal/duplicate"
	"lineage/internal/duplicate/cache"
	dupmetrics "lineage/internal/duplicate/metrics"
	personmodels "lineage/internal/person/models"
	id "lineage/pkg/domain"
	dErrors "lineage/pkg/domain-errors"
	audit "lineage/pkg/platform/audit"
	"lineage/pkg/platform/sentinel"
)

// PersonStore loads the person set a scan runs over.
type PersonStore interface {
	FindByOwnerAndID(ctx context.Context, ownerID id.UserID, personID id.PersonID) (*personmodels.Person, error)
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*personmodels.Person, error)
}

// AuditPublisher receives scan audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// ScanParams are the caller-supplied scan knobs. Nil means the detector
// default applies.
type ScanParams struct {
	Threshold *int
	Limit     *int
}

func (p ScanParams) options() []duplicate.Option {
	var opts []duplicate.Option
	if p.Threshold != nil {
		opts = append(opts, duplicate.WithThreshold(*p.Threshold))
	}
	if p.Limit != nil {
		opts = append(opts, duplicate.WithLimit(*p.Limit))
	}
	return opts
}

// cacheKey folds the effective parameters into a stable string so scans
// with the same knobs share a cache entry.
func (p ScanParams) cacheKey() string {
	threshold := duplicate.DefaultThreshold
	if p.Threshold != nil {
		threshold = *p.Threshold
	}
	limit := 0
	if p.Limit != nil {
		limit = *p.Limit
	}
	return fmt.Sprintf("t=%d;l=%d", threshold, limit)
}

// Service runs duplicate scans for one tenant at a time.
type Service struct {
	persons PersonStore
	cache   cache.Cache
	ttl     time.Duration
	logger  *slog.Logger
	audit   AuditPublisher
	metrics *dupmetrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

func WithMetrics(m *dupmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithCache enables the scan-result cache with the given TTL.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.ttl = ttl
	}
}

// New constructs a duplicate-scan service.
func New(persons PersonStore, opts ...Option) *Service {
	s := &Service{
		persons: persons,
		logger:  slog.Default(),
		tracer:  otel.Tracer("lineage/duplicate"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan compares every pair of the tenant's persons and returns likely
// duplicates. Results may be served from cache; cached entries are
// invalidated whenever a person in the tenant changes.
func (s *Service) Scan(ctx context.Context, ownerID id.UserID, params ScanParams) ([]duplicate.Candidate, error) {
	ctx, span := s.tracer.Start(ctx, "duplicate.Scan",
		trace.WithAttributes(attribute.String("owner_id", ownerID.String())))
	defer span.End()

	if err := duplicate.ValidateOptions(params.options()...); err != nil {
		s.countRejection(err)
		return nil, err
	}

	key := params.cacheKey()
	if cached, ok := s.cacheGet(ctx, ownerID, key); ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		if s.metrics != nil {
			s.metrics.IncrementScan("cache")
		}
		return cached, nil
	}

	candidates, err := s.compute(ctx, ownerID, params, nil)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, ownerID, key, candidates)
	s.emitAudit(ctx, ownerID, "", len(candidates))
	return candidates, nil
}

// ScanForPerson restricts the scan to pairs involving the given person.
func (s *Service) ScanForPerson(ctx context.Context, ownerID id.UserID, personID id.PersonID, params ScanParams) ([]duplicate.Candidate, error) {
	ctx, span := s.tracer.Start(ctx, "duplicate.ScanForPerson",
		trace.WithAttributes(
			attribute.String("owner_id", ownerID.String()),
			attribute.String("person_id", personID.String())))
	defer span.End()

	if err := duplicate.ValidateOptions(params.options()...); err != nil {
		s.countRejection(err)
		return nil, err
	}

	target, err := s.persons.FindByOwnerAndID(ctx, ownerID, personID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	key := fmt.Sprintf("p=%s;%s", personID, params.cacheKey())
	if cached, ok := s.cacheGet(ctx, ownerID, key); ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		if s.metrics != nil {
			s.metrics.IncrementScan("cache")
		}
		return cached, nil
	}

	candidates, err := s.compute(ctx, ownerID, params, target)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, ownerID, key, candidates)
	s.emitAudit(ctx, ownerID, personID.String(), len(candidates))
	return candidates, nil
}

// compute loads the person set and runs the detector. A non-nil target
// narrows the scan to pairs containing it.
func (s *Service) compute(ctx context.Context, ownerID id.UserID, params ScanParams, target *personmodels.Person) ([]duplicate.Candidate, error) {
	persons, err := s.persons.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	start := time.Now()
	var candidates []duplicate.Candidate
	if target != nil {
		candidates, err = duplicate.FindForPerson(target, persons, params.options()...)
	} else {
		candidates, err = duplicate.FindAll(persons, params.options()...)
	}
	if err != nil {
		s.countRejection(err)
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncrementScan("computed")
		s.metrics.ObserveScan(start, len(candidates))
	}
	return candidates, nil
}

func (s *Service) cacheGet(ctx context.Context, ownerID id.UserID, key string) ([]duplicate.Candidate, bool) {
	if s.cache == nil {
		return nil, false
	}
	cached, ok, err := s.cache.Get(ctx, ownerID, key)
	if err != nil {
		// Cache trouble must never fail a scan.
		s.logger.WarnContext(ctx, "scan cache read failed", "error", err)
		return nil, false
	}
	return cached, ok
}

func (s *Service) cacheSet(ctx context.Context, ownerID id.UserID, key string, candidates []duplicate.Candidate) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, ownerID, key, candidates, s.ttl); err != nil {
		s.logger.WarnContext(ctx, "scan cache write failed", "error", err)
	}
}

// InvalidateCache drops the tenant's cached scan results. Person services
// call this after every person write.
func (s *Service) InvalidateCache(ctx context.Context, ownerID id.UserID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, ownerID); err != nil {
		s.logger.WarnContext(ctx, "scan cache invalidation failed", "error", err)
	}
}

func (s *Service) countRejection(err error) {
	if s.metrics != nil {
		s.metrics.IncrementRejected(string(dErrors.CodeOf(err)))
	}
}

func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeOwnership, "record not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "person storage failure")
}

func (s *Service) emitAudit(ctx context.Context, ownerID id.UserID, subject string, count int) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, audit.Event{
		OwnerID: ownerID,
		Subject: subject,
		Action:  string(audit.EventDuplicateScanRun),
		Detail:  fmt.Sprintf("%d candidates", count),
	}); err != nil {
		s.logger.ErrorContext(ctx, "failed to emit audit event", "action", audit.EventDuplicateScanRun, "error", err)
	}
}
