// Package publisher emits audit events to a store, optionally through an
// async buffer so record mutations never block on audit persistence.
package publisher

import (
	"context"
	"log/slog"
	"sync"

	id "lineage/pkg/domain"
	audit "lineage/pkg/platform/audit"
)

// Publisher writes audit events either synchronously or through a buffered
// channel drained by a background goroutine. When the buffer is full the
// event is dropped and counted; audit must never stall the request path.
type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	inbox  chan audit.Event
	done   chan struct{}
	closed sync.Once

	mu      sync.Mutex
	dropped int
}

type Option func(*Publisher)

// WithAsyncBuffer enables async mode with the given channel capacity.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.inbox = make(chan audit.Event, size)
		}
	}
}

// WithLogger sets the logger used for drop and append failures.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPublisher constructs a publisher over the given store. Without
// WithAsyncBuffer, Emit appends synchronously.
func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		go p.drain()
	}
	return p
}

// Emit records an audit event. In async mode a full buffer drops the event;
// the error return stays nil because callers must not fail their own
// operation over audit backpressure.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
	default:
		p.mu.Lock()
		p.dropped++
		p.mu.Unlock()
		p.logger.Warn("audit buffer full, event dropped", "action", event.Action)
	}
	return nil
}

// List exposes the store's per-owner listing for tests and admin surfaces.
func (p *Publisher) List(ctx context.Context, ownerID id.UserID) ([]audit.Event, error) {
	return p.store.ListByOwner(ctx, ownerID)
}

// Dropped reports how many events were discarded due to a full buffer.
func (p *Publisher) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Close drains any buffered events and stops the background goroutine.
func (p *Publisher) Close() {
	p.closed.Do(func() {
		if p.inbox == nil {
			return
		}
		close(p.inbox)
		<-p.done
	})
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Error("failed to append audit event", "action", event.Action, "error", err)
		}
	}
}
