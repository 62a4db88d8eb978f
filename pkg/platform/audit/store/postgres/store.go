package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "lineage/pkg/domain"
	audit "lineage/pkg/platform/audit"
	txcontext "lineage/pkg/platform/tx"
)

// Store persists audit events in PostgreSQL. Events land in an append-only
// table; the Kafka publisher is fed separately so the table remains the
// local system of record even when the broker is down.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// payload is the JSON detail column. Field names match audit.Event so a
// consumer can round-trip events without a separate schema.
type payload struct {
	Category  string `json:"Category"`
	Subject   string `json:"Subject,omitempty"`
	Detail    string `json:"Detail,omitempty"`
	RequestID string `json:"RequestID,omitempty"`
	ClientIP  string `json:"ClientIP,omitempty"`
	UserAgent string `json:"UserAgent,omitempty"`
}

// Append writes one audit event. Duplicate event IDs are ignored rather than
// failed, so a retried write after a network error stays idempotent.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	eventID := uuid.New()

	category := audit.AuditEvent(event.Action).Category()
	body, err := json.Marshal(payload{
		Category:  string(category),
		Subject:   event.Subject,
		Detail:    event.Detail,
		RequestID: event.RequestID,
		ClientIP:  event.ClientIP,
		UserAgent: event.UserAgent,
	})
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	query := `
		INSERT INTO audit_events (id, owner_id, action, occurred_at, payload)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		eventID, uuid.UUID(event.OwnerID), event.Action, ts, body)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil
		}
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

// ListByOwner returns a tenant's audit events, oldest first.
func (s *Store) ListByOwner(ctx context.Context, ownerID id.UserID) ([]audit.Event, error) {
	query := `
		SELECT action, occurred_at, payload
		FROM audit_events
		WHERE owner_id = $1
		ORDER BY occurred_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(ownerID))
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			action string
			ts     time.Time
			body   []byte
		)
		if err := rows.Scan(&action, &ts, &body); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		var p payload
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("unmarshal audit payload: %w", err)
		}
		events = append(events, audit.Event{
			Category:  audit.EventCategory(p.Category),
			Timestamp: ts,
			OwnerID:   ownerID,
			Subject:   p.Subject,
			Action:    action,
			Detail:    p.Detail,
			RequestID: p.RequestID,
			ClientIP:  p.ClientIP,
			UserAgent: p.UserAgent,
		})
	}
	return events, rows.Err()
}
