package audit

import (
	"context"
	"time"

	id "lineage/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose. This
// enables different retention policies and routing downstream.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/data-protection
	// significance: record deletion, merges that discard a record.
	CategoryCompliance EventCategory = "compliance"

	// CategoryOperations covers routine record activity useful for
	// debugging and operational visibility. Can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	OwnerID   id.UserID
	// Subject identifies the record acted on (person or relationship ID).
	Subject string
	Action  string
	// Detail carries an action-specific note, e.g. the kinship verb for
	// relationship events or the source/target pair for merge previews.
	Detail    string
	RequestID string
	ClientIP  string
	UserAgent string
}

type AuditEvent string

const (
	EventPersonCreated AuditEvent = "person_created"
	EventPersonUpdated AuditEvent = "person_updated"
	EventPersonDeleted AuditEvent = "person_deleted"

	EventRelationshipCreated AuditEvent = "relationship_created"
	EventRelationshipUpdated AuditEvent = "relationship_updated"
	EventRelationshipDeleted AuditEvent = "relationship_deleted"

	EventMergePreviewed   AuditEvent = "merge_previewed"
	EventDuplicateScanRun AuditEvent = "duplicate_scan_run"
)

var eventCategories = map[AuditEvent]EventCategory{
	// Deletions and merges discard user data; keep them long-term.
	EventPersonDeleted:       CategoryCompliance,
	EventRelationshipDeleted: CategoryCompliance,
	EventMergePreviewed:      CategoryCompliance,

	EventPersonCreated:       CategoryOperations,
	EventPersonUpdated:       CategoryOperations,
	EventRelationshipCreated: CategoryOperations,
	EventRelationshipUpdated: CategoryOperations,
	EventDuplicateScanRun:    CategoryOperations,
}

// Category returns the EventCategory for this audit event. Unknown events
// default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]Event, error)
}
