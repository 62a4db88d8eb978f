// Package domain defines the typed identifiers shared across lineage.
//
// Every record carries UUID identity, but raw uuid.UUID values are easy to
// swap by accident (pass a person where an owner belongs and the compiler
// shrugs). Distinct named types make that a compile error and keep tenant
// scoping explicit at every call site.
package domain

import (
	"github.com/google/uuid"

	dErrors "lineage/pkg/domain-errors"
)

// UserID identifies the account (tenant) that owns records.
type UserID uuid.UUID

// PersonID identifies a person record within a tenant's tree.
type PersonID uuid.UUID

// RelationshipID identifies a relationship record.
type RelationshipID uuid.UUID

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id PersonID) String() string       { return uuid.UUID(id).String() }
func (id RelationshipID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id PersonID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id RelationshipID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// NewPersonID mints a fresh person identifier.
func NewPersonID() PersonID { return PersonID(uuid.New()) }

// NewRelationshipID mints a fresh relationship identifier.
func NewRelationshipID() RelationshipID { return RelationshipID(uuid.New()) }

// ParseUserID parses and validates a user ID from its string form.
// Rejects empty strings, malformed UUIDs, and the nil UUID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

// ParsePersonID parses and validates a person ID from its string form.
func ParsePersonID(s string) (PersonID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return PersonID{}, err
	}
	return PersonID(u), nil
}

// ParseRelationshipID parses and validates a relationship ID from its string form.
func ParseRelationshipID(s string) (RelationshipID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return RelationshipID{}, err
	}
	return RelationshipID(u), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}
