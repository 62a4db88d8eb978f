package handler

import (
	"strings"

	"lineage/internal/relationship/models"
	id "lineage/pkg/domain"
	dErrors "lineage/pkg/domain-errors"
)

// RelationshipRequest is the HTTP request body for creating or updating a
// relationship. The relationship type is the user-facing verb; the
// service normalizes it to stored form.
type RelationshipRequest struct {
	Person1ID        string `json:"person1_id"`
	Person2ID        string `json:"person2_id"`
	RelationshipType string `json:"relationship_type"`

	person1ID id.PersonID
	person2ID id.PersonID
}

func (r *RelationshipRequest) Normalize() {
	r.Person1ID = strings.TrimSpace(r.Person1ID)
	r.Person2ID = strings.TrimSpace(r.Person2ID)
	r.RelationshipType = strings.TrimSpace(r.RelationshipType)
}

func (r *RelationshipRequest) Validate() error {
	var err error
	if r.person1ID, err = id.ParsePersonID(r.Person1ID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid person1_id")
	}
	if r.person2ID, err = id.ParsePersonID(r.Person2ID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid person2_id")
	}
	if r.RelationshipType == "" {
		return dErrors.New(dErrors.CodeBadRequest, "relationship_type is required")
	}
	return nil
}

// ParsedPerson1ID returns the first endpoint. Valid only after Validate.
func (r *RelationshipRequest) ParsedPerson1ID() id.PersonID { return r.person1ID }

// ParsedPerson2ID returns the second endpoint. Valid only after Validate.
func (r *RelationshipRequest) ParsedPerson2ID() id.PersonID { return r.person2ID }

// Verb returns the requested kinship verb. Unknown verbs are rejected by
// the service, not here, so the error carries the domain code.
func (r *RelationshipRequest) Verb() models.Verb { return models.Verb(r.RelationshipType) }
