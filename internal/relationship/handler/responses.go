package handler

import (
	"time"

	"lineage/internal/relationship/models"
)

// RelationshipResponse is the HTTP representation of a relationship. The
// type is denormalized back to the user-facing verb.
type RelationshipResponse struct {
	ID               string    `json:"id"`
	Person1ID        string    `json:"person1_id"`
	Person2ID        string    `json:"person2_id"`
	RelationshipType string    `json:"relationship_type"`
	CreatedAt        time.Time `json:"created_at"`
}

// ListRelationshipsResponse is the HTTP response for relationship lists.
type ListRelationshipsResponse struct {
	Relationships []RelationshipResponse `json:"relationships"`
	Count         int                    `json:"count"`
}

// FromRelationship converts a domain relationship to an HTTP response.
func FromRelationship(rel *models.Relationship) *RelationshipResponse {
	return &RelationshipResponse{
		ID:               rel.ID.String(),
		Person1ID:        rel.Endpoint1.String(),
		Person2ID:        rel.Endpoint2.String(),
		RelationshipType: string(rel.Kinship.Verb()),
		CreatedAt:        rel.CreatedAt,
	}
}

// FromRelationships converts a relationship list, serializing empty lists
// as [].
func FromRelationships(rels []*models.Relationship) *ListRelationshipsResponse {
	out := make([]RelationshipResponse, 0, len(rels))
	for _, rel := range rels {
		out = append(out, *FromRelationship(rel))
	}
	return &ListRelationshipsResponse{Relationships: out, Count: len(out)}
}
