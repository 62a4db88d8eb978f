package models

import (
	"time"

	id "lineage/pkg/domain"
	dErrors "lineage/pkg/domain-errors"
)

// Relationship links two persons in a tenant's tree.
//
// Invariants:
//   - Endpoint1 and Endpoint2 are distinct persons
//   - Kinship satisfies the type/role invariant (see Kinship)
//   - For parentOf, Endpoint1 is the parent and Endpoint2 the child
//   - Both endpoints belong to the same owner as the relationship
//   - Any child has at most one mother and at most one father
//     (enforced in the service pipeline and backstopped by storage
//     constraints; see store/postgres.go)
type Relationship struct {
	ID        id.RelationshipID `json:"id"`
	OwnerID   id.UserID         `json:"owner_id"`
	Endpoint1 id.PersonID       `json:"endpoint1"`
	Endpoint2 id.PersonID       `json:"endpoint2"`
	Kinship   Kinship           `json:"-"`
	CreatedAt time.Time         `json:"created_at"`
}

// New validates endpoints and constructs a persist-ready relationship.
func New(relID id.RelationshipID, ownerID id.UserID, e1, e2 id.PersonID, kinship Kinship, now time.Time) (*Relationship, error) {
	if e1 == e2 {
		return nil, dErrors.New(dErrors.CodeSelfRelation, "a person cannot relate to themselves")
	}
	if !kinship.Valid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid kinship type/role combination")
	}
	return &Relationship{
		ID:        relID,
		OwnerID:   ownerID,
		Endpoint1: e1,
		Endpoint2: e2,
		Kinship:   kinship,
		CreatedAt: now,
	}, nil
}

// Parent returns the parent endpoint of a parentOf relationship.
func (r *Relationship) Parent() id.PersonID { return r.Endpoint1 }

// Child returns the child endpoint of a parentOf relationship.
func (r *Relationship) Child() id.PersonID { return r.Endpoint2 }

// Involves reports whether personID is one of the two endpoints.
func (r *Relationship) Involves(personID id.PersonID) bool {
	return r.Endpoint1 == personID || r.Endpoint2 == personID
}

// Other returns the endpoint opposite to personID. Callers must check
// Involves first; Other returns the zero ID for a non-member.
func (r *Relationship) Other(personID id.PersonID) id.PersonID {
	switch personID {
	case r.Endpoint1:
		return r.Endpoint2
	case r.Endpoint2:
		return r.Endpoint1
	}
	return id.PersonID{}
}

// SamePair reports whether the relationship joins the same two persons as
// (a, b), in either orientation.
func (r *Relationship) SamePair(a, b id.PersonID) bool {
	return (r.Endpoint1 == a && r.Endpoint2 == b) || (r.Endpoint1 == b && r.Endpoint2 == a)
}
