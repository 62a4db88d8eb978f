package service

import (
	"context"
	"time"

	"lineage/internal/relationship/models"
	id "lineage/pkg/domain"
	dErrors "lineage/pkg/domain-errors"
	audit "lineage/pkg/platform/audit"
	"lineage/pkg/requestcontext"
)

// CreateRelationship validates and persists a new relationship expressed
// with a boundary verb. The checks run fail-fast in a fixed order so a
// request with several problems reports the same one every time.
func (s *Service) CreateRelationship(ctx context.Context, ownerID id.UserID, e1, e2 id.PersonID, verb models.Verb) (*models.Relationship, error) {
	start := time.Now()
	rel, err := s.validateAndPrepare(ctx, ownerID, e1, e2, verb, id.RelationshipID{})
	if s.metrics != nil {
		s.metrics.ObserveValidate(start)
	}
	if err != nil {
		s.countRejection(err)
		return nil, err
	}

	if err := s.relationships.Create(ctx, rel); err != nil {
		return nil, wrapStoreErr(err)
	}
	s.emitAudit(ctx, ownerID, audit.EventRelationshipCreated, rel.ID.String(), string(verb))
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	return rel, nil
}

// UpdateRelationship re-runs the full pipeline for an existing
// relationship, excluding the relationship itself from the cardinality
// and duplicate checks so an update that keeps the same endpoints passes.
func (s *Service) UpdateRelationship(ctx context.Context, ownerID id.UserID, relID id.RelationshipID, e1, e2 id.PersonID, verb models.Verb) (*models.Relationship, error) {
	existing, err := s.relationships.FindByOwnerAndID(ctx, ownerID, relID)
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	start := time.Now()
	rel, err := s.validateAndPrepare(ctx, ownerID, e1, e2, verb, relID)
	if s.metrics != nil {
		s.metrics.ObserveValidate(start)
	}
	if err != nil {
		s.countRejection(err)
		return nil, err
	}

	rel.ID = existing.ID
	rel.CreatedAt = existing.CreatedAt
	if err := s.relationships.Update(ctx, rel); err != nil {
		return nil, wrapStoreErr(err)
	}
	s.emitAudit(ctx, ownerID, audit.EventRelationshipUpdated, rel.ID.String(), string(verb))
	if s.metrics != nil {
		s.metrics.IncrementUpdated()
	}
	return rel, nil
}

// validateAndPrepare is the whole pipeline. exclude names a relationship
// to skip in the cardinality and duplicate checks (the one being updated);
// the zero value excludes nothing.
//
// Order matters and is part of the contract:
//  1. verb is one of mother/father/spouse (also yields the canonical form)
//  2. endpoints are distinct
//  3. both endpoints exist and belong to ownerID
//  4. parentOf only: the child has no parent with this role yet
//  5. no relationship of this kinship type already joins the pair,
//     in either orientation (spouse is symmetric: (B,A) duplicates (A,B))
func (s *Service) validateAndPrepare(ctx context.Context, ownerID id.UserID, e1, e2 id.PersonID, verb models.Verb, exclude id.RelationshipID) (*models.Relationship, error) {
	kinship, err := models.NormalizeVerb(verb)
	if err != nil {
		return nil, err
	}

	if e1 == e2 {
		return nil, dErrors.New(dErrors.CodeSelfRelation, "a person cannot relate to themselves")
	}

	// One ownership code for missing and foreign records alike, so a
	// caller cannot probe whether another tenant holds a given ID.
	for _, endpoint := range []id.PersonID{e1, e2} {
		if _, err := s.persons.FindByOwnerAndID(ctx, ownerID, endpoint); err != nil {
			return nil, dErrors.New(dErrors.CodeOwnership, "person not found")
		}
	}

	if kinship.Type == models.KinshipParentOf {
		// e2 is the child; check its current parents.
		childRels, err := s.relationships.ListByPerson(ctx, ownerID, e2)
		if err != nil {
			return nil, wrapStoreErr(err)
		}
		for _, other := range childRels {
			if other.ID == exclude {
				continue
			}
			if other.Kinship.Type == models.KinshipParentOf &&
				other.Kinship.Role == kinship.Role && other.Child() == e2 {
				return nil, dErrors.Newf(dErrors.CodeDuplicateParentRole,
					"child already has a %s", kinship.Role)
			}
		}
		for _, other := range childRels {
			if other.ID == exclude {
				continue
			}
			if other.Kinship.Type == models.KinshipParentOf && other.SamePair(e1, e2) {
				return nil, dErrors.New(dErrors.CodeDuplicateRelationship,
					"these persons already have a parent relationship")
			}
		}
	} else {
		rels, err := s.relationships.ListByPerson(ctx, ownerID, e1)
		if err != nil {
			return nil, wrapStoreErr(err)
		}
		for _, other := range rels {
			if other.ID == exclude {
				continue
			}
			if other.Kinship.Type == models.KinshipSpouse && other.SamePair(e1, e2) {
				return nil, dErrors.New(dErrors.CodeDuplicateRelationship,
					"these persons already have a spouse relationship")
			}
		}
	}

	return models.New(id.NewRelationshipID(), ownerID, e1, e2, kinship, requestcontext.Now(ctx))
}

func (s *Service) countRejection(err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementRejected(string(dErrors.CodeOf(err)))
}
