package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"lineage/internal/relationship/models"
	id "lineage/pkg/domain"
	"lineage/pkg/platform/sentinel"
)

// InMemory stores relationships in memory for tests/dev.
//
// Create and Update re-check the parent-cardinality and pair-uniqueness
// constraints under the write lock. The service already validates them,
// but two concurrent requests can both pass validation before either
// write lands; the store check under the lock is the backstop, matching
// the unique indexes the Postgres store relies on.
type InMemory struct {
	mu            sync.RWMutex
	relationships map[id.RelationshipID]*models.Relationship
}

// NewInMemory constructs an empty in-memory relationship store.
func NewInMemory() *InMemory {
	return &InMemory{relationships: make(map[id.RelationshipID]*models.Relationship)}
}

func (s *InMemory) Create(_ context.Context, rel *models.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.relationships[rel.ID]; ok {
		return fmt.Errorf("relationship %s: %w", rel.ID, sentinel.ErrConflict)
	}
	if err := s.checkConstraints(rel, id.RelationshipID{}); err != nil {
		return err
	}
	cp := *rel
	s.relationships[rel.ID] = &cp
	return nil
}

func (s *InMemory) Update(_ context.Context, rel *models.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.relationships[rel.ID]
	if !ok || existing.OwnerID != rel.OwnerID {
		return fmt.Errorf("relationship not found: %w", sentinel.ErrNotFound)
	}
	if err := s.checkConstraints(rel, rel.ID); err != nil {
		return err
	}
	cp := *rel
	s.relationships[rel.ID] = &cp
	return nil
}

// checkConstraints enforces, under the lock, at most one parent per role
// per child and pair uniqueness per kinship type. exclude skips the
// relationship being updated.
func (s *InMemory) checkConstraints(rel *models.Relationship, exclude id.RelationshipID) error {
	for _, other := range s.relationships {
		if other.ID == exclude || other.OwnerID != rel.OwnerID {
			continue
		}
		if other.Kinship.Type != rel.Kinship.Type {
			continue
		}
		if rel.Kinship.Type == models.KinshipParentOf {
			if other.Kinship.Role == rel.Kinship.Role && other.Child() == rel.Child() {
				return fmt.Errorf("child already has a %s: %w", rel.Kinship.Role, sentinel.ErrConflict)
			}
		}
		if other.SamePair(rel.Endpoint1, rel.Endpoint2) {
			return fmt.Errorf("relationship already exists: %w", sentinel.ErrConflict)
		}
	}
	return nil
}

func (s *InMemory) FindByOwnerAndID(_ context.Context, ownerID id.UserID, relID id.RelationshipID) (*models.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rel, ok := s.relationships[relID]
	if !ok || rel.OwnerID != ownerID {
		return nil, fmt.Errorf("relationship not found: %w", sentinel.ErrNotFound)
	}
	cp := *rel
	return &cp, nil
}

func (s *InMemory) ListByOwner(_ context.Context, ownerID id.UserID) ([]*models.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Relationship
	for _, rel := range s.relationships {
		if rel.OwnerID == ownerID {
			cp := *rel
			out = append(out, &cp)
		}
	}
	sortByCreation(out)
	return out, nil
}

// ListByPerson returns every relationship with personID as either endpoint.
func (s *InMemory) ListByPerson(_ context.Context, ownerID id.UserID, personID id.PersonID) ([]*models.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Relationship
	for _, rel := range s.relationships {
		if rel.OwnerID == ownerID && rel.Involves(personID) {
			cp := *rel
			out = append(out, &cp)
		}
	}
	sortByCreation(out)
	return out, nil
}

func (s *InMemory) Delete(_ context.Context, ownerID id.UserID, relID id.RelationshipID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rel, ok := s.relationships[relID]
	if !ok || rel.OwnerID != ownerID {
		return fmt.Errorf("relationship not found: %w", sentinel.ErrNotFound)
	}
	delete(s.relationships, relID)
	return nil
}

// DeleteByPerson removes every relationship touching personID. Used as the
// cascade when a person record is deleted.
func (s *InMemory) DeleteByPerson(_ context.Context, ownerID id.UserID, personID id.PersonID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for relID, rel := range s.relationships {
		if rel.OwnerID == ownerID && rel.Involves(personID) {
			delete(s.relationships, relID)
		}
	}
	return nil
}

func sortByCreation(rels []*models.Relationship) {
	sort.Slice(rels, func(i, j int) bool {
		if rels[i].CreatedAt.Equal(rels[j].CreatedAt) {
			return rels[i].ID.String() < rels[j].ID.String()
		}
		return rels[i].CreatedAt.Before(rels[j].CreatedAt)
	})
}
