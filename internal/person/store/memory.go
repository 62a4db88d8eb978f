package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"lineage/internal/person/models"
	id "lineage/pkg/domain"
	"lineage/pkg/platform/sentinel"
)

// Error Contract:
// All store methods follow this pattern:
// - Return ErrNotFound when the record does not exist for the given owner
// - Return nil for successful operations
// - Return wrapped errors with context for infrastructure failures
//
// Lookups are always owner-scoped; a record owned by another tenant is
// indistinguishable from a missing one.

// InMemory stores persons in memory for tests/dev.
type InMemory struct {
	mu      sync.RWMutex
	persons map[id.PersonID]*models.Person
}

// NewInMemory constructs an empty in-memory person store.
func NewInMemory() *InMemory {
	return &InMemory{persons: make(map[id.PersonID]*models.Person)}
}

func (s *InMemory) Create(_ context.Context, person *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.persons[person.ID]; ok {
		return fmt.Errorf("person %s: %w", person.ID, sentinel.ErrConflict)
	}
	cp := *person
	s.persons[person.ID] = &cp
	return nil
}

func (s *InMemory) FindByOwnerAndID(_ context.Context, ownerID id.UserID, personID id.PersonID) (*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	person, ok := s.persons[personID]
	if !ok || person.OwnerID != ownerID {
		return nil, fmt.Errorf("person not found: %w", sentinel.ErrNotFound)
	}
	cp := *person
	return &cp, nil
}

func (s *InMemory) ListByOwner(_ context.Context, ownerID id.UserID) ([]*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Person
	for _, person := range s.persons {
		if person.OwnerID != ownerID {
			continue
		}
		cp := *person
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemory) Update(_ context.Context, person *models.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.persons[person.ID]
	if !ok || existing.OwnerID != person.OwnerID {
		return fmt.Errorf("person not found: %w", sentinel.ErrNotFound)
	}
	cp := *person
	s.persons[person.ID] = &cp
	return nil
}

func (s *InMemory) Delete(_ context.Context, ownerID id.UserID, personID id.PersonID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.persons[personID]
	if !ok || existing.OwnerID != ownerID {
		return fmt.Errorf("person not found: %w", sentinel.ErrNotFound)
	}
	delete(s.persons, personID)
	return nil
}

// CountByOwner reports how many persons a tenant holds.
func (s *InMemory) CountByOwner(_ context.Context, ownerID id.UserID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, person := range s.persons {
		if person.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}
