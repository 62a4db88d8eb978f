package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lineage/internal/person/models"
	id "lineage/pkg/domain"
	"lineage/pkg/platform/sentinel"
)

func seed(t *testing.T, s *InMemory, ownerID id.UserID, first string, createdAt time.Time) *models.Person {
	t.Helper()
	person, err := models.NewPerson(id.NewPersonID(), ownerID, models.Attributes{
		FirstName: first,
		LastName:  "Tester",
	}, createdAt)
	require.NoError(t, err)
	require.NoError(t, s.Create(context.Background(), person))
	return person
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	ownerID := id.UserID(uuid.New())
	person := seed(t, s, ownerID, "Marie", time.Now())

	got, err := s.FindByOwnerAndID(ctx, ownerID, person.ID)
	require.NoError(t, err)
	assert.Equal(t, person.FirstName, got.FirstName)

	// Stored copy must be isolated from caller mutation.
	got.FirstName = "changed"
	again, err := s.FindByOwnerAndID(ctx, ownerID, person.ID)
	require.NoError(t, err)
	assert.Equal(t, "Marie", again.FirstName)
}

func TestMemoryStoreOwnerScoping(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	ownerA := id.UserID(uuid.New())
	ownerB := id.UserID(uuid.New())
	person := seed(t, s, ownerA, "Marie", time.Now())

	_, err := s.FindByOwnerAndID(ctx, ownerB, person.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	err = s.Delete(ctx, ownerB, person.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	list, err := s.ListByOwner(ctx, ownerB)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryStoreListOrderedByCreation(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	ownerID := id.UserID(uuid.New())
	base := time.Now()
	second := seed(t, s, ownerID, "Second", base.Add(time.Minute))
	first := seed(t, s, ownerID, "First", base)

	list, err := s.ListByOwner(ctx, ownerID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
}

func TestMemoryStoreUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	ownerID := id.UserID(uuid.New())
	person := seed(t, s, ownerID, "Marie", time.Now())

	require.NoError(t, person.ApplyUpdate(models.Attributes{
		FirstName: "Maria",
		LastName:  "Tester",
	}, time.Now()))
	require.NoError(t, s.Update(ctx, person))

	got, err := s.FindByOwnerAndID(ctx, ownerID, person.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria", got.FirstName)

	require.NoError(t, s.Delete(ctx, ownerID, person.ID))
	_, err = s.FindByOwnerAndID(ctx, ownerID, person.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	count, err := s.CountByOwner(ctx, ownerID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
