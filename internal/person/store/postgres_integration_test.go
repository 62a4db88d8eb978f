//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"lineage/internal/person/models"
	id "lineage/pkg/domain"
	"lineage/pkg/platform/sentinel"
	"lineage/pkg/testutil/containers"
)

type PostgresPersonSuite struct {
	suite.Suite
	ctx context.Context
	pg  *containers.PostgresContainer
	st  *Postgres
}

func TestPostgresPersonSuite(t *testing.T) {
	suite.Run(t, new(PostgresPersonSuite))
}

func (s *PostgresPersonSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.st = NewPostgres(s.pg.Pool)
}

func (s *PostgresPersonSuite) TearDownSuite() {
	s.pg.Pool.Close()
	_ = s.pg.Container.Terminate(s.ctx)
}

func (s *PostgresPersonSuite) SetupTest() {
	require.NoError(s.T(), s.pg.Truncate(s.ctx))
}

func (s *PostgresPersonSuite) newPerson(ownerID id.UserID, first string) *models.Person {
	person, err := models.NewPerson(id.NewPersonID(), ownerID, models.Attributes{
		FirstName: first,
		LastName:  "Tester",
		BirthDate: "1900-01-01",
	}, time.Now().UTC())
	s.Require().NoError(err)
	return person
}

func (s *PostgresPersonSuite) TestCreateFindRoundTrip() {
	ownerID := id.UserID(uuid.New())
	person := s.newPerson(ownerID, "Marie")
	s.Require().NoError(s.st.Create(s.ctx, person))

	got, err := s.st.FindByOwnerAndID(s.ctx, ownerID, person.ID)
	s.Require().NoError(err)
	s.Equal("Marie", got.FirstName)
	s.Equal("1900-01-01", got.BirthDate)
}

func (s *PostgresPersonSuite) TestOwnerScoping() {
	ownerID := id.UserID(uuid.New())
	person := s.newPerson(ownerID, "Marie")
	s.Require().NoError(s.st.Create(s.ctx, person))

	_, err := s.st.FindByOwnerAndID(s.ctx, id.UserID(uuid.New()), person.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresPersonSuite) TestDuplicateIDConflicts() {
	ownerID := id.UserID(uuid.New())
	person := s.newPerson(ownerID, "Marie")
	s.Require().NoError(s.st.Create(s.ctx, person))
	s.ErrorIs(s.st.Create(s.ctx, person), sentinel.ErrConflict)
}

func (s *PostgresPersonSuite) TestListOrderAndCount() {
	ownerID := id.UserID(uuid.New())
	for _, name := range []string{"A", "B", "C"} {
		s.Require().NoError(s.st.Create(s.ctx, s.newPerson(ownerID, name)))
	}

	list, err := s.st.ListByOwner(s.ctx, ownerID)
	s.Require().NoError(err)
	s.Len(list, 3)

	count, err := s.st.CountByOwner(s.ctx, ownerID)
	s.Require().NoError(err)
	s.Equal(3, count)
}

func (s *PostgresPersonSuite) TestUpdateAndDelete() {
	ownerID := id.UserID(uuid.New())
	person := s.newPerson(ownerID, "Marie")
	s.Require().NoError(s.st.Create(s.ctx, person))

	s.Require().NoError(person.ApplyUpdate(models.Attributes{
		FirstName: "Maria", LastName: "Tester",
	}, time.Now().UTC()))
	s.Require().NoError(s.st.Update(s.ctx, person))

	got, err := s.st.FindByOwnerAndID(s.ctx, ownerID, person.ID)
	s.Require().NoError(err)
	s.Equal("Maria", got.FirstName)

	s.Require().NoError(s.st.Delete(s.ctx, ownerID, person.ID))
	s.ErrorIs(s.st.Delete(s.ctx, ownerID, person.ID), sentinel.ErrNotFound)
}
