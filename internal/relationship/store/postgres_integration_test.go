//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	personmodels "lineage/internal/person/models"
	personstore "lineage/internal/person/store"
	"lineage/internal/relationship/models"
	id "lineage/pkg/domain"
	"lineage/pkg/platform/sentinel"
	"lineage/pkg/testutil/containers"
)

type PostgresRelationshipSuite struct {
	suite.Suite
	ctx     context.Context
	pg      *containers.PostgresContainer
	st      *Postgres
	persons *personstore.Postgres
	ownerID id.UserID
}

func TestPostgresRelationshipSuite(t *testing.T) {
	suite.Run(t, new(PostgresRelationshipSuite))
}

func (s *PostgresRelationshipSuite) SetupSuite() {
	s.ctx = context.Background()
	s.pg = containers.NewPostgresContainer(s.T())
	s.st = NewPostgres(s.pg.Pool)
	s.persons = personstore.NewPostgres(s.pg.Pool)
}

func (s *PostgresRelationshipSuite) TearDownSuite() {
	s.pg.Pool.Close()
	_ = s.pg.Container.Terminate(s.ctx)
}

func (s *PostgresRelationshipSuite) SetupTest() {
	require.NoError(s.T(), s.pg.Truncate(s.ctx))
	s.ownerID = id.UserID(uuid.New())
}

func (s *PostgresRelationshipSuite) newPerson(first string) id.PersonID {
	person, err := personmodels.NewPerson(id.NewPersonID(), s.ownerID, personmodels.Attributes{
		FirstName: first,
		LastName:  "Tester",
	}, time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.persons.Create(s.ctx, person))
	return person.ID
}

func (s *PostgresRelationshipSuite) newRel(e1, e2 id.PersonID, verb models.Verb) *models.Relationship {
	kinship, err := models.NormalizeVerb(verb)
	s.Require().NoError(err)
	rel, err := models.New(id.NewRelationshipID(), s.ownerID, e1, e2, kinship, time.Now().UTC())
	s.Require().NoError(err)
	return rel
}

func (s *PostgresRelationshipSuite) TestCreateFindRoundTrip() {
	p1 := s.newPerson("Marie")
	p2 := s.newPerson("Pierre")
	rel := s.newRel(p1, p2, models.VerbSpouse)
	s.Require().NoError(s.st.Create(s.ctx, rel))

	got, err := s.st.FindByOwnerAndID(s.ctx, s.ownerID, rel.ID)
	s.Require().NoError(err)
	s.Equal(models.KinshipSpouse, got.Kinship.Type)
	s.Equal(models.VerbSpouse, got.Kinship.Verb())
}

func (s *PostgresRelationshipSuite) TestParentRoleBackstop() {
	child := s.newPerson("Irene")
	mother1 := s.newPerson("Marie")
	mother2 := s.newPerson("Eve")
	father := s.newPerson("Pierre")

	s.Require().NoError(s.st.Create(s.ctx, s.newRel(mother1, child, models.VerbMother)))
	s.ErrorIs(s.st.Create(s.ctx, s.newRel(mother2, child, models.VerbMother)), sentinel.ErrConflict,
		"unique partial index must reject a second mother")
	s.Require().NoError(s.st.Create(s.ctx, s.newRel(father, child, models.VerbFather)))
}

func (s *PostgresRelationshipSuite) TestPairBackstopIsOrientationInsensitive() {
	p1 := s.newPerson("Marie")
	p2 := s.newPerson("Pierre")

	s.Require().NoError(s.st.Create(s.ctx, s.newRel(p1, p2, models.VerbSpouse)))
	s.ErrorIs(s.st.Create(s.ctx, s.newRel(p2, p1, models.VerbSpouse)), sentinel.ErrConflict)
}

func (s *PostgresRelationshipSuite) TestUnknownEndpointViolatesForeignKey() {
	p1 := s.newPerson("Marie")
	rel := s.newRel(p1, id.NewPersonID(), models.VerbSpouse)
	s.ErrorIs(s.st.Create(s.ctx, rel), sentinel.ErrNotFound)
}

func (s *PostgresRelationshipSuite) TestEndpointDeleteCascades() {
	p1 := s.newPerson("Marie")
	p2 := s.newPerson("Pierre")
	rel := s.newRel(p1, p2, models.VerbSpouse)
	s.Require().NoError(s.st.Create(s.ctx, rel))

	s.Require().NoError(s.persons.Delete(s.ctx, s.ownerID, p1))

	_, err := s.st.FindByOwnerAndID(s.ctx, s.ownerID, rel.ID)
	s.ErrorIs(err, sentinel.ErrNotFound, "relationships must go with their endpoint persons")
}

func (s *PostgresRelationshipSuite) TestListByPersonAndDeleteByPerson() {
	hub := s.newPerson("Marie")
	other1 := s.newPerson("Pierre")
	other2 := s.newPerson("Irene")

	s.Require().NoError(s.st.Create(s.ctx, s.newRel(hub, other1, models.VerbSpouse)))
	s.Require().NoError(s.st.Create(s.ctx, s.newRel(hub, other2, models.VerbMother)))

	rels, err := s.st.ListByPerson(s.ctx, s.ownerID, hub)
	s.Require().NoError(err)
	s.Len(rels, 2)

	s.Require().NoError(s.st.DeleteByPerson(s.ctx, s.ownerID, hub))
	rels, err = s.st.ListByPerson(s.ctx, s.ownerID, hub)
	s.Require().NoError(err)
	s.Empty(rels)
}
