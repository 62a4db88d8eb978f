package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	personmodels "lineage/internal/person/models"
	personstore "lineage/internal/person/store"
	"lineage/internal/relationship/models"
	"lineage/internal/relationship/store"
	id "lineage/pkg/domain"
	dErrors "lineage/pkg/domain-errors"
	"lineage/pkg/platform/audit/store/memory"
	auditpub "lineage/pkg/platform/audit/publisher"
)

type RelationshipServiceSuite struct {
	suite.Suite
	ctx     context.Context
	ownerID id.UserID
	persons *personstore.InMemory
	rels    *store.InMemory
	audit   *memory.InMemoryStore
	svc     *Service
}

func TestRelationshipServiceSuite(t *testing.T) {
	suite.Run(t, new(RelationshipServiceSuite))
}

func (s *RelationshipServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.ownerID = id.UserID(uuid.New())
	s.persons = personstore.NewInMemory()
	s.rels = store.NewInMemory()
	s.audit = memory.NewInMemoryStore()
	s.svc = New(s.rels, s.persons, WithAuditPublisher(auditpub.NewPublisher(s.audit)))
}

func (s *RelationshipServiceSuite) newPerson(firstName string) id.PersonID {
	return s.newPersonFor(s.ownerID, firstName)
}

func (s *RelationshipServiceSuite) newPersonFor(ownerID id.UserID, firstName string) id.PersonID {
	person, err := personmodels.NewPerson(id.NewPersonID(), ownerID, personmodels.Attributes{
		FirstName: firstName,
		LastName:  "Tester",
	}, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.persons.Create(s.ctx, person))
	return person.ID
}

func (s *RelationshipServiceSuite) TestCreate_NormalizesVerbs() {
	parent := s.newPerson("Marie")
	child := s.newPerson("Jean")

	rel, err := s.svc.CreateRelationship(s.ctx, s.ownerID, parent, child, models.VerbMother)
	s.Require().NoError(err)
	s.Equal(models.KinshipParentOf, rel.Kinship.Type)
	s.Equal(models.RoleMother, rel.Kinship.Role)
	s.Equal(parent, rel.Parent())
	s.Equal(child, rel.Child())

	a := s.newPerson("Anna")
	b := s.newPerson("Ben")
	spouse, err := s.svc.CreateRelationship(s.ctx, s.ownerID, a, b, models.VerbSpouse)
	s.Require().NoError(err)
	s.Equal(models.KinshipSpouse, spouse.Kinship.Type)
	s.Equal(models.RoleNone, spouse.Kinship.Role)
}

func (s *RelationshipServiceSuite) TestCreate_RejectsUnknownVerb() {
	a := s.newPerson("A")
	b := s.newPerson("B")
	_, err := s.svc.CreateRelationship(s.ctx, s.ownerID, a, b, "sibling")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidKinshipType))
}

func (s *RelationshipServiceSuite) TestCreate_RejectsSelfRelation() {
	a := s.newPerson("A")
	_, err := s.svc.CreateRelationship(s.ctx, s.ownerID, a, a, models.VerbSpouse)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeSelfRelation))
}

func (s *RelationshipServiceSuite) TestCreate_OwnershipChecks() {
	s.Run("unknown endpoint", func() {
		a := s.newPerson("A")
		_, err := s.svc.CreateRelationship(s.ctx, s.ownerID, a, id.PersonID(uuid.New()), models.VerbSpouse)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeOwnership))
	})

	s.Run("endpoint owned by another tenant", func() {
		a := s.newPerson("A")
		foreign := s.newPersonFor(id.UserID(uuid.New()), "Foreign")
		_, err := s.svc.CreateRelationship(s.ctx, s.ownerID, a, foreign, models.VerbSpouse)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeOwnership),
			"foreign record must be indistinguishable from a missing one")
	})
}

func (s *RelationshipServiceSuite) TestCreate_ParentRoleCardinality() {
	mother := s.newPerson("Marie")
	child := s.newPerson("Jean")
	_, err := s.svc.CreateRelationship(s.ctx, s.ownerID, mother, child, models.VerbMother)
	s.Require().NoError(err)

	s.Run("second mother rejected", func() {
		mother2 := s.newPerson("Claire")
		_, err := s.svc.CreateRelationship(s.ctx, s.ownerID, mother2, child, models.VerbMother)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateParentRole))
		s.Contains(err.Error(), "already has a mother")
	})

	s.Run("father still allowed", func() {
		father := s.newPerson("Pierre")
		_, err := s.svc.CreateRelationship(s.ctx, s.ownerID, father, child, models.VerbFather)
		s.Require().NoError(err)
	})

	s.Run("same mother for another child allowed", func() {
		child2 := s.newPerson("Luc")
		_, err := s.svc.CreateRelationship(s.ctx, s.ownerID, mother, child2, models.VerbMother)
		s.Require().NoError(err)
	})
}

func (s *RelationshipServiceSuite) TestCreate_DuplicateDetection() {
	s.Run("parentOf duplicate in either orientation", func() {
		parent := s.newPerson("P")
		child := s.newPerson("C")
		_, err := s.svc.CreateRelationship(s.ctx, s.ownerID, parent, child, models.VerbFather)
		s.Require().NoError(err)

		// Reversed endpoints still name the same pair.
		_, err = s.svc.CreateRelationship(s.ctx, s.ownerID, child, parent, models.VerbMother)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateRelationship))
	})

	s.Run("spouse is symmetric", func() {
		a := s.newPerson("A")
		b := s.newPerson("B")
		_, err := s.svc.CreateRelationship(s.ctx, s.ownerID, a, b, models.VerbSpouse)
		s.Require().NoError(err)

		_, err = s.svc.CreateRelationship(s.ctx, s.ownerID, b, a, models.VerbSpouse)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicateRelationship))
	})
}

func (s *RelationshipServiceSuite) TestUpdate_ExcludesSelfFromChecks() {
	parent := s.newPerson("P")
	child := s.newPerson("C")
	rel, err := s.svc.CreateRelationship(s.ctx, s.ownerID, parent, child, models.VerbMother)
	s.Require().NoError(err)

	// Same endpoints, new role: must not collide with itself.
	updated, err := s.svc.UpdateRelationship(s.ctx, s.ownerID, rel.ID, parent, child, models.VerbFather)
	s.Require().NoError(err)
	s.Equal(rel.ID, updated.ID)
	s.Equal(models.RoleFather, updated.Kinship.Role)
}

func (s *RelationshipServiceSuite) TestUpdate_StillEnforcesCardinality() {
	mother := s.newPerson("M")
	child := s.newPerson("C")
	_, err := s.svc.CreateRelationship(s.ctx, s.ownerID, mother, child, models.VerbMother)
	s.Require().NoError(err)

	other := s.newPerson("O")
	otherChild := s.newPerson("C2")
	rel2, err := s.svc.CreateRelationship(s.ctx, s.ownerID, other, otherChild, models.VerbMother)
	s.Require().NoError(err)

	// Retargeting rel2 at the first child must hit the cardinality check.
	_, err = s.svc.UpdateRelationship(s.ctx, s.ownerID, rel2.ID, other, child, models.VerbMother)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeDuplicateParentRole))
}

func (s *RelationshipServiceSuite) TestDelete_EmitsAudit() {
	a := s.newPerson("A")
	b := s.newPerson("B")
	rel, err := s.svc.CreateRelationship(s.ctx, s.ownerID, a, b, models.VerbSpouse)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.DeleteRelationship(s.ctx, s.ownerID, rel.ID))

	events, err := s.audit.ListByOwner(s.ctx, s.ownerID)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal("relationship_created", events[0].Action)
	s.Equal("relationship_deleted", events[1].Action)
}

func (s *RelationshipServiceSuite) TestValidity_RederivedFromStore() {
	mother := s.newPerson("M")
	child := s.newPerson("C")
	rel, err := s.svc.CreateRelationship(s.ctx, s.ownerID, mother, child, models.VerbMother)
	s.Require().NoError(err)

	// After deleting the first, a new mother is acceptable again.
	s.Require().NoError(s.svc.DeleteRelationship(s.ctx, s.ownerID, rel.ID))
	mother2 := s.newPerson("M2")
	_, err = s.svc.CreateRelationship(s.ctx, s.ownerID, mother2, child, models.VerbMother)
	s.Require().NoError(err)
}
