package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	personmodels "lineage/internal/person/models"
	personstore "lineage/internal/person/store"
	"lineage/internal/relationship/service"
	relstore "lineage/internal/relationship/store"
	id "lineage/pkg/domain"
	"lineage/pkg/requestcontext"
)

type relFixture struct {
	router  chi.Router
	ownerID id.UserID
	persons *personstore.InMemory
}

func newRelFixture(t *testing.T) *relFixture {
	t.Helper()
	f := &relFixture{
		ownerID: id.UserID(uuid.New()),
		persons: personstore.NewInMemory(),
	}
	svc := service.New(relstore.NewInMemory(), f.persons)
	h := New(svc, slog.Default())

	f.router = chi.NewRouter()
	f.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := requestcontext.WithUserID(req.Context(), f.ownerID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.Register(f.router)
	return f
}

func (f *relFixture) addPerson(t *testing.T, first string) id.PersonID {
	t.Helper()
	person, err := personmodels.NewPerson(id.NewPersonID(), f.ownerID, personmodels.Attributes{
		FirstName: first,
		LastName:  "Tester",
	}, time.Now())
	if err != nil {
		t.Fatalf("failed to build person: %v", err)
	}
	if err := f.persons.Create(context.Background(), person); err != nil {
		t.Fatalf("failed to seed person: %v", err)
	}
	return person.ID
}

func (f *relFixture) do(t *testing.T, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var raw []byte
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestRelationshipCreateNormalizesVerb(t *testing.T) {
	f := newRelFixture(t)
	mother := f.addPerson(t, "Marie")
	child := f.addPerson(t, "Irene")

	rec := f.do(t, http.MethodPost, "/relationships", map[string]string{
		"person1_id":        mother.String(),
		"person2_id":        child.String(),
		"relationship_type": "mother",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp RelationshipResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.RelationshipType != "mother" {
		t.Fatalf("expected verb to round-trip, got %q", resp.RelationshipType)
	}
}

func TestRelationshipCreateUnknownVerb(t *testing.T) {
	f := newRelFixture(t)
	p1 := f.addPerson(t, "Marie")
	p2 := f.addPerson(t, "Pierre")

	rec := f.do(t, http.MethodPost, "/relationships", map[string]string{
		"person1_id":        p1.String(),
		"person2_id":        p2.String(),
		"relationship_type": "sibling",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown verb, got %d", rec.Code)
	}
}

func TestRelationshipCreateSelfRelation(t *testing.T) {
	f := newRelFixture(t)
	p1 := f.addPerson(t, "Marie")

	rec := f.do(t, http.MethodPost, "/relationships", map[string]string{
		"person1_id":        p1.String(),
		"person2_id":        p1.String(),
		"relationship_type": "spouse",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for self relation, got %d", rec.Code)
	}
}

func TestRelationshipCreateSecondMotherConflict(t *testing.T) {
	f := newRelFixture(t)
	mother1 := f.addPerson(t, "Marie")
	mother2 := f.addPerson(t, "Eve")
	child := f.addPerson(t, "Irene")

	rec := f.do(t, http.MethodPost, "/relationships", map[string]string{
		"person1_id":        mother1.String(),
		"person2_id":        child.String(),
		"relationship_type": "mother",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for first mother, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/relationships", map[string]string{
		"person1_id":        mother2.String(),
		"person2_id":        child.String(),
		"relationship_type": "mother",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for second mother, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRelationshipEndpointOwnershipIs404(t *testing.T) {
	f := newRelFixture(t)
	p1 := f.addPerson(t, "Marie")

	rec := f.do(t, http.MethodPost, "/relationships", map[string]string{
		"person1_id":        p1.String(),
		"person2_id":        uuid.New().String(),
		"relationship_type": "spouse",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown endpoint, got %d", rec.Code)
	}
}

func TestRelationshipListGetDeleteLifecycle(t *testing.T) {
	f := newRelFixture(t)
	p1 := f.addPerson(t, "Marie")
	p2 := f.addPerson(t, "Pierre")

	rec := f.do(t, http.MethodPost, "/relationships", map[string]string{
		"person1_id":        p1.String(),
		"person2_id":        p2.String(),
		"relationship_type": "spouse",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var created RelationshipResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	rec = f.do(t, http.MethodGet, "/relationships/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on get, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/persons/"+p1.String()+"/relationships", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 listing person relationships, got %d", rec.Code)
	}
	var list ListRelationshipsResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if list.Count != 1 {
		t.Fatalf("expected one relationship, got %d", list.Count)
	}

	rec = f.do(t, http.MethodDelete, "/relationships/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", rec.Code)
	}
	rec = f.do(t, http.MethodGet, "/relationships/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}
