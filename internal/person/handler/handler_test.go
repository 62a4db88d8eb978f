package handler

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lineage/internal/person/service"
	personstore "lineage/internal/person/store"
	relstore "lineage/internal/relationship/store"
	id "lineage/pkg/domain"
	"lineage/pkg/requestcontext"
)

func newPersonRouter(ownerID id.UserID) chi.Router {
	svc := service.New(personstore.NewInMemory(),
		service.WithRelationshipCascader(relstore.NewInMemory()))
	h := New(svc, slog.Default())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := requestcontext.WithUserID(req.Context(), ownerID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.Register(r)
	return r
}

func doJSON(t *testing.T, router chi.Router, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("failed to marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestPersonCRUDLifecycle(t *testing.T) {
	router := newPersonRouter(id.UserID(uuid.New()))

	rec := doJSON(t, router, http.MethodPost, "/persons", map[string]string{
		"first_name": "Marie",
		"last_name":  "Curie",
		"birth_date": "1867-11-07",
		"gender":     "female",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created PersonResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode create response: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected id in create response")
	}

	rec = doJSON(t, router, http.MethodGet, "/persons/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on get, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPut, "/persons/"+created.ID, map[string]string{
		"first_name": "Marie",
		"last_name":  "Curie",
		"birth_name": "Sklodowska",
		"birth_date": "1867-11-07",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on update, got %d: %s", rec.Code, rec.Body.String())
	}
	var updated PersonResponse
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatalf("failed to decode update response: %v", err)
	}
	if updated.BirthName != "Sklodowska" {
		t.Fatalf("expected birth name to stick, got %q", updated.BirthName)
	}

	rec = doJSON(t, router, http.MethodGet, "/persons", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on list, got %d", rec.Code)
	}
	var list ListPersonsResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode list response: %v", err)
	}
	if list.Count != 1 {
		t.Fatalf("expected one person, got %d", list.Count)
	}

	rec = doJSON(t, router, http.MethodDelete, "/persons/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/persons/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestPersonCreateValidation(t *testing.T) {
	router := newPersonRouter(id.UserID(uuid.New()))

	rec := doJSON(t, router, http.MethodPost, "/persons", map[string]string{
		"first_name": "Marie",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for missing last name, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/persons", map[string]string{
		"first_name": "Marie",
		"last_name":  "Curie",
		"birth_date": "late 1867",
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for malformed date, got %d", rec.Code)
	}
}

func TestPersonGetMalformedID(t *testing.T) {
	router := newPersonRouter(id.UserID(uuid.New()))

	rec := doJSON(t, router, http.MethodGet, "/persons/not-a-uuid", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}
}

func TestPersonTenantIsolationThroughHandlers(t *testing.T) {
	store := personstore.NewInMemory()
	ownerA := id.UserID(uuid.New())
	ownerB := id.UserID(uuid.New())

	routerFor := func(ownerID id.UserID) chi.Router {
		svc := service.New(store, service.WithRelationshipCascader(relstore.NewInMemory()))
		h := New(svc, slog.Default())
		r := chi.NewRouter()
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := requestcontext.WithUserID(req.Context(), ownerID)
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
		h.Register(r)
		return r
	}

	rec := doJSON(t, routerFor(ownerA), http.MethodPost, "/persons", map[string]string{
		"first_name": "Marie", "last_name": "Curie",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var created PersonResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	rec = doJSON(t, routerFor(ownerB), http.MethodGet, "/persons/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign tenant read must look like 404, got %d", rec.Code)
	}
}
