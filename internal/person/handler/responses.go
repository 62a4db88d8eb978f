package handler

import (
	"time"

	"lineage/internal/person/models"
)

// PersonResponse is the HTTP representation of a person record.
type PersonResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	BirthName string    `json:"birth_name,omitempty"`
	Nickname  string    `json:"nickname,omitempty"`
	BirthDate string    `json:"birth_date,omitempty"`
	DeathDate string    `json:"death_date,omitempty"`
	Gender    string    `json:"gender,omitempty"`
	PhotoRef  string    `json:"photo_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListPersonsResponse is the HTTP response for GET /persons.
type ListPersonsResponse struct {
	Persons []PersonResponse `json:"persons"`
	Count   int              `json:"count"`
}

// FromPerson converts a domain person to an HTTP response.
func FromPerson(p *models.Person) *PersonResponse {
	return &PersonResponse{
		ID:        p.ID.String(),
		FirstName: p.FirstName,
		LastName:  p.LastName,
		BirthName: p.BirthName,
		Nickname:  p.Nickname,
		BirthDate: p.BirthDate,
		DeathDate: p.DeathDate,
		Gender:    string(p.Gender),
		PhotoRef:  p.PhotoRef,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// FromPersons converts a person list. Persons is never nil so empty
// tenants serialize as [].
func FromPersons(persons []*models.Person) *ListPersonsResponse {
	out := make([]PersonResponse, 0, len(persons))
	for _, p := range persons {
		out = append(out, *FromPerson(p))
	}
	return &ListPersonsResponse{Persons: out, Count: len(out)}
}
