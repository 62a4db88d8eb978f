package handler

import (
	"strings"

	"lineage/internal/person/models"
)

// PersonRequest is the HTTP request body for creating or updating a
// person. Both operations carry the full mutable attribute set.
type PersonRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BirthName string `json:"birth_name,omitempty"`
	Nickname  string `json:"nickname,omitempty"`
	BirthDate string `json:"birth_date,omitempty"`
	DeathDate string `json:"death_date,omitempty"`
	Gender    string `json:"gender,omitempty"`
	PhotoRef  string `json:"photo_ref,omitempty"`
}

func (r *PersonRequest) Normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.BirthName = strings.TrimSpace(r.BirthName)
	r.Nickname = strings.TrimSpace(r.Nickname)
	r.BirthDate = strings.TrimSpace(r.BirthDate)
	r.DeathDate = strings.TrimSpace(r.DeathDate)
	r.Gender = strings.ToLower(strings.TrimSpace(r.Gender))
	r.PhotoRef = strings.TrimSpace(r.PhotoRef)
}

// Validate is a no-op: attribute rules live in the model so every write
// path enforces them, not just HTTP.
func (r *PersonRequest) Validate() error { return nil }

// Attributes converts the request to the domain attribute set.
func (r *PersonRequest) Attributes() models.Attributes {
	return models.Attributes{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		BirthName: r.BirthName,
		Nickname:  r.Nickname,
		BirthDate: r.BirthDate,
		DeathDate: r.DeathDate,
		Gender:    models.Gender(r.Gender),
		PhotoRef:  r.PhotoRef,
	}
}
