package models

import (
	"strings"
	"time"

	id "lineage/pkg/domain"
	dErrors "lineage/pkg/domain-errors"
)

// Gender is free of biological claims; it records what the user entered.
type Gender string

const (
	GenderUnknown Gender = ""
	GenderFemale  Gender = "female"
	GenderMale    Gender = "male"
	GenderOther   Gender = "other"
)

func (g Gender) valid() bool {
	switch g {
	case GenderUnknown, GenderFemale, GenderMale, GenderOther:
		return true
	}
	return false
}

// DateLayout is the storage form for genealogical dates. Dates stay strings
// end to end; a birth year two centuries back gains nothing from time.Time.
const DateLayout = "2006-01-02"

// Person is a single individual in a tenant's family tree.
//
// Invariants:
//   - FirstName and LastName are non-empty
//   - BirthDate/DeathDate are empty or valid YYYY-MM-DD
//   - DeathDate, when both are set, is not before BirthDate
//   - OwnerID scopes every read and write (tenant isolation)
type Person struct {
	ID        id.PersonID `json:"id"`
	OwnerID   id.UserID   `json:"owner_id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	// BirthName is the surname at birth, when it differs from LastName.
	BirthName string    `json:"birth_name,omitempty"`
	Nickname  string    `json:"nickname,omitempty"`
	BirthDate string    `json:"birth_date,omitempty"`
	DeathDate string    `json:"death_date,omitempty"`
	Gender    Gender    `json:"gender,omitempty"`
	PhotoRef  string    `json:"photo_ref,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Attributes are the mutable fields of a Person, used for creation and
// update so handlers cannot touch identity or ownership.
type Attributes struct {
	FirstName string
	LastName  string
	BirthName string
	Nickname  string
	BirthDate string
	DeathDate string
	Gender    Gender
	PhotoRef  string
}

// NewPerson validates attributes and constructs a Person owned by ownerID.
func NewPerson(personID id.PersonID, ownerID id.UserID, attrs Attributes, now time.Time) (*Person, error) {
	if err := attrs.validate(); err != nil {
		return nil, err
	}
	return &Person{
		ID:        personID,
		OwnerID:   ownerID,
		FirstName: attrs.FirstName,
		LastName:  attrs.LastName,
		BirthName: attrs.BirthName,
		Nickname:  attrs.Nickname,
		BirthDate: attrs.BirthDate,
		DeathDate: attrs.DeathDate,
		Gender:    attrs.Gender,
		PhotoRef:  attrs.PhotoRef,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ApplyUpdate validates attributes and overwrites the mutable fields.
func (p *Person) ApplyUpdate(attrs Attributes, now time.Time) error {
	if err := attrs.validate(); err != nil {
		return err
	}
	p.FirstName = attrs.FirstName
	p.LastName = attrs.LastName
	p.BirthName = attrs.BirthName
	p.Nickname = attrs.Nickname
	p.BirthDate = attrs.BirthDate
	p.DeathDate = attrs.DeathDate
	p.Gender = attrs.Gender
	p.PhotoRef = attrs.PhotoRef
	p.UpdatedAt = now
	return nil
}

func (a *Attributes) validate() error {
	if strings.TrimSpace(a.FirstName) == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "first name is required")
	}
	if strings.TrimSpace(a.LastName) == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "last name is required")
	}
	if err := validDate(a.BirthDate, "birth date"); err != nil {
		return err
	}
	if err := validDate(a.DeathDate, "death date"); err != nil {
		return err
	}
	if a.BirthDate != "" && a.DeathDate != "" && a.DeathDate < a.BirthDate {
		return dErrors.New(dErrors.CodeInvariantViolation, "death date cannot precede birth date")
	}
	if !a.Gender.valid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "gender must be one of female, male, other")
	}
	return nil
}

func validDate(s, field string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "%s must be YYYY-MM-DD", field)
	}
	return nil
}
