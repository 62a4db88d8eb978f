package models

import (
	dErrors "lineage/pkg/domain-errors"
)

// KinshipType is the coarse stored category of a relationship.
type KinshipType string

const (
	KinshipParentOf KinshipType = "parentOf"
	KinshipSpouse   KinshipType = "spouse"
)

// Role is the parental role the first endpoint plays toward the second.
// Empty for spouse relationships.
type Role string

const (
	RoleNone   Role = ""
	RoleMother Role = "mother"
	RoleFather Role = "father"
)

// Verb is the user-facing kinship word at the API boundary. Storage never
// sees verbs; the boundary never sees KinshipType+Role. Kinship is the
// single bidirectional mapping between the two.
type Verb string

const (
	VerbMother Verb = "mother"
	VerbFather Verb = "father"
	VerbSpouse Verb = "spouse"
)

// Kinship is the canonical stored form of a kinship verb: a type plus, for
// parentOf, the parental role.
//
// Invariant: Type=parentOf ⟺ Role ∈ {mother, father};
// Type=spouse ⟺ Role is empty.
type Kinship struct {
	Type KinshipType
	Role Role
}

// NormalizeVerb maps a boundary verb to canonical stored form. For mother
// and father the first endpoint is the parent and the second the child.
// Unknown verbs are rejected with CodeInvalidKinshipType.
func NormalizeVerb(verb Verb) (Kinship, error) {
	switch verb {
	case VerbMother:
		return Kinship{Type: KinshipParentOf, Role: RoleMother}, nil
	case VerbFather:
		return Kinship{Type: KinshipParentOf, Role: RoleFather}, nil
	case VerbSpouse:
		return Kinship{Type: KinshipSpouse, Role: RoleNone}, nil
	default:
		return Kinship{}, dErrors.Newf(dErrors.CodeInvalidKinshipType,
			"kinship must be one of mother, father, spouse; got %q", string(verb))
	}
}

// Verb denormalizes the stored form back to the boundary verb.
func (k Kinship) Verb() Verb {
	if k.Type == KinshipSpouse {
		return VerbSpouse
	}
	if k.Role == RoleFather {
		return VerbFather
	}
	return VerbMother
}

// Valid reports whether the type/role combination satisfies the invariant.
func (k Kinship) Valid() bool {
	switch k.Type {
	case KinshipParentOf:
		return k.Role == RoleMother || k.Role == RoleFather
	case KinshipSpouse:
		return k.Role == RoleNone
	}
	return false
}
