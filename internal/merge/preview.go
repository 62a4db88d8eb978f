// Package merge computes a non-destructive preview of folding one person
// record (the source) into another (the target).
//
// Nothing here mutates: the preview describes what a merge would do so the
// user can inspect conflicts before committing one. Committing is a
// separate concern and happens elsewhere.
package merge

import (
	"fmt"

	personmodels "lineage/internal/person/models"
	relmodels "lineage/internal/relationship/models"
	id "lineage/pkg/domain"
)

// FieldComparison shows one mergeable field side by side with the value
// the merged record would carry.
type FieldComparison struct {
	Field    string
	Source   string
	Target   string
	Merged   string
	Conflict bool
}

// Preview is the full dry-run result of merging source into target.
// Serialization lives in the handler layer.
type Preview struct {
	SourceID id.PersonID
	TargetID id.PersonID

	// CanMerge is false exactly when ValidationErrors is non-empty.
	CanMerge         bool
	ValidationErrors []string

	// ConflictFields names fields where both records carry different
	// non-empty values. The merged record keeps the target's value.
	ConflictFields   []string
	FieldComparisons []FieldComparison

	// MergedRecord is the attribute set the target would hold after the
	// merge: target values win conflicts, empty target fields adopt the
	// source's value.
	MergedRecord personmodels.Attributes

	// RelationshipsToTransfer are the source's relationships re-expressed
	// with the source endpoint replaced by the target.
	RelationshipsToTransfer []*relmodels.Relationship

	// ExistingRelationshipsOnTarget are the target's current relationships,
	// unchanged. Collisions with transferred ones surface as Warnings.
	ExistingRelationshipsOnTarget []*relmodels.Relationship

	// Warnings are advisory. A merge with warnings may proceed; the user
	// resolves them by hand afterwards.
	Warnings []string
}

type mergeableField struct {
	name string
	get  func(*personmodels.Person) string
	set  func(*personmodels.Attributes, string)
}

var mergeableFields = []mergeableField{
	{"firstName", func(p *personmodels.Person) string { return p.FirstName },
		func(a *personmodels.Attributes, v string) { a.FirstName = v }},
	{"lastName", func(p *personmodels.Person) string { return p.LastName },
		func(a *personmodels.Attributes, v string) { a.LastName = v }},
	{"birthName", func(p *personmodels.Person) string { return p.BirthName },
		func(a *personmodels.Attributes, v string) { a.BirthName = v }},
	{"nickname", func(p *personmodels.Person) string { return p.Nickname },
		func(a *personmodels.Attributes, v string) { a.Nickname = v }},
	{"birthDate", func(p *personmodels.Person) string { return p.BirthDate },
		func(a *personmodels.Attributes, v string) { a.BirthDate = v }},
	{"deathDate", func(p *personmodels.Person) string { return p.DeathDate },
		func(a *personmodels.Attributes, v string) { a.DeathDate = v }},
	{"gender", func(p *personmodels.Person) string { return string(p.Gender) },
		func(a *personmodels.Attributes, v string) { a.Gender = personmodels.Gender(v) }},
	{"photoRef", func(p *personmodels.Person) string { return p.PhotoRef },
		func(a *personmodels.Attributes, v string) { a.PhotoRef = v }},
}

// BuildPreview computes the merge preview for source into target. Both
// persons and their relationship lists must belong to the same tenant;
// the caller is responsible for loading them owner-scoped.
func BuildPreview(source, target *personmodels.Person, sourceRels, targetRels []*relmodels.Relationship) *Preview {
	p := &Preview{
		SourceID:                      source.ID,
		TargetID:                      target.ID,
		FieldComparisons:              make([]FieldComparison, 0, len(mergeableFields)),
		RelationshipsToTransfer:       make([]*relmodels.Relationship, 0, len(sourceRels)),
		ExistingRelationshipsOnTarget: targetRels,
	}

	if source.ID == target.ID {
		p.ValidationErrors = append(p.ValidationErrors, "source and target are the same person")
	}
	if source.OwnerID != target.OwnerID {
		p.ValidationErrors = append(p.ValidationErrors, "source and target belong to different owners")
	}

	p.mergeFields(source, target)
	p.transferRelationships(source, target, sourceRels, targetRels)

	p.CanMerge = len(p.ValidationErrors) == 0
	return p
}

// mergeFields fills MergedRecord, FieldComparisons and ConflictFields.
// Target wins conflicts; empty target fields adopt the source value.
func (p *Preview) mergeFields(source, target *personmodels.Person) {
	for _, f := range mergeableFields {
		sv, tv := f.get(source), f.get(target)
		if sv == "" && tv == "" {
			continue
		}

		merged := tv
		conflict := false
		switch {
		case tv == "":
			merged = sv
		case sv != "" && sv != tv:
			conflict = true
			p.ConflictFields = append(p.ConflictFields, f.name)
		}

		f.set(&p.MergedRecord, merged)
		p.FieldComparisons = append(p.FieldComparisons, FieldComparison{
			Field:    f.name,
			Source:   sv,
			Target:   tv,
			Merged:   merged,
			Conflict: conflict,
		})
	}
}

// transferRelationships re-expresses the source's relationships against
// the target and flags collisions with the target's existing ones.
func (p *Preview) transferRelationships(source, target *personmodels.Person, sourceRels, targetRels []*relmodels.Relationship) {
	for _, rel := range sourceRels {
		moved := *rel
		if moved.Endpoint1 == source.ID {
			moved.Endpoint1 = target.ID
		}
		if moved.Endpoint2 == source.ID {
			moved.Endpoint2 = target.ID
		}

		if moved.Endpoint1 == moved.Endpoint2 {
			// A relationship between source and target collapses when the
			// two become one record.
			p.warn("relationship %s between source and target collapses after the merge", rel.ID)
			continue
		}
		p.RelationshipsToTransfer = append(p.RelationshipsToTransfer, &moved)

		for _, existing := range targetRels {
			p.checkCollision(&moved, existing)
		}
	}
}

func (p *Preview) checkCollision(moved, existing *relmodels.Relationship) {
	if moved.Kinship.Type != existing.Kinship.Type {
		return
	}
	switch moved.Kinship.Type {
	case relmodels.KinshipSpouse:
		if existing.SamePair(moved.Endpoint1, moved.Endpoint2) {
			p.warn("target already has a spouse relationship with person %s", otherEndpoint(existing, p.TargetID))
		}
	case relmodels.KinshipParentOf:
		if existing.SamePair(moved.Endpoint1, moved.Endpoint2) {
			p.warn("target already has a %s relationship over the same pair as %s", existing.Kinship.Verb(), moved.ID)
			return
		}
		// Two distinct parents sharing a child with the same role would
		// leave that child with, say, two mothers.
		if moved.Endpoint2 == existing.Endpoint2 && moved.Kinship.Role == existing.Kinship.Role {
			p.warn("child %s would have two %s relationships after the merge", moved.Endpoint2, moved.Kinship.Verb())
		}
	}
}

func (p *Preview) warn(format string, args ...any) {
	p.Warnings = append(p.Warnings, fmt.Sprintf(format, args...))
}

func otherEndpoint(rel *relmodels.Relationship, personID id.PersonID) id.PersonID {
	if rel.Endpoint1 == personID {
		return rel.Endpoint2
	}
	return rel.Endpoint1
}
