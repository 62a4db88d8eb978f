package handler

import (
	"time"

	"lineage/internal/merge"
	relmodels "lineage/internal/relationship/models"
)

// FieldComparisonResponse shows one mergeable field side by side with the
// value the merged record would carry.
type FieldComparisonResponse struct {
	Field    string `json:"field"`
	Source   string `json:"source,omitempty"`
	Target   string `json:"target,omitempty"`
	Merged   string `json:"merged,omitempty"`
	Conflict bool   `json:"conflict"`
}

// MergedRecordResponse is the proposed post-merge attribute set. Keys use
// the same field names as field_comparisons and conflict_fields so clients
// can cross-reference them.
type MergedRecordResponse struct {
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	BirthName string `json:"birthName,omitempty"`
	Nickname  string `json:"nickname,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
	DeathDate string `json:"deathDate,omitempty"`
	Gender    string `json:"gender,omitempty"`
	PhotoRef  string `json:"photoRef,omitempty"`
}

// RelationshipResponse mirrors the relationship endpoints' wire shape,
// with the kinship denormalized back to the user-facing verb.
type RelationshipResponse struct {
	ID               string    `json:"id"`
	Person1ID        string    `json:"person1_id"`
	Person2ID        string    `json:"person2_id"`
	RelationshipType string    `json:"relationship_type"`
	CreatedAt        time.Time `json:"created_at"`
}

// PreviewResponse is the HTTP representation of a merge preview.
type PreviewResponse struct {
	SourceID                      string                    `json:"source_id"`
	TargetID                      string                    `json:"target_id"`
	CanMerge                      bool                      `json:"can_merge"`
	ValidationErrors              []string                  `json:"validation_errors,omitempty"`
	ConflictFields                []string                  `json:"conflict_fields,omitempty"`
	FieldComparisons              []FieldComparisonResponse `json:"field_comparisons"`
	MergedRecord                  MergedRecordResponse      `json:"merged_record"`
	RelationshipsToTransfer       []RelationshipResponse    `json:"relationships_to_transfer"`
	ExistingRelationshipsOnTarget []RelationshipResponse    `json:"existing_relationships_on_target"`
	Warnings                      []string                  `json:"warnings,omitempty"`
}

// FromPreview converts a domain preview to an HTTP response. Relationship
// lists are never nil so empty ones serialize as [].
func FromPreview(p *merge.Preview) *PreviewResponse {
	comparisons := make([]FieldComparisonResponse, 0, len(p.FieldComparisons))
	for _, c := range p.FieldComparisons {
		comparisons = append(comparisons, FieldComparisonResponse{
			Field:    c.Field,
			Source:   c.Source,
			Target:   c.Target,
			Merged:   c.Merged,
			Conflict: c.Conflict,
		})
	}

	return &PreviewResponse{
		SourceID:         p.SourceID.String(),
		TargetID:         p.TargetID.String(),
		CanMerge:         p.CanMerge,
		ValidationErrors: p.ValidationErrors,
		ConflictFields:   p.ConflictFields,
		FieldComparisons: comparisons,
		MergedRecord: MergedRecordResponse{
			FirstName: p.MergedRecord.FirstName,
			LastName:  p.MergedRecord.LastName,
			BirthName: p.MergedRecord.BirthName,
			Nickname:  p.MergedRecord.Nickname,
			BirthDate: p.MergedRecord.BirthDate,
			DeathDate: p.MergedRecord.DeathDate,
			Gender:    string(p.MergedRecord.Gender),
			PhotoRef:  p.MergedRecord.PhotoRef,
		},
		RelationshipsToTransfer:       fromRelationships(p.RelationshipsToTransfer),
		ExistingRelationshipsOnTarget: fromRelationships(p.ExistingRelationshipsOnTarget),
		Warnings:                      p.Warnings,
	}
}

func fromRelationships(rels []*relmodels.Relationship) []RelationshipResponse {
	out := make([]RelationshipResponse, 0, len(rels))
	for _, rel := range rels {
		out = append(out, RelationshipResponse{
			ID:               rel.ID.String(),
			Person1ID:        rel.Endpoint1.String(),
			Person2ID:        rel.Endpoint2.String(),
			RelationshipType: string(rel.Kinship.Verb()),
			CreatedAt:        rel.CreatedAt,
		})
	}
	return out
}
