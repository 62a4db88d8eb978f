package handler

import (
	"strings"

	id "lineage/pkg/domain"
	dErrors "lineage/pkg/domain-errors"
)

// PreviewRequest is the HTTP request for POST /merge/preview.
type PreviewRequest struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`

	sourceID id.PersonID
	targetID id.PersonID
}

func (r *PreviewRequest) Normalize() {
	r.SourceID = strings.TrimSpace(r.SourceID)
	r.TargetID = strings.TrimSpace(r.TargetID)
}

func (r *PreviewRequest) Validate() error {
	var err error
	if r.sourceID, err = id.ParsePersonID(r.SourceID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid source_id")
	}
	if r.targetID, err = id.ParsePersonID(r.TargetID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid target_id")
	}
	return nil
}

// ParsedSourceID returns the source person ID. Valid only after Validate.
func (r *PreviewRequest) ParsedSourceID() id.PersonID { return r.sourceID }

// ParsedTargetID returns the target person ID. Valid only after Validate.
func (r *PreviewRequest) ParsedTargetID() id.PersonID { return r.targetID }
