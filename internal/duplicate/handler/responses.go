package handler

import (
	"lineage/internal/duplicate"
	personmodels "lineage/internal/person/models"
)

// PersonSummary is the slice of a person record shown in scan results.
type PersonSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	BirthDate string `json:"birth_date,omitempty"`
}

// CandidateResponse is one likely-duplicate pair.
type CandidateResponse struct {
	PersonA        PersonSummary `json:"person_a"`
	PersonB        PersonSummary `json:"person_b"`
	Confidence     int           `json:"confidence"`
	MatchingFields []string      `json:"matching_fields"`
}

// ScanResponse is the HTTP response for duplicate scan endpoints.
type ScanResponse struct {
	Candidates []CandidateResponse `json:"candidates"`
	Count      int                 `json:"count"`
}

func summarize(p *personmodels.Person) PersonSummary {
	return PersonSummary{
		ID:        p.ID.String(),
		FirstName: p.FirstName,
		LastName:  p.LastName,
		BirthDate: p.BirthDate,
	}
}

// FromCandidates converts detector output to an HTTP response. Candidates
// is never nil in the response so empty scans serialize as [].
func FromCandidates(candidates []duplicate.Candidate) *ScanResponse {
	out := make([]CandidateResponse, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, CandidateResponse{
			PersonA:        summarize(c.PersonA),
			PersonB:        summarize(c.PersonB),
			Confidence:     c.Confidence,
			MatchingFields: c.MatchingFields,
		})
	}
	return &ScanResponse{Candidates: out, Count: len(out)}
}
