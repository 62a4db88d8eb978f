// Package duplicate scores person records pairwise to surface likely
// duplicates within one tenant's tree.
//
// The scan is an exhaustive O(n²) comparison. Person sets are tenant-scoped
// and expected in the low hundreds, so brute force stays well under a
// second and needs no indexing machinery.
package duplicate

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	personmodels "lineage/internal/person/models"
	dErrors "lineage/pkg/domain-errors"
)

// Scoring weights. The exact values are tunable policy; the orderings are
// not: an exact name match must always outscore a near miss on otherwise
// identical records, and confidence never exceeds 100.
const (
	scoreExactName = 70
	scoreNearName  = 45
	scoreBirthDate = 30

	maxConfidence = 100

	// nearNameMaxDistance is the most edits a single name component may
	// be away to still count as a near miss.
	nearNameMaxDistance = 2
)

// DefaultThreshold is the minimum confidence reported when the caller
// does not supply one.
const DefaultThreshold = 70

const (
	// FieldName marks a full-name contribution (exact or near).
	FieldName = "name"
	// FieldBirthDate marks an exact birth-date contribution.
	FieldBirthDate = "birthDate"
)

// Candidate is one likely-duplicate pair with its confidence score and
// the fields that contributed to it.
type Candidate struct {
	PersonA        *personmodels.Person `json:"person_a"`
	PersonB        *personmodels.Person `json:"person_b"`
	Confidence     int                  `json:"confidence"`
	MatchingFields []string             `json:"matching_fields"`
}

// Options tune a scan. The zero value means "default threshold, no limit".
type Options struct {
	threshold    int
	thresholdSet bool
	limit        int
	limitSet     bool
}

type Option func(*Options)

// WithThreshold sets the minimum confidence (inclusive) a pair must reach
// to be reported. Must be within [0, 100].
func WithThreshold(threshold int) Option {
	return func(o *Options) {
		o.threshold = threshold
		o.thresholdSet = true
	}
}

// WithLimit caps how many candidates are returned after sorting.
// Must be positive.
func WithLimit(limit int) Option {
	return func(o *Options) {
		o.limit = limit
		o.limitSet = true
	}
}

// resolve validates options before any comparison work begins.
func resolve(opts []Option) (Options, error) {
	o := Options{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(&o)
	}
	if o.threshold < 0 || o.threshold > maxConfidence {
		return o, dErrors.Newf(dErrors.CodeInvalidParameter,
			"threshold must be between 0 and 100, got %d", o.threshold)
	}
	if o.limitSet && o.limit <= 0 {
		return o, dErrors.Newf(dErrors.CodeInvalidParameter,
			"limit must be positive, got %d", o.limit)
	}
	return o, nil
}

// ValidateOptions reports whether the given scan options are acceptable
// without running a scan.
func ValidateOptions(opts ...Option) error {
	_, err := resolve(opts)
	return err
}

// FindAll compares every pair in persons and returns candidates at or
// above the threshold, sorted by confidence descending. Ties keep
// discovery order.
func FindAll(persons []*personmodels.Person, opts ...Option) ([]Candidate, error) {
	o, err := resolve(opts)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	for i := 0; i < len(persons); i++ {
		for j := i + 1; j < len(persons); j++ {
			if c, ok := compare(persons[i], persons[j], o.threshold); ok {
				candidates = append(candidates, c)
			}
		}
	}
	return finish(candidates, o), nil
}

// FindForPerson restricts the scan to pairs containing target. The
// returned confidence for a pair is identical to what FindAll would
// report; only the pairing is filtered.
func FindForPerson(target *personmodels.Person, persons []*personmodels.Person, opts ...Option) ([]Candidate, error) {
	o, err := resolve(opts)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, other := range persons {
		if other.ID == target.ID {
			continue
		}
		if c, ok := compare(target, other, o.threshold); ok {
			candidates = append(candidates, c)
		}
	}
	return finish(candidates, o), nil
}

func finish(candidates []Candidate, o Options) []Candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	if o.limitSet && len(candidates) > o.limit {
		candidates = candidates[:o.limit]
	}
	return candidates
}

// compare scores one pair. The score is symmetric: swapping a and b
// cannot change it.
func compare(a, b *personmodels.Person, threshold int) (Candidate, bool) {
	confidence := 0
	var fields []string

	switch {
	case exactName(a, b):
		confidence += scoreExactName
		fields = append(fields, FieldName)
	case nearName(a, b):
		confidence += scoreNearName
		fields = append(fields, FieldName)
	}

	if a.BirthDate != "" && a.BirthDate == b.BirthDate {
		confidence += scoreBirthDate
		fields = append(fields, FieldBirthDate)
	}

	if confidence > maxConfidence {
		confidence = maxConfidence
	}
	if confidence < threshold || len(fields) == 0 {
		return Candidate{}, false
	}
	return Candidate{
		PersonA:        a,
		PersonB:        b,
		Confidence:     confidence,
		MatchingFields: fields,
	}, true
}

func exactName(a, b *personmodels.Person) bool {
	return foldName(a.FirstName) == foldName(b.FirstName) &&
		foldName(a.LastName) == foldName(b.LastName)
}

func nearName(a, b *personmodels.Person) bool {
	// An empty name component is within edit distance of any short name;
	// require all four components so blanks never count as near matches.
	if foldName(a.FirstName) == "" || foldName(b.FirstName) == "" ||
		foldName(a.LastName) == "" || foldName(b.LastName) == "" {
		return false
	}
	first := levenshtein.ComputeDistance(foldName(a.FirstName), foldName(b.FirstName))
	last := levenshtein.ComputeDistance(foldName(a.LastName), foldName(b.LastName))
	return first <= nearNameMaxDistance && last <= nearNameMaxDistance
}

func foldName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
