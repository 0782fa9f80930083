// Package advisory turns the free-form advisory text returned with a
// diagnosis into a fixed set of named sections.
package advisory

import (
	"fmt"
	"slices"
)

// Sentinel is substituted for a section that is structurally absent from the
// advisory text.
const Sentinel = "Information not available for this diagnostic step."

// Placeholder markers. Text containing either is rendered as prose.
const (
	markerUnavailable  = "Data unavailable"
	markerNotAvailable = "Information not available"
)

// Section identifies a numbered advisory topic.
type Section int

// Addressed sections. 6 (severity explanation) is produced by the generator
// but never displayed.
const (
	Explanation        Section = 1
	RecommendedActions Section = 2
	OrganicTreatment   Section = 3
	ChemicalTreatment  Section = 4
	Prevention         Section = 5
	Disclaimer         Section = 7
)

// Sections lists every addressed section in display order.
var Sections = []Section{
	Explanation,
	RecommendedActions,
	OrganicTreatment,
	ChemicalTreatment,
	Prevention,
	Disclaimer,
}

// Addressed reports whether s is one of Sections.
func (s Section) Addressed() bool {
	return slices.Contains(Sections, s)
}

// String returns the machine-readable section name.
func (s Section) String() string {
	switch s {
	case Explanation:
		return "explanation"
	case RecommendedActions:
		return "actions"
	case OrganicTreatment:
		return "organic"
	case ChemicalTreatment:
		return "chemical"
	case Prevention:
		return "prevention"
	case Disclaimer:
		return "disclaimer"
	default:
		return fmt.Sprintf("Section(%d)", int(s))
	}
}

// Title returns the heading shown above the section.
func (s Section) Title() string {
	switch s {
	case Explanation:
		return "Disease Explanation"
	case RecommendedActions:
		return "Immediate Actions"
	case OrganicTreatment:
		return "Organic Treatment"
	case ChemicalTreatment:
		return "Chemical Treatment"
	case Prevention:
		return "Prevention Strategies"
	case Disclaimer:
		return "Safety Disclaimer"
	default:
		return s.String()
	}
}

// Bulleted reports whether the section body is rendered as a point list.
// Explanation and Disclaimer are always prose.
func (s Section) Bulleted() bool {
	return s >= RecommendedActions && s <= Prevention
}

// Record maps every addressed section to its body text.
type Record map[Section]string

// ParseRecord extracts every addressed section from raw. The result always
// holds all of Sections.
func ParseRecord(raw string) Record {
	r := make(Record, len(Sections))
	for _, s := range Sections {
		r[s] = Extract(raw, s)
	}
	return r
}

// Get returns the body of s, or Sentinel when the record does not hold it.
func (r Record) Get(s Section) string {
	if body, ok := r[s]; ok {
		return body
	}
	return Sentinel
}
