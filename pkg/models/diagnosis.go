package models

import "github.com/kamilpajak/leafcheck/pkg/advisory"

// Risk represents how urgently a diagnosis should be acted on
type Risk string

const (
	RiskHigh   Risk = "HIGH"
	RiskMedium Risk = "MEDIUM"
	RiskLow    Risk = "LOW"
)

// RiskFor maps a confidence percentage to a risk band
func RiskFor(confidence float64) Risk {
	switch {
	case confidence > 90:
		return RiskHigh
	case confidence > 70:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Badge texts for the two health states
const (
	BadgeHealthyText  = "Healthy Specimen"
	BadgeInfectedText = "Infection Detected"
)

// Badge is the health verdict shown next to the diagnosis
type Badge struct {
	Healthy bool   `json:"healthy" yaml:"healthy"`
	Text    string `json:"text" yaml:"text"`
}

// BadgeFor returns the badge for a health flag
func BadgeFor(healthy bool) Badge {
	if healthy {
		return Badge{Healthy: true, Text: BadgeHealthyText}
	}
	return Badge{Healthy: false, Text: BadgeInfectedText}
}

// PredictionCandidate is one class the classifier considered
type PredictionCandidate struct {
	Label        string  `json:"label" yaml:"label"`                 // raw class name, e.g. "Tomato___Early_blight"
	DisplayLabel string  `json:"display_label" yaml:"display_label"` // e.g. "Tomato Early Blight"
	Confidence   float64 `json:"confidence" yaml:"confidence"`       // 0-100
}

// PredictionResult holds the primary verdict and the runner-up classes
type PredictionResult struct {
	Primary      PredictionCandidate   `json:"primary" yaml:"primary"`
	IsHealthy    bool                  `json:"is_healthy" yaml:"is_healthy"`
	Alternatives []PredictionCandidate `json:"alternatives" yaml:"alternatives"`
}

// AdvisoryView is the advisory text split into display-ready sections
type AdvisoryView struct {
	Record      advisory.Record    `json:"-" yaml:"-"`
	Explanation string             `json:"explanation" yaml:"explanation"`
	Actions     advisory.Formatted `json:"actions" yaml:"actions"`
	Organic     advisory.Formatted `json:"organic" yaml:"organic"`
	Chemical    advisory.Formatted `json:"chemical" yaml:"chemical"`
	Prevention  advisory.Formatted `json:"prevention" yaml:"prevention"`
	Disclaimer  string             `json:"disclaimer" yaml:"disclaimer"`
}

// Bulleted returns the formatted body of one of the list sections
func (v *AdvisoryView) Bulleted(s advisory.Section) advisory.Formatted {
	switch s {
	case advisory.RecommendedActions:
		return v.Actions
	case advisory.OrganicTreatment:
		return v.Organic
	case advisory.ChemicalTreatment:
		return v.Chemical
	case advisory.Prevention:
		return v.Prevention
	case advisory.Explanation:
		return advisory.Formatted{Text: v.Explanation}
	case advisory.Disclaimer:
		return advisory.Formatted{Text: v.Disclaimer}
	default:
		return advisory.Formatted{Text: v.Record.Get(s)}
	}
}

// DisplayModel is everything a renderer needs for one completed analysis.
// It is built once and never modified afterwards.
type DisplayModel struct {
	Prediction PredictionResult `json:"prediction" yaml:"prediction"`
	Badge      Badge            `json:"badge" yaml:"badge"`
	Risk       Risk             `json:"risk" yaml:"risk"`
	ImageURL   string           `json:"image_url,omitempty" yaml:"image_url,omitempty"`
	Advisory   *AdvisoryView    `json:"advisory,omitempty" yaml:"advisory,omitempty"` // nil when the service sent no advisory
}

// HasAdvisory returns true if the service returned advisory text
func (m *DisplayModel) HasAdvisory() bool {
	return m.Advisory != nil
}
