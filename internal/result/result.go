// Package result turns the prediction service's JSON payload into the
// display model consumed by renderers.
package result

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kamilpajak/leafcheck/pkg/advisory"
	"github.com/kamilpajak/leafcheck/pkg/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxAlternatives is how many runner-up classes are shown after the primary.
const maxAlternatives = 2

// ErrMalformedResponse is returned when a payload lacks a prediction or a
// confidence value.
var ErrMalformedResponse = errors.New("malformed prediction response")

// Candidate is one entry of the service's ranked all_predictions list.
type Candidate struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	IsHealthy  bool    `json:"is_healthy"`
}

// ServiceResponse mirrors the JSON body returned by POST /predict.
// Pointer fields distinguish "absent" from a zero value.
type ServiceResponse struct {
	Success        bool        `json:"success"`
	Prediction     *string     `json:"prediction"`
	Confidence     *float64    `json:"confidence"`
	IsHealthy      bool        `json:"is_healthy"`
	ImageURL       string      `json:"image_url"`
	AllPredictions []Candidate `json:"all_predictions"`
	LLMAdvisory    *string     `json:"llm_advisory"`
	Error          string      `json:"error"`
}

// ServiceError carries the error text reported by the prediction service.
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Err returns a *ServiceError if the service reported one, nil otherwise.
func (r *ServiceResponse) Err() error {
	if r.Error == "" {
		return nil
	}
	return &ServiceError{Message: r.Error}
}

// Decode parses a raw service payload.
func Decode(payload []byte) (*ServiceResponse, error) {
	var resp ServiceResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode prediction response: %w", err)
	}
	return &resp, nil
}

// Build converts a decoded response into a DisplayModel. The response must
// not carry a service error; callers check Err first.
func Build(resp *ServiceResponse) (*models.DisplayModel, error) {
	if resp == nil || resp.Prediction == nil || resp.Confidence == nil {
		return nil, ErrMalformedResponse
	}

	primary := models.PredictionCandidate{
		Label:        *resp.Prediction,
		DisplayLabel: DisplayLabel(*resp.Prediction),
		Confidence:   *resp.Confidence,
	}

	return &models.DisplayModel{
		Prediction: models.PredictionResult{
			Primary:      primary,
			IsHealthy:    resp.IsHealthy,
			Alternatives: alternatives(resp.AllPredictions),
		},
		Badge:    models.BadgeFor(resp.IsHealthy),
		Risk:     models.RiskFor(primary.Confidence),
		ImageURL: resp.ImageURL,
		Advisory: buildAdvisory(resp.LLMAdvisory),
	}, nil
}

// alternatives drops the first ranked entry (the primary) and keeps the
// next ones in service order.
func alternatives(ranked []Candidate) []models.PredictionCandidate {
	if len(ranked) <= 1 {
		return []models.PredictionCandidate{}
	}
	rest := ranked[1:]
	if len(rest) > maxAlternatives {
		rest = rest[:maxAlternatives]
	}

	out := make([]models.PredictionCandidate, 0, len(rest))
	for _, c := range rest {
		out = append(out, models.PredictionCandidate{
			Label:        c.Class,
			DisplayLabel: DisplayLabel(c.Class),
			Confidence:   c.Confidence,
		})
	}
	return out
}

func buildAdvisory(raw *string) *models.AdvisoryView {
	if raw == nil || *raw == "" {
		return nil
	}

	rec := advisory.ParseRecord(*raw)
	return &models.AdvisoryView{
		Record:      rec,
		Explanation: rec.Get(advisory.Explanation),
		Actions:     advisory.Format(rec.Get(advisory.RecommendedActions)),
		Organic:     advisory.Format(rec.Get(advisory.OrganicTreatment)),
		Chemical:    advisory.Format(rec.Get(advisory.ChemicalTreatment)),
		Prevention:  advisory.Format(rec.Get(advisory.Prevention)),
		Disclaimer:  rec.Get(advisory.Disclaimer),
	}
}

// DisplayLabel turns a class name such as "Tomato___Early_blight" into
// "Tomato Early Blight".
func DisplayLabel(class string) string {
	words := strings.Fields(strings.ReplaceAll(class, "_", " "))
	// Casers hold state and are not safe for concurrent use.
	caser := cases.Title(language.English, cases.NoLower)
	return caser.String(strings.Join(words, " "))
}
