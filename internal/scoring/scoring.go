// Package scoring combines keyword, availability, visa and training signals
// into a single deterministic priority score and maps it to a tier.
package scoring

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/obrienhr/cv-triage/internal/candidate"
	"github.com/obrienhr/cv-triage/internal/extract"
)

// otherKey scores a value that is known but not listed in a table.
const otherKey = "other"

// Weights holds the per-factor scoring tables. Survey answers take precedence
// over resume-derived hints for the same factor.
type Weights struct {
	Availability map[string]int `mapstructure:"availability"`
	Visa         map[string]int `mapstructure:"visa"`
	Training     map[string]int `mapstructure:"training"`

	// RelevanceBonus is added once when the candidate passed screening.
	RelevanceBonus int `mapstructure:"relevance-bonus"`
	// KeywordCap bounds the contribution of raw keyword hits.
	KeywordCap int `mapstructure:"keyword-cap"`
}

// Thresholds are the strict tier cutoffs: a score must exceed High for the
// High tier and exceed Medium for the Medium tier. A score exactly at a
// cutoff lands in the lower tier.
type Thresholds struct {
	High   int `mapstructure:"high"`
	Medium int `mapstructure:"medium"`
}

// DefaultWeights returns the scoring tables used when the configuration does
// not override them.
func DefaultWeights() *Weights {
	return &Weights{
		Availability: map[string]int{
			"full availability": 4,
			"morning":           3,
			"night":             1,
			otherKey:            1,
		},
		Visa: map[string]int{
			"irish":    4,
			"stamp 4":  3,
			"ue":       3,
			"stamp 1g": 2,
			"stamp 2":  1,
			"stamp 1":  0,
		},
		Training: map[string]int{
			"food handling":    3,
			"food safety":      2,
			"customer service": 2,
			otherKey:           1,
		},
		RelevanceBonus: 2,
		KeywordCap:     5,
	}
}

// DefaultThresholds returns the tier cutoffs matching the reference scoring
// model (score 10 and above is High, 6 and above is Medium).
func DefaultThresholds() Thresholds {
	return Thresholds{High: 9, Medium: 5}
}

// ParseWeights decodes a configuration map over the default tables. Unknown
// keys are rejected so a typo in a weight table fails the batch up front.
func ParseWeights(raw map[string]any) (*Weights, error) {
	weights := DefaultWeights()
	if len(raw) == 0 {
		return weights, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      weights,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decoding scoring weights: %w", err)
	}

	if weights.KeywordCap < 0 {
		return nil, fmt.Errorf("keyword-cap must not be negative, got %d", weights.KeywordCap)
	}

	return weights, nil
}

// Score computes the weighted total for one candidate. Pure and total: every
// combination of inputs, including all-unknown, yields a score.
func (w *Weights) Score(fields candidate.Fields, survey *candidate.SurveyResponse, hits int, passed bool) int {
	score := 0

	if passed {
		score += w.RelevanceBonus
	}
	if hits > w.KeywordCap {
		score += w.KeywordCap
	} else {
		score += hits
	}

	availability := fields.AvailabilityHint
	visa := fields.VisaHint
	training := fields.TrainingHint

	if survey != nil {
		if tag := extract.NormalizeAvailability(survey.Availability); tag != candidate.Unknown {
			availability = tag
		}
		if tag := extract.NormalizeVisa(survey.Visa); tag != candidate.Unknown {
			visa = tag
		}
		if tag := extract.NormalizeTraining(survey.Courses); tag != candidate.Unknown {
			training = tag
		}
	}

	score += tableScore(w.Availability, availability)
	score += tableScore(w.Visa, visa)
	score += trainingScore(w.Training, training)

	return score
}

// Classify maps a score to a priority tier. Candidates that never passed
// screening are always Unscreened, regardless of any partial score.
func Classify(score int, passed bool, t Thresholds) candidate.Priority {
	if !passed {
		return candidate.PriorityUnscreened
	}
	switch {
	case score > t.High:
		return candidate.PriorityHigh
	case score > t.Medium:
		return candidate.PriorityMedium
	default:
		return candidate.PriorityLow
	}
}

func tableScore(table map[string]int, tag string) int {
	if tag == candidate.Unknown || tag == "" {
		return 0
	}
	if v, ok := table[tag]; ok {
		return v
	}
	return table[otherKey]
}

func trainingScore(table map[string]int, tag string) int {
	// "none" is an explicit answer, not an unknown, but scores nothing.
	if tag == "none" {
		return 0
	}
	return tableScore(table, tag)
}
