// Package survey produces candidate survey responses for screened
// candidates, either from a pre-supplied response table or by sampling a
// configured categorical distribution.
package survey

import (
	"encoding/csv"
	"fmt"
	"hash/fnv"
	"io"
	"math/rand"
	"os"
	"sort"
	"strings"

	"github.com/obrienhr/cv-triage/internal/candidate"
	"github.com/obrienhr/cv-triage/internal/extract"
)

const (
	// DefaultResponseRate is the share of screened candidates that answer
	// the survey at all.
	DefaultResponseRate = 0.8
	// DefaultInterestRate is the share of responders declaring interest.
	DefaultInterestRate = 0.9
)

// Distribution is a categorical distribution per survey question. Values are
// relative weights; they do not have to sum to one.
type Distribution struct {
	Availability map[string]float64 `mapstructure:"availability"`
	Visa         map[string]float64 `mapstructure:"visa"`
	Courses      map[string]float64 `mapstructure:"courses"`
}

// DefaultDistribution mirrors the observed response mix of the reference
// campaign: 50/30/20 full/morning/night availability and a 70/30 split
// between unrestricted and restricted work permissions.
func DefaultDistribution() Distribution {
	return Distribution{
		Availability: map[string]float64{
			"full availability": 0.5,
			"morning":           0.3,
			"night":             0.2,
		},
		Visa: map[string]float64{
			"irish":   0.4,
			"ue":      0.3,
			"stamp 4": 0.15,
			"stamp 2": 0.15,
		},
		Courses: map[string]float64{
			"food handling":    0.25,
			"food safety":      0.2,
			"customer service": 0.2,
			"none":             0.35,
		},
	}
}

// Simulator is the per-batch survey context. It carries no global state so
// independent batches (and tests) cannot influence each other.
type Simulator struct {
	table        map[string]*candidate.SurveyResponse
	dist         Distribution
	responseRate float64
	interestRate float64
	seed         int64
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithResponseRate overrides the response-rate gate.
func WithResponseRate(rate float64) Option {
	return func(s *Simulator) { s.responseRate = rate }
}

// WithInterestRate overrides the declared-interest rate for responders.
func WithInterestRate(rate float64) Option {
	return func(s *Simulator) { s.interestRate = rate }
}

// WithDistribution overrides the sampling distribution.
func WithDistribution(d Distribution) Option {
	return func(s *Simulator) { s.dist = d }
}

// WithTable supplies pre-recorded responses keyed by candidate email or id.
func WithTable(table map[string]*candidate.SurveyResponse) Option {
	return func(s *Simulator) { s.table = table }
}

// New builds a Simulator with the given sampling seed.
func New(seed int64, opts ...Option) *Simulator {
	s := &Simulator{
		dist:         DefaultDistribution(),
		responseRate: DefaultResponseRate,
		interestRate: DefaultInterestRate,
		seed:         seed,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Simulate returns the survey response for the candidate, and whether a
// response exists at all. Table entries always win; otherwise the
// response-rate gate decides, and responders get sampled answers. The draw is
// keyed on the candidate id and the seed, so a given candidate's outcome does
// not change when other candidates join the batch.
func (s *Simulator) Simulate(c *candidate.Candidate) (*candidate.SurveyResponse, bool) {
	if resp := s.lookup(c); resp != nil {
		return resp, true
	}

	rng := rand.New(rand.NewSource(s.seed ^ int64(idHash(c.ID))))

	if rng.Float64() >= s.responseRate {
		return nil, false
	}

	return &candidate.SurveyResponse{
		Availability: sample(rng, s.dist.Availability),
		Visa:         sample(rng, s.dist.Visa),
		Courses:      sample(rng, s.dist.Courses),
		Interested:   rng.Float64() < s.interestRate,
	}, true
}

func (s *Simulator) lookup(c *candidate.Candidate) *candidate.SurveyResponse {
	if len(s.table) == 0 {
		return nil
	}
	if email := strings.ToLower(strings.TrimSpace(c.Fields.Email)); email != "" {
		if resp, ok := s.table[email]; ok {
			return resp
		}
	}
	if resp, ok := s.table[strings.ToLower(c.ID)]; ok {
		return resp
	}
	return nil
}

// sample draws one value from a weighted categorical distribution. Keys are
// walked in sorted order so the draw depends only on the rng state.
func sample(rng *rand.Rand, weights map[string]float64) string {
	if len(weights) == 0 {
		return candidate.Unknown
	}

	keys := make([]string, 0, len(weights))
	total := 0.0
	for k, w := range weights {
		if w <= 0 {
			continue
		}
		keys = append(keys, k)
		total += w
	}
	if total == 0 {
		return candidate.Unknown
	}
	sort.Strings(keys)

	draw := rng.Float64() * total
	for _, k := range keys {
		draw -= weights[k]
		if draw < 0 {
			return k
		}
	}
	return keys[len(keys)-1]
}

func idHash(id string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(id)))
	return h.Sum32()
}

// LoadTable reads a pre-supplied response table from a CSV file with the
// columns email, availability, courses, visa, interested. The header row is
// required; column order is not.
func LoadTable(path string) (map[string]*candidate.SurveyResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseTable(f)
}

// ParseTable decodes the response table CSV from a reader.
func ParseTable(r io.Reader) (map[string]*candidate.SurveyResponse, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return map[string]*candidate.SurveyResponse{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading survey responses header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["email"]; !ok {
		return nil, fmt.Errorf("survey responses file is missing the email column")
	}

	table := make(map[string]*candidate.SurveyResponse)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading survey responses: %w", err)
		}

		key := strings.ToLower(strings.TrimSpace(field(record, cols, "email")))
		if key == "" {
			continue
		}

		table[key] = &candidate.SurveyResponse{
			Availability: extract.NormalizeAvailability(field(record, cols, "availability")),
			Visa:         extract.NormalizeVisa(field(record, cols, "visa")),
			Courses:      extract.NormalizeTraining(field(record, cols, "courses")),
			Interested:   parseYes(field(record, cols, "interested")),
		}
	}

	return table, nil
}

func field(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1":
		return true
	default:
		return false
	}
}
