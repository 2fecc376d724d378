package candidate

import (
	"sort"
	"strings"
)

// Unknown is the sentinel for any extracted field that could not be derived
// from the source text.
const Unknown = "unknown"

// Stage is the discrete pipeline position a candidate record occupies.
// It only ever advances.
type Stage int

const (
	StageIngested Stage = iota
	StageExtracted
	StageScreened
	StageSurveyed
	StageClassified
	StageNotified
)

var stageNames = map[Stage]string{
	StageIngested:   "ingested",
	StageExtracted:  "extracted",
	StageScreened:   "screened",
	StageSurveyed:   "surveyed",
	StageClassified: "classified",
	StageNotified:   "notified",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return Unknown
}

// Priority is the final classification bucket.
type Priority string

const (
	PriorityUnscreened Priority = "Unscreened"
	PriorityLow        Priority = "Low"
	PriorityMedium     Priority = "Medium"
	PriorityHigh       Priority = "High"
)

// Fields holds the structured extraction from the raw resume text. Sub-fields
// that could not be derived carry the Unknown sentinel (or -1 for years).
type Fields struct {
	Name             string
	Email            string
	Phone            string
	YearsExperience  int
	Skills           []string
	Experience       string
	AvailabilityHint string
	VisaHint         string
	TrainingHint     string
}

// SurveyResponse is a simulated or pre-supplied candidate response collected
// after screening.
type SurveyResponse struct {
	Availability string
	Visa         string
	Courses      string
	Interested   bool
}

// Candidate is one record per source document.
type Candidate struct {
	ID         string
	SourceFile string
	// RawText is immutable once set by the ingestor.
	RawText string

	Fields          Fields
	KeywordHits     int
	FoundKeywords   []string
	ScreeningPassed bool
	Survey          *SurveyResponse
	Score           int
	Priority        Priority
	Stage           Stage

	// Err carries a per-record error annotation. A non-empty Err never
	// removes the record from the batch.
	Err string

	SurveySent    bool
	InterviewSent bool
}

// New creates a freshly ingested record.
func New(id, sourceFile string) *Candidate {
	return &Candidate{
		ID:         id,
		SourceFile: sourceFile,
		Fields: Fields{
			Name:             Unknown,
			Email:            "",
			Phone:            "",
			YearsExperience:  -1,
			AvailabilityHint: Unknown,
			VisaHint:         Unknown,
			TrainingHint:     Unknown,
		},
		Priority: PriorityUnscreened,
		Stage:    StageIngested,
	}
}

// Advance moves the record forward to the given stage. Moving to the current
// or an earlier stage is a no-op, so re-running a stage is always safe.
func (c *Candidate) Advance(to Stage) bool {
	if to <= c.Stage {
		return false
	}
	c.Stage = to
	return true
}

// Failed reports whether the record carries an error annotation.
func (c *Candidate) Failed() bool {
	return c.Err != ""
}

// Candidates is the batch collection processed by the pipeline.
type Candidates struct {
	Items []*Candidate
}

func (cs *Candidates) Len() int {
	return len(cs.Items)
}

func (cs *Candidates) Add(c *Candidate) {
	cs.Items = append(cs.Items, c)
}

func (cs *Candidates) FindByID(id string) *Candidate {
	for _, c := range cs.Items {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Screened returns the records that passed the keyword gate.
func (cs *Candidates) Screened() []*Candidate {
	var out []*Candidate
	for _, c := range cs.Items {
		if c.ScreeningPassed {
			out = append(out, c)
		}
	}
	return out
}

// CountByPriority returns how many records landed in each tier.
func (cs *Candidates) CountByPriority() map[Priority]int {
	counts := make(map[Priority]int)
	for _, c := range cs.Items {
		counts[c.Priority]++
	}
	return counts
}

// KeywordFrequency aggregates found keywords across the whole batch.
func (cs *Candidates) KeywordFrequency() map[string]int {
	freq := make(map[string]int)
	for _, c := range cs.Items {
		for _, kw := range c.FoundKeywords {
			freq[strings.ToLower(kw)]++
		}
	}
	return freq
}

// TopKeywords returns up to n keywords ordered by descending frequency,
// alphabetical within equal counts so the order is stable across runs.
func (cs *Candidates) TopKeywords(n int) []string {
	freq := cs.KeywordFrequency()
	keywords := make([]string, 0, len(freq))
	for kw := range freq {
		keywords = append(keywords, kw)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if freq[keywords[i]] != freq[keywords[j]] {
			return freq[keywords[i]] > freq[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})
	if n > 0 && len(keywords) > n {
		keywords = keywords[:n]
	}
	return keywords
}
