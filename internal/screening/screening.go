// Package screening implements the keyword gate that decides whether a
// candidate progresses past ingestion.
package screening

import "strings"

// DefaultThreshold is the minimum number of matched keywords required to
// pass screening.
const DefaultThreshold = 2

// Result is the outcome of screening a single raw text.
type Result struct {
	Hits   int
	Found  []string
	Passed bool
}

// Screener counts keyword hits against a fixed, ordered keyword set.
type Screener struct {
	keywords  []string
	threshold int
}

// New builds a screener. A non-positive threshold falls back to the default.
func New(keywords []string, threshold int) *Screener {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Screener{keywords: keywords, threshold: threshold}
}

// Screen counts how many of the configured keywords appear in the text.
// Matching is case-insensitive substring presence per keyword: a keyword
// occurring several times still counts once. Deterministic and total.
func (s *Screener) Screen(raw string) Result {
	lower := strings.ToLower(raw)

	res := Result{}
	for _, keyword := range s.keywords {
		kw := strings.ToLower(strings.TrimSpace(keyword))
		if kw == "" {
			continue
		}
		if strings.Contains(lower, kw) {
			res.Hits++
			res.Found = append(res.Found, kw)
		}
	}

	res.Passed = res.Hits >= s.threshold
	return res
}

// Threshold returns the configured pass threshold.
func (s *Screener) Threshold() int {
	return s.threshold
}
