// Package extract turns raw resume text into a structured candidate record.
// Every function here is pure and total: missing sub-patterns degrade to the
// unknown sentinel instead of failing.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/obrienhr/cv-triage/internal/candidate"
)

const (
	maxNameLines    = 5
	maxNameWords    = 3
	sectionMaxChars = 500
)

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`\b(?:\+\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)
	yearsPattern = regexp.MustCompile(`(?i)(\d{1,2})\+?\s*(?:years?|yrs?)(?:\s+of)?\s+experience`)

	sectionPattern = regexp.MustCompile(`(?i)\n\s*(?:EXPERIENCE|SKILLS|EDUCATION|WORK HISTORY|EMPLOYMENT|PROFESSIONAL EXPERIENCE)(?:\s*|:)`)
	skillsHeader   = regexp.MustCompile(`(?i)SKILLS|QUALIFICATIONS`)
)

// vocabulary maps a normalized tag to the phrases that imply it. Entries are
// checked in order; the first tag with a matching phrase wins.
type vocabulary []struct {
	tag     string
	phrases []string
}

var availabilityVocab = vocabulary{
	{tag: "full availability", phrases: []string{"full availability", "fully available", "any shift", "flexible schedule", "flexible hours"}},
	{tag: "morning", phrases: []string{"morning"}},
	{tag: "night", phrases: []string{"night", "evening"}},
	{tag: "weekend", phrases: []string{"weekend"}},
}

// visaVocab order mirrors the scoring table: broader work permissions are
// matched first so "stamp 1g" is never shadowed by "stamp 1".
var visaVocab = vocabulary{
	{tag: "irish", phrases: []string{"irish citizen", "irish national", "citizen of ireland"}},
	{tag: "stamp 4", phrases: []string{"stamp 4", "stamp4"}},
	{tag: "ue", phrases: []string{"eu citizen", "eu national", "eu passport", "european citizen"}},
	{tag: "stamp 1g", phrases: []string{"stamp 1g", "stamp1g"}},
	{tag: "stamp 2", phrases: []string{"stamp 2", "stamp2", "student visa"}},
	{tag: "stamp 1", phrases: []string{"stamp 1", "stamp1", "work permit"}},
}

var trainingVocab = vocabulary{
	{tag: "food handling", phrases: []string{"haccp", "food handling", "food handler"}},
	{tag: "food safety", phrases: []string{"food safety", "food hygiene"}},
	{tag: "customer service", phrases: []string{"customer service training", "customer service course", "customer service certificate"}},
	{tag: "other", phrases: []string{"training", "course", "certificate", "certification", "diploma"}},
}

// Extract derives all structured fields from the raw text.
func Extract(raw string) candidate.Fields {
	name, email, phone := ContactInfo(raw)
	experience, skills := Sections(raw)

	return candidate.Fields{
		Name:             name,
		Email:            email,
		Phone:            phone,
		YearsExperience:  YearsExperience(raw),
		Skills:           skills,
		Experience:       experience,
		AvailabilityHint: NormalizeAvailability(raw),
		VisaHint:         NormalizeVisa(raw),
		TrainingHint:     NormalizeTraining(raw),
	}
}

// ContactInfo extracts name, email and phone. The name heuristic takes the
// first non-empty line among the first few that matches neither contact
// pattern, and is allowed to be wrong.
func ContactInfo(raw string) (name, email, phone string) {
	if m := emailPattern.FindString(raw); m != "" {
		email = m
	}
	if m := phonePattern.FindString(raw); m != "" {
		phone = m
	}

	name = candidate.Unknown
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	for i, line := range lines {
		if i >= maxNameLines {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" || emailPattern.MatchString(line) || phonePattern.MatchString(line) {
			continue
		}
		words := strings.Fields(line)
		if len(words) > maxNameWords {
			words = words[:maxNameWords]
		}
		name = strings.Join(words, " ")
		break
	}

	return name, email, phone
}

// YearsExperience returns the declared years of experience, -1 when absent.
func YearsExperience(raw string) int {
	m := yearsPattern.FindStringSubmatch(raw)
	if m == nil {
		return -1
	}
	years, err := strconv.Atoi(m[1])
	if err != nil || years < 0 {
		return -1
	}
	return years
}

// Sections splits the text on common resume headers and returns the
// experience excerpt and a best-effort skills list, both bounded.
func Sections(raw string) (experience string, skills []string) {
	parts := sectionPattern.Split(raw, -1)
	headers := sectionPattern.FindAllString(raw, -1)

	if len(parts) > 1 {
		experience = clip(strings.TrimSpace(parts[1]), sectionMaxChars)
	}

	var skillsSection string
	for i, header := range headers {
		if skillsHeader.MatchString(header) && i+1 < len(parts) {
			skillsSection = clip(strings.TrimSpace(parts[i+1]), sectionMaxChars)
			break
		}
	}
	if skillsSection == "" && len(parts) > 2 {
		skillsSection = clip(strings.TrimSpace(parts[len(parts)-1]), sectionMaxChars)
	}

	for _, item := range strings.FieldsFunc(skillsSection, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';' || r == '•' || r == '-'
	}) {
		item = strings.TrimSpace(item)
		if item != "" {
			skills = append(skills, item)
		}
	}

	return experience, skills
}

// NormalizeAvailability maps free text to an availability tag.
func NormalizeAvailability(s string) string {
	return lookup(availabilityVocab, s)
}

// NormalizeVisa maps free text to a visa status tag.
func NormalizeVisa(s string) string {
	return lookup(visaVocab, s)
}

// NormalizeTraining maps free text to a training/course tag. "none" is kept
// as an explicit answer distinct from unknown.
func NormalizeTraining(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), "none") {
		return "none"
	}
	return lookup(trainingVocab, s)
}

func lookup(vocab vocabulary, s string) string {
	lower := strings.ToLower(s)
	if strings.TrimSpace(lower) == "" {
		return candidate.Unknown
	}
	for _, entry := range vocab {
		if lower == entry.tag {
			return entry.tag
		}
		for _, phrase := range entry.phrases {
			if strings.Contains(lower, phrase) {
				return entry.tag
			}
		}
	}
	return candidate.Unknown
}

func clip(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
