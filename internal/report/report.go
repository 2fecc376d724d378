// Package report writes the tabular outputs of a triage run: the extraction
// table, the classification table and the summary workbook. Column order is
// fixed so downstream spreadsheets keep working between runs.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/obrienhr/cv-triage/internal/candidate"
)

var extractedHeader = []string{
	"id", "file_name", "name", "email", "phone", "years_experience",
	"skills", "experience", "keyword_count", "found_keywords",
	"screening_passed", "stage", "error",
}

var classifiedHeader = []string{
	"id", "file_name", "name", "email", "phone", "years_experience",
	"availability_hint", "visa_hint", "training_hint",
	"keyword_count", "found_keywords", "screening_passed",
	"responded", "availability", "visa", "courses", "interested",
	"score", "priority", "stage", "error",
}

// WriteExtracted writes the post-extraction table, one row per ingested
// document including failed ones.
func WriteExtracted(path string, cs *candidate.Candidates) error {
	rows := make([][]string, 0, cs.Len())
	for _, c := range cs.Items {
		rows = append(rows, []string{
			c.ID,
			c.SourceFile,
			c.Fields.Name,
			c.Fields.Email,
			c.Fields.Phone,
			formatYears(c.Fields.YearsExperience),
			strings.Join(c.Fields.Skills, "; "),
			c.Fields.Experience,
			strconv.Itoa(c.KeywordHits),
			strings.Join(c.FoundKeywords, "; "),
			formatYesNo(c.ScreeningPassed),
			c.Stage.String(),
			c.Err,
		})
	}
	return writeCSV(path, extractedHeader, rows)
}

// WriteClassified writes the final table with screening, survey and scoring
// columns. Survey columns stay blank for non-responders.
func WriteClassified(path string, cs *candidate.Candidates) error {
	rows := make([][]string, 0, cs.Len())
	for _, c := range cs.Items {
		responded := c.Survey != nil
		var availability, visa, courses, interested string
		if responded {
			availability = c.Survey.Availability
			visa = c.Survey.Visa
			courses = c.Survey.Courses
			interested = formatYesNo(c.Survey.Interested)
		}

		rows = append(rows, []string{
			c.ID,
			c.SourceFile,
			c.Fields.Name,
			c.Fields.Email,
			c.Fields.Phone,
			formatYears(c.Fields.YearsExperience),
			c.Fields.AvailabilityHint,
			c.Fields.VisaHint,
			c.Fields.TrainingHint,
			strconv.Itoa(c.KeywordHits),
			strings.Join(c.FoundKeywords, "; "),
			formatYesNo(c.ScreeningPassed),
			formatYesNo(responded),
			availability,
			visa,
			courses,
			interested,
			strconv.Itoa(c.Score),
			string(c.Priority),
			c.Stage.String(),
			c.Err,
		})
	}
	return writeCSV(path, classifiedHeader, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("writing header to %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row to %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return f.Close()
}

func formatYears(years int) string {
	if years < 0 {
		return ""
	}
	return strconv.Itoa(years)
}

func formatYesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
