package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/obrienhr/cv-triage/internal/candidate"
)

func testBatch() *candidate.Candidates {
	jane := candidate.New("jane_cv", "jane_cv.pdf")
	jane.Fields.Name = "Jane Byrne"
	jane.Fields.Email = "jane@example.com"
	jane.Fields.YearsExperience = 3
	jane.Fields.Skills = []string{"customer service", "cash handling"}
	jane.KeywordHits = 3
	jane.FoundKeywords = []string{"customer service", "fast food", "cashier"}
	jane.ScreeningPassed = true
	jane.Survey = &candidate.SurveyResponse{
		Availability: "full availability",
		Visa:         "irish",
		Courses:      "food handling",
		Interested:   true,
	}
	jane.Score = 16
	jane.Priority = candidate.PriorityHigh
	jane.Stage = candidate.StageNotified

	bob := candidate.New("bob_cv", "bob_cv.txt")
	bob.Fields.Name = "Bob Smith"
	bob.Stage = candidate.StageClassified

	failed := candidate.New("corrupt_cv", "corrupt_cv.pdf")
	failed.Err = "text extraction unavailable: corrupt document"

	cs := &candidate.Candidates{}
	cs.Add(jane)
	cs.Add(bob)
	cs.Add(failed)
	return cs
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening %s: %v", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return rows
}

func column(t *testing.T, rows [][]string, name string) int {
	t.Helper()

	for i, col := range rows[0] {
		if col == name {
			return i
		}
	}
	t.Fatalf("column %q not found in header %v", name, rows[0])
	return -1
}

func TestWriteExtractedIncludesFailedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "extracted.csv")

	if err := WriteExtracted(path, testBatch()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) != 4 {
		t.Fatalf("expected header plus 3 rows, got %d", len(rows))
	}

	errCol := column(t, rows, "error")
	idCol := column(t, rows, "id")
	for _, row := range rows[1:] {
		if row[idCol] == "corrupt_cv" && row[errCol] == "" {
			t.Fatalf("failed record lost its error annotation")
		}
	}

	yearsCol := column(t, rows, "years_experience")
	if rows[2][yearsCol] != "" {
		t.Fatalf("missing years must serialize as empty, got %q", rows[2][yearsCol])
	}
	if rows[1][yearsCol] != "3" {
		t.Fatalf("expected years 3, got %q", rows[1][yearsCol])
	}
}

func TestWriteClassifiedSurveyColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classified.csv")

	if err := WriteClassified(path, testBatch()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rows := readCSV(t, path)
	respondedCol := column(t, rows, "responded")
	availCol := column(t, rows, "availability")
	priorityCol := column(t, rows, "priority")
	scoreCol := column(t, rows, "score")

	jane := rows[1]
	if jane[respondedCol] != "yes" || jane[availCol] != "full availability" {
		t.Fatalf("responder row wrong: responded=%q availability=%q", jane[respondedCol], jane[availCol])
	}
	if jane[priorityCol] != "High" || jane[scoreCol] != "16" {
		t.Fatalf("classification columns wrong: priority=%q score=%q", jane[priorityCol], jane[scoreCol])
	}

	bob := rows[2]
	if bob[respondedCol] != "no" {
		t.Fatalf("expected responded=no, got %q", bob[respondedCol])
	}
	if bob[availCol] != "" {
		t.Fatalf("survey columns must stay blank without a response, got %q", bob[availCol])
	}
}

func TestWriteSummaryWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.xlsx")

	if err := WriteSummary(path, testBatch()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	high, err := f.GetCellValue(summarySheet, "B2")
	if err != nil {
		t.Fatalf("reading summary cell: %v", err)
	}
	if high != "1" {
		t.Fatalf("expected 1 High candidate, got %q", high)
	}

	total, err := f.GetCellValue(summarySheet, "B6")
	if err != nil {
		t.Fatalf("reading total cell: %v", err)
	}
	if total != "3" {
		t.Fatalf("expected total 3, got %q", total)
	}

	kw, err := f.GetCellValue(keywordsSheet, "A2")
	if err != nil {
		t.Fatalf("reading keyword cell: %v", err)
	}
	if kw == "" {
		t.Fatalf("expected a top keyword in the workbook")
	}
}
