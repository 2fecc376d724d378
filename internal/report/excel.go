package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/obrienhr/cv-triage/internal/candidate"
)

const (
	summarySheet  = "Summary"
	keywordsSheet = "Keywords"

	topKeywordCount = 10
)

// WriteSummary writes the run summary workbook: priority counts on one sheet
// and the most frequent screening keywords on another.
func WriteSummary(path string, cs *candidate.Candidates) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return fmt.Errorf("naming summary sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := writeSummarySheet(f, header, cs); err != nil {
		return err
	}
	if err := writeKeywordsSheet(f, header, cs); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, headerStyle int, cs *candidate.Candidates) error {
	if err := f.SetSheetRow(summarySheet, "A1", &[]any{"Priority", "Candidates"}); err != nil {
		return fmt.Errorf("writing summary header: %w", err)
	}
	if err := f.SetCellStyle(summarySheet, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("styling summary header: %w", err)
	}

	counts := cs.CountByPriority()
	order := []candidate.Priority{
		candidate.PriorityHigh,
		candidate.PriorityMedium,
		candidate.PriorityLow,
		candidate.PriorityUnscreened,
	}

	row := 2
	for _, p := range order {
		cell := fmt.Sprintf("A%d", row)
		if err := f.SetSheetRow(summarySheet, cell, &[]any{string(p), counts[p]}); err != nil {
			return fmt.Errorf("writing summary row: %w", err)
		}
		row++
	}

	totalCell := fmt.Sprintf("A%d", row)
	if err := f.SetSheetRow(summarySheet, totalCell, &[]any{"Total", cs.Len()}); err != nil {
		return fmt.Errorf("writing summary total: %w", err)
	}
	return nil
}

func writeKeywordsSheet(f *excelize.File, headerStyle int, cs *candidate.Candidates) error {
	if _, err := f.NewSheet(keywordsSheet); err != nil {
		return fmt.Errorf("creating keywords sheet: %w", err)
	}

	if err := f.SetSheetRow(keywordsSheet, "A1", &[]any{"Keyword", "Candidates"}); err != nil {
		return fmt.Errorf("writing keywords header: %w", err)
	}
	if err := f.SetCellStyle(keywordsSheet, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("styling keywords header: %w", err)
	}

	freq := cs.KeywordFrequency()
	for i, kw := range cs.TopKeywords(topKeywordCount) {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(keywordsSheet, cell, &[]any{kw, freq[kw]}); err != nil {
			return fmt.Errorf("writing keyword row: %w", err)
		}
	}
	return nil
}
