package ingest

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	// binarySampleSize is the number of bytes sampled for binary detection.
	binarySampleSize = 1000
	// binaryThreshold is the proportion of non-printable bytes that marks
	// content as binary.
	binaryThreshold = 0.3
)

// FileExtractor extracts plain text from .txt and .pdf documents. PDF
// extraction shells out to pdftotext (poppler-utils), matching the external
// extraction capability the pipeline treats as an edge.
type FileExtractor struct{}

func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

func (e *FileExtractor) ExtractText(path string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		if isBinary(data) {
			return "", fmt.Errorf("%q contains binary data, not plain text", filepath.Base(path))
		}
		return string(data), nil
	case ".pdf":
		return extractPDF(path)
	default:
		return "", fmt.Errorf("unsupported document type %q", filepath.Ext(path))
	}
}

func extractPDF(path string) (string, error) {
	out, err := exec.Command("pdftotext", "-layout", path, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext failed for %q (poppler-utils required): %w", filepath.Base(path), err)
	}
	return string(out), nil
}

// isBinary reports whether the content looks like document bytes rather than
// text: PDF/ZIP magic numbers or a high share of non-printable characters.
func isBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	if strings.HasPrefix(string(data[:min(5, len(data))]), "%PDF-") {
		return true
	}
	if len(data) >= 2 && data[0] == 'P' && data[1] == 'K' {
		return true
	}

	sample := min(binarySampleSize, len(data))
	nonPrintable := 0
	for i := 0; i < sample; i++ {
		b := data[i]
		if b < 32 && b != '\n' && b != '\r' && b != '\t' {
			nonPrintable++
		}
	}

	return float64(nonPrintable)/float64(sample) > binaryThreshold
}
