// Package ingest enumerates unprocessed resume documents from the inbound
// folder, delegates text extraction, and archives consumed documents so a
// source file is never ingested twice across runs.
package ingest

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrExtractionUnavailable marks a document whose text could not be
// extracted. The batch records it against the candidate and moves on.
var ErrExtractionUnavailable = errors.New("text extraction unavailable")

// Handle identifies one pending source document.
type Handle struct {
	Name string
	Path string
}

// ID derives the stable candidate identifier from the source filename.
func (h Handle) ID() string {
	return strings.TrimSuffix(h.Name, filepath.Ext(h.Name))
}

// TextExtractor is the external capability turning document bytes into plain
// text. Implementations fail with an error the ingestor wraps as
// ErrExtractionUnavailable.
type TextExtractor interface {
	ExtractText(path string, data []byte) (string, error)
}

// Folder consumes documents from a directory, moving each consumed file into
// the processed subdirectory exactly once.
type Folder struct {
	dir          string
	processedDir string
	extractor    TextExtractor
	logger       *zap.Logger
}

// NewFolder prepares the inbound and processed directories. Failure here
// means the input boundary is inaccessible and the batch must not start.
func NewFolder(dir, processedDir string, extractor TextExtractor, logger *zap.Logger) (*Folder, error) {
	for _, d := range []string{dir, processedDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("preparing directory %q: %w", d, err)
		}
	}

	return &Folder{
		dir:          dir,
		processedDir: processedDir,
		extractor:    extractor,
		logger:       logger,
	}, nil
}

// ListPending enumerates unconsumed documents. Anything already moved to the
// processed directory is excluded, so a restarted batch resumes where the
// previous one stopped.
func (f *Folder) ListPending(ctx context.Context) ([]Handle, error) {
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading input folder %q: %w", f.dir, err)
	}

	var pending []Handle
	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if entry.IsDir() {
			continue
		}
		if !supportedDocument(entry.Name()) {
			continue
		}
		pending = append(pending, Handle{
			Name: entry.Name(),
			Path: filepath.Join(f.dir, entry.Name()),
		})
	}

	f.logger.Info("found pending documents", zap.Int("count", len(pending)), zap.String("dir", f.dir))
	return pending, nil
}

// Claim reads the document and extracts its text.
func (f *Folder) Claim(h Handle) (string, error) {
	data, err := os.ReadFile(h.Path)
	if err != nil {
		return "", fmt.Errorf("%w: reading %q: %v", ErrExtractionUnavailable, h.Name, err)
	}

	text, err := f.extractor.ExtractText(h.Path, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtractionUnavailable, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: no text extracted from %q", ErrExtractionUnavailable, h.Name)
	}

	return text, nil
}

// Archive moves the handle to the processed directory. Archiving an
// already-archived handle is a no-op, so retries after an interrupted batch
// are safe.
func (f *Folder) Archive(h Handle) error {
	target := filepath.Join(f.processedDir, h.Name)

	if _, err := os.Stat(h.Path); os.IsNotExist(err) {
		if _, terr := os.Stat(target); terr == nil {
			return nil
		}
		return fmt.Errorf("archiving %q: source and archive both missing", h.Name)
	}

	if err := os.Rename(h.Path, target); err != nil {
		return fmt.Errorf("archiving %q: %w", h.Name, err)
	}

	f.logger.Debug("archived document", zap.String("file", h.Name), zap.String("to", f.processedDir))
	return nil
}

// UniqueID returns the filename-derived id, suffixed with a content hash
// fragment when another record already claimed the same id.
func UniqueID(h Handle, data []byte, taken func(string) bool) string {
	id := h.ID()
	if !taken(id) {
		return id
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%s-%x", id, sum[:4])
}

func supportedDocument(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".txt":
		return true
	default:
		return false
	}
}
