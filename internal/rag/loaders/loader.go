// Package loaders extracts raw text from uploaded files. Extracted text
// keeps its newlines so the splitter can see paragraph boundaries.
package loaders

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"docchat/pkg/logger"
)

// Loader reads one file format and returns its text content.
type Loader interface {
	Load(ctx context.Context, path string) (string, error)
}

// allowedExtensions is the upload whitelist. doc and rtf are accepted at the
// boundary but have no parser wired; they extract to empty text.
var allowedExtensions = map[string]bool{
	".txt":  true,
	".pdf":  true,
	".doc":  true,
	".docx": true,
	".rtf":  true,
}

// Allowed reports whether the filename carries a whitelisted extension.
func Allowed(filename string) bool {
	return allowedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Extractor dispatches text extraction by file extension.
type Extractor struct {
	log *logger.Logger
}

// NewExtractor creates an Extractor.
func NewExtractor(log *logger.Logger) *Extractor {
	return &Extractor{log: log}
}

// ExtractText extracts the text of the file at path. Extensions without a
// parser yield empty text with a warning, not an error; parser failures are
// errors.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var loader Loader
	switch ext {
	case ".txt":
		loader = NewTxtLoader()
	case ".pdf":
		loader = NewPdfLoader()
	case ".docx":
		loader = NewDocxLoader()
	default:
		e.log.Warn(fmt.Sprintf("No text parser for file type %q (%s), extracting nothing", ext, filepath.Base(path)))
		return "", nil
	}

	text, err := loader.Load(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from %s: %w", filepath.Base(path), err)
	}
	return text, nil
}
