package loaders

import (
	"context"
	"strings"

	"github.com/unidoc/unioffice/v2/document"
)

// DocxLoader implements the Loader interface for Word (.docx) files.
type DocxLoader struct{}

// NewDocxLoader creates a new DocxLoader.
func NewDocxLoader() *DocxLoader {
	return &DocxLoader{}
}

// Load joins the text of every paragraph with newlines, preserving the
// document's paragraph structure for the splitter.
func (l *DocxLoader) Load(ctx context.Context, path string) (string, error) {
	doc, err := document.Open(path)
	if err != nil {
		return "", err
	}
	defer doc.Close()

	var sb strings.Builder
	for _, p := range doc.Paragraphs() {
		for _, r := range p.Runs() {
			sb.WriteString(r.Text())
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// compile-time check to ensure DocxLoader implements the Loader interface
var _ Loader = (*DocxLoader)(nil)
