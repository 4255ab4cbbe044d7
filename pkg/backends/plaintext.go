package backends

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/pdfbench/pdfbench/pkg/constants"
	"github.com/pdfbench/pdfbench/pkg/logger"
	"github.com/pdfbench/pdfbench/pkg/types"
)

// PlainTextBackend extracts per-page text and document metadata using the
// MuPDF bindings. It is the fastest method and the baseline for comparisons.
type PlainTextBackend struct {
	logger *logger.Logger
}

// NewPlainTextBackend creates a plain text extraction backend
func NewPlainTextBackend(log *logger.Logger) *PlainTextBackend {
	return &PlainTextBackend{logger: log}
}

// ID returns the backend identifier
func (b *PlainTextBackend) ID() types.BackendID {
	return types.BackendPlainText
}

// Available reports whether the backend can run. Pure library, always true.
func (b *PlainTextBackend) Available() bool {
	return true
}

// Extract pulls per-page text joined with newlines plus document metadata.
func (b *PlainTextBackend) Extract(ctx context.Context, input types.ExtractionInput) *types.Result {
	result := &types.Result{}

	doc, err := fitz.New(input.DocumentPath)
	if err != nil {
		result.Error = fmt.Sprintf("PlainText Error: cannot open document: %v", err)
		return result
	}
	defer doc.Close()

	result.Metadata = docMetadata(doc)

	start, end, err := normalizeRange(input.PageRange, doc.NumPage())
	if err != nil {
		return &types.Result{Error: fmt.Sprintf("PlainText Error: %v", err)}
	}

	var pages []string
	for n := start; n < end; n++ {
		if ctx.Err() != nil {
			return &types.Result{Error: fmt.Sprintf("PlainText Error: %v", ctx.Err())}
		}
		text, err := doc.Text(n)
		if err != nil {
			result.Error = fmt.Sprintf("PlainText Error: cannot read page %d: %v", n+1, err)
			return result
		}
		pages = append(pages, text)
	}

	result.Text = strings.Join(pages, constants.PlainTextPageSeparator)
	b.logger.Debug("Plain text extraction: %d pages, %d characters", end-start, len(result.Text))
	return result
}

// docMetadata copies the non-empty document metadata entries.
func docMetadata(doc *fitz.Document) map[string]string {
	meta := make(map[string]string)
	for key, value := range doc.Metadata() {
		if strings.TrimSpace(value) != "" {
			meta[key] = value
		}
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}
