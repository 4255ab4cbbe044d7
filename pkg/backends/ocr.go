package backends

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/pdfbench/pdfbench/pkg/constants"
	"github.com/pdfbench/pdfbench/pkg/logger"
	"github.com/pdfbench/pdfbench/pkg/types"
	"github.com/pdfbench/pdfbench/pkg/utils"
)

// OCRBackend rasterizes each page at a configurable DPI and runs the
// tesseract executable over the image. One page's recognition failure is
// recorded inline in the output instead of aborting the document; a
// missing tesseract binary is a hard per-call error.
type OCRBackend struct {
	tesseractPath string
	logger        *logger.Logger
}

// NewOCRBackend creates an OCR extraction backend using the tesseract
// executable at the given path (or name resolved through PATH).
func NewOCRBackend(tesseractPath string, log *logger.Logger) *OCRBackend {
	return &OCRBackend{tesseractPath: tesseractPath, logger: log}
}

// ID returns the backend identifier
func (b *OCRBackend) ID() types.BackendID {
	return types.BackendOCR
}

// Available reports whether the tesseract executable can be resolved.
func (b *OCRBackend) Available() bool {
	_, err := exec.LookPath(b.tesseractPath)
	return err == nil
}

// Extract renders each selected page to PNG and recognizes it.
func (b *OCRBackend) Extract(ctx context.Context, input types.ExtractionInput) *types.Result {
	if _, err := exec.LookPath(b.tesseractPath); err != nil {
		return &types.Result{Error: fmt.Sprintf(
			"OCR Error: tesseract executable not found (%s). Install it or set PDFBENCH_TESSERACT_PATH.", b.tesseractPath)}
	}

	langs := input.Options.OCRLanguages
	if langs == "" {
		langs = constants.DefaultOCRLanguages
	}
	dpi := input.Options.OCRDPI
	if dpi <= 0 {
		dpi = constants.DefaultOCRDPI
	}

	doc, err := fitz.New(input.DocumentPath)
	if err != nil {
		return &types.Result{Error: fmt.Sprintf("OCR Workflow Error: cannot open document: %v", err)}
	}
	defer doc.Close()

	start, end, err := normalizeRange(input.PageRange, doc.NumPage())
	if err != nil {
		return &types.Result{Error: fmt.Sprintf("OCR Workflow Error: %v", err)}
	}

	tmp, err := utils.NewTempDir("ocr_pages_", b.logger)
	if err != nil {
		return &types.Result{Error: fmt.Sprintf("OCR Workflow Error: %v", err)}
	}
	defer tmp.Cleanup()

	var pages []string
	for n := start; n < end; n++ {
		if ctx.Err() != nil {
			return &types.Result{Error: fmt.Sprintf("OCR Workflow Error: %v", ctx.Err())}
		}
		pageNum := n + 1
		text, err := b.recognizePage(ctx, doc, tmp, n, dpi, langs)
		if err != nil {
			// Per-page failures are recorded inline so the rest of the
			// document still comes through.
			b.logger.Warn("OCR error on page %d: %v", pageNum, err)
			pages = append(pages, fmt.Sprintf("[OCR error on page %d]", pageNum))
			continue
		}
		pages = append(pages, text)
	}

	b.logger.Debug("OCR extraction: %d pages at %d dpi (languages %s)", end-start, dpi, langs)
	return &types.Result{Text: strings.Join(pages, constants.OCRPageSeparator)}
}

// recognizePage renders page n (0-indexed) to a temp PNG and runs
// tesseract over it, returning the recognized text.
func (b *OCRBackend) recognizePage(ctx context.Context, doc *fitz.Document, tmp *utils.TempDir, n, dpi int, langs string) (string, error) {
	png, err := doc.ImagePNG(n, float64(dpi))
	if err != nil {
		return "", fmt.Errorf("render failed: %w", err)
	}

	imgPath := tmp.Join(fmt.Sprintf(constants.OCRPageImagePattern, n+1))
	if err := os.WriteFile(imgPath, png, constants.DefaultFilePermission); err != nil {
		return "", fmt.Errorf("cannot write page image: %w", err)
	}

	cmd := exec.CommandContext(ctx, b.tesseractPath, imgPath, "stdout", "-l", langs)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("recognition failed: %w", err)
	}
	return string(output), nil
}
