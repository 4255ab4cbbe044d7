package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdfbench/pdfbench/pkg/backends"
	"github.com/pdfbench/pdfbench/pkg/compare"
	"github.com/pdfbench/pdfbench/pkg/config"
	"github.com/pdfbench/pdfbench/pkg/constants"
	"github.com/pdfbench/pdfbench/pkg/core"
	"github.com/pdfbench/pdfbench/pkg/evaluate"
	"github.com/pdfbench/pdfbench/pkg/export"
	"github.com/pdfbench/pdfbench/pkg/interfaces"
	"github.com/pdfbench/pdfbench/pkg/logger"
	"github.com/pdfbench/pdfbench/pkg/types"
	"github.com/pdfbench/pdfbench/pkg/utils"
)

var (
	backendNames  string
	pageSpec      string
	ocrLanguages  string
	ocrDPI        int
	tolerance     float64
	nougatTimeout int
	grobidURL     string
	chunkSize     int
	chunkOverlap  int
	showDiff      bool
	exportDir     string
	verbose       bool
	showVersion   bool
)

// AppHandler encapsulates the comparison run
type AppHandler struct {
	config       *config.Config
	logger       *logger.Logger
	registry     interfaces.Registry
	orchestrator *core.Orchestrator
}

// NewAppHandler creates an application handler
func NewAppHandler() *AppHandler {
	return &AppHandler{}
}

// Compare is the main entry point: it runs the requested backends over the
// document and reports the outcome.
func (h *AppHandler) Compare(inputFile string) error {
	if err := h.initialize(); err != nil {
		return err
	}

	absPath, err := filepath.Abs(inputFile)
	if err != nil {
		return utils.WrapError(err, utils.ErrorTypeValidation, "error resolving file path")
	}
	if _, err := os.Stat(absPath); err != nil {
		return utils.NewNotFoundError(fmt.Sprintf("input file not found: %s", absPath), err)
	}

	req, err := h.buildRequest(absPath)
	if err != nil {
		return err
	}

	results, err := h.orchestrator.Run(context.Background(), req)
	if err != nil {
		return err
	}

	h.displayResults(results)
	h.displayChunkPreview(results)
	if showDiff {
		h.displayDiff(results)
	}
	if exportDir != "" {
		if err := h.exportResults(absPath, results); err != nil {
			return err
		}
	}
	return nil
}

// initialize loads configuration and wires the backend registry
func (h *AppHandler) initialize() error {
	h.config = config.LoadConfigWithEnvOverrides()
	h.applyCommandLineOverrides()

	if err := h.config.Validate(); err != nil {
		return utils.WrapError(err, utils.ErrorTypeValidation, "configuration validation failed")
	}

	h.logger = logger.NewLogger(h.config.LogLevel, h.config.EnableVerbose)
	h.registry = core.NewDefaultRegistry(h.config, h.logger)
	h.orchestrator = core.NewOrchestrator(h.registry, backends.NewResultCache(nil), h.logger)
	h.orchestrator.AddListener(interfaces.ProgressFunc(func(backend types.BackendID, fraction float64, message string) {
		h.logger.Progress("⏳", "[%s] %3.0f%% %s", backend, fraction*100, message)
	}))
	return nil
}

// applyCommandLineOverrides applies command line parameter overrides
func (h *AppHandler) applyCommandLineOverrides() {
	if ocrLanguages != "" {
		h.config.OCRLanguages = ocrLanguages
	}
	if ocrDPI > 0 {
		h.config.OCRDPI = ocrDPI
	}
	if tolerance > 0 {
		h.config.LayoutTolerance = tolerance
	}
	if nougatTimeout > 0 {
		h.config.MarkupTimeoutSec = nougatTimeout * 60
	}
	if grobidURL != "" {
		h.config.GrobidURL = grobidURL
	}
	if chunkSize > 0 {
		h.config.ChunkSize = chunkSize
	}
	if chunkOverlap >= 0 {
		h.config.ChunkOverlap = chunkOverlap
	}
	if verbose {
		h.config.EnableVerbose = true
	}
}

// buildRequest assembles the extraction request from flags and config
func (h *AppHandler) buildRequest(absPath string) (types.ExtractionRequest, error) {
	var req types.ExtractionRequest

	ids, err := parseBackendList(backendNames)
	if err != nil {
		return req, err
	}

	pageRange, err := parsePageRange(pageSpec)
	if err != nil {
		return req, err
	}

	req = types.ExtractionRequest{
		DocumentPath: absPath,
		Backends:     ids,
		PageRange:    pageRange,
		Options: types.Options{
			OCRLanguages:     h.config.OCRLanguages,
			OCRDPI:           h.config.OCRDPI,
			LayoutTolerance:  h.config.LayoutTolerance,
			MarkupTimeoutSec: h.config.MarkupTimeoutSec,
			StructureURL:     h.config.GrobidURL,
		},
	}
	return req, nil
}

// parseBackendList splits a comma-separated backend list
func parseBackendList(names string) ([]types.BackendID, error) {
	var ids []types.BackendID
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		ids = append(ids, types.BackendID(name))
	}
	if len(ids) == 0 {
		return nil, utils.NewValidationError("No backends specified. Use --backends, e.g. --backends plaintext,ocr", nil)
	}
	return ids, nil
}

// parsePageRange parses "N" or "N-M" (1-indexed, inclusive). Empty means
// all pages.
func parsePageRange(spec string) (*types.PageRange, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" || spec == "all" {
		return nil, nil
	}

	parts := strings.SplitN(spec, "-", 2)
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, utils.NewValidationError(fmt.Sprintf("Invalid page range: '%s'. Expected N or N-M.", spec), err)
	}
	end := start
	if len(parts) == 2 {
		end, err = strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, utils.NewValidationError(fmt.Sprintf("Invalid page range: '%s'. Expected N or N-M.", spec), err)
		}
	}
	return &types.PageRange{Start: start, End: end}, nil
}

// displayResults prints a per-backend summary with quality metrics
func (h *AppHandler) displayResults(results *types.ResultSet) {
	for _, id := range results.Keys() {
		result := results.Get(id)
		fmt.Printf("\n=== %s ===\n", id)

		if result.Failed() {
			fmt.Printf("❌ %s\n", result.Error)
			continue
		}

		text := result.PrimaryText()
		report := evaluate.ComputeMetrics(text)
		fmt.Printf("✅ Extraction succeeded\n")
		fmt.Printf("📊 Characters: %d | Words: %d | Equations: %d | Sections: %d\n",
			report.CharCount, report.WordCount,
			report.EstimatedEquationCount, report.EstimatedSectionCount)

		if len(result.Tables) > 0 {
			fmt.Printf("📋 Tables detected: %d\n", len(result.Tables))
		}
		if len(result.MathBlocks) > 0 {
			fmt.Printf("🧮 Display math blocks: %d\n", len(result.MathBlocks))
		}
		if title, ok := result.Metadata["title"]; ok && title != "" {
			fmt.Printf("📑 Title: %s\n", title)
		}
		h.showTextPreview(text)
	}
}

// showTextPreview displays the leading portion of extracted text
func (h *AppHandler) showTextPreview(text string) {
	if len(text) > 200 {
		preview := text[:200]
		if lastNewline := strings.LastIndex(preview, "\n"); lastNewline > 0 {
			preview = preview[:lastNewline]
		}
		fmt.Printf("📄 Preview:---\n%s...\n---\n", preview)
	}
}

// displayChunkPreview shows how the first successful result would chunk
func (h *AppHandler) displayChunkPreview(results *types.ResultSet) {
	for _, id := range results.Keys() {
		result := results.Get(id)
		if result.Failed() || result.PrimaryText() == "" {
			continue
		}

		preview, err := evaluate.PreviewChunks(result.PrimaryText(), evaluate.ChunkOptions{
			Strategy:     evaluate.StrategyRecursive,
			ChunkSize:    h.config.ChunkSize,
			ChunkOverlap: h.config.ChunkOverlap,
			MaxPreview:   h.config.MaxPreviewChunks,
		})
		if err != nil {
			h.logger.Warn("Chunk preview failed: %v", err)
			return
		}

		fmt.Printf("\n=== Chunk preview (%s) ===\n", id)
		fmt.Printf("🧩 Total chunks: %d (size %d, overlap %d)\n",
			preview.TotalChunks, h.config.ChunkSize, h.config.ChunkOverlap)
		for i, chunk := range preview.Chunks {
			fmt.Printf("--- chunk %d (%d chars) ---\n%s\n",
				i+1, len(chunk), utils.TruncateString(chunk, 160))
		}
		return
	}
}

// displayDiff renders a line diff between the two textual results
func (h *AppHandler) displayDiff(results *types.ResultSet) {
	type entry struct {
		id   types.BackendID
		text string
	}
	var ok []entry
	for _, id := range results.Keys() {
		result := results.Get(id)
		if !result.Failed() && result.PrimaryText() != "" {
			ok = append(ok, entry{id, result.PrimaryText()})
		}
	}
	if len(ok) < 2 {
		h.logger.Warn("Diff requires two successful textual results, have %d", len(ok))
		return
	}

	diff := compare.DiffLines(string(ok[0].id), ok[0].text, string(ok[1].id), ok[1].text)
	fmt.Printf("\n=== Diff: %s vs %s ===\n", diff.LabelA, diff.LabelB)
	fmt.Printf("➕ %d lines | ➖ %d lines | = %d lines\n",
		diff.Stats.InsertedLines, diff.Stats.DeletedLines, diff.Stats.EqualLines)
	fmt.Print(diff.Text)
}

// exportResults writes per-backend export files into exportDir
func (h *AppHandler) exportResults(absPath string, results *types.ResultSet) error {
	stem := utils.FileStem(absPath)

	for _, id := range results.Keys() {
		result := results.Get(id)
		if result.Failed() {
			continue
		}

		base := fmt.Sprintf("%s_%s", stem, id)

		if result.Text != "" {
			if err := h.writeExport(base+".txt", export.Text(result.Text)); err != nil {
				return err
			}
		}
		if result.Markdown != "" {
			if err := h.writeExport(base+".md", export.Text(result.Markdown)); err != nil {
				return err
			}
		}
		if result.StructuredText != "" {
			if err := h.writeExport(base+".xml", export.Text(result.StructuredText)); err != nil {
				return err
			}
		}

		data, err := export.JSON(result)
		if err != nil {
			return err
		}
		if err := h.writeExport(base+".json", data); err != nil {
			return err
		}

		if text := result.PrimaryText(); text != "" {
			docxData, err := export.Docx(text)
			if err != nil {
				return err
			}
			if err := h.writeExport(base+".docx", docxData); err != nil {
				return err
			}
		}

		if len(result.Tables) > 0 {
			xlsxData, err := export.Tables(result.Tables)
			if err != nil {
				return err
			}
			if err := h.writeExport(base+"_tables.xlsx", xlsxData); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *AppHandler) writeExport(name string, data []byte) error {
	path, err := export.WriteFile(exportDir, name, data)
	if err != nil {
		return err
	}
	h.logger.ProgressAlways("💾", "Wrote %s", path)
	return nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pdfbench [input_file.pdf]",
	Short: "A CLI workbench for comparing PDF text extraction backends",
	Long: `A CLI workbench that runs one or two text extraction backends over the
same PDF and compares the outputs side by side: quality metrics, chunking
preview, line diff, and optional export files.

Backends:
- plaintext: embedded text layer (fast baseline)
- layout:    coordinate-based rows and cells, with table detection
- ocr:       page rasterization + Tesseract (requires tesseract)
- markup:    academic PDF to markdown via Nougat (requires nougat)
- structure: TEI XML from a GROBID service (requires a running service)

When the markup backend fails and the OCR backend is registered, an OCR
fallback run is recorded under the key 'ocr-fallback'.

Examples:
  pdfbench paper.pdf --backends plaintext                 # Quick text check
  pdfbench paper.pdf --backends plaintext,ocr --diff      # Compare with diff
  pdfbench paper.pdf --backends layout --pages 2-5        # Table hunt on pages 2-5
  pdfbench paper.pdf --backends markup --nougat-timeout 60
  pdfbench paper.pdf --backends structure --grobid-url http://localhost:8070
  pdfbench paper.pdf --backends plaintext,layout --export-dir ./out
  pdfbench paper.pdf --backends ocr --ocr-lang deu --ocr-dpi 400 -v`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if showVersion {
			fmt.Printf("pdfbench %s\n", version)
			return
		}

		if len(args) == 0 {
			cmd.Help()
			return
		}

		handler := NewAppHandler()
		if err := handler.Compare(args[0]); err != nil {
			if appErr, ok := err.(*utils.AppError); ok {
				log.Fatalf("Error (%s): %s", appErr.Type, appErr.Message)
			} else {
				log.Fatalf("Error: %v", err)
			}
		}
	},
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&backendNames, "backends", string(types.BackendPlainText),
		"Comma-separated backends to run, at most two (plaintext, layout, ocr, markup, structure)")
	rootCmd.Flags().StringVar(&pageSpec, "pages", "",
		"Page range to extract, 1-indexed inclusive (e.g. 3 or 2-5). Default: all pages")
	rootCmd.Flags().StringVar(&ocrLanguages, "ocr-lang", "",
		"Tesseract language codes (e.g. eng, eng+deu)")
	rootCmd.Flags().IntVar(&ocrDPI, "ocr-dpi", 0,
		fmt.Sprintf("Rasterization DPI for OCR (default %d)", constants.DefaultOCRDPI))
	rootCmd.Flags().Float64Var(&tolerance, "tolerance", 0,
		fmt.Sprintf("Column clustering tolerance for the layout backend (default %.0f)", constants.DefaultLayoutTolerance))
	rootCmd.Flags().IntVar(&nougatTimeout, "nougat-timeout", 0,
		"Markup backend timeout in minutes (default 30)")
	rootCmd.Flags().StringVar(&grobidURL, "grobid-url", "",
		"Base URL of the GROBID structure service")
	rootCmd.Flags().IntVar(&chunkSize, "chunk-size", 0,
		fmt.Sprintf("Chunk size for the chunking preview (default %d)", constants.DefaultChunkSize))
	rootCmd.Flags().IntVar(&chunkOverlap, "chunk-overlap", -1,
		fmt.Sprintf("Chunk overlap for the chunking preview (default %d)", constants.DefaultChunkOverlap))
	rootCmd.Flags().BoolVar(&showDiff, "diff", false,
		"Show a line diff between the two backend outputs")
	rootCmd.Flags().StringVar(&exportDir, "export-dir", "",
		"Directory to write export files (txt/md/xml/json/docx/xlsx)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output to show progress information")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "V", false,
		"Show version information")
}
