package constants

import "time"

// Application constants
const (
	AppName = "pdfbench"
)

// File processing constants
const (
	// Default file permissions
	DefaultFilePermission = 0644
	DefaultDirPermission  = 0755

	// Page separators used when joining per-page output
	PlainTextPageSeparator = "\n"
	LayoutPageSeparator    = "\n---\n"
	OCRPageSeparator       = "\n\n--- Page Break ---\n\n"
)

// Backend defaults
const (
	DefaultOCRLanguages    = "eng"
	DefaultOCRDPI          = 300
	DefaultLayoutTolerance = 3.0

	// Markup subprocess settings
	DefaultMarkupTimeout    = 30 * time.Minute
	MarkupPollInterval      = 1 * time.Second
	MarkupProgressCeiling   = 0.9 // progress is capped here until the process exits
	MarkupOutputExtension   = ".mmd"
	MarkupNoSkippingFlag    = "--no-skipping"
	MarkupTempDirPrefix     = "markup_output_"
	OCRPageImagePattern     = "page_%d.png"
	StderrTruncateLimit     = 1000

	// Structure service settings
	DefaultStructureTimeout = 120 * time.Second
	StructureFulltextPath   = "/api/processFulltextDocument"
	StructureFileField      = "input"
	ResponseTruncateLimit   = 500
)

// Chunking preview defaults
const (
	DefaultChunkSize        = 1000
	DefaultChunkOverlap     = 100
	DefaultMaxPreviewChunks = 5
)

// Export settings
const (
	MaxSafeFileNameLength = 100
	JSONIndent            = "    "
)
