package types

import (
	"fmt"
	"strings"
)

// BackendID identifies an extraction backend
type BackendID string

const (
	BackendPlainText BackendID = "plaintext"
	BackendLayout    BackendID = "layout"
	BackendOCR       BackendID = "ocr"
	BackendMarkup    BackendID = "markup"
	BackendStructure BackendID = "structure"

	// FallbackKey tags OCR results produced by the fallback policy so they
	// are never confused with a user-requested OCR run.
	FallbackKey BackendID = "ocr-fallback"
)

// PageRange is a 1-indexed inclusive page selection. A nil *PageRange
// means "all pages".
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// String returns the range in "start-end" form.
func (r *PageRange) String() string {
	if r == nil {
		return "all"
	}
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Options carries per-backend parameters for one extraction run.
// Zero values mean "use configured defaults".
type Options struct {
	// OCR backend
	OCRLanguages string `json:"ocr_languages,omitempty"` // tesseract language set, e.g. "eng" or "eng+fra"
	OCRDPI       int    `json:"ocr_dpi,omitempty"`

	// Layout backend
	LayoutTolerance float64 `json:"layout_tolerance,omitempty"` // coordinate clustering tolerance in points

	// Markup backend
	MarkupTimeoutSec int `json:"markup_timeout_sec,omitempty"`

	// Structure backend
	StructureURL string `json:"structure_url,omitempty"`
}

// ExtractionInput is what a single backend receives: the document, the
// shared page range, and the merged option bag.
type ExtractionInput struct {
	DocumentPath string
	PageRange    *PageRange
	Options      Options
}

// ExtractionRequest describes one orchestration run.
type ExtractionRequest struct {
	DocumentPath string
	Backends     []BackendID // 1 or 2 entries, in selection order
	PageRange    *PageRange
	Options      Options
}

// TableRecord is one table extracted by the layout backend. It is owned
// by the Result that produced it.
type TableRecord struct {
	Page       int        `json:"page"` // 1-indexed page number
	TableIndex int        `json:"table_index"`
	Data       [][]string `json:"data"`
}

// Result holds the output of a single backend invocation. If Error is
// non-empty, all content fields are invalid for downstream consumers.
type Result struct {
	Text           string            `json:"text,omitempty"`
	Markdown       string            `json:"markdown,omitempty"`
	StructuredText string            `json:"structured_text,omitempty"`
	Tables         []TableRecord     `json:"tables,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	MathBlocks     []string          `json:"math_blocks,omitempty"`
	Error          string            `json:"error,omitempty"`
}

// Failed reports whether the backend recorded an error.
func (r *Result) Failed() bool {
	return r != nil && r.Error != ""
}

// PrimaryText returns the single text blob representing this result,
// selected by fixed precedence: markdown, then text, then structured text.
// Returns "" for failed or empty results.
func (r *Result) PrimaryText() string {
	if r == nil || r.Failed() {
		return ""
	}
	if r.Markdown != "" {
		return r.Markdown
	}
	if r.Text != "" {
		return r.Text
	}
	return r.StructuredText
}

// ResultSet maps backend identifiers (plus the synthetic fallback key) to
// results, preserving insertion order. A fresh ResultSet is created per
// orchestration run; runs never merge.
type ResultSet struct {
	order   []BackendID
	entries map[BackendID]*Result
}

// NewResultSet returns an empty ResultSet.
func NewResultSet() *ResultSet {
	return &ResultSet{entries: make(map[BackendID]*Result)}
}

// Put stores a result under id, replacing any previous entry while keeping
// the original insertion position.
func (rs *ResultSet) Put(id BackendID, r *Result) {
	if _, exists := rs.entries[id]; !exists {
		rs.order = append(rs.order, id)
	}
	rs.entries[id] = r
}

// Get returns the result for id, or nil if absent.
func (rs *ResultSet) Get(id BackendID) *Result {
	return rs.entries[id]
}

// Keys returns the backend identifiers in insertion order.
func (rs *ResultSet) Keys() []BackendID {
	keys := make([]BackendID, len(rs.order))
	copy(keys, rs.order)
	return keys
}

// Len returns the number of stored results.
func (rs *ResultSet) Len() int {
	return len(rs.order)
}

// String summarizes the set for logging.
func (rs *ResultSet) String() string {
	parts := make([]string, 0, len(rs.order))
	for _, id := range rs.order {
		state := "ok"
		if rs.entries[id].Failed() {
			state = "error"
		}
		parts = append(parts, fmt.Sprintf("%s:%s", id, state))
	}
	return "ResultSet{" + strings.Join(parts, ", ") + "}"
}
