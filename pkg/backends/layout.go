package backends

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdfbench/pdfbench/pkg/constants"
	"github.com/pdfbench/pdfbench/pkg/logger"
	"github.com/pdfbench/pdfbench/pkg/types"
)

// colGapFactor scales the coordinate tolerance into the horizontal gap
// that separates two table cells.
const colGapFactor = 4

// LayoutBackend extracts row-ordered text and table grids using glyph
// coordinates. Word fragments on a row are clustered into cells by
// horizontal gaps; runs of multi-cell rows become tables.
type LayoutBackend struct {
	logger *logger.Logger
}

// NewLayoutBackend creates a layout-aware extraction backend
func NewLayoutBackend(log *logger.Logger) *LayoutBackend {
	return &LayoutBackend{logger: log}
}

// ID returns the backend identifier
func (b *LayoutBackend) ID() types.BackendID {
	return types.BackendLayout
}

// Available reports whether the backend can run. Pure library, always true.
func (b *LayoutBackend) Available() bool {
	return true
}

// Extract produces per-page layout text (pages separated by an explicit
// marker) and TableRecords carrying page number and intra-page index.
func (b *LayoutBackend) Extract(ctx context.Context, input types.ExtractionInput) *types.Result {
	result := &types.Result{}

	tolerance := input.Options.LayoutTolerance
	if tolerance <= 0 {
		tolerance = constants.DefaultLayoutTolerance
	}

	f, reader, err := pdf.Open(input.DocumentPath)
	if err != nil {
		result.Error = fmt.Sprintf("Layout Error: cannot open document: %v", err)
		return result
	}
	defer f.Close()

	start, end, err := normalizeRange(input.PageRange, reader.NumPage())
	if err != nil {
		return &types.Result{Error: fmt.Sprintf("Layout Error: %v", err)}
	}

	var pages []string
	var tables []types.TableRecord
	for n := start; n < end; n++ {
		if ctx.Err() != nil {
			return &types.Result{Error: fmt.Sprintf("Layout Error: %v", ctx.Err())}
		}
		pageNum := n + 1 // 1-indexed for reporting
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			result.Error = fmt.Sprintf("Layout Error: cannot read page %d: %v", pageNum, err)
			return result
		}

		cellRows := make([][]string, 0, len(rows))
		for _, row := range rows {
			cellRows = append(cellRows, clusterRow(row, tolerance))
		}

		pages = append(pages, renderPageText(cellRows))
		tables = append(tables, detectTables(cellRows, pageNum)...)
	}

	result.Text = strings.Join(pages, constants.LayoutPageSeparator)
	result.Tables = tables
	b.logger.Debug("Layout extraction: %d pages, %d tables", end-start, len(tables))
	return result
}

// clusterRow groups a row's word fragments into cells: fragments are sorted
// by X and a new cell starts wherever the horizontal gap exceeds the
// clustering tolerance scaled by colGapFactor.
func clusterRow(row *pdf.Row, tolerance float64) []string {
	words := make([]pdf.Text, len(row.Content))
	copy(words, row.Content)
	sort.Slice(words, func(i, j int) bool { return words[i].X < words[j].X })

	var cells []string
	var cell strings.Builder
	var lastEnd float64
	for i, w := range words {
		if s := strings.TrimSpace(w.S); s == "" {
			continue
		}
		if i > 0 && cell.Len() > 0 && w.X-lastEnd > tolerance*colGapFactor {
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		}
		if cell.Len() > 0 {
			cell.WriteByte(' ')
		}
		cell.WriteString(w.S)
		lastEnd = w.X + w.W
	}
	if cell.Len() > 0 {
		cells = append(cells, strings.TrimSpace(cell.String()))
	}
	return cells
}

// renderPageText joins each row's cells with double spaces and rows with
// newlines, preserving the reading order of the page.
func renderPageText(cellRows [][]string) string {
	lines := make([]string, 0, len(cellRows))
	for _, cells := range cellRows {
		if len(cells) == 0 {
			continue
		}
		lines = append(lines, strings.Join(cells, "  "))
	}
	return strings.Join(lines, "\n")
}

// detectTables finds runs of at least two consecutive rows that each split
// into two or more cells and materializes them as table grids.
func detectTables(cellRows [][]string, pageNum int) []types.TableRecord {
	var tables []types.TableRecord
	var grid [][]string
	tableIndex := 0

	flush := func() {
		if len(grid) >= 2 {
			tables = append(tables, types.TableRecord{
				Page:       pageNum,
				TableIndex: tableIndex,
				Data:       grid,
			})
			tableIndex++
		}
		grid = nil
	}

	for _, cells := range cellRows {
		if len(cells) >= 2 {
			grid = append(grid, cells)
			continue
		}
		flush()
	}
	flush()
	return tables
}
