package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fumiama/go-docx"
	"github.com/xuri/excelize/v2"

	"github.com/pdfbench/pdfbench/pkg/constants"
	"github.com/pdfbench/pdfbench/pkg/types"
	"github.com/pdfbench/pdfbench/pkg/utils"
)

// Text returns the UTF-8 byte rendition of plain text output. Markdown and
// XML exports use the same passthrough encoding.
func Text(text string) []byte {
	return []byte(text)
}

// JSON pretty-prints v with HTML escaping disabled so non-ASCII text and
// angle brackets survive a round trip unchanged.
func JSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", constants.JSONIndent)
	if err := enc.Encode(v); err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeConversion, "failed to encode JSON export")
	}
	return buf.Bytes(), nil
}

// Docx renders text as a Word document with one paragraph per line.
func Docx(text string) ([]byte, error) {
	doc := docx.New().WithDefaultTheme()
	for _, line := range splitLines(text) {
		doc.AddParagraph().AddText(line)
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeConversion, "failed to encode DOCX export")
	}
	return buf.Bytes(), nil
}

// Tables renders detected tables as an XLSX workbook with one sheet per
// table. An empty slice yields an error rather than an empty workbook.
func Tables(tables []types.TableRecord) ([]byte, error) {
	if len(tables) == 0 {
		return nil, utils.NewValidationError("No tables to export", nil)
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, tbl := range tables {
		sheet := fmt.Sprintf("Page%d_Table%d", tbl.Page, tbl.TableIndex+1)
		if i == 0 {
			f.SetSheetName(f.GetSheetName(0), sheet)
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, utils.WrapError(err, utils.ErrorTypeConversion, "failed to create XLSX sheet")
			}
		}
		for r, row := range tbl.Data {
			for c, value := range row {
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				if err != nil {
					return nil, utils.WrapError(err, utils.ErrorTypeConversion, "failed to address XLSX cell")
				}
				if err := f.SetCellValue(sheet, cell, value); err != nil {
					return nil, utils.WrapError(err, utils.ErrorTypeConversion, "failed to write XLSX cell")
				}
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeConversion, "failed to encode XLSX export")
	}
	return buf.Bytes(), nil
}

// WriteFile writes data into dir under a sanitized file name, creating the
// directory when needed. It returns the full path written.
func WriteFile(dir, name string, data []byte) (string, error) {
	if err := utils.EnsureDir(dir); err != nil {
		return "", err
	}
	path := filepath.Join(dir, utils.SanitizeFileName(name))
	if err := os.WriteFile(path, data, constants.DefaultFilePermission); err != nil {
		return "", utils.NewIOError(fmt.Sprintf("failed to write export file: %s", path), err)
	}
	return path, nil
}

func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}
