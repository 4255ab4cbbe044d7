package backends

import (
	"fmt"

	"github.com/pdfbench/pdfbench/pkg/types"
	"github.com/pdfbench/pdfbench/pkg/utils"
)

// normalizeRange converts a 1-indexed inclusive page range into the
// 0-indexed half-open [start, end) range the extraction loops use. A nil
// range selects all pages. Each backend calls this at its own boundary
// because only the backend knows the document's true page count.
func normalizeRange(pr *types.PageRange, totalPages int) (start, end int, err error) {
	if pr == nil {
		return 0, totalPages, nil
	}
	if pr.Start < 1 || pr.End < pr.Start {
		return 0, 0, utils.NewValidationError(
			fmt.Sprintf("Invalid page range: %s. Start page must be at least 1 and not exceed end page.", pr), nil)
	}

	start = pr.Start - 1
	end = pr.End
	if end > totalPages {
		end = totalPages
	}
	if start >= end {
		return 0, 0, utils.NewValidationError(
			fmt.Sprintf("Invalid page range: %s. Document has %d pages.", pr, totalPages), nil)
	}
	return start, end, nil
}
