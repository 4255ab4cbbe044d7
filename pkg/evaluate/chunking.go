package evaluate

import (
	"fmt"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/pdfbench/pdfbench/pkg/constants"
	"github.com/pdfbench/pdfbench/pkg/utils"
)

// StrategyRecursive is the only chunking strategy currently implemented.
const StrategyRecursive = "recursive"

// ChunkOptions controls how extracted text is split for embedding preview.
type ChunkOptions struct {
	Strategy     string
	ChunkSize    int
	ChunkOverlap int
	MaxPreview   int
}

// ChunkPreview reports the total number of chunks the splitter produced
// along with the leading chunks, capped at MaxPreview.
type ChunkPreview struct {
	TotalChunks int      `json:"total_chunks"`
	Chunks      []string `json:"chunks"`
}

// PreviewChunks splits text with the recursive character splitter and
// returns a bounded preview. Invalid options yield a validation error,
// never a panic.
func PreviewChunks(text string, opts ChunkOptions) (*ChunkPreview, error) {
	if opts.Strategy != StrategyRecursive {
		return nil, utils.NewValidationError(
			fmt.Sprintf("Unknown chunking strategy: '%s'. Supported strategies: %s", opts.Strategy, StrategyRecursive), nil)
	}
	if opts.ChunkSize <= 0 {
		return nil, utils.NewValidationError(
			fmt.Sprintf("Chunk size must be positive, got %d", opts.ChunkSize), nil)
	}
	if opts.ChunkOverlap < 0 {
		return nil, utils.NewValidationError(
			fmt.Sprintf("Chunk overlap must not be negative, got %d", opts.ChunkOverlap), nil)
	}
	if opts.ChunkOverlap >= opts.ChunkSize {
		return nil, utils.NewValidationError(
			fmt.Sprintf("Chunk overlap (%d) must be smaller than chunk size (%d)", opts.ChunkOverlap, opts.ChunkSize), nil)
	}

	maxPreview := opts.MaxPreview
	if maxPreview <= 0 {
		maxPreview = constants.DefaultMaxPreviewChunks
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(opts.ChunkSize),
		textsplitter.WithChunkOverlap(opts.ChunkOverlap),
	)
	chunks, err := splitter.SplitText(text)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeSystem, "failed to split text into chunks")
	}

	preview := &ChunkPreview{TotalChunks: len(chunks), Chunks: chunks}
	if len(preview.Chunks) > maxPreview {
		preview.Chunks = preview.Chunks[:maxPreview]
	}
	return preview, nil
}
