package backends

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/gen2brain/go-fitz"

	"github.com/pdfbench/pdfbench/pkg/constants"
	"github.com/pdfbench/pdfbench/pkg/logger"
	"github.com/pdfbench/pdfbench/pkg/types"
	"github.com/pdfbench/pdfbench/pkg/utils"
)

// MarkupBackend drives an external document-to-markup tool (nougat) as a
// subprocess: it polls the process on a fixed interval, reports a monotonic
// progress estimate capped below completion, kills the process on timeout,
// and reads the generated markup file on success. Its temporary output
// directory is removed on every exit path.
type MarkupBackend struct {
	nougatPath string
	logger     *logger.Logger
	notify     func(fraction float64, message string)
}

// NewMarkupBackend creates a document-to-markup extraction backend using
// the nougat executable at the given path.
func NewMarkupBackend(nougatPath string, log *logger.Logger) *MarkupBackend {
	return &MarkupBackend{nougatPath: nougatPath, logger: log}
}

// ID returns the backend identifier
func (b *MarkupBackend) ID() types.BackendID {
	return types.BackendMarkup
}

// Available reports whether the nougat executable can be resolved.
func (b *MarkupBackend) Available() bool {
	_, err := exec.LookPath(b.nougatPath)
	return err == nil
}

// SetProgressFunc installs the progress sink the orchestrator fans out to
// its listeners. May be nil.
func (b *MarkupBackend) SetProgressFunc(fn func(fraction float64, message string)) {
	b.notify = fn
}

// Extract runs the markup tool over the document.
func (b *MarkupBackend) Extract(ctx context.Context, input types.ExtractionInput) *types.Result {
	if _, err := exec.LookPath(b.nougatPath); err != nil {
		return &types.Result{Error: fmt.Sprintf(
			"Markup Error: '%s' command not found. Is nougat installed and in your PATH?", b.nougatPath)}
	}

	timeout := time.Duration(input.Options.MarkupTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = constants.DefaultMarkupTimeout
	}

	totalPages := b.countPages(input)

	outDir, err := utils.NewTempDir(constants.MarkupTempDirPrefix, b.logger)
	if err != nil {
		return &types.Result{Error: fmt.Sprintf("Markup Error: %v", err)}
	}
	defer outDir.Cleanup()

	b.progress(0, "Starting markup conversion")

	var stderr bytes.Buffer
	cmd := exec.Command(b.nougatPath, input.DocumentPath, "-o", outDir.Path(), constants.MarkupNoSkippingFlag)
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return &types.Result{Error: fmt.Sprintf("Markup Error: cannot start process: %v", err)}
	}

	if err := b.waitWithProgress(ctx, cmd, timeout, totalPages); err != nil {
		return &types.Result{Error: err.Error()}
	}

	if code := cmd.ProcessState.ExitCode(); code != 0 {
		return &types.Result{Error: fmt.Sprintf("Markup Error: process failed with exit code %d.\nStderr: %s",
			code, utils.TruncateString(stderr.String(), constants.StderrTruncateLimit))}
	}

	mmdPath := outDir.Join(utils.FileStem(input.DocumentPath) + constants.MarkupOutputExtension)
	content, err := os.ReadFile(mmdPath)
	if err != nil {
		return &types.Result{Error: fmt.Sprintf("Markup Error: output file '%s' not found.\n%s",
			mmdPath, utils.TruncateString(stderr.String(), constants.StderrTruncateLimit))}
	}

	b.progress(1, "Markup conversion complete")

	markdown := string(content)
	blocks := ScanMathBlocks(markdown)
	b.logger.Debug("Markup extraction: %d characters, %d math blocks", len(markdown), len(blocks))
	return &types.Result{Markdown: markdown, MathBlocks: blocks}
}

// waitWithProgress polls the running process on a fixed interval, emitting
// a progress estimate capped below completion, and kills it when the
// timeout elapses.
func (b *MarkupBackend) waitWithProgress(ctx context.Context, cmd *exec.Cmd, timeout time.Duration, totalPages int) error {
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	start := time.Now()
	ticker := time.NewTicker(constants.MarkupPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			// Exit status is inspected by the caller.
			return nil
		case <-ctx.Done():
			_ = cmd.Process.Kill()
			<-done
			return utils.NewTimeoutError(fmt.Sprintf("Markup Error: %v", ctx.Err()), ctx.Err())
		case <-ticker.C:
			elapsed := time.Since(start)
			if elapsed > timeout {
				_ = cmd.Process.Kill()
				<-done
				return utils.NewTimeoutError(fmt.Sprintf(
					"Markup Error: processing timed out after %s", timeout), nil)
			}
			fraction := elapsed.Seconds() / timeout.Seconds()
			if fraction > constants.MarkupProgressCeiling {
				fraction = constants.MarkupProgressCeiling
			}
			b.progress(fraction, fmt.Sprintf("Processing page %d/%d", int(fraction*float64(totalPages)), totalPages))
		}
	}
}

// countPages returns the page count the progress estimate is based on,
// adjusted for the requested range. Failure to open the document is not
// fatal here; the subprocess reports its own errors.
func (b *MarkupBackend) countPages(input types.ExtractionInput) int {
	doc, err := fitz.New(input.DocumentPath)
	if err != nil {
		return 1
	}
	defer doc.Close()

	total := doc.NumPage()
	if pr := input.PageRange; pr != nil {
		if start, end, err := normalizeRange(pr, total); err == nil {
			total = end - start
		}
	}
	if total < 1 {
		total = 1
	}
	return total
}

func (b *MarkupBackend) progress(fraction float64, message string) {
	if b.notify != nil {
		b.notify(fraction, message)
	}
}

// ScanMathBlocks collects the contents of fenced display-math blocks: a
// line whose trimmed form starts with "$$" toggles math mode, and lines in
// between form one block.
func ScanMathBlocks(markdown string) []string {
	var blocks []string
	var current []string
	inMath := false

	for _, line := range strings.Split(markdown, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "$$") {
			if inMath {
				blocks = append(blocks, strings.Join(current, "\n"))
				current = nil
			}
			inMath = !inMath
			continue
		}
		if inMath {
			current = append(current, line)
		}
	}
	return blocks
}
