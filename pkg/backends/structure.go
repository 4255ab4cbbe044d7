package backends

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdfbench/pdfbench/pkg/constants"
	"github.com/pdfbench/pdfbench/pkg/logger"
	"github.com/pdfbench/pdfbench/pkg/types"
	"github.com/pdfbench/pdfbench/pkg/utils"
)

// StructureBackend uploads the document to an external structure-extraction
// service (GROBID) and returns the service's native TEI XML payload. It
// always processes the full document; callers drop the page range before
// invoking it.
type StructureBackend struct {
	defaultURL string
	client     *http.Client
	logger     *logger.Logger
}

// NewStructureBackend creates a structure extraction backend pointed at the
// given service base URL.
func NewStructureBackend(serviceURL string, log *logger.Logger) *StructureBackend {
	return &StructureBackend{
		defaultURL: serviceURL,
		client:     &http.Client{Timeout: constants.DefaultStructureTimeout},
		logger:     log,
	}
}

// ID returns the backend identifier
func (b *StructureBackend) ID() types.BackendID {
	return types.BackendStructure
}

// Available reports whether a service URL is configured. Reachability is
// only known at call time.
func (b *StructureBackend) Available() bool {
	return b.serviceURL(types.Options{}) != ""
}

// Extract uploads the document to the service's full-text processing
// endpoint. Connection failure and timeout produce distinct messages so
// "service unreachable" can be told apart from "service returned failure".
func (b *StructureBackend) Extract(ctx context.Context, input types.ExtractionInput) *types.Result {
	endpoint := strings.TrimRight(b.serviceURL(input.Options), "/") + constants.StructureFulltextPath

	body, contentType, err := multipartFileBody(constants.StructureFileField, input.DocumentPath)
	if err != nil {
		return &types.Result{Error: fmt.Sprintf("Structure Error: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return &types.Result{Error: fmt.Sprintf("Structure Error: cannot build request: %v", err)}
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := b.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return &types.Result{Error: fmt.Sprintf(
				"Structure Error: request timed out after %s.", constants.DefaultStructureTimeout)}
		}
		return &types.Result{Error: fmt.Sprintf(
			"Structure Error: could not connect to service at %s. Is it running?", endpoint)}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &types.Result{Error: fmt.Sprintf("Structure Error: cannot read response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return &types.Result{Error: fmt.Sprintf(
			"Structure Error: request failed with status %d. Response: %s",
			resp.StatusCode, utils.TruncateString(string(payload), constants.ResponseTruncateLimit))}
	}

	result := &types.Result{StructuredText: string(payload)}
	if title := teiTitle(payload); title != "" {
		result.Metadata = map[string]string{"title": title}
	}
	b.logger.Debug("Structure extraction: %d bytes of structured markup", len(payload))
	return result
}

func (b *StructureBackend) serviceURL(opts types.Options) string {
	if opts.StructureURL != "" {
		return opts.StructureURL
	}
	return b.defaultURL
}

// multipartFileBody builds a multipart form with the document under the
// given field name, returning the body and its content type.
func multipartFileBody(field, path string) (io.Reader, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("cannot open document: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filepath.Base(path))
	if err != nil {
		return nil, "", fmt.Errorf("cannot build upload form: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", fmt.Errorf("cannot read document: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("cannot finalize upload form: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

// isTimeout distinguishes a timed-out request from a connection failure.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Timeout()
	}
	return false
}

// teiTitle pulls the first <title> text out of the TEI header. The service
// output is XML, but the tolerant HTML tokenizer is enough for a single
// metadata field.
func teiTitle(payload []byte) string {
	tokenizer := html.NewTokenizer(bytes.NewReader(payload))
	inTitle := false
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			inTitle = string(name) == "title"
		case html.TextToken:
			if inTitle {
				if title := strings.TrimSpace(string(tokenizer.Text())); title != "" {
					return title
				}
			}
		case html.EndTagToken:
			inTitle = false
		}
	}
}
