package backends

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdfbench/pdfbench/pkg/logger"
	"github.com/pdfbench/pdfbench/pkg/types"
)

func testLogger() *logger.Logger {
	log := logger.NewLogger("error", false)
	log.SetOutput(io.Discard)
	return log
}

func writeTestDoc(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4 fake"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const teiSample = `<?xml version="1.0"?>
<TEI xmlns="http://www.tei-c.org/ns/1.0">
  <teiHeader>
    <fileDesc>
      <titleStmt>
        <title level="a" type="main">Attention Is All You Need</title>
      </titleStmt>
    </fileDesc>
  </teiHeader>
</TEI>`

func TestStructureBackend_success(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		if _, _, err := r.FormFile("input"); err != nil {
			t.Errorf("missing 'input' form file: %v", err)
		}
		w.Write([]byte(teiSample))
	}))
	defer server.Close()

	b := NewStructureBackend(server.URL, testLogger())
	result := b.Extract(context.Background(), types.ExtractionInput{DocumentPath: writeTestDoc(t)})

	if result.Failed() {
		t.Fatalf("Extract failed: %s", result.Error)
	}
	if gotPath != "/api/processFulltextDocument" {
		t.Errorf("request path = %q", gotPath)
	}
	if !strings.Contains(result.StructuredText, "teiHeader") {
		t.Errorf("StructuredText = %q, want TEI payload", result.StructuredText)
	}
	if result.Metadata["title"] != "Attention Is All You Need" {
		t.Errorf("title = %q", result.Metadata["title"])
	}
}

func TestStructureBackend_serviceFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "NO_BLOBS could not extract", http.StatusInternalServerError)
	}))
	defer server.Close()

	b := NewStructureBackend(server.URL, testLogger())
	result := b.Extract(context.Background(), types.ExtractionInput{DocumentPath: writeTestDoc(t)})

	if !result.Failed() {
		t.Fatal("expected failure for 500 response")
	}
	if !strings.Contains(result.Error, "status 500") {
		t.Errorf("Error = %q, want status in message", result.Error)
	}
	if !strings.Contains(result.Error, "NO_BLOBS") {
		t.Errorf("Error = %q, want response excerpt", result.Error)
	}
}

func TestStructureBackend_unreachableService(t *testing.T) {
	// Reserve a port, then close it so the connection is refused.
	listener := httptest.NewServer(http.NotFoundHandler())
	url := listener.URL
	listener.Close()

	b := NewStructureBackend(url, testLogger())
	result := b.Extract(context.Background(), types.ExtractionInput{DocumentPath: writeTestDoc(t)})

	if !result.Failed() {
		t.Fatal("expected failure for unreachable service")
	}
	if !strings.Contains(result.Error, "could not connect") {
		t.Errorf("Error = %q, want connection failure message", result.Error)
	}
}

func TestStructureBackend_missingDocument(t *testing.T) {
	b := NewStructureBackend("http://localhost:1", testLogger())
	result := b.Extract(context.Background(), types.ExtractionInput{DocumentPath: "/nonexistent/doc.pdf"})

	if !result.Failed() {
		t.Fatal("expected failure for missing document")
	}
	if !strings.HasPrefix(result.Error, "Structure Error:") {
		t.Errorf("Error = %q, want Structure Error prefix", result.Error)
	}
}

func TestStructureBackend_urlOverride(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<TEI></TEI>"))
	}))
	defer server.Close()

	b := NewStructureBackend("http://localhost:1", testLogger())
	result := b.Extract(context.Background(), types.ExtractionInput{
		DocumentPath: writeTestDoc(t),
		Options:      types.Options{StructureURL: server.URL},
	})

	if result.Failed() {
		t.Fatalf("Extract failed: %s", result.Error)
	}
}

func TestTeiTitle_missing(t *testing.T) {
	if got := teiTitle([]byte("<TEI><teiHeader></teiHeader></TEI>")); got != "" {
		t.Errorf("teiTitle = %q, want empty", got)
	}
}
