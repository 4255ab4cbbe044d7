package core

import (
	"context"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/pdfbench/pdfbench/pkg/backends"
	"github.com/pdfbench/pdfbench/pkg/interfaces"
	"github.com/pdfbench/pdfbench/pkg/logger"
	"github.com/pdfbench/pdfbench/pkg/types"
	"github.com/pdfbench/pdfbench/pkg/utils"
)

func testLogger() *logger.Logger {
	log := logger.NewLogger("error", false)
	log.SetOutput(io.Discard)
	return log
}

// stubBackend is a scriptable backend for orchestration tests.
type stubBackend struct {
	id     types.BackendID
	result *types.Result
	panics bool
	calls  int
	inputs []types.ExtractionInput
}

func (s *stubBackend) Extract(ctx context.Context, input types.ExtractionInput) *types.Result {
	s.calls++
	s.inputs = append(s.inputs, input)
	if s.panics {
		panic("stub exploded")
	}
	return s.result
}

func (s *stubBackend) ID() types.BackendID { return s.id }
func (s *stubBackend) Available() bool     { return true }

func newTestRegistry(stubs ...*stubBackend) *DefaultRegistry {
	r := NewRegistry(testLogger())
	for _, s := range stubs {
		r.Register(s)
	}
	return r
}

func request(ids ...types.BackendID) types.ExtractionRequest {
	return types.ExtractionRequest{DocumentPath: "/tmp/doc.pdf", Backends: ids}
}

func TestOrchestrator_failureDoesNotAbortSiblings(t *testing.T) {
	failing := &stubBackend{id: types.BackendPlainText, result: &types.Result{Error: "boom"}}
	healthy := &stubBackend{id: types.BackendLayout, result: &types.Result{Text: "ok"}}
	o := NewOrchestrator(newTestRegistry(failing, healthy), nil, testLogger())

	results, err := o.Run(context.Background(), request(types.BackendPlainText, types.BackendLayout))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !results.Get(types.BackendPlainText).Failed() {
		t.Error("first backend must record its failure")
	}
	if got := results.Get(types.BackendLayout); got.Failed() || got.Text != "ok" {
		t.Errorf("second backend result = %+v, want success", got)
	}
	if healthy.calls != 1 {
		t.Errorf("healthy backend ran %d times, want 1", healthy.calls)
	}
}

func TestOrchestrator_backendCountValidated(t *testing.T) {
	stub := &stubBackend{id: types.BackendPlainText, result: &types.Result{Text: "ok"}}
	o := NewOrchestrator(newTestRegistry(stub), nil, testLogger())

	if _, err := o.Run(context.Background(), request()); err == nil {
		t.Error("expected error for zero backends")
	}
	threeIDs := request(types.BackendPlainText, types.BackendPlainText, types.BackendPlainText)
	if _, err := o.Run(context.Background(), threeIDs); err == nil {
		t.Error("expected error for three backends")
	}
	if _, err := o.Run(context.Background(), request(types.BackendOCR)); err == nil {
		t.Error("expected error for unregistered backend")
	}
	if stub.calls != 0 {
		t.Errorf("backend ran %d times during invalid requests, want 0", stub.calls)
	}
}

func TestOrchestrator_emptyDocumentPath(t *testing.T) {
	stub := &stubBackend{id: types.BackendPlainText, result: &types.Result{Text: "ok"}}
	o := NewOrchestrator(newTestRegistry(stub), nil, testLogger())

	req := types.ExtractionRequest{Backends: []types.BackendID{types.BackendPlainText}}
	_, err := o.Run(context.Background(), req)
	if err == nil {
		t.Fatal("expected error for empty document path")
	}
	if utils.GetErrorType(err) != utils.ErrorTypeValidation {
		t.Errorf("error type = %s, want validation", utils.GetErrorType(err))
	}
}

func TestOrchestrator_panicDowngradedToResult(t *testing.T) {
	exploding := &stubBackend{id: types.BackendPlainText, panics: true}
	healthy := &stubBackend{id: types.BackendLayout, result: &types.Result{Text: "ok"}}
	o := NewOrchestrator(newTestRegistry(exploding, healthy), nil, testLogger())

	results, err := o.Run(context.Background(), request(types.BackendPlainText, types.BackendLayout))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := results.Get(types.BackendPlainText)
	if !got.Failed() {
		t.Fatal("panicking backend must record an error")
	}
	if !strings.Contains(got.Error, "Failed to execute backend 'plaintext'") {
		t.Errorf("Error = %q", got.Error)
	}
	if results.Get(types.BackendLayout).Failed() {
		t.Error("panic must not abort the sibling backend")
	}
}

func TestOrchestrator_ocrFallbackOnMarkupFailure(t *testing.T) {
	markup := &stubBackend{id: types.BackendMarkup, result: &types.Result{Error: "nougat died"}}
	ocr := &stubBackend{id: types.BackendOCR, result: &types.Result{Text: "rescued"}}
	o := NewOrchestrator(newTestRegistry(markup, ocr), nil, testLogger())

	req := request(types.BackendMarkup)
	req.PageRange = &types.PageRange{Start: 2, End: 5}
	results, err := o.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []types.BackendID{types.BackendMarkup, types.FallbackKey}
	if got := results.Keys(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	fallback := results.Get(types.FallbackKey)
	if fallback.Failed() || fallback.Text != "rescued" {
		t.Errorf("fallback result = %+v", fallback)
	}
	if ocr.calls != 1 {
		t.Errorf("OCR ran %d times, want exactly 1", ocr.calls)
	}
	if got := ocr.inputs[0].PageRange; got == nil || got.Start != 2 || got.End != 5 {
		t.Errorf("fallback page range = %v, want original 2-5", got)
	}
}

func TestOrchestrator_noFallbackWithoutOCR(t *testing.T) {
	markup := &stubBackend{id: types.BackendMarkup, result: &types.Result{Error: "nougat died"}}
	o := NewOrchestrator(newTestRegistry(markup), nil, testLogger())

	results, err := o.Run(context.Background(), request(types.BackendMarkup))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results.Len() != 1 {
		t.Errorf("Len() = %d, want only the markup failure", results.Len())
	}
}

func TestOrchestrator_noFallbackOnMarkupSuccess(t *testing.T) {
	markup := &stubBackend{id: types.BackendMarkup, result: &types.Result{Markdown: "# ok"}}
	ocr := &stubBackend{id: types.BackendOCR, result: &types.Result{Text: "unused"}}
	o := NewOrchestrator(newTestRegistry(markup, ocr), nil, testLogger())

	results, err := o.Run(context.Background(), request(types.BackendMarkup))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if results.Len() != 1 || ocr.calls != 0 {
		t.Errorf("Len() = %d, ocr.calls = %d, want 1 and 0", results.Len(), ocr.calls)
	}
}

func TestOrchestrator_failedFallbackDoesNotCascade(t *testing.T) {
	markup := &stubBackend{id: types.BackendMarkup, result: &types.Result{Error: "nougat died"}}
	ocr := &stubBackend{id: types.BackendOCR, result: &types.Result{Error: "tesseract died too"}}
	o := NewOrchestrator(newTestRegistry(markup, ocr), nil, testLogger())

	results, err := o.Run(context.Background(), request(types.BackendMarkup))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !results.Get(types.FallbackKey).Failed() {
		t.Error("fallback failure must be recorded")
	}
	if ocr.calls != 1 {
		t.Errorf("OCR ran %d times, fallback must be one-shot", ocr.calls)
	}
}

func TestOrchestrator_structurePageRangeDropped(t *testing.T) {
	structure := &stubBackend{id: types.BackendStructure, result: &types.Result{StructuredText: "<TEI/>"}}
	plain := &stubBackend{id: types.BackendPlainText, result: &types.Result{Text: "ok"}}
	o := NewOrchestrator(newTestRegistry(structure, plain), nil, testLogger())

	req := request(types.BackendStructure, types.BackendPlainText)
	req.PageRange = &types.PageRange{Start: 2, End: 5}
	if _, err := o.Run(context.Background(), req); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := structure.inputs[0].PageRange; got != nil {
		t.Errorf("structure page range = %v, want nil", got)
	}
	if got := plain.inputs[0].PageRange; got == nil || got.Start != 2 {
		t.Errorf("plaintext page range = %v, want 2-5 preserved", got)
	}
}

func TestOrchestrator_cacheHitSkipsBackend(t *testing.T) {
	stub := &stubBackend{id: types.BackendPlainText, result: &types.Result{Text: "ok"}}
	o := NewOrchestrator(newTestRegistry(stub), backends.NewResultCache(nil), testLogger())

	req := request(types.BackendPlainText)
	if _, err := o.Run(context.Background(), req); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	results, err := o.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if stub.calls != 1 {
		t.Errorf("backend ran %d times, want 1 (second run cached)", stub.calls)
	}
	if got := results.Get(types.BackendPlainText).Text; got != "ok" {
		t.Errorf("cached Text = %q", got)
	}
}

func TestOrchestrator_cachesFailures(t *testing.T) {
	stub := &stubBackend{id: types.BackendPlainText, result: &types.Result{Error: "boom"}}
	o := NewOrchestrator(newTestRegistry(stub), backends.NewResultCache(nil), testLogger())

	req := request(types.BackendPlainText)
	o.Run(context.Background(), req)
	o.Run(context.Background(), req)
	if stub.calls != 1 {
		t.Errorf("failing backend ran %d times, want 1 (errors are cached)", stub.calls)
	}
}

func TestOrchestrator_cancelledContext(t *testing.T) {
	stub := &stubBackend{id: types.BackendPlainText, result: &types.Result{Text: "ok"}}
	o := NewOrchestrator(newTestRegistry(stub), nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := o.Run(ctx, request(types.BackendPlainText)); err == nil {
		t.Error("expected error for cancelled context")
	}
	if stub.calls != 0 {
		t.Errorf("backend ran %d times after cancellation, want 0", stub.calls)
	}
}

func TestOrchestrator_progressListeners(t *testing.T) {
	markup := &stubBackend{id: types.BackendMarkup, result: &types.Result{Error: "nougat died"}}
	ocr := &stubBackend{id: types.BackendOCR, result: &types.Result{Text: "ok"}}
	o := NewOrchestrator(newTestRegistry(markup, ocr), nil, testLogger())

	var events []types.BackendID
	o.AddListener(interfaces.ProgressFunc(func(backend types.BackendID, fraction float64, message string) {
		events = append(events, backend)
	}))

	if _, err := o.Run(context.Background(), request(types.BackendMarkup)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	found := false
	for _, id := range events {
		if id == types.FallbackKey {
			found = true
		}
	}
	if !found {
		t.Errorf("events = %v, want fallback notification", events)
	}
}
