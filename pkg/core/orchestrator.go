package core

import (
	"context"
	"fmt"

	"github.com/pdfbench/pdfbench/pkg/backends"
	"github.com/pdfbench/pdfbench/pkg/interfaces"
	"github.com/pdfbench/pdfbench/pkg/logger"
	"github.com/pdfbench/pdfbench/pkg/types"
	"github.com/pdfbench/pdfbench/pkg/utils"
)

// progressReporter is implemented by backends that can report progress
// while running (currently only the markup backend).
type progressReporter interface {
	SetProgressFunc(fn func(fraction float64, message string))
}

// Orchestrator dispatches an extraction request to each selected backend
// in order, applies the fallback policy, and collects results into a
// ResultSet. Backends run strictly sequentially; a backend failure never
// aborts its siblings.
type Orchestrator struct {
	registry  interfaces.Registry
	cache     interfaces.ResultCache
	logger    *logger.Logger
	listeners []interfaces.ProgressListener
}

// NewOrchestrator creates an orchestrator. A nil cache disables result
// caching.
func NewOrchestrator(registry interfaces.Registry, cache interfaces.ResultCache, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		cache:    cache,
		logger:   log,
	}
}

// AddListener registers a progress listener; all listeners are notified
// synchronously.
func (o *Orchestrator) AddListener(l interfaces.ProgressListener) {
	o.listeners = append(o.listeners, l)
}

// Run executes the request and returns a fresh ResultSet. The returned
// error covers request validation and interruption only; per-backend
// failures are recorded in the individual results.
func (o *Orchestrator) Run(ctx context.Context, req types.ExtractionRequest) (*types.ResultSet, error) {
	if err := o.validate(req); err != nil {
		return nil, err
	}

	results := types.NewResultSet()

	for _, id := range req.Backends {
		// An interrupted run discards already-completed results; callers
		// re-run the full request.
		if ctx.Err() != nil {
			return nil, utils.WrapError(ctx.Err(), utils.ErrorTypeTimeout, "orchestration interrupted")
		}

		backend := o.registry.Lookup(id)
		input := o.buildInput(id, req)

		o.logger.Progress("🔍", "Running backend %s on %s (pages %s)", id, req.DocumentPath, input.PageRange)
		result := o.invoke(ctx, id, backend, input)
		results.Put(id, result)

		if result.Failed() {
			o.logger.Warn("Backend %s failed: %s", id, result.Error)
		}

		o.applyFallback(ctx, id, result, req, results)
	}

	o.logger.Info("Orchestration complete: %s", results)
	return results, nil
}

// validate checks the request shape: 1–2 selected backends, all registered.
func (o *Orchestrator) validate(req types.ExtractionRequest) error {
	if req.DocumentPath == "" {
		return utils.NewValidationError("document path cannot be empty", nil)
	}
	if len(req.Backends) < 1 || len(req.Backends) > 2 {
		return utils.NewValidationError(
			fmt.Sprintf("select 1 or 2 backends, got %d", len(req.Backends)), nil)
	}
	for _, id := range req.Backends {
		if o.registry.Lookup(id) == nil {
			return utils.NewValidationError(fmt.Sprintf("unknown backend: %s", id), nil)
		}
	}
	return nil
}

// buildInput assembles the per-backend input bag. The structure backend
// always processes the full document, so its page range is dropped here —
// a deliberate backend-specific override.
func (o *Orchestrator) buildInput(id types.BackendID, req types.ExtractionRequest) types.ExtractionInput {
	input := types.ExtractionInput{
		DocumentPath: req.DocumentPath,
		PageRange:    req.PageRange,
		Options:      req.Options,
	}
	if id == types.BackendStructure {
		input.PageRange = nil
	}
	return input
}

// invoke runs one backend with cache lookup and panic recovery. Anything
// escaping the backend call is downgraded to a per-backend error.
func (o *Orchestrator) invoke(ctx context.Context, id types.BackendID, backend interfaces.Backend, input types.ExtractionInput) (result *types.Result) {
	key := backends.CacheKey(id, input)
	if o.cache != nil {
		if cached, ok := o.cache.Get(key); ok {
			o.logger.Progress("⏭️", "Using cached result for %s", id)
			return cached
		}
	}

	defer func() {
		if r := recover(); r != nil {
			result = &types.Result{Error: fmt.Sprintf("Failed to execute backend '%s': %v", id, r)}
		}
		if o.cache != nil {
			o.cache.Put(key, result)
		}
	}()

	if pr, ok := backend.(progressReporter); ok {
		pr.SetProgressFunc(func(fraction float64, message string) {
			o.notifyProgress(id, fraction, message)
		})
	}

	return backend.Extract(ctx, input)
}

// applyFallback implements the one-shot fallback policy: when the markup
// backend fails and the OCR backend is registered, OCR is invoked with the
// same document and page range and stored under the synthetic fallback key.
// The fallback itself is never retried and never cascades.
func (o *Orchestrator) applyFallback(ctx context.Context, id types.BackendID, result *types.Result, req types.ExtractionRequest, results *types.ResultSet) {
	if id != types.BackendMarkup || !result.Failed() {
		return
	}
	ocrBackend := o.registry.Lookup(types.BackendOCR)
	if ocrBackend == nil {
		return
	}

	o.logger.Progress("🔄", "Markup backend failed, attempting OCR fallback...")
	o.notifyProgress(types.FallbackKey, 0, "Markup failed, attempting OCR fallback")

	input := types.ExtractionInput{
		DocumentPath: req.DocumentPath,
		PageRange:    req.PageRange,
		Options:      req.Options,
	}
	results.Put(types.FallbackKey, o.invoke(ctx, types.FallbackKey, ocrBackend, input))
}

// notifyProgress fans one progress event out to all listeners.
func (o *Orchestrator) notifyProgress(id types.BackendID, fraction float64, message string) {
	for _, l := range o.listeners {
		l.OnProgress(id, fraction, message)
	}
}
