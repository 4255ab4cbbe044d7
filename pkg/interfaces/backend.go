package interfaces

import (
	"context"

	"github.com/pdfbench/pdfbench/pkg/types"
)

// Backend is the single seam the orchestrator depends on: one extraction
// method that produces structured content from a document path.
type Backend interface {
	// Extract runs the backend over the given input. It never returns a Go
	// error: all failures are captured in the Result's Error field.
	Extract(ctx context.Context, input types.ExtractionInput) *types.Result

	// ID returns the backend identifier.
	ID() types.BackendID

	// Available reports whether the backend's external requirements
	// (executables, services) appear usable. A false value is advisory;
	// Extract still reports the authoritative error.
	Available() bool
}

// Registry maps backend identifiers to implementations. Adding or removing
// backends must not require touching orchestration logic.
type Registry interface {
	// Register adds a backend under its own ID, replacing any previous one.
	Register(backend Backend)

	// Lookup returns the backend for id, or nil if not registered.
	Lookup(id types.BackendID) Backend

	// IDs returns all registered backend identifiers in registration order.
	IDs() []types.BackendID
}

// ProgressListener receives progress notifications from long-running
// backends. Fraction is in [0,1] and is capped below 1.0 until actual
// completion; listeners must tolerate irregular call frequency.
type ProgressListener interface {
	OnProgress(backend types.BackendID, fraction float64, message string)
}

// ProgressFunc adapts a plain function to a ProgressListener.
type ProgressFunc func(backend types.BackendID, fraction float64, message string)

// OnProgress implements ProgressListener.
func (f ProgressFunc) OnProgress(backend types.BackendID, fraction float64, message string) {
	f(backend, fraction, message)
}

// ResultCache stores backend results keyed by the canonical parameter
// tuple so repeated identical requests do not re-run expensive work.
type ResultCache interface {
	// Get returns the cached result for key, if any.
	Get(key string) (*types.Result, bool)

	// Put stores a result under key.
	Put(key string, result *types.Result)

	// Len returns the number of cached entries.
	Len() int
}

// EvictionPolicy decides whether a cache may admit another entry. The
// process-lifetime default never evicts, but the seam leaves room for
// bounding memory under long-running use.
type EvictionPolicy interface {
	// Admit is called before inserting a new entry; it returns the keys
	// that should be dropped to make room (possibly none).
	Admit(currentLen int, key string) []string
}
