package core

import (
	"github.com/pdfbench/pdfbench/pkg/backends"
	"github.com/pdfbench/pdfbench/pkg/config"
	"github.com/pdfbench/pdfbench/pkg/interfaces"
	"github.com/pdfbench/pdfbench/pkg/logger"
	"github.com/pdfbench/pdfbench/pkg/types"
)

// DefaultRegistry implements interfaces.Registry with stable registration
// order.
type DefaultRegistry struct {
	order    []types.BackendID
	backends map[types.BackendID]interfaces.Backend
	logger   *logger.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log *logger.Logger) *DefaultRegistry {
	return &DefaultRegistry{
		backends: make(map[types.BackendID]interfaces.Backend),
		logger:   log,
	}
}

// NewDefaultRegistry creates a registry with the five standard extraction
// backends registered.
func NewDefaultRegistry(cfg *config.Config, log *logger.Logger) *DefaultRegistry {
	r := NewRegistry(log)
	r.Register(backends.NewPlainTextBackend(log))
	r.Register(backends.NewLayoutBackend(log))
	r.Register(backends.NewOCRBackend(cfg.TesseractPath, log))
	r.Register(backends.NewMarkupBackend(cfg.NougatPath, log))
	r.Register(backends.NewStructureBackend(cfg.GrobidURL, log))
	log.Info("Registered %d backends: %v", len(r.order), r.IDs())
	return r
}

// Register adds a backend under its own ID, replacing any previous one
// while keeping the original registration position.
func (r *DefaultRegistry) Register(backend interfaces.Backend) {
	id := backend.ID()
	if _, exists := r.backends[id]; !exists {
		r.order = append(r.order, id)
	}
	r.backends[id] = backend
	r.logger.Debug("Registered backend: %s", id)
}

// Lookup returns the backend for id, or nil if not registered.
func (r *DefaultRegistry) Lookup(id types.BackendID) interfaces.Backend {
	return r.backends[id]
}

// IDs returns all registered backend identifiers in registration order.
func (r *DefaultRegistry) IDs() []types.BackendID {
	ids := make([]types.BackendID, len(r.order))
	copy(ids, r.order)
	return ids
}
