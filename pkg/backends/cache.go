package backends

import (
	"fmt"
	"sync"

	"github.com/pdfbench/pdfbench/pkg/interfaces"
	"github.com/pdfbench/pdfbench/pkg/types"
)

// CacheKey canonicalizes the full parameter tuple of one backend call.
// Two calls with identical document path, page range, and backend-relevant
// options map to the same key.
func CacheKey(id types.BackendID, input types.ExtractionInput) string {
	o := input.Options
	switch id {
	case types.BackendOCR, types.FallbackKey:
		return fmt.Sprintf("%s|%s|%s|lang=%s|dpi=%d",
			id, input.DocumentPath, input.PageRange, o.OCRLanguages, o.OCRDPI)
	case types.BackendLayout:
		return fmt.Sprintf("%s|%s|%s|tol=%g",
			id, input.DocumentPath, input.PageRange, o.LayoutTolerance)
	case types.BackendMarkup:
		return fmt.Sprintf("%s|%s|%s", id, input.DocumentPath, input.PageRange)
	case types.BackendStructure:
		// The structure service always processes the full document.
		return fmt.Sprintf("%s|%s|url=%s", id, input.DocumentPath, o.StructureURL)
	default:
		return fmt.Sprintf("%s|%s|%s", id, input.DocumentPath, input.PageRange)
	}
}

// KeepAllPolicy is the process-lifetime default: entries are never evicted.
type KeepAllPolicy struct{}

// Admit implements interfaces.EvictionPolicy.
func (KeepAllPolicy) Admit(currentLen int, key string) []string {
	return nil
}

// ResultCache is an in-memory cache of backend results with a pluggable
// eviction policy.
type ResultCache struct {
	mu      sync.RWMutex
	entries map[string]*types.Result
	policy  interfaces.EvictionPolicy
}

// NewResultCache creates a cache with the given policy; nil means keep all.
func NewResultCache(policy interfaces.EvictionPolicy) *ResultCache {
	if policy == nil {
		policy = KeepAllPolicy{}
	}
	return &ResultCache{
		entries: make(map[string]*types.Result),
		policy:  policy,
	}
}

// Get returns the cached result for key, if any.
func (c *ResultCache) Get(key string) (*types.Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[key]
	return r, ok
}

// Put stores a result under key, applying the eviction policy first.
func (c *ResultCache) Put(key string, result *types.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, victim := range c.policy.Admit(len(c.entries), key) {
		delete(c.entries, victim)
	}
	c.entries[key] = result
}

// Len returns the number of cached entries.
func (c *ResultCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
