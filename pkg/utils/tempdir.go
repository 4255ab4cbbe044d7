package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/pdfbench/pdfbench/pkg/logger"
)

// TempDir is an owned temporary working directory. It guarantees removal
// on every exit path: callers either defer Cleanup or use WithCleanup.
type TempDir struct {
	path    string
	logger  *logger.Logger
	removed bool
}

// NewTempDir creates a uniquely named directory under the system temp dir.
func NewTempDir(prefix string, log *logger.Logger) (*TempDir, error) {
	name := fmt.Sprintf("%s%s", prefix, uuid.New().String()[:8])
	path := filepath.Join(os.TempDir(), name)
	if err := EnsureDir(path); err != nil {
		return nil, NewIOError(fmt.Sprintf("failed to create temp directory %s", path), err)
	}
	log.Debug("Created temp directory: %s", path)
	return &TempDir{path: path, logger: log}, nil
}

// Path returns the directory path.
func (t *TempDir) Path() string {
	return t.path
}

// Join returns a path inside the directory.
func (t *TempDir) Join(elem ...string) string {
	return filepath.Join(append([]string{t.path}, elem...)...)
}

// Cleanup removes the directory and everything in it. Safe to call more
// than once.
func (t *TempDir) Cleanup() {
	if t.removed {
		return
	}
	if err := os.RemoveAll(t.path); err != nil {
		t.logger.Warn("Could not clean up temp directory %s: %v", t.path, err)
		return
	}
	t.removed = true
	t.logger.Debug("Removed temp directory: %s", t.path)
}

// WithCleanup runs fn and removes the directory afterwards regardless of
// the outcome.
func (t *TempDir) WithCleanup(fn func() error) error {
	defer t.Cleanup()
	return fn()
}
