package utils

import (
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/pdfbench/pdfbench/pkg/logger"
)

func quietLogger() *logger.Logger {
	log := logger.NewLogger("error", false)
	log.SetOutput(io.Discard)
	return log
}

func TestTempDir_lifecycle(t *testing.T) {
	tmp, err := NewTempDir("pdfbench_test_", quietLogger())
	if err != nil {
		t.Fatalf("NewTempDir: %v", err)
	}
	if !strings.Contains(tmp.Path(), "pdfbench_test_") {
		t.Errorf("Path = %q, want prefix in name", tmp.Path())
	}
	if _, err := os.Stat(tmp.Path()); err != nil {
		t.Fatalf("directory not created: %v", err)
	}

	tmp.Cleanup()
	if _, err := os.Stat(tmp.Path()); !os.IsNotExist(err) {
		t.Error("directory still exists after Cleanup")
	}
	// Second call must be a no-op.
	tmp.Cleanup()
}

func TestTempDir_join(t *testing.T) {
	tmp, err := NewTempDir("pdfbench_test_", quietLogger())
	if err != nil {
		t.Fatalf("NewTempDir: %v", err)
	}
	defer tmp.Cleanup()

	joined := tmp.Join("sub", "file.png")
	if !strings.HasPrefix(joined, tmp.Path()) {
		t.Errorf("Join = %q, want it inside %q", joined, tmp.Path())
	}
}

func TestTempDir_withCleanup(t *testing.T) {
	tmp, err := NewTempDir("pdfbench_test_", quietLogger())
	if err != nil {
		t.Fatalf("NewTempDir: %v", err)
	}

	wantErr := errors.New("work failed")
	if got := tmp.WithCleanup(func() error { return wantErr }); got != wantErr {
		t.Errorf("WithCleanup returned %v, want original error", got)
	}
	if _, err := os.Stat(tmp.Path()); !os.IsNotExist(err) {
		t.Error("directory still exists after WithCleanup")
	}
}
