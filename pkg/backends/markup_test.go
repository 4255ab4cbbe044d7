package backends

import (
	"reflect"
	"testing"
)

func TestScanMathBlocks_none(t *testing.T) {
	if got := ScanMathBlocks("just text\nno math here\n"); len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}

func TestScanMathBlocks_single(t *testing.T) {
	markdown := "intro\n$$\nE = mc^2\n$$\noutro\n"
	want := []string{"E = mc^2"}
	if got := ScanMathBlocks(markdown); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScanMathBlocks_multiline(t *testing.T) {
	markdown := "$$\na + b\nc + d\n$$\n"
	want := []string{"a + b\nc + d"}
	if got := ScanMathBlocks(markdown); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScanMathBlocks_multipleBlocks(t *testing.T) {
	markdown := "$$\nfirst\n$$\ntext between\n  $$\nsecond\n$$\n"
	want := []string{"first", "second"}
	if got := ScanMathBlocks(markdown); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestScanMathBlocks_unterminated(t *testing.T) {
	if got := ScanMathBlocks("$$\ndangling content\n"); len(got) != 0 {
		t.Errorf("got %v, want none for unterminated block", got)
	}
}

func TestMarkupBackend_missingExecutable(t *testing.T) {
	b := NewMarkupBackend("definitely-not-a-real-tool-xyz", testLogger())
	if b.Available() {
		t.Error("Available() must be false for a missing executable")
	}
}
