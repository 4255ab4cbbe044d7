package backends

import (
	"testing"

	"github.com/pdfbench/pdfbench/pkg/types"
	"github.com/pdfbench/pdfbench/pkg/utils"
)

func TestNormalizeRange_nilSelectsAll(t *testing.T) {
	start, end, err := normalizeRange(nil, 10)
	if err != nil {
		t.Fatalf("normalizeRange: %v", err)
	}
	if start != 0 || end != 10 {
		t.Errorf("got [%d,%d), want [0,10)", start, end)
	}
}

func TestNormalizeRange_converts(t *testing.T) {
	start, end, err := normalizeRange(&types.PageRange{Start: 2, End: 5}, 10)
	if err != nil {
		t.Fatalf("normalizeRange: %v", err)
	}
	if start != 1 || end != 5 {
		t.Errorf("got [%d,%d), want [1,5)", start, end)
	}
}

func TestNormalizeRange_clampsEnd(t *testing.T) {
	start, end, err := normalizeRange(&types.PageRange{Start: 8, End: 50}, 10)
	if err != nil {
		t.Fatalf("normalizeRange: %v", err)
	}
	if start != 7 || end != 10 {
		t.Errorf("got [%d,%d), want [7,10)", start, end)
	}
}

func TestNormalizeRange_singlePage(t *testing.T) {
	start, end, err := normalizeRange(&types.PageRange{Start: 3, End: 3}, 10)
	if err != nil {
		t.Fatalf("normalizeRange: %v", err)
	}
	if start != 2 || end != 3 {
		t.Errorf("got [%d,%d), want [2,3)", start, end)
	}
}

func TestNormalizeRange_rejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		pr   *types.PageRange
	}{
		{"zero start", &types.PageRange{Start: 0, End: 5}},
		{"negative start", &types.PageRange{Start: -1, End: 5}},
		{"end before start", &types.PageRange{Start: 5, End: 2}},
		{"start beyond document", &types.PageRange{Start: 11, End: 20}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := normalizeRange(tc.pr, 10)
			if err == nil {
				t.Fatalf("expected error for %s", tc.pr)
			}
			if utils.GetErrorType(err) != utils.ErrorTypeValidation {
				t.Errorf("error type = %s, want validation", utils.GetErrorType(err))
			}
		})
	}
}
