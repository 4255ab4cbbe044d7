package compare

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Stats summarizes a line diff between two extraction outputs.
type Stats struct {
	InsertedLines int `json:"inserted_lines"`
	DeletedLines  int `json:"deleted_lines"`
	EqualLines    int `json:"equal_lines"`
}

// LineDiff is a rendered line-level comparison of two texts.
type LineDiff struct {
	LabelA string `json:"label_a"`
	LabelB string `json:"label_b"`
	Stats  Stats  `json:"stats"`
	Text   string `json:"text"`
}

// DiffLines computes a line-level diff from textA to textB. Lines present
// only in A are prefixed with "-", lines only in B with "+", shared lines
// with two spaces.
func DiffLines(labelA, textA, labelB, textB string) *LineDiff {
	dmp := diffmatchpatch.New()
	charsA, charsB, lineArray := dmp.DiffLinesToChars(textA, textB)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(charsA, charsB, false), lineArray)

	var sb strings.Builder
	var stats Stats
	fmt.Fprintf(&sb, "--- %s\n+++ %s\n", labelA, labelB)
	for _, d := range diffs {
		prefix := "  "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		}
		lines := splitDiffLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			stats.InsertedLines += len(lines)
		case diffmatchpatch.DiffDelete:
			stats.DeletedLines += len(lines)
		default:
			stats.EqualLines += len(lines)
		}
		for _, line := range lines {
			sb.WriteString(prefix)
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}

	return &LineDiff{LabelA: labelA, LabelB: labelB, Stats: stats, Text: sb.String()}
}

// splitDiffLines breaks a diff segment into its component lines, ignoring
// the trailing empty element a final newline would produce.
func splitDiffLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
