package evaluate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Report holds derived text-quality statistics. It is recomputed on demand
// and never persisted.
type Report struct {
	CharCount              int `json:"char_count"`
	WordCount              int `json:"word_count"`
	EstimatedEquationCount int `json:"estimated_equation_count"`
	EstimatedSectionCount  int `json:"estimated_section_count"`
}

// Section heading heuristics: markdown headers and numbered items. Both
// may over- or under-count on ambiguous input; that is accepted
// approximation, not exactness.
var (
	markdownHeaderRe = regexp.MustCompile(`(?m)^\s*#{1,6}\s+.*`)
	numberedItemRe   = regexp.MustCompile(`(?m)^\s*\d+\.\s+.*`)
)

// ComputeMetrics calculates basic quality metrics for a text blob. It is a
// pure function: identical input yields identical output.
func ComputeMetrics(text string) Report {
	displayCount, masked := maskDisplayMath(text)

	return Report{
		CharCount:              utf8.RuneCountInString(text),
		WordCount:              len(strings.Fields(text)),
		EstimatedEquationCount: displayCount + countInlineMath(masked),
		EstimatedSectionCount: len(markdownHeaderRe.FindAllString(text, -1)) +
			len(numberedItemRe.FindAllString(text, -1)),
	}
}

// maskDisplayMath counts non-overlapping display math spans ($$...$$ with
// unescaped delimiters, matched across newlines) and blanks them out so
// the inline scan cannot double-count their delimiters.
func maskDisplayMath(s string) (int, string) {
	b := []byte(s)
	count := 0
	escaped := false
	openIdx := -1

	for i := 0; i < len(b); i++ {
		c := b[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == '$' && i+1 < len(b) && b[i+1] == '$' {
			if openIdx < 0 {
				openIdx = i
			} else {
				count++
				for j := openIdx; j <= i+1; j++ {
					if b[j] != '\n' {
						b[j] = ' '
					}
				}
				openIdx = -1
			}
			i++ // consume the second delimiter character
		}
	}
	return count, string(b)
}

// countInlineMath counts non-overlapping inline math spans ($...$ with
// unescaped delimiters). Inline spans never cross line boundaries.
func countInlineMath(s string) int {
	count := 0
	escaped := false
	open := false

	for i := 0; i < len(s); i++ {
		if escaped {
			escaped = false
			continue
		}
		switch s[i] {
		case '\\':
			escaped = true
		case '\n':
			open = false
		case '$':
			if open {
				count++
				open = false
			} else {
				open = true
			}
		}
	}
	return count
}
