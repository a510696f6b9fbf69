package work

import "strings"

// contextLines is how many lines of surrounding source an item carries on
// each side of the finding span.
const contextLines = 4

// extractSnippet returns the lines around [start,end] (1-based, inclusive)
// with context expansion, clamped to the file.
func extractSnippet(content string, start, end int) string {
	lines := strings.Split(content, "\n")
	if start < 1 {
		start = 1
	}
	if end < start {
		end = start
	}
	s := start - 1 - contextLines
	if s < 0 {
		s = 0
	}
	e := end - 1 + contextLines
	if e > len(lines)-1 {
		e = len(lines) - 1
	}
	if s > e {
		return ""
	}
	return strings.Join(lines[s:e+1], "\n")
}

// exactSpan returns just the lines of the finding span itself.
func exactSpan(content string, start, end int) string {
	lines := strings.Split(content, "\n")
	if start < 1 || start > len(lines) {
		return ""
	}
	if end < start {
		end = start
	}
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start-1:end], "\n")
}
