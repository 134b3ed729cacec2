package verify

import (
	"regexp"
	"strings"
)

var (
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
	blankRuns     = regexp.MustCompile(`\n{3,}`)
)

// NormalizeCode canonicalizes a code submission: CRLF becomes LF, outer
// whitespace is trimmed, trailing spaces and tabs are stripped from every
// line, and runs of three or more newlines collapse to two. Indentation
// and letter case are preserved.
func NormalizeCode(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSpace(s)
	s = trailingSpace.ReplaceAllString(s, "\n")
	return blankRuns.ReplaceAllString(s, "\n\n")
}

// NormalizeAnswer trims surrounding whitespace from a short answer.
func NormalizeAnswer(s string) string {
	return strings.TrimSpace(s)
}
