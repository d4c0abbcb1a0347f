package extract

import (
	"regexp"
	"strings"
)

var blankRun = regexp.MustCompile(`\n\s*\n`)

// Normalize trims the text and collapses every run of blank lines into a
// single line break.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSpace(s)
	return blankRun.ReplaceAllString(s, "\n")
}
