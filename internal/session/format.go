package session

import (
	"regexp"
	"strings"
)

// A bold span never crosses a line terminator (\r, \n, U+2028, U+2029).
var boldPattern = regexp.MustCompile(`\*\*([^\r\n\x{2028}\x{2029}]*?)\*\*`)

// FormatText turns newlines into <br> and **spans** into <b>spans</b>.
// It adds no other markup and does not escape its input; callers that render
// untrusted text escape it first.
func FormatText(text string) string {
	text = strings.ReplaceAll(text, "\n", "<br>")
	return boldPattern.ReplaceAllString(text, "<b>$1</b>")
}
