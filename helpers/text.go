package helpers

import "strings"

// CleanText strips bidirectional control marks, collapses whitespace runs to
// single spaces, and trims the ends. Empty input stays empty.
func CleanText(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "‎", "")
	text = strings.ReplaceAll(text, "‏", "")
	return strings.Join(strings.Fields(text), " ")
}
