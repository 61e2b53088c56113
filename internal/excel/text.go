package excel

import (
	"strings"
	"unicode"
)

// CleanText normalizes all line-break variants to "\n", trims each line and
// drops blank ones. Exported spreadsheets sometimes carry the escaped
// carriage return marker "_x000D_" which is treated as a line break too.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ReplaceAll(text, "_x000D_", "\n")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}

// NormalizeText produces the deduplication key for a question: cleaned,
// lower-cased, punctuation stripped and whitespace collapsed.
func NormalizeText(text string) string {
	cleaned := CleanText(text)
	if cleaned == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range strings.ToLower(cleaned) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
