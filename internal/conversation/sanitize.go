package conversation

import (
	"path/filepath"
	"strings"
	"unicode"
)

const fallbackDocumentName = "document"

// SanitizeFilename turns an arbitrary upload name into a display name the
// inference service accepts: extension stripped, anything outside letters,
// digits, spaces, hyphens, parentheses and square brackets replaced with a
// space, repeated spaces collapsed.
func SanitizeFilename(name string) string {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '[' || r == ']':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	if out == "" {
		return fallbackDocumentName
	}
	return out
}
