package util

import (
	"regexp"
	"strings"
	"unicode"
)

var reUnderscore = regexp.MustCompile(`_+`)

// SafeFolderName turns an arbitrary title into a filesystem-safe folder
// name.
func SafeFolderName(s string) string {
	s = strings.ToLower(s)

	repl := []string{
		"•", "_",
		"-", "_",
		"—", "_",
		"–", "_",
		"/", "_",
		"\\", "_",
		".", "_",
		" ", "_",
		"(", "",
		")", "",
	}
	for i := 0; i < len(repl); i += 2 {
		s = strings.ReplaceAll(s, repl[i], repl[i+1])
	}

	clean := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			clean = append(clean, r)
		}
	}
	s = string(clean)

	s = reUnderscore.ReplaceAllString(s, "_")

	return strings.Trim(s, "_")
}
