package strutil

import (
	"fmt"
	"strings"
)

// ShellEscape returns a single-quoted shell literal for value.
func ShellEscape(value string) string {
	if value == "" {
		return "''"
	}
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

// ShellJoin escapes every word and joins them into a single command line.
func ShellJoin(words ...string) string {
	escaped := make([]string, len(words))
	for i, w := range words {
		escaped[i] = ShellEscape(w)
	}
	return strings.Join(escaped, " ")
}

// ValidateIdentifier checks that value is a non-empty name made of letters,
// digits, '-', '_', '.' or '/'.
func ValidateIdentifier(kind, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("%s name cannot be empty", kind)
	}
	if trimmed != value {
		return fmt.Errorf("%s name %q has leading/trailing whitespace", kind, value)
	}
	for _, r := range value {
		if !isSafeNameRune(r) {
			return fmt.Errorf("%s name %q contains invalid character %q", kind, value, r)
		}
	}
	return nil
}

func isSafeNameRune(r rune) bool {
	return r >= 'a' && r <= 'z' ||
		r >= 'A' && r <= 'Z' ||
		r >= '0' && r <= '9' ||
		r == '-' || r == '_' || r == '.' || r == '/'
}
