package member

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// truthyInitials are the first letters read as "yes": Si, Yes, True, Verdadero, 1 and an X mark.
const truthyInitials = "SYTV1X"

// ParseFlag applies the first-character heuristic to a spreadsheet cell.
func ParseFlag(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(value)
	return strings.ContainsRune(truthyInitials, unicode.ToUpper(r))
}

// IsYesNo reports whether value reads as a bare yes/no answer.
func IsYesNo(value string) bool {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "S", "N", "SI", "SÍ", "NO", "Y", "YES", "X", "TRUE", "FALSE":
		return true
	}
	return false
}
