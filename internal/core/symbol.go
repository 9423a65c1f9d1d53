package core

import (
	"regexp"
	"strings"
)

var validSymbol = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._^\-]{0,31}$`)

// NormalizeSymbol trims the symbol and validates its format.
// Returns ErrInvalidSymbol for anything that could escape a storage path.
func NormalizeSymbol(symbol string) (string, error) {
	trimmed := strings.TrimSpace(symbol)
	if !validSymbol.MatchString(trimmed) {
		return "", WrapError(ErrInvalidSymbol, nil)
	}
	return trimmed, nil
}

// StooqUS converts a US ticker to stooq form: BRK.B -> brk-b.us
func StooqUS(symbol string) string {
	s := strings.ToLower(symbol)
	s = strings.ReplaceAll(s, ".", "-")
	s = strings.ReplaceAll(s, " ", "-")
	return s + ".us"
}
