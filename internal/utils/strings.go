package utils

import "strings"

// SplitTickerList tokenizes bulk ticker input. Pasted watchlists arrive
// comma-separated, semicolon-separated, or one symbol per line, so any mix
// of commas, semicolons, and whitespace delimits. Returns nil when nothing
// survives.
func SplitTickerList(s string) []string {
	tokens := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ',', ';', ' ', '\t', '\n', '\r':
			return true
		}
		return false
	})

	if len(tokens) == 0 {
		return nil
	}

	return tokens
}
