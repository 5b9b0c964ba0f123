// Package symbols derives the ticker-level view of a position list: code
// normalization, option classification, the ticker value map, and the
// ranked known-ticker universe.
package symbols

import (
	"regexp"
	"strings"
)

// A leading two-letter segment followed by a dot is a market prefix
// (US.AAPL, HK.00700). Share-class dots survive: BRK.B has a three-letter
// head and is left alone.
var marketPrefixPattern = regexp.MustCompile(`^[A-Z]{2}\.`)

// Option codes encode ticker letters + a 6-digit date + a call/put flag +
// the strike digits, e.g. TSLA280121P380000.
var optionPattern = regexp.MustCompile(`^[A-Z]{1,6}[0-9]{6}[CP][0-9]+$`)

// Normalize converts a raw broker code into the ticker used for
// categorization: trimmed, uppercased, market prefix stripped.
// Punctuation inside the remaining symbol is preserved.
func Normalize(code string) string {
	ticker := strings.ToUpper(strings.TrimSpace(code))
	return marketPrefixPattern.ReplaceAllString(ticker, "")
}

// IsOption reports whether a normalized ticker encodes an option contract.
// Options are excluded from ticker-level value aggregation.
func IsOption(ticker string) bool {
	return optionPattern.MatchString(ticker)
}
