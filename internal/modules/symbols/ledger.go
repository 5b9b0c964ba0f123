package symbols

import (
	"math"
	"sort"

	"github.com/aristath/basket/internal/domain"
)

// Ledger is the derived ticker-level view of the current position list.
// It is a pure function of the positions: rebuilt whole on every import,
// never mutated in place.
type Ledger struct {
	values map[string]float64
	total  float64
}

// Build derives a ledger from a position list. Option positions are
// excluded; every other position contributes the absolute market value of
// its normalized ticker (multiple positions on one ticker sum).
func Build(positions []domain.Position) Ledger {
	values := make(map[string]float64, len(positions))
	total := 0.0

	for _, pos := range positions {
		ticker := Normalize(pos.Code)
		if ticker == "" || IsOption(ticker) {
			continue
		}

		value := math.Abs(pos.MarketValue)
		values[ticker] += value
		total += value
	}

	return Ledger{values: values, total: total}
}

// Value returns the mapped value for a ticker, 0 if unknown.
func (l Ledger) Value(ticker string) float64 {
	return l.values[ticker]
}

// Has reports whether the ticker carries live position value.
func (l Ledger) Has(ticker string) bool {
	_, ok := l.values[ticker]
	return ok
}

// Total returns the portfolio total (sum of all mapped values).
func (l Ledger) Total() float64 {
	return l.total
}

// Values returns a copy of the ticker value map.
func (l Ledger) Values() map[string]float64 {
	out := make(map[string]float64, len(l.values))
	for ticker, value := range l.values {
		out[ticker] = value
	}
	return out
}

// Rank sorts tickers by descending value with lexicographic tie-break.
// This ordering is the canonical tie-break used everywhere ranking occurs.
func (l Ledger) Rank(tickers []string) []string {
	out := make([]string, len(tickers))
	copy(out, tickers)

	sort.Slice(out, func(i, j int) bool {
		vi, vj := l.values[out[i]], l.values[out[j]]
		if vi != vj {
			return vi > vj
		}
		return out[i] < out[j]
	})

	return out
}

// Universe returns the ranked known-ticker universe: tickers with live
// position value, manually tracked tickers, and tickers referenced by any
// group. Zero-value tickers survive only through the latter two sets.
func (l Ledger) Universe(manual, grouped []string) []string {
	seen := make(map[string]bool, len(l.values)+len(manual)+len(grouped))
	var universe []string

	add := func(ticker string) {
		if ticker == "" || seen[ticker] {
			return
		}
		seen[ticker] = true
		universe = append(universe, ticker)
	}

	for ticker, value := range l.values {
		if value > 0 {
			add(ticker)
		}
	}
	for _, ticker := range manual {
		add(ticker)
	}
	for _, ticker := range grouped {
		add(ticker)
	}

	return l.Rank(universe)
}
