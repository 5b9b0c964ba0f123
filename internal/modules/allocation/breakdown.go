// Package allocation derives the presentation-ready value breakdown from
// the current symbol ledger and group membership. It is pure computation:
// no storage, no locking, recomputed in full after every change.
package allocation

import (
	"math"
	"sort"

	"github.com/aristath/basket/internal/modules/groups"
	"github.com/aristath/basket/internal/modules/symbols"
)

// UnassignedRowID is the fixed row id of the remainder bucket. It is not a
// group id and never collides with one (group ids are UUIDs).
const UnassignedRowID = "unassigned"

// UnassignedRowName labels the remainder bucket.
const UnassignedRowName = "Unassigned"

// TickerRow is one ticker inside a breakdown row.
type TickerRow struct {
	Ticker       string  `json:"ticker"`
	Value        float64 `json:"value"`
	GroupPct     float64 `json:"group_pct"`
	PortfolioPct float64 `json:"portfolio_pct"`
}

// Row is one ranked breakdown row: a group, or the pinned unassigned
// bucket.
type Row struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Value   float64     `json:"value"`
	Pct     float64     `json:"pct"`
	Tickers []TickerRow `json:"tickers"`
}

// Breakdown is the canonical row ordering consumed by the reorder planner
// and rendered by the report endpoint: groups ranked by descending value
// (name, then id on ties), with the unassigned bucket pinned last.
type Breakdown struct {
	Total float64 `json:"total"`
	Rows  []Row   `json:"rows"`
}

// RowIDs returns the canonical row order as a plain id list.
func (b Breakdown) RowIDs() []string {
	ids := make([]string, len(b.Rows))
	for i, row := range b.Rows {
		ids[i] = row.ID
	}
	return ids
}

// Build computes the breakdown. Ticker lists arrive already value-ranked
// (the group store re-sorts on every mutation), so member order is
// preserved as given.
func Build(groupList []groups.Group, unassigned []string, ledger symbols.Ledger) Breakdown {
	total := ledger.Total()

	rows := make([]Row, 0, len(groupList)+1)
	for _, g := range groupList {
		rows = append(rows, buildRow(g.ID, g.Name, g.Tickers, ledger, total))
	}

	// Rank groups by value; ties fall back to name, then id, so the
	// order is fully deterministic.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Value != rows[j].Value {
			return rows[i].Value > rows[j].Value
		}
		if rows[i].Name != rows[j].Name {
			return rows[i].Name < rows[j].Name
		}
		return rows[i].ID < rows[j].ID
	})

	// The unassigned bucket is the remainder, not a user category: it is
	// pinned after the ranked groups regardless of its value.
	rows = append(rows, buildRow(UnassignedRowID, UnassignedRowName, unassigned, ledger, total))

	for i := range rows {
		rows[i].Value = round(rows[i].Value, 2)
		rows[i].Pct = round(rows[i].Pct, 2)
	}

	return Breakdown{
		Total: round(total, 2),
		Rows:  rows,
	}
}

func buildRow(id, name string, tickers []string, ledger symbols.Ledger, total float64) Row {
	rowValue := 0.0
	for _, t := range tickers {
		rowValue += ledger.Value(t)
	}

	tickerRows := make([]TickerRow, 0, len(tickers))
	for _, t := range tickers {
		value := ledger.Value(t)
		tickerRows = append(tickerRows, TickerRow{
			Ticker:       t,
			Value:        round(value, 2),
			GroupPct:     round(pct(value, rowValue), 2),
			PortfolioPct: round(pct(value, total), 2),
		})
	}

	return Row{
		ID:      id,
		Name:    name,
		Value:   rowValue,
		Pct:     pct(rowValue, total),
		Tickers: tickerRows,
	}
}

// pct is the 0-safe percentage: an empty portfolio reports 0 for every
// row, never a division fault.
func pct(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}

func round(val float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(val*multiplier) / multiplier
}
