// Package domain provides core domain models and types.
package domain

import "time"

// Position represents a single brokerage position as imported.
// Code is the raw broker symbol (market prefix included, e.g. "US.AAPL");
// ticker derivation happens in the symbols module.
type Position struct {
	Code         string  `json:"code"`
	Name         string  `json:"name,omitempty"`
	Quantity     float64 `json:"quantity"`
	CostPrice    float64 `json:"cost_price"`
	CurrentPrice float64 `json:"current_price"`
	MarketValue  float64 `json:"market_value"`
	Currency     string  `json:"currency,omitempty"`
}

// AccountSummary holds the account-level totals from an export.
// Displayed verbatim; portfolio percentages divide by the ledger total,
// not TotalAssets (which includes cash).
type AccountSummary struct {
	TotalAssets float64   `json:"total_assets"`
	Cash        float64   `json:"cash"`
	MarketValue float64   `json:"market_value"`
	BuyingPower float64   `json:"buying_power"`
	Currency    string    `json:"currency,omitempty"`
	ExportedAt  time.Time `json:"exported_at"`
}

// Export is one parsed brokerage export file.
type Export struct {
	ExportedAt time.Time      `json:"exported_at"`
	Account    AccountSummary `json:"account"`
	Positions  []Position     `json:"positions"`
}
