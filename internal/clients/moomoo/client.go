// Package moomoo parses the account export files produced by the moomoo
// OpenD export script. Exports are JSON files named
// account_<acct>_data_<timestamp>.json dropped into a directory; there is
// no live API surface here.
package moomoo

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/basket/internal/domain"
	"github.com/rs/zerolog"
)

// TimestampLayout is the export timestamp format (local time).
const TimestampLayout = "20060102_150405"

// exportPattern matches the files the export script writes.
const exportPattern = "account_*_data_*.json"

// FlexFloat tolerates the numeric sloppiness of broker exports: values
// arrive as JSON numbers, numeric strings, "N/A", or null, and all of the
// junk forms coerce to zero.
type FlexFloat float64

// UnmarshalJSON handles both number and string forms.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = FlexFloat(num)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	str = strings.TrimSpace(str)
	if str == "" || strings.EqualFold(str, "N/A") {
		*f = 0
		return nil
	}

	parsed, err := strconv.ParseFloat(str, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexFloat(parsed)
	return nil
}

// Wire shapes. Field names are the export contract; do not rename.
type exportFile struct {
	Timestamp string           `json:"timestamp"`
	Account   accountRecord    `json:"account"`
	Positions []positionRecord `json:"positions"`
}

type accountRecord struct {
	TotalAssets FlexFloat `json:"total_assets"`
	Cash        FlexFloat `json:"cash"`
	MarketVal   FlexFloat `json:"market_val"`
	Power       FlexFloat `json:"power"`
	Currency    string    `json:"currency"`
}

type positionRecord struct {
	Code         string    `json:"code"`
	StockName    string    `json:"stock_name"`
	Qty          FlexFloat `json:"qty"`
	CostPrice    FlexFloat `json:"cost_price"`
	CurrentPrice FlexFloat `json:"current_price"`
	MarketVal    FlexFloat `json:"market_val"`
	Currency     string    `json:"currency"`
}

// Client reads and parses moomoo export files
type Client struct {
	log zerolog.Logger
}

// NewClient creates a new moomoo export client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		log: log.With().Str("client", "moomoo").Logger(),
	}
}

// ParseExport decodes a raw export. It fails only on structurally invalid
// JSON or a missing positions array; every field-level oddity degrades to
// a zero value instead.
func (c *Client) ParseExport(data []byte) (*domain.Export, error) {
	var ef exportFile
	if err := json.Unmarshal(data, &ef); err != nil {
		return nil, fmt.Errorf("failed to parse export: %w", err)
	}

	if ef.Positions == nil {
		return nil, fmt.Errorf("export has no positions array")
	}

	exportedAt, err := time.ParseInLocation(TimestampLayout, ef.Timestamp, time.Local)
	if err != nil {
		c.log.Warn().Str("timestamp", ef.Timestamp).Msg("Unparseable export timestamp")
		exportedAt = time.Time{}
	}

	export := &domain.Export{
		ExportedAt: exportedAt,
		Account: domain.AccountSummary{
			TotalAssets: float64(ef.Account.TotalAssets),
			Cash:        float64(ef.Account.Cash),
			MarketValue: float64(ef.Account.MarketVal),
			BuyingPower: float64(ef.Account.Power),
			Currency:    ef.Account.Currency,
			ExportedAt:  exportedAt,
		},
		Positions: make([]domain.Position, 0, len(ef.Positions)),
	}

	for _, p := range ef.Positions {
		export.Positions = append(export.Positions, domain.Position{
			Code:         p.Code,
			Name:         p.StockName,
			Quantity:     float64(p.Qty),
			CostPrice:    float64(p.CostPrice),
			CurrentPrice: float64(p.CurrentPrice),
			MarketValue:  float64(p.MarketVal),
			Currency:     p.Currency,
		})
	}

	return export, nil
}

// ReadExportFile loads and parses one export file.
func (c *Client) ReadExportFile(path string) (*domain.Export, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export file: %w", err)
	}

	export, err := c.ParseExport(data)
	if err != nil {
		return nil, fmt.Errorf("export file %s: %w", filepath.Base(path), err)
	}

	return export, nil
}

// FindLatest returns the newest export file in dir, by modification time
// with filename as tie-break (export names embed their timestamp, so the
// lexicographically larger name is the later export). Empty string when
// the directory holds no exports.
func (c *Client) FindLatest(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, exportPattern))
	if err != nil {
		return "", fmt.Errorf("failed to scan export dir: %w", err)
	}

	var (
		best     string
		bestTime time.Time
	)
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		mt := info.ModTime()
		if best == "" || mt.After(bestTime) || (mt.Equal(bestTime) && path > best) {
			best = path
			bestTime = mt
		}
	}

	return best, nil
}
