package testing

import (
	"time"

	"github.com/aristath/basket/internal/domain"
)

// NewExportFixture returns a parsed broker export for use in tests: a
// three-position portfolio (AAPL 1000 + MSFT 500 + TSLA 2000, total 3500)
// with cash on the side.
func NewExportFixture() *domain.Export {
	exportedAt := time.Date(2024, 3, 15, 14, 30, 22, 0, time.Local)
	return &domain.Export{
		ExportedAt: exportedAt,
		Account: domain.AccountSummary{
			TotalAssets: 3700.00,
			Cash:        200.00,
			MarketValue: 3500.00,
			BuyingPower: 400.00,
			Currency:    "USD",
			ExportedAt:  exportedAt,
		},
		Positions: NewPositionFixtures(),
	}
}

// NewPositionFixtures returns a set of test positions for use in tests
func NewPositionFixtures() []domain.Position {
	return []domain.Position{
		{
			Code:         "US.AAPL",
			Name:         "Apple Inc",
			Quantity:     10,
			CostPrice:    90.00,
			CurrentPrice: 100.00,
			MarketValue:  1000.00,
			Currency:     "USD",
		},
		{
			Code:         "US.MSFT",
			Name:         "Microsoft Corporation",
			Quantity:     2,
			CostPrice:    240.00,
			CurrentPrice: 250.00,
			MarketValue:  500.00,
			Currency:     "USD",
		},
		{
			Code:         "US.TSLA",
			Name:         "Tesla Inc",
			Quantity:     10,
			CostPrice:    210.00,
			CurrentPrice: 200.00,
			MarketValue:  2000.00,
			Currency:     "USD",
		},
	}
}

// NewOptionPositionFixture returns an option position that ticker-level
// aggregation must exclude.
func NewOptionPositionFixture() domain.Position {
	return domain.Position{
		Code:         "US.TSLA280121P380000",
		Name:         "TSLA 280121 380.00 P",
		Quantity:     1,
		CostPrice:    40.00,
		CurrentPrice: 38.00,
		MarketValue:  3800.00,
		Currency:     "USD",
	}
}
