// Package positions caches the latest broker export in cache.db so the
// workspace survives restarts without re-importing. Positions here are raw
// broker rows; ticker normalization happens downstream in the ledger.
package positions

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/basket/internal/database"
	"github.com/aristath/basket/internal/domain"
	"github.com/rs/zerolog"
)

// AccountState is the cached account summary plus import provenance.
type AccountState struct {
	Account    domain.AccountSummary `json:"account"`
	Source     string                `json:"source"`
	ImportedAt time.Time             `json:"imported_at"`
}

// Repository handles position cache database operations
type Repository struct {
	db  *sql.DB // cache.db - positions, account
	log zerolog.Logger
}

// NewRepository creates a new positions repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "positions").Logger(),
	}
}

// ReplaceAll swaps the cached export for a new one in a single
// transaction: every position row plus the account summary.
func (r *Repository) ReplaceAll(export domain.Export, source string) error {
	now := time.Now().Unix()

	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM positions"); err != nil {
			return fmt.Errorf("failed to clear positions: %w", err)
		}

		for _, pos := range export.Positions {
			_, err := tx.Exec(`
				INSERT OR REPLACE INTO positions
				(code, name, quantity, cost_price, current_price, market_value, currency, imported_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, pos.Code, pos.Name, pos.Quantity, pos.CostPrice,
				pos.CurrentPrice, pos.MarketValue, pos.Currency, now)
			if err != nil {
				return fmt.Errorf("failed to insert position %s: %w", pos.Code, err)
			}
		}

		_, err := tx.Exec(`
			INSERT OR REPLACE INTO account
			(id, total_assets, cash, market_value, buying_power, currency, exported_at, source, imported_at)
			VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		`, export.Account.TotalAssets, export.Account.Cash,
			export.Account.MarketValue, export.Account.BuyingPower,
			export.Account.Currency, export.Account.ExportedAt.Unix(), source, now)
		if err != nil {
			return fmt.Errorf("failed to upsert account: %w", err)
		}

		return nil
	})
}

// LoadPositions returns the cached position list.
func (r *Repository) LoadPositions() ([]domain.Position, error) {
	rows, err := r.db.Query(`
		SELECT code, name, quantity, cost_price, current_price, market_value, currency
		FROM positions
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		var pos domain.Position
		if err := rows.Scan(&pos.Code, &pos.Name, &pos.Quantity, &pos.CostPrice,
			&pos.CurrentPrice, &pos.MarketValue, &pos.Currency); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, pos)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}

// LoadAccount returns the cached account state, or nil when nothing has
// been imported yet.
func (r *Repository) LoadAccount() (*AccountState, error) {
	var (
		state                  AccountState
		exportedAt, importedAt int64
	)

	err := r.db.QueryRow(`
		SELECT total_assets, cash, market_value, buying_power, currency, exported_at, source, imported_at
		FROM account WHERE id = 1
	`).Scan(&state.Account.TotalAssets, &state.Account.Cash,
		&state.Account.MarketValue, &state.Account.BuyingPower,
		&state.Account.Currency, &exportedAt, &state.Source, &importedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query account: %w", err)
	}

	state.Account.ExportedAt = time.Unix(exportedAt, 0)
	state.ImportedAt = time.Unix(importedAt, 0)
	return &state, nil
}

// Count returns the number of cached positions.
func (r *Repository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM positions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count positions: %w", err)
	}
	return count, nil
}
