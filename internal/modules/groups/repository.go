package groups

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aristath/basket/internal/database"
	"github.com/rs/zerolog"
)

// Repository persists the group store snapshot and the manually-tracked
// ticker set in workspace.db. The whole snapshot is written back after
// every mutation; loads are tolerant of malformed rows (the store
// sanitizes again on Replace).
type Repository struct {
	db  *sql.DB // workspace.db - groups, manual_tickers tables
	log zerolog.Logger
}

// NewRepository creates a new groups repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "groups").Logger(),
	}
}

// LoadAll reads every persisted group in creation order.
func (r *Repository) LoadAll() ([]Group, error) {
	rows, err := r.db.Query(`
		SELECT id, name, tickers, created_at, updated_at
		FROM groups
		ORDER BY sort_order, created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var (
			g                    Group
			tickersJSON          string
			createdAt, updatedAt int64
		)
		if err := rows.Scan(&g.ID, &g.Name, &tickersJSON, &createdAt, &updatedAt); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan group row, skipping")
			continue
		}

		g.Tickers = decodeTickers(tickersJSON)
		g.CreatedAt = time.Unix(createdAt, 0)
		g.UpdatedAt = time.Unix(updatedAt, 0)
		groups = append(groups, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}

	return groups, nil
}

// LoadManual reads the manually-tracked ticker set.
func (r *Repository) LoadManual() (map[string]time.Time, error) {
	rows, err := r.db.Query("SELECT ticker, added_at FROM manual_tickers")
	if err != nil {
		return nil, fmt.Errorf("failed to query manual tickers: %w", err)
	}
	defer rows.Close()

	manual := make(map[string]time.Time)
	for rows.Next() {
		var (
			ticker  string
			addedAt int64
		)
		if err := rows.Scan(&ticker, &addedAt); err != nil {
			r.log.Warn().Err(err).Msg("Failed to scan manual ticker row, skipping")
			continue
		}
		manual[ticker] = time.Unix(addedAt, 0)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating manual tickers: %w", err)
	}

	return manual, nil
}

// SaveAll replaces the persisted snapshot with the given state in a single
// transaction.
func (r *Repository) SaveAll(groups []Group, manual map[string]time.Time) error {
	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM groups"); err != nil {
			return fmt.Errorf("failed to clear groups: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM manual_tickers"); err != nil {
			return fmt.Errorf("failed to clear manual tickers: %w", err)
		}

		for i, g := range groups {
			tickersJSON, err := json.Marshal(g.Tickers)
			if err != nil {
				return fmt.Errorf("failed to marshal tickers for group %s: %w", g.ID, err)
			}

			_, err = tx.Exec(`
				INSERT INTO groups (id, name, tickers, sort_order, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?)
			`, g.ID, g.Name, string(tickersJSON), i, g.CreatedAt.Unix(), g.UpdatedAt.Unix())
			if err != nil {
				return fmt.Errorf("failed to insert group %s: %w", g.ID, err)
			}
		}

		for ticker, addedAt := range manual {
			_, err := tx.Exec(`
				INSERT INTO manual_tickers (ticker, added_at)
				VALUES (?, ?)
			`, ticker, addedAt.Unix())
			if err != nil {
				return fmt.Errorf("failed to insert manual ticker %s: %w", ticker, err)
			}
		}

		return nil
	})
}

// decodeTickers tolerates malformed persisted ticker arrays: non-string
// elements are dropped rather than failing the load.
func decodeTickers(raw string) []string {
	var tickers []string
	if err := json.Unmarshal([]byte(raw), &tickers); err == nil {
		return tickers
	}

	var loose []interface{}
	if err := json.Unmarshal([]byte(raw), &loose); err != nil {
		return nil
	}

	var out []string
	for _, v := range loose {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
