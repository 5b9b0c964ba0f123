// Package snapshots keeps a history of the computed breakdown so a user
// can look back at how the workspace was weighted. Payloads are stored as
// msgpack blobs in cache.db; only light metadata is queryable.
package snapshots

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/aristath/basket/internal/database"
	"github.com/aristath/basket/internal/modules/allocation"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// View is the full snapshot payload: the breakdown rows as they stood at
// capture time.
type View struct {
	TakenAt time.Time        `json:"taken_at" msgpack:"taken_at"`
	Source  string           `json:"source" msgpack:"source"`
	Total   float64          `json:"total" msgpack:"total"`
	Rows    []allocation.Row `json:"rows" msgpack:"rows"`
}

// Meta is the queryable snapshot metadata.
type Meta struct {
	ID         int64     `json:"id"`
	TakenAt    time.Time `json:"taken_at"`
	Source     string    `json:"source"`
	Total      float64   `json:"total"`
	GroupCount int       `json:"group_count"`
}

// DefaultListLimit bounds List when callers pass no limit.
const DefaultListLimit = 50

// Repository handles view snapshot database operations
type Repository struct {
	db  *sql.DB // cache.db - view_snapshots
	log zerolog.Logger
}

// NewRepository creates a new snapshots repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "snapshots").Logger(),
	}
}

// Save stores a snapshot and prunes history down to keep rows (0 keeps
// everything). Returns the new snapshot id.
func (r *Repository) Save(view View, keep int) (int64, error) {
	payload, err := msgpack.Marshal(view)
	if err != nil {
		return 0, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	groupCount := 0
	for _, row := range view.Rows {
		if row.ID != allocation.UnassignedRowID {
			groupCount++
		}
	}

	var id int64
	err = database.WithTransaction(r.db, func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			INSERT INTO view_snapshots (taken_at, source, total_value, group_count, payload)
			VALUES (?, ?, ?, ?, ?)
		`, view.TakenAt.Unix(), view.Source, view.Total, groupCount, payload)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}

		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read snapshot id: %w", err)
		}

		if keep > 0 {
			_, err = tx.Exec(`
				DELETE FROM view_snapshots
				WHERE id NOT IN (
					SELECT id FROM view_snapshots
					ORDER BY taken_at DESC, id DESC
					LIMIT ?
				)
			`, keep)
			if err != nil {
				return fmt.Errorf("failed to prune snapshots: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// List returns snapshot metadata, newest first.
func (r *Repository) List(limit int) ([]Meta, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.Query(`
		SELECT id, taken_at, source, total_value, group_count
		FROM view_snapshots
		ORDER BY taken_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var metas []Meta
	for rows.Next() {
		var (
			m       Meta
			takenAt int64
		)
		if err := rows.Scan(&m.ID, &takenAt, &m.Source, &m.Total, &m.GroupCount); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		m.TakenAt = time.Unix(takenAt, 0)
		metas = append(metas, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return metas, nil
}

// Get decodes one snapshot payload by id. Returns nil when absent.
func (r *Repository) Get(id int64) (*View, error) {
	var payload []byte
	err := r.db.QueryRow("SELECT payload FROM view_snapshots WHERE id = ?", id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot %d: %w", id, err)
	}

	var view View
	if err := msgpack.Unmarshal(payload, &view); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %d: %w", id, err)
	}

	return &view, nil
}
