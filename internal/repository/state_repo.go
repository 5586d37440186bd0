package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	orbital "orbital_node"
)

type StateSQLite struct {
	db *sql.DB
}

func NewStateSQLite(db *sql.DB) *StateSQLite {
	return &StateSQLite{db: db}
}

const (
	nodeStateRowID = 1

	insertOrUpdateStateSQL = `
		INSERT INTO node_state (id, temp_k, status, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			temp_k=excluded.temp_k,
			status=excluded.status,
			updated_at=excluded.updated_at
	`

	selectStateSQL = `
		SELECT id, temp_k, status, updated_at
		FROM node_state WHERE id=?
	`
)

// Save upserts the node_state row (id always 1).
func (r *StateSQLite) Save(ctx context.Context, state orbital.NodeState) error {
	tsUTC := state.UpdatedAt
	if tsUTC.IsZero() {
		tsUTC = time.Now().UTC()
	} else {
		tsUTC = tsUTC.UTC()
	}

	_, err := r.db.ExecContext(ctx, insertOrUpdateStateSQL,
		nodeStateRowID,
		state.TemperatureK,
		state.Status,
		tsUTC,
	)
	return err
}

// Load fetches the single node_state row. A missing row is not an error;
// callers treat ID==0 as "no snapshot yet".
func (r *StateSQLite) Load(ctx context.Context) (orbital.NodeState, error) {
	row := r.db.QueryRowContext(ctx, selectStateSQL, nodeStateRowID)

	var s orbital.NodeState
	if err := row.Scan(&s.ID, &s.TemperatureK, &s.Status, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return orbital.NodeState{}, nil
		}
		return orbital.NodeState{}, err
	}
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s, nil
}
