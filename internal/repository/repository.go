package repository

import (
	"context"
	"database/sql"
	"time"

	orbital "orbital_node"
)

type Authorization interface {
	Create(username, hash string) (int, error)
	GetByUsername(username string) (*orbital.User, error)
}

// StateRepo persists the single-row thermal snapshot, so a restarted process
// resumes from the last known temperature instead of ambient.
type StateRepo interface {
	Save(ctx context.Context, s orbital.NodeState) error
	Load(ctx context.Context) (orbital.NodeState, error)
}

// EventRepo is the append-only node event log with filtered access.
type EventRepo interface {
	Append(ctx context.Context, e orbital.NodeEvent) error
	List(ctx context.Context, from, to time.Time, typ string) ([]orbital.NodeEvent, error)
}

type Repository struct {
	StateRepo StateRepo
	EventRepo EventRepo
	Auth      Authorization
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		StateRepo: NewStateSQLite(db),
		EventRepo: NewEventSQLite(db),
		Auth:      NewUserRepository(db),
	}
}
