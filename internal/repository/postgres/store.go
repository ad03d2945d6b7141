package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/maxviazov/football-manager-sim/internal/repository"
)

// Store bundles the Postgres-backed contracts over one pool.
type Store struct {
	repository.EventStore
	repository.SnapshotStore
	repository.TxManager
	repository.Pinger
}

func NewStore(pool *pgxpool.Pool, logger zerolog.Logger) *Store {
	return &Store{
		EventStore:    NewEventStore(pool, logger),
		SnapshotStore: NewSnapshotStore(pool),
		TxManager:     NewTxManager(pool),
		Pinger:        NewPinger(pool),
	}
}
