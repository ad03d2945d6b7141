package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/repository"
)

// appendLockKey serializes sequence assignment across connections; the lock is
// released with the surrounding transaction.
const appendLockKey int64 = 0x666f6f7462616c6c

type eventStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewEventStore(pool *pgxpool.Pool, logger zerolog.Logger) repository.EventStore {
	return &eventStore{
		pool:   pool,
		logger: logger.With().Str("module", "repository").Str("component", "postgres_event_store").Logger(),
	}
}

func (s *eventStore) Append(ctx context.Context, e event.Event) (event.Stored, error) {
	out, err := s.AppendBatch(ctx, []event.Event{e})
	if err != nil {
		return event.Stored{}, err
	}
	return out[0], nil
}

func (s *eventStore) AppendBatch(ctx context.Context, events []event.Event) ([]event.Stored, error) {
	if err := ensurePool(s.pool); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	var out []event.Stored
	err := inTx(ctx, s.pool, func(exec q) error {
		if _, err := exec.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, appendLockKey); err != nil {
			return err
		}
		var last int64
		if err := exec.QueryRow(ctx, `SELECT COALESCE(MAX(sequence_number), 0) FROM events`).Scan(&last); err != nil {
			return err
		}

		batch := &pgx.Batch{}
		out = make([]event.Stored, 0, len(events))
		for i, e := range events {
			rec, err := event.NewRecord(last+int64(i)+1, e)
			if err != nil {
				return err
			}
			batch.Queue(
				`INSERT INTO events (id, timestamp, type_tag, payload, sequence_number) VALUES ($1, $2, $3, $4, $5)`,
				rec.ID, rec.Timestamp, string(rec.Type), []byte(rec.Payload), rec.Sequence,
			)
			out = append(out, event.Stored{Sequence: rec.Sequence, Event: e})
		}
		return exec.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return out, nil
}

func (s *eventStore) Events(ctx context.Context, eq repository.EventQuery) (repository.EventPage, error) {
	if err := ensurePool(s.pool); err != nil {
		return repository.EventPage{}, err
	}
	var types []string
	for _, t := range eq.Types {
		types = append(types, string(t))
	}
	var limit any
	if eq.Limit > 0 {
		limit = eq.Limit
	}

	exec := getQ(ctx, s.pool)
	rows, err := exec.Query(ctx,
		`SELECT sequence_number, id, type_tag, timestamp, payload
		 FROM events
		 WHERE sequence_number > $1 AND ($2::text[] IS NULL OR type_tag = ANY($2))
		 ORDER BY sequence_number
		 LIMIT $3`,
		eq.AfterSequence, types, limit,
	)
	if err != nil {
		return repository.EventPage{}, repository.MapPgError(err)
	}
	defer rows.Close()

	page := repository.EventPage{Events: []event.Stored{}, LastSequence: eq.AfterSequence}
	for rows.Next() {
		var (
			rec     event.Record
			typeTag string
			payload []byte
		)
		if err := rows.Scan(&rec.Sequence, &rec.ID, &typeTag, &rec.Timestamp, &payload); err != nil {
			return repository.EventPage{}, repository.MapPgError(err)
		}
		rec.Type = event.Type(typeTag)
		rec.Payload = payload
		page.LastSequence = rec.Sequence
		st, err := rec.Stored()
		if err != nil {
			page.Skipped++
			s.logger.Warn().Err(err).Int64("sequence", rec.Sequence).Str("type", typeTag).Msg("skipping undecodable event")
			continue
		}
		page.Events = append(page.Events, st)
	}
	if err := rows.Err(); err != nil {
		return repository.EventPage{}, repository.MapPgError(err)
	}
	return page, nil
}

func (s *eventStore) LatestSequence(ctx context.Context) (int64, error) {
	if err := ensurePool(s.pool); err != nil {
		return 0, err
	}
	var last int64
	if err := getQ(ctx, s.pool).QueryRow(ctx, `SELECT COALESCE(MAX(sequence_number), 0) FROM events`).Scan(&last); err != nil {
		return 0, repository.MapPgError(err)
	}
	return last, nil
}

func (s *eventStore) Reset(ctx context.Context) error {
	if err := ensurePool(s.pool); err != nil {
		return err
	}
	if _, err := getQ(ctx, s.pool).Exec(ctx, `TRUNCATE TABLE events, snapshots`); err != nil {
		return fmt.Errorf("reset event store: %w", repository.MapPgError(err))
	}
	return nil
}

var _ repository.EventStore = (*eventStore)(nil)

type snapshotStore struct{ pool *pgxpool.Pool }

func NewSnapshotStore(pool *pgxpool.Pool) repository.SnapshotStore {
	return &snapshotStore{pool: pool}
}

func (s *snapshotStore) SaveSnapshot(ctx context.Context, snap repository.Snapshot) error {
	if err := ensurePool(s.pool); err != nil {
		return err
	}
	_, err := getQ(ctx, s.pool).Exec(ctx,
		`INSERT INTO snapshots (id, timestamp, sequence_number, payload) VALUES ($1, $2, $3, $4)`,
		snap.ID, snap.Timestamp, snap.Sequence, snap.Payload,
	)
	return repository.MapPgError(err)
}

func (s *snapshotStore) LatestSnapshot(ctx context.Context) (repository.Snapshot, error) {
	if err := ensurePool(s.pool); err != nil {
		return repository.Snapshot{}, err
	}
	var snap repository.Snapshot
	err := getQ(ctx, s.pool).QueryRow(ctx,
		`SELECT id, timestamp, sequence_number, payload
		 FROM snapshots
		 ORDER BY sequence_number DESC, timestamp DESC
		 LIMIT 1`,
	).Scan(&snap.ID, &snap.Timestamp, &snap.Sequence, &snap.Payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Snapshot{}, repository.ErrNotFound
		}
		return repository.Snapshot{}, repository.MapPgError(err)
	}
	return snap, nil
}

var _ repository.SnapshotStore = (*snapshotStore)(nil)
