// Package memory implements the event and snapshot stores in process memory.
//
// The store doubles as the write path of the file store: an optional Journal
// receives every committed record before it becomes visible to readers.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/repository"
)

// ErrResetInTx is returned by Reset when called inside WithinTx.
var ErrResetInTx = errors.New("reset inside a transaction")

// Journal persists committed records outside the process.
type Journal interface {
	// Write appends recs after the records already written.
	Write(recs []event.Record) error
	// Truncate keeps only the first n records.
	Truncate(n int) error
	Sync() error
}

// Option configures a Store.
type Option func(*Store)

// WithJournal mirrors every append into j.
func WithJournal(j Journal) Option {
	return func(s *Store) { s.journal = j }
}

// WithRecords preloads records already persisted elsewhere. Sequences must
// run contiguously from 1.
func WithRecords(recs []event.Record) Option {
	return func(s *Store) {
		s.records = recs
		s.committed = len(recs)
	}
}

// Store is an append-only event log guarded by a RWMutex. Writers are
// serialized by writeMu; a transaction holds writeMu for its whole duration.
type Store struct {
	writeMu sync.Mutex

	mu        sync.RWMutex
	records   []event.Record
	committed int
	snapshot  *repository.Snapshot

	journal Journal
	logger  zerolog.Logger
}

var (
	_ repository.EventStore    = (*Store)(nil)
	_ repository.SnapshotStore = (*Store)(nil)
	_ repository.TxManager     = (*Store)(nil)
	_ repository.Pinger        = (*Store)(nil)
)

func New(logger zerolog.Logger, opts ...Option) *Store {
	s := &Store{logger: logger.With().Str("module", "repository").Str("component", "memory_store").Logger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type txKey struct{ s *Store }

func (s *Store) inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{s}).(bool)
	return v
}

func (s *Store) Append(ctx context.Context, e event.Event) (event.Stored, error) {
	out, err := s.AppendBatch(ctx, []event.Event{e})
	if err != nil {
		return event.Stored{}, err
	}
	return out[0], nil
}

func (s *Store) AppendBatch(ctx context.Context, events []event.Event) ([]event.Stored, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	tx := s.inTx(ctx)
	if !tx {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
	}

	s.mu.RLock()
	next := int64(len(s.records)) + 1
	s.mu.RUnlock()

	recs := make([]event.Record, 0, len(events))
	out := make([]event.Stored, 0, len(events))
	for i, e := range events {
		rec, err := event.NewRecord(next+int64(i), e)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
		out = append(out, event.Stored{Sequence: rec.Sequence, Event: e})
	}
	// transactional appends reach the journal on commit
	if !tx {
		if err := s.persist(recs); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.records = append(s.records, recs...)
	if !tx {
		s.committed = len(s.records)
	}
	s.mu.Unlock()
	return out, nil
}

func (s *Store) persist(recs []event.Record) error {
	if s.journal == nil || len(recs) == 0 {
		return nil
	}
	if err := s.journal.Write(recs); err != nil {
		return err
	}
	return s.journal.Sync()
}

func (s *Store) Events(ctx context.Context, q repository.EventQuery) (repository.EventPage, error) {
	if err := ctx.Err(); err != nil {
		return repository.EventPage{}, err
	}
	s.mu.RLock()
	visible := s.committed
	if s.inTx(ctx) {
		visible = len(s.records)
	}
	recs := s.records[:visible:visible]
	s.mu.RUnlock()

	page := repository.EventPage{Events: []event.Stored{}, LastSequence: q.AfterSequence}
	scanned := 0
	// sequence n lives at index n-1
	for i := max(q.AfterSequence, 0); i < int64(len(recs)); i++ {
		if q.Limit > 0 && scanned == q.Limit {
			break
		}
		rec := recs[i]
		if !q.Matches(rec.Sequence, rec.Type) {
			continue
		}
		scanned++
		page.LastSequence = rec.Sequence
		st, err := rec.Stored()
		if err != nil {
			page.Skipped++
			s.logger.Warn().Err(err).Int64("sequence", rec.Sequence).Str("type", string(rec.Type)).Msg("skipping undecodable event")
			continue
		}
		page.Events = append(page.Events, st)
	}
	return page, nil
}

func (s *Store) LatestSequence(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.inTx(ctx) {
		return int64(len(s.records)), nil
	}
	return int64(s.committed), nil
}

func (s *Store) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.inTx(ctx) {
		return ErrResetInTx
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if s.journal != nil {
		if err := s.journal.Truncate(0); err != nil {
			return err
		}
		if err := s.journal.Sync(); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.records = nil
	s.committed = 0
	s.snapshot = nil
	s.mu.Unlock()
	return nil
}

// WithinTx runs fn with appends staged in memory until fn returns nil; only
// then are they written to the journal. Nested calls join the outer
// transaction. Reset is not allowed inside fn.
func (s *Store) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	mark := len(s.records)
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{s}, true)); err != nil {
		s.rollback(mark)
		return err
	}
	s.mu.RLock()
	staged := s.records[mark:len(s.records):len(s.records)]
	s.mu.RUnlock()
	if err := s.persist(staged); err != nil {
		s.rollback(mark)
		return err
	}
	s.mu.Lock()
	s.committed = len(s.records)
	s.mu.Unlock()
	return nil
}

func (s *Store) rollback(mark int) {
	if s.journal != nil {
		if err := s.journal.Truncate(mark); err != nil {
			s.logger.Error().Err(err).Int("mark", mark).Msg("journal rollback failed")
		}
	}
	s.mu.Lock()
	clear(s.records[mark:])
	s.records = s.records[:mark]
	s.mu.Unlock()
}

func (s *Store) SaveSnapshot(ctx context.Context, snap repository.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	snap.Payload = append([]byte(nil), snap.Payload...)
	s.mu.Lock()
	s.snapshot = &snap
	s.mu.Unlock()
	return nil
}

func (s *Store) LatestSnapshot(ctx context.Context) (repository.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return repository.Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return repository.Snapshot{}, repository.ErrNotFound
	}
	return *s.snapshot, nil
}

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }
