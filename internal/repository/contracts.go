// Package repository declares the storage contracts of the simulation: the
// append-only event store, world snapshots and transaction boundaries.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/maxviazov/football-manager-sim/internal/event"
)

// Pinger represents a minimal readiness probe capability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for stores that support it.
// Appends made through a store inside fn commit or roll back together.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// EventQuery filters a read. All set filters must match.
type EventQuery struct {
	// Types restricts the result to the given discriminators; empty means all.
	Types []event.Type
	// AfterSequence returns only events with a strictly greater sequence.
	AfterSequence int64
	// Limit caps the number of returned events; 0 means no cap.
	Limit int
}

// Matches reports whether a record with the given sequence and type passes the
// sequence and type filters.
func (q EventQuery) Matches(seq int64, t event.Type) bool {
	if seq <= q.AfterSequence {
		return false
	}
	if len(q.Types) == 0 {
		return true
	}
	for _, want := range q.Types {
		if want == t {
			return true
		}
	}
	return false
}

// EventPage is the result of a read. Skipped counts stored records that could
// not be decoded (unknown discriminator or malformed payload). Limit counts
// every matching record read, decoded or skipped.
//
// LastSequence is the cursor for the next read: the sequence of the last
// record read, whether or not it decoded, or the query's AfterSequence when
// nothing matched.
type EventPage struct {
	Events       []event.Stored
	Skipped      int
	LastSequence int64
}

// EventStore is the append-only, globally ordered log of events.
// Sequence numbers start at 1, increase by one per append and are never reused
// until Reset.
type EventStore interface {
	Append(ctx context.Context, e event.Event) (event.Stored, error)
	// AppendBatch stores events in order, all or nothing.
	AppendBatch(ctx context.Context, events []event.Event) ([]event.Stored, error)
	Events(ctx context.Context, q EventQuery) (EventPage, error)
	// LatestSequence returns 0 for an empty store.
	LatestSequence(ctx context.Context) (int64, error)
	Reset(ctx context.Context) error
}

// Snapshot is a serialized world taken after the event at Sequence was applied.
type Snapshot struct {
	ID        uuid.UUID
	Timestamp time.Time
	Sequence  int64
	Payload   []byte
}

// SnapshotStore keeps world snapshots; only the latest one is ever read back.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, s Snapshot) error
	// LatestSnapshot returns ErrNotFound when no snapshot was saved.
	LatestSnapshot(ctx context.Context) (Snapshot, error)
}
