// Package contract holds behaviour suites every store implementation must pass.
package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/repository"
)

type EventStoreFactory func(t *testing.T) (repository.EventStore, func())

type SnapshotFactory func(t *testing.T) (repository.SnapshotStore, func())

type TxFactory func(t *testing.T) (tx repository.TxManager, store repository.EventStore, cleanup func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

// SeededEventStoreFactory returns a store already holding recs as-is at
// sequences 1..len(recs), bypassing the codec.
type SeededEventStoreFactory func(t *testing.T, recs []event.Record) (repository.EventStore, func())

var base = time.Date(2026, 8, 15, 15, 0, 0, 0, time.UTC)

func goal(minute int) event.Event {
	return event.Goal{
		MatchHeader: event.MatchHeader{
			Header:  event.Header{ID: uuid.New(), Timestamp: base.Add(time.Duration(minute) * time.Minute)},
			MatchID: "m-1", Minute: minute, HomeScore: 1,
		},
		TeamID: "home", ScorerID: "p9", AssistID: "p10",
	}
}

func foul(minute int) event.Event {
	return event.Foul{
		MatchHeader: event.MatchHeader{
			Header:  event.Header{ID: uuid.New(), Timestamp: base.Add(time.Duration(minute) * time.Minute)},
			MatchID: "m-1", Minute: minute,
		},
		TeamID: "away", PlayerID: "p4", VictimID: "p9", Location: "midfield", Severity: "careless",
	}
}

func mustAppend(t *testing.T, s repository.EventStore, events ...event.Event) []event.Stored {
	t.Helper()
	out, err := s.AppendBatch(context.Background(), events)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	return out
}

func sequences(page repository.EventPage) []int64 {
	out := make([]int64, 0, len(page.Events))
	for _, e := range page.Events {
		out = append(out, e.Sequence)
	}
	return out
}

func equal(a, b []int64) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func RunEventStoreContract(t *testing.T, makeStore EventStoreFactory) {
	t.Helper()

	t.Run("empty_store", func(t *testing.T) {
		s, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		seq, err := s.LatestSequence(ctx)
		if err != nil || seq != 0 {
			t.Fatalf("expected latest 0, got %d (%v)", seq, err)
		}
		page, err := s.Events(ctx, repository.EventQuery{})
		if err != nil || len(page.Events) != 0 {
			t.Fatalf("expected no events, got %d (%v)", len(page.Events), err)
		}
		if err := s.Reset(ctx); err != nil {
			t.Fatalf("reset on empty store: %v", err)
		}
	})

	t.Run("sequences_start_at_one_and_increase", func(t *testing.T) {
		s, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		first, err := s.Append(ctx, goal(3))
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		if first.Sequence != 1 {
			t.Fatalf("expected sequence 1, got %d", first.Sequence)
		}
		batch := mustAppend(t, s, foul(4), foul(5), goal(6))
		if got := []int64{batch[0].Sequence, batch[1].Sequence, batch[2].Sequence}; !equal(got, []int64{2, 3, 4}) {
			t.Fatalf("unexpected batch sequences %v", got)
		}
		latest, _ := s.LatestSequence(ctx)
		if latest != 4 {
			t.Fatalf("expected latest 4, got %d", latest)
		}
		page, err := s.Events(ctx, repository.EventQuery{})
		if err != nil {
			t.Fatalf("events: %v", err)
		}
		if !equal(sequences(page), []int64{1, 2, 3, 4}) {
			t.Fatalf("events out of order: %v", sequences(page))
		}
	})

	t.Run("payload_round_trip", func(t *testing.T) {
		s, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		in := goal(17).(event.Goal)
		in.Penalty = true
		in.LinkedEventID = uuid.New()
		mustAppend(t, s, in)
		page, err := s.Events(context.Background(), repository.EventQuery{})
		if err != nil || len(page.Events) != 1 {
			t.Fatalf("events: %v (%d)", err, len(page.Events))
		}
		out, ok := page.Events[0].Event.(event.Goal)
		if !ok {
			t.Fatalf("expected Goal, got %T", page.Events[0].Event)
		}
		if out.ID != in.ID || out.LinkedEventID != in.LinkedEventID || !out.Penalty || out.Minute != 17 || !out.Timestamp.Equal(in.Timestamp) {
			t.Fatalf("payload mismatch: %+v vs %+v", out, in)
		}
	})

	t.Run("cursor_is_exact_suffix", func(t *testing.T) {
		s, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for i := 0; i < 6; i++ {
			mustAppend(t, s, foul(i))
		}
		for k := int64(0); k <= 6; k++ {
			page, err := s.Events(ctx, repository.EventQuery{AfterSequence: k})
			if err != nil {
				t.Fatalf("events after %d: %v", k, err)
			}
			if int64(len(page.Events)) != 6-k {
				t.Fatalf("after %d: expected %d events, got %d", k, 6-k, len(page.Events))
			}
			for i, e := range page.Events {
				if e.Sequence != k+int64(i)+1 {
					t.Fatalf("after %d: gap at %d (%d)", k, i, e.Sequence)
				}
			}
		}
	})

	t.Run("filters_combine", func(t *testing.T) {
		s, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		mustAppend(t, s, goal(1), foul(2), goal(3), foul(4), goal(5))

		page, err := s.Events(ctx, repository.EventQuery{Types: []event.Type{event.TypeGoal}})
		if err != nil || !equal(sequences(page), []int64{1, 3, 5}) {
			t.Fatalf("type filter: %v %v", sequences(page), err)
		}
		page, err = s.Events(ctx, repository.EventQuery{Types: []event.Type{event.TypeGoal}, AfterSequence: 1})
		if err != nil || !equal(sequences(page), []int64{3, 5}) {
			t.Fatalf("type+cursor filter: %v %v", sequences(page), err)
		}
		page, err = s.Events(ctx, repository.EventQuery{Limit: 2, AfterSequence: 2})
		if err != nil || !equal(sequences(page), []int64{3, 4}) {
			t.Fatalf("limit: %v %v", sequences(page), err)
		}
		page, err = s.Events(ctx, repository.EventQuery{Types: []event.Type{event.TypeOwnerStatement}})
		if err != nil || len(page.Events) != 0 {
			t.Fatalf("no match expected, got %v %v", sequences(page), err)
		}
	})

	t.Run("reset_restarts_sequence", func(t *testing.T) {
		s, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		mustAppend(t, s, goal(1), foul(2))
		if err := s.Reset(ctx); err != nil {
			t.Fatalf("reset: %v", err)
		}
		latest, _ := s.LatestSequence(ctx)
		if latest != 0 {
			t.Fatalf("expected 0 after reset, got %d", latest)
		}
		st, err := s.Append(ctx, foul(3))
		if err != nil || st.Sequence != 1 {
			t.Fatalf("expected sequence 1 after reset, got %d (%v)", st.Sequence, err)
		}
	})

	t.Run("concurrent_appends_unique_sequences", func(t *testing.T) {
		s, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		const workers, perWorker = 6, 8
		var wg sync.WaitGroup
		errs := make(chan error, workers*perWorker)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < perWorker; i++ {
					if _, err := s.Append(ctx, foul(i)); err != nil {
						errs <- err
					}
				}
			}()
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Fatalf("concurrent append: %v", err)
		}
		page, err := s.Events(ctx, repository.EventQuery{})
		if err != nil {
			t.Fatalf("events: %v", err)
		}
		if len(page.Events) != workers*perWorker {
			t.Fatalf("expected %d events, got %d", workers*perWorker, len(page.Events))
		}
		for i, e := range page.Events {
			if e.Sequence != int64(i+1) {
				t.Fatalf("sequence gap or duplicate at %d: %d", i, e.Sequence)
			}
		}
	})

	t.Run("canceled_context", func(t *testing.T) {
		s, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := s.Append(ctx, foul(1)); err == nil {
			t.Fatalf("expected error on canceled context")
		}
		latest, _ := s.LatestSequence(context.Background())
		if latest != 0 {
			t.Fatalf("canceled append must not store, latest=%d", latest)
		}
	})
}

func unknownRecord(seq int64) event.Record {
	return event.Record{
		Sequence: seq, ID: uuid.New(), Type: "transfer_completed",
		Timestamp: base, Payload: json.RawMessage(`{"fee":1}`),
	}
}

func RunSkippedRecordsContract(t *testing.T, makeStore SeededEventStoreFactory) {
	t.Helper()

	t.Run("cursor_moves_past_unknown_records", func(t *testing.T) {
		const limit = 3
		var recs []event.Record
		for i := int64(1); i <= limit+1; i++ {
			recs = append(recs, unknownRecord(i))
		}
		valid, err := event.NewRecord(limit+2, goal(50))
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		recs = append(recs, valid)
		s, cleanup := makeStore(t, recs)
		t.Cleanup(cleanup)
		ctx := context.Background()

		first, err := s.Events(ctx, repository.EventQuery{Limit: limit})
		if err != nil {
			t.Fatalf("events: %v", err)
		}
		if len(first.Events) != 0 || first.Skipped != limit || first.LastSequence != limit {
			t.Fatalf("first page: %d events, %d skipped, last %d", len(first.Events), first.Skipped, first.LastSequence)
		}

		var (
			after   int64
			skipped int
			got     []event.Stored
		)
		for range len(recs) + 1 {
			page, err := s.Events(ctx, repository.EventQuery{AfterSequence: after, Limit: limit})
			if err != nil {
				t.Fatalf("events after %d: %v", after, err)
			}
			if page.LastSequence == after {
				break
			}
			skipped += page.Skipped
			got = append(got, page.Events...)
			after = page.LastSequence
		}
		if after != int64(len(recs)) || skipped != limit+1 || len(got) != 1 || got[0].Sequence != limit+2 {
			t.Fatalf("tail ended at %d with %d skipped and %d events", after, skipped, len(got))
		}
	})

	t.Run("empty_page_keeps_cursor", func(t *testing.T) {
		s, cleanup := makeStore(t, []event.Record{unknownRecord(1)})
		t.Cleanup(cleanup)
		page, err := s.Events(context.Background(), repository.EventQuery{AfterSequence: 1})
		if err != nil || page.LastSequence != 1 || len(page.Events) != 0 {
			t.Fatalf("expected cursor 1 and no events, got %+v (%v)", page, err)
		}
	})
}

func RunSnapshotStoreContract(t *testing.T, makeStore SnapshotFactory) {
	t.Helper()

	t.Run("latest_not_found", func(t *testing.T) {
		s, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		_, err := s.LatestSnapshot(context.Background())
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("latest_wins", func(t *testing.T) {
		s, cleanup := makeStore(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		first := repository.Snapshot{ID: uuid.New(), Timestamp: base, Sequence: 3, Payload: []byte(`{"id":"w1"}`)}
		second := repository.Snapshot{ID: uuid.New(), Timestamp: base.Add(time.Hour), Sequence: 9, Payload: []byte(`{"id":"w2"}`)}
		for _, snap := range []repository.Snapshot{first, second} {
			if err := s.SaveSnapshot(ctx, snap); err != nil {
				t.Fatalf("save: %v", err)
			}
		}
		got, err := s.LatestSnapshot(ctx)
		if err != nil {
			t.Fatalf("latest: %v", err)
		}
		var payload map[string]string
		if err := json.Unmarshal(got.Payload, &payload); err != nil {
			t.Fatalf("payload is not JSON: %v", err)
		}
		if got.ID != second.ID || got.Sequence != 9 || payload["id"] != "w2" {
			t.Fatalf("unexpected snapshot %+v", got)
		}
	})
}

func RunTxManagerContract(t *testing.T, makeTx TxFactory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		tx, store, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			_, err := store.AppendBatch(ctx, []event.Event{goal(1), foul(2)})
			return err
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		latest, _ := store.LatestSequence(ctx)
		if latest != 2 {
			t.Fatalf("expected committed events visible, latest=%d", latest)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		tx, store, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		mustAppend(t, store, goal(1))
		errMarker := errors.New("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := store.Append(ctx, foul(2)); err != nil {
				return err
			}
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		latest, _ := store.LatestSequence(ctx)
		if latest != 1 {
			t.Fatalf("expected rollback to leave latest 1, got %d", latest)
		}
		st, err := store.Append(ctx, foul(3))
		if err != nil || st.Sequence != 2 {
			t.Fatalf("expected sequence 2 after rollback, got %d (%v)", st.Sequence, err)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}
