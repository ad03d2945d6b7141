package memory_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/repository"
	"github.com/maxviazov/football-manager-sim/internal/repository/contract"
	"github.com/maxviazov/football-manager-sim/internal/repository/memory"
)

func newStore(t *testing.T) *memory.Store {
	t.Helper()
	return memory.New(zerolog.Nop())
}

func TestEventStore_MemoryContract(t *testing.T) {
	contract.RunEventStoreContract(t, func(t *testing.T) (repository.EventStore, func()) {
		return newStore(t), func() {}
	})
}

func TestSkippedRecords_MemoryContract(t *testing.T) {
	contract.RunSkippedRecordsContract(t, func(t *testing.T, recs []event.Record) (repository.EventStore, func()) {
		return memory.New(zerolog.Nop(), memory.WithRecords(recs)), func() {}
	})
}

func TestSnapshotStore_MemoryContract(t *testing.T) {
	contract.RunSnapshotStoreContract(t, func(t *testing.T) (repository.SnapshotStore, func()) {
		return newStore(t), func() {}
	})
}

func TestTxManager_MemoryContract(t *testing.T) {
	contract.RunTxManagerContract(t, func(t *testing.T) (repository.TxManager, repository.EventStore, func()) {
		s := newStore(t)
		return s, s, func() {}
	})
}

func TestPinger_MemoryContract(t *testing.T) {
	contract.RunPingerContract(t, func(t *testing.T) (repository.Pinger, func()) {
		return newStore(t), func() {}
	})
}

func TestUnknownTypeIsSkippedAndCounted(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	_, err := s.Append(ctx, event.OwnerStatement{Header: event.NewHeader(time.Now()), TeamID: "a", Statement: "calm", Confidence: 50})
	require.NoError(t, err)
	s.AppendRecord(event.Record{ID: uuid.New(), Type: "transfer_completed", Timestamp: time.Now(), Payload: json.RawMessage(`{}`)})
	s.AppendRecord(event.Record{ID: uuid.New(), Type: event.TypeGoal, Timestamp: time.Now(), Payload: json.RawMessage(`{"minute":`)})
	_, err = s.Append(ctx, event.OwnerStatement{Header: event.NewHeader(time.Now()), TeamID: "b", Statement: "worried", Confidence: 30})
	require.NoError(t, err)

	page, err := s.Events(ctx, repository.EventQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Skipped)
	require.Len(t, page.Events, 2)
	assert.Equal(t, int64(1), page.Events[0].Sequence)
	assert.Equal(t, int64(4), page.Events[1].Sequence)
}

func TestResetInsideTxIsRejected(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	_, err := s.Append(ctx, event.OwnerStatement{Header: event.NewHeader(time.Now()), TeamID: "a"})
	require.NoError(t, err)

	err = s.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.Append(ctx, event.OwnerStatement{Header: event.NewHeader(time.Now()), TeamID: "b"}); err != nil {
			return err
		}
		return s.Reset(ctx)
	})
	require.ErrorIs(t, err, memory.ErrResetInTx)

	latest, err := s.LatestSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), latest, "rollback keeps the committed record")
	st, err := s.Append(ctx, event.OwnerStatement{Header: event.NewHeader(time.Now()), TeamID: "c"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.Sequence)
}

func TestUncommittedAppendsAreInvisibleOutsideTx(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error)

	go func() {
		done <- s.WithinTx(ctx, func(ctx context.Context) error {
			if _, err := s.Append(ctx, event.OwnerStatement{Header: event.NewHeader(time.Now())}); err != nil {
				return err
			}
			inside, _ := s.LatestSequence(ctx)
			assert.Equal(t, int64(1), inside)
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered
	page, err := s.Events(ctx, repository.EventQuery{})
	require.NoError(t, err)
	assert.Empty(t, page.Events)
	close(release)
	require.NoError(t, <-done)

	latest, err := s.LatestSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), latest)
}
