// Package file implements the event store as a JSON-lines log on local disk,
// with the latest world snapshot kept next to it. It also reads and writes
// standalone YAML world files.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maxviazov/football-manager-sim/internal/repository"
	"github.com/maxviazov/football-manager-sim/internal/repository/memory"
)

// Store serves reads from an in-memory mirror and fsyncs every committed append.
type Store struct {
	*memory.Store
	journal      *journal
	snapshotPath string
	logger       zerolog.Logger
}

var (
	_ repository.EventStore    = (*Store)(nil)
	_ repository.SnapshotStore = (*Store)(nil)
	_ repository.TxManager     = (*Store)(nil)
)

// Open loads (or creates) the log at path.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	l := logger.With().Str("module", "repository").Str("component", "file_store").Str("path", path).Logger()

	j, recs, err := openJournal(path, l)
	if err != nil {
		return nil, err
	}
	l.Debug().Int("records", len(recs)).Msg("event log opened")

	return &Store{
		Store:        memory.New(logger, memory.WithJournal(j), memory.WithRecords(recs)),
		journal:      j,
		snapshotPath: path + ".snapshot.json",
		logger:       l,
	}, nil
}

func (s *Store) Close() error { return s.journal.Close() }

func (s *Store) Reset(ctx context.Context) error {
	if err := s.Store.Reset(ctx); err != nil {
		return err
	}
	if err := os.Remove(s.snapshotPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove snapshot: %w", err)
	}
	return nil
}

type snapshotFile struct {
	ID        uuid.UUID       `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Sequence  int64           `json:"sequence_number"`
	Payload   json.RawMessage `json:"payload"`
}

// SaveSnapshot replaces the snapshot file atomically. Payload must be JSON.
func (s *Store) SaveSnapshot(ctx context.Context, snap repository.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !json.Valid(snap.Payload) {
		return errors.New("snapshot payload is not valid JSON")
	}
	b, err := json.Marshal(snapshotFile{ID: snap.ID, Timestamp: snap.Timestamp, Sequence: snap.Sequence, Payload: snap.Payload})
	if err != nil {
		return err
	}
	return writeAtomic(s.snapshotPath, b)
}

func (s *Store) LatestSnapshot(ctx context.Context) (repository.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return repository.Snapshot{}, err
	}
	b, err := os.ReadFile(s.snapshotPath)
	if errors.Is(err, os.ErrNotExist) {
		return repository.Snapshot{}, repository.ErrNotFound
	}
	if err != nil {
		return repository.Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	var sf snapshotFile
	if err := json.Unmarshal(b, &sf); err != nil {
		return repository.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return repository.Snapshot{ID: sf.ID, Timestamp: sf.Timestamp, Sequence: sf.Sequence, Payload: sf.Payload}, nil
}

func writeAtomic(path string, b []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
