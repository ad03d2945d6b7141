package memory

import "github.com/maxviazov/football-manager-sim/internal/event"

// AppendRecord stores a raw record as-is, bypassing the codec.
func (s *Store) AppendRecord(rec event.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.Sequence = int64(len(s.records)) + 1
	s.records = append(s.records, rec)
	s.committed = len(s.records)
}
