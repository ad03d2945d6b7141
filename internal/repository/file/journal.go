package file

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/maxviazov/football-manager-sim/internal/event"
)

// ErrCorrupt is returned by Open when a complete line in the log cannot be parsed
// or sequences are not contiguous.
var ErrCorrupt = errors.New("corrupt event log")

// journal appends one JSON record per line. ends[i] is the file offset just
// past record i.
type journal struct {
	f    *os.File
	ends []int64
}

// openJournal reads every record in path. A torn final line, left by a crash
// mid-write, is truncated away.
func openJournal(path string, logger zerolog.Logger) (*journal, []event.Record, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open event log: %w", err)
	}
	j := &journal{f: f}
	recs, err := j.load(logger)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return j, recs, nil
}

func (j *journal) load(logger zerolog.Logger) ([]event.Record, error) {
	r := bufio.NewReader(j.f)
	var (
		recs   []event.Record
		offset int64
	)
	for lineNo := 1; ; lineNo++ {
		line, err := r.ReadBytes('\n')
		if errors.Is(err, io.EOF) {
			if len(bytes.TrimSpace(line)) > 0 {
				logger.Warn().Int("line", lineNo).Int("bytes", len(line)).Msg("truncating torn tail of event log")
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read event log: %w", err)
		}
		var rec event.Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrCorrupt, lineNo, err)
		}
		if rec.Sequence != int64(len(recs))+1 {
			return nil, fmt.Errorf("%w: line %d has sequence %d, want %d", ErrCorrupt, lineNo, rec.Sequence, len(recs)+1)
		}
		offset += int64(len(line))
		recs = append(recs, rec)
		j.ends = append(j.ends, offset)
	}
	if err := j.cut(offset); err != nil {
		return nil, err
	}
	return recs, nil
}

func (j *journal) Write(recs []event.Record) error {
	start := j.size()
	var buf bytes.Buffer
	ends := make([]int64, 0, len(recs))
	for _, rec := range recs {
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record %d: %w", rec.Sequence, err)
		}
		buf.Write(b)
		buf.WriteByte('\n')
		ends = append(ends, start+int64(buf.Len()))
	}
	if _, err := j.f.Write(buf.Bytes()); err != nil {
		if cerr := j.cut(start); cerr != nil {
			return errors.Join(fmt.Errorf("write event log: %w", err), cerr)
		}
		return fmt.Errorf("write event log: %w", err)
	}
	j.ends = append(j.ends, ends...)
	return nil
}

func (j *journal) Truncate(n int) error {
	if n >= len(j.ends) {
		return nil
	}
	var off int64
	if n > 0 {
		off = j.ends[n-1]
	}
	if err := j.cut(off); err != nil {
		return err
	}
	j.ends = j.ends[:n]
	return nil
}

func (j *journal) Sync() error {
	if err := j.f.Sync(); err != nil {
		return fmt.Errorf("sync event log: %w", err)
	}
	return nil
}

func (j *journal) Close() error { return j.f.Close() }

func (j *journal) size() int64 {
	if len(j.ends) == 0 {
		return 0
	}
	return j.ends[len(j.ends)-1]
}

func (j *journal) cut(off int64) error {
	if err := j.f.Truncate(off); err != nil {
		return fmt.Errorf("truncate event log: %w", err)
	}
	if _, err := j.f.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("seek event log: %w", err)
	}
	return nil
}
