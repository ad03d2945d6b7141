package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/repository"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

// EventsRequest is a page request over the event log.
type EventsRequest struct {
	Types         []string `json:"types"`
	AfterSequence int64    `json:"after_sequence"`
	Limit         int      `json:"limit"`
}

func normalizeEvents(req EventsRequest) (repository.EventQuery, error) {
	var ferrs []FieldError
	q := repository.EventQuery{AfterSequence: req.AfterSequence, Limit: req.Limit}
	if req.AfterSequence < 0 {
		ferrs = append(ferrs, FieldError{Field: "after_sequence", Message: "must be >= 0"})
	}
	switch {
	case req.Limit < 0 || req.Limit > maxEventLimit:
		ferrs = append(ferrs, FieldError{Field: "limit", Message: fmt.Sprintf("must be between 1 and %d", maxEventLimit)})
	case req.Limit == 0:
		q.Limit = defaultEventLimit
	}
	for _, raw := range req.Types {
		t := event.Type(strings.ToLower(strings.TrimSpace(raw)))
		if t == "" {
			continue
		}
		if !event.Known(t) {
			ferrs = append(ferrs, FieldError{Field: "types", Message: fmt.Sprintf("unknown event type %q", raw)})
			continue
		}
		q.Types = append(q.Types, t)
	}
	if err := newInvalidInput(ferrs); err != nil {
		return repository.EventQuery{}, err
	}
	return q, nil
}

// Events pages through the log in sequence order. It does not need a world,
// only a store.
func (s *WorldService) Events(ctx context.Context, req EventsRequest) (repository.EventPage, error) {
	q, err := normalizeEvents(req)
	if err != nil {
		s.log.Debug().Interface("field_errors", FieldErrors(err)).Msg("events validation failed")
		return repository.EventPage{}, err
	}
	page, err := s.store.Events(ctx, q)
	if err != nil {
		s.log.Error().Err(err).Int64("after", q.AfterSequence).Msg("read events failed")
		return repository.EventPage{}, err
	}
	return page, nil
}

func (s *WorldService) LatestSequence(ctx context.Context) (int64, error) {
	seq, err := s.store.LatestSequence(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("read latest sequence failed")
		return 0, err
	}
	return seq, nil
}
