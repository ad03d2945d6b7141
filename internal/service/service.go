// Package service holds the use cases of the simulation: building a world,
// advancing matchdays and answering queries over the world and the event log.
// Kept lean: orchestration, validation and domain error shaping only.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/maxviazov/football-manager-sim/internal/model"
	"github.com/maxviazov/football-manager-sim/internal/repository"
	"github.com/maxviazov/football-manager-sim/internal/seed"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// ErrNoWorld is returned by every use case that needs a world before one was
// initialized or restored.
var ErrNoWorld = errors.New("world not initialized")

// ErrSeasonComplete is returned when a league has played its season and waits
// for the other leagues before the season rolls over.
var ErrSeasonComplete = errors.New("season complete")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// newInvalidInput builds an aggregated validation error if any field errors are present.
func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 {
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	var v feIface
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// Store is everything the service needs from persistence.
type Store interface {
	repository.EventStore
	repository.SnapshotStore
	repository.TxManager
}

// Simulator defines the world use cases consumed by transports.
type Simulator interface {
	InitWorld(ctx context.Context, opts InitOptions) (WorldInfo, error)
	AdvanceMatchday(ctx context.Context, leagueID string) (MatchdayReport, error)
	Standings(ctx context.Context, leagueID string) ([]model.StandingRow, error)
	Team(ctx context.Context, teamID string) (model.Team, error)
	Events(ctx context.Context, req EventsRequest) (repository.EventPage, error)
	LatestSequence(ctx context.Context) (int64, error)
}

var _ Simulator = (*WorldService)(nil)

// InitOptions are the parameters of a new world.
type InitOptions struct {
	seed.Options
	// Start is the kick-off time of the first matchday; zero means now.
	Start time.Time `json:"start"`
}
