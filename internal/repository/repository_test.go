package repository_test

import (
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/maxviazov/football-manager-sim/internal/config"
	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/repository"
)

func TestMapPgError(t *testing.T) {
	assert.NoError(t, repository.MapPgError(nil))
	assert.ErrorIs(t, repository.MapPgError(&pgconn.PgError{Code: pgerrcode.UniqueViolation}), repository.ErrAlreadyExists)
	assert.ErrorIs(t, repository.MapPgError(&pgconn.PgError{Code: pgerrcode.SerializationFailure}), repository.ErrConflict)

	other := errors.New("disk on fire")
	assert.Same(t, other, repository.MapPgError(other))
}

func TestEventQuery_Matches(t *testing.T) {
	q := repository.EventQuery{AfterSequence: 3, Types: []event.Type{event.TypeGoal, event.TypeRedCard}}
	assert.False(t, q.Matches(3, event.TypeGoal), "cursor is exclusive")
	assert.True(t, q.Matches(4, event.TypeGoal))
	assert.False(t, q.Matches(5, event.TypeFoul))
	assert.True(t, repository.EventQuery{}.Matches(1, event.TypeFoul))
}

func TestDSN_EscapesCredentials(t *testing.T) {
	dsn := repository.DSN(config.PostgresConfig{Host: "db", Port: 5433, User: "sim", Password: "p@ss/word", DBName: "football", SSLMode: "disable"})
	assert.Equal(t, "postgres://sim:p%40ss%2Fword@db:5433/football?sslmode=disable", dsn)
}
