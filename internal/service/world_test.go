package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/model"
	"github.com/maxviazov/football-manager-sim/internal/repository/memory"
	"github.com/maxviazov/football-manager-sim/internal/seed"
	"github.com/maxviazov/football-manager-sim/internal/service"
	"github.com/maxviazov/football-manager-sim/internal/simulation"
	"github.com/maxviazov/football-manager-sim/internal/softstate"
)

var (
	start = time.Date(2025, 8, 16, 15, 0, 0, 0, time.UTC)
	clock = func() time.Time { return start.Add(-24 * time.Hour) }
)

// flakyStore fails AppendBatch while fail is set.
type flakyStore struct {
	*memory.Store
	fail bool
}

func (f *flakyStore) AppendBatch(ctx context.Context, events []event.Event) ([]event.Stored, error) {
	if f.fail {
		return nil, errors.New("disk full")
	}
	return f.Store.AppendBatch(ctx, events)
}

type stubProvider struct {
	updates []softstate.Update
	err     error
	seen    int
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Analyze(_ context.Context, events []event.Event, _ *model.World) ([]softstate.Update, error) {
	p.seen = len(events)
	return p.updates, p.err
}

func newService(t *testing.T, store service.Store, provider softstate.Provider) *service.WorldService {
	t.Helper()
	if store == nil {
		store = memory.New(zerolog.Nop())
	}
	return service.NewWorldService(store, provider, simulation.DefaultConfig(), softstate.DefaultMaxDelta, zerolog.Nop(), service.WithClock(clock))
}

func initOpts(teams, leagues int) service.InitOptions {
	return service.InitOptions{
		Options: seed.Options{Name: "Test World", Seed: 7, Leagues: leagues, TeamsPerLeague: teams},
		Start:   start,
	}
}

func TestInitWorld(t *testing.T) {
	ctx := context.Background()
	store := memory.New(zerolog.Nop())
	svc := newService(t, store, softstate.MockProvider{})

	info, err := svc.InitWorld(ctx, initOpts(4, 1))
	require.NoError(t, err)
	assert.Equal(t, "world-7", info.ID)
	assert.Equal(t, 4, info.Teams)
	assert.Equal(t, 4*23, info.Players)
	assert.Equal(t, 12, info.Matches)
	assert.Equal(t, int64(13), info.Sequence, "world_initialized plus one match_scheduled per fixture")

	page, err := svc.Events(ctx, service.EventsRequest{Limit: 1000})
	require.NoError(t, err)
	require.Len(t, page.Events, 13)
	assert.Equal(t, event.TypeWorldInitialized, page.Events[0].Event.Type())
	for _, st := range page.Events[1:] {
		assert.Equal(t, event.TypeMatchScheduled, st.Event.Type())
	}

	snap, err := store.LatestSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(13), snap.Sequence)

	rows, err := svc.Standings(ctx, "lg-1")
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	// a second init replaces the log
	info, err = svc.InitWorld(ctx, initOpts(2, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Sequence)
}

func TestInitWorld_Validation(t *testing.T) {
	svc := newService(t, nil, nil)
	_, err := svc.InitWorld(context.Background(), service.InitOptions{
		Options: seed.Options{Leagues: 9, TeamsPerLeague: 1},
	})
	require.ErrorIs(t, err, service.ErrInvalidInput)

	fields := map[string]bool{}
	for _, fe := range service.FieldErrors(err) {
		fields[fe.Field] = true
	}
	assert.True(t, fields["leagues"])
	assert.True(t, fields["teams_per_league"])
}

func TestNoWorld(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil, nil)

	_, err := svc.AdvanceMatchday(ctx, "lg-1")
	assert.ErrorIs(t, err, service.ErrNoWorld)
	_, err = svc.Standings(ctx, "lg-1")
	assert.ErrorIs(t, err, service.ErrNoWorld)
	_, err = svc.Team(ctx, "lg-1-t01")
	assert.ErrorIs(t, err, service.ErrNoWorld)
	_, err = svc.World()
	assert.ErrorIs(t, err, service.ErrNoWorld)

	seq, err := svc.LatestSequence(ctx)
	require.NoError(t, err)
	assert.Zero(t, seq)
}

func TestAdvanceMatchday(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil, softstate.MockProvider{})
	info, err := svc.InitWorld(ctx, initOpts(4, 1))
	require.NoError(t, err)

	report, err := svc.AdvanceMatchday(ctx, "lg-1")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Matchday)
	assert.Equal(t, 1, report.Season)
	require.Len(t, report.Results, 2)
	assert.Empty(t, report.Failures)
	assert.Empty(t, report.ProviderError)
	assert.Positive(t, report.Applied)
	assert.Equal(t, info.Sequence+1, report.FirstSequence)

	latest, err := svc.LatestSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, latest, report.LastSequence)

	page, err := svc.Events(ctx, service.EventsRequest{AfterSequence: info.Sequence, Limit: 1000})
	require.NoError(t, err)
	counts := map[event.Type]int{}
	for _, st := range page.Events {
		counts[st.Event.Type()]++
	}
	assert.Equal(t, 2, counts[event.TypeMatchStarted])
	assert.Equal(t, 2, counts[event.TypeKickOff])
	assert.Equal(t, 2, counts[event.TypeMatchEnded])
	assert.Equal(t, 2, counts[event.TypeMediaStoryPublished])
	assert.Equal(t, report.Applied, counts[event.TypeSoftStateUpdated])

	// match events precede everything derived from them
	firstDerived := -1
	for i, st := range page.Events {
		if st.Event.Type() == event.TypeSoftStateUpdated {
			firstDerived = i
			break
		}
	}
	require.GreaterOrEqual(t, firstDerived, 0)
	for _, st := range page.Events[firstDerived:] {
		_, scoped := st.Event.(event.MatchScoped)
		assert.False(t, scoped, "match event after soft-state updates: %s", st.Event.Type())
	}

	rows, err := svc.Standings(ctx, "lg-1")
	require.NoError(t, err)
	played, points := 0, 0
	for _, r := range rows {
		played += r.Played
		points += r.Points
	}
	assert.Equal(t, 4, played)
	assert.GreaterOrEqual(t, points, 4)
	assert.LessOrEqual(t, points, 6)

	w, err := svc.World()
	require.NoError(t, err)
	assert.Equal(t, 2, w.Leagues["lg-1"].CurrentMatchday)
}

func TestAdvanceMatchday_Deterministic(t *testing.T) {
	ctx := context.Background()
	play := func() []service.MatchResult {
		svc := newService(t, nil, softstate.MockProvider{})
		_, err := svc.InitWorld(ctx, initOpts(6, 1))
		require.NoError(t, err)
		var out []service.MatchResult
		for range 3 {
			r, err := svc.AdvanceMatchday(ctx, "lg-1")
			require.NoError(t, err)
			out = append(out, r.Results...)
		}
		return out
	}
	assert.Equal(t, play(), play())
}

func TestAdvanceMatchday_FailedFixtureIsIsolated(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil, softstate.MockProvider{})
	_, err := svc.InitWorld(ctx, initOpts(4, 1))
	require.NoError(t, err)

	var broken string
	svc.Mutate(func(w *model.World) {
		m := w.MatchesFor("lg-1", 1, 1)[0]
		broken = m.ID
		w.Teams[m.HomeTeamID].Roster = nil
	})

	report, err := svc.AdvanceMatchday(ctx, "lg-1")
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, broken, report.Failures[0].MatchID)
	assert.Contains(t, report.Failures[0].Error, "lineup")
	assert.Len(t, report.Results, 1)

	w, err := svc.World()
	require.NoError(t, err)
	assert.Equal(t, 1, w.Leagues["lg-1"].CurrentMatchday, "matchday stays open while a fixture is unplayed")
	assert.False(t, w.Matches[broken].Finished)
}

func TestAdvanceMatchday_StorageFailureRestoresWorld(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: memory.New(zerolog.Nop())}
	svc := newService(t, store, softstate.MockProvider{})
	info, err := svc.InitWorld(ctx, initOpts(4, 1))
	require.NoError(t, err)
	before, err := svc.World()
	require.NoError(t, err)

	store.fail = true
	_, err = svc.AdvanceMatchday(ctx, "lg-1")
	require.ErrorContains(t, err, "disk full")

	after, err := svc.World()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	seq, err := svc.LatestSequence(ctx)
	require.NoError(t, err)
	assert.Equal(t, info.Sequence, seq)

	store.fail = false
	report, err := svc.AdvanceMatchday(ctx, "lg-1")
	require.NoError(t, err)
	assert.Len(t, report.Results, 2)
}

func TestAdvanceMatchday_ProviderOutcomes(t *testing.T) {
	ctx := context.Background()

	failing := &stubProvider{err: errors.New("quota exceeded")}
	svc := newService(t, nil, failing)
	_, err := svc.InitWorld(ctx, initOpts(2, 1))
	require.NoError(t, err)
	report, err := svc.AdvanceMatchday(ctx, "lg-1")
	require.NoError(t, err, "provider failure is not fatal")
	assert.Equal(t, "quota exceeded", report.ProviderError)
	assert.Zero(t, report.Applied)
	assert.Positive(t, failing.seen, "provider reads the persisted match events")

	proposing := &stubProvider{updates: []softstate.Update{
		{EntityType: softstate.EntityTeam, EntityID: "lg-1-t01", Deltas: map[string]float64{"board_confidence": 5}, Rationale: "good start"},
		{EntityType: softstate.EntityTeam, EntityID: "lg-1-t01", Deltas: map[string]float64{"wins": 5}},
		{EntityType: softstate.EntityPlayer, EntityID: "nobody", Deltas: map[string]float64{"form": 1}},
	}}
	svc = newService(t, nil, proposing)
	info, err := svc.InitWorld(ctx, initOpts(2, 1))
	require.NoError(t, err)
	before, err := svc.Team(ctx, "lg-1-t01")
	require.NoError(t, err)

	report, err = svc.AdvanceMatchday(ctx, "lg-1")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Applied)
	assert.Equal(t, 2, report.Rejected)

	team, err := svc.Team(ctx, "lg-1-t01")
	require.NoError(t, err)
	assert.Equal(t, before.BoardConfidence+5, team.BoardConfidence)

	page, err := svc.Events(ctx, service.EventsRequest{
		AfterSequence: info.Sequence,
		Types:         []string{"soft_state_updated", "owner_statement"},
	})
	require.NoError(t, err)
	require.Len(t, page.Events, 2)
	upd := page.Events[0].Event.(event.SoftStateUpdated)
	assert.Equal(t, "stub", upd.Provider)
	assert.Equal(t, "good start", upd.Rationale)
	stmt := page.Events[1].Event.(event.OwnerStatement)
	assert.Equal(t, "lg-1-t01", stmt.TeamID)
	assert.Equal(t, team.BoardConfidence, stmt.Confidence)
}

func TestAdvanceMatchday_SeasonRollover(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil, softstate.MockProvider{})
	_, err := svc.InitWorld(ctx, initOpts(2, 2))
	require.NoError(t, err)

	for md := 1; md <= 2; md++ {
		r, err := svc.AdvanceMatchday(ctx, "lg-1")
		require.NoError(t, err)
		assert.False(t, r.SeasonEnded, "lg-2 has not played yet")
	}
	_, err = svc.AdvanceMatchday(ctx, "lg-1")
	require.ErrorIs(t, err, service.ErrSeasonComplete)

	_, err = svc.AdvanceMatchday(ctx, "lg-2")
	require.NoError(t, err)
	r, err := svc.AdvanceMatchday(ctx, "lg-2")
	require.NoError(t, err)
	assert.True(t, r.SeasonEnded)

	w, err := svc.World()
	require.NoError(t, err)
	for _, id := range w.LeagueIDs() {
		l := w.Leagues[id]
		assert.Equal(t, 2, l.Season)
		assert.Equal(t, 1, l.CurrentMatchday)
		assert.Len(t, w.MatchesFor(id, 2, 1), 1, "next season is scheduled")
	}
	for _, t2 := range w.Teams {
		assert.Zero(t, t2.MatchesPlayed)
	}

	r, err = svc.AdvanceMatchday(ctx, "lg-1")
	require.NoError(t, err)
	assert.Equal(t, 2, r.Season)
}

func TestAdvanceMatchday_MonthlySettlesEachTeamOnce(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil, &stubProvider{})
	_, err := svc.InitWorld(ctx, initOpts(4, 2))
	require.NoError(t, err)
	svc.Mutate(func(w *model.World) {
		for _, team := range w.Teams {
			for _, p := range team.Roster {
				p.ContractYears = 1
			}
		}
	})

	for md := 1; md <= 4; md++ {
		for _, id := range []string{"lg-1", "lg-2"} {
			_, err := svc.AdvanceMatchday(ctx, id)
			require.NoError(t, err)
		}
	}

	page, err := svc.Events(ctx, service.EventsRequest{Types: []string{string(event.TypeAgentNegotiation)}, Limit: 1000})
	require.NoError(t, err)
	perTeam := map[string]int{}
	for _, st := range page.Events {
		perTeam[st.Event.(event.AgentNegotiation).TeamID]++
	}
	w, err := svc.World()
	require.NoError(t, err)
	require.Len(t, perTeam, len(w.Teams))
	for id, n := range perTeam {
		assert.Equal(t, 1, n, "team %s", id)
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	store := memory.New(zerolog.Nop())

	fresh := newService(t, store, softstate.MockProvider{})
	ok, err := fresh.Restore(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = fresh.InitWorld(ctx, initOpts(4, 1))
	require.NoError(t, err)
	_, err = fresh.AdvanceMatchday(ctx, "lg-1")
	require.NoError(t, err)
	want, err := fresh.Standings(ctx, "lg-1")
	require.NoError(t, err)

	restarted := newService(t, store, softstate.MockProvider{})
	ok, err = restarted.Restore(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	got, err := restarted.Standings(ctx, "lg-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestQueries_UnknownReferences(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil, nil)
	_, err := svc.InitWorld(ctx, initOpts(2, 1))
	require.NoError(t, err)

	_, err = svc.Standings(ctx, "lg-9")
	assert.ErrorIs(t, err, model.ErrInvalidReference)
	_, err = svc.Team(ctx, "nope")
	assert.ErrorIs(t, err, model.ErrInvalidReference)
	_, err = svc.AdvanceMatchday(ctx, "lg-9")
	assert.ErrorIs(t, err, model.ErrInvalidReference)

	team, err := svc.Team(ctx, "lg-1-t01")
	require.NoError(t, err)
	team.Roster[0].Form = -500
	again, err := svc.Team(ctx, "lg-1-t01")
	require.NoError(t, err)
	assert.NotEqual(t, -500, again.Roster[0].Form, "Team returns a copy")
}

func TestEvents_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil, nil)

	cases := []struct {
		name  string
		req   service.EventsRequest
		field string
	}{
		{"negative cursor", service.EventsRequest{AfterSequence: -1}, "after_sequence"},
		{"limit too large", service.EventsRequest{Limit: 5000}, "limit"},
		{"negative limit", service.EventsRequest{Limit: -1}, "limit"},
		{"unknown type", service.EventsRequest{Types: []string{"goal", "touchdown"}}, "types"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Events(ctx, tc.req)
			require.ErrorIs(t, err, service.ErrInvalidInput)
			fes := service.FieldErrors(err)
			require.Len(t, fes, 1)
			assert.Equal(t, tc.field, fes[0].Field)
		})
	}

	page, err := svc.Events(ctx, service.EventsRequest{Types: []string{" Goal ", ""}})
	require.NoError(t, err)
	assert.Empty(t, page.Events)
}

func TestEvents_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, nil, nil)
	_, err := svc.InitWorld(ctx, initOpts(12, 1))
	require.NoError(t, err)

	page, err := svc.Events(ctx, service.EventsRequest{})
	require.NoError(t, err)
	assert.Len(t, page.Events, 100)

	page, err = svc.Events(ctx, service.EventsRequest{AfterSequence: 100, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, int64(101), page.Events[0].Sequence)
}
