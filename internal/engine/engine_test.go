package engine_test

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/football-manager-sim/internal/engine"
	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/model"
	"github.com/maxviazov/football-manager-sim/internal/simulation"
)

var positions = []model.Position{
	model.GK, model.CB, model.CB, model.LB, model.RB, model.CM, model.CM, model.CAM,
	model.LW, model.RW, model.ST, model.GK, model.CB, model.CM, model.ST, model.LM,
}

func buildWorld(teamIDs ...string) *model.World {
	w := model.NewWorld("w", "Engine World", 99)
	for ti, id := range teamIDs {
		t := &model.Team{ID: id, Name: "Team " + id, Stadium: model.Stadium{Name: id + " Ground", Capacity: 20000}}
		for i, pos := range positions {
			v := 45 + ti*4 + (i*11)%30
			t.Roster = append(t.Roster, &model.Player{
				ID: fmt.Sprintf("%s-%02d", id, i), Name: fmt.Sprintf("%s %d", id, i), TeamID: id, Position: pos,
				Age: 24, PeakAge: 27, Pace: v, Shooting: v, Passing: v, Defending: v, Physicality: v,
				Form: 55, Morale: 55, Fitness: 95, Sharpness: 50, Reputation: 40,
			})
		}
		w.Teams[id] = t
	}
	return w
}

func addMatch(w *model.World, id, home, away string, seed int64) *model.Match {
	m := &model.Match{ID: id, HomeTeamID: home, AwayTeamID: away, Seed: seed, ScheduledAt: time.Date(2025, 8, 9, 15, 0, 0, 0, time.UTC)}
	w.Matches[id] = m
	return m
}

func newEngine(w *model.World, cfg simulation.Config) *engine.Engine {
	return engine.New(w, cfg, zerolog.New(io.Discard))
}

func TestPlayMatch_UnknownAndFinished(t *testing.T) {
	w := buildWorld("a", "b")
	m := addMatch(w, "m1", "a", "b", 1)
	e := newEngine(w, simulation.DefaultConfig())

	_, err := e.PlayMatch("missing", nil)
	assert.ErrorIs(t, err, model.ErrInvalidReference)

	_, err = e.PlayMatch(m.ID, nil)
	require.NoError(t, err)
	_, err = e.PlayMatch(m.ID, nil)
	assert.ErrorIs(t, err, model.ErrMatchFinished)
	assert.Equal(t, 1, w.Teams["a"].MatchesPlayed, "result folded once")
}

func TestPlayMatch_UsesMatchSeed(t *testing.T) {
	play := func(seed *int64) []byte {
		w := buildWorld("a", "b")
		addMatch(w, "m1", "a", "b", 1234)
		events, err := newEngine(w, simulation.DefaultConfig()).PlayMatch("m1", seed)
		require.NoError(t, err)
		var out []byte
		for _, ev := range events {
			b, err := event.Encode(ev)
			require.NoError(t, err)
			out = append(out, b...)
		}
		return out
	}
	explicit := int64(1234)
	assert.Equal(t, play(&explicit), play(nil))
}

func TestPlayMatch_AggregatesAndHeadToHead(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	w := buildWorld(ids...)
	e := newEngine(w, simulation.DefaultConfig())

	type score struct{ home, away int }
	results := map[string]score{}
	n := 0
	for round := 0; round < 3; round++ {
		for _, h := range ids {
			for _, a := range ids {
				if h == a {
					continue
				}
				n++
				m := addMatch(w, fmt.Sprintf("m%03d", n), h, a, int64(n*17))
				_, err := e.PlayMatch(m.ID, nil)
				require.NoError(t, err)
				results[m.ID] = score{m.HomeScore, m.AwayScore}
			}
		}
	}

	for _, id := range ids {
		team := w.Teams[id]
		var gf, ga, clean int
		for mid, s := range results {
			m := w.Matches[mid]
			switch id {
			case m.HomeTeamID:
				gf, ga = gf+s.home, ga+s.away
				if s.away == 0 {
					clean++
				}
			case m.AwayTeamID:
				gf, ga = gf+s.away, ga+s.home
				if s.home == 0 {
					clean++
				}
			}
		}
		assert.Equal(t, 18, team.MatchesPlayed)
		assert.Equal(t, team.MatchesPlayed, team.Wins+team.Draws+team.Losses)
		assert.Equal(t, team.Wins, team.HomeWins+team.AwayWins)
		assert.Equal(t, team.Draws, team.HomeDraws+team.AwayDraws)
		assert.Equal(t, team.Losses, team.HomeLosses+team.AwayLosses)
		assert.Equal(t, gf, team.GoalsFor)
		assert.Equal(t, ga, team.GoalsAgainst)
		assert.Equal(t, clean, team.CleanSheets)
		assert.LessOrEqual(t, len(team.RecentForm), 5)

		for _, other := range ids {
			if other == id {
				continue
			}
			mine, theirs := team.HeadToHead[other], w.Teams[other].HeadToHead[id]
			assert.Equal(t, mine.W, theirs.L, "%s v %s", id, other)
			assert.Equal(t, mine.D, theirs.D, "%s v %s", id, other)
			assert.Equal(t, mine.L, theirs.W, "%s v %s", id, other)
		}
	}
}

func TestPlayMatch_GoallessDrawResetsStreak(t *testing.T) {
	w := buildWorld("a", "b")
	w.Teams["a"].CurrentStreak = 4
	w.Teams["b"].CurrentStreak = -2
	addMatch(w, "m1", "a", "b", 1)

	cfg := simulation.DefaultConfig()
	cfg.Weights = simulation.Weights{}
	_, err := newEngine(w, cfg).PlayMatch("m1", nil)
	require.NoError(t, err)

	for _, id := range []string{"a", "b"} {
		team := w.Teams[id]
		assert.Equal(t, 0, team.CurrentStreak)
		assert.Equal(t, 1, team.Draws)
		assert.Equal(t, 1, team.CleanSheets)
		assert.Equal(t, []model.Result{model.Draw}, team.RecentForm)
	}
	assert.Equal(t, 1, w.Teams["a"].HomeDraws)
	assert.Equal(t, 1, w.Teams["b"].AwayDraws)
}

func TestPlayMatch_SuspensionCountsDown(t *testing.T) {
	w := buildWorld("a", "b")
	banned := w.Teams["a"].Roster[10]
	banned.Suspend(2)
	hurt := w.Teams["b"].Roster[3]
	hurt.Injure(1)

	cfg := simulation.DefaultConfig()
	cfg.Weights = simulation.Weights{}
	e := newEngine(w, cfg)

	addMatch(w, "m1", "a", "b", 1)
	events, err := e.PlayMatch("m1", nil)
	require.NoError(t, err)
	kick := events[0].(event.KickOff)
	assert.NotContains(t, kick.HomeLineup, banned.ID)
	assert.NotContains(t, kick.AwayLineup, hurt.ID)
	assert.True(t, banned.Suspended)
	assert.Equal(t, 1, banned.SuspensionMatchesRemaining)
	assert.False(t, hurt.Injured)
	assert.Zero(t, banned.Appearances)

	addMatch(w, "m2", "b", "a", 2)
	_, err = e.PlayMatch("m2", nil)
	require.NoError(t, err)
	assert.False(t, banned.Suspended)
	assert.Zero(t, banned.SuspensionMatchesRemaining)
}

func TestPlayMatch_PlayerSideEffects(t *testing.T) {
	w := buildWorld("a", "b")
	addMatch(w, "m1", "a", "b", 7)

	cfg := simulation.DefaultConfig()
	cfg.EventChance = 0.8
	events, err := newEngine(w, cfg).PlayMatch("m1", nil)
	require.NoError(t, err)

	goals := map[string]int{}
	for _, ev := range events {
		switch v := ev.(type) {
		case event.Goal:
			goals[v.ScorerID]++
		case event.RedCard:
			p, _, err := w.FindPlayer(v.PlayerID)
			require.NoError(t, err)
			assert.True(t, p.Suspended, "%s sent off but not suspended", p.ID)
			want := 3
			if v.SecondYellow {
				want = 1
			}
			assert.Equal(t, want, p.SuspensionMatchesRemaining)
		case event.Injury:
			p, _, err := w.FindPlayer(v.PlayerID)
			require.NoError(t, err)
			assert.True(t, p.Injured)
		}
	}
	for id, n := range goals {
		p, _, err := w.FindPlayer(id)
		require.NoError(t, err)
		assert.Equal(t, n, p.Goals, id)
	}

	kick := events[0].(event.KickOff)
	for _, id := range kick.HomeLineup {
		p, _, _ := w.FindPlayer(id)
		assert.Equal(t, 1, p.Appearances)
		assert.Equal(t, 85, p.Fitness)
		assert.Equal(t, 55, p.Sharpness)
	}
}
