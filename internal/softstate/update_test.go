package softstate_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/model"
	"github.com/maxviazov/football-manager-sim/internal/softstate"
)

func world() *model.World {
	w := model.NewWorld("w", "w", 1)
	w.Teams["t1"] = &model.Team{
		ID: "t1", Morale: 50, FanSentiment: 98, MediaSentiment: 50, BoardConfidence: 50, Reputation: 50,
		Roster: []*model.Player{{ID: "p1", TeamID: "t1", Form: 50, Morale: 3, Fitness: 80, Sharpness: 50, Reputation: 40}},
	}
	w.Teams["t2"] = &model.Team{ID: "t2", Morale: 50, FanSentiment: 50, MediaSentiment: 50, BoardConfidence: 50, Reputation: 50}
	return w
}

func TestValidator_Rejections(t *testing.T) {
	v := softstate.NewValidator(20)
	cases := []struct {
		name   string
		update softstate.Update
		reason string
	}{
		{"unknown entity type", softstate.Update{EntityType: "stadium", EntityID: "t1", Deltas: map[string]float64{"morale": 1}}, "unknown entity type"},
		{"unknown player", softstate.Update{EntityType: "player", EntityID: "ghost", Deltas: map[string]float64{"form": 1}}, "unknown player"},
		{"unknown team", softstate.Update{EntityType: "team", EntityID: "ghost", Deltas: map[string]float64{"morale": 1}}, "unknown team"},
		{"hard skill", softstate.Update{EntityType: "player", EntityID: "p1", Deltas: map[string]float64{"shooting": 5}}, "not adjustable"},
		{"player-only attribute on team", softstate.Update{EntityType: "team", EntityID: "t1", Deltas: map[string]float64{"form": 5}}, "not adjustable"},
		{"nan", softstate.Update{EntityType: "player", EntityID: "p1", Deltas: map[string]float64{"form": math.NaN()}}, "finite"},
		{"inf", softstate.Update{EntityType: "team", EntityID: "t1", Deltas: map[string]float64{"morale": math.Inf(-1)}}, "finite"},
		{"too large", softstate.Update{EntityType: "player", EntityID: "p1", Deltas: map[string]float64{"morale": 20.5}}, "exceeds"},
		{"empty", softstate.Update{EntityType: "team", EntityID: "t1"}, "no deltas"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, rej := v.Validate(world(), tc.update)
			require.NotNil(t, rej)
			assert.Contains(t, rej.Reason, tc.reason)
			assert.Contains(t, rej.Error(), "rejected")
		})
	}
}

func TestApplyAll_ClampsAndIsolatesRejections(t *testing.T) {
	w := world()
	v := softstate.NewValidator(20)

	report := v.ApplyAll(w, []softstate.Update{
		{EntityType: "team", EntityID: "t1", Deltas: map[string]float64{"fan_sentiment": 10, "morale": -4}},
		{EntityType: "player", EntityID: "p1", Deltas: map[string]float64{"morale": -10, "form": 2.6}},
		// one bad attribute spoils the whole update
		{EntityType: "team", EntityID: "t2", Deltas: map[string]float64{"morale": 5, "balance": 1000}},
	})

	require.Len(t, report.Applied, 2)
	require.Len(t, report.Rejected, 1)
	assert.Equal(t, "t2", report.Rejected[0].Update.EntityID)

	t1, p1 := w.Teams["t1"], w.Teams["t1"].Roster[0]
	assert.Equal(t, 100, t1.FanSentiment)
	assert.Equal(t, 46, t1.Morale)
	assert.Equal(t, 1, p1.Morale)
	assert.Equal(t, 53, p1.Form)
	assert.Equal(t, map[string]float64{"fan_sentiment": 2, "morale": -4}, report.Applied[0].Applied)
	assert.Equal(t, map[string]float64{"morale": -2, "form": 3}, report.Applied[1].Applied)

	assert.Equal(t, 50, w.Teams["t2"].Morale, "rejected update leaves state unchanged")
}

func TestAttributes(t *testing.T) {
	assert.Equal(t, []string{"fitness", "form", "morale", "reputation", "sharpness"}, softstate.Attributes(softstate.EntityPlayer))
	assert.Equal(t, []string{"board_confidence", "fan_sentiment", "media_sentiment", "morale", "reputation"}, softstate.Attributes(softstate.EntityTeam))
	assert.Empty(t, softstate.Attributes("coach"))
}

func TestMockProvider_Deterministic(t *testing.T) {
	events := []event.Event{
		event.Goal{TeamID: "t1", ScorerID: "p1"},
		event.RedCard{TeamID: "t2", PlayerID: "q9"},
		event.MatchEnded{
			MatchHeader:   event.MatchHeader{HomeScore: 1, AwayScore: 0},
			HomeTeamID:    "t1",
			AwayTeamID:    "t2",
			PlayerRatings: map[string]float64{"p1": 8.4, "q9": 4.1},
		},
	}
	ctx := context.Background()
	p := softstate.MockProvider{}
	a, err := p.Analyze(ctx, events, world())
	require.NoError(t, err)
	b, err := p.Analyze(ctx, events, world())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	byKey := map[string]softstate.Update{}
	for _, u := range a {
		byKey[u.EntityType+"/"+u.EntityID] = u
	}
	assert.Equal(t, map[string]float64{"form": 5, "morale": 4}, byKey["player/p1"].Deltas)
	assert.Equal(t, -5.0, byKey["player/q9"].Deltas["morale"])
	assert.Equal(t, -2.0, byKey["player/q9"].Deltas["form"])
	assert.Equal(t, 3.0, byKey["team/t1"].Deltas["morale"])
	assert.Equal(t, 4.0, byKey["team/t1"].Deltas["fan_sentiment"], "win plus clean sheet")
	assert.Equal(t, -4.0, byKey["team/t2"].Deltas["media_sentiment"], "loss plus red card")
	assert.Contains(t, byKey["player/p1"].Rationale, "scored")

	report := softstate.NewValidator(softstate.DefaultMaxDelta).ApplyAll(world(), a)
	assert.Len(t, report.Rejected, 1, "q9 is not in the world")
}

func TestMockProvider_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := softstate.MockProvider{}.Analyze(ctx, nil, world())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	p, warnings, err := softstate.NewProvider(ctx, softstate.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, softstate.ProviderMock, p.Name())
	assert.Empty(t, warnings)

	p, warnings, err = softstate.NewProvider(ctx, softstate.Config{Provider: softstate.ProviderNone})
	require.NoError(t, err)
	assert.Equal(t, softstate.ProviderNone, p.Name())
	assert.NotEmpty(t, warnings)
	updates, err := p.Analyze(ctx, []event.Event{event.Goal{}}, world())
	require.NoError(t, err)
	assert.Empty(t, updates)

	_, _, err = softstate.NewProvider(ctx, softstate.Config{Provider: "oracle"})
	assert.ErrorIs(t, err, softstate.ErrUnknownProvider)

	_, _, err = softstate.NewProvider(ctx, softstate.Config{Provider: softstate.ProviderGemini})
	assert.Error(t, err, "gemini without a key is refused, not replaced")
}
