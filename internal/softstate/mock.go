package softstate

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/model"
)

// MockProvider derives updates from match events with fixed rules, so runs
// stay reproducible without a remote model.
type MockProvider struct{}

func (MockProvider) Name() string { return ProviderMock }

type accumulator struct {
	deltas    map[string]map[string]float64
	rationale map[string][]string
}

func (a *accumulator) add(entityType, id, attr string, d float64, why string) {
	key := entityType + "\x00" + id
	if a.deltas[key] == nil {
		a.deltas[key] = make(map[string]float64)
	}
	a.deltas[key][attr] += d
	if why != "" && !slices.Contains(a.rationale[key], why) {
		a.rationale[key] = append(a.rationale[key], why)
	}
}

func (MockProvider) Analyze(ctx context.Context, events []event.Event, _ *model.World) ([]Update, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	acc := &accumulator{deltas: map[string]map[string]float64{}, rationale: map[string][]string{}}
	for _, e := range events {
		switch v := e.(type) {
		case event.Goal:
			acc.add(EntityPlayer, v.ScorerID, "form", 3, "scored")
			acc.add(EntityPlayer, v.ScorerID, "morale", 4, "scored")
			if v.AssistID != "" {
				acc.add(EntityPlayer, v.AssistID, "form", 2, "provided an assist")
			}
		case event.RedCard:
			acc.add(EntityPlayer, v.PlayerID, "morale", -5, "sent off")
			acc.add(EntityTeam, v.TeamID, "media_sentiment", -2, "discipline questioned")
		case event.Injury:
			acc.add(EntityPlayer, v.PlayerID, "morale", -3, "injured")
		case event.MatchEnded:
			resultUpdates(acc, v)
		}
	}

	keys := slices.Sorted(maps.Keys(acc.deltas))
	out := make([]Update, 0, len(keys))
	for _, key := range keys {
		entityType, id, _ := strings.Cut(key, "\x00")
		out = append(out, Update{
			EntityType: entityType,
			EntityID:   id,
			Deltas:     acc.deltas[key],
			Rationale:  strings.Join(acc.rationale[key], ", "),
		})
	}
	return out, nil
}

func resultUpdates(acc *accumulator, v event.MatchEnded) {
	swing := func(teamID string, scored, conceded int) {
		switch {
		case scored > conceded:
			margin := float64(min(scored-conceded, 3))
			acc.add(EntityTeam, teamID, "morale", 2+margin, "won")
			acc.add(EntityTeam, teamID, "fan_sentiment", 2+margin, "won")
			acc.add(EntityTeam, teamID, "media_sentiment", 1+margin, "won")
			acc.add(EntityTeam, teamID, "board_confidence", 1, "won")
		case scored < conceded:
			margin := float64(min(conceded-scored, 3))
			acc.add(EntityTeam, teamID, "morale", -2-margin, "lost")
			acc.add(EntityTeam, teamID, "fan_sentiment", -2-margin, "lost")
			acc.add(EntityTeam, teamID, "media_sentiment", -1-margin, "lost")
			acc.add(EntityTeam, teamID, "board_confidence", -1, "lost")
		default:
			acc.add(EntityTeam, teamID, "morale", 0.5, "drew")
		}
		if conceded == 0 {
			acc.add(EntityTeam, teamID, "fan_sentiment", 1, "kept a clean sheet")
		}
	}
	swing(v.HomeTeamID, v.HomeScore, v.AwayScore)
	swing(v.AwayTeamID, v.AwayScore, v.HomeScore)

	// standout performers
	for _, id := range slices.Sorted(maps.Keys(v.PlayerRatings)) {
		r := v.PlayerRatings[id]
		switch {
		case r >= 8:
			acc.add(EntityPlayer, id, "form", 2, fmt.Sprintf("rated %.1f", r))
		case r < 5:
			acc.add(EntityPlayer, id, "form", -2, fmt.Sprintf("rated %.1f", r))
		}
	}
}

