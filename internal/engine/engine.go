// Package engine plays scheduled matches and folds their outcome into the
// world: team aggregates, head-to-head records and player availability.
package engine

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/model"
	"github.com/maxviazov/football-manager-sim/internal/simulation"
)

const (
	matchFitnessCost = -10
	matchSharpness   = 5
)

// Engine is not safe for concurrent use; callers serialize access to the world.
type Engine struct {
	world *model.World
	cfg   simulation.Config
	log   zerolog.Logger
}

func New(world *model.World, cfg simulation.Config, logger zerolog.Logger) *Engine {
	l := logger.With().Str("module", "engine").Str("component", "match_engine").Logger()
	return &Engine{world: world, cfg: cfg, log: l}
}

// PlayMatch simulates one fixture and applies its result exactly once.
// The seed is taken from the argument, then from the match, and finally
// falls back to the simulator default.
func (e *Engine) PlayMatch(matchID string, seed *int64) ([]event.Event, error) {
	m, err := e.world.Match(matchID)
	if err != nil {
		return nil, err
	}
	if m.Finished {
		return nil, fmt.Errorf("%w: %s", model.ErrMatchFinished, m.ID)
	}
	if seed == nil && m.Seed != 0 {
		seed = &m.Seed
	}

	sim, err := simulation.New(e.world, m, seed, e.cfg)
	if err != nil {
		return nil, err
	}
	home, _ := e.world.Team(m.HomeTeamID)
	away, _ := e.world.Team(m.AwayTeamID)
	sidelined := unavailable(home, away)

	events := sim.Run()
	if !m.Finished {
		return nil, fmt.Errorf("match %s stopped before full time", m.ID)
	}
	m.Seed = sim.Seed()

	home.RecordResult(away.ID, m.HomeScore, m.AwayScore, true)
	away.RecordResult(home.ID, m.AwayScore, m.HomeScore, false)

	for _, p := range sidelined {
		p.AdvanceMatch()
	}
	e.applyPlayers(events, roster(home, away))

	e.log.Debug().
		Str("match_id", m.ID).
		Int64("seed", sim.Seed()).
		Int("home_score", m.HomeScore).
		Int("away_score", m.AwayScore).
		Int("events", len(events)).
		Msg("match played")
	return events, nil
}

func unavailable(teams ...*model.Team) []*model.Player {
	var out []*model.Player
	for _, t := range teams {
		for _, p := range t.Roster {
			if !p.Available() {
				out = append(out, p)
			}
		}
	}
	return out
}

func roster(teams ...*model.Team) map[string]*model.Player {
	out := make(map[string]*model.Player)
	for _, t := range teams {
		for _, p := range t.Roster {
			out[p.ID] = p
		}
	}
	return out
}

// applyPlayers turns the match events into player side effects: appearances,
// scoring counters, bans and injuries.
func (e *Engine) applyPlayers(events []event.Event, players map[string]*model.Player) {
	var played []string
	for _, ev := range events {
		switch v := ev.(type) {
		case event.KickOff:
			played = append(played, v.HomeLineup...)
			played = append(played, v.AwayLineup...)
		case event.Substitution:
			played = append(played, v.PlayerOnID)
		case event.Goal:
			if p := players[v.ScorerID]; p != nil {
				p.Goals++
			}
			if p := players[v.AssistID]; p != nil {
				p.Assists++
			}
		case event.YellowCard:
			if p := players[v.PlayerID]; p != nil && p.YellowBanDue() {
				p.Suspend(1)
				e.log.Debug().Str("player_id", p.ID).Int("season_yellows", p.SeasonYellows).Msg("yellow card ban")
			}
		case event.RedCard:
			if p := players[v.PlayerID]; p != nil {
				p.SuspendForRed(v.SecondYellow)
			}
		case event.Injury:
			if p := players[v.PlayerID]; p != nil {
				p.Injure(v.MatchesOut)
			}
		}
	}
	for _, id := range played {
		if p := players[id]; p != nil {
			p.Appearances++
			p.AdjustSoft(0, 0, matchFitnessCost, matchSharpness)
		}
	}
}
