package simulation

import (
	"fmt"
	"math"
	"strings"

	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/model"
)

const (
	minPossession = 20
	maxPossession = 80
	baseRating    = 6.0
)

func (s *Simulator) scoreline() string {
	return fmt.Sprintf("%s %d-%d %s", s.home.team.Name, s.match.HomeScore, s.match.AwayScore, s.away.team.Name)
}

func lower(reason string) string {
	if reason == "" {
		return reason
	}
	return strings.ToLower(reason[:1]) + reason[1:]
}

func (s *Simulator) matchEnded() event.Event {
	s.match.Minute = Minutes
	home, away := s.possession()
	s.home.stats.Possession = home
	s.away.stats.Possession = away
	s.finishShots(s.home)
	s.finishShots(s.away)

	ratings := make(map[string]float64, len(s.home.starters)+len(s.away.starters))
	s.rate(s.home, s.match.AwayScore, s.match.HomeScore, ratings)
	s.rate(s.away, s.match.HomeScore, s.match.AwayScore, ratings)

	s.comment(Minutes, "Full time: %s", s.scoreline())
	return event.MatchEnded{
		MatchHeader:   s.header(Minutes),
		HomeTeamID:    s.home.team.ID,
		AwayTeamID:    s.away.team.ID,
		Stats:         event.MatchStatistics{Home: s.home.stats, Away: s.away.stats},
		PlayerRatings: ratings,
		Commentary:    s.commentary,
	}
}

// possession splits 100 by the starters' passing, with a little noise, and
// keeps each share within 20-80.
func (s *Simulator) possession() (int, int) {
	h, a := avgPassing(s.home.starters), avgPassing(s.away.starters)
	share := 50.0
	if h+a > 0 {
		share = 50 + (h/(h+a)-0.5)*60
	}
	share += float64(s.rng.IntN(11) - 5)
	home := model.ClampInt(int(math.Round(share)), minPossession, maxPossession)
	return home, 100 - home
}

func avgPassing(ps []*model.Player) float64 {
	if len(ps) == 0 {
		return 0
	}
	var sum float64
	for _, p := range ps {
		sum += float64(p.Passing)
	}
	return sum / float64(len(ps))
}

// finishShots adds the attempts that did not produce an event. Goals were
// already counted as shots on target, so on target never falls below goals.
func (s *Simulator) finishShots(sd *side) {
	extra := s.rng.IntN(5)
	sd.stats.ShotsOnTarget += extra
	sd.stats.Shots += extra + 1 + s.rng.IntN(8)
}

// rate scores every starter from 6.0: form and fitness, goals and assists,
// cards, the result, and a clean-sheet bonus for goalkeepers and defenders.
func (s *Simulator) rate(sd *side, conceded, scored int, out map[string]float64) {
	for _, p := range sd.starters {
		r := baseRating
		r += float64(p.Form-50) / 50 * 0.5
		r += float64(p.Fitness-50) / 50 * 0.3
		r += float64(s.goals[p.ID]) * 1.0
		r += float64(s.assists[p.ID]) * 0.5
		r -= float64(s.yellows[p.ID]) * 0.3
		if s.sentOff[p.ID] {
			r -= 1.5
		}
		switch {
		case scored > conceded:
			r += 0.3
		case scored < conceded:
			r -= 0.3
		}
		if conceded == 0 {
			switch {
			case p.Position == model.GK:
				r += 1.0
			case p.Position.IsDefensive():
				r += 0.5
			}
		}
		r += s.rng.Float64()*0.6 - 0.3
		out[p.ID] = math.Round(model.ClampFloat(r, 1, 10)*10) / 10
	}
}
