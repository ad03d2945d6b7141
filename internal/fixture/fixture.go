// Package fixture builds league schedules.
package fixture

import (
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/maxviazov/football-manager-sim/internal/model"
)

// ErrTooFewTeams is returned when a league cannot produce a single fixture.
var ErrTooFewTeams = errors.New("at least two teams are required")

// MatchInterval separates consecutive matchdays.
const MatchInterval = 7 * 24 * time.Hour

// Pairing is one fixture of a round.
type Pairing struct {
	Home string
	Away string
}

// RoundRobin pairs every team with every other team once using the circle
// method: the first team stays put while the others rotate one place per
// round. An odd field gets a bye slot, so one team rests each round.
func RoundRobin(teamIDs []string) [][]Pairing {
	if len(teamIDs) < 2 {
		return nil
	}
	slots := append([]string(nil), teamIDs...)
	if len(slots)%2 == 1 {
		slots = append(slots, "")
	}
	n := len(slots)

	rounds := make([][]Pairing, 0, n-1)
	for r := 0; r < n-1; r++ {
		round := make([]Pairing, 0, n/2)
		for i := 0; i < n/2; i++ {
			a, b := slots[i], slots[n-1-i]
			if a == "" || b == "" {
				continue
			}
			// the fixed team alternates; the rest alternate by slot and round
			if (i == 0 && r%2 == 1) || (i > 0 && (r+i)%2 == 1) {
				a, b = b, a
			}
			round = append(round, Pairing{Home: a, Away: b})
		}
		rounds = append(rounds, round)

		last := slots[n-1]
		copy(slots[2:], slots[1:n-1])
		slots[1] = last
	}
	return rounds
}

// DoubleRoundRobin plays RoundRobin twice; the second half repeats the first
// with venues reversed.
func DoubleRoundRobin(teamIDs []string) [][]Pairing {
	first := RoundRobin(teamIDs)
	out := make([][]Pairing, 0, 2*len(first))
	out = append(out, first...)
	for _, round := range first {
		mirrored := make([]Pairing, len(round))
		for i, p := range round {
			mirrored[i] = Pairing{Home: p.Away, Away: p.Home}
		}
		out = append(out, mirrored)
	}
	return out
}

// MatchID names a fixture by league, season, matchday and slot.
func MatchID(leagueID string, season, matchday, slot int) string {
	return fmt.Sprintf("%s-s%d-md%02d-%02d", leagueID, season, matchday, slot)
}

// MatchSeed derives a fixture's seed from its id and the world seed.
func MatchSeed(matchID string, worldSeed int64) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(matchID))
	return int64(h.Sum64()) ^ worldSeed
}

// Schedule creates a double round-robin season for the league, one matchday
// per week from start, registers the matches in the world and resets the
// league's matchday counter.
func Schedule(w *model.World, l *model.League, season int, start time.Time) ([]*model.Match, error) {
	if len(l.TeamIDs) < 2 {
		return nil, fmt.Errorf("%w: league %s has %d", ErrTooFewTeams, l.ID, len(l.TeamIDs))
	}
	for _, id := range l.TeamIDs {
		if _, err := w.Team(id); err != nil {
			return nil, err
		}
	}

	rounds := DoubleRoundRobin(l.TeamIDs)
	var out []*model.Match
	for r, round := range rounds {
		matchday := r + 1
		at := start.Add(time.Duration(r) * MatchInterval).UTC()
		for slot, p := range round {
			id := MatchID(l.ID, season, matchday, slot+1)
			m := &model.Match{
				ID:          id,
				LeagueID:    l.ID,
				Season:      season,
				Matchday:    matchday,
				HomeTeamID:  p.Home,
				AwayTeamID:  p.Away,
				Seed:        MatchSeed(id, w.Seed),
				ScheduledAt: at,
			}
			w.Matches[id] = m
			out = append(out, m)
		}
	}
	l.Season = season
	l.CurrentMatchday = 1
	l.TotalMatchdays = len(rounds)
	return out, nil
}
