package model

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// World is the aggregate root holding all mutable simulation state.
type World struct {
	ID      string             `json:"id" yaml:"id"`
	Name    string             `json:"name" yaml:"name"`
	Seed    int64              `json:"seed" yaml:"seed"`
	Leagues map[string]*League `json:"leagues" yaml:"leagues"`
	Teams   map[string]*Team   `json:"teams" yaml:"teams"`
	Matches map[string]*Match  `json:"matches" yaml:"matches"`
}

// NewWorld returns an empty world with initialized maps.
func NewWorld(id, name string, seed int64) *World {
	return &World{
		ID:      id,
		Name:    name,
		Seed:    seed,
		Leagues: make(map[string]*League),
		Teams:   make(map[string]*Team),
		Matches: make(map[string]*Match),
	}
}

// Team resolves a team id.
func (w *World) Team(id string) (*Team, error) {
	t, ok := w.Teams[id]
	if !ok {
		return nil, fmt.Errorf("%w: team %q", ErrInvalidReference, id)
	}
	return t, nil
}

// Match resolves a match id.
func (w *World) Match(id string) (*Match, error) {
	m, ok := w.Matches[id]
	if !ok {
		return nil, fmt.Errorf("%w: match %q", ErrInvalidReference, id)
	}
	return m, nil
}

// League resolves a league id.
func (w *World) League(id string) (*League, error) {
	l, ok := w.Leagues[id]
	if !ok {
		return nil, fmt.Errorf("%w: league %q", ErrInvalidReference, id)
	}
	return l, nil
}

// FindPlayer looks a player up across all rosters.
func (w *World) FindPlayer(id string) (*Player, *Team, error) {
	for _, teamID := range w.TeamIDs() {
		t := w.Teams[teamID]
		if p, ok := t.Player(id); ok {
			return p, t, nil
		}
	}
	return nil, nil, fmt.Errorf("%w: player %q", ErrInvalidReference, id)
}

// TeamIDs returns team ids in sorted order for deterministic iteration.
func (w *World) TeamIDs() []string {
	return slices.Sorted(maps.Keys(w.Teams))
}

// LeagueIDs returns league ids in sorted order.
func (w *World) LeagueIDs() []string {
	return slices.Sorted(maps.Keys(w.Leagues))
}

// MatchesFor returns the fixtures of one matchday sorted by id.
func (w *World) MatchesFor(leagueID string, season, matchday int) []*Match {
	var out []*Match
	for _, m := range w.Matches {
		if m.LeagueID == leagueID && m.Season == season && m.Matchday == matchday {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b *Match) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// PlayerCount totals roster sizes.
func (w *World) PlayerCount() int {
	n := 0
	for _, t := range w.Teams {
		n += len(t.Roster)
	}
	return n
}
