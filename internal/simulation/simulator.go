// Package simulation generates the minute-by-minute event stream of one match.
//
// A Simulator owns a single seeded generator; every random decision is drawn
// from it in a fixed order, so the same world state, match and seed always
// produce the same encoded event sequence. The simulator mutates the match
// score and minute and the players' card counters. Everything else that
// follows from a result is applied by the engine.
package simulation

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/model"
)

// Minutes is the length of a simulated match.
const Minutes = 90

const lineupSize = 11

// ErrNoLineup is returned when a team has no available players to field.
var ErrNoLineup = errors.New("team cannot field a lineup")

// eventNamespace seeds the name-based ids of match events.
var eventNamespace = uuid.MustParse("5b0f3f0e-8a7e-4c1d-9a57-3c2f1d6e4b90")

// side is one team's in-match state.
type side struct {
	team     *model.Team
	home     bool
	starters []*model.Player
	onPitch  []*model.Player
	bench    []*model.Player
	subs     int

	stats event.SideStatistics
}

func (sd *side) remove(p *model.Player) {
	sd.onPitch = slices.DeleteFunc(sd.onPitch, func(x *model.Player) bool { return x == p })
}

func (sd *side) outfield() []*model.Player {
	out := make([]*model.Player, 0, len(sd.onPitch))
	for _, p := range sd.onPitch {
		if p.Position != model.GK {
			out = append(out, p)
		}
	}
	return out
}

func (sd *side) attackers() []*model.Player {
	var out []*model.Player
	for _, p := range sd.onPitch {
		if p.Position.IsAttacking() {
			out = append(out, p)
		}
	}
	return out
}

// Simulator runs a single match. It is not safe for concurrent use and its
// event sequence can be consumed once.
type Simulator struct {
	cfg   Config
	table []weighted
	total float64

	match *model.Match
	home  *side
	away  *side

	seed    int64
	rng     *rand.Rand
	ordinal int
	used    bool

	yellows    map[string]int
	sentOff    map[string]bool
	goals      map[string]int
	assists    map[string]int
	commentary []string
}

// New validates the fixture and prepares both lineups. A nil seed falls back to
// cfg.DefaultSeed, so an unseeded run is still reproducible.
func New(world *model.World, match *model.Match, seed *int64, cfg Config) (*Simulator, error) {
	if world == nil || match == nil {
		return nil, fmt.Errorf("%w: world and match are required", model.ErrInvalidReference)
	}
	if match.Finished {
		return nil, fmt.Errorf("%w: %s", model.ErrMatchFinished, match.ID)
	}
	home, err := world.Team(match.HomeTeamID)
	if err != nil {
		return nil, err
	}
	away, err := world.Team(match.AwayTeamID)
	if err != nil {
		return nil, err
	}
	if home == away {
		return nil, fmt.Errorf("%w: team %q cannot play itself", model.ErrInvalidReference, home.ID)
	}

	s := &Simulator{
		cfg:     cfg,
		table:   cfg.Weights.table(),
		match:   match,
		seed:    cfg.DefaultSeed,
		yellows: make(map[string]int),
		sentOff: make(map[string]bool),
		goals:   make(map[string]int),
		assists: make(map[string]int),
	}
	if seed != nil {
		s.seed = *seed
	}
	for _, w := range s.table {
		s.total += w.weight
	}
	s.rng = rand.New(rand.NewPCG(uint64(s.seed), uint64(s.seed)^0x9e3779b97f4a7c15))

	if s.home, err = newSide(home, true); err != nil {
		return nil, err
	}
	if s.away, err = newSide(away, false); err != nil {
		return nil, err
	}
	return s, nil
}

// newSide picks the best available goalkeeper and the ten best available
// outfielders by overall rating; ties keep roster order. The rest of the
// available players form the bench.
func newSide(t *model.Team, home bool) (*side, error) {
	var available []*model.Player
	for _, p := range t.Roster {
		if p.Available() {
			available = append(available, p)
		}
	}
	if len(available) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoLineup, t.ID)
	}
	slices.SortStableFunc(available, func(a, b *model.Player) int {
		return cmp.Compare(b.OverallRating(), a.OverallRating())
	})

	var starters, bench []*model.Player
	keeper := slices.IndexFunc(available, func(p *model.Player) bool { return p.Position == model.GK })
	if keeper >= 0 {
		starters = append(starters, available[keeper])
	}
	for i, p := range available {
		switch {
		case i == keeper:
		case len(starters) < lineupSize && (keeper < 0 || p.Position != model.GK):
			starters = append(starters, p)
		default:
			bench = append(bench, p)
		}
	}
	return &side{
		team:     t,
		home:     home,
		starters: starters,
		onPitch:  slices.Clone(starters),
		bench:    bench,
	}, nil
}

// Seed is the seed the generator was built from.
func (s *Simulator) Seed() int64 { return s.seed }

// Events lazily yields KickOff, the in-play events and MatchEnded. The match is
// marked finished once MatchEnded has been yielded.
func (s *Simulator) Events() iter.Seq[event.Event] {
	return func(yield func(event.Event) bool) {
		if s.used {
			return
		}
		s.used = true

		if !yield(s.kickOff()) {
			return
		}
		for minute := 1; minute <= Minutes; minute++ {
			s.match.Minute = minute
			if s.rng.Float64() >= s.cfg.EventChance {
				continue
			}
			cat, ok := s.pick()
			if !ok {
				continue
			}
			for _, e := range s.dispatch(cat, minute) {
				if !yield(e) {
					return
				}
			}
		}
		end := s.matchEnded()
		yield(end)
		s.match.Finished = true
	}
}

// Run drains Events into a slice.
func (s *Simulator) Run() []event.Event {
	var out []event.Event
	for e := range s.Events() {
		out = append(out, e)
	}
	return out
}

// pick walks the categories in their fixed order and returns the first whose
// cumulative weight reaches a uniform draw in [0, total).
func (s *Simulator) pick() (category, bool) {
	if len(s.table) == 0 {
		return 0, false
	}
	r := s.rng.Float64() * s.total
	var acc float64
	for _, w := range s.table {
		acc += w.weight
		if acc >= r {
			return w.cat, true
		}
	}
	return s.table[len(s.table)-1].cat, true
}

func (s *Simulator) dispatch(cat category, minute int) []event.Event {
	switch cat {
	case catGoal:
		return s.goal(minute)
	case catYellow:
		return s.yellowCard(minute)
	case catRed:
		return s.redCard(minute)
	case catSubstitution:
		return s.substitution(minute)
	case catFoul:
		return s.foul(minute)
	case catPenalty:
		return s.penalty(minute)
	case catCorner:
		return s.corner(minute)
	case catOffside:
		return s.offside(minute)
	case catFreeKick:
		return s.freeKick(minute)
	case catInjury:
		return s.injury(minute)
	}
	return nil
}

// header stamps a match event. Ids derive from the match, seed and ordinal and
// timestamps from the kick-off time, so reruns encode identically.
func (s *Simulator) header(minute int) event.MatchHeader {
	s.ordinal++
	name := fmt.Appendf(nil, "%s#%d#%d", s.match.ID, s.seed, s.ordinal)
	return event.MatchHeader{
		Header: event.Header{
			ID:        uuid.NewSHA1(eventNamespace, name),
			Timestamp: s.match.ScheduledAt.Add(time.Duration(minute) * time.Minute).UTC(),
		},
		MatchID:   s.match.ID,
		Minute:    minute,
		HomeScore: s.match.HomeScore,
		AwayScore: s.match.AwayScore,
	}
}

func (s *Simulator) comment(minute int, format string, args ...any) {
	s.commentary = append(s.commentary, fmt.Sprintf("%02d' ", minute)+fmt.Sprintf(format, args...))
}

func (s *Simulator) kickOff() event.Event {
	s.match.Minute = 0
	kicking := s.home
	if s.rng.IntN(2) == 1 {
		kicking = s.away
	}
	s.comment(0, "Kick-off at %s: %s v %s.", s.home.team.Stadium.Name, s.home.team.Name, s.away.team.Name)
	return event.KickOff{
		MatchHeader:   s.header(0),
		HomeTeamID:    s.home.team.ID,
		AwayTeamID:    s.away.team.ID,
		KickingTeamID: kicking.team.ID,
		HomeLineup:    ids(s.home.starters),
		AwayLineup:    ids(s.away.starters),
	}
}

func ids(ps []*model.Player) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func (s *Simulator) other(sd *side) *side {
	if sd == s.home {
		return s.away
	}
	return s.home
}

func (s *Simulator) randomSide() *side {
	if s.rng.IntN(2) == 0 {
		return s.home
	}
	return s.away
}

func choose[T any](r *rand.Rand, xs []T) T {
	return xs[r.IntN(len(xs))]
}
