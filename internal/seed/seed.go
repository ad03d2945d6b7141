// Package seed generates a complete, reproducible world from a single seed.
package seed

import (
	"cmp"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/maxviazov/football-manager-sim/internal/model"
)

// ErrInvalidOptions is returned for option values that cannot produce a league.
var ErrInvalidOptions = errors.New("invalid seed options")

const (
	DefaultName           = "Football World"
	DefaultTeamsPerLeague = 8
	MaxTeamsPerLeague     = 20
	MaxLeagues            = 4
)

// Options controls world generation.
type Options struct {
	Name           string `json:"name"`
	Seed           int64  `json:"seed"`
	Leagues        int    `json:"leagues"`
	TeamsPerLeague int    `json:"teams_per_league"`
}

func (o Options) withDefaults() Options {
	if o.Name == "" {
		o.Name = DefaultName
	}
	if o.Leagues == 0 {
		o.Leagues = 1
	}
	if o.TeamsPerLeague == 0 {
		o.TeamsPerLeague = DefaultTeamsPerLeague
	}
	return o
}

// Validate reports option values outside the supported range.
func (o Options) Validate() error {
	var errs []error
	if o.Leagues < 1 || o.Leagues > MaxLeagues {
		errs = append(errs, fmt.Errorf("leagues must be 1-%d, got %d", MaxLeagues, o.Leagues))
	}
	if o.TeamsPerLeague < 2 || o.TeamsPerLeague > MaxTeamsPerLeague {
		errs = append(errs, fmt.Errorf("teams_per_league must be 2-%d, got %d", MaxTeamsPerLeague, o.TeamsPerLeague))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return nil
}

// squad is the 23-man roster template.
var squad = []model.Position{
	model.GK, model.GK, model.GK,
	model.CB, model.CB, model.CB, model.CB,
	model.LB, model.LB, model.RB, model.RB,
	model.CM, model.CM, model.CM, model.LM, model.RM, model.CAM, model.CAM,
	model.LW, model.RW, model.ST, model.ST, model.ST,
}

// skill offsets per position: pace, shooting, passing, defending, physicality.
var profiles = map[model.Position][5]int{
	model.GK:  {-20, -35, -5, 10, 5},
	model.CB:  {-8, -25, -8, 12, 10},
	model.LB:  {8, -15, 0, 5, -2},
	model.RB:  {8, -15, 0, 5, -2},
	model.CM:  {-3, 0, 10, 0, 3},
	model.LM:  {8, -2, 6, -8, -3},
	model.RM:  {8, -2, 6, -8, -3},
	model.CAM: {3, 6, 10, -18, -5},
	model.LW:  {12, 5, 3, -20, -5},
	model.RW:  {12, 5, 3, -20, -5},
	model.ST:  {5, 12, -5, -25, 6},
}

var (
	firstNames = []string{
		"James", "Luca", "Mateo", "Noah", "Oliver", "Hugo", "Leon", "Arthur", "Theo", "Felix",
		"Marco", "Jonas", "Emil", "Tomas", "Rafael", "Diego", "Kai", "Sami", "Ivan", "Andre",
		"Nico", "Pablo", "Milan", "Oscar", "Victor", "Elias", "Jakub", "Bruno", "Yusuf", "Kofi",
	}
	lastNames = []string{
		"Smith", "Rossi", "Garcia", "Muller", "Silva", "Novak", "Jensen", "Dubois", "Kowalski", "Costa",
		"Fischer", "Moreno", "Bakker", "Larsen", "Petrov", "Santos", "Hughes", "Okafor", "Lindqvist", "Ferreira",
		"Walsh", "Varga", "Horvat", "Mensah", "Nielsen", "Romero", "Keller", "Brennan", "Ivanov", "Yilmaz",
	}
	towns = []string{
		"Ashford", "Bramley", "Carrow", "Dunmore", "Eastwick", "Fairhaven", "Glenmoor", "Harrowgate",
		"Ironbridge", "Kingsbury", "Lowfield", "Marlow", "Northam", "Oakridge", "Portsea", "Redcliffe",
		"Stanmore", "Thornbury", "Westerley", "Yarrow", "Alderton", "Blackwater", "Coldstream", "Deepdale",
	}
	clubSuffixes = []string{"United", "City", "Rovers", "Athletic", "Town", "Albion", "Wanderers", "FC"}
	leagueNames  = []string{"Premier Division", "Championship", "League One", "League Two"}
)

// Generate builds a world with every league filled by generated clubs. The
// same options always yield the same world. Fixtures are not scheduled.
func Generate(opts Options) (*model.World, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(uint64(opts.Seed), uint64(opts.Seed)>>1|1))
	w := model.NewWorld(fmt.Sprintf("world-%d", opts.Seed), opts.Name, opts.Seed)

	townOrder := rng.Perm(len(towns))
	next := 0
	for li := 0; li < opts.Leagues; li++ {
		l := &model.League{
			ID:              fmt.Sprintf("lg-%d", li+1),
			Name:            leagueNames[li],
			Season:          1,
			CurrentMatchday: 1,
		}
		// lower divisions are weaker
		tier := 72 - li*6
		for ti := 0; ti < opts.TeamsPerLeague; ti++ {
			town := towns[townOrder[next%len(towns)]]
			if next >= len(towns) {
				town = fmt.Sprintf("%s %d", town, next/len(towns)+1)
			}
			next++
			t := newTeam(rng, l.ID, ti+1, town, tier)
			w.Teams[t.ID] = t
			l.TeamIDs = append(l.TeamIDs, t.ID)
		}
		w.Leagues[l.ID] = l
	}
	return w, nil
}

func newTeam(rng *rand.Rand, leagueID string, n int, town string, tier int) *model.Team {
	quality := tier + rng.IntN(13) - 6
	reputation := model.ClampInt(quality+rng.IntN(11)-5, model.MinAttribute, model.MaxAttribute)
	capacity := 8000 + reputation*600 + rng.IntN(40)*250

	t := &model.Team{
		ID:              fmt.Sprintf("%s-t%02d", leagueID, n),
		Name:            town + " " + clubSuffixes[rng.IntN(len(clubSuffixes))],
		ShortName:       shortName(town),
		LeagueID:        leagueID,
		Stadium:         model.Stadium{Name: town + " " + []string{"Park", "Stadium", "Ground", "Arena"}[rng.IntN(4)], Capacity: capacity},
		TicketPrice:     decimal.New(int64(1500+reputation*40+rng.IntN(500)), -2),
		Balance:         decimal.NewFromInt(int64(2_000_000 + reputation*150_000 + rng.IntN(1_000_000))),
		Reputation:      reputation,
		Morale:          50 + rng.IntN(21) - 10,
		FanSentiment:    50 + rng.IntN(21) - 10,
		MediaSentiment:  50 + rng.IntN(21) - 10,
		BoardConfidence: 55 + rng.IntN(21) - 10,
	}
	t.SetSeasonTicketHolders(capacity * (30 + rng.IntN(40)) / 100)

	for i, pos := range squad {
		t.Roster = append(t.Roster, newPlayer(rng, t.ID, i+1, pos, quality))
	}
	appointCaptains(t)
	return t
}

func shortName(town string) string {
	r := []rune(town)
	if len(r) < 3 {
		return town
	}
	return string(r[:3])
}

func newPlayer(rng *rand.Rand, teamID string, n int, pos model.Position, quality int) *model.Player {
	skill := func(offset int) int {
		return model.ClampInt(quality+offset+rng.IntN(17)-8, model.MinAttribute, model.MaxAttribute)
	}
	prof := profiles[pos]
	p := &model.Player{
		ID:            fmt.Sprintf("%s-p%02d", teamID, n),
		Name:          firstNames[rng.IntN(len(firstNames))] + " " + lastNames[rng.IntN(len(lastNames))],
		TeamID:        teamID,
		Position:      pos,
		Age:           18 + rng.IntN(17),
		PeakAge:       26 + rng.IntN(4),
		Pace:          skill(prof[0]),
		Shooting:      skill(prof[1]),
		Passing:       skill(prof[2]),
		Defending:     skill(prof[3]),
		Physicality:   skill(prof[4]),
		Form:          45 + rng.IntN(21),
		Morale:        45 + rng.IntN(21),
		Fitness:       80 + rng.IntN(21),
		Sharpness:     45 + rng.IntN(21),
		ContractYears: 1 + rng.IntN(5),
	}
	if pos == model.GK {
		p.PeakAge += 3
	}
	overall := p.OverallRating()
	p.Reputation = model.ClampInt(overall+rng.IntN(11)-5, model.MinAttribute, model.MaxAttribute)
	// weekly wage grows with the square of the rating
	p.Wage = decimal.NewFromInt(int64(overall * overall * 3)).Round(-2)
	p.Clamp()
	return p
}

// appointCaptains hands the armband to the two highest-rated senior outfielders.
func appointCaptains(t *model.Team) {
	candidates := slices.Clone(t.Roster)
	candidates = slices.DeleteFunc(candidates, func(p *model.Player) bool {
		return p.Position == model.GK || p.Age < 24
	})
	if len(candidates) == 0 {
		candidates = slices.Clone(t.Roster)
	}
	slices.SortStableFunc(candidates, func(a, b *model.Player) int {
		return cmp.Compare(b.OverallRating(), a.OverallRating())
	})
	_ = t.SetCaptain(candidates[0].ID)
	if len(candidates) > 1 {
		_ = t.SetViceCaptain(candidates[1].ID)
	}
}
