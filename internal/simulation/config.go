package simulation

import "math"

// DefaultSeed is used when a match is simulated without an explicit seed.
const DefaultSeed int64 = 42

// Weights are the relative odds of each event category once the per-minute
// event roll has succeeded. A zero weight disables the category.
type Weights struct {
	Goal         float64 `mapstructure:"goal" validate:"gte=0"`
	YellowCard   float64 `mapstructure:"yellow_card" validate:"gte=0"`
	RedCard      float64 `mapstructure:"red_card" validate:"gte=0"`
	Substitution float64 `mapstructure:"substitution" validate:"gte=0"`
	Foul         float64 `mapstructure:"foul" validate:"gte=0"`
	Penalty      float64 `mapstructure:"penalty" validate:"gte=0"`
	Corner       float64 `mapstructure:"corner" validate:"gte=0"`
	Offside      float64 `mapstructure:"offside" validate:"gte=0"`
	FreeKick     float64 `mapstructure:"free_kick" validate:"gte=0"`
	Injury       float64 `mapstructure:"injury" validate:"gte=0"`
}

// Config holds the probability tables and rule constants of a simulation.
type Config struct {
	EventChance       float64 `mapstructure:"event_chance" validate:"gt=0,lte=1"`
	Weights           Weights `mapstructure:"weights"`
	HomeAdvantage     float64 `mapstructure:"home_advantage" validate:"gte=1"`
	AssistChance      float64 `mapstructure:"assist_chance" validate:"gte=0,lte=1"`
	PenaltyConversion float64 `mapstructure:"penalty_conversion" validate:"gte=0,lte=1"`
	SubstitutionAfter int     `mapstructure:"substitution_after" validate:"gte=0,lte=90"`
	MaxSubstitutions  int     `mapstructure:"max_substitutions" validate:"gte=0"`
	DefaultSeed       int64   `mapstructure:"default_seed"`
}

// DefaultConfig returns the standard probability tables.
func DefaultConfig() Config {
	return Config{
		EventChance: 0.10,
		Weights: Weights{
			Goal:         0.02,
			YellowCard:   0.04,
			RedCard:      0.002,
			Substitution: 0.01,
			Foul:         0.05,
			Penalty:      0.004,
			Corner:       0.03,
			Offside:      0.02,
			FreeKick:     0.03,
			Injury:       0.005,
		},
		HomeAdvantage:     1.1,
		AssistChance:      0.6,
		PenaltyConversion: 0.75,
		SubstitutionAfter: 45,
		MaxSubstitutions:  5,
		DefaultSeed:       DefaultSeed,
	}
}

type category int

const (
	catGoal category = iota
	catYellow
	catRed
	catSubstitution
	catFoul
	catPenalty
	catCorner
	catOffside
	catFreeKick
	catInjury
)

type weighted struct {
	cat    category
	weight float64
}

// table lists the categories in their fixed draw order, skipping disabled ones.
func (w Weights) table() []weighted {
	all := []weighted{
		{catGoal, w.Goal},
		{catYellow, w.YellowCard},
		{catRed, w.RedCard},
		{catSubstitution, w.Substitution},
		{catFoul, w.Foul},
		{catPenalty, w.Penalty},
		{catCorner, w.Corner},
		{catOffside, w.Offside},
		{catFreeKick, w.FreeKick},
		{catInjury, w.Injury},
	}
	out := all[:0]
	for _, c := range all {
		if c.weight > 0 && !math.IsInf(c.weight, 0) && !math.IsNaN(c.weight) {
			out = append(out, c)
		}
	}
	return out
}
