package model

import (
	"math"

	"github.com/shopspring/decimal"
)

// Player represents a footballer owned by exactly one team.
type Player struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	TeamID   string   `json:"team_id" yaml:"team_id"`
	Position Position `json:"position" yaml:"position"`
	Age      int      `json:"age" yaml:"age"`
	PeakAge  int      `json:"peak_age" yaml:"peak_age"`

	// Hard skills.
	Pace        int `json:"pace" yaml:"pace"`
	Shooting    int `json:"shooting" yaml:"shooting"`
	Passing     int `json:"passing" yaml:"passing"`
	Defending   int `json:"defending" yaml:"defending"`
	Physicality int `json:"physicality" yaml:"physicality"`

	// Soft state, mutated over time and by analysis providers.
	Form       int `json:"form" yaml:"form"`
	Morale     int `json:"morale" yaml:"morale"`
	Fitness    int `json:"fitness" yaml:"fitness"`
	Sharpness  int `json:"sharpness" yaml:"sharpness"`
	Reputation int `json:"reputation" yaml:"reputation"`

	Injured                    bool `json:"injured" yaml:"injured"`
	InjuryMatchesRemaining     int  `json:"injury_matches_remaining" yaml:"injury_matches_remaining"`
	Suspended                  bool `json:"suspended" yaml:"suspended"`
	SuspensionMatchesRemaining int  `json:"suspension_matches_remaining" yaml:"suspension_matches_remaining"`

	// Lifetime card counters.
	YellowCards int `json:"yellow_cards" yaml:"yellow_cards"`
	RedCards    int `json:"red_cards" yaml:"red_cards"`

	// Season counters, cleared by ResetSeason.
	SeasonYellows int `json:"season_yellows" yaml:"season_yellows"`
	Appearances   int `json:"appearances" yaml:"appearances"`
	Goals         int `json:"goals" yaml:"goals"`
	Assists       int `json:"assists" yaml:"assists"`

	Wage          decimal.Decimal `json:"wage" yaml:"wage"`
	ContractYears int             `json:"contract_years" yaml:"contract_years"`
}

// skill weights per position: pace, shooting, passing, defending, physicality.
var positionWeights = map[Position][5]float64{
	GK:  {0.05, 0.00, 0.20, 0.50, 0.25},
	CB:  {0.10, 0.00, 0.10, 0.50, 0.30},
	LB:  {0.30, 0.00, 0.20, 0.40, 0.10},
	RB:  {0.30, 0.00, 0.20, 0.40, 0.10},
	CM:  {0.10, 0.10, 0.40, 0.20, 0.20},
	LM:  {0.30, 0.10, 0.40, 0.10, 0.10},
	RM:  {0.30, 0.10, 0.40, 0.10, 0.10},
	CAM: {0.20, 0.30, 0.40, 0.00, 0.10},
	LW:  {0.40, 0.25, 0.25, 0.00, 0.10},
	RW:  {0.40, 0.25, 0.25, 0.00, 0.10},
	ST:  {0.30, 0.40, 0.10, 0.00, 0.20},
}

const (
	maxAgeBonus       = 0.15
	maxAgePenalty     = -0.20
	prePeakStep       = 0.035
	postPeakStep      = 0.05
	defaultPeakAge    = 27
	suspensionPerRed  = 3
	suspensionPer2nd  = 1
	yellowBanInterval = 5
)

// AgeModifier is the age-curve adjustment applied to skills: +15% at peak age,
// falling away on both sides (faster after the peak), never below -20%.
func (p *Player) AgeModifier() float64 {
	peak := p.PeakAge
	if peak <= 0 {
		peak = defaultPeakAge
	}
	diff := p.Age - peak
	var mod float64
	if diff <= 0 {
		mod = maxAgeBonus + float64(diff)*prePeakStep
	} else {
		mod = maxAgeBonus - float64(diff)*postPeakStep
	}
	return ClampFloat(mod, maxAgePenalty, maxAgeBonus)
}

// OverallRating blends hard skills by position and applies the age curve.
func (p *Player) OverallRating() int {
	w, ok := positionWeights[p.Position]
	if !ok {
		w = [5]float64{0.2, 0.2, 0.2, 0.2, 0.2}
	}
	base := w[0]*float64(p.Pace) +
		w[1]*float64(p.Shooting) +
		w[2]*float64(p.Passing) +
		w[3]*float64(p.Defending) +
		w[4]*float64(p.Physicality)
	return clampAttr(int(math.Round(base * (1 + p.AgeModifier()))))
}

// Available reports whether the player may be selected for a match.
func (p *Player) Available() bool {
	return !p.Injured && !p.Suspended
}

// AdvanceMatch counts down suspension and injury by one match.
func (p *Player) AdvanceMatch() {
	if p.Suspended {
		p.SuspensionMatchesRemaining = max(p.SuspensionMatchesRemaining-1, 0)
		if p.SuspensionMatchesRemaining == 0 {
			p.Suspended = false
		}
	}
	if p.Injured {
		p.InjuryMatchesRemaining = max(p.InjuryMatchesRemaining-1, 0)
		if p.InjuryMatchesRemaining == 0 {
			p.Injured = false
		}
	}
}

// Suspend bans the player for n further matches; bans do not stack downwards.
func (p *Player) Suspend(n int) {
	if n <= 0 {
		return
	}
	p.Suspended = true
	p.SuspensionMatchesRemaining = max(p.SuspensionMatchesRemaining, n)
}

// SuspendForRed applies the ban for a sending off.
func (p *Player) SuspendForRed(secondYellow bool) {
	if secondYellow {
		p.Suspend(suspensionPer2nd)
		return
	}
	p.Suspend(suspensionPerRed)
}

// BookYellow records a caution on both the lifetime and season counters.
func (p *Player) BookYellow() {
	p.YellowCards++
	p.SeasonYellows++
}

// YellowBanDue reports whether the season yellow count sits on a ban threshold.
func (p *Player) YellowBanDue() bool {
	return p.SeasonYellows > 0 && p.SeasonYellows%yellowBanInterval == 0
}

// Injure sidelines the player for n matches.
func (p *Player) Injure(n int) {
	if n <= 0 {
		return
	}
	p.Injured = true
	p.InjuryMatchesRemaining = max(p.InjuryMatchesRemaining, n)
}

// AdjustSoft adds deltas to the soft attributes, clamping each to 1-100.
func (p *Player) AdjustSoft(form, morale, fitness, sharpness int) {
	p.Form = clampAttr(p.Form + form)
	p.Morale = clampAttr(p.Morale + morale)
	p.Fitness = clampAttr(p.Fitness + fitness)
	p.Sharpness = clampAttr(p.Sharpness + sharpness)
}

// Clamp forces every bounded attribute back into range.
func (p *Player) Clamp() {
	p.Pace = clampAttr(p.Pace)
	p.Shooting = clampAttr(p.Shooting)
	p.Passing = clampAttr(p.Passing)
	p.Defending = clampAttr(p.Defending)
	p.Physicality = clampAttr(p.Physicality)
	p.Form = clampAttr(p.Form)
	p.Morale = clampAttr(p.Morale)
	p.Fitness = clampAttr(p.Fitness)
	p.Sharpness = clampAttr(p.Sharpness)
	p.Reputation = clampAttr(p.Reputation)
	p.InjuryMatchesRemaining = max(p.InjuryMatchesRemaining, 0)
	p.SuspensionMatchesRemaining = max(p.SuspensionMatchesRemaining, 0)
}

// ResetSeason clears per-season counters; lifetime card totals are kept.
func (p *Player) ResetSeason() {
	p.SeasonYellows = 0
	p.Appearances = 0
	p.Goals = 0
	p.Assists = 0
}
