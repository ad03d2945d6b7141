package simulation

import (
	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/model"
)

// SecondYellowReason is the RedCard reason emitted on a second caution.
const SecondYellowReason = "Second yellow card"

var (
	yellowReasons = []string{"Unsporting behaviour", "Dissent", "Persistent infringement", "Delaying the restart", "Reckless challenge"}
	redReasons    = []string{"Violent conduct", "Serious foul play", "Denying an obvious goal-scoring opportunity", "Abusive language"}
	subReasons    = []string{"Tactical", "Fatigue", "Tactical", "Time management"}
	pitchAreas    = []string{"defensive third", "midfield", "attacking third"}
	foulSeverity  = []string{"careless", "careless", "reckless", "excessive force"}
	freeKickSpots = []string{"own half", "midfield", "edge of the box", "wide right", "wide left"}
)

type injuryGrade struct {
	severity string
	min, max int
}

var injuryGrades = []injuryGrade{
	{"minor", 1, 1},
	{"moderate", 2, 3},
	{"serious", 4, 8},
}

// strength blends the attacking skills and form of the outfielders on the
// pitch; attackers count half again as much.
func (s *Simulator) strength(sd *side) float64 {
	var total float64
	for _, p := range sd.outfield() {
		v := 0.35*float64(p.Shooting) + 0.25*float64(p.Pace) + 0.25*float64(p.Passing) + 0.15*float64(p.Physicality)
		v *= 0.75 + float64(p.Form)/200
		if p.Position.IsAttacking() {
			v *= 1.5
		}
		total += v
	}
	if sd.home {
		total *= s.cfg.HomeAdvantage
	}
	return total
}

// attackingSide draws a team in proportion to strength.
func (s *Simulator) attackingSide() (*side, bool) {
	h, a := s.strength(s.home), s.strength(s.away)
	if h+a <= 0 {
		return nil, false
	}
	if s.rng.Float64()*(h+a) < h {
		return s.home, true
	}
	return s.away, true
}

func (s *Simulator) score(sd *side) {
	if sd.home {
		s.match.HomeScore++
	} else {
		s.match.AwayScore++
	}
	sd.stats.Shots++
	sd.stats.ShotsOnTarget++
}

func (s *Simulator) goal(minute int) []event.Event {
	sd, ok := s.attackingSide()
	if !ok {
		return nil
	}
	pool := sd.attackers()
	if len(pool) == 0 {
		pool = sd.outfield()
	}
	if len(pool) == 0 {
		return nil
	}
	scorer := choose(s.rng, pool)

	var assist *model.Player
	if s.rng.Float64() < s.cfg.AssistChance {
		var mates []*model.Player
		for _, p := range sd.outfield() {
			if p != scorer {
				mates = append(mates, p)
			}
		}
		if len(mates) > 0 {
			assist = choose(s.rng, mates)
		}
	}

	s.score(sd)
	s.goals[scorer.ID]++
	g := event.Goal{MatchHeader: s.header(minute), TeamID: sd.team.ID, ScorerID: scorer.ID}
	if assist != nil {
		s.assists[assist.ID]++
		g.AssistID = assist.ID
		s.comment(minute, "GOAL! %s scores for %s, assisted by %s. %s", scorer.Name, sd.team.Name, assist.Name, s.scoreline())
	} else {
		s.comment(minute, "GOAL! %s scores for %s. %s", scorer.Name, sd.team.Name, s.scoreline())
	}
	return []event.Event{g}
}

// yellowCard books a uniformly chosen player. A player already cautioned in
// this match is sent off instead and no second YellowCard is emitted.
func (s *Simulator) yellowCard(minute int) []event.Event {
	sd := s.randomSide()
	if len(sd.onPitch) == 0 {
		return nil
	}
	p := choose(s.rng, sd.onPitch)
	if s.yellows[p.ID] > 0 {
		return []event.Event{s.sendOff(minute, sd, p, SecondYellowReason, true)}
	}
	reason := choose(s.rng, yellowReasons)
	s.yellows[p.ID]++
	p.BookYellow()
	sd.stats.YellowCards++
	s.comment(minute, "Yellow card: %s (%s) for %s.", p.Name, sd.team.Name, lower(reason))
	return []event.Event{event.YellowCard{MatchHeader: s.header(minute), TeamID: sd.team.ID, PlayerID: p.ID, Reason: reason}}
}

func (s *Simulator) redCard(minute int) []event.Event {
	sd := s.randomSide()
	if len(sd.onPitch) == 0 {
		return nil
	}
	p := choose(s.rng, sd.onPitch)
	return []event.Event{s.sendOff(minute, sd, p, choose(s.rng, redReasons), false)}
}

func (s *Simulator) sendOff(minute int, sd *side, p *model.Player, reason string, second bool) event.Event {
	p.RedCards++
	sd.stats.RedCards++
	sd.remove(p)
	s.sentOff[p.ID] = true
	s.comment(minute, "RED CARD! %s (%s) is sent off: %s.", p.Name, sd.team.Name, lower(reason))
	return event.RedCard{MatchHeader: s.header(minute), TeamID: sd.team.ID, PlayerID: p.ID, Reason: reason, SecondYellow: second}
}

// substitution swaps an outfielder for a bench outfielder after the window
// opens. Players who came off cannot return.
func (s *Simulator) substitution(minute int) []event.Event {
	if minute <= s.cfg.SubstitutionAfter {
		return nil
	}
	sd := s.randomSide()
	if sd.subs >= s.cfg.MaxSubstitutions {
		return nil
	}
	off := sd.outfield()
	var on []*model.Player
	for _, p := range sd.bench {
		if p.Position != model.GK {
			on = append(on, p)
		}
	}
	if len(off) == 0 || len(on) == 0 {
		return nil
	}
	out, in := choose(s.rng, off), choose(s.rng, on)
	return []event.Event{s.swap(minute, sd, out, in, choose(s.rng, subReasons))}
}

func (s *Simulator) swap(minute int, sd *side, out, in *model.Player, reason string) event.Event {
	sd.remove(out)
	sd.bench = removePlayer(sd.bench, in)
	sd.onPitch = append(sd.onPitch, in)
	sd.subs++
	s.comment(minute, "Substitution for %s: %s replaces %s.", sd.team.Name, in.Name, out.Name)
	return event.Substitution{MatchHeader: s.header(minute), TeamID: sd.team.ID, PlayerOffID: out.ID, PlayerOnID: in.ID, Reason: reason}
}

func removePlayer(ps []*model.Player, p *model.Player) []*model.Player {
	out := ps[:0]
	for _, x := range ps {
		if x != p {
			out = append(out, x)
		}
	}
	return out
}

func (s *Simulator) foul(minute int) []event.Event {
	sd := s.randomSide()
	opp := s.other(sd)
	if len(sd.onPitch) == 0 || len(opp.onPitch) == 0 {
		return nil
	}
	offender := choose(s.rng, sd.onPitch)
	victim := choose(s.rng, opp.onPitch)
	sd.stats.Fouls++
	return []event.Event{event.Foul{
		MatchHeader: s.header(minute),
		TeamID:      sd.team.ID,
		PlayerID:    offender.ID,
		VictimID:    victim.ID,
		Location:    choose(s.rng, pitchAreas),
		Severity:    choose(s.rng, foulSeverity),
	}}
}

// penalty awards a spot kick to a strength-weighted side; the best finisher on
// the pitch takes it. A converted penalty is followed by a Goal linked to it.
func (s *Simulator) penalty(minute int) []event.Event {
	sd, ok := s.attackingSide()
	if !ok {
		return nil
	}
	opp := s.other(sd)
	takers, fouls := sd.outfield(), opp.outfield()
	if len(takers) == 0 || len(fouls) == 0 {
		return nil
	}
	taker := takers[0]
	for _, p := range takers[1:] {
		if p.Shooting > taker.Shooting {
			taker = p
		}
	}
	fouler := choose(s.rng, fouls)
	converted := s.rng.Float64() < s.cfg.PenaltyConversion

	sd.stats.Penalties++
	opp.stats.Fouls++
	awarded := event.PenaltyAwarded{
		MatchHeader: s.header(minute),
		TeamID:      sd.team.ID,
		TakerID:     taker.ID,
		FouledByID:  fouler.ID,
		Converted:   converted,
	}
	if !converted {
		sd.stats.Shots++
		s.comment(minute, "Penalty to %s! %s's spot kick is missed.", sd.team.Name, taker.Name)
		return []event.Event{awarded}
	}

	s.score(sd)
	s.goals[taker.ID]++
	s.comment(minute, "GOAL! %s converts a penalty for %s. %s", taker.Name, sd.team.Name, s.scoreline())
	return []event.Event{awarded, event.Goal{
		MatchHeader:   s.header(minute),
		TeamID:        sd.team.ID,
		ScorerID:      taker.ID,
		Penalty:       true,
		LinkedEventID: awarded.ID,
	}}
}

func (s *Simulator) corner(minute int) []event.Event {
	sd := s.randomSide()
	takers := sd.outfield()
	if len(takers) == 0 {
		return nil
	}
	taker := choose(s.rng, takers)
	cornerSide := "left"
	if s.rng.IntN(2) == 1 {
		cornerSide = "right"
	}
	sd.stats.Corners++
	return []event.Event{event.CornerKick{MatchHeader: s.header(minute), TeamID: sd.team.ID, TakerID: taker.ID, Side: cornerSide}}
}

func (s *Simulator) offside(minute int) []event.Event {
	sd := s.randomSide()
	pool := sd.attackers()
	if len(pool) == 0 {
		pool = sd.outfield()
	}
	if len(pool) == 0 {
		return nil
	}
	p := choose(s.rng, pool)
	sd.stats.Offsides++
	return []event.Event{event.Offside{MatchHeader: s.header(minute), TeamID: sd.team.ID, PlayerID: p.ID}}
}

func (s *Simulator) freeKick(minute int) []event.Event {
	sd := s.randomSide()
	takers := sd.outfield()
	if len(takers) == 0 {
		return nil
	}
	taker := choose(s.rng, takers)
	kind := "indirect"
	if s.rng.IntN(3) == 0 {
		kind = "direct"
	}
	sd.stats.FreeKicks++
	return []event.Event{event.FreeKick{
		MatchHeader: s.header(minute),
		TeamID:      sd.team.ID,
		TakerID:     taker.ID,
		Kind:        kind,
		Location:    choose(s.rng, freeKickSpots),
	}}
}

// injury takes a player off the pitch; a bench player replaces them when the
// side still has substitutions left, whatever the minute.
func (s *Simulator) injury(minute int) []event.Event {
	sd := s.randomSide()
	if len(sd.onPitch) == 0 {
		return nil
	}
	p := choose(s.rng, sd.onPitch)
	grade := choose(s.rng, injuryGrades)
	out := grade.min
	if grade.max > grade.min {
		out += s.rng.IntN(grade.max - grade.min + 1)
	}
	s.comment(minute, "Injury: %s (%s) is hurt, a %s problem.", p.Name, sd.team.Name, grade.severity)
	events := []event.Event{event.Injury{
		MatchHeader: s.header(minute),
		TeamID:      sd.team.ID,
		PlayerID:    p.ID,
		Severity:    grade.severity,
		MatchesOut:  out,
	}}

	var replacements []*model.Player
	for _, b := range sd.bench {
		if (b.Position == model.GK) == (p.Position == model.GK) {
			replacements = append(replacements, b)
		}
	}
	if sd.subs < s.cfg.MaxSubstitutions && len(replacements) > 0 {
		return append(events, s.swap(minute, sd, p, choose(s.rng, replacements), "Injury"))
	}
	sd.remove(p)
	return events
}
