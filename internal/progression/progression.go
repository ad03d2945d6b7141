// Package progression advances the world between matches: weekly recovery,
// monthly finances and the end-of-season rollover.
package progression

import (
	"cmp"
	"hash/fnv"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/model"
)

const (
	fitnessRecovery       = 15
	injuredRecovery       = 5
	sharpnessDecay        = 2
	homeMatchesPerMonth   = 2
	wageWeeksPerMonth     = 4
	sponsorPerReputation  = 10_000
	renewalYears          = 2
	contractExpiringYears = 1
)

var (
	renewalRaise = decimal.RequireFromString("1.10")
	agents       = []string{"Mendes Sports", "Raiola Partners", "Stellar Group", "CAA Base", "Wasserman", "Elite Project"}
)

// Weekly recovers fitness, lets unused sharpness fade and pulls form and
// morale a tenth of the way back toward 50 for the given teams. Unknown ids
// are ignored.
func Weekly(w *model.World, teamIDs []string) {
	for _, id := range teamIDs {
		t, ok := w.Teams[id]
		if !ok {
			continue
		}
		for _, p := range t.Roster {
			recovery := fitnessRecovery
			if p.Injured {
				recovery = injuredRecovery
			}
			p.AdjustSoft(towardMiddle(p.Form), towardMiddle(p.Morale), recovery, -sharpnessDecay)
		}
		t.Morale = model.ClampInt(t.Morale+towardMiddle(t.Morale), model.MinAttribute, model.MaxAttribute)
	}
}

func towardMiddle(v int) int { return (50 - v) / 10 }

// Monthly settles club finances, drifts reputation with recent results and
// opens contract talks for each club's best player on an expiring deal. It
// returns the AgentNegotiation events it produced, stamped at now. Only the
// given teams are touched.
func Monthly(w *model.World, teamIDs []string, now time.Time) []event.Event {
	var out []event.Event
	for _, id := range teamIDs {
		t, ok := w.Teams[id]
		if !ok {
			continue
		}
		settleFinances(t)
		driftReputation(t)
		if e, ok := negotiation(t, now); ok {
			out = append(out, e)
		}
	}
	return out
}

func settleFinances(t *model.Team) {
	tickets := t.TicketPrice.Mul(decimal.NewFromInt(int64(t.SeasonTicketHolders * homeMatchesPerMonth)))
	sponsorship := decimal.NewFromInt(int64(t.Reputation * sponsorPerReputation))
	wages := t.WageBill().Mul(decimal.NewFromInt(wageWeeksPerMonth))
	t.Balance = t.Balance.Add(tickets).Add(sponsorship).Sub(wages).Round(2)
}

func driftReputation(t *model.Team) {
	net := 0
	for _, r := range t.RecentForm {
		switch r {
		case model.Win:
			net++
		case model.Loss:
			net--
		}
	}
	t.Reputation += net / 2
	t.BoardConfidence += net
	t.FanSentiment += net
	if t.Balance.IsNegative() {
		t.BoardConfidence -= 5
	}
	t.Clamp()
}

func negotiation(t *model.Team, now time.Time) (event.Event, bool) {
	var expiring []*model.Player
	for _, p := range t.Roster {
		if p.ContractYears <= contractExpiringYears {
			expiring = append(expiring, p)
		}
	}
	if len(expiring) == 0 {
		return nil, false
	}
	slices.SortStableFunc(expiring, func(a, b *model.Player) int {
		return cmp.Compare(b.OverallRating(), a.OverallRating())
	})
	p := expiring[0]
	// demands scale with reputation: 50 asks +25%, 100 asks +50%
	factor := decimal.NewFromInt(int64(200 + p.Reputation)).Div(decimal.NewFromInt(200))
	return event.AgentNegotiation{
		Header:      event.NewHeader(now),
		PlayerID:    p.ID,
		TeamID:      t.ID,
		AgentName:   agentFor(p.ID),
		CurrentWage: p.Wage.StringFixed(2),
		DemandWage:  p.Wage.Mul(factor).Round(-1).StringFixed(2),
		Status:      "opened",
	}, true
}

func agentFor(playerID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(playerID))
	return agents[h.Sum32()%uint32(len(agents))]
}

// EndOfSeason ages every player, runs contracts down (renewing expired ones
// with a raise), clears season counters, renews season tickets by fan
// sentiment and moves each league to the next season.
func EndOfSeason(w *model.World) {
	for _, id := range w.TeamIDs() {
		t := w.Teams[id]
		for _, p := range t.Roster {
			p.Age++
			p.ContractYears--
			if p.ContractYears <= 0 {
				p.ContractYears = renewalYears
				p.Wage = p.Wage.Mul(renewalRaise).Round(2)
			}
			p.ResetSeason()
			p.Clamp()
		}
		t.ResetSeason()
		renewal := 80 + t.FanSentiment/5
		t.SetSeasonTicketHolders(t.SeasonTicketHolders * renewal / 100)
		t.Clamp()
	}
	for _, id := range w.LeagueIDs() {
		l := w.Leagues[id]
		l.Season++
		l.CurrentMatchday = 1
	}
}
