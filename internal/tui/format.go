package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/maxviazov/football-manager-sim/internal/event"
)

// Line renders one stored event as a single feed line.
func Line(st event.Stored) string {
	prefix := fmt.Sprintf("#%-6d", st.Sequence)
	if ms, ok := st.Event.(event.MatchScoped); ok {
		h := ms.Match()
		prefix += fmt.Sprintf(" %s %3d' %d-%d", h.MatchID, h.Minute, h.HomeScore, h.AwayScore)
	}
	return prefix + "  " + describe(st.Event)
}

func describe(e event.Event) string {
	switch v := e.(type) {
	case event.WorldInitialized:
		return fmt.Sprintf("world %q created: %d leagues, %d teams, %d players (seed %d)", v.Name, v.Leagues, v.Teams, v.Players, v.Seed)
	case event.MatchScheduled:
		return fmt.Sprintf("scheduled %s: %s v %s (season %d, matchday %d)", v.MatchID, v.HomeTeamID, v.AwayTeamID, v.Season, v.Matchday)
	case event.MatchStarted:
		return fmt.Sprintf("%s v %s at %s", v.HomeTeamID, v.AwayTeamID, v.Venue)
	case event.KickOff:
		return fmt.Sprintf("kick-off, %s start", v.KickingTeamID)
	case event.Goal:
		s := "GOAL " + v.TeamID + ": " + v.ScorerID
		if v.Penalty {
			s += " (pen)"
		}
		if v.AssistID != "" {
			s += ", assist " + v.AssistID
		}
		return s
	case event.YellowCard:
		return fmt.Sprintf("yellow card %s (%s)", v.PlayerID, v.Reason)
	case event.RedCard:
		if v.SecondYellow {
			return fmt.Sprintf("red card %s, second yellow", v.PlayerID)
		}
		return fmt.Sprintf("red card %s (%s)", v.PlayerID, v.Reason)
	case event.Substitution:
		return fmt.Sprintf("sub %s: %s on, %s off", v.TeamID, v.PlayerOnID, v.PlayerOffID)
	case event.CornerKick:
		return fmt.Sprintf("corner %s (%s)", v.TeamID, v.Side)
	case event.Foul:
		return fmt.Sprintf("foul by %s on %s", v.PlayerID, v.VictimID)
	case event.PenaltyAwarded:
		return fmt.Sprintf("penalty %s, %s to take", v.TeamID, v.TakerID)
	case event.Offside:
		return fmt.Sprintf("offside %s", v.PlayerID)
	case event.FreeKick:
		return fmt.Sprintf("%s free kick %s", v.Kind, v.TeamID)
	case event.Injury:
		return fmt.Sprintf("injury %s, %s, out %d", v.PlayerID, v.Severity, v.MatchesOut)
	case event.MatchEnded:
		return fmt.Sprintf("full time %s v %s", v.HomeTeamID, v.AwayTeamID)
	case event.SoftStateUpdated:
		keys := make([]string, 0, len(v.Deltas))
		for k := range v.Deltas {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s %+g", k, v.Deltas[k]))
		}
		return fmt.Sprintf("%s %s: %s", v.EntityType, v.EntityID, strings.Join(parts, ", "))
	case event.MediaStoryPublished:
		return fmt.Sprintf("%s: %s", v.Outlet, v.Headline)
	case event.OwnerStatement:
		return fmt.Sprintf("board of %s: %s", v.TeamID, v.Statement)
	case event.AgentNegotiation:
		return fmt.Sprintf("%s for %s asks %s (now %s)", v.AgentName, v.PlayerID, v.DemandWage, v.CurrentWage)
	default:
		return string(e.Type())
	}
}
