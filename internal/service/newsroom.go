package service

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/maxviazov/football-manager-sim/internal/event"
	"github.com/maxviazov/football-manager-sim/internal/model"
)

var outlets = []string{"The Touchline", "Matchday Gazette", "Sports Wire", "The Terrace Times", "Final Whistle"}

func outletFor(key string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return outlets[h.Sum32()%uint32(len(outlets))]
}

func teamName(w *model.World, id string) string {
	if t, ok := w.Teams[id]; ok {
		return t.Name
	}
	return id
}

// matchStory is the match report. It is written about the winner, or the
// home side after a draw; sentiment grows with the margin.
func matchStory(w *model.World, m *model.Match, at time.Time) event.Event {
	home, away := teamName(w, m.HomeTeamID), teamName(w, m.AwayTeamID)
	margin := m.HomeScore - m.AwayScore

	story := event.MediaStoryPublished{
		Header: event.NewHeader(at),
		Outlet: outletFor(m.ID),
		TeamID: m.HomeTeamID,
	}
	switch {
	case margin == 0 && m.HomeScore == 0:
		story.Headline = fmt.Sprintf("Stalemate as %s and %s cancel each other out", home, away)
		story.Sentiment = -1
	case margin == 0:
		story.Headline = fmt.Sprintf("Honours even between %s and %s", home, away)
		story.Sentiment = 1
	case margin > 0:
		story.Headline = headline(home, away, margin, true)
		story.Sentiment = min(margin, 3) * 2
	default:
		story.TeamID = m.AwayTeamID
		story.Headline = headline(away, home, -margin, false)
		story.Sentiment = min(-margin, 3) * 2
	}
	story.Body = fmt.Sprintf("%s %d-%d %s (%s, season %d, matchday %d).",
		home, m.HomeScore, m.AwayScore, away, m.LeagueID, m.Season, m.Matchday)
	return story
}

func headline(winner, loser string, margin int, home bool) string {
	switch {
	case margin >= 3:
		return fmt.Sprintf("%s run riot against %s", winner, loser)
	case !home:
		return fmt.Sprintf("%s snatch the points on the road at %s", winner, loser)
	case margin == 1:
		return fmt.Sprintf("%s edge past %s", winner, loser)
	default:
		return fmt.Sprintf("%s see off %s", winner, loser)
	}
}

// ownerStatement reacts to a change in board confidence.
func ownerStatement(t *model.Team, delta float64, at time.Time) event.Event {
	var text string
	switch {
	case delta > 0 && t.BoardConfidence >= 70:
		text = fmt.Sprintf("The board is delighted with the direction of %s.", t.Name)
	case delta > 0:
		text = fmt.Sprintf("The board welcomes the improvement at %s.", t.Name)
	case t.BoardConfidence <= 30:
		text = fmt.Sprintf("The board has serious concerns about the situation at %s.", t.Name)
	default:
		text = fmt.Sprintf("The board expects a response from %s.", t.Name)
	}
	return event.OwnerStatement{
		Header:     event.NewHeader(at),
		TeamID:     t.ID,
		Statement:  text,
		Confidence: t.BoardConfidence,
	}
}
