package model

import (
	"slices"
	"time"
)

// Match represents one fixture. It is simulated at most once.
type Match struct {
	ID          string    `json:"id" yaml:"id"`
	LeagueID    string    `json:"league_id" yaml:"league_id"`
	Season      int       `json:"season" yaml:"season"`
	Matchday    int       `json:"matchday" yaml:"matchday"`
	HomeTeamID  string    `json:"home_team_id" yaml:"home_team_id"`
	AwayTeamID  string    `json:"away_team_id" yaml:"away_team_id"`
	HomeScore   int       `json:"home_score" yaml:"home_score"`
	AwayScore   int       `json:"away_score" yaml:"away_score"`
	Minute      int       `json:"minute" yaml:"minute"`
	Finished    bool      `json:"finished" yaml:"finished"`
	Seed        int64     `json:"seed" yaml:"seed"`
	ScheduledAt time.Time `json:"scheduled_at" yaml:"scheduled_at"`
}

// League groups teams that play each other over a season.
type League struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	TeamIDs         []string `json:"team_ids" yaml:"team_ids"`
	CurrentMatchday int      `json:"current_matchday" yaml:"current_matchday"`
	Season          int      `json:"season" yaml:"season"`
	TotalMatchdays  int      `json:"total_matchdays" yaml:"total_matchdays"`
}

// SeasonComplete reports whether every matchday of the season has been played.
func (l *League) SeasonComplete() bool {
	return l.TotalMatchdays > 0 && l.CurrentMatchday > l.TotalMatchdays
}

// StandingRow is one line of a league table.
type StandingRow struct {
	Position       int      `json:"position"`
	TeamID         string   `json:"team_id"`
	TeamName       string   `json:"team_name"`
	Played         int      `json:"played"`
	Wins           int      `json:"wins"`
	Draws          int      `json:"draws"`
	Losses         int      `json:"losses"`
	GoalsFor       int      `json:"goals_for"`
	GoalsAgainst   int      `json:"goals_against"`
	GoalDifference int      `json:"goal_difference"`
	Points         int      `json:"points"`
	Form           []Result `json:"form"`
}

// Standings sorts the league's teams by points, goal difference and goals
// for, all descending. Full ties keep TeamIDs order.
func (l *League) Standings(w *World) []StandingRow {
	teams := make([]*Team, 0, len(l.TeamIDs))
	for _, id := range l.TeamIDs {
		if t, ok := w.Teams[id]; ok {
			teams = append(teams, t)
		}
	}
	slices.SortStableFunc(teams, func(a, b *Team) int {
		if d := b.Points() - a.Points(); d != 0 {
			return d
		}
		if d := b.GoalDifference() - a.GoalDifference(); d != 0 {
			return d
		}
		return b.GoalsFor - a.GoalsFor
	})

	rows := make([]StandingRow, 0, len(teams))
	for i, t := range teams {
		rows = append(rows, StandingRow{
			Position:       i + 1,
			TeamID:         t.ID,
			TeamName:       t.Name,
			Played:         t.MatchesPlayed,
			Wins:           t.Wins,
			Draws:          t.Draws,
			Losses:         t.Losses,
			GoalsFor:       t.GoalsFor,
			GoalsAgainst:   t.GoalsAgainst,
			GoalDifference: t.GoalDifference(),
			Points:         t.Points(),
			Form:           slices.Clone(t.RecentForm),
		})
	}
	return rows
}
