package tui

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/maxviazov/football-manager-sim/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFA500")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	leaderStyle = cellStyle.Foreground(lipgloss.Color("#5FD75F"))
)

// Standings renders a league table.
func Standings(title string, rows []model.StandingRow) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#5F5F87"))).
		Headers("#", "Team", "P", "W", "D", "L", "GF", "GA", "GD", "Pts", "Form").
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == 0:
				return leaderStyle
			default:
				return cellStyle
			}
		})
	for _, r := range rows {
		form := make([]string, len(r.Form))
		for i, f := range r.Form {
			form[i] = string(f)
		}
		t.Row(
			strconv.Itoa(r.Position), r.TeamName,
			strconv.Itoa(r.Played), strconv.Itoa(r.Wins), strconv.Itoa(r.Draws), strconv.Itoa(r.Losses),
			strconv.Itoa(r.GoalsFor), strconv.Itoa(r.GoalsAgainst), fmt.Sprintf("%+d", r.GoalDifference),
			strconv.Itoa(r.Points), strings.Join(form, ""),
		)
	}
	return titleStyle.Render(title) + "\n" + t.Render()
}

// TopScorers lists the n players with most goals in the league, assists
// breaking ties.
func TopScorers(w *model.World, leagueID string, n int) string {
	type scorer struct {
		name, team   string
		goals, assts int
	}
	var all []scorer
	for _, id := range w.TeamIDs() {
		t := w.Teams[id]
		if t.LeagueID != leagueID {
			continue
		}
		for _, p := range t.Roster {
			if p.Goals > 0 {
				all = append(all, scorer{p.Name, t.Name, p.Goals, p.Assists})
			}
		}
	}
	slices.SortStableFunc(all, func(a, b scorer) int {
		if c := cmp.Compare(b.goals, a.goals); c != 0 {
			return c
		}
		return cmp.Compare(b.assts, a.assts)
	})
	all = all[:min(n, len(all))]

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Player", "Team", "G", "A").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, s := range all {
		t.Row(s.name, s.team, strconv.Itoa(s.goals), strconv.Itoa(s.assts))
	}
	return titleStyle.Render("Top scorers") + "\n" + t.Render()
}
