package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// recentFormLength bounds Team.RecentForm.
const recentFormLength = 5

// HeadToHead is a team's record against one opponent.
type HeadToHead struct {
	W int `json:"W" yaml:"W"`
	D int `json:"D" yaml:"D"`
	L int `json:"L" yaml:"L"`
}

// Stadium is the team's home ground.
type Stadium struct {
	Name     string `json:"name" yaml:"name"`
	Capacity int    `json:"capacity" yaml:"capacity"`
}

// Team represents a club with its roster and cumulative statistics.
type Team struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	ShortName string    `json:"short_name" yaml:"short_name"`
	LeagueID  string    `json:"league_id" yaml:"league_id"`
	Roster    []*Player `json:"roster" yaml:"roster"`

	MatchesPlayed int `json:"matches_played" yaml:"matches_played"`
	Wins          int `json:"wins" yaml:"wins"`
	Draws         int `json:"draws" yaml:"draws"`
	Losses        int `json:"losses" yaml:"losses"`
	GoalsFor      int `json:"goals_for" yaml:"goals_for"`
	GoalsAgainst  int `json:"goals_against" yaml:"goals_against"`

	HomeWins   int `json:"home_wins" yaml:"home_wins"`
	HomeDraws  int `json:"home_draws" yaml:"home_draws"`
	HomeLosses int `json:"home_losses" yaml:"home_losses"`
	AwayWins   int `json:"away_wins" yaml:"away_wins"`
	AwayDraws  int `json:"away_draws" yaml:"away_draws"`
	AwayLosses int `json:"away_losses" yaml:"away_losses"`

	// CurrentStreak is positive for consecutive wins and negative for consecutive losses.
	CurrentStreak        int                   `json:"current_streak" yaml:"current_streak"`
	LongestWinningStreak int                   `json:"longest_winning_streak" yaml:"longest_winning_streak"`
	LongestLosingStreak  int                   `json:"longest_losing_streak" yaml:"longest_losing_streak"`
	HeadToHead           map[string]HeadToHead `json:"head_to_head" yaml:"head_to_head"`
	CleanSheets          int                   `json:"clean_sheets" yaml:"clean_sheets"`
	RecentForm           []Result              `json:"recent_form" yaml:"recent_form"`

	CaptainID     string `json:"captain_id,omitempty" yaml:"captain_id,omitempty"`
	ViceCaptainID string `json:"vice_captain_id,omitempty" yaml:"vice_captain_id,omitempty"`

	Stadium             Stadium         `json:"stadium" yaml:"stadium"`
	SeasonTicketHolders int             `json:"season_ticket_holders" yaml:"season_ticket_holders"`
	TicketPrice         decimal.Decimal `json:"ticket_price" yaml:"ticket_price"`
	Balance             decimal.Decimal `json:"balance" yaml:"balance"`

	Reputation      int `json:"reputation" yaml:"reputation"`
	Morale          int `json:"morale" yaml:"morale"`
	FanSentiment    int `json:"fan_sentiment" yaml:"fan_sentiment"`
	MediaSentiment  int `json:"media_sentiment" yaml:"media_sentiment"`
	BoardConfidence int `json:"board_confidence" yaml:"board_confidence"`
}

// Points is the derived league points total.
func (t *Team) Points() int { return t.Wins*3 + t.Draws }

// GoalDifference is goals for minus goals against.
func (t *Team) GoalDifference() int { return t.GoalsFor - t.GoalsAgainst }

// Player finds a roster member by id.
func (t *Team) Player(id string) (*Player, bool) {
	for _, p := range t.Roster {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// SetCaptain assigns the captaincy; an empty id clears it.
func (t *Team) SetCaptain(playerID string) error {
	if playerID != "" {
		if _, ok := t.Player(playerID); !ok {
			return fmt.Errorf("%w: captain %q is not in %s roster", ErrInvalidReference, playerID, t.ID)
		}
	}
	t.CaptainID = playerID
	return nil
}

// SetViceCaptain assigns the vice-captaincy; an empty id clears it.
func (t *Team) SetViceCaptain(playerID string) error {
	if playerID != "" {
		if _, ok := t.Player(playerID); !ok {
			return fmt.Errorf("%w: vice-captain %q is not in %s roster", ErrInvalidReference, playerID, t.ID)
		}
	}
	t.ViceCaptainID = playerID
	return nil
}

// SetSeasonTicketHolders stores n bounded by stadium capacity.
func (t *Team) SetSeasonTicketHolders(n int) {
	t.SeasonTicketHolders = ClampInt(n, 0, t.Stadium.Capacity)
}

// RecordResult folds one final score into the cumulative statistics.
// home tells which side of the fixture this team played.
func (t *Team) RecordResult(opponentID string, scored, conceded int, home bool) Result {
	t.MatchesPlayed++
	t.GoalsFor += scored
	t.GoalsAgainst += conceded
	if conceded == 0 {
		t.CleanSheets++
	}

	var r Result
	switch {
	case scored > conceded:
		r = Win
		t.Wins++
		if home {
			t.HomeWins++
		} else {
			t.AwayWins++
		}
		if t.CurrentStreak >= 0 {
			t.CurrentStreak++
		} else {
			t.CurrentStreak = 1
		}
		t.LongestWinningStreak = max(t.LongestWinningStreak, t.CurrentStreak)
	case scored < conceded:
		r = Loss
		t.Losses++
		if home {
			t.HomeLosses++
		} else {
			t.AwayLosses++
		}
		if t.CurrentStreak <= 0 {
			t.CurrentStreak--
		} else {
			t.CurrentStreak = -1
		}
		t.LongestLosingStreak = max(t.LongestLosingStreak, -t.CurrentStreak)
	default:
		r = Draw
		t.Draws++
		if home {
			t.HomeDraws++
		} else {
			t.AwayDraws++
		}
		t.CurrentStreak = 0
	}

	if t.HeadToHead == nil {
		t.HeadToHead = make(map[string]HeadToHead)
	}
	h := t.HeadToHead[opponentID]
	switch r {
	case Win:
		h.W++
	case Draw:
		h.D++
	case Loss:
		h.L++
	}
	t.HeadToHead[opponentID] = h

	t.RecentForm = append(t.RecentForm, r)
	if n := len(t.RecentForm); n > recentFormLength {
		t.RecentForm = append([]Result(nil), t.RecentForm[n-recentFormLength:]...)
	}
	return r
}

// ResetSeason clears league statistics for a new season. Head-to-head and
// longest streaks are all-time records and survive.
func (t *Team) ResetSeason() {
	t.MatchesPlayed, t.Wins, t.Draws, t.Losses = 0, 0, 0, 0
	t.GoalsFor, t.GoalsAgainst = 0, 0
	t.HomeWins, t.HomeDraws, t.HomeLosses = 0, 0, 0
	t.AwayWins, t.AwayDraws, t.AwayLosses = 0, 0, 0
	t.CleanSheets = 0
	t.CurrentStreak = 0
	t.RecentForm = nil
}

// WageBill is the sum of roster wages.
func (t *Team) WageBill() decimal.Decimal {
	total := decimal.Zero
	for _, p := range t.Roster {
		total = total.Add(p.Wage)
	}
	return total
}

// Clamp forces bounded team attributes back into range.
func (t *Team) Clamp() {
	t.Reputation = clampAttr(t.Reputation)
	t.Morale = clampAttr(t.Morale)
	t.FanSentiment = clampAttr(t.FanSentiment)
	t.MediaSentiment = clampAttr(t.MediaSentiment)
	t.BoardConfidence = clampAttr(t.BoardConfidence)
	t.SetSeasonTicketHolders(t.SeasonTicketHolders)
}
