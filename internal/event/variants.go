package event

import "github.com/google/uuid"

// WorldInitialized marks the creation of a fresh world.
type WorldInitialized struct {
	Header
	WorldID string `json:"world_id"`
	Name    string `json:"name"`
	Seed    int64  `json:"seed"`
	Leagues int    `json:"leagues"`
	Teams   int    `json:"teams"`
	Players int    `json:"players"`
}

// MatchScheduled is emitted once per generated fixture.
type MatchScheduled struct {
	Header
	MatchID    string `json:"match_id"`
	LeagueID   string `json:"league_id"`
	Season     int    `json:"season"`
	Matchday   int    `json:"matchday"`
	HomeTeamID string `json:"home_team_id"`
	AwayTeamID string `json:"away_team_id"`
}

// MatchStarted precedes a simulation run and records its inputs.
type MatchStarted struct {
	MatchHeader
	HomeTeamID string `json:"home_team_id"`
	AwayTeamID string `json:"away_team_id"`
	Seed       int64  `json:"seed"`
	Venue      string `json:"venue"`
}

type KickOff struct {
	MatchHeader
	HomeTeamID    string   `json:"home_team_id"`
	AwayTeamID    string   `json:"away_team_id"`
	KickingTeamID string   `json:"kicking_team_id"`
	HomeLineup    []string `json:"home_lineup"`
	AwayLineup    []string `json:"away_lineup"`
}

// Goal is scored by ScorerID of TeamID. LinkedEventID points at the
// PenaltyAwarded a penalty goal converts and is the nil UUID otherwise.
type Goal struct {
	MatchHeader
	TeamID        string    `json:"team_id"`
	ScorerID      string    `json:"scorer_id"`
	AssistID      string    `json:"assist_id,omitempty"`
	Penalty       bool      `json:"penalty"`
	LinkedEventID uuid.UUID `json:"linked_event_id"`
}

type YellowCard struct {
	MatchHeader
	TeamID   string `json:"team_id"`
	PlayerID string `json:"player_id"`
	Reason   string `json:"reason"`
}

type RedCard struct {
	MatchHeader
	TeamID       string `json:"team_id"`
	PlayerID     string `json:"player_id"`
	Reason       string `json:"reason"`
	SecondYellow bool   `json:"second_yellow"`
}

type Substitution struct {
	MatchHeader
	TeamID      string `json:"team_id"`
	PlayerOffID string `json:"player_off_id"`
	PlayerOnID  string `json:"player_on_id"`
	Reason      string `json:"reason"`
}

type CornerKick struct {
	MatchHeader
	TeamID  string `json:"team_id"`
	TakerID string `json:"taker_id"`
	Side    string `json:"side"`
}

// Foul is committed by PlayerID of TeamID against VictimID.
type Foul struct {
	MatchHeader
	TeamID   string `json:"team_id"`
	PlayerID string `json:"player_id"`
	VictimID string `json:"victim_id"`
	Location string `json:"location"`
	Severity string `json:"severity"`
}

// PenaltyAwarded is given to TeamID; Converted tells whether a linked Goal follows.
type PenaltyAwarded struct {
	MatchHeader
	TeamID     string `json:"team_id"`
	TakerID    string `json:"taker_id"`
	FouledByID string `json:"fouled_by_id"`
	Converted  bool   `json:"converted"`
}

type Offside struct {
	MatchHeader
	TeamID   string `json:"team_id"`
	PlayerID string `json:"player_id"`
}

type FreeKick struct {
	MatchHeader
	TeamID   string `json:"team_id"`
	TakerID  string `json:"taker_id"`
	Kind     string `json:"kind"`
	Location string `json:"location"`
}

type Injury struct {
	MatchHeader
	TeamID     string `json:"team_id"`
	PlayerID   string `json:"player_id"`
	Severity   string `json:"severity"`
	MatchesOut int    `json:"matches_out"`
}

// SideStatistics are one team's aggregated match numbers.
type SideStatistics struct {
	Possession    int `json:"possession"`
	Shots         int `json:"shots"`
	ShotsOnTarget int `json:"shots_on_target"`
	Corners       int `json:"corners"`
	Fouls         int `json:"fouls"`
	FreeKicks     int `json:"free_kicks"`
	Offsides      int `json:"offsides"`
	Penalties     int `json:"penalties"`
	YellowCards   int `json:"yellow_cards"`
	RedCards      int `json:"red_cards"`
}

// MatchStatistics pairs both sides' numbers.
type MatchStatistics struct {
	Home SideStatistics `json:"home"`
	Away SideStatistics `json:"away"`
}

// MatchEnded is the terminal event of a simulation.
type MatchEnded struct {
	MatchHeader
	HomeTeamID    string             `json:"home_team_id"`
	AwayTeamID    string             `json:"away_team_id"`
	Stats         MatchStatistics    `json:"stats"`
	PlayerRatings map[string]float64 `json:"player_ratings"`
	Commentary    []string           `json:"commentary"`
}

// SoftStateUpdated records one validated, applied soft-state change.
type SoftStateUpdated struct {
	Header
	EntityType string             `json:"entity_type"`
	EntityID   string             `json:"entity_id"`
	Deltas     map[string]float64 `json:"deltas"`
	Rationale  string             `json:"rationale"`
	Provider   string             `json:"provider"`
}

type MediaStoryPublished struct {
	Header
	Outlet    string `json:"outlet"`
	Headline  string `json:"headline"`
	Body      string `json:"body"`
	Sentiment int    `json:"sentiment"`
	TeamID    string `json:"team_id,omitempty"`
	PlayerID  string `json:"player_id,omitempty"`
}

type OwnerStatement struct {
	Header
	TeamID     string `json:"team_id"`
	Statement  string `json:"statement"`
	Confidence int    `json:"confidence"`
}

type AgentNegotiation struct {
	Header
	PlayerID    string `json:"player_id"`
	TeamID      string `json:"team_id"`
	AgentName   string `json:"agent_name"`
	CurrentWage string `json:"current_wage"`
	DemandWage  string `json:"demand_wage"`
	Status      string `json:"status"`
}

func (WorldInitialized) Type() Type    { return TypeWorldInitialized }
func (MatchScheduled) Type() Type      { return TypeMatchScheduled }
func (MatchStarted) Type() Type        { return TypeMatchStarted }
func (KickOff) Type() Type             { return TypeKickOff }
func (Goal) Type() Type                { return TypeGoal }
func (YellowCard) Type() Type          { return TypeYellowCard }
func (RedCard) Type() Type             { return TypeRedCard }
func (Substitution) Type() Type        { return TypeSubstitution }
func (CornerKick) Type() Type          { return TypeCornerKick }
func (Foul) Type() Type                { return TypeFoul }
func (PenaltyAwarded) Type() Type      { return TypePenaltyAwarded }
func (Offside) Type() Type             { return TypeOffside }
func (FreeKick) Type() Type            { return TypeFreeKick }
func (Injury) Type() Type              { return TypeInjury }
func (MatchEnded) Type() Type          { return TypeMatchEnded }
func (SoftStateUpdated) Type() Type    { return TypeSoftStateUpdated }
func (MediaStoryPublished) Type() Type { return TypeMediaStoryPublished }
func (OwnerStatement) Type() Type      { return TypeOwnerStatement }
func (AgentNegotiation) Type() Type    { return TypeAgentNegotiation }
