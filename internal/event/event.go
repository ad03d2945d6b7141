// Package event defines the closed set of simulation events and their wire codec.
//
// Every variant embeds Header, whose unexported method seals the Event interface
// to this package. Match-scoped variants embed MatchHeader instead, which adds the
// match id, the minute and the running score at the time of the event.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Type is the discriminator stored alongside each payload.
type Type string

const (
	TypeWorldInitialized    Type = "world_initialized"
	TypeMatchScheduled      Type = "match_scheduled"
	TypeMatchStarted        Type = "match_started"
	TypeKickOff             Type = "kick_off"
	TypeGoal                Type = "goal"
	TypeYellowCard          Type = "yellow_card"
	TypeRedCard             Type = "red_card"
	TypeSubstitution        Type = "substitution"
	TypeCornerKick          Type = "corner_kick"
	TypeFoul                Type = "foul"
	TypePenaltyAwarded      Type = "penalty_awarded"
	TypeOffside             Type = "offside"
	TypeFreeKick            Type = "free_kick"
	TypeInjury              Type = "injury"
	TypeMatchEnded          Type = "match_ended"
	TypeSoftStateUpdated    Type = "soft_state_updated"
	TypeMediaStoryPublished Type = "media_story_published"
	TypeOwnerStatement      Type = "owner_statement"
	TypeAgentNegotiation    Type = "agent_negotiation"
)

// Event is implemented only by the variants in this package.
type Event interface {
	Type() Type
	Meta() Header
	sealed()
}

// MatchScoped is implemented by events that happen inside a match.
type MatchScoped interface {
	Event
	Match() MatchHeader
}

// Header carries the identity shared by every event.
type Header struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func (h Header) Meta() Header { return h }
func (Header) sealed()        {}

// NewHeader stamps a fresh random id.
func NewHeader(ts time.Time) Header {
	return Header{ID: uuid.New(), Timestamp: ts.UTC()}
}

// MatchHeader is the header of match-scoped events.
type MatchHeader struct {
	Header
	MatchID   string `json:"match_id"`
	Minute    int    `json:"minute"`
	HomeScore int    `json:"home_score"`
	AwayScore int    `json:"away_score"`
}

func (h MatchHeader) Match() MatchHeader { return h }

// Stored is an event as returned by a store, with its log position.
type Stored struct {
	Sequence int64 `json:"sequence"`
	Event    Event `json:"event"`
}

// Types lists every registered discriminator in declaration order.
func Types() []Type {
	return []Type{
		TypeWorldInitialized, TypeMatchScheduled, TypeMatchStarted, TypeKickOff, TypeGoal,
		TypeYellowCard, TypeRedCard, TypeSubstitution, TypeCornerKick, TypeFoul,
		TypePenaltyAwarded, TypeOffside, TypeFreeKick, TypeInjury, TypeMatchEnded,
		TypeSoftStateUpdated, TypeMediaStoryPublished, TypeOwnerStatement, TypeAgentNegotiation,
	}
}
