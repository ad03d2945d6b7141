package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownType is returned when a payload's discriminator is not registered.
var ErrUnknownType = errors.New("unknown event type")

type decoder func(payload []byte) (Event, error)

func decodeAs[T Event](payload []byte) (Event, error) {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, err
	}
	return v, nil
}

var registry = map[Type]decoder{
	TypeWorldInitialized:    decodeAs[WorldInitialized],
	TypeMatchScheduled:      decodeAs[MatchScheduled],
	TypeMatchStarted:        decodeAs[MatchStarted],
	TypeKickOff:             decodeAs[KickOff],
	TypeGoal:                decodeAs[Goal],
	TypeYellowCard:          decodeAs[YellowCard],
	TypeRedCard:             decodeAs[RedCard],
	TypeSubstitution:        decodeAs[Substitution],
	TypeCornerKick:          decodeAs[CornerKick],
	TypeFoul:                decodeAs[Foul],
	TypePenaltyAwarded:      decodeAs[PenaltyAwarded],
	TypeOffside:             decodeAs[Offside],
	TypeFreeKick:            decodeAs[FreeKick],
	TypeInjury:              decodeAs[Injury],
	TypeMatchEnded:          decodeAs[MatchEnded],
	TypeSoftStateUpdated:    decodeAs[SoftStateUpdated],
	TypeMediaStoryPublished: decodeAs[MediaStoryPublished],
	TypeOwnerStatement:      decodeAs[OwnerStatement],
	TypeAgentNegotiation:    decodeAs[AgentNegotiation],
}

// Known reports whether t is a registered discriminator.
func Known(t Type) bool {
	_, ok := registry[t]
	return ok
}

// Encode serializes an event payload.
func Encode(e Event) ([]byte, error) {
	if e == nil {
		return nil, errors.New("event is nil")
	}
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.Type(), err)
	}
	return b, nil
}

// Decode rebuilds the variant named by t from its payload.
func Decode(t Type, payload []byte) (Event, error) {
	dec, ok := registry[t]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	e, err := dec(payload)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", t, err)
	}
	return e, nil
}

// Record is the persisted shape shared by all stores: the events table row and
// one line of the JSON-lines log.
type Record struct {
	Sequence  int64           `json:"sequence"`
	ID        uuid.UUID       `json:"id"`
	Type      Type            `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewRecord encodes e for storage at position seq.
func NewRecord(seq int64, e Event) (Record, error) {
	payload, err := Encode(e)
	if err != nil {
		return Record{}, err
	}
	h := e.Meta()
	return Record{Sequence: seq, ID: h.ID, Type: e.Type(), Timestamp: h.Timestamp, Payload: payload}, nil
}

// Stored decodes the record back into a typed event.
func (r Record) Stored() (Stored, error) {
	e, err := Decode(r.Type, r.Payload)
	if err != nil {
		return Stored{}, err
	}
	return Stored{Sequence: r.Sequence, Event: e}, nil
}
