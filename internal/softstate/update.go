// Package softstate turns proposed adjustments to soft attributes (form,
// morale, sentiment and the like) into validated, clamped world changes.
//
// Proposals come from a Provider. Nothing a provider returns touches the
// world until Validator has checked the entity, the attribute whitelist and
// the size of every delta.
package softstate

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/maxviazov/football-manager-sim/internal/model"
)

// Entity types an Update may target.
const (
	EntityPlayer = "player"
	EntityTeam   = "team"
)

// Update is one proposed change to an entity's soft attributes.
type Update struct {
	EntityType string             `json:"entity_type" yaml:"entity_type"`
	EntityID   string             `json:"entity_id" yaml:"entity_id"`
	Deltas     map[string]float64 `json:"deltas" yaml:"deltas"`
	Rationale  string             `json:"rationale" yaml:"rationale"`
}

// attribute reads and writes one whitelisted field.
type attribute struct {
	get func(any) int
	set func(any, int)
}

func playerAttr(f func(p *model.Player) *int) attribute {
	return attribute{
		get: func(e any) int { return *f(e.(*model.Player)) },
		set: func(e any, v int) { *f(e.(*model.Player)) = v },
	}
}

func teamAttr(f func(t *model.Team) *int) attribute {
	return attribute{
		get: func(e any) int { return *f(e.(*model.Team)) },
		set: func(e any, v int) { *f(e.(*model.Team)) = v },
	}
}

var whitelist = map[string]map[string]attribute{
	EntityPlayer: {
		"form":       playerAttr(func(p *model.Player) *int { return &p.Form }),
		"morale":     playerAttr(func(p *model.Player) *int { return &p.Morale }),
		"fitness":    playerAttr(func(p *model.Player) *int { return &p.Fitness }),
		"sharpness":  playerAttr(func(p *model.Player) *int { return &p.Sharpness }),
		"reputation": playerAttr(func(p *model.Player) *int { return &p.Reputation }),
	},
	EntityTeam: {
		"morale":           teamAttr(func(t *model.Team) *int { return &t.Morale }),
		"fan_sentiment":    teamAttr(func(t *model.Team) *int { return &t.FanSentiment }),
		"media_sentiment":  teamAttr(func(t *model.Team) *int { return &t.MediaSentiment }),
		"board_confidence": teamAttr(func(t *model.Team) *int { return &t.BoardConfidence }),
		"reputation":       teamAttr(func(t *model.Team) *int { return &t.Reputation }),
	},
}

// Attributes lists the whitelisted attributes of an entity type in sorted order.
func Attributes(entityType string) []string {
	return slices.Sorted(maps.Keys(whitelist[entityType]))
}

// Rejection explains why an update was refused.
type Rejection struct {
	Update Update `json:"update"`
	Reason string `json:"reason"`
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("soft-state update %s/%s rejected: %s", r.Update.EntityType, r.Update.EntityID, r.Reason)
}

// Command is a validated update bound to its target.
type Command struct {
	Update Update
	target any
	deltas []delta
}

type delta struct {
	attr  attribute
	name  string
	value int
}

// Validator checks updates against the whitelist and a delta bound.
type Validator struct {
	MaxDelta float64
}

func NewValidator(maxDelta float64) Validator {
	if maxDelta <= 0 {
		maxDelta = DefaultMaxDelta
	}
	return Validator{MaxDelta: maxDelta}
}

// Validate resolves the target and checks every delta. Invalid input yields a
// Rejection, never an error or a panic.
func (v Validator) Validate(w *model.World, u Update) (Command, *Rejection) {
	reject := func(format string, args ...any) (Command, *Rejection) {
		return Command{}, &Rejection{Update: u, Reason: fmt.Sprintf(format, args...)}
	}

	attrs, ok := whitelist[u.EntityType]
	if !ok {
		return reject("unknown entity type %q", u.EntityType)
	}
	var target any
	switch u.EntityType {
	case EntityPlayer:
		p, _, err := w.FindPlayer(u.EntityID)
		if err != nil {
			return reject("unknown player %q", u.EntityID)
		}
		target = p
	case EntityTeam:
		t, err := w.Team(u.EntityID)
		if err != nil {
			return reject("unknown team %q", u.EntityID)
		}
		target = t
	}
	if len(u.Deltas) == 0 {
		return reject("no deltas")
	}

	cmd := Command{Update: u, target: target}
	for _, name := range slices.Sorted(maps.Keys(u.Deltas)) {
		d := u.Deltas[name]
		attr, ok := attrs[name]
		if !ok {
			return reject("attribute %q is not adjustable on a %s", name, u.EntityType)
		}
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return reject("delta for %q is not a finite number", name)
		}
		if math.Abs(d) > v.MaxDelta {
			return reject("delta %.1f for %q exceeds %.0f", d, name, v.MaxDelta)
		}
		cmd.deltas = append(cmd.deltas, delta{attr: attr, name: name, value: int(math.Round(d))})
	}
	return cmd, nil
}

// Apply adds the deltas, clamping each attribute to 1-100. It returns the
// deltas actually applied after clamping.
func (c Command) Apply() map[string]float64 {
	applied := make(map[string]float64, len(c.deltas))
	for _, d := range c.deltas {
		before := d.attr.get(c.target)
		after := model.ClampInt(before+d.value, model.MinAttribute, model.MaxAttribute)
		d.attr.set(c.target, after)
		applied[d.name] = float64(after - before)
	}
	return applied
}

// Applied records one update after clamping.
type Applied struct {
	Update  Update
	Applied map[string]float64
}

// Report summarizes a batch.
type Report struct {
	Applied  []Applied
	Rejected []Rejection
}

// ApplyAll validates and applies each update independently. Rejected updates
// leave the world untouched.
func (v Validator) ApplyAll(w *model.World, updates []Update) Report {
	var r Report
	for _, u := range updates {
		cmd, rej := v.Validate(w, u)
		if rej != nil {
			r.Rejected = append(r.Rejected, *rej)
			continue
		}
		r.Applied = append(r.Applied, Applied{Update: u, Applied: cmd.Apply()})
	}
	return r
}
