// Package model contains the simulation's domain entities.
// I keep them as plain data with small, invariant-preserving mutators; the
// simulator, engine and progression packages drive all behavior.
package model

import (
	"errors"
	"fmt"
	"math"
)

// Domain-level errors for references that cannot be resolved against the world.
var (
	ErrInvalidReference = errors.New("invalid reference")
	// ErrMatchFinished is returned when a finished match is simulated again.
	ErrMatchFinished = fmt.Errorf("%w: match already finished", ErrInvalidReference)
)

// Bounds shared by every 1-100 attribute.
const (
	MinAttribute = 1
	MaxAttribute = 100
)

// Position is a player's playing position.
type Position string

const (
	GK  Position = "GK"
	CB  Position = "CB"
	LB  Position = "LB"
	RB  Position = "RB"
	CM  Position = "CM"
	LM  Position = "LM"
	RM  Position = "RM"
	CAM Position = "CAM"
	LW  Position = "LW"
	RW  Position = "RW"
	ST  Position = "ST"
)

// Positions lists every position in a stable order.
var Positions = []Position{GK, CB, LB, RB, CM, LM, RM, CAM, LW, RW, ST}

// IsAttacking reports whether the position is a goal-scoring one.
func (p Position) IsAttacking() bool {
	switch p {
	case ST, LW, RW, CAM:
		return true
	}
	return false
}

// IsDefensive covers the back line, goalkeeper excluded.
func (p Position) IsDefensive() bool {
	switch p {
	case CB, LB, RB:
		return true
	}
	return false
}

// Valid reports whether p is a known position.
func (p Position) Valid() bool {
	for _, known := range Positions {
		if p == known {
			return true
		}
	}
	return false
}

// Result is a single match outcome from one team's perspective.
type Result string

const (
	Win  Result = "W"
	Draw Result = "D"
	Loss Result = "L"
)

// ClampInt bounds v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampFloat bounds v to [lo, hi].
func ClampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// clampAttr bounds a soft/hard attribute to 1-100.
func clampAttr(v int) int { return ClampInt(v, MinAttribute, MaxAttribute) }
