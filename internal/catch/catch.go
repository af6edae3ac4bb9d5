// Package catch turns session length into catch odds and resolves attempts.
package catch

import (
	"math"

	"github.com/verte-zerg/pomodex/internal/encounter"
	"github.com/verte-zerg/pomodex/internal/model"
)

// MaxChancePercent caps the catch chance; a catch is never guaranteed.
const MaxChancePercent = 95.0

const (
	chancePerMinute = 2.2
	chanceBase      = 7.8
)

// RawChancePercent is the uncapped linear chance for a duration.
func RawChancePercent(durationMinutes int) float64 {
	return float64(durationMinutes)*chancePerMinute + chanceBase
}

// ChancePercent returns the capped catch chance for a duration.
func ChancePercent(durationMinutes int) float64 {
	return math.Min(RawChancePercent(durationMinutes), MaxChancePercent)
}

// HPDrainPercent is how much of the creature's HP a full session drains.
// It is the catch chance on purpose: the HP bar and the catch odds both read
// elapsed focus time as worn-down resistance.
func HPDrainPercent(durationMinutes int) float64 {
	return ChancePercent(durationMinutes)
}

// HPRemainingPercent is the HP bar value after elapsed of total seconds.
func HPRemainingPercent(elapsedSeconds, totalSeconds, durationMinutes int) float64 {
	if totalSeconds <= 0 {
		return 100
	}
	frac := float64(elapsedSeconds) / float64(totalSeconds)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return 100 - frac*HPDrainPercent(durationMinutes)
}

// Resolve draws once from src and reports whether the catch succeeds.
func Resolve(durationMinutes int, src encounter.Source) bool {
	return src.Float64() < ChancePercent(durationMinutes)/100
}

// Resolver resolves catch attempts with a fixed source.
type Resolver struct {
	rnd encounter.Source
}

// NewResolver returns a Resolver drawing from src.
func NewResolver(src encounter.Source) *Resolver {
	return &Resolver{rnd: src}
}

// Attempt resolves a catch of id after a session of durationMinutes.
func (r *Resolver) Attempt(id model.CreatureID, durationMinutes int) model.Outcome {
	return model.Outcome{
		Creature:        id,
		Caught:          Resolve(durationMinutes, r.rnd),
		ChancePercent:   ChancePercent(durationMinutes),
		DurationMinutes: durationMinutes,
	}
}
