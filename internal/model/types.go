// Package model defines shared data structures.
package model

import (
	"errors"
	"time"
)

// RosterSize is the number of catchable creatures.
const RosterSize = 493

// Duration bounds in minutes.
const (
	MinDurationMinutes     = 5
	MaxDurationMinutes     = 60
	DurationStepMinutes    = 5
	DefaultDurationMinutes = 25
)

var (
	// ErrInvalidCreature reports a creature id outside [1, RosterSize].
	ErrInvalidCreature = errors.New("invalid creature id")
	// ErrStoreUnavailable wraps any collection store failure.
	ErrStoreUnavailable = errors.New("collection store unavailable")
	// ErrRateLimited reports an exhausted daily re-roll quota.
	ErrRateLimited = errors.New("re-roll limit reached for today")
)

// CreatureID identifies a roster entry.
type CreatureID int

// ValidCreature reports whether id is in the roster range.
func ValidCreature(id CreatureID) bool {
	return id >= 1 && id <= RosterSize
}

// Tier is a rarity classification controlling sampling weight.
type Tier int

// Tiers in sampling walk order.
const (
	TierCommon Tier = iota
	TierUncommon
	TierRare
	TierLegendary
	TierMythical
)

func (t Tier) String() string {
	switch t {
	case TierUncommon:
		return "uncommon"
	case TierRare:
		return "rare"
	case TierLegendary:
		return "legendary"
	case TierMythical:
		return "mythical"
	default:
		return "common"
	}
}

// ParseTier converts a lowercase tier name back to a Tier.
func ParseTier(s string) (Tier, bool) {
	switch s {
	case "common":
		return TierCommon, true
	case "uncommon":
		return TierUncommon, true
	case "rare":
		return TierRare, true
	case "legendary":
		return TierLegendary, true
	case "mythical":
		return TierMythical, true
	default:
		return TierCommon, false
	}
}

// SessionConfig holds user-adjustable session settings.
type SessionConfig struct {
	DurationMinutes int
}

// ClampDuration snaps minutes to the nearest step and clamps it into the allowed range.
func ClampDuration(minutes int) int {
	if minutes <= MinDurationMinutes {
		return MinDurationMinutes
	}
	if minutes >= MaxDurationMinutes {
		return MaxDurationMinutes
	}
	rounded := ((minutes + DurationStepMinutes/2) / DurationStepMinutes) * DurationStepMinutes
	if rounded < MinDurationMinutes {
		return MinDurationMinutes
	}
	if rounded > MaxDurationMinutes {
		return MaxDurationMinutes
	}
	return rounded
}

// TimerState is the observable countdown state.
type TimerState struct {
	RemainingSeconds int
	Active           bool
}

// Outcome is the result of one completed session.
type Outcome struct {
	Creature        CreatureID
	Caught          bool
	ChancePercent   float64
	DurationMinutes int
}

// CollectionRecord is the per-creature collection state.
type CollectionRecord struct {
	Seen        bool
	Caught      bool
	CaughtCount int
}

// Collection is a trainer's full Pokedex state.
type Collection struct {
	Caught       map[CreatureID]struct{}
	Seen         map[CreatureID]struct{}
	CaughtCounts map[CreatureID]int
}

// NewCollection returns an empty collection with allocated maps.
func NewCollection() Collection {
	return Collection{
		Caught:       map[CreatureID]struct{}{},
		Seen:         map[CreatureID]struct{}{},
		CaughtCounts: map[CreatureID]int{},
	}
}

// Record returns the collection record for a creature.
func (c Collection) Record(id CreatureID) CollectionRecord {
	_, caught := c.Caught[id]
	_, seen := c.Seen[id]
	return CollectionRecord{
		Seen:        seen || caught,
		Caught:      caught,
		CaughtCount: c.CaughtCounts[id],
	}
}

// MarkSeen records a sighting in memory.
func (c *Collection) MarkSeen(id CreatureID) {
	c.ensure()
	c.Seen[id] = struct{}{}
}

// MarkCaught records a catch in memory.
func (c *Collection) MarkCaught(id CreatureID) {
	c.ensure()
	c.Seen[id] = struct{}{}
	c.Caught[id] = struct{}{}
	c.CaughtCounts[id]++
}

// SeenTotal counts distinct creatures seen (caught implies seen).
func (c Collection) SeenTotal() int {
	n := len(c.Seen)
	for id := range c.Caught {
		if _, ok := c.Seen[id]; !ok {
			n++
		}
	}
	return n
}

// CaughtTotal counts distinct creatures caught.
func (c Collection) CaughtTotal() int {
	return len(c.Caught)
}

// CatchesTotal sums catch counts across all creatures.
func (c Collection) CatchesTotal() int {
	total := 0
	for _, n := range c.CaughtCounts {
		total += n
	}
	return total
}

func (c *Collection) ensure() {
	if c.Caught == nil {
		c.Caught = map[CreatureID]struct{}{}
	}
	if c.Seen == nil {
		c.Seen = map[CreatureID]struct{}{}
	}
	if c.CaughtCounts == nil {
		c.CaughtCounts = map[CreatureID]int{}
	}
}

// Stats are lifetime trainer counters.
type Stats struct {
	TotalFocusMinutes int
	TotalSessions     int
	TotalAttempts     int
}

// RecordCompletion applies one completed session to the counters.
func (s *Stats) RecordCompletion(minutes int) {
	s.TotalSessions++
	s.TotalAttempts++
	s.TotalFocusMinutes += minutes
}

// SessionRecord is one entry in the completion history.
type SessionRecord struct {
	EndedAt         time.Time
	DurationMinutes int
	Creature        CreatureID
	Caught          bool
	ChancePercent   float64
}
