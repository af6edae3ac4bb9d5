// Package encounter picks wild creatures using rarity weights.
package encounter

import (
	"math/rand/v2"
	"time"

	"github.com/verte-zerg/pomodex/internal/model"
	"github.com/verte-zerg/pomodex/internal/rarity"
)

// Source is the randomness used by sampling and catch resolution.
// *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
	Float64() float64
}

// NewSource returns a deterministic source for the given seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRandomSource returns a source seeded with the current time.
func NewRandomSource() *rand.Rand {
	now := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(now, now>>1))
}

// Sampler draws creatures from a rarity table.
type Sampler struct {
	table rarity.Table
	rnd   Source
}

// New returns a Sampler over table using src.
func New(table rarity.Table, src Source) *Sampler {
	return &Sampler{table: table, rnd: src}
}

// Sample picks a tier by weight, then a member of that tier uniformly.
func (s *Sampler) Sample() model.CreatureID {
	id, _ := s.SampleTier()
	return id
}

// SampleTier is Sample that also reports the chosen tier. The fallback
// draw over the whole roster reports ok=false.
func (s *Sampler) SampleTier() (id model.CreatureID, ok bool) {
	total := s.table.TotalWeight()
	if total > 0 {
		r := s.rnd.IntN(total)
		cumulative := 0
		for _, e := range s.table.Entries() {
			cumulative += e.Weight
			if r < cumulative {
				if len(e.Members) == 0 {
					break
				}
				return e.Members[s.rnd.IntN(len(e.Members))], true
			}
		}
	}
	return model.CreatureID(s.rnd.IntN(model.RosterSize) + 1), false
}
