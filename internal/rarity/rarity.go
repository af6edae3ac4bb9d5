// Package rarity partitions the roster into weighted rarity tiers.
package rarity

import (
	"fmt"
	"sort"

	"github.com/verte-zerg/pomodex/internal/model"
)

var weights = map[model.Tier]int{
	model.TierCommon:    60,
	model.TierUncommon:  25,
	model.TierRare:      10,
	model.TierLegendary: 4,
	model.TierMythical:  1,
}

var mythicalIDs = []model.CreatureID{
	151, 251, 385, 386, 489, 490, 491, 492, 493,
}

var legendaryIDs = []model.CreatureID{
	144, 145, 146, 150,
	243, 244, 245, 249, 250,
	377, 378, 379, 380, 381, 382, 383, 384,
	480, 481, 482, 483, 484, 485, 486, 487, 488,
}

var rareIDs = []model.CreatureID{
	// Final-stage starters.
	3, 6, 9, 154, 157, 160, 254, 257, 260, 389, 392, 395,
	// Pseudo-legendaries.
	149, 248, 373, 376, 445,
	// Eeveelutions.
	134, 135, 136, 196, 197, 470, 471,
	130, 131, 142, 143, 181, 212, 230, 242, 282, 289, 306, 330, 350, 359,
	398, 407, 442, 448, 461, 462, 464, 466, 467, 468, 469, 472, 473, 474,
	475, 477, 478, 479,
}

var uncommonIDs = []model.CreatureID{
	// Starters, first and second stage.
	1, 2, 4, 5, 7, 8,
	152, 153, 155, 156, 158, 159,
	252, 253, 255, 256, 258, 259,
	387, 388, 390, 391, 393, 394,
	133,
	// Pseudo-legendary pre-evolutions.
	147, 148, 246, 247, 371, 372, 374, 375, 443, 444,
	// Fossils.
	138, 139, 140, 141, 345, 346, 347, 348, 408, 409, 410, 411,
	25, 26, 37, 38, 58, 59, 65, 68, 76, 94, 115, 123, 127, 128, 129, 137,
	175, 176, 214, 227, 241, 280, 281, 302, 303, 304, 305, 349, 403, 404,
	405, 447,
}

// Entry is one tier with its weight and members.
type Entry struct {
	Tier    model.Tier
	Weight  int
	Members []model.CreatureID
}

// Table is an ordered set of tiers walked by the encounter sampler.
type Table struct {
	entries []Entry
	byID    map[model.CreatureID]model.Tier
}

var defaultTable = buildDefault()

// Default returns the built-in roster partition.
func Default() Table {
	return defaultTable
}

// NewTable builds a table from explicit entries, in walk order.
func NewTable(entries ...Entry) Table {
	t := Table{byID: map[model.CreatureID]model.Tier{}}
	for _, e := range entries {
		members := append([]model.CreatureID(nil), e.Members...)
		t.entries = append(t.entries, Entry{Tier: e.Tier, Weight: e.Weight, Members: members})
		for _, id := range members {
			t.byID[id] = e.Tier
		}
	}
	return t
}

func buildDefault() Table {
	curated := map[model.CreatureID]struct{}{}
	for _, list := range [][]model.CreatureID{mythicalIDs, legendaryIDs, rareIDs, uncommonIDs} {
		for _, id := range list {
			curated[id] = struct{}{}
		}
	}
	common := make([]model.CreatureID, 0, model.RosterSize-len(curated))
	for id := model.CreatureID(1); id <= model.RosterSize; id++ {
		if _, ok := curated[id]; !ok {
			common = append(common, id)
		}
	}
	return NewTable(
		Entry{Tier: model.TierCommon, Weight: weights[model.TierCommon], Members: common},
		Entry{Tier: model.TierUncommon, Weight: weights[model.TierUncommon], Members: sorted(uncommonIDs)},
		Entry{Tier: model.TierRare, Weight: weights[model.TierRare], Members: sorted(rareIDs)},
		Entry{Tier: model.TierLegendary, Weight: weights[model.TierLegendary], Members: sorted(legendaryIDs)},
		Entry{Tier: model.TierMythical, Weight: weights[model.TierMythical], Members: sorted(mythicalIDs)},
	)
}

// Entries returns the tiers in walk order.
func (t Table) Entries() []Entry {
	return t.entries
}

// TotalWeight sums all tier weights.
func (t Table) TotalWeight() int {
	total := 0
	for _, e := range t.entries {
		total += e.Weight
	}
	return total
}

// TierOf returns the tier for id, defaulting to common.
func (t Table) TierOf(id model.CreatureID) model.Tier {
	if tier, ok := t.byID[id]; ok {
		return tier
	}
	return model.TierCommon
}

// TierOf returns the default table's tier for id. Ids outside the roster are common.
func TierOf(id model.CreatureID) model.Tier {
	return defaultTable.TierOf(id)
}

// Lookup validates id and returns its tier.
func Lookup(id model.CreatureID) (model.Tier, error) {
	if !model.ValidCreature(id) {
		return model.TierCommon, fmt.Errorf("%w: %d", model.ErrInvalidCreature, id)
	}
	return defaultTable.TierOf(id), nil
}

// WeightOf returns the fixed selection weight of a tier.
func WeightOf(tier model.Tier) int {
	return weights[tier]
}

// Tiers returns every tier in walk order.
func Tiers() []model.Tier {
	return []model.Tier{
		model.TierCommon,
		model.TierUncommon,
		model.TierRare,
		model.TierLegendary,
		model.TierMythical,
	}
}

// Members returns a copy of the default table's members for tier.
func Members(tier model.Tier) []model.CreatureID {
	for _, e := range defaultTable.entries {
		if e.Tier == tier {
			return append([]model.CreatureID(nil), e.Members...)
		}
	}
	return nil
}

// Odds is the selection probability of a tier in percent.
type Odds struct {
	Tier    model.Tier
	Weight  int
	Percent float64
	Count   int
}

// TierOdds computes per-tier selection percentages for t.
func (t Table) TierOdds() []Odds {
	total := t.TotalWeight()
	out := make([]Odds, 0, len(t.entries))
	for _, e := range t.entries {
		pct := 0.0
		if total > 0 {
			pct = float64(e.Weight) / float64(total) * 100
		}
		out = append(out, Odds{Tier: e.Tier, Weight: e.Weight, Percent: pct, Count: len(e.Members)})
	}
	return out
}

func sorted(ids []model.CreatureID) []model.CreatureID {
	out := append([]model.CreatureID(nil), ids...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
