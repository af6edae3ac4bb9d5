package rarity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/pomodex/internal/model"
)

func TestTiersPartitionRoster(t *testing.T) {
	seen := map[model.CreatureID]model.Tier{}
	for _, tier := range Tiers() {
		for _, id := range Members(tier) {
			prev, dup := seen[id]
			require.Falsef(t, dup, "id %d in both %s and %s", id, prev, tier)
			seen[id] = tier
		}
	}
	require.Len(t, seen, model.RosterSize)
	for id := model.CreatureID(1); id <= model.RosterSize; id++ {
		tier, ok := seen[id]
		require.Truef(t, ok, "id %d missing from every tier", id)
		assert.Equal(t, tier, TierOf(id))
	}
}

func TestTierSizes(t *testing.T) {
	assert.Len(t, Members(model.TierMythical), 9)
	assert.Len(t, Members(model.TierLegendary), 26)
	assert.Len(t, Members(model.TierRare), 56)
	assert.Len(t, Members(model.TierUncommon), 79)
	assert.Len(t, Members(model.TierCommon), 323)
}

func TestKnownTiers(t *testing.T) {
	assert.Equal(t, model.TierMythical, TierOf(151))
	assert.Equal(t, model.TierLegendary, TierOf(150))
	assert.Equal(t, model.TierRare, TierOf(6))
	assert.Equal(t, model.TierUncommon, TierOf(25))
	assert.Equal(t, model.TierCommon, TierOf(10))
}

func TestWeights(t *testing.T) {
	total := 0
	for _, tier := range Tiers() {
		total += WeightOf(tier)
	}
	assert.Equal(t, 100, total)
	assert.Equal(t, 100, Default().TotalWeight())
	assert.Equal(t, 60, WeightOf(model.TierCommon))
	assert.Equal(t, 1, WeightOf(model.TierMythical))
}

func TestLookupRejectsOutOfRange(t *testing.T) {
	for _, id := range []model.CreatureID{0, -1, 494} {
		_, err := Lookup(id)
		assert.Truef(t, errors.Is(err, model.ErrInvalidCreature), "id %d", id)
	}
	tier, err := Lookup(493)
	require.NoError(t, err)
	assert.Equal(t, model.TierMythical, tier)
}

func TestTierOdds(t *testing.T) {
	odds := Default().TierOdds()
	require.Len(t, odds, 5)
	assert.Equal(t, model.TierCommon, odds[0].Tier)
	assert.InDelta(t, 60.0, odds[0].Percent, 1e-9)
	assert.Equal(t, 323, odds[0].Count)
	assert.InDelta(t, 1.0, odds[4].Percent, 1e-9)
}

func TestMembersReturnsCopy(t *testing.T) {
	m := Members(model.TierMythical)
	m[0] = 1
	assert.Equal(t, model.CreatureID(151), Members(model.TierMythical)[0])
}
