package catch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/verte-zerg/pomodex/internal/encounter"
)

type fixedSource float64

func (f fixedSource) IntN(int) int     { return 0 }
func (f fixedSource) Float64() float64 { return float64(f) }

func TestChancePercentTable(t *testing.T) {
	prev := 0.0
	capped := false
	for d := 5; d <= 60; d += 5 {
		got := ChancePercent(d)
		want := float64(d)*2.2 + 7.8
		if want > 95 {
			want = 95
		}
		assert.InDeltaf(t, want, got, 1e-9, "duration %d", d)
		if capped {
			assert.InDelta(t, 95.0, got, 1e-9)
		} else if d > 5 {
			assert.Greater(t, got, prev)
		}
		if got >= 95 {
			capped = true
		}
		prev = got
	}
	assert.InDelta(t, 18.8, ChancePercent(5), 1e-9)
	assert.InDelta(t, 62.8, ChancePercent(25), 1e-9)
	assert.InDelta(t, 95.0, ChancePercent(60), 1e-9)
	assert.InDelta(t, 139.8, RawChancePercent(60), 1e-9)
}

func TestHPDrainMatchesChance(t *testing.T) {
	for d := 5; d <= 60; d += 5 {
		assert.Equal(t, ChancePercent(d), HPDrainPercent(d))
	}
}

func TestHPRemainingPercent(t *testing.T) {
	assert.InDelta(t, 100.0, HPRemainingPercent(0, 1500, 25), 1e-9)
	assert.InDelta(t, 100-62.8/2, HPRemainingPercent(750, 1500, 25), 1e-9)
	assert.InDelta(t, 100-62.8, HPRemainingPercent(1500, 1500, 25), 1e-9)
	assert.InDelta(t, 100-62.8, HPRemainingPercent(9999, 1500, 25), 1e-9)
	assert.InDelta(t, 100.0, HPRemainingPercent(10, 0, 25), 1e-9)
}

func TestResolveThreshold(t *testing.T) {
	assert.True(t, Resolve(25, fixedSource(0)))
	assert.True(t, Resolve(25, fixedSource(0.627)))
	assert.False(t, Resolve(25, fixedSource(0.629)))
	assert.False(t, Resolve(60, fixedSource(0.95)))
	assert.True(t, Resolve(60, fixedSource(0.9499)))
}

func TestResolverAttempt(t *testing.T) {
	out := NewResolver(fixedSource(0.1)).Attempt(25, 25)
	assert.True(t, out.Caught)
	assert.Equal(t, 25, out.DurationMinutes)
	assert.InDelta(t, 62.8, out.ChancePercent, 1e-9)
}

func TestResolveRateRoughlyMatchesChance(t *testing.T) {
	src := encounter.NewSource(3)
	hits := 0
	const n = 20000
	for i := 0; i < n; i++ {
		if Resolve(5, src) {
			hits++
		}
	}
	assert.InDelta(t, 18.8, float64(hits)/n*100, 1.5)
}
