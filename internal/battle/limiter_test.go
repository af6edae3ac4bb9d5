package battle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterResetsOnNewDay(t *testing.T) {
	day := time.Date(2026, 1, 31, 23, 59, 0, 0, time.Local)
	l := NewLimiter("", 0)
	for i := 0; i < DailyRerolls; i++ {
		assert.True(t, l.Allow(day))
	}
	assert.False(t, l.Allow(day))
	assert.Equal(t, DailyRerolls, l.Used)
	assert.Equal(t, 0, l.Remaining(day))

	next := day.Add(2 * time.Minute)
	assert.Equal(t, DailyRerolls, l.Remaining(next))
	assert.True(t, l.Allow(next))
	assert.Equal(t, "2026-02-01", l.Date)
	assert.Equal(t, 4, l.Remaining(next))
}

func TestLimiterRestoredState(t *testing.T) {
	now := time.Date(2026, 5, 2, 12, 0, 0, 0, time.Local)
	l := NewLimiter("2026-05-02", 9)
	assert.Equal(t, 0, l.Remaining(now))
	assert.False(t, l.Allow(now))

	l = NewLimiter("2026-05-01", 5)
	assert.True(t, l.Allow(now))

	l = NewLimiter("2026-05-02", -2)
	assert.Equal(t, DailyRerolls, l.Remaining(now))
}
