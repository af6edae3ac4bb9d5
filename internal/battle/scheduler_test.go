package battle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestClockSchedulerRunsAndCancels(t *testing.T) {
	defer goleak.VerifyNone(t)

	fired := make(chan struct{})
	ClockScheduler{}.After(5*time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "scheduled task did not run")
	}

	ran := make(chan struct{}, 1)
	h := ClockScheduler{}.After(time.Hour, func() { ran <- struct{}{} })
	assert.True(t, h.Cancel())
	assert.False(t, h.Cancel())
	assert.Empty(t, ran)
}
