package battle

import "time"

// DailyRerolls is the number of re-rolls allowed per local calendar day.
const DailyRerolls = 5

// DateLayout is the stored format of the re-roll date.
const DateLayout = "2006-01-02"

// Limiter counts re-rolls per local calendar day. The counter resets
// whenever the stored date differs from today.
type Limiter struct {
	Date string
	Used int
	Max  int
}

// NewLimiter returns a limiter restored from stored state.
func NewLimiter(date string, used int) Limiter {
	if used < 0 {
		used = 0
	}
	return Limiter{Date: date, Used: used, Max: DailyRerolls}
}

// Remaining returns how many re-rolls are left on the day of now.
func (l Limiter) Remaining(now time.Time) int {
	if l.Date != now.Format(DateLayout) {
		return l.Max
	}
	left := l.Max - l.Used
	if left < 0 {
		return 0
	}
	return left
}

// Allow consumes one re-roll for the day of now. It reports false without
// changing state when the quota is exhausted.
func (l *Limiter) Allow(now time.Time) bool {
	today := now.Format(DateLayout)
	if l.Date != today {
		l.Date = today
		l.Used = 0
	}
	if l.Used >= l.Max {
		return false
	}
	l.Used++
	return true
}
