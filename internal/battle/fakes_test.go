package battle

import (
	"context"
	"fmt"
	"time"

	"github.com/verte-zerg/pomodex/internal/model"
)

type memStore struct {
	col      model.Collection
	stats    model.Stats
	sessions []model.SessionRecord
	fail     bool
	calls    map[string]int
}

func newMemStore() *memStore {
	return &memStore{col: model.NewCollection(), calls: map[string]int{}}
}

func (m *memStore) err(op string) error {
	m.calls[op]++
	if m.fail {
		return fmt.Errorf("%w: %s: connection refused", model.ErrStoreUnavailable, op)
	}
	return nil
}

func (m *memStore) LoadCollection(context.Context) (model.Collection, error) {
	if err := m.err("load_collection"); err != nil {
		return model.Collection{}, err
	}
	out := model.NewCollection()
	for id := range m.col.Seen {
		out.Seen[id] = struct{}{}
	}
	for id := range m.col.Caught {
		out.Caught[id] = struct{}{}
	}
	for id, n := range m.col.CaughtCounts {
		out.CaughtCounts[id] = n
	}
	return out, nil
}

func (m *memStore) MarkSeen(_ context.Context, id model.CreatureID) error {
	if err := m.err("mark_seen"); err != nil {
		return err
	}
	m.col.MarkSeen(id)
	return nil
}

func (m *memStore) MarkCaught(_ context.Context, id model.CreatureID) error {
	if err := m.err("mark_caught"); err != nil {
		return err
	}
	m.col.MarkCaught(id)
	return nil
}

func (m *memStore) LoadStats(context.Context) (model.Stats, error) {
	if err := m.err("load_stats"); err != nil {
		return model.Stats{}, err
	}
	return m.stats, nil
}

func (m *memStore) RecordSessionCompletion(_ context.Context, minutes int) error {
	if err := m.err("record_completion"); err != nil {
		return err
	}
	m.stats.RecordCompletion(minutes)
	return nil
}

func (m *memStore) AppendSession(_ context.Context, rec model.SessionRecord) error {
	if err := m.err("append_session"); err != nil {
		return err
	}
	m.sessions = append(m.sessions, rec)
	return nil
}

func (m *memStore) ListSessions(_ context.Context, limit int) ([]model.SessionRecord, error) {
	if err := m.err("list_sessions"); err != nil {
		return nil, err
	}
	if limit > 0 && len(m.sessions) > limit {
		return m.sessions[len(m.sessions)-limit:], nil
	}
	return m.sessions, nil
}

type memPrefs map[string]string

func (p memPrefs) Pref(_ context.Context, key string) (string, bool, error) {
	v, ok := p[key]
	return v, ok, nil
}

func (p memPrefs) SetPref(_ context.Context, key, value string) error {
	p[key] = value
	return nil
}

// manualScheduler runs tasks only when fired by the test.
type manualScheduler struct {
	tasks []*manualTask
}

type manualTask struct {
	delay     time.Duration
	fn        func()
	cancelled bool
	done      bool
}

func (t *manualTask) Cancel() bool {
	if t.done || t.cancelled {
		return false
	}
	t.cancelled = true
	return true
}

func (s *manualScheduler) After(d time.Duration, fn func()) Handle {
	t := &manualTask{delay: d, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// fireAll runs every live task, including cancelled ones when force is set,
// to mimic a callback that raced its cancellation.
func (s *manualScheduler) fireAll(force bool) {
	tasks := s.tasks
	s.tasks = nil
	for _, t := range tasks {
		if t.done || (t.cancelled && !force) {
			continue
		}
		t.done = true
		t.fn()
	}
}

// seqSource replays ints for IntN and a single float for Float64.
type seqSource struct {
	ints []int
	f    float64
}

func (s *seqSource) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	if v >= n {
		return n - 1
	}
	return v
}

func (s *seqSource) Float64() float64 { return s.f }
