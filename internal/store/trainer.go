package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/verte-zerg/pomodex/internal/model"
)

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// TrainerStore is one trainer's view of the SQLite collection.
type TrainerStore struct {
	db      *sql.DB
	trainer string
}

// ForTrainer scopes collection access to a trainer id.
func (s *Store) ForTrainer(trainerID string) *TrainerStore {
	return &TrainerStore{db: s.db, trainer: trainerID}
}

// LoadCollection returns every seen or caught creature.
func (t *TrainerStore) LoadCollection(ctx context.Context) (model.Collection, error) {
	rows, err := t.db.QueryContext(ctx,
		`SELECT creature_id, seen, caught, caught_count FROM collection WHERE trainer_id = ?`, t.trainer)
	if err != nil {
		return model.Collection{}, unavailable("load collection", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	col := model.NewCollection()
	for rows.Next() {
		var (
			id           int
			seen, caught bool
			count        int
		)
		if err := rows.Scan(&id, &seen, &caught, &count); err != nil {
			return model.Collection{}, unavailable("scan collection", err)
		}
		cid := model.CreatureID(id)
		if seen || caught {
			col.Seen[cid] = struct{}{}
		}
		if caught {
			col.Caught[cid] = struct{}{}
		}
		if count > 0 {
			col.CaughtCounts[cid] = count
		}
	}
	if err := rows.Err(); err != nil {
		return model.Collection{}, unavailable("load collection", err)
	}
	return col, nil
}

// MarkSeen records a sighting. Repeated calls are no-ops.
func (t *TrainerStore) MarkSeen(ctx context.Context, id model.CreatureID) error {
	if !model.ValidCreature(id) {
		return fmt.Errorf("%w: %d", model.ErrInvalidCreature, id)
	}
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO collection (trainer_id, creature_id, seen) VALUES (?, ?, 1)
		 ON CONFLICT(trainer_id, creature_id) DO UPDATE SET seen = 1`, t.trainer, int(id))
	if err != nil {
		return unavailable("mark seen", err)
	}
	return nil
}

// MarkCaught records a catch; every call adds one to the catch count.
func (t *TrainerStore) MarkCaught(ctx context.Context, id model.CreatureID) error {
	if !model.ValidCreature(id) {
		return fmt.Errorf("%w: %d", model.ErrInvalidCreature, id)
	}
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO collection (trainer_id, creature_id, seen, caught, caught_count) VALUES (?, ?, 1, 1, 1)
		 ON CONFLICT(trainer_id, creature_id) DO UPDATE SET
			seen = 1, caught = 1, caught_count = caught_count + 1`, t.trainer, int(id))
	if err != nil {
		return unavailable("mark caught", err)
	}
	return nil
}

// LoadStats returns lifetime counters, zero when the trainer has none.
func (t *TrainerStore) LoadStats(ctx context.Context) (model.Stats, error) {
	var st model.Stats
	err := t.db.QueryRowContext(ctx,
		`SELECT total_focus_minutes, total_sessions, total_attempts FROM trainer_stats WHERE trainer_id = ?`,
		t.trainer).Scan(&st.TotalFocusMinutes, &st.TotalSessions, &st.TotalAttempts)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Stats{}, nil
	}
	if err != nil {
		return model.Stats{}, unavailable("load stats", err)
	}
	return st, nil
}

// RecordSessionCompletion atomically adds one session and attempt and the
// focused minutes.
func (t *TrainerStore) RecordSessionCompletion(ctx context.Context, minutes int) error {
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO trainer_stats (trainer_id, total_focus_minutes, total_sessions, total_attempts) VALUES (?, ?, 1, 1)
		 ON CONFLICT(trainer_id) DO UPDATE SET
			total_focus_minutes = total_focus_minutes + excluded.total_focus_minutes,
			total_sessions = total_sessions + 1,
			total_attempts = total_attempts + 1`, t.trainer, minutes)
	if err != nil {
		return unavailable("record session completion", err)
	}
	return nil
}

// AppendSession logs a completed session.
func (t *TrainerStore) AppendSession(ctx context.Context, rec model.SessionRecord) error {
	_, err := t.db.ExecContext(ctx,
		`INSERT INTO sessions (trainer_id, ended_at, duration_minutes, creature_id, caught, chance_pct)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.trainer,
		rec.EndedAt.UTC().Format(timeLayout),
		rec.DurationMinutes,
		int(rec.Creature),
		rec.Caught,
		rec.ChancePercent,
	)
	if err != nil {
		return unavailable("append session", err)
	}
	return nil
}

// ListSessions returns up to limit of the most recent sessions, oldest
// first. A non-positive limit returns all sessions.
func (t *TrainerStore) ListSessions(ctx context.Context, limit int) ([]model.SessionRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := t.db.QueryContext(ctx,
		`SELECT ended_at, duration_minutes, creature_id, caught, chance_pct FROM (
			SELECT id, ended_at, duration_minutes, creature_id, caught, chance_pct
			FROM sessions WHERE trainer_id = ?
			ORDER BY ended_at DESC, id DESC
			LIMIT ?
		) ORDER BY ended_at ASC, id ASC`, t.trainer, limit)
	if err != nil {
		return nil, unavailable("list sessions", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var out []model.SessionRecord
	for rows.Next() {
		var (
			rec     model.SessionRecord
			endedAt string
			id      int
		)
		if err := rows.Scan(&endedAt, &rec.DurationMinutes, &id, &rec.Caught, &rec.ChancePercent); err != nil {
			return nil, unavailable("scan session", err)
		}
		parsed, err := time.Parse(timeLayout, endedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse session time %q: %w", endedAt, err)
		}
		rec.EndedAt = parsed
		rec.Creature = model.CreatureID(id)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list sessions", err)
	}
	return out, nil
}
