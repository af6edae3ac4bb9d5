package battle

import (
	"context"

	"github.com/verte-zerg/pomodex/internal/model"
)

// CollectionStore persists one trainer's Pokedex and lifetime counters.
// Implementations wrap failures in model.ErrStoreUnavailable.
type CollectionStore interface {
	LoadCollection(ctx context.Context) (model.Collection, error)
	// MarkSeen is idempotent.
	MarkSeen(ctx context.Context, id model.CreatureID) error
	// MarkCaught sets caught and seen and adds one to the catch count.
	MarkCaught(ctx context.Context, id model.CreatureID) error
	LoadStats(ctx context.Context) (model.Stats, error)
	RecordSessionCompletion(ctx context.Context, minutes int) error
}

// History is an optional CollectionStore capability that keeps a log of
// completed sessions.
type History interface {
	AppendSession(ctx context.Context, rec model.SessionRecord) error
	ListSessions(ctx context.Context, limit int) ([]model.SessionRecord, error)
}

// Prefs is the device-local key/value preference store.
type Prefs interface {
	Pref(ctx context.Context, key string) (string, bool, error)
	SetPref(ctx context.Context, key, value string) error
}

// Preference keys.
const (
	PrefDuration   = "duration_minutes"
	PrefCreature   = "current_creature"
	PrefRerollDate = "reroll_date"
	PrefRerollUsed = "reroll_used"
	PrefTrainerID  = "trainer_id"
)
