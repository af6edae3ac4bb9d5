package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/verte-zerg/pomodex/internal/model"
)

const (
	fieldFocusMinutes = "total_focus_minutes"
	fieldSessions     = "total_sessions"
	fieldAttempts     = "total_attempts"
)

// maxRedisSessions bounds the session log kept per trainer.
const maxRedisSessions = 1000

// RedisOptions configures a Redis-backed collection store.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore keeps one trainer's collection in Redis hashes:
//
//	pomodex:{trainer}:seen    creature id -> first sighting (unix seconds)
//	pomodex:{trainer}:caught  creature id -> catch count
//	pomodex:{trainer}:stats   lifetime counters
//	pomodex:{trainer}:sessions  JSON session log (list)
type RedisStore struct {
	client  *redis.Client
	trainer string
	now     func() time.Time
}

// NewRedisClient builds a client and checks connectivity.
func NewRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			// Best-effort close after failed ping.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}

// NewRedisStore scopes client to a trainer. The client is owned by the caller.
func NewRedisStore(client *redis.Client, trainerID string) *RedisStore {
	return &RedisStore{client: client, trainer: trainerID, now: time.Now}
}

func (r *RedisStore) key(suffix string) string {
	return "pomodex:{" + r.trainer + "}:" + suffix
}

// LoadCollection reads the seen and caught hashes.
func (r *RedisStore) LoadCollection(ctx context.Context) (model.Collection, error) {
	var seenCmd, caughtCmd *redis.MapStringStringCmd
	_, err := r.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		seenCmd = p.HGetAll(ctx, r.key("seen"))
		caughtCmd = p.HGetAll(ctx, r.key("caught"))
		return nil
	})
	if err != nil {
		return model.Collection{}, unavailable("load collection", err)
	}
	col := model.NewCollection()
	for field := range seenCmd.Val() {
		id, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		col.Seen[model.CreatureID(id)] = struct{}{}
	}
	for field, v := range caughtCmd.Val() {
		id, err := strconv.Atoi(field)
		if err != nil {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			continue
		}
		cid := model.CreatureID(id)
		col.Seen[cid] = struct{}{}
		col.Caught[cid] = struct{}{}
		col.CaughtCounts[cid] = n
	}
	return col, nil
}

// MarkSeen records the first sighting; later calls keep the first timestamp.
func (r *RedisStore) MarkSeen(ctx context.Context, id model.CreatureID) error {
	if !model.ValidCreature(id) {
		return fmt.Errorf("%w: %d", model.ErrInvalidCreature, id)
	}
	if err := r.client.HSetNX(ctx, r.key("seen"), strconv.Itoa(int(id)), r.now().Unix()).Err(); err != nil {
		return unavailable("mark seen", err)
	}
	return nil
}

// MarkCaught marks id seen and increments its catch count.
func (r *RedisStore) MarkCaught(ctx context.Context, id model.CreatureID) error {
	if !model.ValidCreature(id) {
		return fmt.Errorf("%w: %d", model.ErrInvalidCreature, id)
	}
	field := strconv.Itoa(int(id))
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSetNX(ctx, r.key("seen"), field, r.now().Unix())
		p.HIncrBy(ctx, r.key("caught"), field, 1)
		return nil
	})
	if err != nil {
		return unavailable("mark caught", err)
	}
	return nil
}

// LoadStats reads the lifetime counters.
func (r *RedisStore) LoadStats(ctx context.Context) (model.Stats, error) {
	vals, err := r.client.HGetAll(ctx, r.key("stats")).Result()
	if err != nil {
		return model.Stats{}, unavailable("load stats", err)
	}
	atoi := func(k string) int {
		n, _ := strconv.Atoi(vals[k])
		return n
	}
	return model.Stats{
		TotalFocusMinutes: atoi(fieldFocusMinutes),
		TotalSessions:     atoi(fieldSessions),
		TotalAttempts:     atoi(fieldAttempts),
	}, nil
}

// RecordSessionCompletion increments all counters in one MULTI block.
func (r *RedisStore) RecordSessionCompletion(ctx context.Context, minutes int) error {
	key := r.key("stats")
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HIncrBy(ctx, key, fieldFocusMinutes, int64(minutes))
		p.HIncrBy(ctx, key, fieldSessions, 1)
		p.HIncrBy(ctx, key, fieldAttempts, 1)
		return nil
	})
	if err != nil {
		return unavailable("record session completion", err)
	}
	return nil
}

type redisSession struct {
	EndedAt         time.Time `json:"ended_at"`
	DurationMinutes int       `json:"duration_minutes"`
	Creature        int       `json:"creature"`
	Caught          bool      `json:"caught"`
	ChancePercent   float64   `json:"chance_pct"`
}

// AppendSession pushes rec onto the trainer's session log.
func (r *RedisStore) AppendSession(ctx context.Context, rec model.SessionRecord) error {
	data, err := json.Marshal(redisSession{
		EndedAt:         rec.EndedAt.UTC(),
		DurationMinutes: rec.DurationMinutes,
		Creature:        int(rec.Creature),
		Caught:          rec.Caught,
		ChancePercent:   rec.ChancePercent,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	key := r.key("sessions")
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, key, data)
		p.LTrim(ctx, key, -maxRedisSessions, -1)
		return nil
	})
	if err != nil {
		return unavailable("append session", err)
	}
	return nil
}

// ListSessions returns up to limit of the most recent sessions, oldest first.
func (r *RedisStore) ListSessions(ctx context.Context, limit int) ([]model.SessionRecord, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	raw, err := r.client.LRange(ctx, r.key("sessions"), start, -1).Result()
	if err != nil {
		return nil, unavailable("list sessions", err)
	}
	out := make([]model.SessionRecord, 0, len(raw))
	for _, item := range raw {
		var s redisSession
		if err := json.Unmarshal([]byte(item), &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session: %w", err)
		}
		out = append(out, model.SessionRecord{
			EndedAt:         s.EndedAt,
			DurationMinutes: s.DurationMinutes,
			Creature:        model.CreatureID(s.Creature),
			Caught:          s.Caught,
			ChancePercent:   s.ChancePercent,
		})
	}
	return out, nil
}
