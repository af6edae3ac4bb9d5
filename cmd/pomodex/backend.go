package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/verte-zerg/pomodex/internal/api"
	"github.com/verte-zerg/pomodex/internal/battle"
	"github.com/verte-zerg/pomodex/internal/config"
	"github.com/verte-zerg/pomodex/internal/store"
)

const openTimeout = 10 * time.Second

// backend bundles the local preference store and the trainer's collection
// store, which is either the same SQLite database or Redis.
type backend struct {
	local      *store.Store
	redis      *redis.Client
	trainer    string
	collection collectionStore
	checks     map[string]api.Checker
}

// collectionStore is what every command needs from a backend.
type collectionStore interface {
	battle.CollectionStore
	battle.History
}

func openBackend(ctx context.Context, s config.Settings, logger *zap.Logger) (*backend, error) {
	ctx, cancel := context.WithTimeout(ctx, openTimeout)
	defer cancel()

	local, err := store.Open(s.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	b := &backend{local: local, checks: map[string]api.Checker{"sqlite": api.CheckFunc(local.Ping)}}

	trainer, err := local.TrainerID(ctx)
	if err != nil {
		b.close(logger)
		return nil, err
	}
	b.trainer = trainer

	switch s.StoreBackend {
	case config.BackendRedis:
		client, err := store.NewRedisClient(ctx, store.RedisOptions{
			Addr:     s.RedisAddr,
			Password: s.RedisPassword,
			DB:       s.RedisDB,
		})
		if err != nil {
			b.close(logger)
			return nil, err
		}
		b.redis = client
		b.collection = store.NewRedisStore(client, trainer)
		b.checks["redis"] = api.CheckFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
	default:
		b.collection = local.ForTrainer(trainer)
	}
	logger.Debug("backend opened",
		zap.String("backend", s.StoreBackend),
		zap.String("trainer", trainer),
		zap.String("db", s.DBPath),
	)
	return b, nil
}

// seedDuration stores minutes as the session length unless one is saved.
func (b *backend) seedDuration(ctx context.Context, minutes int) error {
	if _, ok, err := b.local.Pref(ctx, battle.PrefDuration); err != nil || ok {
		return err
	}
	return b.local.SetPref(ctx, battle.PrefDuration, strconv.Itoa(minutes))
}

func (b *backend) orchestrator(logger *zap.Logger, delay time.Duration, dispatch func(battle.Reveal)) *battle.Orchestrator {
	return battle.New(battle.Deps{
		Store:       b.collection,
		Prefs:       b.local,
		Logger:      logger,
		RevealDelay: delay,
		Dispatch:    dispatch,
	})
}

func (b *backend) close(logger *zap.Logger) {
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if err := b.local.Close(); err != nil {
		logger.Warn("failed to close db", zap.Error(err))
	}
}
