package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "POMODEX_"

// EnvConfig holds environment overrides. Unset variables stay nil.
type EnvConfig struct {
	Minutes       *int           `env:"MINUTES"`
	RevealDelay   *time.Duration `env:"REVEAL_DELAY"`
	StoreBackend  *string        `env:"STORE"`
	DBPath        *string        `env:"DB_PATH"`
	RedisAddr     *string        `env:"REDIS_ADDR"`
	RedisPassword *string        `env:"REDIS_PASSWORD"`
	RedisDB       *int           `env:"REDIS_DB"`
	ServerAddr    *string        `env:"ADDR"`
	LogLevel      *string        `env:"LOG_LEVEL"`
	LogPath       *string        `env:"LOG_PATH"`
	SpriteDir     *string        `env:"SPRITE_DIR"`
}

// LoadEnv parses POMODEX_* variables from environ. A nil environ reads the
// process environment.
func LoadEnv(environ map[string]string) (EnvConfig, error) {
	var cfg EnvConfig
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return EnvConfig{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
