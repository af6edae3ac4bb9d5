package config

import (
	"fmt"
	"time"

	"github.com/verte-zerg/pomodex/internal/model"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Defaults for settings without a model counterpart.
const (
	DefaultRevealDelay = 2 * time.Second
	DefaultRedisAddr   = "localhost:6379"
	DefaultServerAddr  = "127.0.0.1:8493"
	DefaultLogLevel    = "info"
)

// Settings are the resolved values of every layer except CLI flags.
type Settings struct {
	FocusMinutes  int
	RevealDelay   time.Duration
	StoreBackend  string
	DBPath        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ServerAddr    string
	LogLevel      string
	LogPath       string
	SpriteDir     string
}

// Defaults returns settings before any file or environment is applied.
func Defaults() Settings {
	return Settings{
		FocusMinutes: model.DefaultDurationMinutes,
		RevealDelay:  DefaultRevealDelay,
		StoreBackend: BackendSQLite,
		DBPath:       DefaultDBPath(),
		RedisAddr:    DefaultRedisAddr,
		ServerAddr:   DefaultServerAddr,
		LogLevel:     DefaultLogLevel,
		LogPath:      DefaultLogPath(),
		SpriteDir:    DefaultSpriteDir(),
	}
}

// Load layers defaults, the TOML file at path and the environment.
func Load(path string, environ map[string]string) (Settings, error) {
	s := Defaults()
	fileCfg, err := LoadConfig(path)
	if err != nil {
		return Settings{}, err
	}
	if err := s.ApplyFile(fileCfg); err != nil {
		return Settings{}, err
	}
	envCfg, err := LoadEnv(environ)
	if err != nil {
		return Settings{}, err
	}
	s.ApplyEnv(envCfg)
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// ApplyFile overrides settings with values present in the file.
func (s *Settings) ApplyFile(f FileConfig) error {
	setInt(&s.FocusMinutes, f.Focus.Minutes)
	if f.Focus.RevealDelay != nil {
		d, err := time.ParseDuration(*f.Focus.RevealDelay)
		if err != nil {
			return fmt.Errorf("invalid focus.reveal-delay: %w", err)
		}
		s.RevealDelay = d
	}
	setString(&s.StoreBackend, f.Store.Backend)
	setString(&s.DBPath, f.Store.Path)
	setString(&s.RedisAddr, f.Store.RedisAddr)
	setString(&s.RedisPassword, f.Store.RedisPassword)
	setInt(&s.RedisDB, f.Store.RedisDB)
	setString(&s.ServerAddr, f.Server.Addr)
	setString(&s.LogLevel, f.Log.Level)
	setString(&s.LogPath, f.Log.Path)
	setString(&s.SpriteDir, f.Sprites.Dir)
	return nil
}

// ApplyEnv overrides settings with set environment variables.
func (s *Settings) ApplyEnv(e EnvConfig) {
	setInt(&s.FocusMinutes, e.Minutes)
	if e.RevealDelay != nil {
		s.RevealDelay = *e.RevealDelay
	}
	setString(&s.StoreBackend, e.StoreBackend)
	setString(&s.DBPath, e.DBPath)
	setString(&s.RedisAddr, e.RedisAddr)
	setString(&s.RedisPassword, e.RedisPassword)
	setInt(&s.RedisDB, e.RedisDB)
	setString(&s.ServerAddr, e.ServerAddr)
	setString(&s.LogLevel, e.LogLevel)
	setString(&s.LogPath, e.LogPath)
	setString(&s.SpriteDir, e.SpriteDir)
}

// Validate rejects settings that cannot be corrected. Focus minutes are
// clamped rather than rejected.
func (s *Settings) Validate() error {
	s.FocusMinutes = model.ClampDuration(s.FocusMinutes)
	if s.RevealDelay < 0 {
		return fmt.Errorf("reveal delay must be >= 0")
	}
	switch s.StoreBackend {
	case BackendSQLite:
		if s.DBPath == "" {
			return fmt.Errorf("store path must not be empty")
		}
	case BackendRedis:
		if s.RedisAddr == "" {
			return fmt.Errorf("redis address must not be empty")
		}
		if s.RedisDB < 0 {
			return fmt.Errorf("redis db must be >= 0")
		}
	default:
		return fmt.Errorf("unknown store backend %q (want %s or %s)", s.StoreBackend, BackendSQLite, BackendRedis)
	}
	return nil
}

func setString(target, value *string) {
	if value != nil {
		*target = *value
	}
}

func setInt(target, value *int) {
	if value != nil {
		*target = *value
	}
}
