// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/lmittmann/tint"
)

// Storage backends
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Broadcast buses
const (
	BusLocal = "local"
	BusRedis = "redis"
)

// Log formats
const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config is the full server configuration
type Config struct {
	HTTPHost string `env:"HTTP_HOST"`
	HTTPPort int    `env:"HTTP_PORT" envDefault:"8080"`

	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"json"`

	StorageType string        `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string        `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
	RedisKeyTTL time.Duration `env:"REDIS_KEY_TTL" envDefault:"0s"`
	DatabaseURL string        `env:"DATABASE_URL"`

	BroadcastBus string `env:"BROADCAST_BUS" envDefault:"local"`

	Scoring Scoring `envPrefix:"SCORE_"`

	RoomCodeAttempts  int           `env:"ROOM_CODE_ATTEMPTS" envDefault:"10"`
	LiveSweepInterval time.Duration `env:"LIVE_SWEEP_INTERVAL" envDefault:"1m"`
}

// Scoring holds the scorer's tunables
type Scoring struct {
	GroupPoints    int `env:"GROUP_POINTS" envDefault:"20"`
	MistakePenalty int `env:"MISTAKE_PENALTY" envDefault:"10"`
	MaxTime        int `env:"MAX_TIME" envDefault:"300"`
	SpeedDivider   int `env:"SPEED_DIVIDER" envDefault:"2"`
	MaxMistakes    int `env:"MAX_MISTAKES" envDefault:"4"`
}

// Load reads the configuration from the process environment
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

// LoadFrom reads the configuration from the given variables instead of the
// process environment
func LoadFrom(environ map[string]string) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: environ})
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks values that parse correctly but make no sense together
func (c Config) Validate() error {
	var errs []error
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT %d out of range", c.HTTPPort))
	}
	switch c.LogFormat {
	case LogFormatJSON, LogFormatText:
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be %q or %q, got %q", LogFormatJSON, LogFormatText, c.LogFormat))
	}
	switch c.StorageType {
	case StorageMemory, StorageRedis:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when STORAGE_TYPE=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_TYPE must be memory, redis or postgres, got %q", c.StorageType))
	}
	switch c.BroadcastBus {
	case BusLocal, BusRedis:
	default:
		errs = append(errs, fmt.Errorf("BROADCAST_BUS must be local or redis, got %q", c.BroadcastBus))
	}
	if c.RedisKeyTTL < 0 {
		errs = append(errs, errors.New("REDIS_KEY_TTL must not be negative"))
	}
	if c.Scoring.SpeedDivider <= 0 {
		errs = append(errs, errors.New("SCORE_SPEED_DIVIDER must be positive"))
	}
	if c.Scoring.GroupPoints < 0 || c.Scoring.MistakePenalty < 0 || c.Scoring.MaxTime < 0 || c.Scoring.MaxMistakes < 1 {
		errs = append(errs, errors.New("scoring values must not be negative and SCORE_MAX_MISTAKES must be at least 1"))
	}
	if c.RoomCodeAttempts < 1 {
		errs = append(errs, errors.New("ROOM_CODE_ATTEMPTS must be at least 1"))
	}
	if c.LiveSweepInterval <= 0 {
		errs = append(errs, errors.New("LIVE_SWEEP_INTERVAL must be positive"))
	}
	return errors.Join(errs...)
}

// NewLogger builds the process logger: JSON for production, tint's colored
// text handler for local development
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	if c.LogFormat == LogFormatText {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      c.LogLevel,
			TimeFormat: time.Kitchen,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: c.LogLevel}))
}
