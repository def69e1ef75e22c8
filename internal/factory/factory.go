package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mcoot/connections-go/internal/api"
	"github.com/mcoot/connections-go/internal/config"
	"github.com/mcoot/connections-go/internal/dependencies/clock"
	"github.com/mcoot/connections-go/internal/dependencies/random"
	"github.com/mcoot/connections-go/internal/live"
	"github.com/mcoot/connections-go/internal/realtime"
	"github.com/mcoot/connections-go/internal/realtime/redisbus"
	"github.com/mcoot/connections-go/internal/services/leaderboard"
	"github.com/mcoot/connections-go/internal/services/progression"
	"github.com/mcoot/connections-go/internal/services/room"
	"github.com/mcoot/connections-go/internal/services/scoring"
	"github.com/mcoot/connections-go/internal/services/session"
	"github.com/mcoot/connections-go/internal/storage"
	"github.com/mcoot/connections-go/internal/storage/memory"
	"github.com/mcoot/connections-go/internal/storage/postgres"
	redisstorage "github.com/mcoot/connections-go/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory   = config.StorageMemory
	StorageTypeRedis    = config.StorageRedis
	StorageTypePostgres = config.StoragePostgres
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Logger *slog.Logger

	// Services
	Scorer            *scoring.Service
	Tracker           *progression.Tracker
	Aggregator        *leaderboard.Aggregator
	RoomService       *room.Service
	SessionController *session.Controller

	// Realtime
	LiveRegistry  *live.Registry
	HubManager    *realtime.HubManager
	Broadcaster   *realtime.Broadcaster
	LiveConnector *realtime.LiveConnector
	// Bus is nil when events are only delivered on this instance
	Bus *redisbus.Bus

	closers []func() error
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType
	// or BroadcastBus is "redis")
	RedisConfig *redisstorage.Config
	// DatabaseURL is the postgres DSN (required if StorageType is "postgres")
	DatabaseURL string
	// BroadcastBus selects how room events reach clients ("local" or "redis")
	// If empty, defaults to "local"
	BroadcastBus string
	// Scoring configures the scorer. If zero value, defaults to scoring.DefaultConfig()
	Scoring scoring.Config
	// RoomCodeAttempts bounds room code collision retries (optional)
	RoomCodeAttempts int
}

// ConfigFromEnv converts loaded environment settings to a factory Config
func ConfigFromEnv(cfg config.Config, logger *slog.Logger) Config {
	redisCfg := redisstorage.DefaultConfig()
	redisCfg.URL = cfg.RedisURL
	redisCfg.RoomTTL = cfg.RedisKeyTTL
	return Config{
		Logger:       logger,
		StorageType:  cfg.StorageType,
		RedisConfig:  &redisCfg,
		DatabaseURL:  cfg.DatabaseURL,
		BroadcastBus: cfg.BroadcastBus,
		Scoring: scoring.Config{
			GroupPoints:    cfg.Scoring.GroupPoints,
			MistakePenalty: cfg.Scoring.MistakePenalty,
			MaxTime:        cfg.Scoring.MaxTime,
			SpeedDivider:   cfg.Scoring.SpeedDivider,
			MaxMistakes:    cfg.Scoring.MaxMistakes,
		},
		RoomCodeAttempts: cfg.RoomCodeAttempts,
	}
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var closers []func() error
	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	// Create storage based on type
	var store storage.Storage
	var storeClient *goredis.Client
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		closers = append(closers, redisStore.Close)
		store = redisStore
		storeClient = redisStore.Client()
	case StorageTypePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DatabaseURL required when StorageType is postgres")
		}
		pgStore, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		closers = append(closers, pgStore.Close)
		store = pgStore
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'postgres'", storageType)
	}

	// Reuse the storage connection for the bus when both are redis
	var busClient *goredis.Client
	switch cfg.BroadcastBus {
	case "", config.BusLocal:
	case config.BusRedis:
		busClient = storeClient
		if busClient == nil {
			if cfg.RedisConfig == nil {
				closeAll()
				return nil, errors.New("RedisConfig required when BroadcastBus is redis")
			}
			client, err := cfg.RedisConfig.NewClient()
			if err != nil {
				closeAll()
				return nil, err
			}
			busClient = client
			closers = append(closers, busClient.Close)
		}
	default:
		closeAll()
		return nil, fmt.Errorf("invalid BroadcastBus %q: must be 'local' or 'redis'", cfg.BroadcastBus)
	}

	scoringCfg := cfg.Scoring
	if scoringCfg == (scoring.Config{}) {
		scoringCfg = scoring.DefaultConfig()
	}

	app := newWithDependencies(store, clock.New(), random.New(), logger, scoringCfg, cfg.RoomCodeAttempts, busClient)
	app.closers = closers
	logger.Info("application wired",
		slog.String("storage_type", storageType),
		slog.Bool("redis_bus", app.Bus != nil))
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
	scoringCfg scoring.Config,
	codeAttempts int,
	busClient *goredis.Client,
) *App {
	hubManager := realtime.NewHubManager(logger)

	var publisher realtime.Publisher = hubManager
	var bus *redisbus.Bus
	if busClient != nil {
		bus = redisbus.New(busClient, hubManager, logger)
		publisher = bus
	}
	broadcaster := realtime.NewBroadcaster(publisher, clk, logger)

	scorer := scoring.New(scoringCfg)
	tracker := progression.New(store)
	aggregator := leaderboard.New(store)
	roomService := room.New(store, broadcaster, clk, rnd, logger, codeAttempts)
	sessionController := session.NewController(store, scorer, tracker, aggregator, broadcaster, clk, logger)
	registry := live.NewRegistry(clk, logger)
	connector := realtime.NewLiveConnector(hubManager, registry, broadcaster, roomService, clk, logger)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		Logger:            logger,
		Scorer:            scorer,
		Tracker:           tracker,
		Aggregator:        aggregator,
		RoomService:       roomService,
		SessionController: sessionController,
		LiveRegistry:      registry,
		HubManager:        hubManager,
		Broadcaster:       broadcaster,
		LiveConnector:     connector,
		Bus:               bus,
	}
}

// Handler returns the HTTP API for the app
func (a *App) Handler() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:            a.Logger,
		Storage:           a.Storage,
		RoomService:       a.RoomService,
		SessionController: a.SessionController,
		LiveRegistry:      a.LiveRegistry,
		HubManager:        a.HubManager,
		LiveConnector:     a.LiveConnector,
	})
}

// Close releases storage and bus connections
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
