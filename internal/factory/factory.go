package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/backgammon/internal/dependencies/clock"
	"github.com/mcoot/backgammon/internal/dependencies/random"
	"github.com/mcoot/backgammon/internal/services/auth"
	"github.com/mcoot/backgammon/internal/services/bot"
	"github.com/mcoot/backgammon/internal/services/game"
	"github.com/mcoot/backgammon/internal/services/invite"
	"github.com/mcoot/backgammon/internal/services/play"
	"github.com/mcoot/backgammon/internal/services/presence"
	"github.com/mcoot/backgammon/internal/services/social"
	"github.com/mcoot/backgammon/internal/services/stats"
	"github.com/mcoot/backgammon/internal/services/sweeper"
	"github.com/mcoot/backgammon/internal/storage"
	"github.com/mcoot/backgammon/internal/storage/memory"
	redisstorage "github.com/mcoot/backgammon/internal/storage/redis"
	"github.com/mcoot/backgammon/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// Default background sweep settings
const (
	DefaultWaitingTTL      = 10 * time.Minute
	DefaultInviteInterval  = time.Minute
	DefaultClockInterval   = time.Second
	DefaultWaitingInterval = time.Minute
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Registry      *game.Registry
	StatsService  *stats.Service
	AuthService   *auth.Service
	InviteService *invite.Service
	BotService    *bot.Service
	PlayService   *play.Service
	Presence      *presence.Tracker
	SocialService *social.Service
	HubManager    *ws.HubManager
	WSServer      *ws.Server
	Home          *ws.Home
	HomeServer    *ws.HomeServer
	Sweeper       *sweeper.Sweeper

	logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// GameConfig holds registry settings (optional)
	// If zero value, defaults to game.DefaultConfig()
	GameConfig game.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// RandomSeed makes dice reproducible when non-zero
	RandomSeed uint64
	// Sweeps holds background job settings; zero fields use the defaults
	Sweeps SweepConfig
}

// SweepConfig holds background job intervals and ages
type SweepConfig struct {
	InviteTTL       time.Duration
	WaitingTTL      time.Duration
	InviteInterval  time.Duration
	ClockInterval   time.Duration
	WaitingInterval time.Duration
}

func (c SweepConfig) withDefaults() SweepConfig {
	if c.WaitingTTL <= 0 {
		c.WaitingTTL = DefaultWaitingTTL
	}
	if c.InviteInterval <= 0 {
		c.InviteInterval = DefaultInviteInterval
	}
	if c.ClockInterval <= 0 {
		c.ClockInterval = DefaultClockInterval
	}
	if c.WaitingInterval <= 0 {
		c.WaitingInterval = DefaultWaitingInterval
	}
	return c
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
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
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	var rnd random.Random = random.New()
	if cfg.RandomSeed != 0 {
		rnd = random.NewSeeded(cfg.RandomSeed)
	}

	// Use default auth config if not provided
	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg = auth.DefaultConfig()
	}
	gameCfg := cfg.GameConfig
	if gameCfg.TurnClock == 0 {
		gameCfg = game.DefaultConfig()
	}

	return newWithDependencies(store, clk, rnd, authCfg, gameCfg, cfg.Sweeps, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	authCfg auth.Config,
	gameCfg game.Config,
	sweeps SweepConfig,
	logger *slog.Logger,
) *App {
	sweeps = sweeps.withDefaults()

	// Create services
	statsService := stats.New(store, logger)
	registry := game.NewRegistry(statsService, clk, rnd, logger, gameCfg)
	authService := auth.New(store, clk, authCfg)
	botService := bot.NewService(store, registry, bot.DefaultStrategies(rnd), clk, rnd, logger)
	hubManager := ws.NewHubManager(logger)
	playService := play.NewService(registry, store, botService, hubManager, clk, logger)
	tracker := presence.New(logger)
	home := ws.NewHome(tracker, logger)
	inviteService := invite.New(store, playService, home, clk, logger, sweeps.InviteTTL)
	socialService := social.New(store, tracker, inviteService, home, clk, logger)
	tracker.Watch(socialService.PresenceChanged)
	wsServer := ws.NewServer(hubManager, playService, clk, logger)
	homeServer := ws.NewHomeServer(home, socialService, clk, logger)

	app := &App{
		Storage:       store,
		Clock:         clk,
		Random:        rnd,
		Registry:      registry,
		StatsService:  statsService,
		AuthService:   authService,
		InviteService: inviteService,
		BotService:    botService,
		PlayService:   playService,
		Presence:      tracker,
		SocialService: socialService,
		HubManager:    hubManager,
		WSServer:      wsServer,
		Home:          home,
		HomeServer:    homeServer,
		Sweeper:       sweeper.New(logger),
		logger:        logger,
	}
	app.registerSweeps(sweeps)
	return app
}

// registerSweeps schedules the periodic maintenance jobs
func (a *App) registerSweeps(cfg SweepConfig) {
	a.Sweeper.AddJob("expired-invites", cfg.InviteInterval, func(ctx context.Context) {
		if _, err := a.InviteService.PurgeExpired(ctx); err != nil {
			a.logger.Warn("invite purge failed", slog.String("error", err.Error()))
		}
	})
	a.Sweeper.AddJob("expired-clocks", cfg.ClockInterval, func(ctx context.Context) {
		a.Registry.ExpireClocks(ctx)
	})
	a.Sweeper.AddJob("abandoned-games", cfg.WaitingInterval, func(ctx context.Context) {
		a.Registry.PurgeWaiting(ctx, cfg.WaitingTTL)
	})
	a.Sweeper.AddJob("idle-hubs", cfg.WaitingInterval, func(context.Context) {
		a.HubManager.CleanupEmptyHubs()
	})
	a.Sweeper.AddJob("revoked-sessions", cfg.WaitingInterval, func(context.Context) {
		a.AuthService.CleanExpiredSessions()
	})
}

// Start launches the background sweeps
func (a *App) Start(ctx context.Context) {
	a.Sweeper.Start(ctx)
}

// Close stops background work, ends every websocket connection, waits
// for pending statistics reports and releases storage
func (a *App) Close() error {
	a.Sweeper.Stop()
	a.HubManager.Close()
	a.Home.Close()
	a.Registry.Close()
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
