package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mcoot/backgammon/internal/api"
	"github.com/mcoot/backgammon/internal/config"
	"github.com/mcoot/backgammon/internal/factory"
	"github.com/mcoot/backgammon/internal/services/auth"
	"github.com/mcoot/backgammon/internal/services/game"
	redisstorage "github.com/mcoot/backgammon/internal/storage/redis"
)

func main() {
	configPath := flag.String("config", "", "path to a config file (default: ./config.yaml if present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up logging
	logger := cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	// Build factory config
	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.Storage.Type,
		RandomSeed:  cfg.Game.RandomSeed,
		AuthConfig: auth.Config{
			Secret:          cfg.Auth.JWTSecret,
			Issuer:          cfg.Auth.Issuer,
			SessionDuration: cfg.Auth.TokenTTL,
		},
		GameConfig: game.Config{
			TurnClock:    cfg.Game.TurnClock,
			StatsTimeout: game.DefaultConfig().StatsTimeout,
		},
		Sweeps: factory.SweepConfig{
			InviteTTL:       cfg.Game.InviteTTL,
			WaitingTTL:      cfg.Game.WaitingTTL,
			InviteInterval:  cfg.Sweeper.InviteInterval,
			ClockInterval:   cfg.Sweeper.ClockInterval,
			WaitingInterval: cfg.Sweeper.WaitingInterval,
		},
	}

	// Configure Redis if storage type is redis
	if cfg.Storage.Type == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.Storage.Redis.URL
		redisCfg.PoolSize = cfg.Storage.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Storage.Redis.MinIdleConns
		factoryCfg.RedisConfig = &redisCfg
	}
	if cfg.Auth.JWTSecret == config.DefaultJWTSecret {
		logger.Warn("using the default JWT secret; set BGAMMON_AUTH_JWT_SECRET")
	}

	// Create application factory
	app, err := factory.New(factoryCfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Create API router
	apiRouter := api.NewRouter(api.RouterConfig{
		Logger:        logger,
		Clock:         app.Clock,
		AuthService:   app.AuthService,
		StatsService:  app.StatsService,
		InviteService: app.InviteService,
		PlayService:   app.PlayService,
		WSServer:      app.WSServer,
		SocialService: app.SocialService,
		HomeServer:    app.HomeServer,
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", apiRouter)

	// Create server
	server := api.NewServer(mux, api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app.Start(ctx)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started", slog.String("addr", server.Addr()))

	// Wait for shutdown or error
	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	if err := app.Close(); err != nil {
		logger.Error("failed to release resources", slog.String("error", err.Error()))
		exitCode = 1
	}

	logger.Info("server stopped")
	os.Exit(exitCode)
}
