package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ellavondegurechaff/gohye-progression/backend"
	"github.com/ellavondegurechaff/gohye-progression/backend/handlers"
	"github.com/ellavondegurechaff/gohye-progression/progression"
	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/database/repositories"
	"github.com/ellavondegurechaff/gohye-progression/progression/logger"
	"github.com/ellavondegurechaff/gohye-progression/progression/services"
)

var serveCMD = &cobra.Command{
	Use:   "serve",
	Short: "run the progression HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		initCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		db, err := connect(initCtx, cfg)
		cancel()
		if err != nil {
			return err
		}
		defer db.Close()

		health := map[string]handlers.HealthFunc{"database": db.Ping}

		var snapshots services.SnapshotCache
		if cfg.Redis.Addr != "" {
			cache, err := services.NewRedisSnapshotCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				logger.LogError("Leaderboard snapshot cache disabled", err)
			} else {
				defer cache.Close()
				snapshots = cache
				health["redis"] = cache.Ping
			}
		}

		st := repositories.NewProgressionStore(db.BunDB())
		e := progression.NewEngine(st, config.DefaultTables(), lockTimeout(cfg), snapshots)

		interval := config.QuestCleanupInterval
		if cfg.Engine.CleanupIntervalMinutes > 0 {
			interval = time.Duration(cfg.Engine.CleanupIntervalMinutes) * time.Minute
		}
		e.Quests.StartCleanup(ctx, interval)

		if err := e.Leaderboards.Warm(ctx); err != nil {
			logger.LogError("Failed to warm leaderboards", err)
		}

		server := backend.New(ctx, &handlers.App{
			Levels:       e.Levels,
			Rebirths:     e.Rebirths,
			Quests:       e.Quests,
			Tracker:      e.Tracker,
			MainQuests:   e.MainQuests,
			Leaderboards: e.Leaderboards,
			Profiles:     e.Profiles,
			Health:       health,
			Version:      version,
		}, backend.Options{
			APIKey:             cfg.HTTP.APIKey,
			AllowOrigins:       cfg.HTTP.AllowOrigins,
			RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
		})

		errCh := make(chan error, 1)
		go func() {
			logger.LogSystem("Starting HTTP server", slog.String("address", cfg.HTTP.Addr))
			errCh <- server.Listen(cfg.HTTP.Addr)
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logger.LogSystem("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.ShutdownWithContext(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCMD)
}
