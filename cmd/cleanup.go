package cmd

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ellavondegurechaff/gohye-progression/progression"
	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/database/repositories"
	"github.com/ellavondegurechaff/gohye-progression/progression/logger"
)

var cleanupCMD = &cobra.Command{
	Use:   "cleanup",
	Short: "delete quest progress of expired daily and weekly periods",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := setup()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		db, err := connect(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		st := repositories.NewProgressionStore(db.BunDB())
		e := progression.NewEngine(st, config.DefaultTables(), lockTimeout(cfg), nil)

		deleted, err := e.Quests.CleanupExpired(ctx)
		if err != nil {
			return err
		}
		logger.LogSystem("Cleanup completed", slog.Int64("rows", deleted))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanupCMD)
}

func lockTimeout(cfg *progression.Config) time.Duration {
	if cfg.Engine.LockTimeoutSeconds <= 0 {
		return config.UserLockTimeout
	}
	return time.Duration(cfg.Engine.LockTimeoutSeconds) * time.Second
}
