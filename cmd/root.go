package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ellavondegurechaff/gohye-progression/progression"
	"github.com/ellavondegurechaff/gohye-progression/progression/database"
	"github.com/ellavondegurechaff/gohye-progression/progression/logger"
)

var (
	version = "dev"
	commit  = "unknown"

	configPath string
)

var rootCmd = &cobra.Command{
	Use:           "gohye-progression",
	Short:         "Player progression and quest engine",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.toml", "path to config")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.LogError("Command failed", err)
		os.Exit(1)
	}
}

// setup loads the configuration and installs the logger.
func setup() (*progression.Config, error) {
	cfg, err := progression.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Color)
	logger.LogSystem("Configuration loaded",
		slog.String("path", configPath),
		slog.String("version", version),
		slog.String("commit", commit))
	return cfg, nil
}

// connect opens the database and makes sure the schema exists.
func connect(ctx context.Context, cfg *progression.Config) (*database.DB, error) {
	start := time.Now()
	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := db.InitializeSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}
	slog.Info("Database ready",
		slog.String("type", "db"),
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(start)))
	return db, nil
}
