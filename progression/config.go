package progression

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/ellavondegurechaff/gohye-progression/progression/database"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	cfg := DefaultConfig()
	if err = toml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Log:    LogConfig{Level: slog.LevelInfo, Color: true},
		HTTP:   HTTPConfig{Addr: ":8080", AllowOrigins: "*", RateLimitPerMinute: 600},
		Engine: EngineConfig{LockTimeoutSeconds: 10, CleanupIntervalMinutes: 60},
		DB: database.DBConfig{
			Host:     "localhost",
			Port:     5432,
			PoolSize: 10,
		},
	}
}

type Config struct {
	Log    LogConfig         `toml:"log"`
	HTTP   HTTPConfig        `toml:"http"`
	DB     database.DBConfig `toml:"db"`
	Redis  RedisConfig       `toml:"redis"`
	Engine EngineConfig      `toml:"engine"`
}

type LogConfig struct {
	Level slog.Level `toml:"level"`
	Color bool       `toml:"color"`
}

// HTTPConfig configures the JSON API. An empty APIKey leaves the API open.
type HTTPConfig struct {
	Addr               string `toml:"addr"`
	APIKey             string `toml:"api_key"`
	AllowOrigins       string `toml:"allow_origins"`
	RateLimitPerMinute int    `toml:"rate_limit_per_minute"`
}

// RedisConfig enables the leaderboard snapshot cache when Addr is set.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type EngineConfig struct {
	LockTimeoutSeconds     int `toml:"lock_timeout_seconds"`
	CleanupIntervalMinutes int `toml:"cleanup_interval_minutes"`
}
