package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/database/models"
)

const (
	defaultMaxRetries    = 3
	defaultRetryInterval = time.Second
	schemaVersion        = 1 // bump when schema/migrations change
)

type DBConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	PoolSize     int    `toml:"pool_size"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifetime  int    `toml:"max_lifetime"`
	SSLMode      string `toml:"ssl_mode"`
}

type DB struct {
	pool  *pgxpool.Pool
	bunDB *bun.DB
}

func New(ctx context.Context, cfg DBConfig) (*DB, error) {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	var conn net.Conn
	var err error
	for i := 0; i < defaultMaxRetries; i++ {
		conn, err = dial(addr)
		if err == nil {
			break
		}
		slog.Warn("Database dial failed, retrying",
			slog.String("type", "db"),
			slog.String("addr", addr),
			slog.Int("attempt", i+1),
			slog.Any("error", err))
		time.Sleep(defaultRetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("database server unreachable after %d attempts: %w", defaultMaxRetries, err)
	}
	conn.Close()

	poolConfig, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(cfg.MaxLifetime) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	return &DB{pool: pool, bunDB: newBunDB(cfg)}, nil
}

// dial prefers IPv4 unless DB_DIAL_FORCE_IPV6 is set.
func dial(addr string) (net.Conn, error) {
	if os.Getenv("DB_DIAL_FORCE_IPV6") == "1" {
		return net.DialTimeout("tcp6", addr, config.NetworkDialTimeout)
	}
	if c, err := net.DialTimeout("tcp4", addr, config.NetworkDialTimeout); err == nil {
		return c, nil
	}
	return net.DialTimeout("tcp6", addr, config.NetworkDialTimeout)
}

func buildConnString(cfg DBConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?connect_timeout=5",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
}

func newBunDB(cfg DBConfig) *bun.DB {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, sslMode)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

func (db *DB) ExecWithLog(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	start := time.Now()
	result, err := db.pool.Exec(ctx, sql, args...)
	duration := time.Since(start)

	if err != nil {
		slog.Error("Query failed",
			slog.String("type", "db"),
			slog.String("operation", "exec"),
			slog.String("query", sql),
			slog.Duration("took", duration),
			slog.Any("error", err),
		)
		return result, err
	}

	slog.Debug("Query executed",
		slog.String("type", "db"),
		slog.String("operation", "exec"),
		slog.String("query", sql),
		slog.Duration("took", duration),
		slog.Int64("affected_rows", result.RowsAffected()),
	)
	return result, nil
}

func (db *DB) QueryWithLog(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	start := time.Now()
	rows, err := db.pool.Query(ctx, sql, args...)
	if err != nil {
		slog.Error("Query failed",
			slog.String("type", "db"),
			slog.String("operation", "query"),
			slog.String("query", sql),
			slog.Duration("took", time.Since(start)),
			slog.Any("error", err),
		)
		return rows, err
	}
	return rows, nil
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	if db.bunDB != nil {
		db.bunDB.Close()
	}
}

// Tables lists every model in creation order.
var Tables = []interface{}{
	(*models.UserProgression)(nil),
	(*models.Wallet)(nil),
	(*models.MilestoneClaim)(nil),
	(*models.EphemeralQuestProgress)(nil),
	(*models.AchievementCounter)(nil),
	(*models.MainQuestState)(nil),
	(*models.MainQuestCompletion)(nil),
	(*models.MainQuestCounter)(nil),
	(*models.UserItem)(nil),
	(*models.ProductionAssignment)(nil),
	(*models.UserStructure)(nil),
	(*models.ActiveBoost)(nil),
	(*models.MarketListing)(nil),
	(*models.Companion)(nil),
	(*models.Consumable)(nil),
	(*models.Trade)(nil),
	(*models.RebirthRecord)(nil),
}

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_user_progression_level ON user_progression(level DESC, total_exp DESC);",
	"CREATE INDEX IF NOT EXISTS idx_user_progression_rebirth ON user_progression(rebirth_count DESC, level DESC, total_exp DESC);",
	"CREATE INDEX IF NOT EXISTS idx_milestone_claims_user_kind ON milestone_claims(user_id, kind);",
	"CREATE INDEX IF NOT EXISTS idx_eqp_user_period ON ephemeral_quest_progress(user_id, period_key);",
	"CREATE INDEX IF NOT EXISTS idx_eqp_period ON ephemeral_quest_progress(period_key);",
	"CREATE INDEX IF NOT EXISTS idx_main_quest_completions_user ON main_quest_completions(user_id);",
	"CREATE INDEX IF NOT EXISTS idx_user_items_user_item ON user_items(user_id, item_id);",
	"CREATE INDEX IF NOT EXISTS idx_production_assignments_user ON production_assignments(user_id);",
	"CREATE INDEX IF NOT EXISTS idx_user_structures_user ON user_structures(user_id);",
	"CREATE INDEX IF NOT EXISTS idx_active_boosts_user ON active_boosts(user_id);",
	"CREATE INDEX IF NOT EXISTS idx_market_listings_seller ON market_listings(seller_id);",
	"CREATE INDEX IF NOT EXISTS idx_user_companions_user ON user_companions(user_id);",
	"CREATE INDEX IF NOT EXISTS idx_user_consumables_user ON user_consumables(user_id);",
	"CREATE INDEX IF NOT EXISTS idx_trades_pending ON trades(offerer_id, target_id) WHERE status = 'pending';",
	"CREATE INDEX IF NOT EXISTS idx_rebirth_records_user ON rebirth_records(user_id, created_at);",
}

// InitializeSchema creates all required database tables and indexes
func (db *DB) InitializeSchema(ctx context.Context) error {
	if os.Getenv("DB_FAST_INIT") == "1" {
		if err := db.ensureAppMeta(ctx); err == nil {
			if v, _ := db.getAppMeta(ctx, "schema_version"); v == strconv.Itoa(schemaVersion) {
				slog.Info("Fast DB init: schema up-to-date, skipping initialization",
					slog.Int("schema_version", schemaVersion))
				return nil
			}
		}
	}

	for _, model := range Tables {
		if _, err := db.bunDB.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	for _, idx := range indexes {
		if _, err := db.ExecWithLog(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if err := db.ensureAppMeta(ctx); err == nil {
		_ = db.setAppMeta(ctx, "schema_version", strconv.Itoa(schemaVersion))
	}
	return nil
}

// ResetTables truncates every progression table.
func (db *DB) ResetTables(ctx context.Context) error {
	for _, model := range Tables {
		if _, err := db.bunDB.NewTruncateTable().Model(model).Cascade().Exec(ctx); err != nil {
			return fmt.Errorf("failed to truncate table: %w", err)
		}
	}
	slog.Info("Progression tables truncated", slog.Int("tables", len(Tables)))
	return nil
}

func (db *DB) ensureAppMeta(ctx context.Context) error {
	_, err := db.ExecWithLog(ctx, `CREATE TABLE IF NOT EXISTS app_meta (key TEXT PRIMARY KEY, value TEXT)`)
	return err
}

func (db *DB) getAppMeta(ctx context.Context, key string) (string, error) {
	rows, err := db.QueryWithLog(ctx, `SELECT value FROM app_meta WHERE key = $1`, key)
	if err != nil {
		return "", err
	}
	return pgx.CollectOneRow(rows, pgx.RowTo[string])
}

func (db *DB) setAppMeta(ctx context.Context, key, value string) error {
	_, err := db.pool.Exec(ctx, `INSERT INTO app_meta(key, value) VALUES($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	return err
}

// Ping verifies both database connections are working
func (db *DB) Ping(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pgxpool ping failed: %w", err)
	}
	if err := db.bunDB.PingContext(ctx); err != nil {
		return fmt.Errorf("bun ping failed: %w", err)
	}
	return nil
}
