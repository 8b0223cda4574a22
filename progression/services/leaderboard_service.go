package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/database/models"
	"github.com/ellavondegurechaff/gohye-progression/progression/leveling"
	"github.com/ellavondegurechaff/gohye-progression/progression/outcome"
	"github.com/ellavondegurechaff/gohye-progression/progression/store"
)

// Leaderboard kinds
const (
	BoardLevel   = "level"
	BoardRebirth = "rebirth"
)

// SnapshotCache is a shared second-level cache for leaderboard pages. A miss is
// reported as (nil, false, nil).
type SnapshotCache interface {
	Get(ctx context.Context, key string) ([]LeaderboardEntry, bool, error)
	Set(ctx context.Context, key string, entries []LeaderboardEntry, ttl time.Duration) error
}

type cacheEntry struct {
	entries   []LeaderboardEntry
	expiresAt time.Time
}

// LeaderboardService serves read-only rankings. Results may be up to one cache
// expiration old.
type LeaderboardService struct {
	store     store.Store
	calc      *leveling.Calculator
	cache     *lru.Cache
	snapshots SnapshotCache
	ttl       time.Duration

	Now func() time.Time
}

// NewLeaderboardService builds the service. snapshots may be nil.
func NewLeaderboardService(st store.Store, calc *leveling.Calculator, snapshots SnapshotCache) *LeaderboardService {
	cache, _ := lru.New(config.LeaderboardCacheSize)
	return &LeaderboardService{
		store:     st,
		calc:      calc,
		cache:     cache,
		snapshots: snapshots,
		ttl:       config.LeaderboardCacheExpiration,
		Now:       time.Now,
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return config.DefaultLeaderboardLimit
	}
	return min(limit, config.MaxLeaderboardLimit)
}

func (s *LeaderboardService) TopByLevel(ctx context.Context, limit int) Leaderboard {
	return s.top(ctx, BoardLevel, clampLimit(limit))
}

func (s *LeaderboardService) TopByRebirth(ctx context.Context, limit int) Leaderboard {
	return s.top(ctx, BoardRebirth, clampLimit(limit))
}

func (s *LeaderboardService) top(ctx context.Context, kind string, limit int) Leaderboard {
	entries, err := s.load(ctx, kind, limit)
	if err != nil {
		slog.Error("Failed to load leaderboard",
			slog.String("type", "db"),
			slog.String("board", kind),
			slog.Any("error", err))
		return Leaderboard{Outcome: outcome.FromError(err, outcome.ReasonStoreUnavailable), Kind: kind}
	}
	return Leaderboard{Outcome: outcome.OK(), Kind: kind, Entries: entries}
}

func (s *LeaderboardService) load(ctx context.Context, kind string, limit int) ([]LeaderboardEntry, error) {
	key := fmt.Sprintf("leaderboard:%s:%d", kind, limit)

	if value, ok := s.cache.Get(key); ok {
		if entry, ok := value.(cacheEntry); ok && s.Now().Before(entry.expiresAt) {
			return entry.entries, nil
		}
		s.cache.Remove(key)
	}

	if s.snapshots != nil {
		entries, ok, err := s.snapshots.Get(ctx, key)
		if err != nil {
			slog.Warn("Leaderboard snapshot cache unavailable",
				slog.String("type", "db"),
				slog.String("key", key),
				slog.Any("error", err))
		} else if ok {
			s.remember(key, entries)
			return entries, nil
		}
	}

	var (
		rows []*models.UserProgression
		err  error
	)
	if kind == BoardRebirth {
		rows, err = s.store.TopByRebirth(ctx, limit)
	} else {
		rows, err = s.store.TopByLevel(ctx, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s leaderboard: %w", kind, err)
	}

	entries := make([]LeaderboardEntry, 0, len(rows))
	for i, p := range rows {
		entries = append(entries, LeaderboardEntry{
			Rank:         i + 1,
			UserID:       p.UserID,
			Level:        s.calc.LevelForExp(p.TotalExp),
			TotalExp:     p.TotalExp,
			RebirthCount: p.RebirthCount,
		})
	}

	s.remember(key, entries)
	if s.snapshots != nil {
		if err := s.snapshots.Set(ctx, key, entries, s.ttl); err != nil {
			slog.Warn("Failed to store leaderboard snapshot",
				slog.String("type", "db"),
				slog.String("key", key),
				slog.Any("error", err))
		}
	}
	return entries, nil
}

func (s *LeaderboardService) remember(key string, entries []LeaderboardEntry) {
	s.cache.Add(key, cacheEntry{entries: entries, expiresAt: s.Now().Add(s.ttl)})
}

// Warm loads the default pages of both boards.
func (s *LeaderboardService) Warm(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range []string{BoardLevel, BoardRebirth} {
		g.Go(func() error {
			_, err := s.load(gctx, kind, config.DefaultLeaderboardLimit)
			return err
		})
	}
	return g.Wait()
}
