package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/database/models"
	"github.com/ellavondegurechaff/gohye-progression/progression/leveling"
	"github.com/ellavondegurechaff/gohye-progression/progression/outcome"
	"github.com/ellavondegurechaff/gohye-progression/progression/store/memstore"
)

type fakeSnapshots struct {
	mu      sync.Mutex
	entries map[string][]LeaderboardEntry
	gets    int
	sets    int
	err     error
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{entries: make(map[string][]LeaderboardEntry)}
}

func (f *fakeSnapshots) Get(ctx context.Context, key string) ([]LeaderboardEntry, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.err != nil {
		return nil, false, f.err
	}
	e, ok := f.entries[key]
	return e, ok, nil
}

func (f *fakeSnapshots) Set(ctx context.Context, key string, entries []LeaderboardEntry, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	f.entries[key] = entries
	return f.err
}

func newLeaderboard(t *testing.T, snapshots SnapshotCache) (*LeaderboardService, *memstore.Store, *leveling.Calculator) {
	t.Helper()
	calc := leveling.NewCalculator(config.DefaultTables())
	st := memstore.New()
	seed := []struct {
		id       string
		level    int
		rebirths int
	}{
		{"alice", 40, 0},
		{"bob", 12, 3},
		{"carol", 90, 1},
	}
	for _, s := range seed {
		st.SeedProgression(models.UserProgression{UserID: s.id, Level: s.level, TotalExp: calc.TotalExpForLevel(s.level), RebirthCount: s.rebirths})
	}
	return NewLeaderboardService(st, calc, snapshots), st, calc
}

func TestLeaderboard_TopByLevel(t *testing.T) {
	lb, _, _ := newLeaderboard(t, nil)

	board := lb.TopByLevel(context.Background(), 0)
	require.True(t, board.Success)
	assert.Equal(t, BoardLevel, board.Kind)
	require.Len(t, board.Entries, 3)
	assert.Equal(t, "carol", board.Entries[0].UserID)
	assert.Equal(t, 1, board.Entries[0].Rank)
	assert.Equal(t, 90, board.Entries[0].Level)
	assert.Equal(t, "bob", board.Entries[2].UserID)
	assert.Equal(t, 3, board.Entries[2].Rank)
}

func TestLeaderboard_TopByRebirth(t *testing.T) {
	lb, _, _ := newLeaderboard(t, nil)

	board := lb.TopByRebirth(context.Background(), 2)
	require.True(t, board.Success)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, "bob", board.Entries[0].UserID)
	assert.Equal(t, 3, board.Entries[0].RebirthCount)
	assert.Equal(t, "carol", board.Entries[1].UserID)
}

func TestLeaderboard_CachesUntilExpiry(t *testing.T) {
	lb, st, calc := newLeaderboard(t, nil)
	now := testNow
	lb.Now = func() time.Time { return now }
	ctx := context.Background()

	require.Len(t, lb.TopByLevel(ctx, 10).Entries, 3)

	st.SeedProgression(models.UserProgression{UserID: "dave", Level: 120, TotalExp: calc.TotalExpForLevel(120)})
	assert.Len(t, lb.TopByLevel(ctx, 10).Entries, 3)

	now = now.Add(config.LeaderboardCacheExpiration + time.Second)
	board := lb.TopByLevel(ctx, 10)
	require.Len(t, board.Entries, 4)
	assert.Equal(t, "dave", board.Entries[0].UserID)
}

func TestLeaderboard_SnapshotCache(t *testing.T) {
	snapshots := newFakeSnapshots()
	lb, _, _ := newLeaderboard(t, snapshots)
	ctx := context.Background()

	board := lb.TopByLevel(ctx, 500)
	require.True(t, board.Success)
	assert.Equal(t, 1, snapshots.gets)
	assert.Equal(t, 1, snapshots.sets)
	assert.Contains(t, snapshots.entries, "leaderboard:level:100")

	// a second process reads the shared snapshot without touching its store
	other := NewLeaderboardService(memstore.New(), leveling.NewCalculator(config.DefaultTables()), snapshots)
	shared := other.TopByLevel(ctx, config.MaxLeaderboardLimit)
	require.True(t, shared.Success)
	assert.Equal(t, board.Entries, shared.Entries)
}

func TestLeaderboard_SnapshotErrorsFallBackToStore(t *testing.T) {
	snapshots := newFakeSnapshots()
	snapshots.err = errors.New("connection refused")
	lb, _, _ := newLeaderboard(t, snapshots)

	board := lb.TopByLevel(context.Background(), 10)
	require.True(t, board.Success)
	assert.Len(t, board.Entries, 3)
}

func TestLeaderboard_StoreFailure(t *testing.T) {
	lb, st, _ := newLeaderboard(t, nil)
	st.FailOn("Top", errors.New("down"))

	board := lb.TopByRebirth(context.Background(), 10)
	assert.False(t, board.Success)
	assert.Equal(t, outcome.ReasonStoreUnavailable, board.Reason)
}

func TestLeaderboard_Warm(t *testing.T) {
	snapshots := newFakeSnapshots()
	lb, _, _ := newLeaderboard(t, snapshots)

	require.NoError(t, lb.Warm(context.Background()))
	assert.Equal(t, 2, snapshots.sets)
}
