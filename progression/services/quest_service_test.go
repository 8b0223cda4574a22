package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/leveling/mock"
)

func TestPeriodKeys(t *testing.T) {
	tests := []struct {
		name   string
		t      time.Time
		daily  string
		weekly string
	}{
		{"saturday", testNow, "2024-03-09", "2024-W10"},
		{"iso year rollover", time.Date(2024, time.December, 30, 1, 0, 0, 0, time.UTC), "2024-12-30", "2025-W01"},
		{"converted to utc", time.Date(2024, time.March, 10, 1, 0, 0, 0, time.FixedZone("UTC+3", 3*3600)), "2024-03-09", "2024-W10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.daily, DailyPeriodKey(tt.t))
			assert.Equal(t, tt.weekly, WeeklyPeriodKey(tt.t))
			assert.Equal(t, tt.weekly, PeriodKey(config.QuestKindWeekly, tt.t))
		})
	}
}

func TestNextReset(t *testing.T) {
	assert.Equal(t, time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), NextReset(config.QuestKindDaily, testNow))
	assert.Equal(t, time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), NextReset(config.QuestKindWeekly, testNow))

	monday := time.Date(2024, time.March, 11, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC), NextReset(config.QuestKindWeekly, monday))
}

func TestRotate(t *testing.T) {
	pool := config.DailyQuestPool

	a := rotate(pool, 3, "2024-03-09")
	b := rotate(pool, 3, "2024-03-09")
	require.Len(t, a, 3)
	assert.Equal(t, a, b)

	index := make(map[string]int, len(pool))
	for i, q := range pool {
		index[q.ID] = i
	}
	for i := 1; i < len(a); i++ {
		assert.Less(t, index[a[i-1].ID], index[a[i].ID])
	}

	assert.Len(t, rotate(pool, len(pool)+2, "2024-03-09"), len(pool))
	assert.Empty(t, rotate(pool, 0, "2024-03-09"))
}

func TestActiveQuests_SameForEveryCallInPeriod(t *testing.T) {
	f := newFixture(t, nil)
	f.tables.DailyQuestPool = config.DailyQuestPool
	f.tables.DailyQuestsPerPeriod = 3

	first := f.quests.ActiveQuests(config.QuestKindDaily, testNow)
	later := f.quests.ActiveQuests(config.QuestKindDaily, testNow.Add(6*time.Hour))
	assert.Len(t, first, 3)
	assert.Equal(t, first, later)
}

func TestGetQuestStatus(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.tracker.Track(ctx, "u1", "rolls", 5)
	f.tracker.Track(ctx, "u1", "harvests", 1)

	status := f.quests.GetQuestStatus(ctx, "u1")
	require.True(t, status.Success)
	require.Len(t, status.Daily, 2)
	require.Len(t, status.Weekly, 1)

	rolls := status.Daily[0]
	assert.Equal(t, "d_rolls", rolls.ID)
	assert.Equal(t, "2024-03-09", rolls.PeriodKey)
	assert.True(t, rolls.Completed)
	assert.InDelta(t, 100, rolls.Percentage, 0.001)

	harvest := status.Daily[1]
	assert.Equal(t, int64(1), harvest.Progress)
	assert.Equal(t, int64(2), harvest.Goal)
	assert.False(t, harvest.Completed)

	assert.True(t, status.Weekly[0].Completed)
	assert.Equal(t, "2024-W10", status.Weekly[0].PeriodKey)
	assert.Equal(t, 2, status.Unclaimed)
	assert.Equal(t, time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), status.DailyResetAt)
}

func TestClaimQuestRewards(t *testing.T) {
	ctrl := gomock.NewController(t)
	listener := mock.NewMockLevelListener(ctrl)
	f := newFixture(t, listener)
	ctx := context.Background()

	f.tracker.Track(ctx, "u1", "rolls", 5)

	listener.EXPECT().CheckLevelQuest(gomock.Any(), "u1", 2).Times(1)
	res := f.quests.ClaimQuestRewards(ctx, "u1")
	require.True(t, res.Success, res.Message)
	assert.ElementsMatch(t, []string{"d_rolls", "w_quests"}, res.Claimed)
	assert.Equal(t, config.Reward{Coins: 100, Gems: 10, Exp: 150}, res.Reward)
	assert.Equal(t, 2, res.Exp.NewLevel)

	d := f.st.Dump("u1")
	assert.Equal(t, int64(100), d.Wallet.Coins)
	assert.Equal(t, int64(10), d.Wallet.Gems)
	assert.Equal(t, int64(150), d.Progression.TotalExp)
	_, _, claimed, _ := questRow(d, "d_rolls")
	assert.True(t, claimed)

	again := f.quests.ClaimQuestRewards(ctx, "u1")
	assert.True(t, again.Success)
	assert.Empty(t, again.Claimed)
	assert.Equal(t, "no completed quests to claim", again.Message)
}

func TestClaimQuestRewards_SkipsIncomplete(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.tracker.Track(ctx, "u1", "harvests", 1)

	res := f.quests.ClaimQuestRewards(ctx, "u1")
	assert.True(t, res.Success)
	assert.Empty(t, res.Claimed)
	assert.Zero(t, f.st.Dump("u1").Wallet.Coins)
}

func TestCleanupExpired(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.quests.Now = func() time.Time { return testNow.AddDate(0, 0, -1) }
	f.tracker.Track(ctx, "u1", "harvests", 1)

	f.quests.Now = func() time.Time { return testNow }
	f.tracker.Track(ctx, "u1", "harvests", 1)
	require.Len(t, f.st.Dump("u1").Quests, 2)

	deleted, err := f.quests.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	d := f.st.Dump("u1")
	require.Len(t, d.Quests, 1)
	assert.Equal(t, "2024-03-09", d.Quests[0].PeriodKey)

	deleted, err = f.quests.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
