package services

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/gohye-progression/progression/database/models"
	"github.com/ellavondegurechaff/gohye-progression/progression/outcome"
)

func TestTrack_FansOutToEveryBranch(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	res := f.tracker.Track(ctx, "u1", "rolls", 10)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, []string{"d_rolls"}, res.NewlyCompleted)

	d := f.st.Dump("u1")
	progress, completed, _, found := questRow(d, "d_rolls")
	require.True(t, found)
	assert.Equal(t, int64(5), progress)
	assert.True(t, completed)

	assert.Equal(t, int64(10), d.Counters[models.TrackingCounterKey("rolls")])
	assert.Equal(t, int64(10), d.Achievements["gacha_addict"])
	assert.Equal(t, int64(10), res.Achievements["gacha_addict"])

	require.NotNil(t, res.MainQuest)
	assert.Len(t, res.MainQuest.Completed, 2)
}

func TestTrack_DerivedQuestsCompletedDoesNotRecurseTwice(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	res := f.tracker.Track(ctx, "u1", "rolls", 5)
	require.True(t, res.Success)
	require.NotNil(t, res.Derived)
	assert.Equal(t, []string{"w_quests"}, res.Derived.NewlyCompleted)
	assert.Nil(t, res.Derived.Derived)

	d := f.st.Dump("u1")
	assert.Equal(t, int64(1), d.Achievements["quest_master"])
	_, completed, _, found := questRow(d, "w_quests")
	require.True(t, found)
	assert.True(t, completed)
}

func TestTrack_SaturatesAndCompletesOnce(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	first := f.tracker.Track(ctx, "u1", "harvests", 1)
	assert.Empty(t, first.NewlyCompleted)

	second := f.tracker.Track(ctx, "u1", "harvests", 4)
	assert.Equal(t, []string{"d_harvest"}, second.NewlyCompleted)

	third := f.tracker.Track(ctx, "u1", "harvests", 1)
	assert.Empty(t, third.NewlyCompleted)
	assert.Nil(t, third.Derived)

	progress, completed, _, _ := questRow(f.st.Dump("u1"), "d_harvest")
	assert.Equal(t, int64(2), progress)
	assert.True(t, completed)
	assert.Equal(t, int64(6), f.st.Dump("u1").Achievements["farmer"])
}

func TestTrack_HugeIncrementSaturates(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.True(t, f.tracker.Track(ctx, "u1", "rolls", 3).Success)
	res := f.tracker.Track(ctx, "u1", "rolls", math.MaxInt64)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, []string{"d_rolls"}, res.NewlyCompleted)

	d := f.st.Dump("u1")
	progress, completed, _, found := questRow(d, "d_rolls")
	require.True(t, found)
	assert.Equal(t, int64(5), progress)
	assert.True(t, completed)

	assert.Equal(t, int64(math.MaxInt64), d.Achievements["gacha_addict"])
	assert.Equal(t, int64(math.MaxInt64), d.Counters[models.TrackingCounterKey("rolls")])
}

func TestTrack_IgnoresNonPositiveIncrement(t *testing.T) {
	f := newFixture(t, nil)

	for _, inc := range []int64{0, -3} {
		res := f.tracker.Track(context.Background(), "u1", "rolls", inc)
		assert.True(t, res.Success)
	}

	d := f.st.Dump("u1")
	assert.Empty(t, d.Quests)
	assert.Empty(t, d.Achievements)
	assert.Empty(t, d.Counters)
}

func TestTrack_BranchFailureIsIsolated(t *testing.T) {
	f := newFixture(t, nil)
	f.st.FailOn("IncrementAchievement", errors.New("disk full"))

	res := f.tracker.Track(context.Background(), "u1", "rolls", 10)
	assert.False(t, res.Success)
	assert.Equal(t, outcome.ReasonStoreUnavailable, res.Reason)
	assert.Equal(t, []string{"d_rolls"}, res.NewlyCompleted)

	d := f.st.Dump("u1")
	assert.Empty(t, d.Achievements)
	progress, _, _, _ := questRow(d, "d_rolls")
	assert.Equal(t, int64(5), progress)
	assert.Equal(t, int64(10), d.Counters[models.TrackingCounterKey("rolls")])
}

func TestTrack_MainQuestFailureIsIsolated(t *testing.T) {
	f := newFixture(t, nil)
	f.st.FailOn("AddMainQuestCounter", errors.New("boom"))

	res := f.tracker.Track(context.Background(), "u1", "rolls", 3)
	assert.False(t, res.Success)
	assert.Equal(t, outcome.ReasonTransactionFailed, res.Reason)

	d := f.st.Dump("u1")
	assert.Equal(t, int64(3), d.Achievements["gacha_addict"])
	progress, _, _, _ := questRow(d, "d_rolls")
	assert.Equal(t, int64(3), progress)
	assert.Empty(t, d.Counters)
}

func TestTrack_ConcurrentEventsLoseNothing(t *testing.T) {
	f := newFixture(t, nil)
	f.tables.DailyQuestPool[0].Goal = 100

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.tracker.Track(context.Background(), "u1", "rolls", 1)
		}()
	}
	wg.Wait()

	d := f.st.Dump("u1")
	progress, _, _, _ := questRow(d, "d_rolls")
	assert.Equal(t, int64(20), progress)
	assert.Equal(t, int64(20), d.Achievements["gacha_addict"])
	// the counter stops moving once the rolls quest is done
	assert.Equal(t, int64(10), d.Counters[models.TrackingCounterKey("rolls")])
}

func TestTrackCommand(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	res := f.tracker.TrackCommand(ctx, "u1", "profile")
	require.True(t, res.Success)

	d := f.st.Dump("u1")
	assert.Equal(t, int64(1), d.Achievements["regular"])
	// quest 1 tracks rolls, so the command is not counted yet
	assert.Zero(t, d.Counters[models.CommandCounterKey("profile")])
}

func TestUpdateQuestProgressDirect(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	res := f.tracker.UpdateQuestProgressDirect(ctx, "u1", "rolls", 3, ScopeDaily)
	require.True(t, res.Success)
	assert.Empty(t, res.NewlyCompleted)

	res = f.tracker.UpdateQuestProgressDirect(ctx, "u1", "rolls", 2, ScopeDaily)
	require.True(t, res.Success)
	progress, _, _, _ := questRow(f.st.Dump("u1"), "d_rolls")
	assert.Equal(t, int64(2), progress)

	res = f.tracker.UpdateQuestProgressDirect(ctx, "u1", "rolls", 50, ScopeAll)
	require.True(t, res.Success)
	assert.Equal(t, []string{"d_rolls"}, res.NewlyCompleted)
	require.NotNil(t, res.Derived)

	d := f.st.Dump("u1")
	progress, completed, _, _ := questRow(d, "d_rolls")
	assert.Equal(t, int64(5), progress)
	assert.True(t, completed)
	// gauges never feed achievements or main quests
	assert.Zero(t, d.Achievements["gacha_addict"])

	res = f.tracker.UpdateQuestProgressDirect(ctx, "u1", "rolls", -1, ScopeAll)
	assert.Equal(t, outcome.ReasonInvalidAmount, res.Reason)
}
