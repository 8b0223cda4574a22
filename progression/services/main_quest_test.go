package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/database/models"
	"github.com/ellavondegurechaff/gohye-progression/progression/outcome"
)

func TestExpReward(t *testing.T) {
	tests := []struct {
		difficulty string
		base       int64
		want       int64
	}{
		{config.DifficultyEasy, 100, 100},
		{config.DifficultyNormal, 80, 100},
		{config.DifficultyHard, 10, 15},
		{config.DifficultyExpert, 33, 66},
		{"unknown", 70, 70},
		{config.DifficultyNormal, 3, 3},
	}
	for _, tt := range tests {
		t.Run(tt.difficulty, func(t *testing.T) {
			q := config.MainQuest{Difficulty: tt.difficulty, Reward: config.Reward{Exp: tt.base}}
			assert.Equal(t, tt.want, ExpReward(q))
		})
	}
}

func TestMainQuest_CompletesAndCarriesOver(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	res := f.engine.UpdateTracking(ctx, "u1", "rolls", 12)
	require.True(t, res.Success)
	require.Len(t, res.Completed, 2)
	assert.Equal(t, 1, res.Completed[0].QuestID)
	assert.Equal(t, 2, res.Completed[1].QuestID)
	assert.Equal(t, int64(100), res.Completed[1].Reward.Exp)
	assert.Equal(t, 3, res.CurrentQuestID)
	assert.False(t, res.AllComplete)
	assert.Equal(t, 1, res.Exp.OldLevel)
	assert.Equal(t, 2, res.Exp.NewLevel)

	d := f.st.Dump("u1")
	assert.Equal(t, 3, d.MainPointer)
	assert.Len(t, d.Completions, 2)
	assert.Equal(t, int64(200), d.Progression.TotalExp)
	assert.Equal(t, int64(50), d.Wallet.Coins)
	assert.Equal(t, int64(5), d.Wallet.Gems)
	// counters survive completion
	assert.Equal(t, int64(12), d.Counters[models.TrackingCounterKey("rolls")])
}

func TestMainQuest_CountsOnlyTheCurrentQuest(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	res := f.engine.TrackCommand(ctx, "u1", "profile")
	require.True(t, res.Success)
	assert.Empty(t, res.Completed)
	assert.Zero(t, f.st.Dump("u1").Counters[models.CommandCounterKey("profile")])

	f.engine.UpdateTracking(ctx, "u1", "rolls", 10)
	require.Equal(t, 3, f.st.Dump("u1").MainPointer)

	res = f.engine.TrackCommand(ctx, "u1", "profile")
	assert.Empty(t, res.Completed)
	res = f.engine.TrackCommand(ctx, "u1", "profile")
	require.Len(t, res.Completed, 1)
	assert.Equal(t, 3, res.Completed[0].QuestID)
	assert.Equal(t, 4, res.CurrentQuestID)
}

func TestMainQuest_RebirthAndTerminalState(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.engine.UpdateTracking(ctx, "u1", "rolls", 10)
	f.engine.TrackCommand(ctx, "u1", "profile")
	f.engine.TrackCommand(ctx, "u1", "profile")

	f.engine.CheckRebirthQuest(ctx, "u1", 0)
	require.Equal(t, 4, f.st.Dump("u1").MainPointer)

	p := *f.st.Dump("u1").Progression
	p.RebirthCount = 1
	f.st.SeedProgression(p)

	f.engine.CheckRebirthQuest(ctx, "u1", 1)
	d := f.st.Dump("u1")
	assert.Equal(t, 5, d.MainPointer)
	assert.Len(t, d.Completions, 4)

	status := f.engine.GetCurrentQuestProgress(ctx, "u1")
	require.True(t, status.Success)
	assert.True(t, status.AllComplete)
	assert.Nil(t, status.Quest)
	assert.Equal(t, []int{1, 2, 3, 4}, status.Completed)

	res := f.engine.UpdateTracking(ctx, "u1", "rolls", 5)
	require.True(t, res.Success)
	assert.True(t, res.AllComplete)
	assert.Empty(t, res.Completed)
	assert.Equal(t, int64(10), f.st.Dump("u1").Counters[models.TrackingCounterKey("rolls")])
}

func TestMainQuest_LevelQuestFromExternalExp(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	f.tables.MainQuests[0] = config.MainQuest{ID: 1, Name: "Level", Difficulty: config.DifficultyEasy,
		Requirement: config.MainQuestRequirement{Kind: config.RequirementLevel, Count: 3}}

	f.st.SeedProgression(models.UserProgression{UserID: "u1", TotalExp: f.calc.TotalExpForLevel(3), Level: 3})
	f.engine.CheckLevelQuest(ctx, "u1", 3)

	// quest 2 needs level 2, already satisfied
	assert.Equal(t, 3, f.st.Dump("u1").MainPointer)
}

func TestMainQuest_GetCurrentQuestProgress(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	status := f.engine.GetCurrentQuestProgress(ctx, "u1")
	require.True(t, status.Success)
	assert.Equal(t, 1, status.CurrentQuestID)
	require.NotNil(t, status.Quest)
	assert.Equal(t, "Roll", status.Quest.Name)
	assert.Equal(t, int64(0), status.Progress)
	assert.Equal(t, int64(10), status.Required)
	assert.Equal(t, 4, status.TotalQuests)

	f.engine.UpdateTracking(ctx, "u1", "rolls", 4)
	status = f.engine.GetCurrentQuestProgress(ctx, "u1")
	assert.Equal(t, int64(4), status.Progress)
	assert.Empty(t, status.Completed)
}

func TestMainQuest_FailureRollsBack(t *testing.T) {
	f := newFixture(t, nil)
	f.st.FailOn("CreditWallet", errors.New("boom"))

	res := f.engine.UpdateTracking(context.Background(), "u1", "rolls", 10)
	assert.False(t, res.Success)
	assert.Equal(t, outcome.ReasonTransactionFailed, res.Reason)

	d := f.st.Dump("u1")
	assert.Zero(t, d.MainPointer)
	assert.Empty(t, d.Completions)
	assert.Empty(t, d.Counters)
}
