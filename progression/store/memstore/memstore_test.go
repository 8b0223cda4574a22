package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/database/models"
	"github.com/ellavondegurechaff/gohye-progression/progression/store"
)

func TestRunInTx_RollsBackOnError(t *testing.T) {
	s := New()
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.RunInTx(ctx, func(ctx context.Context, q store.Queries) error {
		p, err := q.GetProgression(ctx, "u1")
		require.NoError(t, err)
		p.TotalExp = 500
		require.NoError(t, q.SaveProgression(ctx, p))
		require.NoError(t, q.CreditWallet(ctx, "u1", config.Reward{Coins: 10}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	d := s.Dump("u1")
	assert.Nil(t, d.Progression)
	assert.Zero(t, d.Wallet.Coins)
}

func TestRunInTx_CommitsAndSeesOwnWrites(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.RunInTx(ctx, func(ctx context.Context, q store.Queries) error {
		require.NoError(t, q.CreditWallet(ctx, "u1", config.Reward{Coins: 10, Gems: 2}))
		w, err := q.GetWallet(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, int64(10), w.Coins)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), s.Dump("u1").Wallet.Gems)
}

func TestFailOn(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.FailOn("ClearBoosts", store.ErrUnavailable)

	err := s.RunInTx(ctx, func(ctx context.Context, q store.Queries) error {
		return q.ClearBoosts(ctx, "u1")
	})
	assert.ErrorIs(t, err, store.ErrUnavailable)

	s.ClearFaults()
	err = s.RunInTx(ctx, func(ctx context.Context, q store.Queries) error {
		return q.ClearBoosts(ctx, "u1")
	})
	assert.NoError(t, err)
}

func TestMilestoneClaimConflict(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.RunInTx(ctx, func(ctx context.Context, q store.Queries) error {
		if err := q.InsertMilestoneClaim(ctx, &models.MilestoneClaim{UserID: "u1", Kind: models.MilestoneKindLevel, Threshold: 5}); err != nil {
			return err
		}
		return q.InsertMilestoneClaim(ctx, &models.MilestoneClaim{UserID: "u1", Kind: models.MilestoneKindLevel, Threshold: 5})
	})
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.Empty(t, s.Dump("u1").Claims)
}

func TestQuestProgressSaturates(t *testing.T) {
	s := New()
	ctx := context.Background()
	key := store.QuestKey{UserID: "u1", QuestID: "daily_roller", PeriodKey: "2024-01-01"}

	var first, second store.QuestUpdate
	err := s.RunInTx(ctx, func(ctx context.Context, q store.Queries) error {
		var err error
		if first, err = q.IncrementQuestProgress(ctx, key, config.QuestKindDaily, 10, 5); err != nil {
			return err
		}
		second, err = q.IncrementQuestProgress(ctx, key, config.QuestKindDaily, 1, 5)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, store.QuestUpdate{Progress: 5, Goal: 5, Completed: true, NewlyCompleted: true}, first)
	assert.Equal(t, store.QuestUpdate{Progress: 5, Goal: 5, Completed: true}, second)
}

func TestDeleteStaleQuestProgress(t *testing.T) {
	s := New()
	ctx := context.Background()

	var deleted int64
	err := s.RunInTx(ctx, func(ctx context.Context, q store.Queries) error {
		for _, period := range []string{"2024-01-01", "2024-01-02"} {
			key := store.QuestKey{UserID: "u1", QuestID: "q", PeriodKey: period}
			if _, err := q.IncrementQuestProgress(ctx, key, config.QuestKindDaily, 1, 5); err != nil {
				return err
			}
		}
		var err error
		deleted, err = q.DeleteStaleQuestProgress(ctx, []string{"2024-01-02"})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	require.Len(t, s.Dump("u1").Quests, 1)
	assert.Equal(t, "2024-01-02", s.Dump("u1").Quests[0].PeriodKey)
}

func TestTopByRebirthOrdering(t *testing.T) {
	s := New()
	s.SeedProgression(models.UserProgression{UserID: "a", Level: 50, RebirthCount: 1})
	s.SeedProgression(models.UserProgression{UserID: "b", Level: 10, RebirthCount: 3})
	s.SeedProgression(models.UserProgression{UserID: "c", Level: 90, RebirthCount: 1})

	top, err := s.TopByRebirth(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "b", top[0].UserID)
	assert.Equal(t, "c", top[1].UserID)
}
