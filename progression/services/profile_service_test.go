package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/gohye-progression/progression/outcome"
)

func TestGetProfile(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	profiles := NewProfileService(f.st, f.calc)

	empty := profiles.GetProfile(ctx, "u1")
	require.True(t, empty.Success)
	assert.Equal(t, 1, empty.Level)
	assert.Equal(t, WalletView{}, empty.Wallet)
	assert.Empty(t, empty.Achievements)

	require.True(t, f.tracker.Track(ctx, "u1", "rolls", 10).Success)

	p := profiles.GetProfile(ctx, "u1")
	require.True(t, p.Success, p.Message)
	assert.Equal(t, int64(10), p.Achievements["gacha_addict"])
	assert.Equal(t, f.calc.LevelForExp(p.TotalExp), p.Level)
	assert.Positive(t, p.Wallet.Coins)
}

func TestGetProfileStoreFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.st.FailOn("ListAchievements", errors.New("connection reset"))

	p := NewProfileService(f.st, f.calc).GetProfile(context.Background(), "u1")
	assert.False(t, p.Success)
	assert.Equal(t, outcome.ReasonStoreUnavailable, p.Reason)
}
