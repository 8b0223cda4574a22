package rebirth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/database/models"
	"github.com/ellavondegurechaff/gohye-progression/progression/leveling"
	"github.com/ellavondegurechaff/gohye-progression/progression/outcome"
	"github.com/ellavondegurechaff/gohye-progression/progression/rebirth/mock"
	"github.com/ellavondegurechaff/gohye-progression/progression/store"
	"github.com/ellavondegurechaff/gohye-progression/progression/store/memstore"
	"github.com/ellavondegurechaff/gohye-progression/progression/usermutex"
)

func newService(t *testing.T, listener RebirthListener) (*Service, *memstore.Store, *leveling.Calculator) {
	t.Helper()
	tables := config.DefaultTables()
	calc := leveling.NewCalculator(tables)
	st := memstore.New()
	return NewService(st, usermutex.New(time.Second), calc, tables, listener), st, calc
}

func seedRich(st *memstore.Store, calc *leveling.Calculator, userID string, level, rebirths int) {
	st.SeedProgression(models.UserProgression{
		UserID:       userID,
		TotalExp:     calc.TotalExpForLevel(level),
		Level:        level,
		RebirthCount: rebirths,
	})
	st.Seed(userID, memstore.Holdings{
		Wallet:      &models.Wallet{Coins: 5000, Gems: 300, Tickets: 7, Tokens: 2},
		Items:       []models.UserItem{{ItemID: "golden_rod", Quantity: 3}, {ItemID: "old_boot", Quantity: 1}},
		Production:  []models.ProductionAssignment{{Slot: 1, ItemID: "moon_seed"}},
		Structures:  []models.UserStructure{{StructureID: "barn", Level: 4}},
		Boosts:      []models.ActiveBoost{{BoostID: "exp_x2", Multiplier: 2, ExpiresAt: time.Now().Add(time.Hour)}},
		Listings:    []models.MarketListing{{ItemID: "old_boot", Price: 10}},
		Companions:  []models.Companion{{CompanionID: "fox"}, {CompanionID: "egg", Incubating: true}},
		Consumables: []models.Consumable{{ItemID: "potion", Quantity: 4}},
		Trades: []models.Trade{
			{OffererID: userID, TargetID: "other", Status: models.TradeStatusPending},
			{OffererID: "other", TargetID: userID, Status: models.TradeStatusAccepted},
		},
	})
}

func TestService_GetStatus(t *testing.T) {
	s, st, calc := newService(t, nil)
	seedRich(st, calc, "u1", 100, 2)

	status := s.GetStatus(context.Background(), "u1")
	require.True(t, status.Success)
	assert.True(t, status.CanRebirth)
	assert.Equal(t, 2, status.RebirthCount)
	assert.InDelta(t, 1.2, status.Multiplier, 1e-9)
	assert.InDelta(t, 1.3, status.NextMultiplier, 1e-9)
}

func TestService_PerformRebirthNotEligible(t *testing.T) {
	s, st, calc := newService(t, nil)
	seedRich(st, calc, "u1", 80, 0)
	before := st.Dump("u1")

	res := s.PerformRebirth(context.Background(), "u1", "golden_rod")

	assert.Equal(t, outcome.ReasonNotEligible, res.Reason)
	assert.Equal(t, before, st.Dump("u1"))
}

func TestService_PerformRebirth(t *testing.T) {
	ctrl := gomock.NewController(t)
	listener := mock.NewMockRebirthListener(ctrl)
	listener.EXPECT().CheckRebirthQuest(gomock.Any(), "u1", 1).Times(1)

	s, st, calc := newService(t, listener)
	seedRich(st, calc, "u1", 120, 0)
	ctx := context.Background()

	require.NoError(t, st.RunInTx(ctx, func(ctx context.Context, q store.Queries) error {
		if _, err := q.IncrementAchievement(ctx, "u1", "gacha_addict", 40); err != nil {
			return err
		}
		if _, err := q.AddMainQuestCounter(ctx, "u1", models.TrackingCounterKey("rolls"), 40); err != nil {
			return err
		}
		_, err := q.IncrementQuestProgress(ctx, store.QuestKey{UserID: "u1", QuestID: "daily_roller", PeriodKey: "2024-01-01"}, config.QuestKindDaily, 2, 5)
		return err
	}))

	res := s.PerformRebirth(ctx, "u1", "moon_seed")
	require.True(t, res.Success, res.Message)
	assert.Equal(t, 0, res.OldRebirthCount)
	assert.Equal(t, 1, res.NewRebirthCount)
	assert.Greater(t, res.Multiplier, s.Multiplier(0))
	assert.Equal(t, int64(1), res.CancelledTrades)
	assert.NotEmpty(t, res.RecordID)

	d := st.Dump("u1")
	require.NotNil(t, d.Progression)
	assert.Equal(t, 1, d.Progression.RebirthCount)
	assert.Equal(t, int64(0), d.Progression.TotalExp)
	assert.Equal(t, 1, d.Progression.Level)
	assert.NotNil(t, d.Progression.LastRebirthAt)
	assert.Zero(t, d.Wallet.Coins)
	assert.Zero(t, d.Wallet.Tokens)

	require.Len(t, d.Holdings.Items, 1)
	assert.Equal(t, "moon_seed", d.Holdings.Items[0].ItemID)
	assert.Empty(t, d.Holdings.Production)
	require.Len(t, d.Holdings.Structures, 1)
	assert.Equal(t, 1, d.Holdings.Structures[0].Level)
	assert.Empty(t, d.Holdings.Boosts)
	assert.Empty(t, d.Holdings.Listings)
	assert.Empty(t, d.Holdings.Companions)
	assert.Empty(t, d.Holdings.Consumables)
	assert.Empty(t, d.Quests)
	assert.Equal(t, models.TradeStatusCancelled, d.Holdings.Trades[0].Status)
	assert.Equal(t, models.TradeStatusAccepted, d.Holdings.Trades[1].Status)
	require.Len(t, d.Rebirths, 1)
	assert.Equal(t, "moon_seed", d.Rebirths[0].KeptItemID)

	assert.Equal(t, int64(40), d.Achievements["gacha_addict"])
	assert.Equal(t, int64(40), d.Counters[models.TrackingCounterKey("rolls")])
}

func TestService_PerformRebirthPrefersInventory(t *testing.T) {
	s, st, calc := newService(t, nil)
	seedRich(st, calc, "u1", 100, 0)
	st.Seed("u1", memstore.Holdings{
		Items:      []models.UserItem{{ItemID: "twin", Quantity: 5}},
		Production: []models.ProductionAssignment{{Slot: 2, ItemID: "twin"}},
	})

	res := s.PerformRebirth(context.Background(), "u1", "twin")
	require.True(t, res.Success, res.Message)

	items := st.Dump("u1").Holdings.Items
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].Quantity)
}

func TestService_PerformRebirthKeepsNothing(t *testing.T) {
	s, st, calc := newService(t, nil)
	seedRich(st, calc, "u1", 100, 0)

	res := s.PerformRebirth(context.Background(), "u1", "")
	require.True(t, res.Success)
	assert.Empty(t, st.Dump("u1").Holdings.Items)
}

func TestService_PerformRebirthUnknownItem(t *testing.T) {
	s, st, calc := newService(t, nil)
	seedRich(st, calc, "u1", 100, 0)
	before := st.Dump("u1")

	res := s.PerformRebirth(context.Background(), "u1", "nope")
	assert.Equal(t, outcome.ReasonItemNotFound, res.Reason)
	assert.Equal(t, before, st.Dump("u1"))
}

func TestService_PerformRebirthAtomic(t *testing.T) {
	for _, op := range []string{"ClearBoosts", "CancelPendingTrades", "InsertRebirthRecord", "InsertItem"} {
		t.Run(op, func(t *testing.T) {
			s, st, calc := newService(t, nil)
			seedRich(st, calc, "u1", 110, 3)
			before := st.Dump("u1")

			st.FailOn(op, store.ErrUnavailable)
			res := s.PerformRebirth(context.Background(), "u1", "golden_rod")

			assert.Equal(t, outcome.ReasonTransactionFailed, res.Reason)
			assert.Equal(t, before, st.Dump("u1"))
		})
	}
}

func TestService_RebirthMilestones(t *testing.T) {
	s, st, calc := newService(t, nil)
	seedRich(st, calc, "u1", 10, 3)
	ctx := context.Background()

	res := s.ClaimRebirthMilestone(ctx, "u1", 5)
	assert.Equal(t, outcome.ReasonRebirthNotReached, res.Reason)

	res = s.ClaimRebirthMilestone(ctx, "u1", 2)
	assert.Equal(t, outcome.ReasonInvalidMilestone, res.Reason)

	res = s.ClaimRebirthMilestone(ctx, "u1", 1)
	require.True(t, res.Success)
	assert.Equal(t, outcome.ReasonAlreadyClaimed, s.ClaimRebirthMilestone(ctx, "u1", 1).Reason)

	all := s.ClaimAllRebirthMilestones(ctx, "u1")
	require.True(t, all.Success)
	require.Len(t, all.Claimed, 1)
	assert.Equal(t, 3, all.Claimed[0].Threshold)

	list := s.ListRebirthMilestones(ctx, "u1")
	require.True(t, list.Success)
	assert.Len(t, list.Milestones, len(config.RebirthMilestones))
}
