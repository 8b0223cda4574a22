package services

import (
	"context"
	"log/slog"

	"github.com/ellavondegurechaff/gohye-progression/progression/leveling"
	"github.com/ellavondegurechaff/gohye-progression/progression/outcome"
	"github.com/ellavondegurechaff/gohye-progression/progression/store"
)

type WalletView struct {
	Coins   int64 `json:"coins"`
	Gems    int64 `json:"gems"`
	Tickets int64 `json:"tickets"`
	Tokens  int64 `json:"tokens"`
}

// Profile is a read-only snapshot of one user's progression, balances and
// achievement counters.
type Profile struct {
	outcome.Outcome
	UserID       string           `json:"user_id"`
	Level        int              `json:"level"`
	TotalExp     int64            `json:"total_exp"`
	RebirthCount int              `json:"rebirth_count"`
	Wallet       WalletView       `json:"wallet"`
	Achievements map[string]int64 `json:"achievements"`
}

type ProfileService struct {
	store store.Store
	calc  *leveling.Calculator
}

func NewProfileService(st store.Store, calc *leveling.Calculator) *ProfileService {
	return &ProfileService{store: st, calc: calc}
}

// GetProfile reads without taking the user lock; all rows come from one view.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) Profile {
	profile := Profile{UserID: userID, Achievements: map[string]int64{}}
	err := s.store.View(ctx, func(ctx context.Context, q store.Queries) error {
		p, err := q.GetProgression(ctx, userID)
		if err != nil {
			return err
		}
		profile.Level = s.calc.LevelForExp(p.TotalExp)
		profile.TotalExp = p.TotalExp
		profile.RebirthCount = p.RebirthCount

		w, err := q.GetWallet(ctx, userID)
		if err != nil {
			return err
		}
		profile.Wallet = WalletView{Coins: w.Coins, Gems: w.Gems, Tickets: w.Tickets, Tokens: w.Tokens}

		counters, err := q.ListAchievements(ctx, userID)
		if err != nil {
			return err
		}
		for _, c := range counters {
			profile.Achievements[c.AchievementID] = c.Value
		}
		return nil
	})
	if err != nil {
		slog.Error("Failed to load profile",
			slog.String("type", "profile"),
			slog.String("user_id", userID),
			slog.Any("error", err))
		return Profile{UserID: userID, Outcome: outcome.FromError(err, outcome.ReasonStoreUnavailable)}
	}
	profile.Outcome = outcome.OK()
	return profile
}
