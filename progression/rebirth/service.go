package rebirth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/database/models"
	"github.com/ellavondegurechaff/gohye-progression/progression/leveling"
	"github.com/ellavondegurechaff/gohye-progression/progression/outcome"
	"github.com/ellavondegurechaff/gohye-progression/progression/store"
	"github.com/ellavondegurechaff/gohye-progression/progression/usermutex"
)

type Service struct {
	store    store.Store
	locks    *usermutex.UserMutex
	calc     *leveling.Calculator
	tables   *config.Tables
	listener RebirthListener

	// Now stamps rebirths. Defaults to time.Now.
	Now func() time.Time
}

// NewService wires the rebirth service. listener may be nil.
func NewService(st store.Store, locks *usermutex.UserMutex, calc *leveling.Calculator, tables *config.Tables, listener RebirthListener) *Service {
	return &Service{
		store:    st,
		locks:    locks,
		calc:     calc,
		tables:   tables,
		listener: listener,
		Now:      time.Now,
	}
}

// Multiplier is the permanent economy bonus after n rebirths.
func (s *Service) Multiplier(n int) float64 {
	return 1 + float64(n)*s.tables.PerRebirthIncrement
}

func (s *Service) GetStatus(ctx context.Context, userID string) Status {
	var p *models.UserProgression
	err := s.store.View(ctx, func(ctx context.Context, q store.Queries) error {
		var err error
		p, err = q.GetProgression(ctx, userID)
		return err
	})
	if err != nil {
		slog.Error("Failed to load rebirth status",
			slog.String("type", "rebirth"),
			slog.String("user_id", userID),
			slog.Any("error", err))
		return Status{Outcome: outcome.FromError(err, outcome.ReasonStoreUnavailable)}
	}

	level := s.calc.LevelForExp(p.TotalExp)
	return Status{
		Outcome:        outcome.OK(),
		RebirthCount:   p.RebirthCount,
		Level:          level,
		RequiredLevel:  s.tables.RebirthLevelRequirement,
		CanRebirth:     level >= s.tables.RebirthLevelRequirement,
		Multiplier:     s.Multiplier(p.RebirthCount),
		NextMultiplier: s.Multiplier(p.RebirthCount + 1),
	}
}

// PerformRebirth resets the user's economy in one transaction and keeps at most
// one item. Achievement counters and main quest progress survive.
func (s *Service) PerformRebirth(ctx context.Context, userID, keepItemID string) Result {
	var result Result
	err := s.locks.WithLock(ctx, userID, func(ctx context.Context) error {
		var p *models.UserProgression
		var kept *models.UserItem
		err := s.store.View(ctx, func(ctx context.Context, q store.Queries) error {
			var err error
			if p, err = q.GetProgression(ctx, userID); err != nil {
				return fmt.Errorf("failed to load progression: %w", err)
			}
			if level := s.calc.LevelForExp(p.TotalExp); level < s.tables.RebirthLevelRequirement {
				return outcome.Errorf(outcome.ReasonNotEligible,
					fmt.Sprintf("level %d required, currently %d", s.tables.RebirthLevelRequirement, level))
			}
			kept, err = s.resolveKeptItem(ctx, q, userID, keepItemID)
			return err
		})
		if err != nil {
			return err
		}

		now := s.Now()
		newCount := p.RebirthCount + 1
		record := &models.RebirthRecord{
			ID:           uuid.NewString(),
			UserID:       userID,
			RebirthCount: newCount,
			KeptItemID:   keepItemID,
			Multiplier:   s.Multiplier(newCount),
			CreatedAt:    now,
		}

		var cancelled int64
		err = s.store.RunInTx(ctx, func(ctx context.Context, q store.Queries) error {
			var err error
			cancelled, err = s.reset(ctx, q, p, kept, record)
			return err
		})
		if err != nil {
			return outcome.Errorf(outcome.ReasonTransactionFailed, err.Error())
		}

		result = Result{
			Outcome:         outcome.OK(),
			RecordID:        record.ID,
			OldRebirthCount: p.RebirthCount,
			NewRebirthCount: newCount,
			Multiplier:      record.Multiplier,
			KeptItemID:      keepItemID,
			CancelledTrades: cancelled,
		}
		return nil
	})
	if err != nil {
		out := outcome.FromError(err, outcome.ReasonTransactionFailed)
		level := slog.LevelDebug
		if out.Reason == outcome.ReasonTransactionFailed || !outcome.IsValidation(err) {
			level = slog.LevelError
		}
		slog.Log(ctx, level, "Rebirth not performed",
			slog.String("type", "rebirth"),
			slog.String("user_id", userID),
			slog.String("reason", string(out.Reason)),
			slog.Any("error", err))
		return Result{Outcome: out}
	}

	slog.Info("User rebirthed",
		slog.String("type", "rebirth"),
		slog.String("user_id", userID),
		slog.Int("rebirth_count", result.NewRebirthCount),
		slog.Float64("multiplier", result.Multiplier))

	if s.listener != nil {
		s.listener.CheckRebirthQuest(ctx, userID, result.NewRebirthCount)
	}
	return result
}

// resolveKeptItem prefers the primary inventory over production slots. An
// empty id keeps nothing.
func (s *Service) resolveKeptItem(ctx context.Context, q store.Queries, userID, itemID string) (*models.UserItem, error) {
	if itemID == "" {
		return nil, nil
	}

	item, err := q.FindInventoryItem(ctx, userID, itemID)
	if err == nil {
		return &models.UserItem{UserID: userID, ItemID: item.ItemID, Quantity: 1}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up inventory item: %w", err)
	}

	assigned, err := q.FindProductionItem(ctx, userID, itemID)
	if err == nil {
		return &models.UserItem{UserID: userID, ItemID: assigned.ItemID, Quantity: 1}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up production item: %w", err)
	}
	return nil, outcome.Errorf(outcome.ReasonItemNotFound, fmt.Sprintf("item %q is not held", itemID))
}

func (s *Service) reset(ctx context.Context, q store.Queries, p *models.UserProgression, kept *models.UserItem, record *models.RebirthRecord) (int64, error) {
	userID := p.UserID

	current, err := q.GetProgression(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to reload progression: %w", err)
	}
	if current.RebirthCount != p.RebirthCount {
		return 0, fmt.Errorf("rebirth count changed from %d to %d", p.RebirthCount, current.RebirthCount)
	}

	current.RebirthCount = record.RebirthCount
	current.LastRebirthAt = &record.CreatedAt
	current.TotalExp = 0
	current.Level = config.MinLevel
	if err := q.SaveProgression(ctx, current); err != nil {
		return 0, fmt.Errorf("failed to save progression: %w", err)
	}

	steps := []struct {
		name string
		fn   func(context.Context, string) error
	}{
		{"reset wallet", q.ResetWallet},
		{"delete items", q.DeleteAllItems},
		{"clear production", q.ClearProduction},
		{"reset structures", q.ResetStructures},
		{"clear boosts", q.ClearBoosts},
		{"delete listings", q.DeleteListings},
		{"clear companions", q.ClearCompanions},
		{"clear consumables", q.ClearConsumables},
		{"delete quest progress", q.DeleteUserQuestProgress},
	}
	for _, step := range steps {
		if err := step.fn(ctx, userID); err != nil {
			return 0, fmt.Errorf("failed to %s: %w", step.name, err)
		}
	}

	if kept != nil {
		if err := q.InsertItem(ctx, kept); err != nil {
			return 0, fmt.Errorf("failed to restore kept item: %w", err)
		}
	}

	cancelled, err := q.CancelPendingTrades(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel trades: %w", err)
	}

	if err := q.InsertRebirthRecord(ctx, record); err != nil {
		return 0, fmt.Errorf("failed to write rebirth record: %w", err)
	}
	return cancelled, nil
}

func (s *Service) claim(userID string, threshold int) leveling.MilestoneClaim {
	return leveling.MilestoneClaim{
		UserID:     userID,
		Kind:       models.MilestoneKindRebirth,
		Threshold:  threshold,
		Milestones: s.tables.RebirthMilestones,
		NotReached: outcome.ReasonRebirthNotReached,
	}
}

func (s *Service) ClaimRebirthMilestone(ctx context.Context, userID string, threshold int) leveling.MilestoneResult {
	var reward config.Reward
	err := s.locks.WithLock(ctx, userID, func(ctx context.Context) error {
		return s.store.RunInTx(ctx, func(ctx context.Context, q store.Queries) error {
			p, err := q.GetProgression(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to load progression: %w", err)
			}
			reward, err = leveling.ClaimMilestone(ctx, q, s.claim(userID, threshold), p.RebirthCount)
			return err
		})
	})
	if err != nil {
		leveling.LogClaimFailure("rebirth", userID, threshold, err)
		return leveling.MilestoneResult{Outcome: outcome.FromError(err, outcome.ReasonTransactionFailed), Threshold: threshold}
	}

	slog.Info("Rebirth milestone claimed",
		slog.String("type", "rebirth"),
		slog.String("user_id", userID),
		slog.Int("threshold", threshold))
	return leveling.MilestoneResult{Outcome: outcome.OK(), Threshold: threshold, Reward: reward}
}

// ClaimAllRebirthMilestones has the same partial-progress semantics as the
// level variant.
func (s *Service) ClaimAllRebirthMilestones(ctx context.Context, userID string) leveling.ClaimAllResult {
	var pending []int
	err := s.store.View(ctx, func(ctx context.Context, q store.Queries) error {
		p, err := q.GetProgression(ctx, userID)
		if err != nil {
			return err
		}
		claimed, err := q.ListMilestoneClaims(ctx, userID, models.MilestoneKindRebirth)
		if err != nil {
			return err
		}
		pending = leveling.UnclaimedMilestones(s.tables.RebirthMilestones, claimed, p.RebirthCount)
		return nil
	})
	if err != nil {
		return leveling.ClaimAllResult{Outcome: outcome.FromError(err, outcome.ReasonStoreUnavailable)}
	}

	return leveling.ClaimAll(pending, func(threshold int) leveling.MilestoneResult {
		return s.ClaimRebirthMilestone(ctx, userID, threshold)
	})
}

func (s *Service) ListRebirthMilestones(ctx context.Context, userID string) leveling.MilestoneList {
	var list []leveling.MilestoneStatus
	err := s.store.View(ctx, func(ctx context.Context, q store.Queries) error {
		p, err := q.GetProgression(ctx, userID)
		if err != nil {
			return err
		}
		claimed, err := q.ListMilestoneClaims(ctx, userID, models.MilestoneKindRebirth)
		if err != nil {
			return err
		}
		list = leveling.ListMilestoneStatus(s.tables.RebirthMilestones, claimed, p.RebirthCount)
		return nil
	})
	if err != nil {
		return leveling.MilestoneList{Outcome: outcome.FromError(err, outcome.ReasonStoreUnavailable)}
	}
	return leveling.MilestoneList{Outcome: outcome.OK(), Milestones: list}
}
