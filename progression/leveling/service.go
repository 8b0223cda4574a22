package leveling

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/database/models"
	"github.com/ellavondegurechaff/gohye-progression/progression/outcome"
	"github.com/ellavondegurechaff/gohye-progression/progression/store"
	"github.com/ellavondegurechaff/gohye-progression/progression/usermutex"
)

type Service struct {
	store    store.Store
	locks    *usermutex.UserMutex
	calc     *Calculator
	tables   *config.Tables
	listener LevelListener
}

// NewService wires the level service. listener may be nil.
func NewService(st store.Store, locks *usermutex.UserMutex, calc *Calculator, tables *config.Tables, listener LevelListener) *Service {
	return &Service{
		store:    st,
		locks:    locks,
		calc:     calc,
		tables:   tables,
		listener: listener,
	}
}

func (s *Service) Calculator() *Calculator {
	return s.calc
}

func (s *Service) GetLevel(ctx context.Context, userID string) LevelInfo {
	var p *models.UserProgression
	err := s.store.View(ctx, func(ctx context.Context, q store.Queries) error {
		var err error
		p, err = q.GetProgression(ctx, userID)
		return err
	})
	if err != nil {
		slog.Error("Failed to load level",
			slog.String("type", "level"),
			slog.String("user_id", userID),
			slog.Any("error", err))
		return LevelInfo{Outcome: outcome.FromError(err, outcome.ReasonStoreUnavailable)}
	}

	info := s.calc.Info(p.TotalExp)
	info.Outcome = outcome.OK()
	return info
}

// AddExp grants amount EXP. It is not idempotent: a caller retrying after a
// failure may grant twice, so grant-once bookkeeping belongs to the caller.
func (s *Service) AddExp(ctx context.Context, userID string, amount int64, source string) ExpResult {
	if amount <= 0 {
		info := s.GetLevel(ctx, userID)
		return ExpResult{
			Outcome:  info.Outcome,
			OldLevel: info.Level,
			NewLevel: info.Level,
			TotalExp: info.TotalExp,
			Source:   source,
		}
	}

	var result ExpResult
	err := s.locks.WithLock(ctx, userID, func(ctx context.Context) error {
		return s.store.RunInTx(ctx, func(ctx context.Context, q store.Queries) error {
			var err error
			result, err = ApplyExp(ctx, q, s.calc, userID, amount)
			return err
		})
	})
	if err != nil {
		slog.Error("Failed to add exp",
			slog.String("type", "level"),
			slog.String("user_id", userID),
			slog.Int64("amount", amount),
			slog.String("source", source),
			slog.Any("error", err))
		return ExpResult{Outcome: outcome.FromError(err, outcome.ReasonTransactionFailed), Source: source}
	}

	result.Outcome = outcome.OK()
	result.Source = source
	if result.LeveledUp() {
		slog.Info("User leveled up",
			slog.String("type", "level"),
			slog.String("user_id", userID),
			slog.Int("old_level", result.OldLevel),
			slog.Int("new_level", result.NewLevel),
			slog.String("source", source))
		s.notify(ctx, userID, result.NewLevel)
	}
	return result
}

func (s *Service) notify(ctx context.Context, userID string, level int) {
	if s.listener != nil {
		s.listener.CheckLevelQuest(ctx, userID, level)
	}
}

func (s *Service) claim(userID string, threshold int) MilestoneClaim {
	return MilestoneClaim{
		UserID:     userID,
		Kind:       models.MilestoneKindLevel,
		Threshold:  threshold,
		Milestones: s.tables.LevelMilestones,
		NotReached: outcome.ReasonLevelNotReached,
	}
}

func (s *Service) ClaimMilestone(ctx context.Context, userID string, level int) MilestoneResult {
	var reward config.Reward
	err := s.locks.WithLock(ctx, userID, func(ctx context.Context) error {
		return s.store.RunInTx(ctx, func(ctx context.Context, q store.Queries) error {
			p, err := q.GetProgression(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to load progression: %w", err)
			}
			reward, err = ClaimMilestone(ctx, q, s.claim(userID, level), s.calc.LevelForExp(p.TotalExp))
			return err
		})
	})
	if err != nil {
		LogClaimFailure("level", userID, level, err)
		return MilestoneResult{Outcome: outcome.FromError(err, outcome.ReasonTransactionFailed), Threshold: level}
	}

	slog.Info("Level milestone claimed",
		slog.String("type", "level"),
		slog.String("user_id", userID),
		slog.Int("level", level))
	return MilestoneResult{Outcome: outcome.OK(), Threshold: level, Reward: reward}
}

// ClaimAllMilestones claims every reached, unclaimed milestone one by one.
// Each claim commits on its own; the batch stops at the first failure and
// keeps what was already granted.
func (s *Service) ClaimAllMilestones(ctx context.Context, userID string) ClaimAllResult {
	var pending []int
	err := s.store.View(ctx, func(ctx context.Context, q store.Queries) error {
		p, err := q.GetProgression(ctx, userID)
		if err != nil {
			return err
		}
		claimed, err := q.ListMilestoneClaims(ctx, userID, models.MilestoneKindLevel)
		if err != nil {
			return err
		}
		pending = UnclaimedMilestones(s.tables.LevelMilestones, claimed, s.calc.LevelForExp(p.TotalExp))
		return nil
	})
	if err != nil {
		return ClaimAllResult{Outcome: outcome.FromError(err, outcome.ReasonStoreUnavailable)}
	}

	return ClaimAll(pending, func(threshold int) MilestoneResult {
		return s.ClaimMilestone(ctx, userID, threshold)
	})
}

func (s *Service) ListMilestones(ctx context.Context, userID string) MilestoneList {
	var list []MilestoneStatus
	err := s.store.View(ctx, func(ctx context.Context, q store.Queries) error {
		p, err := q.GetProgression(ctx, userID)
		if err != nil {
			return err
		}
		claimed, err := q.ListMilestoneClaims(ctx, userID, models.MilestoneKindLevel)
		if err != nil {
			return err
		}
		list = ListMilestoneStatus(s.tables.LevelMilestones, claimed, s.calc.LevelForExp(p.TotalExp))
		return nil
	})
	if err != nil {
		return MilestoneList{Outcome: outcome.FromError(err, outcome.ReasonStoreUnavailable)}
	}
	return MilestoneList{Outcome: outcome.OK(), Milestones: list}
}

// ClaimAll runs claim for each threshold in order and stops at the first
// failure. An ALREADY_CLAIMED result from a concurrent claim is skipped.
func ClaimAll(thresholds []int, claim func(threshold int) MilestoneResult) ClaimAllResult {
	result := ClaimAllResult{Outcome: outcome.OK()}
	for _, threshold := range thresholds {
		r := claim(threshold)
		if r.Reason == outcome.ReasonAlreadyClaimed {
			continue
		}
		if r.Failed() {
			result.Outcome = r.Outcome
			return result
		}
		result.Claimed = append(result.Claimed, r)
		result.Total = result.Total.Add(r.Reward)
	}
	return result
}

// LogClaimFailure logs refusals at debug and broken claims at error.
func LogClaimFailure(kind, userID string, threshold int, err error) {
	level := slog.LevelError
	if outcome.IsValidation(err) {
		level = slog.LevelDebug
	}
	slog.Log(context.Background(), level, "Milestone claim refused",
		slog.String("type", kind),
		slog.String("user_id", userID),
		slog.Int("threshold", threshold),
		slog.Any("error", err))
}
