package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/leveling"
	"github.com/ellavondegurechaff/gohye-progression/progression/outcome"
	"github.com/ellavondegurechaff/gohye-progression/progression/store"
	"github.com/ellavondegurechaff/gohye-progression/progression/usermutex"
)

const activeCacheSize = 16

// QuestService owns the daily and weekly quest rotation.
type QuestService struct {
	store    store.Store
	locks    *usermutex.UserMutex
	calc     *leveling.Calculator
	tables   *config.Tables
	listener leveling.LevelListener
	active   *lru.Cache
	byID     map[string]config.EphemeralQuest

	// Now decides the current periods. Defaults to time.Now.
	Now func() time.Time
}

func NewQuestService(st store.Store, locks *usermutex.UserMutex, calc *leveling.Calculator, tables *config.Tables, listener leveling.LevelListener) *QuestService {
	active, _ := lru.New(activeCacheSize)

	byID := make(map[string]config.EphemeralQuest, len(tables.DailyQuestPool)+len(tables.WeeklyQuestPool))
	for _, q := range tables.DailyQuestPool {
		byID[q.ID] = q
	}
	for _, q := range tables.WeeklyQuestPool {
		byID[q.ID] = q
	}

	return &QuestService{
		store:    st,
		locks:    locks,
		calc:     calc,
		tables:   tables,
		listener: listener,
		active:   active,
		byID:     byID,
		Now:      time.Now,
	}
}

// ActiveQuests returns the quests of the given kind for the period containing t.
func (s *QuestService) ActiveQuests(kind string, t time.Time) []config.EphemeralQuest {
	periodKey := PeriodKey(kind, t)
	cacheKey := kind + ":" + periodKey
	if cached, ok := s.active.Get(cacheKey); ok {
		if quests, ok := cached.([]config.EphemeralQuest); ok {
			return quests
		}
	}

	var quests []config.EphemeralQuest
	if kind == config.QuestKindWeekly {
		quests = rotate(s.tables.WeeklyQuestPool, s.tables.WeeklyQuestsPerPeriod, periodKey)
	} else {
		quests = rotate(s.tables.DailyQuestPool, s.tables.DailyQuestsPerPeriod, periodKey)
	}
	s.active.Add(cacheKey, quests)
	return quests
}

// matching returns the active quests in scope tracking trackingType.
func (s *QuestService) matching(trackingType, scope string, t time.Time) []config.EphemeralQuest {
	var kinds []string
	switch scope {
	case ScopeDaily:
		kinds = []string{config.QuestKindDaily}
	case ScopeWeekly:
		kinds = []string{config.QuestKindWeekly}
	default:
		kinds = []string{config.QuestKindDaily, config.QuestKindWeekly}
	}

	var out []config.EphemeralQuest
	for _, kind := range kinds {
		for _, q := range s.ActiveQuests(kind, t) {
			if q.TrackingType == trackingType {
				out = append(out, q)
			}
		}
	}
	return out
}

func (s *QuestService) currentPeriodKeys(t time.Time) []string {
	return []string{DailyPeriodKey(t), WeeklyPeriodKey(t)}
}

func (s *QuestService) questKey(userID string, q config.EphemeralQuest, t time.Time) store.QuestKey {
	return store.QuestKey{UserID: userID, QuestID: q.ID, PeriodKey: PeriodKey(q.Kind, t)}
}

// advance writes one quest row in its own transaction. The row update is a
// locked read-modify-write, so concurrent increments never lose updates.
func (s *QuestService) advance(ctx context.Context, userID string, q config.EphemeralQuest, t time.Time, write func(context.Context, store.Queries, store.QuestKey) (store.QuestUpdate, error)) (store.QuestUpdate, error) {
	var update store.QuestUpdate
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Queries) error {
		var err error
		update, err = write(ctx, tx, s.questKey(userID, q, t))
		return err
	})
	if err != nil {
		return store.QuestUpdate{}, fmt.Errorf("failed to update quest %s: %w", q.ID, err)
	}
	if update.NewlyCompleted {
		slog.Info("Quest completed",
			slog.String("type", "quest"),
			slog.String("user_id", userID),
			slog.String("quest_id", q.ID))
	}
	return update, nil
}

// Increment adds increment to every active quest tracking trackingType and
// returns the ids of quests completed by this call.
func (s *QuestService) Increment(ctx context.Context, userID, trackingType string, increment int64) ([]string, error) {
	now := s.Now()
	var completed []string
	var firstErr error
	for _, q := range s.matching(trackingType, ScopeAll, now) {
		q := q
		update, err := s.advance(ctx, userID, q, now, func(ctx context.Context, tx store.Queries, key store.QuestKey) (store.QuestUpdate, error) {
			return tx.IncrementQuestProgress(ctx, key, q.Kind, increment, q.Goal)
		})
		if err != nil {
			slog.Debug("Failed to track quest progress",
				slog.String("type", "quest"),
				slog.String("user_id", userID),
				slog.String("quest_id", q.ID),
				slog.Any("error", err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if update.NewlyCompleted {
			completed = append(completed, q.ID)
		}
	}
	return completed, firstErr
}

// Set overwrites progress of active quests in scope with value.
func (s *QuestService) Set(ctx context.Context, userID, trackingType string, value int64, scope string) ([]string, error) {
	now := s.Now()
	var completed []string
	var firstErr error
	for _, q := range s.matching(trackingType, scope, now) {
		q := q
		update, err := s.advance(ctx, userID, q, now, func(ctx context.Context, tx store.Queries, key store.QuestKey) (store.QuestUpdate, error) {
			return tx.SetQuestProgress(ctx, key, q.Kind, value, q.Goal)
		})
		if err != nil {
			slog.Debug("Failed to set quest progress",
				slog.String("type", "quest"),
				slog.String("user_id", userID),
				slog.String("quest_id", q.ID),
				slog.Any("error", err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if update.NewlyCompleted {
			completed = append(completed, q.ID)
		}
	}
	return completed, firstErr
}

func (s *QuestService) GetQuestStatus(ctx context.Context, userID string) QuestStatus {
	now := s.Now()
	daily := s.ActiveQuests(config.QuestKindDaily, now)
	weekly := s.ActiveQuests(config.QuestKindWeekly, now)

	views := make(map[store.QuestKey]QuestView)
	err := s.store.View(ctx, func(ctx context.Context, q store.Queries) error {
		rows, err := q.ListQuestProgress(ctx, userID, s.currentPeriodKeys(now))
		if err != nil {
			return err
		}
		for _, row := range rows {
			views[store.QuestKey{UserID: userID, QuestID: row.QuestID, PeriodKey: row.PeriodKey}] = QuestView{
				Progress:   row.Progress,
				Percentage: row.GetProgressPercentage(),
				Completed:  row.Completed,
				Claimed:    row.Claimed,
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("Failed to load quest status",
			slog.String("type", "quest"),
			slog.String("user_id", userID),
			slog.Any("error", err))
		return QuestStatus{Outcome: outcome.FromError(err, outcome.ReasonStoreUnavailable)}
	}

	status := QuestStatus{
		Outcome:       outcome.OK(),
		DailyResetAt:  NextReset(config.QuestKindDaily, now),
		WeeklyResetAt: NextReset(config.QuestKindWeekly, now),
	}
	build := func(quests []config.EphemeralQuest) []QuestView {
		out := make([]QuestView, 0, len(quests))
		for _, q := range quests {
			key := s.questKey(userID, q, now)
			v := views[key]
			v.ID, v.Name, v.Kind, v.TrackingType = q.ID, q.Name, q.Kind, q.TrackingType
			v.PeriodKey, v.Goal, v.Reward = key.PeriodKey, q.Goal, q.Reward
			if v.Completed && !v.Claimed {
				status.Unclaimed++
			}
			out = append(out, v)
		}
		return out
	}
	status.Daily = build(daily)
	status.Weekly = build(weekly)
	return status
}

// ClaimQuestRewards claims every completed, unclaimed quest of the current
// periods in one transaction and applies the combined reward.
func (s *QuestService) ClaimQuestRewards(ctx context.Context, userID string) QuestClaimResult {
	now := s.Now()
	result := QuestClaimResult{}

	err := s.locks.WithLock(ctx, userID, func(ctx context.Context) error {
		return s.store.RunInTx(ctx, func(ctx context.Context, q store.Queries) error {
			rows, err := q.ListQuestProgress(ctx, userID, s.currentPeriodKeys(now))
			if err != nil {
				return fmt.Errorf("failed to list quest progress: %w", err)
			}

			var total config.Reward
			var claimed []string
			for _, row := range rows {
				if !row.Completed || row.Claimed {
					continue
				}
				def, ok := s.byID[row.QuestID]
				if !ok {
					continue
				}
				marked, err := q.MarkQuestClaimed(ctx, store.QuestKey{UserID: userID, QuestID: row.QuestID, PeriodKey: row.PeriodKey})
				if err != nil {
					return fmt.Errorf("failed to claim quest %s: %w", row.QuestID, err)
				}
				if !marked {
					continue
				}
				claimed = append(claimed, row.QuestID)
				total = total.Add(def.Reward)
			}
			if len(claimed) == 0 {
				return nil
			}

			if err := q.CreditWallet(ctx, userID, total); err != nil {
				return fmt.Errorf("failed to credit quest rewards: %w", err)
			}
			exp, err := leveling.ApplyExp(ctx, q, s.calc, userID, total.Exp)
			if err != nil {
				return err
			}

			result.Claimed, result.Reward, result.Exp = claimed, total, exp
			return nil
		})
	})
	if err != nil {
		slog.Error("Failed to claim quest rewards",
			slog.String("type", "quest"),
			slog.String("user_id", userID),
			slog.Any("error", err))
		return QuestClaimResult{Outcome: outcome.FromError(err, outcome.ReasonTransactionFailed)}
	}

	result.Outcome = outcome.OK()
	if len(result.Claimed) == 0 {
		result.Message = "no completed quests to claim"
		return result
	}

	slog.Info("Quest rewards claimed",
		slog.String("type", "quest"),
		slog.String("user_id", userID),
		slog.Int("quests", len(result.Claimed)),
		slog.Int64("coins", result.Reward.Coins),
		slog.Int64("exp", result.Reward.Exp))

	if result.Exp.LeveledUp() && s.listener != nil {
		s.listener.CheckLevelQuest(ctx, userID, result.Exp.NewLevel)
	}
	return result
}

// CleanupExpired discards progress rows of past periods.
func (s *QuestService) CleanupExpired(ctx context.Context) (int64, error) {
	var deleted int64
	err := s.store.RunInTx(ctx, func(ctx context.Context, q store.Queries) error {
		var err error
		deleted, err = q.DeleteStaleQuestProgress(ctx, s.currentPeriodKeys(s.Now()))
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clean up quest progress: %w", err)
	}
	if deleted > 0 {
		slog.Info("Expired quest progress removed",
			slog.String("type", "quest"),
			slog.Int64("rows", deleted))
	}
	return deleted, nil
}

// StartCleanup runs CleanupExpired every interval until ctx is done.
func (s *QuestService) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				cleanupCtx, cancel := context.WithTimeout(ctx, config.DefaultTxTimeout)
				if _, err := s.CleanupExpired(cleanupCtx); err != nil {
					slog.Error("Failed to cleanup expired quests",
						slog.String("type", "quest"),
						slog.Any("error", err))
				}
				cancel()
			case <-ctx.Done():
				return
			}
		}
	}()
}
