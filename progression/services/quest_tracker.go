package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/outcome"
	"github.com/ellavondegurechaff/gohye-progression/progression/store"
)

// MainQuestTracker is the part of MainQuestEngine the tracker forwards to.
type MainQuestTracker interface {
	UpdateTracking(ctx context.Context, userID, trackingType string, amount int64) MainQuestResult
	TrackCommand(ctx context.Context, userID, command string) MainQuestResult
}

// QuestTracker fans one tracking event out to ephemeral quests, lifetime
// achievements and the main quest line. The branches are independent: a
// failure in one is logged and never undoes or blocks the others.
type QuestTracker struct {
	quests *QuestService
	store  store.Store
	engine MainQuestTracker
	tables *config.Tables
}

func NewQuestTracker(quests *QuestService, st store.Store, engine MainQuestTracker, tables *config.Tables) *QuestTracker {
	return &QuestTracker{
		quests: quests,
		store:  st,
		engine: engine,
		tables: tables,
	}
}

// Track records increment units of trackingType for the user.
func (t *QuestTracker) Track(ctx context.Context, userID, trackingType string, increment int64) TrackResult {
	if increment <= 0 {
		return TrackResult{Outcome: outcome.OK()}
	}

	var (
		result   TrackResult
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	// Branches report through fail and always return nil, so one failing
	// branch does not cancel the others.
	var g errgroup.Group

	g.Go(func() error {
		completed, err := t.quests.Increment(ctx, userID, trackingType, increment)
		mu.Lock()
		result.NewlyCompleted = completed
		mu.Unlock()
		if err != nil {
			fail(err)
		}
		return nil
	})

	if achievementID, ok := t.tables.AchievementTracking[trackingType]; ok {
		g.Go(func() error {
			value, err := t.incrementAchievement(ctx, userID, achievementID, increment)
			if err != nil {
				slog.Debug("Failed to track achievement",
					slog.String("type", "quest"),
					slog.String("user_id", userID),
					slog.String("achievement_id", achievementID),
					slog.Any("error", err))
				fail(err)
				return nil
			}
			mu.Lock()
			result.Achievements = map[string]int64{achievementID: value}
			mu.Unlock()
			return nil
		})
	}

	g.Go(func() error {
		mainResult := t.engine.UpdateTracking(ctx, userID, trackingType, increment)
		if mainResult.Failed() {
			slog.Debug("Failed to track main quest",
				slog.String("type", "quest"),
				slog.String("user_id", userID),
				slog.String("tracking_type", trackingType),
				slog.String("reason", string(mainResult.Reason)))
			fail(&outcome.Error{Reason: mainResult.Reason, Message: mainResult.Message})
		}
		mu.Lock()
		result.MainQuest = &mainResult
		mu.Unlock()
		return nil
	})

	_ = g.Wait()

	if n := len(result.NewlyCompleted); n > 0 && trackingType != config.TrackingQuestsCompleted {
		derived := t.Track(ctx, userID, config.TrackingQuestsCompleted, int64(n))
		result.Derived = &derived
	}

	result.Outcome = outcome.FromError(firstErr, outcome.ReasonStoreUnavailable)
	return result
}

func (t *QuestTracker) incrementAchievement(ctx context.Context, userID, achievementID string, amount int64) (int64, error) {
	var value int64
	err := t.store.RunInTx(ctx, func(ctx context.Context, q store.Queries) error {
		var err error
		value, err = q.IncrementAchievement(ctx, userID, achievementID, amount)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment achievement %s: %w", achievementID, err)
	}
	return value, nil
}

// TrackCommand advances command-based main quests and counts the command
// towards commands_used.
func (t *QuestTracker) TrackCommand(ctx context.Context, userID, command string) TrackResult {
	mainResult := t.engine.TrackCommand(ctx, userID, command)
	if mainResult.Failed() {
		slog.Debug("Failed to track command",
			slog.String("type", "quest"),
			slog.String("user_id", userID),
			slog.String("command", command),
			slog.String("reason", string(mainResult.Reason)))
	}

	result := t.Track(ctx, userID, config.TrackingCommandsUsed, 1)
	result.MainQuest = mergeMain(mainResult, result.MainQuest)
	if result.Success && mainResult.Failed() {
		result.Outcome = mainResult.Outcome
	}
	return result
}

// mergeMain prefers whichever main quest result actually moved the line.
func mergeMain(command MainQuestResult, tracking *MainQuestResult) *MainQuestResult {
	if tracking == nil || len(command.Completed) > 0 || command.Failed() {
		return &command
	}
	return tracking
}

// UpdateQuestProgressDirect sets the progress of matching ephemeral quests to
// an absolute value, for gauges like "own N items".
func (t *QuestTracker) UpdateQuestProgressDirect(ctx context.Context, userID, trackingType string, value int64, scope string) TrackResult {
	if value < 0 {
		return TrackResult{Outcome: outcome.Fail(outcome.ReasonInvalidAmount, "value must not be negative")}
	}

	completed, err := t.quests.Set(ctx, userID, trackingType, value, scope)
	result := TrackResult{NewlyCompleted: completed}
	if n := len(completed); n > 0 && trackingType != config.TrackingQuestsCompleted {
		derived := t.Track(ctx, userID, config.TrackingQuestsCompleted, int64(n))
		result.Derived = &derived
	}
	result.Outcome = outcome.FromError(err, outcome.ReasonStoreUnavailable)
	return result
}
