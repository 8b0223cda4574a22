package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/database/models"
	"github.com/ellavondegurechaff/gohye-progression/progression/leveling"
	"github.com/ellavondegurechaff/gohye-progression/progression/outcome"
	"github.com/ellavondegurechaff/gohye-progression/progression/rebirth"
	"github.com/ellavondegurechaff/gohye-progression/progression/store"
	"github.com/ellavondegurechaff/gohye-progression/progression/usermutex"
)

// MainQuestEngine walks every user through the ordered main quest line. The
// pointer only moves forward; len(MainQuests)+1 means the line is finished.
type MainQuestEngine struct {
	store  store.Store
	locks  *usermutex.UserMutex
	calc   *leveling.Calculator
	tables *config.Tables
}

var (
	_ leveling.LevelListener  = (*MainQuestEngine)(nil)
	_ rebirth.RebirthListener = (*MainQuestEngine)(nil)
)

func NewMainQuestEngine(st store.Store, locks *usermutex.UserMutex, calc *leveling.Calculator, tables *config.Tables) *MainQuestEngine {
	return &MainQuestEngine{
		store:  st,
		locks:  locks,
		calc:   calc,
		tables: tables,
	}
}

func (e *MainQuestEngine) quest(id int) (config.MainQuest, bool) {
	if id < 1 || id > len(e.tables.MainQuests) {
		return config.MainQuest{}, false
	}
	return e.tables.MainQuests[id-1], true
}

func (e *MainQuestEngine) terminal() int {
	return len(e.tables.MainQuests) + 1
}

// trigger is the event that woke the engine. Level and rebirth triggers carry
// no amount; the requirement is read from the stored progression.
type trigger struct {
	kind   string
	target string
	amount int64
}

func counterKey(kind, target string) string {
	if kind == config.RequirementCommand {
		return models.CommandCounterKey(target)
	}
	return models.TrackingCounterKey(target)
}

// UpdateTracking adds amount to the tracking counter when the current quest
// tracks trackingType.
func (e *MainQuestEngine) UpdateTracking(ctx context.Context, userID, trackingType string, amount int64) MainQuestResult {
	if amount <= 0 {
		return MainQuestResult{Outcome: outcome.OK()}
	}
	return e.run(ctx, userID, trigger{kind: config.RequirementTracking, target: trackingType, amount: amount})
}

func (e *MainQuestEngine) TrackCommand(ctx context.Context, userID, command string) MainQuestResult {
	return e.run(ctx, userID, trigger{kind: config.RequirementCommand, target: command, amount: 1})
}

func (e *MainQuestEngine) CheckLevelQuest(ctx context.Context, userID string, level int) {
	res := e.run(ctx, userID, trigger{kind: config.RequirementLevel})
	if res.Failed() {
		slog.Debug("Level quest check failed",
			slog.String("type", "quest"),
			slog.String("user_id", userID),
			slog.Int("level", level),
			slog.String("reason", string(res.Reason)))
	}
}

func (e *MainQuestEngine) CheckRebirthQuest(ctx context.Context, userID string, rebirthCount int) {
	res := e.run(ctx, userID, trigger{kind: config.RequirementRebirth})
	if res.Failed() {
		slog.Debug("Rebirth quest check failed",
			slog.String("type", "quest"),
			slog.String("user_id", userID),
			slog.Int("rebirth_count", rebirthCount),
			slog.String("reason", string(res.Reason)))
	}
}

func (e *MainQuestEngine) run(ctx context.Context, userID string, t trigger) MainQuestResult {
	var result MainQuestResult
	err := e.locks.WithLock(ctx, userID, func(ctx context.Context) error {
		result = MainQuestResult{}
		return e.store.RunInTx(ctx, func(ctx context.Context, q store.Queries) error {
			progress, err := q.GetMainQuest(ctx, userID)
			if err != nil {
				return fmt.Errorf("failed to load main quest: %w", err)
			}

			current, ok := e.quest(progress.CurrentQuestID)
			if !ok {
				result.CurrentQuestID = progress.CurrentQuestID
				result.AllComplete = true
				return nil
			}

			if t.amount > 0 && current.Requirement.Kind == t.kind && current.Requirement.Target == t.target {
				key := counterKey(t.kind, t.target)
				value, err := q.AddMainQuestCounter(ctx, userID, key, t.amount)
				if err != nil {
					return fmt.Errorf("failed to update main quest counter: %w", err)
				}
				progress.Counters[key] = value
			}

			return e.evaluate(ctx, q, progress, &result)
		})
	})
	if err != nil {
		slog.Error("Main quest update failed",
			slog.String("type", "quest"),
			slog.String("user_id", userID),
			slog.String("trigger", t.kind),
			slog.Any("error", err))
		return MainQuestResult{Outcome: outcome.FromError(err, outcome.ReasonTransactionFailed)}
	}

	result.Outcome = outcome.OK()
	if result.Exp.LeveledUp() {
		e.CheckLevelQuest(ctx, userID, result.Exp.NewLevel)
	}
	return result
}

// evaluate completes the current quest while its requirement holds. Each
// completion re-checks the next quest against carried-over counters.
func (e *MainQuestEngine) evaluate(ctx context.Context, q store.Queries, progress *models.MainQuestProgress, result *MainQuestResult) error {
	userID := progress.UserID
	for range e.tables.MainQuests {
		quest, ok := e.quest(progress.CurrentQuestID)
		if !ok {
			break
		}

		current, err := e.current(ctx, q, progress, quest)
		if err != nil {
			return err
		}
		if current < quest.Requirement.Count {
			break
		}

		reward, err := e.complete(ctx, q, progress, quest, result)
		if err != nil {
			return err
		}
		result.Completed = append(result.Completed, CompletedMainQuest{QuestID: quest.ID, Name: quest.Name, Reward: reward})

		slog.Info("Main quest completed",
			slog.String("type", "quest"),
			slog.String("user_id", userID),
			slog.Int("quest_id", quest.ID),
			slog.String("name", quest.Name))
	}

	result.CurrentQuestID = progress.CurrentQuestID
	result.AllComplete = progress.CurrentQuestID >= e.terminal()
	return nil
}

// current is the user's standing against the quest's requirement.
func (e *MainQuestEngine) current(ctx context.Context, q store.Queries, progress *models.MainQuestProgress, quest config.MainQuest) (int64, error) {
	switch quest.Requirement.Kind {
	case config.RequirementLevel, config.RequirementRebirth:
		p, err := q.GetProgression(ctx, progress.UserID)
		if err != nil {
			return 0, fmt.Errorf("failed to load progression: %w", err)
		}
		if quest.Requirement.Kind == config.RequirementLevel {
			return int64(e.calc.LevelForExp(p.TotalExp)), nil
		}
		return int64(p.RebirthCount), nil
	default:
		return progress.Counters[counterKey(quest.Requirement.Kind, quest.Requirement.Target)], nil
	}
}

func (e *MainQuestEngine) complete(ctx context.Context, q store.Queries, progress *models.MainQuestProgress, quest config.MainQuest, result *MainQuestResult) (config.Reward, error) {
	userID := progress.UserID

	if err := q.AppendMainQuestCompletion(ctx, &models.MainQuestCompletion{UserID: userID, QuestID: quest.ID}); err != nil {
		return config.Reward{}, fmt.Errorf("failed to record main quest completion: %w", err)
	}
	next := quest.ID + 1
	if err := q.SetMainQuestPointer(ctx, userID, next); err != nil {
		return config.Reward{}, fmt.Errorf("failed to advance main quest: %w", err)
	}
	progress.CurrentQuestID = next

	reward := quest.Reward
	reward.Exp = ExpReward(quest)
	if err := q.CreditWallet(ctx, userID, reward); err != nil {
		return config.Reward{}, fmt.Errorf("failed to credit main quest reward: %w", err)
	}

	exp, err := leveling.ApplyExp(ctx, q, e.calc, userID, reward.Exp)
	if err != nil {
		return config.Reward{}, err
	}
	if len(result.Completed) == 0 {
		result.Exp.OldLevel = exp.OldLevel
	}
	result.Exp.NewLevel = exp.NewLevel
	result.Exp.TotalExp = exp.TotalExp
	result.Exp.LevelsCrossed = append(result.Exp.LevelsCrossed, exp.LevelsCrossed...)
	result.Exp.Source = "main_quest"
	return reward, nil
}

// ExpReward is the base EXP scaled by the difficulty multiplier.
func ExpReward(quest config.MainQuest) int64 {
	multiplier, ok := config.DifficultyExpMultiplier[quest.Difficulty]
	if !ok {
		multiplier = 1
	}
	return int64(math.Floor(float64(quest.Reward.Exp) * multiplier))
}

func (e *MainQuestEngine) GetCurrentQuestProgress(ctx context.Context, userID string) MainQuestStatus {
	status := MainQuestStatus{TotalQuests: len(e.tables.MainQuests)}
	err := e.store.View(ctx, func(ctx context.Context, q store.Queries) error {
		progress, err := q.GetMainQuest(ctx, userID)
		if err != nil {
			return err
		}

		status.CurrentQuestID = progress.CurrentQuestID
		for _, c := range progress.Completed {
			status.Completed = append(status.Completed, c.QuestID)
		}

		quest, ok := e.quest(progress.CurrentQuestID)
		if !ok {
			status.AllComplete = true
			return nil
		}
		status.Quest = &quest
		status.Required = quest.Requirement.Count
		status.Progress, err = e.current(ctx, q, progress, quest)
		return err
	})
	if err != nil {
		slog.Error("Failed to load main quest progress",
			slog.String("type", "quest"),
			slog.String("user_id", userID),
			slog.Any("error", err))
		return MainQuestStatus{Outcome: outcome.FromError(err, outcome.ReasonStoreUnavailable)}
	}

	status.Outcome = outcome.OK()
	status.Progress = min(status.Progress, status.Required)
	return status
}
