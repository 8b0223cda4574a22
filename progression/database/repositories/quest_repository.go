package repositories

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"github.com/ellavondegurechaff/gohye-progression/progression/database/models"
	"github.com/ellavondegurechaff/gohye-progression/progression/store"
)

// lockQuestRow makes sure the row exists and returns it locked for the rest
// of the transaction.
func (q *queries) lockQuestRow(ctx context.Context, key store.QuestKey, kind string, goal int64) (*models.EphemeralQuestProgress, error) {
	now := time.Now()
	seed := &models.EphemeralQuestProgress{
		UserID:    key.UserID,
		QuestID:   key.QuestID,
		PeriodKey: key.PeriodKey,
		Kind:      kind,
		Goal:      goal,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := q.db.NewInsert().
		Model(seed).
		On("CONFLICT (user_id, quest_id, period_key) DO NOTHING").
		Exec(ctx); err != nil {
		return nil, handleError("seed", "ephemeral_quest_progress", err)
	}

	row := new(models.EphemeralQuestProgress)
	err := q.db.NewSelect().
		Model(row).
		Where("user_id = ? AND quest_id = ? AND period_key = ?", key.UserID, key.QuestID, key.PeriodKey).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, handleError("lock", "ephemeral_quest_progress", err)
	}
	return row, nil
}

func (q *queries) writeQuest(ctx context.Context, key store.QuestKey, kind string, goal int64, next func(int64) int64) (store.QuestUpdate, error) {
	row, err := q.lockQuestRow(ctx, key, kind, goal)
	if err != nil {
		return store.QuestUpdate{}, err
	}
	if row.Completed {
		return store.QuestUpdate{Progress: row.Progress, Goal: row.Goal, Completed: true}, nil
	}

	update := store.AdvanceQuest(row, goal, next(row.Progress), time.Now())
	_, err = q.db.NewUpdate().
		Model(row).
		Column("progress", "goal", "completed", "completed_at", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return store.QuestUpdate{}, handleError("update", "ephemeral_quest_progress", err)
	}
	return update, nil
}

func (q *queries) IncrementQuestProgress(ctx context.Context, key store.QuestKey, kind string, increment, goal int64) (store.QuestUpdate, error) {
	return q.writeQuest(ctx, key, kind, goal, func(current int64) int64 { return store.AddCapped(current, increment) })
}

func (q *queries) SetQuestProgress(ctx context.Context, key store.QuestKey, kind string, value, goal int64) (store.QuestUpdate, error) {
	return q.writeQuest(ctx, key, kind, goal, func(int64) int64 { return value })
}

func (q *queries) ListQuestProgress(ctx context.Context, userID string, periodKeys []string) ([]*models.EphemeralQuestProgress, error) {
	var rows []*models.EphemeralQuestProgress
	if len(periodKeys) == 0 {
		return rows, nil
	}
	err := q.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Where("period_key IN (?)", bun.In(periodKeys)).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, handleError("list", "ephemeral_quest_progress", err)
	}
	return rows, nil
}

func (q *queries) MarkQuestClaimed(ctx context.Context, key store.QuestKey) (bool, error) {
	now := time.Now()
	res, err := q.db.NewUpdate().
		Model((*models.EphemeralQuestProgress)(nil)).
		Set("claimed = true").
		Set("claimed_at = ?", now).
		Set("updated_at = ?", now).
		Where("user_id = ? AND quest_id = ? AND period_key = ?", key.UserID, key.QuestID, key.PeriodKey).
		Where("completed = true AND claimed = false").
		Exec(ctx)
	if err != nil {
		return false, handleError("claim", "ephemeral_quest_progress", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, handleError("claim", "ephemeral_quest_progress", err)
	}
	return affected == 1, nil
}

func (q *queries) DeleteUserQuestProgress(ctx context.Context, userID string) error {
	_, err := q.db.NewDelete().
		Model((*models.EphemeralQuestProgress)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)
	return handleError("delete", "ephemeral_quest_progress", err)
}

func (q *queries) DeleteStaleQuestProgress(ctx context.Context, currentPeriodKeys []string) (int64, error) {
	del := q.db.NewDelete().Model((*models.EphemeralQuestProgress)(nil))
	if len(currentPeriodKeys) > 0 {
		del = del.Where("period_key NOT IN (?)", bun.In(currentPeriodKeys))
	} else {
		del = del.Where("TRUE")
	}
	res, err := del.Exec(ctx)
	if err != nil {
		return 0, handleError("cleanup", "ephemeral_quest_progress", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

func (q *queries) IncrementAchievement(ctx context.Context, userID, achievementID string, amount int64) (int64, error) {
	var value int64
	err := q.db.NewRaw(`
		INSERT INTO achievement_counters AS ac (user_id, achievement_id, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, achievement_id) DO UPDATE SET
			value = CASE WHEN ac.value > 9223372036854775807 - EXCLUDED.value
				THEN 9223372036854775807 ELSE ac.value + EXCLUDED.value END,
			updated_at = EXCLUDED.updated_at
		RETURNING value`,
		userID, achievementID, amount, time.Now(),
	).Scan(ctx, &value)
	if err != nil {
		return 0, handleError("increment", "achievement_counters", err)
	}
	return value, nil
}

func (q *queries) ListAchievements(ctx context.Context, userID string) ([]*models.AchievementCounter, error) {
	var rows []*models.AchievementCounter
	err := q.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID).
		Order("achievement_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, handleError("list", "achievement_counters", err)
	}
	return rows, nil
}
