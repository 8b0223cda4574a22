package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/ellavondegurechaff/gohye-progression/progression/database/models"
	"github.com/ellavondegurechaff/gohye-progression/progression/store"
)

func (q *queries) GetMainQuest(ctx context.Context, userID string) (*models.MainQuestProgress, error) {
	progress := &models.MainQuestProgress{
		UserID:         userID,
		CurrentQuestID: 1,
		Counters:       make(map[string]int64),
	}

	state := new(models.MainQuestState)
	err := q.lock(q.db.NewSelect().Model(state).Where("user_id = ?", userID)).Scan(ctx)
	switch err = handleError("get", "main_quest_progress", err); {
	case err == nil:
		progress.CurrentQuestID = state.CurrentQuestID
	case errors.Is(err, store.ErrNotFound):
	default:
		return nil, err
	}

	err = q.db.NewSelect().
		Model(&progress.Completed).
		Where("user_id = ?", userID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, handleError("list", "main_quest_completions", err)
	}

	var counters []models.MainQuestCounter
	err = q.db.NewSelect().
		Model(&counters).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		return nil, handleError("list", "main_quest_counters", err)
	}
	for _, c := range counters {
		progress.Counters[c.CounterKey] = c.Value
	}
	return progress, nil
}

func (q *queries) SetMainQuestPointer(ctx context.Context, userID string, questID int) error {
	state := &models.MainQuestState{UserID: userID, CurrentQuestID: questID, UpdatedAt: time.Now()}
	_, err := q.db.NewInsert().
		Model(state).
		On("CONFLICT (user_id) DO UPDATE").
		Set("current_quest_id = EXCLUDED.current_quest_id").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return handleError("save", "main_quest_progress", err)
}

func (q *queries) AddMainQuestCounter(ctx context.Context, userID, key string, amount int64) (int64, error) {
	var value int64
	err := q.db.NewRaw(`
		INSERT INTO main_quest_counters AS mqk (user_id, counter_key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, counter_key) DO UPDATE SET
			value = CASE WHEN mqk.value > 9223372036854775807 - EXCLUDED.value
				THEN 9223372036854775807 ELSE mqk.value + EXCLUDED.value END,
			updated_at = EXCLUDED.updated_at
		RETURNING value`,
		userID, key, amount, time.Now(),
	).Scan(ctx, &value)
	if err != nil {
		return 0, handleError("increment", "main_quest_counters", err)
	}
	return value, nil
}

func (q *queries) AppendMainQuestCompletion(ctx context.Context, c *models.MainQuestCompletion) error {
	if c.CompletedAt.IsZero() {
		c.CompletedAt = time.Now()
	}
	_, err := q.db.NewInsert().Model(c).Returning("id").Exec(ctx)
	return handleError("insert", "main_quest_completions", err)
}
