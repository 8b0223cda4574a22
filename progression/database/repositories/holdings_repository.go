package repositories

import (
	"context"
	"time"

	"github.com/ellavondegurechaff/gohye-progression/progression/database/models"
)

func (q *queries) FindInventoryItem(ctx context.Context, userID, itemID string) (*models.UserItem, error) {
	item := new(models.UserItem)
	err := q.db.NewSelect().
		Model(item).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Order("id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, handleError("find", "user_items", err)
	}
	return item, nil
}

func (q *queries) FindProductionItem(ctx context.Context, userID, itemID string) (*models.ProductionAssignment, error) {
	pa := new(models.ProductionAssignment)
	err := q.db.NewSelect().
		Model(pa).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Order("id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, handleError("find", "production_assignments", err)
	}
	return pa, nil
}

func (q *queries) DeleteAllItems(ctx context.Context, userID string) error {
	_, err := q.db.NewDelete().Model((*models.UserItem)(nil)).Where("user_id = ?", userID).Exec(ctx)
	return handleError("delete", "user_items", err)
}

func (q *queries) InsertItem(ctx context.Context, item *models.UserItem) error {
	if item.AcquiredAt.IsZero() {
		item.AcquiredAt = time.Now()
	}
	_, err := q.db.NewInsert().Model(item).Returning("id").Exec(ctx)
	return handleError("insert", "user_items", err)
}

func (q *queries) ClearProduction(ctx context.Context, userID string) error {
	_, err := q.db.NewDelete().Model((*models.ProductionAssignment)(nil)).Where("user_id = ?", userID).Exec(ctx)
	return handleError("delete", "production_assignments", err)
}

func (q *queries) ResetStructures(ctx context.Context, userID string) error {
	_, err := q.db.NewUpdate().
		Model((*models.UserStructure)(nil)).
		Set("level = 1").
		Set("updated_at = ?", time.Now()).
		Where("user_id = ?", userID).
		Exec(ctx)
	return handleError("reset", "user_structures", err)
}

func (q *queries) ClearBoosts(ctx context.Context, userID string) error {
	_, err := q.db.NewDelete().Model((*models.ActiveBoost)(nil)).Where("user_id = ?", userID).Exec(ctx)
	return handleError("delete", "active_boosts", err)
}

func (q *queries) DeleteListings(ctx context.Context, userID string) error {
	_, err := q.db.NewDelete().Model((*models.MarketListing)(nil)).Where("seller_id = ?", userID).Exec(ctx)
	return handleError("delete", "market_listings", err)
}

func (q *queries) ClearCompanions(ctx context.Context, userID string) error {
	_, err := q.db.NewDelete().Model((*models.Companion)(nil)).Where("user_id = ?", userID).Exec(ctx)
	return handleError("delete", "user_companions", err)
}

func (q *queries) ClearConsumables(ctx context.Context, userID string) error {
	_, err := q.db.NewDelete().Model((*models.Consumable)(nil)).Where("user_id = ?", userID).Exec(ctx)
	return handleError("delete", "user_consumables", err)
}

func (q *queries) CancelPendingTrades(ctx context.Context, userID string) (int64, error) {
	res, err := q.db.NewUpdate().
		Model((*models.Trade)(nil)).
		Set("status = ?", models.TradeStatusCancelled).
		Set("updated_at = ?", time.Now()).
		Where("status = ?", models.TradeStatusPending).
		Where("offerer_id = ? OR target_id = ?", userID, userID).
		Exec(ctx)
	if err != nil {
		return 0, handleError("cancel", "trades", err)
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}
