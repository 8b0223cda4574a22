package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/database/models"
	"github.com/ellavondegurechaff/gohye-progression/progression/store"
)

func (q *queries) GetProgression(ctx context.Context, userID string) (*models.UserProgression, error) {
	p := new(models.UserProgression)
	err := q.lock(q.db.NewSelect().Model(p).Where("user_id = ?", userID)).Scan(ctx)
	if err != nil {
		err = handleError("get", "user_progression", err)
		if errors.Is(err, store.ErrNotFound) {
			return models.NewUserProgression(userID), nil
		}
		return nil, err
	}
	return p, nil
}

func (q *queries) SaveProgression(ctx context.Context, p *models.UserProgression) error {
	p.UpdatedAt = time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = p.UpdatedAt
	}
	_, err := q.db.NewInsert().
		Model(p).
		On("CONFLICT (user_id) DO UPDATE").
		Set("total_exp = EXCLUDED.total_exp").
		Set("level = EXCLUDED.level").
		Set("rebirth_count = EXCLUDED.rebirth_count").
		Set("last_rebirth_at = EXCLUDED.last_rebirth_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return handleError("save", "user_progression", err)
}

func (q *queries) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	w := new(models.Wallet)
	err := q.lock(q.db.NewSelect().Model(w).Where("user_id = ?", userID)).Scan(ctx)
	if err != nil {
		err = handleError("get", "user_wallets", err)
		if errors.Is(err, store.ErrNotFound) {
			return &models.Wallet{UserID: userID}, nil
		}
		return nil, err
	}
	return w, nil
}

func (q *queries) CreditWallet(ctx context.Context, userID string, reward config.Reward) error {
	_, err := q.db.NewRaw(`
		INSERT INTO user_wallets AS uw (user_id, coins, gems, tickets, tokens, updated_at)
		VALUES (?, ?, ?, ?, 0, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			coins = uw.coins + EXCLUDED.coins,
			gems = uw.gems + EXCLUDED.gems,
			tickets = uw.tickets + EXCLUDED.tickets,
			updated_at = EXCLUDED.updated_at`,
		userID, reward.Coins, reward.Gems, reward.Tickets, time.Now(),
	).Exec(ctx)
	return handleError("credit", "user_wallets", err)
}

func (q *queries) ResetWallet(ctx context.Context, userID string) error {
	w := &models.Wallet{UserID: userID, UpdatedAt: time.Now()}
	_, err := q.db.NewInsert().
		Model(w).
		On("CONFLICT (user_id) DO UPDATE").
		Set("coins = 0").
		Set("gems = 0").
		Set("tickets = 0").
		Set("tokens = 0").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return handleError("reset", "user_wallets", err)
}

func (q *queries) HasMilestoneClaim(ctx context.Context, userID, kind string, threshold int) (bool, error) {
	exists, err := q.db.NewSelect().
		Model((*models.MilestoneClaim)(nil)).
		Where("user_id = ? AND kind = ? AND threshold = ?", userID, kind, threshold).
		Exists(ctx)
	if err != nil {
		return false, handleError("exists", "milestone_claims", err)
	}
	return exists, nil
}

func (q *queries) InsertMilestoneClaim(ctx context.Context, claim *models.MilestoneClaim) error {
	if claim.ClaimedAt.IsZero() {
		claim.ClaimedAt = time.Now()
	}
	_, err := q.db.NewInsert().Model(claim).Returning("id").Exec(ctx)
	return handleError("insert", "milestone_claims", err)
}

func (q *queries) ListMilestoneClaims(ctx context.Context, userID, kind string) ([]int, error) {
	var thresholds []int
	err := q.db.NewSelect().
		Model((*models.MilestoneClaim)(nil)).
		Column("threshold").
		Where("user_id = ? AND kind = ?", userID, kind).
		Order("threshold ASC").
		Scan(ctx, &thresholds)
	if err != nil {
		return nil, handleError("list", "milestone_claims", err)
	}
	return thresholds, nil
}

func (q *queries) InsertRebirthRecord(ctx context.Context, r *models.RebirthRecord) error {
	_, err := q.db.NewInsert().Model(r).Exec(ctx)
	return handleError("insert", "rebirth_records", err)
}
