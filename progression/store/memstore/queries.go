package memstore

import (
	"context"
	"sort"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/database/models"
	"github.com/ellavondegurechaff/gohye-progression/progression/store"
)

type queries struct {
	st *state
	s  *Store
}

func (q *queries) id() int64 {
	q.st.nextID++
	return q.st.nextID
}

func (q *queries) GetProgression(ctx context.Context, userID string) (*models.UserProgression, error) {
	if err := q.s.faultLocked("GetProgression"); err != nil {
		return nil, err
	}
	if p, ok := q.st.progression[userID]; ok {
		return &p, nil
	}
	p := models.NewUserProgression(userID)
	now := q.s.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	return p, nil
}

func (q *queries) SaveProgression(ctx context.Context, p *models.UserProgression) error {
	if err := q.s.faultLocked("SaveProgression"); err != nil {
		return err
	}
	row := *p
	row.UpdatedAt = q.s.Now()
	if existing, ok := q.st.progression[p.UserID]; ok {
		row.CreatedAt = existing.CreatedAt
	}
	q.st.progression[p.UserID] = row
	return nil
}

func (q *queries) GetWallet(ctx context.Context, userID string) (*models.Wallet, error) {
	if err := q.s.faultLocked("GetWallet"); err != nil {
		return nil, err
	}
	w, ok := q.st.wallets[userID]
	if !ok {
		w = models.Wallet{UserID: userID}
	}
	return &w, nil
}

func (q *queries) CreditWallet(ctx context.Context, userID string, reward config.Reward) error {
	if err := q.s.faultLocked("CreditWallet"); err != nil {
		return err
	}
	w := q.st.wallets[userID]
	w.UserID = userID
	w.Coins += reward.Coins
	w.Gems += reward.Gems
	w.Tickets += reward.Tickets
	w.UpdatedAt = q.s.Now()
	q.st.wallets[userID] = w
	return nil
}

func (q *queries) ResetWallet(ctx context.Context, userID string) error {
	if err := q.s.faultLocked("ResetWallet"); err != nil {
		return err
	}
	q.st.wallets[userID] = models.Wallet{UserID: userID, UpdatedAt: q.s.Now()}
	return nil
}

func (q *queries) HasMilestoneClaim(ctx context.Context, userID, kind string, threshold int) (bool, error) {
	if err := q.s.faultLocked("HasMilestoneClaim"); err != nil {
		return false, err
	}
	_, ok := q.st.claims[claimKey{userID, kind, threshold}]
	return ok, nil
}

func (q *queries) InsertMilestoneClaim(ctx context.Context, claim *models.MilestoneClaim) error {
	if err := q.s.faultLocked("InsertMilestoneClaim"); err != nil {
		return err
	}
	key := claimKey{claim.UserID, claim.Kind, claim.Threshold}
	if _, ok := q.st.claims[key]; ok {
		return store.ErrConflict
	}
	row := *claim
	row.ID = q.id()
	if row.ClaimedAt.IsZero() {
		row.ClaimedAt = q.s.Now()
	}
	q.st.claims[key] = row
	return nil
}

func (q *queries) ListMilestoneClaims(ctx context.Context, userID, kind string) ([]int, error) {
	if err := q.s.faultLocked("ListMilestoneClaims"); err != nil {
		return nil, err
	}
	var thresholds []int
	for k := range q.st.claims {
		if k.userID == userID && k.kind == kind {
			thresholds = append(thresholds, k.threshold)
		}
	}
	sort.Ints(thresholds)
	return thresholds, nil
}

func (q *queries) writeQuest(key store.QuestKey, kind string, goal int64, next func(current int64) int64) store.QuestUpdate {
	now := q.s.Now()
	row, ok := q.st.quests[key]
	if !ok {
		row = models.EphemeralQuestProgress{
			ID:        q.id(),
			UserID:    key.UserID,
			QuestID:   key.QuestID,
			PeriodKey: key.PeriodKey,
			Kind:      kind,
			CreatedAt: now,
		}
	}
	update := store.AdvanceQuest(&row, goal, next(row.Progress), now)
	q.st.quests[key] = row
	return update
}

func (q *queries) IncrementQuestProgress(ctx context.Context, key store.QuestKey, kind string, increment, goal int64) (store.QuestUpdate, error) {
	if err := q.s.faultLocked("IncrementQuestProgress"); err != nil {
		return store.QuestUpdate{}, err
	}
	return q.writeQuest(key, kind, goal, func(current int64) int64 { return store.AddCapped(current, increment) }), nil
}

func (q *queries) SetQuestProgress(ctx context.Context, key store.QuestKey, kind string, value, goal int64) (store.QuestUpdate, error) {
	if err := q.s.faultLocked("SetQuestProgress"); err != nil {
		return store.QuestUpdate{}, err
	}
	return q.writeQuest(key, kind, goal, func(int64) int64 { return value }), nil
}

func (q *queries) ListQuestProgress(ctx context.Context, userID string, periodKeys []string) ([]*models.EphemeralQuestProgress, error) {
	if err := q.s.faultLocked("ListQuestProgress"); err != nil {
		return nil, err
	}
	periods := make(map[string]bool, len(periodKeys))
	for _, k := range periodKeys {
		periods[k] = true
	}

	var rows []*models.EphemeralQuestProgress
	for k, row := range q.st.quests {
		if k.UserID == userID && periods[k.PeriodKey] {
			row := row
			rows = append(rows, &row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

func (q *queries) MarkQuestClaimed(ctx context.Context, key store.QuestKey) (bool, error) {
	if err := q.s.faultLocked("MarkQuestClaimed"); err != nil {
		return false, err
	}
	row, ok := q.st.quests[key]
	if !ok || !row.Completed || row.Claimed {
		return false, nil
	}
	now := q.s.Now()
	row.Claimed = true
	row.ClaimedAt = &now
	row.UpdatedAt = now
	q.st.quests[key] = row
	return true, nil
}

func (q *queries) DeleteUserQuestProgress(ctx context.Context, userID string) error {
	if err := q.s.faultLocked("DeleteUserQuestProgress"); err != nil {
		return err
	}
	for k := range q.st.quests {
		if k.UserID == userID {
			delete(q.st.quests, k)
		}
	}
	return nil
}

func (q *queries) DeleteStaleQuestProgress(ctx context.Context, currentPeriodKeys []string) (int64, error) {
	if err := q.s.faultLocked("DeleteStaleQuestProgress"); err != nil {
		return 0, err
	}
	current := make(map[string]bool, len(currentPeriodKeys))
	for _, k := range currentPeriodKeys {
		current[k] = true
	}
	var deleted int64
	for k := range q.st.quests {
		if !current[k.PeriodKey] {
			delete(q.st.quests, k)
			deleted++
		}
	}
	return deleted, nil
}

func (q *queries) IncrementAchievement(ctx context.Context, userID, achievementID string, amount int64) (int64, error) {
	if err := q.s.faultLocked("IncrementAchievement"); err != nil {
		return 0, err
	}
	counters, ok := q.st.achievements[userID]
	if !ok {
		counters = make(map[string]int64)
		q.st.achievements[userID] = counters
	}
	counters[achievementID] = store.AddCapped(counters[achievementID], amount)
	return counters[achievementID], nil
}

func (q *queries) ListAchievements(ctx context.Context, userID string) ([]*models.AchievementCounter, error) {
	if err := q.s.faultLocked("ListAchievements"); err != nil {
		return nil, err
	}
	var rows []*models.AchievementCounter
	for id, v := range q.st.achievements[userID] {
		rows = append(rows, &models.AchievementCounter{UserID: userID, AchievementID: id, Value: v})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].AchievementID < rows[j].AchievementID })
	return rows, nil
}

func (q *queries) GetMainQuest(ctx context.Context, userID string) (*models.MainQuestProgress, error) {
	if err := q.s.faultLocked("GetMainQuest"); err != nil {
		return nil, err
	}
	pointer, ok := q.st.mainPointer[userID]
	if !ok {
		pointer = 1
	}
	return &models.MainQuestProgress{
		UserID:         userID,
		CurrentQuestID: pointer,
		Completed:      append([]models.MainQuestCompletion(nil), q.st.completions[userID]...),
		Counters:       cloneMap(q.st.counters[userID]),
	}, nil
}

func (q *queries) SetMainQuestPointer(ctx context.Context, userID string, questID int) error {
	if err := q.s.faultLocked("SetMainQuestPointer"); err != nil {
		return err
	}
	q.st.mainPointer[userID] = questID
	return nil
}

func (q *queries) AddMainQuestCounter(ctx context.Context, userID, key string, amount int64) (int64, error) {
	if err := q.s.faultLocked("AddMainQuestCounter"); err != nil {
		return 0, err
	}
	counters, ok := q.st.counters[userID]
	if !ok {
		counters = make(map[string]int64)
		q.st.counters[userID] = counters
	}
	counters[key] = store.AddCapped(counters[key], amount)
	return counters[key], nil
}

func (q *queries) AppendMainQuestCompletion(ctx context.Context, c *models.MainQuestCompletion) error {
	if err := q.s.faultLocked("AppendMainQuestCompletion"); err != nil {
		return err
	}
	row := *c
	row.ID = q.id()
	if row.CompletedAt.IsZero() {
		row.CompletedAt = q.s.Now()
	}
	q.st.completions[c.UserID] = append(q.st.completions[c.UserID], row)
	return nil
}

func (q *queries) FindInventoryItem(ctx context.Context, userID, itemID string) (*models.UserItem, error) {
	if err := q.s.faultLocked("FindInventoryItem"); err != nil {
		return nil, err
	}
	for _, it := range q.st.items[userID] {
		if it.ItemID == itemID {
			it := it
			return &it, nil
		}
	}
	return nil, store.ErrNotFound
}

func (q *queries) FindProductionItem(ctx context.Context, userID, itemID string) (*models.ProductionAssignment, error) {
	if err := q.s.faultLocked("FindProductionItem"); err != nil {
		return nil, err
	}
	for _, pa := range q.st.production[userID] {
		if pa.ItemID == itemID {
			pa := pa
			return &pa, nil
		}
	}
	return nil, store.ErrNotFound
}

func (q *queries) DeleteAllItems(ctx context.Context, userID string) error {
	if err := q.s.faultLocked("DeleteAllItems"); err != nil {
		return err
	}
	delete(q.st.items, userID)
	return nil
}

func (q *queries) InsertItem(ctx context.Context, item *models.UserItem) error {
	if err := q.s.faultLocked("InsertItem"); err != nil {
		return err
	}
	row := *item
	row.ID = q.id()
	if row.AcquiredAt.IsZero() {
		row.AcquiredAt = q.s.Now()
	}
	q.st.items[item.UserID] = append(q.st.items[item.UserID], row)
	item.ID = row.ID
	return nil
}

func (q *queries) ClearProduction(ctx context.Context, userID string) error {
	if err := q.s.faultLocked("ClearProduction"); err != nil {
		return err
	}
	delete(q.st.production, userID)
	return nil
}

func (q *queries) ResetStructures(ctx context.Context, userID string) error {
	if err := q.s.faultLocked("ResetStructures"); err != nil {
		return err
	}
	structures := q.st.structures[userID]
	for i := range structures {
		structures[i].Level = 1
		structures[i].UpdatedAt = q.s.Now()
	}
	return nil
}

func (q *queries) ClearBoosts(ctx context.Context, userID string) error {
	if err := q.s.faultLocked("ClearBoosts"); err != nil {
		return err
	}
	delete(q.st.boosts, userID)
	return nil
}

func (q *queries) DeleteListings(ctx context.Context, userID string) error {
	if err := q.s.faultLocked("DeleteListings"); err != nil {
		return err
	}
	delete(q.st.listings, userID)
	return nil
}

func (q *queries) ClearCompanions(ctx context.Context, userID string) error {
	if err := q.s.faultLocked("ClearCompanions"); err != nil {
		return err
	}
	delete(q.st.companions, userID)
	return nil
}

func (q *queries) ClearConsumables(ctx context.Context, userID string) error {
	if err := q.s.faultLocked("ClearConsumables"); err != nil {
		return err
	}
	delete(q.st.consumables, userID)
	return nil
}

func (q *queries) CancelPendingTrades(ctx context.Context, userID string) (int64, error) {
	if err := q.s.faultLocked("CancelPendingTrades"); err != nil {
		return 0, err
	}
	var cancelled int64
	for i := range q.st.trades {
		t := &q.st.trades[i]
		if t.Status == models.TradeStatusPending && (t.OffererID == userID || t.TargetID == userID) {
			t.Status = models.TradeStatusCancelled
			t.UpdatedAt = q.s.Now()
			cancelled++
		}
	}
	return cancelled, nil
}

func (q *queries) InsertRebirthRecord(ctx context.Context, r *models.RebirthRecord) error {
	if err := q.s.faultLocked("InsertRebirthRecord"); err != nil {
		return err
	}
	q.st.rebirths = append(q.st.rebirths, *r)
	return nil
}
