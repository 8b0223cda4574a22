// Package store defines the persistence contract of the progression engine.
//
// Every multi-row mutation runs through Store.RunInTx. Queries handed to the
// callback observe their own writes and are discarded as a unit on error.
package store

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/database/models"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrConflict    = errors.New("record already exists")
	ErrUnavailable = errors.New("store unavailable")
)

// QuestKey identifies one ephemeral quest row.
type QuestKey struct {
	UserID    string
	QuestID   string
	PeriodKey string
}

// QuestUpdate reports the state of a quest row after a progress write.
type QuestUpdate struct {
	Progress       int64
	Goal           int64
	Completed      bool
	NewlyCompleted bool
}

// AddCapped returns total+amount, saturating at math.MaxInt64. Both operands
// are non-negative.
func AddCapped(total, amount int64) int64 {
	if amount > math.MaxInt64-total {
		return math.MaxInt64
	}
	return total + amount
}

// AdvanceQuest moves row to next, clamped to [0, goal]. Completed rows are
// frozen. It marks the row completed the first time progress reaches goal.
func AdvanceQuest(row *models.EphemeralQuestProgress, goal, next int64, now time.Time) QuestUpdate {
	row.Goal = goal
	if row.Completed {
		return QuestUpdate{Progress: row.Progress, Goal: goal, Completed: true}
	}

	row.Progress = max(0, min(next, goal))
	row.UpdatedAt = now
	update := QuestUpdate{Progress: row.Progress, Goal: goal}
	if row.Progress >= goal {
		row.Completed = true
		row.CompletedAt = &now
		update.Completed = true
		update.NewlyCompleted = true
	}
	return update
}

// Queries is the set of operations available inside and outside a transaction.
type Queries interface {
	// GetProgression returns the implicit level 1 state for unknown users.
	GetProgression(ctx context.Context, userID string) (*models.UserProgression, error)
	SaveProgression(ctx context.Context, p *models.UserProgression) error

	// GetWallet returns an empty wallet for unknown users.
	GetWallet(ctx context.Context, userID string) (*models.Wallet, error)
	CreditWallet(ctx context.Context, userID string, reward config.Reward) error
	ResetWallet(ctx context.Context, userID string) error

	HasMilestoneClaim(ctx context.Context, userID, kind string, threshold int) (bool, error)
	// InsertMilestoneClaim returns ErrConflict when the claim already exists.
	InsertMilestoneClaim(ctx context.Context, claim *models.MilestoneClaim) error
	ListMilestoneClaims(ctx context.Context, userID, kind string) ([]int, error)

	// IncrementQuestProgress adds increment to the row, saturating at goal.
	IncrementQuestProgress(ctx context.Context, key QuestKey, kind string, increment, goal int64) (QuestUpdate, error)
	// SetQuestProgress overwrites the row with value, saturating at goal.
	SetQuestProgress(ctx context.Context, key QuestKey, kind string, value, goal int64) (QuestUpdate, error)
	ListQuestProgress(ctx context.Context, userID string, periodKeys []string) ([]*models.EphemeralQuestProgress, error)
	// MarkQuestClaimed flips a completed, unclaimed row to claimed and reports whether it did.
	MarkQuestClaimed(ctx context.Context, key QuestKey) (bool, error)
	DeleteUserQuestProgress(ctx context.Context, userID string) error
	DeleteStaleQuestProgress(ctx context.Context, currentPeriodKeys []string) (int64, error)

	IncrementAchievement(ctx context.Context, userID, achievementID string, amount int64) (int64, error)
	ListAchievements(ctx context.Context, userID string) ([]*models.AchievementCounter, error)

	// GetMainQuest returns pointer 1 with no counters for unknown users.
	GetMainQuest(ctx context.Context, userID string) (*models.MainQuestProgress, error)
	SetMainQuestPointer(ctx context.Context, userID string, questID int) error
	AddMainQuestCounter(ctx context.Context, userID, key string, amount int64) (int64, error)
	AppendMainQuestCompletion(ctx context.Context, c *models.MainQuestCompletion) error

	FindInventoryItem(ctx context.Context, userID, itemID string) (*models.UserItem, error)
	FindProductionItem(ctx context.Context, userID, itemID string) (*models.ProductionAssignment, error)
	DeleteAllItems(ctx context.Context, userID string) error
	InsertItem(ctx context.Context, item *models.UserItem) error
	ClearProduction(ctx context.Context, userID string) error
	ResetStructures(ctx context.Context, userID string) error
	ClearBoosts(ctx context.Context, userID string) error
	DeleteListings(ctx context.Context, userID string) error
	ClearCompanions(ctx context.Context, userID string) error
	ClearConsumables(ctx context.Context, userID string) error
	CancelPendingTrades(ctx context.Context, userID string) (int64, error)
	InsertRebirthRecord(ctx context.Context, r *models.RebirthRecord) error
}

// Store is the ProgressionStore.
type Store interface {
	// RunInTx commits when fn returns nil and rolls back otherwise.
	RunInTx(ctx context.Context, fn func(ctx context.Context, q Queries) error) error
	// View runs fn against committed state without opening a transaction.
	View(ctx context.Context, fn func(ctx context.Context, q Queries) error) error

	TopByLevel(ctx context.Context, limit int) ([]*models.UserProgression, error)
	TopByRebirth(ctx context.Context, limit int) ([]*models.UserProgression, error)
}
