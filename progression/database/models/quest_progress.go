package models

import (
	"time"

	"github.com/uptrace/bun"
)

// EphemeralQuestProgress is one row per (user, quest, period). Rows of past
// periods are discarded, never migrated.
type EphemeralQuestProgress struct {
	bun.BaseModel `bun:"table:ephemeral_quest_progress,alias:eqp"`

	ID          int64      `bun:"id,pk,autoincrement"`
	UserID      string     `bun:"user_id,notnull,unique:eqp_user_quest_period"`
	QuestID     string     `bun:"quest_id,notnull,unique:eqp_user_quest_period"`
	PeriodKey   string     `bun:"period_key,notnull,unique:eqp_user_quest_period"`
	Kind        string     `bun:"kind,notnull"`
	Progress    int64      `bun:"progress,notnull,default:0"`
	Goal        int64      `bun:"goal,notnull"`
	Completed   bool       `bun:"completed,notnull,default:false"`
	Claimed     bool       `bun:"claimed,notnull,default:false"`
	CompletedAt *time.Time `bun:"completed_at"`
	ClaimedAt   *time.Time `bun:"claimed_at"`
	CreatedAt   time.Time  `bun:"created_at,notnull"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull"`
}

// GetProgressPercentage returns the current progress as a percentage
func (q *EphemeralQuestProgress) GetProgressPercentage() float64 {
	if q.Goal <= 0 {
		return 0
	}

	percentage := float64(q.Progress) / float64(q.Goal) * 100
	if percentage > 100 {
		percentage = 100
	}

	return percentage
}

// AchievementCounter is a lifetime counter. It is never saturated or reset.
type AchievementCounter struct {
	bun.BaseModel `bun:"table:achievement_counters,alias:ac"`

	UserID        string    `bun:"user_id,pk"`
	AchievementID string    `bun:"achievement_id,pk"`
	Value         int64     `bun:"value,notnull,default:0"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`
}
