package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Milestone claim kinds
const (
	MilestoneKindLevel   = "level"
	MilestoneKindRebirth = "rebirth"
)

// MilestoneClaim is append-only. A row means the reward was granted.
type MilestoneClaim struct {
	bun.BaseModel `bun:"table:milestone_claims,alias:mc"`

	ID        int64     `bun:"id,pk,autoincrement"`
	UserID    string    `bun:"user_id,notnull,unique:milestone_claims_user_kind_threshold"`
	Kind      string    `bun:"kind,notnull,unique:milestone_claims_user_kind_threshold"`
	Threshold int       `bun:"threshold,notnull,unique:milestone_claims_user_kind_threshold"`
	ClaimedAt time.Time `bun:"claimed_at,notnull"`
}
