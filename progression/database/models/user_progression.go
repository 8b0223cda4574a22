package models

import (
	"time"

	"github.com/uptrace/bun"
)

type UserProgression struct {
	bun.BaseModel `bun:"table:user_progression,alias:up"`

	UserID        string     `bun:"user_id,pk"`
	TotalExp      int64      `bun:"total_exp,notnull,default:0"`
	Level         int        `bun:"level,notnull,default:1"`
	RebirthCount  int        `bun:"rebirth_count,notnull,default:0"`
	LastRebirthAt *time.Time `bun:"last_rebirth_at"`
	CreatedAt     time.Time  `bun:"created_at,notnull"`
	UpdatedAt     time.Time  `bun:"updated_at,notnull"`
}

// NewUserProgression returns the implicit state of a user that has never been persisted.
func NewUserProgression(userID string) *UserProgression {
	now := time.Now()
	return &UserProgression{
		UserID:    userID,
		Level:     1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type Wallet struct {
	bun.BaseModel `bun:"table:user_wallets,alias:uw"`

	UserID    string    `bun:"user_id,pk"`
	Coins     int64     `bun:"coins,notnull,default:0"`
	Gems      int64     `bun:"gems,notnull,default:0"`
	Tickets   int64     `bun:"tickets,notnull,default:0"`
	Tokens    int64     `bun:"tokens,notnull,default:0"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

type RebirthRecord struct {
	bun.BaseModel `bun:"table:rebirth_records,alias:rr"`

	ID           string    `bun:"id,pk"`
	UserID       string    `bun:"user_id,notnull"`
	RebirthCount int       `bun:"rebirth_count,notnull"`
	KeptItemID   string    `bun:"kept_item_id"`
	Multiplier   float64   `bun:"multiplier,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
}
