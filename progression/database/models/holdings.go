package models

import (
	"time"

	"github.com/uptrace/bun"
)

// UserItem is the primary inventory.
type UserItem struct {
	bun.BaseModel `bun:"table:user_items,alias:ui"`

	ID         int64     `bun:"id,pk,autoincrement"`
	UserID     string    `bun:"user_id,notnull"`
	ItemID     string    `bun:"item_id,notnull"`
	Quantity   int64     `bun:"quantity,notnull,default:1"`
	AcquiredAt time.Time `bun:"acquired_at,notnull"`
}

// ProductionAssignment is an item placed into a production (farm) slot.
type ProductionAssignment struct {
	bun.BaseModel `bun:"table:production_assignments,alias:pa"`

	ID         int64     `bun:"id,pk,autoincrement"`
	UserID     string    `bun:"user_id,notnull"`
	Slot       int       `bun:"slot,notnull"`
	ItemID     string    `bun:"item_id,notnull"`
	AssignedAt time.Time `bun:"assigned_at,notnull"`
}

type UserStructure struct {
	bun.BaseModel `bun:"table:user_structures,alias:us"`

	ID          int64     `bun:"id,pk,autoincrement"`
	UserID      string    `bun:"user_id,notnull"`
	StructureID string    `bun:"structure_id,notnull"`
	Level       int       `bun:"level,notnull,default:1"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

type ActiveBoost struct {
	bun.BaseModel `bun:"table:active_boosts,alias:ab"`

	ID         int64     `bun:"id,pk,autoincrement"`
	UserID     string    `bun:"user_id,notnull"`
	BoostID    string    `bun:"boost_id,notnull"`
	Multiplier float64   `bun:"multiplier,notnull"`
	ExpiresAt  time.Time `bun:"expires_at,notnull"`
}

type MarketListing struct {
	bun.BaseModel `bun:"table:market_listings,alias:ml"`

	ID        int64     `bun:"id,pk,autoincrement"`
	SellerID  string    `bun:"seller_id,notnull"`
	ItemID    string    `bun:"item_id,notnull"`
	Price     int64     `bun:"price,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// Companion is an owned pet, or an egg while Incubating is set.
type Companion struct {
	bun.BaseModel `bun:"table:user_companions,alias:uc"`

	ID          int64      `bun:"id,pk,autoincrement"`
	UserID      string     `bun:"user_id,notnull"`
	CompanionID string     `bun:"companion_id,notnull"`
	Incubating  bool       `bun:"incubating,notnull,default:false"`
	HatchAt     *time.Time `bun:"hatch_at"`
}

type Consumable struct {
	bun.BaseModel `bun:"table:user_consumables,alias:ucs"`

	ID       int64  `bun:"id,pk,autoincrement"`
	UserID   string `bun:"user_id,notnull"`
	ItemID   string `bun:"item_id,notnull"`
	Quantity int64  `bun:"quantity,notnull,default:1"`
}

// Trade status constants
const (
	TradeStatusPending   = "pending"
	TradeStatusAccepted  = "accepted"
	TradeStatusCancelled = "cancelled"
)

type Trade struct {
	bun.BaseModel `bun:"table:trades,alias:t"`

	ID        int64     `bun:"id,pk,autoincrement"`
	OffererID string    `bun:"offerer_id,notnull"`
	TargetID  string    `bun:"target_id,notnull"`
	Status    string    `bun:"status,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
