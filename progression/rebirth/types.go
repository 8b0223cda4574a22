package rebirth

import (
	"context"

	"github.com/ellavondegurechaff/gohye-progression/progression/outcome"
)

//go:generate mockgen -destination=mock/listener.go -package=mock . RebirthListener

// RebirthListener is notified after a rebirth commits, outside the user lock.
type RebirthListener interface {
	CheckRebirthQuest(ctx context.Context, userID string, rebirthCount int)
}

type Status struct {
	outcome.Outcome
	RebirthCount   int     `json:"rebirth_count"`
	Level          int     `json:"level"`
	RequiredLevel  int     `json:"required_level"`
	CanRebirth     bool    `json:"can_rebirth"`
	Multiplier     float64 `json:"multiplier"`
	NextMultiplier float64 `json:"next_multiplier"`
}

type Result struct {
	outcome.Outcome
	RecordID        string  `json:"record_id,omitempty"`
	OldRebirthCount int     `json:"old_rebirth_count"`
	NewRebirthCount int     `json:"new_rebirth_count"`
	Multiplier      float64 `json:"multiplier"`
	KeptItemID      string  `json:"kept_item_id,omitempty"`
	CancelledTrades int64   `json:"cancelled_trades"`
}
