package leveling

import (
	"context"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/outcome"
)

//go:generate mockgen -destination=mock/listener.go -package=mock . LevelListener

// LevelListener is notified after a level-up, outside the user lock.
type LevelListener interface {
	CheckLevelQuest(ctx context.Context, userID string, level int)
}

type LevelInfo struct {
	outcome.Outcome
	Level      int   `json:"level"`
	CurrentExp int64 `json:"current_exp"`
	ExpToNext  int64 `json:"exp_to_next"`
	TotalExp   int64 `json:"total_exp"`
	MaxLevel   int   `json:"max_level"`
}

// ExpResult reports an EXP grant. LevelsCrossed is OldLevel+1..NewLevel.
type ExpResult struct {
	outcome.Outcome
	OldLevel      int    `json:"old_level"`
	NewLevel      int    `json:"new_level"`
	TotalExp      int64  `json:"total_exp"`
	LevelsCrossed []int  `json:"levels_crossed,omitempty"`
	Source        string `json:"source,omitempty"`
}

func (r ExpResult) LeveledUp() bool {
	return r.NewLevel > r.OldLevel
}

type MilestoneResult struct {
	outcome.Outcome
	Threshold int           `json:"threshold"`
	Reward    config.Reward `json:"reward"`
}

// ClaimAllResult lists the claims that committed. A failure partway through
// leaves Claimed populated with everything granted before it.
type ClaimAllResult struct {
	outcome.Outcome
	Claimed []MilestoneResult `json:"claimed"`
	Total   config.Reward     `json:"total"`
}

type MilestoneStatus struct {
	Threshold int           `json:"threshold"`
	Reward    config.Reward `json:"reward"`
	Reached   bool          `json:"reached"`
	Claimed   bool          `json:"claimed"`
}

type MilestoneList struct {
	outcome.Outcome
	Milestones []MilestoneStatus `json:"milestones"`
}
