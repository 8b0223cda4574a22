package services

import (
	"time"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/leveling"
	"github.com/ellavondegurechaff/gohye-progression/progression/outcome"
)

// Quest scopes accepted by UpdateQuestProgressDirect
const (
	ScopeDaily  = "daily"
	ScopeWeekly = "weekly"
	ScopeAll    = "all"
)

type QuestView struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Kind         string        `json:"kind"`
	TrackingType string        `json:"tracking_type"`
	PeriodKey    string        `json:"period_key"`
	Progress     int64         `json:"progress"`
	Goal         int64         `json:"goal"`
	Percentage   float64       `json:"percentage"`
	Completed    bool          `json:"completed"`
	Claimed      bool          `json:"claimed"`
	Reward       config.Reward `json:"reward"`
}

type QuestStatus struct {
	outcome.Outcome
	Daily         []QuestView `json:"daily"`
	Weekly        []QuestView `json:"weekly"`
	DailyResetAt  time.Time   `json:"daily_reset_at"`
	WeeklyResetAt time.Time   `json:"weekly_reset_at"`
	Unclaimed     int         `json:"unclaimed"`
}

type QuestClaimResult struct {
	outcome.Outcome
	Claimed []string           `json:"claimed"`
	Reward  config.Reward      `json:"reward"`
	Exp     leveling.ExpResult `json:"exp"`
}

// TrackResult summarizes one tracking event across every branch it reached.
type TrackResult struct {
	outcome.Outcome
	NewlyCompleted []string         `json:"newly_completed,omitempty"`
	MainQuest      *MainQuestResult `json:"main_quest,omitempty"`
	Achievements   map[string]int64 `json:"achievements,omitempty"`
	Derived        *TrackResult     `json:"derived,omitempty"`
}

type CompletedMainQuest struct {
	QuestID int           `json:"quest_id"`
	Name    string        `json:"name"`
	Reward  config.Reward `json:"reward"`
}

type MainQuestResult struct {
	outcome.Outcome
	CurrentQuestID int                  `json:"current_quest_id"`
	AllComplete    bool                 `json:"all_complete"`
	Completed      []CompletedMainQuest `json:"completed,omitempty"`
	Exp            leveling.ExpResult   `json:"exp"`
}

type MainQuestStatus struct {
	outcome.Outcome
	CurrentQuestID int               `json:"current_quest_id"`
	AllComplete    bool              `json:"all_complete"`
	Quest          *config.MainQuest `json:"quest,omitempty"`
	Progress       int64             `json:"progress"`
	Required       int64             `json:"required"`
	Completed      []int             `json:"completed"`
	TotalQuests    int               `json:"total_quests"`
}

type LeaderboardEntry struct {
	Rank         int    `json:"rank"`
	UserID       string `json:"user_id"`
	Level        int    `json:"level"`
	TotalExp     int64  `json:"total_exp"`
	RebirthCount int    `json:"rebirth_count"`
}

type Leaderboard struct {
	outcome.Outcome
	Kind    string             `json:"kind"`
	Entries []LeaderboardEntry `json:"entries"`
}
