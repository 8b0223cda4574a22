package models

import (
	"time"

	"github.com/uptrace/bun"
)

type MainQuestState struct {
	bun.BaseModel `bun:"table:main_quest_progress,alias:mqp"`

	UserID         string    `bun:"user_id,pk"`
	CurrentQuestID int       `bun:"current_quest_id,notnull,default:1"`
	UpdatedAt      time.Time `bun:"updated_at,notnull"`
}

type MainQuestCompletion struct {
	bun.BaseModel `bun:"table:main_quest_completions,alias:mqc"`

	ID          int64     `bun:"id,pk,autoincrement"`
	UserID      string    `bun:"user_id,notnull"`
	QuestID     int       `bun:"quest_id,notnull"`
	CompletedAt time.Time `bun:"completed_at,notnull"`
}

// MainQuestCounter is keyed "tracking:<type>" or "command:<name>" and only grows.
type MainQuestCounter struct {
	bun.BaseModel `bun:"table:main_quest_counters,alias:mqk"`

	UserID     string    `bun:"user_id,pk"`
	CounterKey string    `bun:"counter_key,pk"`
	Value      int64     `bun:"value,notnull,default:0"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

// MainQuestProgress is the assembled view of the three main quest tables.
type MainQuestProgress struct {
	UserID         string
	CurrentQuestID int
	Completed      []MainQuestCompletion
	Counters       map[string]int64
}

// Counter key helpers
func TrackingCounterKey(trackingType string) string {
	return "tracking:" + trackingType
}

func CommandCounterKey(command string) string {
	return "command:" + command
}
