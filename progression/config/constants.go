package config

import "time"

// Application-wide constants organized by domain

// EXP curve
const (
	BaseExp  = 100
	ExpScale = 1.12
	MinLevel = 1
	MaxLevel = 150
)

// Rebirth
const (
	RebirthLevelRequirement = 100
	PerRebirthIncrement     = 0.10
)

// Quest periods
const (
	DailyQuestsPerPeriod  = 3
	WeeklyQuestsPerPeriod = 3

	DailyPeriodLayout = "2006-01-02"
)

// Tracking types with special meaning inside the tracker
const (
	TrackingQuestsCompleted = "quests_completed"
	TrackingCommandsUsed    = "commands_used"
)

// Database and Performance Constants
const (
	// Timeouts
	DefaultQueryTimeout = 30 * time.Second
	DefaultTxTimeout    = 30 * time.Second
	UserLockTimeout     = 10 * time.Second
	NetworkDialTimeout  = 5 * time.Second

	// Cache settings
	LeaderboardCacheExpiration = 1 * time.Minute
	LeaderboardCacheSize       = 64
	DefaultLeaderboardLimit    = 10
	MaxLeaderboardLimit        = 100

	// Background jobs
	QuestCleanupInterval = 1 * time.Hour
)
