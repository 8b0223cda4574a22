package config

// Reward is granted by milestones and quests. Exp is only used by quest rewards.
type Reward struct {
	Coins   int64 `json:"coins,omitempty" toml:"coins"`
	Gems    int64 `json:"gems,omitempty" toml:"gems"`
	Tickets int64 `json:"tickets,omitempty" toml:"tickets"`
	Exp     int64 `json:"exp,omitempty" toml:"exp"`
}

// IsZero reports whether the reward grants nothing.
func (r Reward) IsZero() bool {
	return r.Coins == 0 && r.Gems == 0 && r.Tickets == 0 && r.Exp == 0
}

// Add returns the sum of two rewards.
func (r Reward) Add(o Reward) Reward {
	return Reward{
		Coins:   r.Coins + o.Coins,
		Gems:    r.Gems + o.Gems,
		Tickets: r.Tickets + o.Tickets,
		Exp:     r.Exp + o.Exp,
	}
}

type Milestone struct {
	Threshold int
	Reward    Reward
}

// LevelMilestones are ordered by level.
var LevelMilestones = []Milestone{
	{Threshold: 5, Reward: Reward{Coins: 2500, Gems: 100}},
	{Threshold: 10, Reward: Reward{Coins: 10000, Gems: 1000}},
	{Threshold: 20, Reward: Reward{Coins: 20000, Gems: 1500, Tickets: 1}},
	{Threshold: 25, Reward: Reward{Coins: 25000, Gems: 1500}},
	{Threshold: 30, Reward: Reward{Coins: 35000, Gems: 2000, Tickets: 1}},
	{Threshold: 40, Reward: Reward{Coins: 50000, Gems: 2500, Tickets: 2}},
	{Threshold: 50, Reward: Reward{Coins: 75000, Gems: 5000, Tickets: 3}},
	{Threshold: 60, Reward: Reward{Coins: 100000, Gems: 6000, Tickets: 3}},
	{Threshold: 75, Reward: Reward{Coins: 150000, Gems: 8000, Tickets: 4}},
	{Threshold: 90, Reward: Reward{Coins: 200000, Gems: 10000, Tickets: 5}},
	{Threshold: 100, Reward: Reward{Coins: 300000, Gems: 15000, Tickets: 8}},
	{Threshold: 125, Reward: Reward{Coins: 500000, Gems: 25000, Tickets: 10}},
	{Threshold: 150, Reward: Reward{Coins: 1000000, Gems: 50000, Tickets: 20}},
}

// RebirthMilestones are ordered by rebirth count.
var RebirthMilestones = []Milestone{
	{Threshold: 1, Reward: Reward{Gems: 5000, Tickets: 5}},
	{Threshold: 3, Reward: Reward{Gems: 10000, Tickets: 10}},
	{Threshold: 5, Reward: Reward{Gems: 20000, Tickets: 15}},
	{Threshold: 10, Reward: Reward{Gems: 50000, Tickets: 30}},
	{Threshold: 15, Reward: Reward{Gems: 75000, Tickets: 40}},
	{Threshold: 25, Reward: Reward{Gems: 150000, Tickets: 75}},
}

// AchievementTracking maps a tracking type to the lifetime achievement counter it feeds.
var AchievementTracking = map[string]string{
	"rolls":                 "gacha_addict",
	"items_collected":       "collector",
	"trades":                "trader",
	"market_sales":          "merchant",
	"harvests":              "farmer",
	"structures_upgraded":   "architect",
	"companions_hatched":    "beast_tamer",
	"boosts_used":           "overclocked",
	"coins_earned":          "tycoon",
	TrackingQuestsCompleted: "quest_master",
	TrackingCommandsUsed:    "regular",
}

// Ephemeral quest kinds
const (
	QuestKindDaily  = "daily"
	QuestKindWeekly = "weekly"
)

type EphemeralQuest struct {
	ID           string
	Kind         string
	Name         string
	TrackingType string
	Goal         int64
	Reward       Reward
}

var DailyQuestPool = []EphemeralQuest{
	{ID: "daily_roller", Kind: QuestKindDaily, Name: "Roller", TrackingType: "rolls", Goal: 5, Reward: Reward{Coins: 1500, Exp: 150}},
	{ID: "daily_high_roller", Kind: QuestKindDaily, Name: "High Roller", TrackingType: "rolls", Goal: 25, Reward: Reward{Coins: 4000, Gems: 50, Exp: 400}},
	{ID: "daily_harvester", Kind: QuestKindDaily, Name: "Harvester", TrackingType: "harvests", Goal: 3, Reward: Reward{Coins: 2000, Exp: 200}},
	{ID: "daily_trader", Kind: QuestKindDaily, Name: "Friendly Trader", TrackingType: "trades", Goal: 1, Reward: Reward{Coins: 2500, Gems: 25, Exp: 250}},
	{ID: "daily_merchant", Kind: QuestKindDaily, Name: "Market Stall", TrackingType: "market_sales", Goal: 2, Reward: Reward{Coins: 3000, Exp: 250}},
	{ID: "daily_builder", Kind: QuestKindDaily, Name: "Builder", TrackingType: "structures_upgraded", Goal: 1, Reward: Reward{Coins: 2000, Exp: 200}},
	{ID: "daily_busy", Kind: QuestKindDaily, Name: "Busy Day", TrackingType: TrackingCommandsUsed, Goal: 20, Reward: Reward{Coins: 1500, Exp: 150}},
}

var WeeklyQuestPool = []EphemeralQuest{
	{ID: "weekly_roller", Kind: QuestKindWeekly, Name: "Weekly Roller", TrackingType: "rolls", Goal: 100, Reward: Reward{Coins: 15000, Gems: 300, Exp: 1500}},
	{ID: "weekly_quester", Kind: QuestKindWeekly, Name: "Quest Hunter", TrackingType: TrackingQuestsCompleted, Goal: 10, Reward: Reward{Coins: 20000, Gems: 500, Exp: 2000}},
	{ID: "weekly_farmer", Kind: QuestKindWeekly, Name: "Farm Hand", TrackingType: "harvests", Goal: 20, Reward: Reward{Coins: 12000, Gems: 200, Exp: 1200}},
	{ID: "weekly_hatcher", Kind: QuestKindWeekly, Name: "Hatchery", TrackingType: "companions_hatched", Goal: 2, Reward: Reward{Coins: 10000, Gems: 400, Exp: 1000}},
	{ID: "weekly_collector", Kind: QuestKindWeekly, Name: "Collector", TrackingType: "items_collected", Goal: 50, Reward: Reward{Coins: 15000, Gems: 300, Exp: 1500}},
}

// Main quest requirement kinds
const (
	RequirementCommand  = "command"
	RequirementTracking = "tracking"
	RequirementLevel    = "level"
	RequirementRebirth  = "rebirth"
)

// Main quest difficulties
const (
	DifficultyEasy   = "easy"
	DifficultyNormal = "normal"
	DifficultyHard   = "hard"
	DifficultyExpert = "expert"
)

var DifficultyExpMultiplier = map[string]float64{
	DifficultyEasy:   1.0,
	DifficultyNormal: 1.25,
	DifficultyHard:   1.5,
	DifficultyExpert: 2.0,
}

type MainQuestRequirement struct {
	Kind   string
	Target string // command name or tracking type, empty for level/rebirth
	Count  int64
}

type MainQuest struct {
	ID          int
	Name        string
	Difficulty  string
	Requirement MainQuestRequirement
	Reward      Reward
}

// MainQuests is the ordered main quest line. Ids are 1..N without gaps.
var MainQuests = []MainQuest{
	{ID: 1, Name: "First Steps", Difficulty: DifficultyEasy, Requirement: MainQuestRequirement{Kind: RequirementCommand, Target: "profile", Count: 1}, Reward: Reward{Exp: 100, Coins: 500}},
	{ID: 2, Name: "Try Your Luck", Difficulty: DifficultyEasy, Requirement: MainQuestRequirement{Kind: RequirementTracking, Target: "rolls", Count: 10}, Reward: Reward{Exp: 150, Coins: 1000}},
	{ID: 3, Name: "Getting Started", Difficulty: DifficultyEasy, Requirement: MainQuestRequirement{Kind: RequirementLevel, Count: 5}, Reward: Reward{Exp: 200, Coins: 1500}},
	{ID: 4, Name: "Green Thumb", Difficulty: DifficultyNormal, Requirement: MainQuestRequirement{Kind: RequirementTracking, Target: "harvests", Count: 10}, Reward: Reward{Exp: 400, Coins: 3000, Gems: 50}},
	{ID: 5, Name: "Daily Routine", Difficulty: DifficultyNormal, Requirement: MainQuestRequirement{Kind: RequirementCommand, Target: "daily", Count: 3}, Reward: Reward{Exp: 400, Coins: 3000}},
	{ID: 6, Name: "Gacha Regular", Difficulty: DifficultyNormal, Requirement: MainQuestRequirement{Kind: RequirementTracking, Target: "rolls", Count: 100}, Reward: Reward{Exp: 800, Coins: 6000, Gems: 100}},
	{ID: 7, Name: "Rising Star", Difficulty: DifficultyNormal, Requirement: MainQuestRequirement{Kind: RequirementLevel, Count: 20}, Reward: Reward{Exp: 1000, Coins: 10000, Gems: 150}},
	{ID: 8, Name: "Open For Business", Difficulty: DifficultyHard, Requirement: MainQuestRequirement{Kind: RequirementTracking, Target: "market_sales", Count: 10}, Reward: Reward{Exp: 1500, Coins: 15000, Gems: 200}},
	{ID: 9, Name: "Quest Enthusiast", Difficulty: DifficultyHard, Requirement: MainQuestRequirement{Kind: RequirementTracking, Target: TrackingQuestsCompleted, Count: 25}, Reward: Reward{Exp: 2000, Coins: 20000, Gems: 300}},
	{ID: 10, Name: "Veteran", Difficulty: DifficultyHard, Requirement: MainQuestRequirement{Kind: RequirementLevel, Count: 50}, Reward: Reward{Exp: 5000, Coins: 50000, Gems: 500}},
	{ID: 11, Name: "Centurion", Difficulty: DifficultyExpert, Requirement: MainQuestRequirement{Kind: RequirementLevel, Count: 100}, Reward: Reward{Exp: 10000, Coins: 100000, Gems: 1000}},
	{ID: 12, Name: "Born Again", Difficulty: DifficultyExpert, Requirement: MainQuestRequirement{Kind: RequirementRebirth, Count: 1}, Reward: Reward{Exp: 5000, Coins: 50000, Gems: 2000}},
	{ID: 13, Name: "Eternal Cycle", Difficulty: DifficultyExpert, Requirement: MainQuestRequirement{Kind: RequirementRebirth, Count: 5}, Reward: Reward{Exp: 20000, Coins: 250000, Gems: 10000}},
}

// Tables bundles the static configuration consumed by the services. Tests build
// their own Tables to pin curve constants and quest lines.
type Tables struct {
	BaseExp  float64
	ExpScale float64
	MaxLevel int

	RebirthLevelRequirement int
	PerRebirthIncrement     float64

	LevelMilestones   []Milestone
	RebirthMilestones []Milestone

	AchievementTracking map[string]string

	DailyQuestPool        []EphemeralQuest
	WeeklyQuestPool       []EphemeralQuest
	DailyQuestsPerPeriod  int
	WeeklyQuestsPerPeriod int

	MainQuests []MainQuest
}

func DefaultTables() *Tables {
	return &Tables{
		BaseExp:                 BaseExp,
		ExpScale:                ExpScale,
		MaxLevel:                MaxLevel,
		RebirthLevelRequirement: RebirthLevelRequirement,
		PerRebirthIncrement:     PerRebirthIncrement,
		LevelMilestones:         LevelMilestones,
		RebirthMilestones:       RebirthMilestones,
		AchievementTracking:     AchievementTracking,
		DailyQuestPool:          DailyQuestPool,
		WeeklyQuestPool:         WeeklyQuestPool,
		DailyQuestsPerPeriod:    DailyQuestsPerPeriod,
		WeeklyQuestsPerPeriod:   WeeklyQuestsPerPeriod,
		MainQuests:              MainQuests,
	}
}

// FindMilestone returns the milestone defined for threshold, if any.
func FindMilestone(milestones []Milestone, threshold int) (Milestone, bool) {
	for _, m := range milestones {
		if m.Threshold == threshold {
			return m, true
		}
	}
	return Milestone{}, false
}
