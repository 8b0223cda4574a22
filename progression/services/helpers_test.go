package services

import (
	"testing"
	"time"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/leveling"
	"github.com/ellavondegurechaff/gohye-progression/progression/store/memstore"
	"github.com/ellavondegurechaff/gohye-progression/progression/usermutex"
)

var testNow = time.Date(2024, time.March, 9, 12, 0, 0, 0, time.UTC)

func testTables() *config.Tables {
	tables := config.DefaultTables()
	tables.DailyQuestPool = []config.EphemeralQuest{
		{ID: "d_rolls", Kind: config.QuestKindDaily, Name: "Roller", TrackingType: "rolls", Goal: 5, Reward: config.Reward{Coins: 100, Exp: 150}},
		{ID: "d_harvest", Kind: config.QuestKindDaily, Name: "Harvester", TrackingType: "harvests", Goal: 2, Reward: config.Reward{Coins: 40, Gems: 3}},
	}
	tables.WeeklyQuestPool = []config.EphemeralQuest{
		{ID: "w_quests", Kind: config.QuestKindWeekly, Name: "Quest Hunter", TrackingType: config.TrackingQuestsCompleted, Goal: 1, Reward: config.Reward{Gems: 10}},
	}
	tables.DailyQuestsPerPeriod = 3
	tables.WeeklyQuestsPerPeriod = 3
	tables.MainQuests = []config.MainQuest{
		{ID: 1, Name: "Roll", Difficulty: config.DifficultyEasy, Requirement: config.MainQuestRequirement{Kind: config.RequirementTracking, Target: "rolls", Count: 10}, Reward: config.Reward{Exp: 100, Coins: 50}},
		{ID: 2, Name: "Grow", Difficulty: config.DifficultyNormal, Requirement: config.MainQuestRequirement{Kind: config.RequirementLevel, Count: 2}, Reward: config.Reward{Exp: 80, Gems: 5}},
		{ID: 3, Name: "Look", Difficulty: config.DifficultyHard, Requirement: config.MainQuestRequirement{Kind: config.RequirementCommand, Target: "profile", Count: 2}, Reward: config.Reward{Exp: 10}},
		{ID: 4, Name: "Again", Difficulty: config.DifficultyExpert, Requirement: config.MainQuestRequirement{Kind: config.RequirementRebirth, Count: 1}, Reward: config.Reward{Coins: 1}},
	}
	return tables
}

type fixture struct {
	st      *memstore.Store
	calc    *leveling.Calculator
	tables  *config.Tables
	quests  *QuestService
	engine  *MainQuestEngine
	tracker *QuestTracker
}

func newFixture(t *testing.T, listener leveling.LevelListener) *fixture {
	t.Helper()
	tables := testTables()
	calc := leveling.NewCalculator(tables)
	st := memstore.New()
	locks := usermutex.New(time.Second)

	engine := NewMainQuestEngine(st, locks, calc, tables)
	if listener == nil {
		listener = engine
	}
	quests := NewQuestService(st, locks, calc, tables, listener)
	quests.Now = func() time.Time { return testNow }

	return &fixture{
		st:      st,
		calc:    calc,
		tables:  tables,
		quests:  quests,
		engine:  engine,
		tracker: NewQuestTracker(quests, st, engine, tables),
	}
}

func questRow(d memstore.Dump, questID string) (progress int64, completed, claimed, found bool) {
	for _, row := range d.Quests {
		if row.QuestID == questID {
			return row.Progress, row.Completed, row.Claimed, true
		}
	}
	return 0, false, false, false
}
