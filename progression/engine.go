package progression

import (
	"time"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/leveling"
	"github.com/ellavondegurechaff/gohye-progression/progression/rebirth"
	"github.com/ellavondegurechaff/gohye-progression/progression/services"
	"github.com/ellavondegurechaff/gohye-progression/progression/store"
	"github.com/ellavondegurechaff/gohye-progression/progression/usermutex"
)

// Engine is the fully wired set of progression services sharing one store and
// one per-user lock table.
type Engine struct {
	Store        store.Store
	Locks        *usermutex.UserMutex
	Calculator   *leveling.Calculator
	Levels       *leveling.Service
	Rebirths     *rebirth.Service
	Quests       *services.QuestService
	MainQuests   *services.MainQuestEngine
	Tracker      *services.QuestTracker
	Leaderboards *services.LeaderboardService
	Profiles     *services.ProfileService
}

// NewEngine wires the services. snapshots may be nil.
func NewEngine(st store.Store, tables *config.Tables, lockTimeout time.Duration, snapshots services.SnapshotCache) *Engine {
	locks := usermutex.New(lockTimeout)
	calc := leveling.NewCalculator(tables)

	mainQuests := services.NewMainQuestEngine(st, locks, calc, tables)
	quests := services.NewQuestService(st, locks, calc, tables, mainQuests)

	return &Engine{
		Store:        st,
		Locks:        locks,
		Calculator:   calc,
		Levels:       leveling.NewService(st, locks, calc, tables, mainQuests),
		Rebirths:     rebirth.NewService(st, locks, calc, tables, mainQuests),
		Quests:       quests,
		MainQuests:   mainQuests,
		Tracker:      services.NewQuestTracker(quests, st, mainQuests, tables),
		Leaderboards: services.NewLeaderboardService(st, calc, snapshots),
		Profiles:     services.NewProfileService(st, calc),
	}
}
