// Package memstore is an in-memory Store. Transactions run against a copy of
// the state that replaces the live state only when the callback succeeds.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ellavondegurechaff/gohye-progression/progression/database/models"
	"github.com/ellavondegurechaff/gohye-progression/progression/store"
)

type claimKey struct {
	userID    string
	kind      string
	threshold int
}

type state struct {
	nextID int64

	progression  map[string]models.UserProgression
	wallets      map[string]models.Wallet
	claims       map[claimKey]models.MilestoneClaim
	quests       map[store.QuestKey]models.EphemeralQuestProgress
	achievements map[string]map[string]int64
	mainPointer  map[string]int
	completions  map[string][]models.MainQuestCompletion
	counters     map[string]map[string]int64

	items       map[string][]models.UserItem
	production  map[string][]models.ProductionAssignment
	structures  map[string][]models.UserStructure
	boosts      map[string][]models.ActiveBoost
	listings    map[string][]models.MarketListing
	companions  map[string][]models.Companion
	consumables map[string][]models.Consumable
	trades      []models.Trade
	rebirths    []models.RebirthRecord
}

func newState() *state {
	return &state{
		progression:  make(map[string]models.UserProgression),
		wallets:      make(map[string]models.Wallet),
		claims:       make(map[claimKey]models.MilestoneClaim),
		quests:       make(map[store.QuestKey]models.EphemeralQuestProgress),
		achievements: make(map[string]map[string]int64),
		mainPointer:  make(map[string]int),
		completions:  make(map[string][]models.MainQuestCompletion),
		counters:     make(map[string]map[string]int64),
		items:        make(map[string][]models.UserItem),
		production:   make(map[string][]models.ProductionAssignment),
		structures:   make(map[string][]models.UserStructure),
		boosts:       make(map[string][]models.ActiveBoost),
		listings:     make(map[string][]models.MarketListing),
		companions:   make(map[string][]models.Companion),
		consumables:  make(map[string][]models.Consumable),
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSlices[K comparable, V any](m map[K][]V) map[K][]V {
	out := make(map[K][]V, len(m))
	for k, v := range m {
		out[k] = append([]V(nil), v...)
	}
	return out
}

func cloneNested(m map[string]map[string]int64) map[string]map[string]int64 {
	out := make(map[string]map[string]int64, len(m))
	for k, v := range m {
		out[k] = cloneMap(v)
	}
	return out
}

func (s *state) clone() *state {
	return &state{
		nextID:       s.nextID,
		progression:  cloneMap(s.progression),
		wallets:      cloneMap(s.wallets),
		claims:       cloneMap(s.claims),
		quests:       cloneMap(s.quests),
		achievements: cloneNested(s.achievements),
		mainPointer:  cloneMap(s.mainPointer),
		completions:  cloneSlices(s.completions),
		counters:     cloneNested(s.counters),
		items:        cloneSlices(s.items),
		production:   cloneSlices(s.production),
		structures:   cloneSlices(s.structures),
		boosts:       cloneSlices(s.boosts),
		listings:     cloneSlices(s.listings),
		companions:   cloneSlices(s.companions),
		consumables:  cloneSlices(s.consumables),
		trades:       append([]models.Trade(nil), s.trades...),
		rebirths:     append([]models.RebirthRecord(nil), s.rebirths...),
	}
}

// Store is safe for concurrent use. All access is serialized.
type Store struct {
	mu     sync.Mutex
	st     *state
	faults map[string]error

	// Now stamps rows. Defaults to time.Now.
	Now func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		st:     newState(),
		faults: make(map[string]error),
		Now:    time.Now,
	}
}

// FailOn makes every call of the named Queries method return err until ClearFaults.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

func (s *Store) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = make(map[string]error)
}

func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, q store.Queries) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.st.clone()
	if err := fn(ctx, &queries{st: working, s: s}); err != nil {
		return err
	}
	s.st = working
	return nil
}

func (s *Store) View(ctx context.Context, fn func(ctx context.Context, q store.Queries) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, &queries{st: s.st, s: s})
}

func (s *Store) TopByLevel(ctx context.Context, limit int) ([]*models.UserProgression, error) {
	return s.top(ctx, limit, func(a, b models.UserProgression) bool {
		if a.Level != b.Level {
			return a.Level > b.Level
		}
		return a.TotalExp > b.TotalExp
	})
}

func (s *Store) TopByRebirth(ctx context.Context, limit int) ([]*models.UserProgression, error) {
	return s.top(ctx, limit, func(a, b models.UserProgression) bool {
		if a.RebirthCount != b.RebirthCount {
			return a.RebirthCount > b.RebirthCount
		}
		if a.Level != b.Level {
			return a.Level > b.Level
		}
		return a.TotalExp > b.TotalExp
	})
}

func (s *Store) top(ctx context.Context, limit int, less func(a, b models.UserProgression) bool) ([]*models.UserProgression, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.fault("Top"); err != nil {
		return nil, err
	}

	s.mu.Lock()
	rows := make([]models.UserProgression, 0, len(s.st.progression))
	for _, p := range s.st.progression {
		rows = append(rows, p)
	}
	s.mu.Unlock()

	sort.SliceStable(rows, func(i, j int) bool {
		if less(rows[i], rows[j]) {
			return true
		}
		if less(rows[j], rows[i]) {
			return false
		}
		return rows[i].UserID < rows[j].UserID
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}

	out := make([]*models.UserProgression, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out, nil
}

func (s *Store) fault(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.faultLocked(op)
}

// faultLocked is used by queries, which always run with s.mu held.
func (s *Store) faultLocked(op string) error {
	if err, ok := s.faults[op]; ok {
		return fmt.Errorf("memstore %s: %w", op, err)
	}
	return nil
}
