package memstore

import (
	"sort"

	"github.com/ellavondegurechaff/gohye-progression/progression/database/models"
)

// Holdings is the seedable slice of a user's economy state.
type Holdings struct {
	Wallet      *models.Wallet
	Items       []models.UserItem
	Production  []models.ProductionAssignment
	Structures  []models.UserStructure
	Boosts      []models.ActiveBoost
	Listings    []models.MarketListing
	Companions  []models.Companion
	Consumables []models.Consumable
	Trades      []models.Trade
}

// Seed writes holdings for userID, replacing whatever was there.
func (s *Store) Seed(userID string, h Holdings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := &queries{st: s.st, s: s}
	if h.Wallet != nil {
		w := *h.Wallet
		w.UserID = userID
		s.st.wallets[userID] = w
	}
	s.st.items[userID] = withIDs(q, h.Items, func(it *models.UserItem, id int64) { it.ID, it.UserID = id, userID })
	s.st.production[userID] = withIDs(q, h.Production, func(p *models.ProductionAssignment, id int64) { p.ID, p.UserID = id, userID })
	s.st.structures[userID] = withIDs(q, h.Structures, func(st *models.UserStructure, id int64) { st.ID, st.UserID = id, userID })
	s.st.boosts[userID] = withIDs(q, h.Boosts, func(b *models.ActiveBoost, id int64) { b.ID, b.UserID = id, userID })
	s.st.listings[userID] = withIDs(q, h.Listings, func(l *models.MarketListing, id int64) { l.ID, l.SellerID = id, userID })
	s.st.companions[userID] = withIDs(q, h.Companions, func(c *models.Companion, id int64) { c.ID, c.UserID = id, userID })
	s.st.consumables[userID] = withIDs(q, h.Consumables, func(c *models.Consumable, id int64) { c.ID, c.UserID = id, userID })
	for _, t := range h.Trades {
		t.ID = q.id()
		s.st.trades = append(s.st.trades, t)
	}
}

func withIDs[T any](q *queries, rows []T, set func(*T, int64)) []T {
	out := append([]T(nil), rows...)
	for i := range out {
		set(&out[i], q.id())
	}
	return out
}

// SeedProgression stores p as is.
func (s *Store) SeedProgression(p models.UserProgression) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.progression[p.UserID] = p
}

// Dump is everything the store holds for one user.
type Dump struct {
	Progression  *models.UserProgression
	Wallet       models.Wallet
	Claims       []models.MilestoneClaim
	Quests       []models.EphemeralQuestProgress
	Achievements map[string]int64
	MainPointer  int
	Completions  []models.MainQuestCompletion
	Counters     map[string]int64
	Holdings     Holdings
	Rebirths     []models.RebirthRecord
}

// Dump returns a copy of the user's rows in a stable order.
func (s *Store) Dump(userID string) Dump {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.st.clone()
	d := Dump{
		Wallet:       st.wallets[userID],
		Achievements: st.achievements[userID],
		MainPointer:  st.mainPointer[userID],
		Completions:  st.completions[userID],
		Counters:     st.counters[userID],
		Holdings: Holdings{
			Items:       st.items[userID],
			Production:  st.production[userID],
			Structures:  st.structures[userID],
			Boosts:      st.boosts[userID],
			Listings:    st.listings[userID],
			Companions:  st.companions[userID],
			Consumables: st.consumables[userID],
		},
	}
	if p, ok := st.progression[userID]; ok {
		d.Progression = &p
	}
	for k, c := range st.claims {
		if k.userID == userID {
			d.Claims = append(d.Claims, c)
		}
	}
	sort.Slice(d.Claims, func(i, j int) bool { return d.Claims[i].ID < d.Claims[j].ID })
	for k, row := range st.quests {
		if k.UserID == userID {
			d.Quests = append(d.Quests, row)
		}
	}
	sort.Slice(d.Quests, func(i, j int) bool { return d.Quests[i].ID < d.Quests[j].ID })
	for _, t := range st.trades {
		if t.OffererID == userID || t.TargetID == userID {
			d.Holdings.Trades = append(d.Holdings.Trades, t)
		}
	}
	for _, r := range st.rebirths {
		if r.UserID == userID {
			d.Rebirths = append(d.Rebirths, r)
		}
	}
	return d
}
