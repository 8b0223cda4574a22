package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
	"github.com/ellavondegurechaff/gohye-progression/progression/database/models"
	"github.com/ellavondegurechaff/gohye-progression/progression/store"
)

// ProgressionStore is the PostgreSQL Store.
type ProgressionStore struct {
	db           *bun.DB
	queryTimeout time.Duration
	txTimeout    time.Duration
}

var _ store.Store = (*ProgressionStore)(nil)

func NewProgressionStore(db *bun.DB) *ProgressionStore {
	return &ProgressionStore{
		db:           db,
		queryTimeout: config.DefaultQueryTimeout,
		txTimeout:    config.DefaultTxTimeout,
	}
}

func (s *ProgressionStore) RunInTx(ctx context.Context, fn func(ctx context.Context, q store.Queries) error) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	err := s.db.RunInTx(timeoutCtx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &queries{db: tx, forUpdate: true})
	})
	var repoErr *RepositoryError
	if err == nil || errors.As(err, &repoErr) || classify(err) == nil {
		return err
	}
	return handleError("transaction", "progression", err)
}

func (s *ProgressionStore) View(ctx context.Context, fn func(ctx context.Context, q store.Queries) error) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	return fn(timeoutCtx, &queries{db: s.db})
}

func (s *ProgressionStore) TopByLevel(ctx context.Context, limit int) ([]*models.UserProgression, error) {
	return s.top(ctx, limit, "up.level DESC", "up.total_exp DESC", "up.user_id ASC")
}

func (s *ProgressionStore) TopByRebirth(ctx context.Context, limit int) ([]*models.UserProgression, error) {
	return s.top(ctx, limit, "up.rebirth_count DESC", "up.level DESC", "up.total_exp DESC", "up.user_id ASC")
}

func (s *ProgressionStore) top(ctx context.Context, limit int, orders ...string) ([]*models.UserProgression, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var rows []*models.UserProgression
	err := s.db.NewSelect().
		Model(&rows).
		Order(orders...).
		Limit(limit).
		Scan(timeoutCtx)
	if err != nil {
		return nil, handleError("top", "user_progression", err)
	}
	return rows, nil
}

// queries runs against either the pool or an open transaction.
type queries struct {
	db        bun.IDB
	forUpdate bool
}

func (q *queries) lock(sel *bun.SelectQuery) *bun.SelectQuery {
	if q.forUpdate {
		return sel.For("UPDATE")
	}
	return sel
}
