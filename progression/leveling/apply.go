package leveling

import (
	"context"
	"fmt"

	"github.com/ellavondegurechaff/gohye-progression/progression/store"
)

// ApplyExp adds amount to the user's total inside an open transaction. It takes
// no lock; callers hold the user's lock and notify listeners after releasing it.
func ApplyExp(ctx context.Context, q store.Queries, calc *Calculator, userID string, amount int64) (ExpResult, error) {
	p, err := q.GetProgression(ctx, userID)
	if err != nil {
		return ExpResult{}, fmt.Errorf("failed to load progression: %w", err)
	}

	oldLevel := calc.LevelForExp(p.TotalExp)
	result := ExpResult{OldLevel: oldLevel, NewLevel: oldLevel, TotalExp: p.TotalExp}
	if amount <= 0 {
		return result, nil
	}

	p.TotalExp = store.AddCapped(p.TotalExp, amount)
	p.Level = calc.LevelForExp(p.TotalExp)
	if err := q.SaveProgression(ctx, p); err != nil {
		return ExpResult{}, fmt.Errorf("failed to save progression: %w", err)
	}

	result.NewLevel = p.Level
	result.TotalExp = p.TotalExp
	for level := oldLevel + 1; level <= p.Level; level++ {
		result.LevelsCrossed = append(result.LevelsCrossed, level)
	}
	return result, nil
}
