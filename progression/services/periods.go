package services

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
)

// DailyPeriodKey is the UTC calendar date, e.g. 2024-03-09.
func DailyPeriodKey(t time.Time) string {
	return t.UTC().Format(config.DailyPeriodLayout)
}

// WeeklyPeriodKey is the UTC ISO week, e.g. 2024-W10.
func WeeklyPeriodKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func PeriodKey(kind string, t time.Time) string {
	if kind == config.QuestKindWeekly {
		return WeeklyPeriodKey(t)
	}
	return DailyPeriodKey(t)
}

// NextReset returns the start of the next period of the given kind.
func NextReset(kind string, t time.Time) time.Time {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if kind != config.QuestKindWeekly {
		return midnight.AddDate(0, 0, 1)
	}
	days := (8 - int(t.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	return midnight.AddDate(0, 0, days)
}

// rotate picks n quests from pool, seeded by the period key, so every user sees
// the same set within a period. Pool order is preserved.
func rotate(pool []config.EphemeralQuest, n int, periodKey string) []config.EphemeralQuest {
	if n <= 0 {
		return nil
	}
	if n >= len(pool) {
		return append([]config.EphemeralQuest(nil), pool...)
	}

	h := fnv.New64a()
	h.Write([]byte(periodKey))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	picked := make([]bool, len(pool))
	for _, idx := range rng.Perm(len(pool))[:n] {
		picked[idx] = true
	}
	out := make([]config.EphemeralQuest, 0, n)
	for i, q := range pool {
		if picked[i] {
			out = append(out, q)
		}
	}
	return out
}
