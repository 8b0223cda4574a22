package leveling

import (
	"math"
	"sort"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
)

// Calculator maps total EXP to levels. The cumulative table is built once and
// every lookup is a binary search over it.
type Calculator struct {
	maxLevel   int
	cumulative []int64 // cumulative[L-1] = TotalExpForLevel(L)
}

func NewCalculator(tables *config.Tables) *Calculator {
	maxLevel := max(tables.MaxLevel, config.MinLevel)
	cumulative := make([]int64, maxLevel)
	for level := 2; level <= maxLevel; level++ {
		cumulative[level-1] = cumulative[level-2] + expForLevel(tables.BaseExp, tables.ExpScale, level)
	}
	return &Calculator{maxLevel: maxLevel, cumulative: cumulative}
}

func expForLevel(base, scale float64, level int) int64 {
	if level <= config.MinLevel {
		return 0
	}
	return int64(math.Floor(base * math.Pow(scale, float64(level-2))))
}

func (c *Calculator) MaxLevel() int {
	return c.maxLevel
}

// ExpForLevel is the EXP needed to go from level-1 to level.
func (c *Calculator) ExpForLevel(level int) int64 {
	if level <= config.MinLevel || level > c.maxLevel {
		return 0
	}
	return c.cumulative[level-1] - c.cumulative[level-2]
}

// TotalExpForLevel is the total EXP at which level is reached.
func (c *Calculator) TotalExpForLevel(level int) int64 {
	switch {
	case level <= config.MinLevel:
		return 0
	case level > c.maxLevel:
		return c.cumulative[c.maxLevel-1]
	}
	return c.cumulative[level-1]
}

// LevelForExp returns the greatest level whose total requirement is <= totalExp.
func (c *Calculator) LevelForExp(totalExp int64) int {
	if totalExp <= 0 {
		return config.MinLevel
	}
	idx := sort.Search(len(c.cumulative), func(i int) bool {
		return c.cumulative[i] > totalExp
	})
	return max(idx, config.MinLevel)
}

// Info derives the full level view from a total EXP amount.
func (c *Calculator) Info(totalExp int64) LevelInfo {
	level := c.LevelForExp(totalExp)
	info := LevelInfo{
		Level:      level,
		TotalExp:   totalExp,
		CurrentExp: totalExp - c.TotalExpForLevel(level),
		MaxLevel:   c.maxLevel,
	}
	if level < c.maxLevel {
		info.ExpToNext = c.TotalExpForLevel(level+1) - totalExp
	}
	return info
}
