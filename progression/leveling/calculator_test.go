package leveling

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ellavondegurechaff/gohye-progression/progression/config"
)

func defaultCalculator() *Calculator {
	return NewCalculator(config.DefaultTables())
}

func TestCalculator_ExpForLevel(t *testing.T) {
	c := defaultCalculator()

	assert.Equal(t, int64(0), c.ExpForLevel(1))
	assert.Equal(t, int64(100), c.ExpForLevel(2))
	assert.Equal(t, int64(112), c.ExpForLevel(3))
	assert.Equal(t, int64(125), c.ExpForLevel(4))
	assert.Equal(t, int64(212), c.TotalExpForLevel(3))
}

func TestCalculator_LevelForExp(t *testing.T) {
	c := defaultCalculator()

	tests := []struct {
		name     string
		totalExp int64
		want     int
	}{
		{name: "zero", totalExp: 0, want: 1},
		{name: "negative", totalExp: -5, want: 1},
		{name: "just below level 2", totalExp: 99, want: 1},
		{name: "exactly level 2", totalExp: 100, want: 2},
		{name: "between 2 and 3", totalExp: 211, want: 2},
		{name: "exactly level 3", totalExp: 212, want: 3},
		{name: "clamped", totalExp: 1 << 60, want: config.MaxLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.LevelForExp(tt.totalExp))
		})
	}
}

func TestCalculator_Monotonic(t *testing.T) {
	c := defaultCalculator()

	prev := c.LevelForExp(0)
	for x := int64(0); x <= c.TotalExpForLevel(40); x += 37 {
		level := c.LevelForExp(x)
		assert.GreaterOrEqual(t, level, prev)
		assert.LessOrEqual(t, level, config.MaxLevel)
		prev = level
	}
}

func TestCalculator_CurveConsistency(t *testing.T) {
	c := defaultCalculator()

	samples := []int64{0, 1, 99, 100, 101, 5000, 123456, c.TotalExpForLevel(config.MaxLevel) - 1}
	for level := 2; level <= config.MaxLevel; level++ {
		samples = append(samples, c.TotalExpForLevel(level), c.TotalExpForLevel(level)-1)
	}

	for _, x := range samples {
		level := c.LevelForExp(x)
		assert.LessOrEqual(t, c.TotalExpForLevel(level), x)
		if level < config.MaxLevel {
			assert.Less(t, x, c.TotalExpForLevel(level+1))
		}
	}
}

func TestCalculator_Info(t *testing.T) {
	c := defaultCalculator()

	info := c.Info(150)
	assert.Equal(t, 2, info.Level)
	assert.Equal(t, int64(50), info.CurrentExp)
	assert.Equal(t, int64(62), info.ExpToNext)

	top := c.Info(c.TotalExpForLevel(config.MaxLevel) + 10)
	assert.Equal(t, config.MaxLevel, top.Level)
	assert.Zero(t, top.ExpToNext)
}
