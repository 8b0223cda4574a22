package store

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddCapped(t *testing.T) {
	tests := []struct {
		name          string
		total, amount int64
		want          int64
	}{
		{"plain", 3, 4, 7},
		{"zero", 0, 0, 0},
		{"exactly max", math.MaxInt64 - 1, 1, math.MaxInt64},
		{"overflow", 3, math.MaxInt64, math.MaxInt64},
		{"at max", math.MaxInt64, 10, math.MaxInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddCapped(tt.total, tt.amount))
		})
	}
}
