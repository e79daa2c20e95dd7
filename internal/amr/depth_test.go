package amr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDepth(t *testing.T) {
	assert.Equal(t, NormalizedDepth(1), NormalizeDepth(0))
	assert.Equal(t, NormalizedDepth(1), NormalizeDepth(-4))
	assert.Equal(t, NormalizedDepth(50), NormalizeDepth(50))
}

func TestNormalizedDepth_Percent(t *testing.T) {
	tests := []struct {
		depth int
		count int
		want  float64
	}{
		{30, 30, 100},
		{50, 10, 20},
		{3, 1, 33.33},
		{3, 2, 66.67},
		{0, 0, 0},
		{7, 1, 14.29},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDepth(tt.depth).Percent(tt.count), "%d/%d", tt.count, tt.depth)
	}
}
