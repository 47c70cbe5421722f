package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeDiv(t *testing.T) {
	tests := []struct {
		name     string
		n, d     float64
		def      float64
		expected float64
	}{
		{"normal division", 10, 4, -1, 2.5},
		{"zero denominator", 10, 0, -1, -1},
		{"nan denominator", 10, math.NaN(), -1, -1},
		{"inf denominator", 10, math.Inf(1), -1, -1},
		{"nan numerator", math.NaN(), 4, -1, -1},
		{"inf numerator", math.Inf(-1), 4, -1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SafeDiv(tt.n, tt.d, tt.def))
		})
	}
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, 3.5, Sanitize(3.5, 0))
	assert.Equal(t, 0.0, Sanitize(math.NaN(), 0))
	assert.Equal(t, 1.0, Sanitize(math.Inf(1), 1))
	assert.Equal(t, 1.0, Sanitize(math.Inf(-1), 1))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
	assert.Equal(t, 0.0, Clamp(-2, 0, 1))
	assert.Equal(t, 1.0, Clamp(7, 0, 1))
}
