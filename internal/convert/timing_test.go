package convert

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameDelayMS(t *testing.T) {
	tests := []struct {
		name     string
		ticks    float64
		anim     *AnimationInfo
		expected int
	}{
		{
			name:     "30fps three ticks",
			ticks:    3,
			anim:     &AnimationInfo{TPS: Rational{Num: 30, Den: 1}},
			expected: 100,
		},
		{
			name:     "sub-floor delay computes raw value",
			ticks:    0.05,
			anim:     &AnimationInfo{TPS: Rational{Num: 25, Den: 1}},
			expected: 2, // flooring to MinFrameDelayMS happens at frame build
		},
		{
			name:     "fractional time base",
			ticks:    1,
			anim:     &AnimationInfo{TPS: Rational{Num: 30000, Den: 1001}},
			expected: 33, // 33.366... rounds down
		},
		{
			name:     "rounding up",
			ticks:    2,
			anim:     &AnimationInfo{TPS: Rational{Num: 3, Den: 1}},
			expected: 667,
		},
		{
			name:     "no animation means zero before flooring",
			ticks:    5,
			anim:     nil,
			expected: 0,
		},
		{
			name:     "zero duration",
			ticks:    0,
			anim:     &AnimationInfo{TPS: Rational{Num: 30, Den: 1}},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, frameDelayMS(tt.ticks, tt.anim))
		})
	}
}

func TestRational_Float64(t *testing.T) {
	assert.Equal(t, 30.0, Rational{Num: 30, Den: 1}.Float64())
	assert.InDelta(t, 29.97, Rational{Num: 30000, Den: 1001}.Float64(), 0.001)
	assert.Equal(t, 0.0, Rational{Num: 30, Den: 0}.Float64())
}

func TestMinFrameDelayConstant(t *testing.T) {
	// Documented floor for strict multi-frame players.
	assert.Equal(t, 10, MinFrameDelayMS)
}
