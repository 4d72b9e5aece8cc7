package convert

import "math"

// MinFrameDelayMS is the floor applied to every frame's resolved delay.
// Near-zero delays produce invisible animation steps in strict players,
// so short frames are stretched to this minimum. This is a product
// decision, not a decoder artifact; tune it via WithMinFrameDelay.
const MinFrameDelayMS = 10

// defaultFrameTicks is assumed when the stream carries no per-frame
// duration.
const defaultFrameTicks = 1.0

// frameDelayMS converts a frame duration in ticks to wall-clock
// milliseconds using the stream's ticks-per-second base. A stream that
// declares no animation has no time base; its delay is 0 before flooring.
func frameDelayMS(durationTicks float64, anim *AnimationInfo) int {
	if anim == nil {
		return 0
	}
	tps := anim.TPS.Float64()
	if tps <= 0 {
		return 0
	}
	return int(math.Round(durationTicks / tps * 1000.0))
}
