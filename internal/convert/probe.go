package convert

// approxAnimatedFrames is the frame count reported for any animated
// stream. The true count would require decoding every frame; the probe
// stays cheap and reports this placeholder instead. Intentionally
// imprecise.
const approxAnimatedFrames = 2

// ProbeResult reports stream metadata without any pixel decoding.
type ProbeResult struct {
	Width            uint32 `json:"width"`
	Height           uint32 `json:"height"`
	ApproxFrameCount int    `json:"approx_frame_count"`
	HasAlpha         bool   `json:"has_alpha"`
}

// Probe runs only the header stage and reports dimensions, alpha presence
// and an approximate frame count. No pixel buffer is ever allocated, so
// probing succeeds even when the stream's pixel data is truncated or
// corrupt.
func (c *Converter) Probe(data []byte) (*ProbeResult, error) {
	_, _, info, err := c.header(data)
	if err != nil {
		return nil, err
	}

	count := 1
	if info.Animation != nil {
		count = approxAnimatedFrames
	}

	return &ProbeResult{
		Width:            info.Width,
		Height:           info.Height,
		ApproxFrameCount: count,
		HasAlpha:         info.HasAlpha(),
	}, nil
}
