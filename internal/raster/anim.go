package raster

import (
	"bytes"
	"fmt"
	"math"

	"github.com/kettek/apng"
)

// delayDenominator is the APNG delay time base: frame delays are carried
// as delay_ms/1000 seconds.
const delayDenominator = 1000

// AnimationWriter builds an APNG container. Dimensions and RGBA8 color
// type are fixed for every frame at open; each frame's delay must be set
// immediately before the frame is written; Finalize encodes the container
// once all declared frames are in.
type AnimationWriter struct {
	width    uint32
	height   uint32
	expected int
	delayMS  int
	delaySet bool
	anim     apng.APNG
}

// NewAnimationWriter opens a multi-frame container.
func NewAnimationWriter(width, height uint32, frameCount int) (*AnimationWriter, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("cannot open %dx%d animation", width, height)
	}
	if frameCount < 2 {
		return nil, fmt.Errorf("animation needs at least 2 frames, got %d", frameCount)
	}

	return &AnimationWriter{
		width:    width,
		height:   height,
		expected: frameCount,
		anim: apng.APNG{
			Frames: make([]apng.Frame, 0, frameCount),
			// 0 loops forever
			LoopCount: 0,
		},
	}, nil
}

// SetFrameDelay stages the next frame's display delay. Delays beyond the
// container's 16-bit numerator are clamped.
func (w *AnimationWriter) SetFrameDelay(delayMS int) error {
	if delayMS < 0 {
		return fmt.Errorf("negative frame delay %dms", delayMS)
	}
	if delayMS > math.MaxUint16 {
		delayMS = math.MaxUint16
	}
	w.delayMS = delayMS
	w.delaySet = true
	return nil
}

// WriteFrame appends one frame's packed RGBA payload with the staged
// delay. Frames use source blending and no disposal, so each frame
// replaces the previous one outright.
func (w *AnimationWriter) WriteFrame(pix []byte) error {
	if !w.delaySet {
		return fmt.Errorf("frame %d written without a delay", len(w.anim.Frames))
	}
	if len(w.anim.Frames) >= w.expected {
		return fmt.Errorf("frame count %d already reached", w.expected)
	}

	img, err := wrapRGBA(w.width, w.height, pix)
	if err != nil {
		return err
	}

	w.anim.Frames = append(w.anim.Frames, apng.Frame{
		Image:            img,
		DelayNumerator:   uint16(w.delayMS),
		DelayDenominator: delayDenominator,
		DisposeOp:        apng.DISPOSE_OP_NONE,
		BlendOp:          apng.BLEND_OP_SOURCE,
	})
	w.delaySet = false
	return nil
}

// Finalize encodes the container. All declared frames must have been
// written.
func (w *AnimationWriter) Finalize() ([]byte, error) {
	if got := len(w.anim.Frames); got != w.expected {
		return nil, fmt.Errorf("wrote %d of %d declared frames", got, w.expected)
	}

	var buf bytes.Buffer
	if err := apng.Encode(&buf, w.anim); err != nil {
		return nil, fmt.Errorf("apng encode: %w", err)
	}
	return buf.Bytes(), nil
}
