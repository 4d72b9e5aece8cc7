package convert

import (
	"github.com/zsiec/rasterize/internal/errors"
	"github.com/zsiec/rasterize/internal/raster"
)

// MinInputBytes is the sanity threshold checked before any decoder state
// is constructed.
const MinInputBytes = 2

// Frame is one decoded frame: packed RGBA pixel bytes (width*4*height,
// row-major, no padding) plus the resolved display delay. Immutable once
// built; collection order is stream order is display order.
type Frame struct {
	Pixels  []byte
	DelayMS int
}

// StillEncoder serializes a single RGBA8 frame into a still container.
type StillEncoder func(width, height uint32, pix []byte) ([]byte, error)

// AnimationWriter serializes an ordered frame sequence into a multi-frame
// container. The per-frame delay is set immediately before the frame's
// pixel payload is written; the container is finalized only after all
// frames are in.
type AnimationWriter interface {
	SetFrameDelay(delayMS int) error
	WriteFrame(pix []byte) error
	Finalize() ([]byte, error)
}

// AnimationWriterFactory opens a multi-frame container with the shared
// dimensions and the up-front frame count. Color depth and type are fixed
// at RGBA8 for every frame.
type AnimationWriterFactory func(width, height uint32, frameCount int) (AnimationWriter, error)

// Converter drives the incremental decoding collaborator through the
// staged protocol and assembles the decoded frames into a still or
// multi-frame raster container. It holds only immutable configuration;
// concurrent conversions share nothing else.
type Converter struct {
	newDecoder DecoderFactory
	newAnim    AnimationWriterFactory
	still      StillEncoder
	maxPixels  uint64
	minDelayMS int
}

// Option configures a Converter.
type Option func(*Converter)

// WithMaxPixels caps width*height of a declared frame. 0 disables the cap.
func WithMaxPixels(n uint64) Option {
	return func(c *Converter) { c.maxPixels = n }
}

// WithMinFrameDelay overrides the MinFrameDelayMS floor. 0 disables
// flooring.
func WithMinFrameDelay(ms int) Option {
	return func(c *Converter) { c.minDelayMS = ms }
}

// WithStillEncoder replaces the still container writer.
func WithStillEncoder(enc StillEncoder) Option {
	return func(c *Converter) { c.still = enc }
}

// WithAnimationWriter replaces the multi-frame container writer.
func WithAnimationWriter(factory AnimationWriterFactory) Option {
	return func(c *Converter) { c.newAnim = factory }
}

// New creates a Converter around the given decoder factory. The default
// writers produce PNG and APNG containers.
func New(factory DecoderFactory, opts ...Option) *Converter {
	c := &Converter{
		newDecoder: factory,
		still:      raster.EncodeStill,
		newAnim: func(width, height uint32, frameCount int) (AnimationWriter, error) {
			return raster.NewAnimationWriter(width, height, frameCount)
		},
		minDelayMS: MinFrameDelayMS,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is the outcome of a successful conversion.
type Result struct {
	Data     []byte
	Frames   int
	Animated bool
	Width    uint32
	Height   uint32
}

// ToRaster decodes the full compressed stream and returns an encoded
// still container (single frame or non-animated stream) or multi-frame
// container (animated stream with more than one frame). Any failure
// aborts the whole conversion; no partial output is ever returned.
func (c *Converter) ToRaster(data []byte) ([]byte, error) {
	res, err := c.Convert(data)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// Convert is ToRaster plus metadata about the produced container.
func (c *Converter) Convert(data []byte) (*Result, error) {
	frames, info, err := c.collectFrames(data)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Frames: len(frames),
		Width:  info.Width,
		Height: info.Height,
	}

	if len(frames) == 1 || info.Animation == nil {
		out, err := c.still(info.Width, info.Height, frames[0].Pixels)
		if err != nil {
			return nil, errors.NewEncodeFailed("still", errors.NoFrame, err)
		}
		res.Data = out
		return res, nil
	}

	out, err := c.encodeAnimation(info, frames)
	if err != nil {
		return nil, err
	}
	res.Data = out
	res.Animated = true
	return res, nil
}

// header validates the raw input, runs the header stage and checks the
// declared dimensions. Shared by conversion and probing.
func (c *Converter) header(data []byte) (Decoder, *Input, *StreamInfo, error) {
	if len(data) < MinInputBytes {
		return nil, nil, nil, errors.NewInputTooSmall(len(data), MinInputBytes)
	}

	in := NewInput(data)
	dec, err := runStage(StageHeader, c.newDecoder(), in, nil)
	if err != nil {
		return nil, nil, nil, err
	}

	info := dec.StreamInfo()
	if info.Width == 0 || info.Height == 0 {
		return nil, nil, nil, errors.NewInvalidDimensions(info.Width, info.Height)
	}

	return dec, in, info, nil
}

// collectFrames runs the frame collection loop: frame-header stage, delay
// resolution, pixel stage into a fresh sink, repeated until the decoder
// reports no more frames. A non-animated stream still runs exactly one
// iteration; animation only affects container choice downstream.
func (c *Converter) collectFrames(data []byte) ([]Frame, *StreamInfo, error) {
	dec, in, info, err := c.header(data)
	if err != nil {
		return nil, nil, err
	}

	dec.SetPixelFormat(RGBA8Format(info.ExtraChannels))

	var frames []Frame
	for {
		dec, err = runStage(StageFrameHeader, dec, in, nil)
		if err != nil {
			return nil, nil, err
		}

		delay := frameDelayMS(dec.FrameDuration(), info.Animation)
		if delay < c.minDelayMS {
			delay = c.minDelayMS
		}

		sink, err := newFrameSink(info.Width, info.Height, c.maxPixels)
		if err != nil {
			return nil, nil, err
		}

		dec, err = runStage(StagePixels, dec, in, sink)
		if err != nil {
			return nil, nil, err
		}

		frames = append(frames, Frame{Pixels: sink.Flatten(), DelayMS: delay})

		if !dec.MoreFrames() {
			break
		}
	}

	return frames, info, nil
}

// encodeAnimation drives the multi-frame writer: frame count declared up
// front, every frame's delay set immediately before its pixels, finalize
// after the last frame.
func (c *Converter) encodeAnimation(info *StreamInfo, frames []Frame) ([]byte, error) {
	w, err := c.newAnim(info.Width, info.Height, len(frames))
	if err != nil {
		return nil, errors.NewEncodeFailed("setup", errors.NoFrame, err)
	}

	for i, f := range frames {
		if err := w.SetFrameDelay(f.DelayMS); err != nil {
			return nil, errors.NewEncodeFailed("frame-delay", i, err)
		}
		if err := w.WriteFrame(f.Pixels); err != nil {
			return nil, errors.NewEncodeFailed("frame-write", i, err)
		}
	}

	out, err := w.Finalize()
	if err != nil {
		return nil, errors.NewEncodeFailed("finalize", errors.NoFrame, err)
	}
	return out, nil
}
