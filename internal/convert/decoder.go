package convert

// StepKind tags the outcome of one incremental decode attempt.
type StepKind int

const (
	// StepComplete means the stage finished; Step.Next is the decoder
	// positioned after the stage.
	StepComplete StepKind = iota
	// StepNeedsMoreInput means the decoder could not conclude the stage
	// with the bytes available; Step.Next is a fallback state equivalent
	// to the state before the attempt. This is routine control flow, not
	// an error.
	StepNeedsMoreInput
	// StepFailed means the decoder hit malformed data; Step.Err carries
	// the cause.
	StepFailed
)

// Step is the tagged result of one decode attempt. Decoder progression is
// a linear chain: every successful attempt yields a new Decoder value and
// the previous one must be discarded, never reused.
type Step struct {
	Kind StepKind
	Next Decoder
	Err  error
}

// Complete builds a Step for a finished stage.
func Complete(next Decoder) Step {
	return Step{Kind: StepComplete, Next: next}
}

// NeedsMoreInput builds a Step asking for more input, with the fallback
// state to retry from.
func NeedsMoreInput(fallback Decoder) Step {
	return Step{Kind: StepNeedsMoreInput, Next: fallback}
}

// Failed builds a Step for malformed data.
func Failed(err error) Step {
	return Step{Kind: StepFailed, Err: err}
}

// Rational is a ticks-per-second time base expressed as a fraction.
type Rational struct {
	Num uint32
	Den uint32
}

// Float64 returns the floating point representation.
func (r Rational) Float64() float64 {
	if r.Den == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Den)
}

// AnimationInfo describes the stream-level timing base of an animated
// stream. Absent (nil) for still images.
type AnimationInfo struct {
	TPS Rational // ticks per second
}

// StreamInfo is the immutable stream descriptor obtained from the header
// stage.
type StreamInfo struct {
	Width         uint32
	Height        uint32
	Animation     *AnimationInfo
	ExtraChannels int // non-color channels declared by the stream
}

// HasAlpha reports whether the stream declares any auxiliary channel.
func (si *StreamInfo) HasAlpha() bool {
	return si.ExtraChannels > 0
}

// ExtraChannelFormat selects the requested output format for one declared
// auxiliary channel.
type ExtraChannelFormat int

// ExtraChannelNone requests no separate output for an auxiliary channel;
// alpha still lands in the interleaved RGBA samples.
const ExtraChannelNone ExtraChannelFormat = iota

// PixelFormat declares the sample layout the orchestrator wants from the
// pixel stage.
type PixelFormat struct {
	Channels      int // interleaved 8-bit channels per pixel
	BitDepth      int
	ExtraChannels []ExtraChannelFormat
}

// RGBA8Format builds the only layout this converter requests: packed
// 4-channel 8-bit RGBA with no separate auxiliary channel output.
func RGBA8Format(extraChannels int) PixelFormat {
	return PixelFormat{
		Channels:      bytesPerPixel,
		BitDepth:      8,
		ExtraChannels: make([]ExtraChannelFormat, extraChannels),
	}
}

// Decoder is one state of the incremental decoding collaborator. The same
// retry discipline applies to the header, frame-header and pixel stages;
// only the pixel stage additionally receives a mutable output target.
//
// Accessor validity follows the stage chain: StreamInfo after the header
// stage, FrameDuration after a frame-header stage, MoreFrames after a
// pixel stage.
type Decoder interface {
	// Advance attempts to make progress on the current header or
	// frame-header stage, consuming from in.
	Advance(in *Input) Step

	// AdvanceInto attempts to make progress on the pixel stage, writing
	// decoded rows into the sink's row regions.
	AdvanceInto(in *Input, sink *FrameSink) Step

	// SetPixelFormat attaches the desired output layout. Must be called
	// after the header stage and before the first frame-header stage.
	SetPixelFormat(format PixelFormat)

	// StreamInfo returns the stream descriptor.
	StreamInfo() *StreamInfo

	// FrameDuration returns the current frame's duration in ticks.
	// Implementations return 1 when the stream carries no per-frame
	// duration.
	FrameDuration() float64

	// MoreFrames reports whether another frame follows.
	MoreFrames() bool
}

// DecoderFactory constructs a fresh decoder positioned before the header
// stage. One factory invocation per conversion; states are never shared
// across conversions.
type DecoderFactory func() Decoder
