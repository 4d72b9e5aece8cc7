package convert

import (
	"errors"
)

// fakeFrame scripts one frame of a fakeStream.
type fakeFrame struct {
	duration     float64
	fill         byte
	headerChunks []int // bytes consumed per frame-header attempt; last completes
	pixelChunks  []int // bytes consumed per pixel attempt; last completes
}

// fakeStream scripts a whole decode: how many bytes each stage consumes
// per attempt, what the header reports, and where (if anywhere) the
// decoder fails. It also records what the orchestrator did to it.
type fakeStream struct {
	info         *StreamInfo
	headerChunks []int
	frames       []fakeFrame

	failAt  Stage
	failErr error

	// observations
	factoryCalls     int
	advanceIntoCalls int
	pixelFormat      *PixelFormat
}

func (s *fakeStream) factory() DecoderFactory {
	return func() Decoder {
		s.factoryCalls++
		return &fakeDecoder{s: s}
	}
}

// chunksFor defaults to a single zero-byte attempt so simple tests do not
// have to script every stage.
func chunksFor(chunks []int) []int {
	if len(chunks) == 0 {
		return []int{0}
	}
	return chunks
}

// fakeDecoder is one position in the scripted decode: stage, frame index
// and retry attempt. Every successful attempt returns a fresh value, so
// state flows forward exactly like the real collaborator's.
type fakeDecoder struct {
	s       *fakeStream
	stage   Stage
	frame   int
	attempt int
}

func (d *fakeDecoder) step(in *Input, chunks []int, next fakeDecoder, fill func()) Step {
	if d.s.failAt == d.currentStage() && d.s.failErr != nil {
		return Failed(d.s.failErr)
	}

	chunks = chunksFor(chunks)
	need := chunks[d.attempt]
	if in.Len() < need {
		// Swallow what is there and keep asking; the driver turns this
		// into IncompleteStream once the cursor is drained.
		in.Consume(in.Len())
		return NeedsMoreInput(&fakeDecoder{s: d.s, stage: d.stage, frame: d.frame, attempt: d.attempt})
	}

	in.Consume(need)
	if d.attempt < len(chunks)-1 {
		return NeedsMoreInput(&fakeDecoder{s: d.s, stage: d.stage, frame: d.frame, attempt: d.attempt + 1})
	}
	if fill != nil {
		fill()
	}
	return Complete(&next)
}

func (d *fakeDecoder) currentStage() Stage {
	if d.stage == "" {
		return StageHeader
	}
	return d.stage
}

func (d *fakeDecoder) Advance(in *Input) Step {
	switch d.currentStage() {
	case StageHeader:
		return d.step(in, d.s.headerChunks, fakeDecoder{s: d.s, stage: StageFrameHeader}, nil)
	case StageFrameHeader:
		return d.step(in, d.s.frames[d.frame].headerChunks,
			fakeDecoder{s: d.s, stage: StagePixels, frame: d.frame}, nil)
	default:
		return Failed(errors.New("Advance called during pixel stage"))
	}
}

func (d *fakeDecoder) AdvanceInto(in *Input, sink *FrameSink) Step {
	d.s.advanceIntoCalls++
	if d.currentStage() != StagePixels {
		return Failed(errors.New("AdvanceInto called outside pixel stage"))
	}

	fill := func() {
		for _, row := range sink.Rows() {
			for i := range row {
				row[i] = d.s.frames[d.frame].fill
			}
		}
	}
	return d.step(in, d.s.frames[d.frame].pixelChunks,
		fakeDecoder{s: d.s, stage: StageFrameHeader, frame: d.frame + 1}, fill)
}

func (d *fakeDecoder) SetPixelFormat(format PixelFormat) {
	d.s.pixelFormat = &format
}

func (d *fakeDecoder) StreamInfo() *StreamInfo {
	return d.s.info
}

func (d *fakeDecoder) FrameDuration() float64 {
	return d.s.frames[d.frame].duration
}

func (d *fakeDecoder) MoreFrames() bool {
	return d.frame < len(d.s.frames)
}
