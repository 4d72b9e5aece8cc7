package convert

import (
	"github.com/zsiec/rasterize/internal/errors"
)

// Stage names one discrete phase of incremental decoding. The name tags
// IncompleteStream and DecodeFailed errors.
type Stage string

const (
	StageHeader      Stage = "header"
	StageFrameHeader Stage = "frame-header"
	StagePixels      Stage = "pixel-data"
)

// runStage drives the decoder through one stage, re-feeding the fallback
// state while the decoder wants more input and unconsumed bytes remain.
// The retry loop is bounded: every NeedsMoreInput retry happens only while
// the cursor is non-empty, and the cursor only shrinks.
//
// sink must be non-nil exactly for StagePixels.
func runStage(stage Stage, dec Decoder, in *Input, sink *FrameSink) (Decoder, error) {
	for {
		before := in.Len()

		var step Step
		if stage == StagePixels {
			step = dec.AdvanceInto(in, sink)
		} else {
			step = dec.Advance(in)
		}

		switch step.Kind {
		case StepComplete:
			return step.Next, nil
		case StepNeedsMoreInput:
			if in.Empty() || in.Len() == before {
				// The whole stream is already resident, so there is
				// nothing to wait for: this stage can never finish.
				return nil, errors.NewIncompleteStream(string(stage))
			}
			// The decoder consumed some bytes but buffered them without
			// concluding the stage. Retry from the fallback state.
			dec = step.Next
		case StepFailed:
			return nil, errors.NewDecodeFailed(string(stage), step.Err)
		default:
			return nil, errors.WrapInternal(nil, "decoder returned an unknown step kind")
		}
	}
}
