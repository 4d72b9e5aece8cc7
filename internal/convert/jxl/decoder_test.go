package jxl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/rasterize/internal/convert"
)

func TestFactoryProducesDecoders(t *testing.T) {
	factory := Factory()
	require.NotNil(t, factory)

	a := factory()
	b := factory()
	require.NotNil(t, a)
	require.NotNil(t, b)
	assert.NotSame(t, a, b)
}

func TestHeaderStageNeedsInputWhenEmpty(t *testing.T) {
	dec := Factory()()
	in := convert.NewInput(nil)

	step := dec.Advance(in)
	assert.Equal(t, convert.StepNeedsMoreInput, step.Kind)
	assert.Same(t, dec, step.Next)
}

func TestHeaderStageRejectsGarbage(t *testing.T) {
	dec := Factory()()
	in := convert.NewInput([]byte("definitely not a jxl stream, just prose"))

	step := dec.Advance(in)
	require.Equal(t, convert.StepFailed, step.Kind)
	assert.Error(t, step.Err)
	assert.Zero(t, in.Len(), "header stage should consume the cursor")
}

// Metadata stages must succeed without reading pixel data: probing relies
// on the frame-header stage completing even when the pixel payload can
// never decode.
func TestPixelDecodeDeferredToPixelStage(t *testing.T) {
	st := &frameState{
		data: []byte("valid header, undecodable pixels"),
		info: &convert.StreamInfo{Width: 4, Height: 4},
	}

	step := st.Advance(convert.NewInput(nil))
	require.Equal(t, convert.StepComplete, step.Kind, "frame-header stage must not decode pixels")

	next, ok := step.Next.(*frameState)
	require.True(t, ok)
	assert.Equal(t, uint32(4), next.StreamInfo().Width)

	step = next.AdvanceInto(convert.NewInput(nil), &convert.FrameSink{})
	assert.Equal(t, convert.StepFailed, step.Kind, "broken pixel data must fail at the pixel stage")
	assert.Error(t, step.Err)
}

func TestPixelStageBeforeHeaderFails(t *testing.T) {
	dec := Factory()()
	sink := &convert.FrameSink{}

	step := dec.AdvanceInto(convert.NewInput([]byte{0x01}), sink)
	assert.Equal(t, convert.StepFailed, step.Kind)
}

func TestHeaderStateReportsNoStreamInfo(t *testing.T) {
	dec := Factory()()
	assert.Nil(t, dec.StreamInfo())
	assert.False(t, dec.MoreFrames())
}
