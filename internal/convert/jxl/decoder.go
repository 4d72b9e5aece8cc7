// Package jxl adapts the jxl-go codec to the staged decoder contract.
//
// The header stage parses only the image header, so stream metadata is
// available without touching pixel data. jxl-go exposes whole-image pixel
// decoding over an io.ReadSeeker rather than a resumable chunked API, so
// the pixel stage decodes the full stream in one step. Animated JXL is
// decoded as its first frame.
package jxl

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"

	"github.com/kpfaulkner/jxl-go/bundle"
	jxlcore "github.com/kpfaulkner/jxl-go/core"

	"github.com/zsiec/rasterize/internal/convert"
)

// Factory returns a jxl-go backed decoder factory for convert.New.
func Factory() convert.DecoderFactory {
	return func() convert.Decoder {
		return &headerState{}
	}
}

// headerState is the decoder before the header stage.
type headerState struct{}

func (d *headerState) Advance(in *convert.Input) convert.Step {
	if in.Empty() {
		return convert.NeedsMoreInput(d)
	}

	data := in.Bytes()
	in.Consume(len(data))

	header, err := parseHeader(data)
	if err != nil {
		return convert.Failed(err)
	}

	info := &convert.StreamInfo{
		Width:         header.Size.Width,
		Height:        header.Size.Height,
		ExtraChannels: len(header.ExtraChannelInfo),
	}
	if ah := header.AnimationHeader; ah != nil {
		info.Animation = &convert.AnimationInfo{
			TPS: convert.Rational{Num: ah.TpsNumerator, Den: ah.TpsDenominator},
		}
	}

	return convert.Complete(&frameState{data: data, info: info})
}

func (d *headerState) AdvanceInto(in *convert.Input, sink *convert.FrameSink) convert.Step {
	return convert.Failed(fmt.Errorf("pixel stage before header stage"))
}

func (d *headerState) SetPixelFormat(convert.PixelFormat) {}
func (d *headerState) StreamInfo() *convert.StreamInfo    { return nil }
func (d *headerState) FrameDuration() float64             { return defaultTicks }
func (d *headerState) MoreFrames() bool                   { return false }

// frameState is the decoder after the header stage. It carries the raw
// stream through the frame-header stage; pixel decoding is deferred to
// the pixel stage, so a stream with valid headers but broken pixel data
// can still be probed.
type frameState struct {
	data      []byte
	info      *convert.StreamInfo
	headerRun bool
	pixelsRun bool
}

const defaultTicks = 1.0

func (d *frameState) Advance(in *convert.Input) convert.Step {
	if d.headerRun {
		return convert.Failed(fmt.Errorf("frame-header stage already completed"))
	}
	next := *d
	next.headerRun = true
	return convert.Complete(&next)
}

func (d *frameState) AdvanceInto(in *convert.Input, sink *convert.FrameSink) convert.Step {
	if !d.headerRun || d.pixelsRun {
		return convert.Failed(fmt.Errorf("pixel stage out of order"))
	}

	img, err := decodeAll(d.data)
	if err != nil {
		return convert.Failed(err)
	}

	rows := sink.Rows()
	for y, row := range rows {
		src := img.Pix[y*img.Stride : y*img.Stride+sink.Stride()]
		copy(row, src)
	}

	next := *d
	next.pixelsRun = true
	return convert.Complete(&next)
}

func (d *frameState) SetPixelFormat(convert.PixelFormat) {}

func (d *frameState) StreamInfo() *convert.StreamInfo {
	return d.info
}

func (d *frameState) FrameDuration() float64 {
	return defaultTicks
}

func (d *frameState) MoreFrames() bool {
	return false
}

// parseHeader reads the image header without decoding pixel data. A
// panicking codec is reported as a decode error rather than taking the
// process down.
func parseHeader(data []byte) (header *bundle.ImageHeader, err error) {
	defer func() {
		if r := recover(); r != nil {
			header = nil
			err = fmt.Errorf("jxl header parser panicked: %v", r)
		}
	}()

	dec := jxlcore.NewJXLDecoder(bytes.NewReader(data))
	header, err = dec.GetImageHeader()
	if err != nil {
		return nil, fmt.Errorf("jxl header: %w", err)
	}
	return header, nil
}

// decodeAll runs jxl-go over the full stream and normalizes the result to
// packed RGBA.
func decodeAll(data []byte) (rgba *image.RGBA, err error) {
	defer func() {
		if r := recover(); r != nil {
			rgba = nil
			err = fmt.Errorf("jxl decoder panicked: %v", r)
		}
	}()

	dec := jxlcore.NewJXLDecoder(bytes.NewReader(data))
	jxlImage, err := dec.Decode()
	if err != nil {
		return nil, fmt.Errorf("jxl decode: %w", err)
	}

	img, err := jxlImage.ToImage()
	if err != nil {
		return nil, fmt.Errorf("jxl image conversion: %w", err)
	}

	bounds := img.Bounds()
	if direct, ok := img.(*image.RGBA); ok && bounds.Min == (image.Point{}) {
		return direct, nil
	}

	out := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)
	return out, nil
}
