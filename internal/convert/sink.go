package convert

import (
	"math"

	"github.com/zsiec/rasterize/internal/errors"
)

// bytesPerPixel is the packed RGBA sample width.
const bytesPerPixel = 4

// FrameSink is the row-major pixel buffer one frame is decoded into.
// Stride is width*4 with no inter-row padding.
type FrameSink struct {
	width  uint32
	height uint32
	stride int
	buf    []byte
	rows   [][]byte
}

// newFrameSink allocates a sink for one width x height RGBA frame.
// maxPixels caps width*height; 0 means no cap beyond overflow safety.
func newFrameSink(width, height uint32, maxPixels uint64) (*FrameSink, error) {
	pixels := uint64(width) * uint64(height)
	if maxPixels > 0 && pixels > maxPixels {
		return nil, errors.NewBufferAllocation(width, height)
	}
	if pixels > math.MaxInt32/bytesPerPixel {
		return nil, errors.NewBufferAllocation(width, height)
	}

	stride := int(width) * bytesPerPixel
	buf := make([]byte, pixels*bytesPerPixel)

	rows := make([][]byte, height)
	for y := range rows {
		rows[y] = buf[y*stride : (y+1)*stride : (y+1)*stride]
	}

	return &FrameSink{
		width:  width,
		height: height,
		stride: stride,
		buf:    buf,
		rows:   rows,
	}, nil
}

// Stride returns the row length in bytes.
func (s *FrameSink) Stride() int {
	return s.stride
}

// Rows exposes the full buffer area as mutable per-row regions for the
// pixel stage to write into.
func (s *FrameSink) Rows() [][]byte {
	return s.rows
}

// Flatten reads the buffer back row by row into one contiguous byte
// sequence of length stride*height. The copy is the frame's immutable
// pixel payload; the sink may be discarded afterwards.
func (s *FrameSink) Flatten() []byte {
	flat := make([]byte, 0, len(s.buf))
	for _, row := range s.rows {
		flat = append(flat, row...)
	}
	return flat
}
