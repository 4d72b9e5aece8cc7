package raster

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rgbaPixels builds a width x height payload where every pixel carries
// the given RGBA sample.
func rgbaPixels(width, height uint32, r, g, b, a byte) []byte {
	pix := make([]byte, 0, width*height*4)
	for i := uint32(0); i < width*height; i++ {
		pix = append(pix, r, g, b, a)
	}
	return pix
}

func TestEncodeStill_RoundTrip(t *testing.T) {
	pix := rgbaPixels(3, 2, 0x10, 0x20, 0x30, 0xFF)

	out, err := EncodeStill(3, 2, pix)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.Equal(t, 3, bounds.Dx())
	assert.Equal(t, 2, bounds.Dy())

	r, g, b, a := img.At(1, 1).RGBA()
	assert.Equal(t, uint32(0x10), r>>8)
	assert.Equal(t, uint32(0x20), g>>8)
	assert.Equal(t, uint32(0x30), b>>8)
	assert.Equal(t, uint32(0xFF), a>>8)
}

func TestEncodeStill_PayloadLengthMismatch(t *testing.T) {
	_, err := EncodeStill(4, 4, make([]byte, 10))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pixel payload")
}

func TestEncodeStill_ZeroDimensions(t *testing.T) {
	_, err := EncodeStill(0, 4, nil)
	assert.Error(t, err)
}
