// Package raster serializes decoded RGBA8 frames into raster containers:
// PNG for stills, APNG for animations.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// wrapRGBA wraps packed RGBA bytes in an image without copying.
func wrapRGBA(width, height uint32, pix []byte) (*image.RGBA, error) {
	stride := int(width) * 4
	if want := stride * int(height); len(pix) != want {
		return nil, fmt.Errorf("pixel payload is %d bytes, want %d for %dx%d RGBA", len(pix), want, width, height)
	}
	return &image.RGBA{
		Pix:    pix,
		Stride: stride,
		Rect:   image.Rect(0, 0, int(width), int(height)),
	}, nil
}

// EncodeStill serializes one frame as a PNG with no timing metadata.
func EncodeStill(width, height uint32, pix []byte) ([]byte, error) {
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("cannot encode %dx%d still", width, height)
	}

	img, err := wrapRGBA(width, height, pix)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("png encode: %w", err)
	}
	return buf.Bytes(), nil
}
