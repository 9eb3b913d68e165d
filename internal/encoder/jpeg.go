package encoder

import (
	"bytes"
	"image"
	"image/jpeg"
)

// JPEGEncoder encodes frames as JPEG.
type JPEGEncoder struct {
	quality int
}

// NewJPEGEncoder creates a JPEG encoder with the given quality (1-100).
func NewJPEGEncoder(quality int) *JPEGEncoder {
	return &JPEGEncoder{quality: clampQuality(quality)}
}

func (e *JPEGEncoder) Encode(img *image.RGBA) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(256 * 1024) // pre-allocate 256KB
	err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: e.quality})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SetQuality changes the quality used for subsequent frames. Not safe
// for use concurrently with Encode; the sender adjusts quality from the
// same goroutine that encodes.
func (e *JPEGEncoder) SetQuality(quality int) {
	e.quality = clampQuality(quality)
}

// Quality returns the current quality setting.
func (e *JPEGEncoder) Quality() int {
	return e.quality
}

func clampQuality(quality int) int {
	if quality < 1 {
		return 1
	}
	if quality > 100 {
		return 100
	}
	return quality
}
