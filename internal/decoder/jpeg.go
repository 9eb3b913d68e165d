package decoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
)

// ErrCorruptPayload reports a payload that is not a well-formed JPEG
// image. Recoverable: the receiver drops the frame and keeps reading.
var ErrCorruptPayload = errors.New("decoder: corrupt frame payload")

// JPEGDecoder decodes JPEG bytes into *image.RGBA.
type JPEGDecoder struct{}

func NewJPEGDecoder() *JPEGDecoder {
	return &JPEGDecoder{}
}

func (d *JPEGDecoder) Decode(data []byte) (*image.RGBA, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}
	// Convert to RGBA if needed.
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)
	return rgba, nil
}
