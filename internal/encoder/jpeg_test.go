package encoder

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func TestEncodePreservesDimensions(t *testing.T) {
	enc := NewJPEGEncoder(80)
	src := testImage(640, 480)

	data, err := enc.Encode(src)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Encode returned empty payload")
	}

	decoded, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode encoded payload: %v", err)
	}
	b := decoded.Bounds()
	if b.Dx() != 640 || b.Dy() != 480 {
		t.Fatalf("decoded dimensions %dx%d, want 640x480", b.Dx(), b.Dy())
	}
}

func TestQualityClamping(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{50, 50},
		{100, 100},
		{150, 100},
	}
	for _, c := range cases {
		enc := NewJPEGEncoder(c.in)
		if enc.Quality() != c.want {
			t.Errorf("NewJPEGEncoder(%d).Quality() = %d, want %d", c.in, enc.Quality(), c.want)
		}
		enc.SetQuality(c.in)
		if enc.Quality() != c.want {
			t.Errorf("SetQuality(%d): Quality() = %d, want %d", c.in, enc.Quality(), c.want)
		}
	}
}

func TestLowerQualityShrinksPayload(t *testing.T) {
	src := testImage(800, 600)

	high, err := NewJPEGEncoder(95).Encode(src)
	if err != nil {
		t.Fatalf("Encode q=95: %v", err)
	}
	low, err := NewJPEGEncoder(30).Encode(src)
	if err != nil {
		t.Fatalf("Encode q=30: %v", err)
	}
	if len(low) >= len(high) {
		t.Fatalf("q=30 payload (%d bytes) not smaller than q=95 payload (%d bytes)", len(low), len(high))
	}
}
