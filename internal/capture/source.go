package capture

import (
	"fmt"
	"image"
	"math"
	"time"

	xdraw "golang.org/x/image/draw"
)

// Grabber produces a raw screenshot of the live display.
type Grabber func() (*image.RGBA, error)

// Source captures screen frames and keeps their width within a
// bandwidth bound. Frames wider than maxWidth are downscaled
// proportionally; narrower frames pass through untouched (never
// upscaled).
type Source struct {
	grab     Grabber
	maxWidth int
	scaler   xdraw.Scaler

	// last computed target size, recomputed when the screen size changes
	srcW, srcH int
	dstW, dstH int
}

// NewSource wraps grab with the maxWidth bound. The scaling kernel is
// picked from the configured quality: bicubic when the operator asked
// for a high-fidelity stream, approximate bilinear otherwise.
func NewSource(grab Grabber, maxWidth, quality int) *Source {
	var sc xdraw.Scaler = xdraw.ApproxBiLinear
	if quality > 70 {
		sc = xdraw.CatmullRom
	}
	return &Source{
		grab:     grab,
		maxWidth: maxWidth,
		scaler:   sc,
	}
}

// Capture grabs the current screen and returns it as a width-bounded
// frame.
func (s *Source) Capture() (*Frame, error) {
	img, err := s.grab()
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	img = s.bound(img)
	b := img.Bounds()
	return &Frame{
		Image:     img,
		Width:     b.Dx(),
		Height:    b.Dy(),
		Timestamp: time.Now(),
	}, nil
}

func (s *Source) bound(img *image.RGBA) *image.RGBA {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if w <= s.maxWidth {
		return img
	}
	if w != s.srcW || h != s.srcH {
		s.srcW, s.srcH = w, h
		s.dstW = s.maxWidth
		s.dstH = int(math.Round(float64(h) * float64(s.maxWidth) / float64(w)))
	}
	dst := image.NewRGBA(image.Rect(0, 0, s.dstW, s.dstH))
	s.scaler.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}
