package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"
)

// DisplayGrabber returns a Grabber that captures the full display at
// the given index (0 = primary).
func DisplayGrabber(displayIndex int) (Grabber, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays")
	}
	if displayIndex < 0 || displayIndex >= n {
		return nil, fmt.Errorf("display index %d out of range (have %d displays)", displayIndex, n)
	}
	return func() (*image.RGBA, error) {
		// Bounds are re-read per capture so resolution changes are
		// picked up without restarting the sender.
		return screenshot.CaptureRect(screenshot.GetDisplayBounds(displayIndex))
	}, nil
}
