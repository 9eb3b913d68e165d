package capture

import (
	"image"
	"time"
)

// Frame represents a captured screen frame.
type Frame struct {
	Image     *image.RGBA
	Width     int
	Height    int
	Timestamp time.Time
}
