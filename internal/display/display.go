package display

import "image"

// Renderer receives decoded frames for presentation. Implementations
// must not block: the receive loop calls Render between reads and the
// transport cannot be serviced while it waits.
type Renderer interface {
	Render(img *image.RGBA)
}
