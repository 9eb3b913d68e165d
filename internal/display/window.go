package display

import (
	"image"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Window renders the incoming stream using Ebitengine. Frames arrive
// from the receive loop via Render; the game loop picks up the latest
// one each tick, so a slow or occluded window never stalls the
// transport. Pressing Q or closing the window ends Run.
type Window struct {
	mu          sync.Mutex
	frame       *image.RGBA
	ebitenImage *ebiten.Image

	title string
}

// NewWindow creates an Ebitengine-based stream viewer.
func NewWindow(title string) *Window {
	return &Window{title: title}
}

// Render updates the displayed frame (called from the receive loop).
func (w *Window) Render(img *image.RGBA) {
	w.mu.Lock()
	w.frame = img
	w.mu.Unlock()
}

// Run starts the Ebitengine game loop. Must be called from the main
// goroutine; returns when the operator quits.
func (w *Window) Run() error {
	ebiten.SetWindowSize(1280, 720)
	ebiten.SetWindowTitle(w.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(w)
}

// --- ebiten.Game interface ---

func (w *Window) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	return nil
}

func (w *Window) Draw(screen *ebiten.Image) {
	w.mu.Lock()
	frame := w.frame
	w.mu.Unlock()

	if frame == nil {
		return
	}

	if w.ebitenImage == nil ||
		w.ebitenImage.Bounds().Dx() != frame.Bounds().Dx() ||
		w.ebitenImage.Bounds().Dy() != frame.Bounds().Dy() {
		w.ebitenImage = ebiten.NewImage(frame.Bounds().Dx(), frame.Bounds().Dy())
	}
	w.ebitenImage.WritePixels(frame.Pix)

	sw, sh := screen.Bounds().Dx(), screen.Bounds().Dy()
	fw, fh := float64(frame.Bounds().Dx()), float64(frame.Bounds().Dy())
	scale, offsetX, offsetY := aspectFitTransform(float64(sw), float64(sh), fw, fh)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(offsetX, offsetY)
	screen.DrawImage(w.ebitenImage, op)
}

func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// aspectFitTransform returns scale and offsets to fit frame into view with letterboxing.
func aspectFitTransform(viewW, viewH, frameW, frameH float64) (scale, offsetX, offsetY float64) {
	scale = math.Min(viewW/frameW, viewH/frameH)
	offsetX = (viewW - frameW*scale) / 2
	offsetY = (viewH - frameH*scale) / 2
	return
}
