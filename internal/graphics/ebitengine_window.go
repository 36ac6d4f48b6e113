package graphics

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// EbitengineWindow implements Window (and ebiten.Game) over Ebitengine:
// it owns the display image, the scaled draw geometry, and the keyboard
// mapping for both controller ports.
type EbitengineWindow struct {
	title string
	scale int

	image        *ebiten.Image
	frame        *[256 * 240]color.RGBA
	pixelScratch []byte

	port1, port2 ButtonState
	updateFunc   func() error
}

// NewEbitengineWindow constructs a window sized to scale*256 x scale*240.
func NewEbitengineWindow(title string, scale int) *EbitengineWindow {
	if scale < 1 {
		scale = 1
	}
	w := &EbitengineWindow{
		title:        title,
		scale:        scale,
		image:        ebiten.NewImage(256, 240),
		pixelScratch: make([]byte, 256*240*4),
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(256*scale, 240*scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return w
}

func (w *EbitengineWindow) SetUpdateFunc(f func() error) { w.updateFunc = f }

func (w *EbitengineWindow) SetFrame(frame *[256 * 240]color.RGBA) { w.frame = frame }

func (w *EbitengineWindow) Buttons(port int) ButtonState {
	if port == 2 {
		return w.port2
	}
	return w.port1
}

// Run hands control to Ebitengine's game loop; Update/Draw/Layout below
// are invoked by ebiten.RunGame once per host tick.
func (w *EbitengineWindow) Run() error {
	return ebiten.RunGame(w)
}

// Update polls the keyboard into both controller ports, then defers to
// the installed emulator callback.
func (w *EbitengineWindow) Update() error {
	w.port1 = ButtonState{
		Up:     ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp),
		Down:   ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown),
		Left:   ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
		Right:  ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight),
		A:      ebiten.IsKeyPressed(ebiten.KeyJ),
		B:      ebiten.IsKeyPressed(ebiten.KeyK),
		Start:  ebiten.IsKeyPressed(ebiten.KeyEnter),
		Select: ebiten.IsKeyPressed(ebiten.KeySpace),
	}
	w.port2 = ButtonState{
		Up:     ebiten.IsKeyPressed(ebiten.Key8),
		Down:   ebiten.IsKeyPressed(ebiten.Key5),
		Left:   ebiten.IsKeyPressed(ebiten.Key4),
		Right:  ebiten.IsKeyPressed(ebiten.Key6),
		A:      ebiten.IsKeyPressed(ebiten.Key1),
		B:      ebiten.IsKeyPressed(ebiten.Key2),
		Start:  ebiten.IsKeyPressed(ebiten.Key7),
		Select: ebiten.IsKeyPressed(ebiten.Key3),
	}

	if w.updateFunc != nil {
		return w.updateFunc()
	}
	return nil
}

// Draw uploads the current frame buffer and blits it scaled to fill the
// window, letterboxed to preserve the 256x240 aspect ratio.
func (w *EbitengineWindow) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	if w.frame == nil {
		return
	}

	for i, px := range w.frame {
		o := i * 4
		w.pixelScratch[o] = px.R
		w.pixelScratch[o+1] = px.G
		w.pixelScratch[o+2] = px.B
		w.pixelScratch[o+3] = px.A
	}
	w.image.WritePixels(w.pixelScratch)

	bounds := screen.Bounds()
	sw, sh := float64(bounds.Dx()), float64(bounds.Dy())
	scale := sw / 256
	if alt := sh / 240; alt < scale {
		scale = alt
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate((sw-256*scale)/2, (sh-240*scale)/2)
	screen.DrawImage(w.image, op)
}

// Layout reports the window's logical resolution as its own size; Draw
// handles scaling itself so the image stays sharp at any window size.
func (w *EbitengineWindow) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
