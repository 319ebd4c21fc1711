// Package present shows an OutputBuffer in a desktop window.
package present

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/taigrr/scanline/pkg/control"
	"github.com/taigrr/scanline/pkg/render"
)

// FrameFunc renders the next frame into the buffer it was built around.
type FrameFunc func() error

// KeyFunc receives bound key names ("w", "a", ...) as they are pressed.
type KeyFunc func(key string)

var windowKeys = map[ebiten.Key]string{
	ebiten.KeyQ:     "q",
	ebiten.KeyE:     "e",
	ebiten.KeyW:     "w",
	ebiten.KeyS:     "s",
	ebiten.KeyA:     "a",
	ebiten.KeyD:     "d",
	ebiten.KeyR:     "r",
	ebiten.KeyT:     "t",
	ebiten.KeySpace: "space",
}

// Window is an ebiten game that uploads the buffer each frame.
type Window struct {
	buf   *render.OutputBuffer
	frame FrameFunc
	keys  KeyFunc
	img   *ebiten.Image
}

// NewWindow creates a window presenting buf. frame runs once per tick
// before the buffer is uploaded; keys may be nil.
func NewWindow(buf *render.OutputBuffer, frame FrameFunc, keys KeyFunc) *Window {
	return &Window{buf: buf, frame: frame, keys: keys}
}

// Run opens the window and blocks until it closes. Escape closes it.
func Run(w *Window, title string, scale, fps int) error {
	if scale < 1 {
		scale = 1
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(w.buf.Width*scale, w.buf.Height*scale)
	if fps > 0 {
		ebiten.SetTPS(fps)
	}
	err := ebiten.RunGame(w)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Update polls the keyboard and renders a frame.
func (w *Window) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if w.keys != nil {
		for key, name := range windowKeys {
			// movement repeats while held; toggles fire once
			_, held := control.Keys[name]
			if held && ebiten.IsKeyPressed(key) || inpututil.IsKeyJustPressed(key) {
				w.keys(name)
			}
		}
	}
	if w.frame != nil {
		return w.frame()
	}
	return nil
}

// Draw uploads the RGBA bytes and draws them unscaled; ebiten scales the
// logical screen to the window.
func (w *Window) Draw(screen *ebiten.Image) {
	if w.img == nil || w.img.Bounds().Dx() != w.buf.Width || w.img.Bounds().Dy() != w.buf.Height {
		if w.img != nil {
			w.img.Deallocate()
		}
		w.img = ebiten.NewImage(w.buf.Width, w.buf.Height)
	}
	w.img.WritePixels(w.buf.Color)
	screen.DrawImage(w.img, nil)
}

// Layout fixes the logical screen to the buffer size.
func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return w.buf.Width, w.buf.Height
}
