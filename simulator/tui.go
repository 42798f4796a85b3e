package main

import (
	"context"
	"image/color"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rook-computer/reticle/internal/render"
	"github.com/rook-computer/reticle/internal/state"
)

// terminalBackground is what transparent overlay pixels are composited onto.
var terminalBackground = color.RGBA{R: 0x30, G: 0x30, B: 0x38, A: 0xFF}

// TUIRenderer previews the overlay in a terminal. Each cell shows two vertically
// stacked pixels using the upper half block glyph.
type TUIRenderer struct {
	Logger  render.Logger
	OnEvent func(ev tcell.Event)

	mu      sync.Mutex
	screen  tcell.Screen
	canvas  *render.Canvas
	current render.Screen
}

func (r *TUIRenderer) Start(ctx context.Context) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	screen.HideCursor()
	cols, rows := screen.Size()

	r.mu.Lock()
	r.screen = screen
	r.canvas = render.NewCanvas(cols, rows*2, r.Logger)
	r.mu.Unlock()

	go r.pump(screen)
	return nil
}

func (r *TUIRenderer) pump(screen tcell.Screen) {
	for {
		ev := screen.PollEvent()
		if ev == nil {
			// Fini was called.
			return
		}
		if _, ok := ev.(*tcell.EventResize); ok {
			screen.Sync()
		}
		if r.OnEvent != nil {
			r.OnEvent(ev)
		}
	}
}

func (r *TUIRenderer) Stop() error {
	r.mu.Lock()
	screen := r.screen
	r.screen = nil
	r.mu.Unlock()
	if screen != nil {
		screen.Fini()
	}
	return nil
}

func (r *TUIRenderer) SetScreen(screen render.Screen) {
	r.mu.Lock()
	r.current = screen
	r.mu.Unlock()
}

// Size reports the preview size in pixels: one column wide, half a row high.
func (r *TUIRenderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.screen == nil {
		return render.CanvasWidth, render.CanvasHeight
	}
	cols, rows := r.screen.Size()
	return cols, rows * 2
}

func (r *TUIRenderer) RedrawWithState(snap state.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.screen == nil || r.current == nil {
		return
	}
	cols, rows := r.screen.Size()
	r.canvas.Resize(cols, rows*2)
	r.canvas.FillBackground()
	r.current.Draw(r.canvas, snap)

	img := r.canvas.Image()
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			top := cellColor(img.RGBAAt(x, y*2))
			bottom := cellColor(img.RGBAAt(x, y*2+1))
			r.screen.SetContent(x, y, '▀', nil, tcell.StyleDefault.Foreground(top).Background(bottom))
		}
	}
	r.screen.Show()
}

// cellColor blends a premultiplied pixel over the terminal background.
func cellColor(c color.RGBA) tcell.Color {
	inv := 0xFF - int32(c.A)
	blend := func(src uint8, bg uint8) int32 {
		return int32(src) + int32(bg)*inv/0xFF
	}
	return tcell.NewRGBColor(
		blend(c.R, terminalBackground.R),
		blend(c.G, terminalBackground.G),
		blend(c.B, terminalBackground.B),
	)
}
