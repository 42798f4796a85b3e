package render

import (
	"context"
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	fb "github.com/gonutz/framebuffer"
	"github.com/rook-computer/reticle/internal/state"
)

const DefaultFramebuffer = "/dev/fb0"

// FBRenderer renders to the Linux framebuffer. The canvas matches the framebuffer
// size so the reticle lands on the real screen centre.
type FBRenderer struct {
	Device string
	Logger Logger
	Debug  bool

	mu      sync.Mutex
	fbDev   *fb.Device
	canvas  *Canvas
	current Screen
	running atomic.Bool
}

func NewFBRenderer(device string) *FBRenderer {
	if device == "" {
		device = DefaultFramebuffer
	}
	return &FBRenderer{Device: device}
}

func (r *FBRenderer) Start(ctx context.Context) error {
	dev, err := fb.Open(r.Device)
	if err != nil {
		return err
	}
	bounds := dev.Bounds()
	r.mu.Lock()
	r.fbDev = dev
	r.canvas = NewCanvas(bounds.Dx(), bounds.Dy(), r.Logger)
	r.mu.Unlock()
	if r.Logger != nil {
		r.Logger.Infof("fb", "framebuffer %s open, bounds=%dx%d", r.Device, bounds.Dx(), bounds.Dy())
	}
	r.running.Store(true)
	return nil
}

func (r *FBRenderer) Stop() error {
	r.running.Store(false)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fbDev != nil {
		// Leave the console clean rather than frozen on the last frame.
		clearFB(r.fbDev)
		r.fbDev.Close()
		r.fbDev = nil
	}
	return nil
}

// SetScreen sets the current logical screen to be drawn.
func (r *FBRenderer) SetScreen(screen Screen) {
	r.mu.Lock()
	r.current = screen
	r.mu.Unlock()
}

func (r *FBRenderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fbDev == nil {
		return CanvasWidth, CanvasHeight
	}
	b := r.fbDev.Bounds()
	return b.Dx(), b.Dy()
}

// RedrawWithState draws the current screen and copies it to the framebuffer.
func (r *FBRenderer) RedrawWithState(snap state.State) {
	if !r.running.Load() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil || r.fbDev == nil {
		return
	}
	r.canvas.FillBackground()
	r.current.Draw(r.canvas, snap)
	blitToFB(r.fbDev, r.canvas.Image())
	if r.Debug && r.Logger != nil {
		r.Logger.Infof("fb", "redraw done, menu=%t ingame=%t", snap.MenuVisible, snap.InGame)
	}
}

// blitToFB copies the canvas to the framebuffer, nearest-neighbour scaling if the
// sizes differ. The framebuffer has no alpha so pixels are written opaque.
func blitToFB(dev *fb.Device, canvas *image.RGBA) {
	bounds := dev.Bounds()
	fbWidth, fbHeight := bounds.Dx(), bounds.Dy()
	cw, ch := canvas.Bounds().Dx(), canvas.Bounds().Dy()
	for y := 0; y < fbHeight; y++ {
		sy := (y * ch) / fbHeight
		for x := 0; x < fbWidth; x++ {
			sx := (x * cw) / fbWidth
			pixel := canvas.RGBAAt(sx, sy)
			dev.Set(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{R: pixel.R, G: pixel.G, B: pixel.B, A: 0xFF})
		}
	}
}

func clearFB(dev *fb.Device) {
	bounds := dev.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dev.Set(x, y, color.Black)
		}
	}
}
