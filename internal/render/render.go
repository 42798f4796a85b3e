package render

import (
	"context"
	"image"
	"image/color"

	"github.com/rook-computer/reticle/internal/state"
	"github.com/rook-computer/reticle/internal/svg"
)

type Renderer interface {
	Start(ctx context.Context) error
	Stop() error
	SetScreen(screen Screen)
	// Size reports the output size in pixels; the overlay document is sized to match.
	Size() (width int, height int)
	RedrawWithState(snap state.State)
}

type Screen interface {
	Start(ctx context.Context) error
	Stop() error
	Draw(r Drawer, s state.State)
}

// NoopRenderer draws nothing; used for headless runs and tests.
type NoopRenderer struct {
	Width, Height int
}

func (n *NoopRenderer) Start(ctx context.Context) error  { return nil }
func (n *NoopRenderer) Stop() error                      { return nil }
func (n *NoopRenderer) SetScreen(screen Screen)          {}
func (n *NoopRenderer) RedrawWithState(snap state.State) {}
func (n *NoopRenderer) Size() (int, int) {
	if n.Width <= 0 || n.Height <= 0 {
		return CanvasWidth, CanvasHeight
	}
	return n.Width, n.Height
}

// Drawer is an abstraction the renderer provides to screens to draw primitives
// without exposing low-level framebuffer details.
type Drawer interface {
	// Size returns the logical canvas size (in pixels) that screens draw into.
	Size() (width int, height int)

	FillBackground()
	FillRect(rect image.Rectangle, c color.Color)

	// Generic text primitives.
	MeasureText(text string, style TextStyle) TextMetrics
	DrawText(text string, x, y int, style TextStyle) TextMetrics

	// Generic image primitives.
	ImageSize(img image.Image) (width int, height int)
	DrawImageInRect(img image.Image, rect image.Rectangle, mode ScaleMode)

	// DrawSurface rasterises an SVG surface over the whole canvas.
	DrawSurface(surface *svg.Surface)
}

type TextAlign int

const (
	TextAlignLeft TextAlign = iota
	TextAlignCenter
	TextAlignRight
)

// TextStyle describes how to render text.
// Coordinates for DrawText use a top-left anchor for Y.
// For X, Align controls how x is interpreted.
type TextStyle struct {
	Color color.Color
	Size  int // font size in points; 0 means renderer default
	Align TextAlign
}

type TextMetrics struct {
	Width      int
	Height     int
	Ascent     int
	Descent    int
	LineHeight int
}

type ScaleMode int

const (
	ScaleModeFit ScaleMode = iota
	ScaleModeFill
	ScaleModeStretch
)
