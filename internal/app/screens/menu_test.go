package screens

import (
	"image/color"
	"testing"

	"github.com/rook-computer/reticle/internal/render"
	"github.com/rook-computer/reticle/internal/state"
	"github.com/rook-computer/reticle/internal/svg"
	"github.com/stretchr/testify/assert"
)

func TestMenuScreen_DrawsPanelAndQRCode(t *testing.T) {
	doc := svg.NewDocument(900, 700)
	surface := doc.AddSurface("reticle")
	canvas := render.NewCanvas(900, 700, nil)
	screen := NewMenuScreen(surface, nil)

	screen.Draw(canvas, state.State{Profile: "default", SettingsURL: "http://127.0.0.1:8080/"})

	img := canvas.Image()
	assert.Equal(t, uint8(0), img.RGBAAt(10, 10).A, "left side stays transparent")
	assert.NotEqual(t, uint8(0), img.RGBAAt(900-30, 30).A, "panel is painted")
	assert.NotNil(t, screen.qrImage)

	// The QR code must contain dark modules somewhere in the panel.
	dark := false
	for y := 200; y < 600 && !dark; y++ {
		for x := 600; x < 880; x++ {
			if img.RGBAAt(x, y) == (color.RGBA{A: 0xFF}) {
				dark = true
				break
			}
		}
	}
	assert.True(t, dark)
}

func TestMenuScreen_CachesQRCodePerURL(t *testing.T) {
	screen := NewMenuScreen(nil, nil)

	first := screen.qrCode("http://a/")
	assert.Same(t, first, screen.qrCode("http://a/"))
	assert.NotSame(t, first, screen.qrCode("http://b/"))
}
