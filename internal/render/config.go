package render

import "image/color"

// Global render configuration for colors and logical canvas.
var (
	// Background is what the overlay shows wherever the reticle does not draw.
	Background = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0x00}

	// Menu panel colors.
	PanelBackground = color.RGBA{R: 0x10, G: 0x10, B: 0x18, A: 0xD8}
	Foreground      = color.RGBA{R: 0xF0, G: 0xF0, B: 0xF0, A: 0xFF}
	Accent          = color.RGBA{R: 0x00, G: 0xFF, B: 0x00, A: 0xFF}

	// Default logical canvas size, used until the host reports the real one.
	CanvasWidth  = 1920
	CanvasHeight = 1080
)
