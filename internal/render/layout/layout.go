// Package layout places the overlay's HUD panels in screen space.
package layout

import (
	"image"
	"math"
)

// Inset shrinks rect by px on all sides. A rect too small to inset collapses to
// its centre.
func Inset(rect image.Rectangle, px int) image.Rectangle {
	rect = rect.Canon()
	if px <= 0 {
		return rect
	}
	return rect.Inset(px)
}

// SidePanel returns the strip along the right edge of screen that is fraction of
// its width, at most maxWidth pixels wide (no cap when maxWidth <= 0).
func SidePanel(screen image.Rectangle, fraction float64, maxWidth int) image.Rectangle {
	screen = screen.Canon()
	width := int(math.Round(float64(screen.Dx()) * fraction))
	if maxWidth > 0 && width > maxWidth {
		width = maxWidth
	}
	_, right := SplitVertical(screen, screen.Dx()-width)
	return right
}

// SplitVertical cuts rect at leftWidthPx from its left edge, clamped to the rect.
func SplitVertical(rect image.Rectangle, leftWidthPx int) (left, right image.Rectangle) {
	rect = rect.Canon()
	x := rect.Min.X + clamp(leftWidthPx, 0, rect.Dx())
	left = image.Rect(rect.Min.X, rect.Min.Y, x, rect.Max.Y)
	right = image.Rect(x, rect.Min.Y, rect.Max.X, rect.Max.Y)
	return left, right
}

// SplitHorizontal cuts rect at topHeightPx from its top edge, clamped to the rect.
func SplitHorizontal(rect image.Rectangle, topHeightPx int) (top, bottom image.Rectangle) {
	rect = rect.Canon()
	y := rect.Min.Y + clamp(topHeightPx, 0, rect.Dy())
	top = image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, y)
	bottom = image.Rect(rect.Min.X, y, rect.Max.X, rect.Max.Y)
	return top, bottom
}

// FitSquare returns the largest square inside rect, top-aligned and centred
// horizontally. The menu puts the QR code there.
func FitSquare(rect image.Rectangle) image.Rectangle {
	rect = rect.Canon()
	size := min(rect.Dx(), rect.Dy())
	x := rect.Min.X + (rect.Dx()-size)/2
	return image.Rect(x, rect.Min.Y, x+size, rect.Min.Y+size)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
