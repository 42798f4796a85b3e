package render

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/rook-computer/reticle/internal/reticle"
	"github.com/rook-computer/reticle/internal/settings"
	"github.com/rook-computer/reticle/internal/svg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSurface(t *testing.T) *svg.Surface {
	t.Helper()
	doc := svg.NewDocument(100, 100)
	return doc.AddSurface("test")
}

func rasterize(surface *svg.Surface) *image.RGBA {
	w, h := surface.Parent().Size()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	Rasterize(img, surface)
	return img
}

func TestParseColor(t *testing.T) {
	c, ok := ParseColor("#0f0")
	require.True(t, ok)
	assert.Equal(t, color.RGBA{G: 0xFF, A: 0xFF}, color.RGBAModel.Convert(c))

	c, ok = ParseColor("Red")
	require.True(t, ok)
	assert.Equal(t, color.RGBA{R: 0xFF, A: 0xFF}, color.RGBAModel.Convert(c))

	for _, bad := range []string{"", "none", "#12", "rgb(1,2,3)"} {
		_, ok := ParseColor(bad)
		assert.False(t, ok, bad)
	}
}

func TestRasterize_FilledCircleUnderTranslate(t *testing.T) {
	surface := newSurface(t)
	group := surface.Group().Attr(svg.Attrs{"transform": svg.Translate{X: 30, Y: 40}})
	group.Add(surface.Circle().Attr(svg.Attrs{"r": 5, "fill": "#ff0000"}))

	img := rasterize(surface)

	assert.Equal(t, color.RGBA{R: 0xFF, A: 0xFF}, img.RGBAAt(30, 40))
	assert.Equal(t, uint8(0), img.RGBAAt(50, 50).A)
}

func TestRasterize_StrokedCircleIsHollow(t *testing.T) {
	surface := newSurface(t)
	surface.Circle().Attr(svg.Attrs{"cx": 50, "cy": 50, "r": 20, "fill": "none", "stroke": "#00ff00", "stroke-width": 4})

	img := rasterize(surface)

	assert.Equal(t, uint8(0), img.RGBAAt(50, 50).A, "centre stays empty")
	assert.Equal(t, color.RGBA{G: 0xFF, A: 0xFF}, img.RGBAAt(70, 50))
}

func TestRasterize_HiddenShapesSkipped(t *testing.T) {
	surface := newSurface(t)
	surface.Rect().Attr(svg.Attrs{"width": 100, "height": 100, "fill": "#fff", "visibility": "hidden"})

	img := rasterize(surface)

	assert.Equal(t, uint8(0), img.RGBAAt(10, 10).A)
}

func TestRasterize_RotateTurnsArm(t *testing.T) {
	surface := newSurface(t)
	group := surface.Group().Attr(svg.Attrs{"transform": svg.Translate{X: 50, Y: 50}})
	spin := surface.Group().Attr(svg.Attrs{"transform": svg.Rotate{Deg: 90}})
	group.Add(spin)
	spin.Add(surface.Rect().Attr(svg.Attrs{"x": 10, "y": -2, "width": 20, "height": 4, "fill": "#fff"}))

	img := rasterize(surface)

	assert.Equal(t, uint8(0), img.RGBAAt(70, 50).A, "arm no longer points right")
	assert.Equal(t, uint8(0xFF), img.RGBAAt(50, 70).A, "arm points down")
}

func TestRasterize_GroupOpacity(t *testing.T) {
	surface := newSurface(t)
	group := surface.Group().Attr(svg.Attrs{"opacity": 0.5})
	group.Add(surface.Rect().Attr(svg.Attrs{"width": 100, "height": 100, "fill": "#fff"}))
	group.Add(surface.Rect().Attr(svg.Attrs{"width": 50, "height": 50, "fill": "#fff"}))

	img := rasterize(surface)

	// Overlapping children composite once, so both areas share one alpha.
	assert.InDelta(t, 0x80, int(img.RGBAAt(25, 25).A), 1)
	assert.Equal(t, img.RGBAAt(25, 25), img.RGBAAt(75, 75))
}

func TestRasterize_CrispEdgesHasNoPartialAlpha(t *testing.T) {
	surface := newSurface(t)
	surface.Element().Attr(svg.Attrs{"shape-rendering": "crispEdges"})
	surface.Circle().Attr(svg.Attrs{"cx": 50.3, "cy": 50.7, "r": 17.4, "fill": "#fff"})

	img := rasterize(surface)

	for i := 3; i < len(img.Pix); i += 4 {
		a := img.Pix[i]
		require.True(t, a == 0 || a == 0xFF, "alpha %d", a)
	}
}

func TestRasterize_DefaultReticle(t *testing.T) {
	doc := svg.NewDocument(200, 200)
	doc.AddSurface("reticle")
	r, err := reticle.New(doc, "reticle")
	require.NoError(t, err)
	data := settings.Defaults()
	data.CircleEnabled = true
	r.Render(data)

	img := rasterize(r.Surface())

	assert.Equal(t, color.RGBA{G: 0xFF, A: 0xFF}, img.RGBAAt(100, 100), "centre dot")
	assert.Equal(t, color.RGBA{G: 0xFF, A: 0xFF}, img.RGBAAt(100, 100-10), "top arm")
	assert.Equal(t, color.RGBA{A: 0xFF}, img.RGBAAt(100, 100-2-10-4+1), "arm outline above the tip")
	assert.Equal(t, color.RGBA{G: 0xFF, A: 0xFF}, img.RGBAAt(100+20, 100), "outer circle")
}

func TestRasterize_ExtremeGeometryDoesNotPanic(t *testing.T) {
	cases := map[string]func(*settings.Settings){
		"huge arm":          func(s *settings.Settings) { s.CrossLength = 1e40 },
		"huge negative arm": func(s *settings.Settings) { s.CrossLength = -1e300 },
		"far spread":        func(s *settings.Settings) { s.CrossSpread = 1e300 },
		"int overflow":      func(s *settings.Settings) { s.CrossThickness = 1e15 },
		"huge circle":       func(s *settings.Settings) { s.CircleDiameter = 1e40 },
		"negative circle":   func(s *settings.Settings) { s.CircleDiameter = -1e300 },
		"infinite centre":   func(s *settings.Settings) { s.CenterDiameter = math.Inf(1) },
		"nan stroke":        func(s *settings.Settings) { s.CrossStrokeSize = math.NaN() },
		"square centre":     func(s *settings.Settings) { s.CenterShape = settings.CenterSquare; s.CenterDiameter = 1e300 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			doc := svg.NewDocument(64, 64)
			doc.AddSurface("reticle")
			r, err := reticle.New(doc, "reticle")
			require.NoError(t, err)
			data := settings.Defaults()
			data.CircleEnabled = true
			mutate(&data)

			assert.NotPanics(t, func() {
				r.Render(data)
				rasterize(r.Surface())
			})
		})
	}
}

func TestRasterize_OutOfRangeShapeIsSkipped(t *testing.T) {
	surface := newSurface(t)
	surface.Rect().Attr(svg.Attrs{"x": -1e30, "width": 2e30, "height": 100, "fill": "#fff"})
	surface.Circle().Attr(svg.Attrs{"cx": 50, "cy": 50, "r": 5, "fill": "#ff0000"})

	img := rasterize(surface)

	assert.Equal(t, color.RGBA{R: 0xFF, A: 0xFF}, img.RGBAAt(50, 50))
	assert.Equal(t, uint8(0), img.RGBAAt(5, 5).A)
}

func TestRasterizer_ReusesOpacityLayer(t *testing.T) {
	surface := newSurface(t)
	group := surface.Group().Attr(svg.Attrs{"opacity": 0.5})
	group.Add(surface.Rect().Attr(svg.Attrs{"width": 40, "height": 40, "fill": "#fff"}))

	var r Rasterizer
	first := image.NewRGBA(image.Rect(0, 0, 100, 100))
	r.Draw(first, surface)
	require.Len(t, r.layers, 1)
	layer := r.layers[0]

	// A stale layer would leak the previous frame's pixels into the next one.
	group.Children()[0].Attr(svg.Attrs{"x": 60, "y": 60})
	second := image.NewRGBA(image.Rect(0, 0, 100, 100))
	r.Draw(second, surface)

	assert.Same(t, layer, r.layers[0])
	assert.Equal(t, uint8(0), second.RGBAAt(10, 10).A)
	assert.Equal(t, first.RGBAAt(10, 10), second.RGBAAt(70, 70))
}
