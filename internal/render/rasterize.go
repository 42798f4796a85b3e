package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rook-computer/reticle/internal/svg"
	"github.com/spf13/cast"
	"golang.org/x/image/vector"
)

// Rasterize paints the surface's shapes onto dst. Only the features the reticle uses
// are supported: groups with translate/rotate transforms and opacity, circles and
// rects with fill and stroke, visibility and the shape-rendering hint.
func Rasterize(dst draw.Image, surface *svg.Surface) {
	var r Rasterizer
	r.Draw(dst, surface)
}

// maxCoord bounds transformed coordinates. Rasterization runs in float32 and pixel
// bounds are ints, so shapes reaching further out are not drawn.
const maxCoord = 1 << 24

// Rasterizer is Rasterize with opacity layers kept between calls, for renderers
// that draw every frame. It is not safe for concurrent use.
type Rasterizer struct {
	crisp  bool
	layers []*image.RGBA
}

func (r *Rasterizer) Draw(dst draw.Image, surface *svg.Surface) {
	root := surface.Element()
	hint := root.AttrString("shape-rendering")
	r.crisp = hint == "crispEdges" || hint == "optimizeSpeed"
	for _, child := range root.Children() {
		r.element(dst, child, identity, 0)
	}
}

// layer returns a cleared scratch image for groups nested depth opacity layers deep.
func (r *Rasterizer) layer(depth int, bounds image.Rectangle) *image.RGBA {
	for len(r.layers) <= depth {
		r.layers = append(r.layers, nil)
	}
	l := r.layers[depth]
	if l == nil || l.Bounds() != bounds {
		l = image.NewRGBA(bounds)
		r.layers[depth] = l
		return l
	}
	clear(l.Pix)
	return l
}

func (r *Rasterizer) element(dst draw.Image, el *svg.Element, parent affine, depth int) {
	m := parent.mul(transformOf(el))
	switch el.Kind() {
	case svg.KindGroup:
		r.group(dst, el, m, depth)
	case svg.KindCircle:
		r.circle(dst, el, m)
	case svg.KindRect:
		r.rect(dst, el, m)
	}
}

func (r *Rasterizer) group(dst draw.Image, el *svg.Element, m affine, depth int) {
	opacity := clamp01(number(el, "opacity", 1))
	if opacity <= 0 {
		return
	}
	target, childDepth := dst, depth
	var layer *image.RGBA
	if opacity < 1 {
		// Children are composited first so overlapping shapes don't blend together.
		layer = r.layer(depth, dst.Bounds())
		target, childDepth = layer, depth+1
	}
	for _, child := range el.Children() {
		r.element(target, child, m, childDepth)
	}
	if layer != nil {
		mask := image.NewUniform(color.Alpha{A: uint8(math.Round(opacity * 0xFF))})
		draw.DrawMask(dst, dst.Bounds(), layer, dst.Bounds().Min, mask, image.Point{}, draw.Over)
	}
}

func (r *Rasterizer) circle(dst draw.Image, el *svg.Element, m affine) {
	if !el.Visible() {
		return
	}
	radius := number(el, "r", 0)
	cx, cy := number(el, "cx", 0), number(el, "cy", 0)
	if fill, ok := fillColor(el); ok && radius > 0 {
		r.fill(dst, fill, circlePath(cx, cy, radius, m, false))
	}
	if stroke, width, ok := strokeOf(el); ok {
		outer := radius + width/2
		inner := radius - width/2
		paths := []path{circlePath(cx, cy, outer, m, false)}
		if inner > 0 {
			paths = append(paths, circlePath(cx, cy, inner, m, true))
		}
		r.fill(dst, stroke, paths...)
	}
}

func (r *Rasterizer) rect(dst draw.Image, el *svg.Element, m affine) {
	if !el.Visible() {
		return
	}
	x, y := number(el, "x", 0), number(el, "y", 0)
	w, h := number(el, "width", 0), number(el, "height", 0)
	if fill, ok := fillColor(el); ok && w > 0 && h > 0 {
		r.fill(dst, fill, rectPath(x, y, w, h, m, false))
	}
	if stroke, width, ok := strokeOf(el); ok {
		half := width / 2
		paths := []path{rectPath(x-half, y-half, w+width, h+width, m, false)}
		if w-width > 0 && h-width > 0 {
			paths = append(paths, rectPath(x+half, y+half, w-width, h-width, m, true))
		}
		r.fill(dst, stroke, paths...)
	}
}

// fill rasterises the union of paths; opposite windings cut holes. Paths with
// coordinates that are not finite or lie beyond maxCoord are dropped as a whole.
func (r *Rasterizer) fill(dst draw.Image, c color.Color, paths ...path) {
	bounds, ok := pathBounds(paths)
	if !ok {
		return
	}
	bounds = bounds.Intersect(dst.Bounds())
	if bounds.Empty() {
		return
	}
	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	ox, oy := float64(bounds.Min.X), float64(bounds.Min.Y)
	for _, p := range paths {
		if len(p) < 3 {
			continue
		}
		z.MoveTo(float32(p[0].x-ox), float32(p[0].y-oy))
		for _, pt := range p[1:] {
			z.LineTo(float32(pt.x-ox), float32(pt.y-oy))
		}
		z.ClosePath()
	}
	mask := image.NewAlpha(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	if r.crisp {
		for i, a := range mask.Pix {
			if a >= 0x80 {
				mask.Pix[i] = 0xFF
			} else {
				mask.Pix[i] = 0
			}
		}
	}
	draw.DrawMask(dst, bounds, image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}

type point struct{ x, y float64 }

type path []point

func circlePath(cx, cy, radius float64, m affine, reverse bool) path {
	// Clamped as a float first; converting a NaN or huge radius to int is undefined.
	segments := 16
	if n := math.Ceil(radius * 2); n > 256 {
		segments = 256
	} else if n > 16 {
		segments = int(n)
	}
	p := make(path, segments)
	for i := 0; i < segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		if reverse {
			theta = -theta
		}
		x, y := m.apply(cx+radius*math.Cos(theta), cy+radius*math.Sin(theta))
		p[i] = point{x, y}
	}
	return p
}

func rectPath(x, y, w, h float64, m affine, reverse bool) path {
	corners := [][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	if reverse {
		corners[1], corners[3] = corners[3], corners[1]
	}
	p := make(path, len(corners))
	for i, c := range corners {
		px, py := m.apply(c[0], c[1])
		p[i] = point{px, py}
	}
	return p
}

func pathBounds(paths []path) (image.Rectangle, bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range paths {
		for _, pt := range p {
			if !inRange(pt.x) || !inRange(pt.y) {
				return image.Rectangle{}, false
			}
			minX, minY = math.Min(minX, pt.x), math.Min(minY, pt.y)
			maxX, maxY = math.Max(maxX, pt.x), math.Max(maxY, pt.y)
		}
	}
	if math.IsInf(minX, 1) {
		return image.Rectangle{}, false
	}
	return image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX)), int(math.Ceil(maxY))), true
}

// inRange is false for NaN and infinities too.
func inRange(v float64) bool {
	return v >= -maxCoord && v <= maxCoord
}

// affine is a 2D transform [a b c d e f]: x' = a*x + c*y + e, y' = b*x + d*y + f.
type affine [6]float64

var identity = affine{1, 0, 0, 1, 0, 0}

// mul returns the transform applying n first, then m.
func (m affine) mul(n affine) affine {
	return affine{
		m[0]*n[0] + m[2]*n[1],
		m[1]*n[0] + m[3]*n[1],
		m[0]*n[2] + m[2]*n[3],
		m[1]*n[2] + m[3]*n[3],
		m[0]*n[4] + m[2]*n[5] + m[4],
		m[1]*n[4] + m[3]*n[5] + m[5],
	}
}

func (m affine) apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

func transformOf(el *svg.Element) affine {
	value, _ := el.Get("transform")
	switch t := value.(type) {
	case svg.Translate:
		return affine{1, 0, 0, 1, t.X, t.Y}
	case svg.Rotate:
		rad := t.Deg * math.Pi / 180
		sin, cos := math.Sincos(rad)
		return affine{cos, sin, -sin, cos, 0, 0}
	}
	return identity
}

func number(el *svg.Element, name string, fallback float64) float64 {
	value, ok := el.Get(name)
	if !ok {
		return fallback
	}
	f, err := cast.ToFloat64E(value)
	if err != nil || math.IsNaN(f) {
		return fallback
	}
	return f
}

func fillColor(el *svg.Element) (color.Color, bool) {
	value, ok := el.Get("fill")
	if !ok {
		// SVG paints an unspecified fill black.
		return color.Black, true
	}
	return ParseColor(cast.ToString(value))
}

func strokeOf(el *svg.Element) (color.Color, float64, bool) {
	value, ok := el.Get("stroke")
	if !ok {
		return nil, 0, false
	}
	c, ok := ParseColor(cast.ToString(value))
	if !ok {
		return nil, 0, false
	}
	width := number(el, "stroke-width", 1)
	if width <= 0 {
		return nil, 0, false
	}
	return c, width, true
}

var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"lime":    "#00ff00",
	"green":   "#008000",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"cyan":    "#00ffff",
	"magenta": "#ff00ff",
	"orange":  "#ffa500",
	"purple":  "#800080",
	"gray":    "#808080",
	"grey":    "#808080",
}

// ParseColor understands #rgb, #rrggbb and a handful of CSS color names. "none",
// empty and unparseable values report false.
func ParseColor(value string) (color.Color, bool) {
	s := strings.ToLower(strings.TrimSpace(value))
	if hex, ok := namedColors[s]; ok {
		s = hex
	}
	if !strings.HasPrefix(s, "#") {
		return nil, false
	}
	if len(s) == 4 {
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return nil, false
	}
	return c, true
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
