package render

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/rook-computer/reticle/internal/assets"
	"github.com/rook-computer/reticle/internal/svg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const defaultTextSize = 24

// Logger is the subset of the app logger the renderers use.
type Logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// Canvas is an offscreen RGBA image implementing Drawer. Renderers draw into it
// and then copy it to their output.
type Canvas struct {
	img    *image.RGBA
	ttFont *truetype.Font
	otFont *opentype.Font

	facesMu sync.Mutex
	faces   map[int]font.Face

	raster Rasterizer

	Logger Logger
}

func NewCanvas(width, height int, logger Logger) *Canvas {
	c := &Canvas{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		faces:  map[int]font.Face{},
		Logger: logger,
	}
	if tt, err := truetype.Parse(assets.FontTTF); err != nil {
		c.errorf("truetype parse failed: %v", err)
	} else {
		c.ttFont = tt
	}
	if ot, err := opentype.Parse(assets.FontTTF); err != nil {
		c.errorf("font parse failed, using basicfont: %v", err)
	} else {
		c.otFont = ot
	}
	return c
}

// Image returns the backing image. Callers must not retain it across Resize.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Resize replaces the backing image when the size changes.
func (c *Canvas) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	b := c.img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return
	}
	c.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *Canvas) FillBackground() {
	draw.Draw(c.img, c.img.Bounds(), &image.Uniform{C: Background}, image.Point{}, draw.Src)
}

func (c *Canvas) FillRect(rect image.Rectangle, col color.Color) {
	draw.Draw(c.img, rect.Intersect(c.img.Bounds()), &image.Uniform{C: col}, image.Point{}, draw.Over)
}

func (c *Canvas) DrawSurface(surface *svg.Surface) {
	if surface == nil {
		return
	}
	c.raster.Draw(c.img, surface)
}

func (c *Canvas) MeasureText(text string, style TextStyle) TextMetrics {
	face := c.face(style.Size)
	m := face.Metrics()
	return TextMetrics{
		Width:      font.MeasureString(face, text).Ceil(),
		Height:     (m.Ascent + m.Descent).Ceil(),
		Ascent:     m.Ascent.Ceil(),
		Descent:    m.Descent.Ceil(),
		LineHeight: m.Height.Ceil(),
	}
}

func (c *Canvas) DrawText(text string, x, y int, style TextStyle) TextMetrics {
	metrics := c.MeasureText(text, style)
	switch style.Align {
	case TextAlignCenter:
		x -= metrics.Width / 2
	case TextAlignRight:
		x -= metrics.Width
	}
	col := style.Color
	if col == nil {
		col = Foreground
	}
	baseline := y + metrics.Ascent

	if c.ttFont != nil {
		ctx := freetype.NewContext()
		ctx.SetDPI(72)
		ctx.SetFont(c.ttFont)
		ctx.SetFontSize(float64(textSize(style.Size)))
		ctx.SetClip(c.img.Bounds())
		ctx.SetDst(c.img)
		ctx.SetSrc(image.NewUniform(col))
		ctx.SetHinting(font.HintingFull)
		_, err := ctx.DrawString(text, freetype.Pt(x, baseline))
		if err == nil {
			return metrics
		}
		c.errorf("freetype draw failed: %v", err)
	}
	drawer := &font.Drawer{Dst: c.img, Src: image.NewUniform(col), Face: c.face(style.Size)}
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
	return metrics
}

func (c *Canvas) ImageSize(img image.Image) (int, int) {
	if img == nil {
		return 0, 0
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *Canvas) DrawImageInRect(img image.Image, rect image.Rectangle, mode ScaleMode) {
	if img == nil || rect.Empty() {
		return
	}
	src := img.Bounds()
	dst := rect
	switch mode {
	case ScaleModeFit, ScaleModeFill:
		sx := float64(rect.Dx()) / float64(src.Dx())
		sy := float64(rect.Dy()) / float64(src.Dy())
		scale := sx
		if (mode == ScaleModeFit && sy < sx) || (mode == ScaleModeFill && sy > sx) {
			scale = sy
		}
		w := int(float64(src.Dx()) * scale)
		h := int(float64(src.Dy()) * scale)
		minX := rect.Min.X + (rect.Dx()-w)/2
		minY := rect.Min.Y + (rect.Dy()-h)/2
		dst = image.Rect(minX, minY, minX+w, minY+h)
	}
	// Clip to rect so Fill mode crops instead of spilling.
	target, ok := c.img.SubImage(rect).(*image.RGBA)
	if !ok {
		return
	}
	// Nearest neighbour keeps QR modules sharp.
	xdraw.NearestNeighbor.Scale(target, dst, img, src, xdraw.Over, nil)
}

func (c *Canvas) face(size int) font.Face {
	size = textSize(size)
	c.facesMu.Lock()
	defer c.facesMu.Unlock()
	if face, ok := c.faces[size]; ok {
		return face
	}
	var face font.Face = basicfont.Face7x13
	if c.otFont != nil {
		f, err := opentype.NewFace(c.otFont, &opentype.FaceOptions{Size: float64(size), DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			c.errorf("font face create failed, using basicfont: %v", err)
		} else {
			face = f
		}
	}
	c.faces[size] = face
	return face
}

func (c *Canvas) errorf(format string, args ...interface{}) {
	if c.Logger != nil {
		c.Logger.Errorf("canvas", format, args...)
	}
}

func textSize(size int) int {
	if size <= 0 {
		return defaultTextSize
	}
	return size
}
