package reticle

import (
	"github.com/rook-computer/reticle/internal/svg"
	"github.com/spf13/cast"
)

type ShapeKind int

const (
	ShapeCircle ShapeKind = iota
	ShapeRectangle
)

// geometry attributes copied from the drawable onto its outline
var outlineMirror = []string{"r", "width", "height", "transform"}

// Shape wraps one drawable element and its optional outline. The outline sits directly
// behind the drawable and is owned exclusively by the shape.
type Shape struct {
	surface  *svg.Surface
	kind     ShapeKind
	drawable *svg.Element
	outline  *svg.Element

	outlineColor string
	outlineWidth float64
}

func NewShape(surface *svg.Surface, kind ShapeKind) *Shape {
	return &Shape{surface: surface, kind: kind, drawable: newDrawable(surface, kind)}
}

func newDrawable(surface *svg.Surface, kind ShapeKind) *svg.Element {
	if kind == ShapeRectangle {
		return surface.Rect()
	}
	return surface.Circle()
}

func (s *Shape) Element() *svg.Element { return s.drawable }

// Outline returns the outline element, or nil if none was ever requested.
func (s *Shape) Outline() *svg.Element { return s.outline }

// SetAttributes applies the batch to the drawable in one call. Values are not validated.
func (s *Shape) SetAttributes(batch svg.Attrs) {
	s.drawable.Attr(batch)
	if s.outline != nil {
		s.syncOutline()
	}
}

// SetOutline creates the outline on first use and updates it in place afterwards.
// An empty color or a zero width hides the outline without removing it.
func (s *Shape) SetOutline(color string, width float64) {
	s.outlineColor = color
	s.outlineWidth = width
	if s.outline == nil {
		if !s.outlineEnabled() {
			return
		}
		s.outline = newDrawable(s.surface, s.kind)
		if parent := s.drawable.Parent(); parent != nil {
			parent.InsertBefore(s.outline, s.drawable)
		}
	}
	s.syncOutline()
}

// AddToGroup moves the shape into group. Adding to the current group is a no-op.
func (s *Shape) AddToGroup(group *svg.Element) {
	if s.drawable.Parent() == group {
		return
	}
	group.Add(s.drawable)
	if s.outline != nil {
		group.InsertBefore(s.outline, s.drawable)
	}
}

func (s *Shape) outlineEnabled() bool {
	return s.outlineColor != "" && s.outlineWidth > 0
}

func (s *Shape) syncOutline() {
	batch := svg.Attrs{}
	for _, name := range outlineMirror {
		value, ok := s.drawable.Get(name)
		if !ok {
			value = nil
		}
		batch[name] = value
	}
	visible := s.outlineEnabled() && s.drawable.Visible()
	batch["visibility"] = toVisibility(visible)
	if s.outlineEnabled() {
		batch["fill"] = "none"
		batch["stroke"] = s.outlineColor
		batch["stroke-width"] = 2*s.outlineWidth + s.drawableStrokeWidth()
	}
	s.outline.Attr(batch)
}

func (s *Shape) drawableStrokeWidth() float64 {
	if s.drawable.AttrString("stroke") == "" {
		return 0
	}
	value, ok := s.drawable.Get("stroke-width")
	if !ok {
		return 0
	}
	return cast.ToFloat64(value)
}

func toVisibility(visible bool) string {
	if visible {
		return "visible"
	}
	return "hidden"
}
